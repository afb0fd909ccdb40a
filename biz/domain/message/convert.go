package message

import (
	"github.com/xh-polaris/chat-relay/biz/application/dto/core_api"
	mmsg "github.com/xh-polaris/chat-relay/biz/infra/mapper/message"
)

// MMsgToFMsg 将存储域消息转换为对外消息
func MMsgToFMsg(m *mmsg.Message) *core_api.Message {
	if m == nil {
		return nil
	}
	return &core_api.Message{
		Id:             m.MessageId.Hex(),
		ConversationId: m.ConversationId.Hex(),
		SenderId:       m.SenderId,
		Content:        m.Content,
		Kind:           m.Kind,
		CreatedAt:      m.CreateTime,
	}
}

func MMsgToFMsgList(ms []*mmsg.Message) []*core_api.Message {
	out := make([]*core_api.Message, 0, len(ms))
	for _, m := range ms {
		out = append(out, MMsgToFMsg(m))
	}
	return out
}

// MMsgToLast 对话列表中的最后一条消息预览
func MMsgToLast(m *mmsg.Message) *core_api.LastMessage {
	if m == nil {
		return nil
	}
	return &core_api.LastMessage{Content: m.Content, SenderId: m.SenderId, CreatedAt: m.CreateTime}
}
