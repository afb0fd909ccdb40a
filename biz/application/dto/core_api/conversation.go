package core_api

import (
	"time"

	"github.com/xh-polaris/chat-relay/biz/application/dto/basic"
)

// Message 对外暴露的消息结构, http历史记录/ws应答/ws推送共用
type Message struct {
	Id             string    `json:"id"`
	ConversationId string    `json:"conversationId"`
	SenderId       string    `json:"senderId"`
	Content        string    `json:"content"`
	Kind           string    `json:"kind"`
	CreatedAt      time.Time `json:"createdAt"`
}

type LastMessage struct {
	Content   string    `json:"content"`
	SenderId  string    `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Conversation struct {
	ConversationId string       `json:"conversationId"`
	OtherUserId    string       `json:"otherUserId"`
	LastMessage    *LastMessage `json:"lastMessage,omitempty"`
	CreateTime     int64        `json:"createTime"`
	UpdateTime     int64        `json:"updateTime"`
}

type StartConversationReq struct {
	OtherUserId string `json:"otherUserId"`
}

func (r *StartConversationReq) GetOtherUserId() string {
	if r == nil {
		return ""
	}
	return r.OtherUserId
}

type StartConversationResp struct {
	Resp           *basic.Response `json:"resp"`
	ConversationId string          `json:"conversationId"`
	OtherUserId    string          `json:"otherUserId"`
}

type ListConversationReq struct {
	Page *int64 `json:"page,omitempty" query:"page"`
	Size *int64 `json:"size,omitempty" query:"size"`
}

func (r *ListConversationReq) GetPage() *basic.Page {
	if r == nil {
		return nil
	}
	return &basic.Page{Page: r.Page, Size: r.Size}
}

type ListConversationResp struct {
	Resp          *basic.Response `json:"resp"`
	Conversations []*Conversation `json:"conversations"`
	HasMore       bool            `json:"hasMore"`
}

type ListMessageReq struct {
	ConversationId string `json:"conversationId" query:"conversationId"`
}

func (r *ListMessageReq) GetConversationId() string {
	if r == nil {
		return ""
	}
	return r.ConversationId
}

type ListMessageResp struct {
	Resp     *basic.Response `json:"resp"`
	Messages []*Message      `json:"messages"`
}
