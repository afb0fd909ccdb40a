package errno

import "github.com/xh-polaris/chat-relay/pkg/errorx/code"

const (
	ConversationCreateErrCode  = 30001
	ConversationListErrCode    = 30003
	ConversationGetErrCode     = 30004
	ConversationInvalidPeerErr = 30008
)

func init() {
	code.Register(
		ConversationCreateErrCode,
		"创建对话失败",
		code.WithAffectStability(true),
	)
	code.Register(
		ConversationListErrCode,
		"分页获取历史对话失败",
		code.WithAffectStability(true),
	)
	code.Register(
		ConversationGetErrCode,
		"获取对话历史记录失败",
		code.WithAffectStability(true),
	)
	code.Register(
		ConversationInvalidPeerErr,
		"无效的对话对象",
		code.WithAffectStability(false),
	)
}
