package errno

import "github.com/xh-polaris/chat-relay/pkg/errorx/code"

// 消息投递结果, 对应ws应答中的error字段
const (
	InvalidPayloadCode       = 40001
	ConversationNotFoundCode = 40002
	ForbiddenCode            = 40003
	PersistenceFailedCode    = 40004
)

const (
	InvalidPayload       = "invalid-payload"
	ConversationNotFound = "conversation-not-found"
	Forbidden            = "forbidden"
	PersistenceFailed    = "persistence-failed"
)

var slugs = map[int32]string{
	InvalidPayloadCode:       InvalidPayload,
	ConversationNotFoundCode: ConversationNotFound,
	ForbiddenCode:            Forbidden,
	PersistenceFailedCode:    PersistenceFailed,
}

// Slug 将错误码转换为ws应答中的错误标识, 未知错误码视为持久化失败
func Slug(c int32) string {
	if s, ok := slugs[c]; ok {
		return s
	}
	return PersistenceFailed
}

func init() {
	code.Register(
		InvalidPayloadCode,
		"消息内容不能为空",
		code.WithAffectStability(false),
	)
	code.Register(
		ConversationNotFoundCode,
		"对话不存在",
		code.WithAffectStability(false),
	)
	code.Register(
		ForbiddenCode,
		"无权访问该对话",
		code.WithAffectStability(false),
	)
	code.Register(
		PersistenceFailedCode,
		"消息保存失败",
		code.WithAffectStability(true),
	)
}
