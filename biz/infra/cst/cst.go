package cst

// 消息类型
const (
	// KindHuman 用户发送的消息
	KindHuman = "human"
	// KindAssistant 智能助手生成的消息
	KindAssistant = "assistant"
)

// ctx 存储键
const (
	HertzContext = "hertz_context"
)

// ws事件类型
const (
	// EventMessageSend 客户端提交消息
	EventMessageSend = "message:send"
	// EventAckSuffix 应答事件后缀, 应答类型为请求类型+后缀
	EventAckSuffix = ":ack"
	// EventMessageNew 推送给接收方的新消息
	EventMessageNew = "message:new"
	// EventUsersOnline 在线用户集合变化
	EventUsersOnline = "users:online"
	// EventError 无法解析的上行帧
	EventError = "error"
)

// 鉴权
const (
	Authorization = "Authorization"
	Bearer        = "Bearer "
	TokenQuery    = "token"
	ClaimUserId   = "userId"
	ClaimEmail    = "email"
)

// mapper层字段枚举
const (
	Id             = "_id"
	ConversationId = "conversation_id"
	User1Id        = "user1_id"
	User2Id        = "user2_id"
	SenderId       = "sender_id"
	Content        = "content"
	Kind           = "kind"
	CreateTime     = "create_time"
	UpdateTime     = "update_time"

	Set         = "$set"
	SetOnInsert = "$setOnInsert"
	Or          = "$or"
	Max         = "$max"
	In          = "$in"
	LT          = "$lt"
	GT          = "$gt"
)
