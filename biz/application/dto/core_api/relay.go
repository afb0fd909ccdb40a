package core_api

// SendMessageReq ws中message:send事件的载荷, 发送者由连接决定
type SendMessageReq struct {
	ConversationId string `json:"conversationId"`
	Content        string `json:"content"`
}

// SendMessageResp message:send的应答, Message与Error互斥
type SendMessageResp struct {
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// MessageEvent message:new推送载荷
type MessageEvent struct {
	Message *Message `json:"message"`
}

// OnlineEvent users:online推送载荷
type OnlineEvent struct {
	Users []string `json:"users"`
}
