package message

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Message 对话中的一条消息, 创建后不再修改
type Message struct {
	MessageId      bson.ObjectID `json:"message_id" bson:"_id"`                  // 主键
	ConversationId bson.ObjectID `json:"conversation_id" bson:"conversation_id"` // 归属的对话id
	SenderId       string        `json:"sender_id" bson:"sender_id"`             // 发送者
	Content        string        `json:"content" bson:"content"`                 // 消息内容
	Kind           string        `json:"kind" bson:"kind"`                       // human/assistant
	CreateTime     time.Time     `json:"create_time" bson:"create_time"`         // 创建时间
}
