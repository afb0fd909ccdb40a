package conversation

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Conversation 两个用户之间唯一的一段对话
// User1Id < User2Id, 即以规范化后的用户对作为自然键
type Conversation struct {
	ConversationId bson.ObjectID `json:"conversation_id" bson:"_id"`
	User1Id        string        `json:"user1_id" bson:"user1_id"`
	User2Id        string        `json:"user2_id" bson:"user2_id"`
	CreateTime     time.Time     `json:"create_time" bson:"create_time"`
	UpdateTime     time.Time     `json:"update_time" bson:"update_time"` // 最近一条消息的时间
}

// Canonicalize 将无序用户对规范为(较小, 较大)
func Canonicalize(u, v string) (string, string) {
	if v < u {
		return v, u
	}
	return u, v
}

// HasParticipant uid是否为对话参与者
func (c *Conversation) HasParticipant(uid string) bool {
	return uid != "" && (c.User1Id == uid || c.User2Id == uid)
}

// Other 返回参与者中不等于uid的那一方, uid不是参与者时ok为false
func (c *Conversation) Other(uid string) (other string, ok bool) {
	switch uid {
	case c.User1Id:
		return c.User2Id, uid != ""
	case c.User2Id:
		return c.User1Id, uid != ""
	default:
		return "", false
	}
}
