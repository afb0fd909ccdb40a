package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/xh-polaris/chat-relay/biz/adaptor"
	"github.com/xh-polaris/chat-relay/biz/application/dto/basic"
	"github.com/xh-polaris/chat-relay/biz/domain/token"
	"github.com/xh-polaris/chat-relay/biz/infra/mapper/conversation"
	mmsg "github.com/xh-polaris/chat-relay/biz/infra/mapper/message"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var errStoreDown = errors.New("store unavailable")

// memConversations 以规范化的参与者对作为唯一键, 模拟存储上的唯一索引
type memConversations struct {
	mu      sync.Mutex
	byPair  map[[2]string]*conversation.Conversation
	creates int
	listErr error
}

func newMemConversations() *memConversations {
	return &memConversations{byPair: map[[2]string]*conversation.Conversation{}}
}

func (m *memConversations) FindOrCreate(_ context.Context, u, v string) (*conversation.Conversation, error) {
	u1, u2 := conversation.Canonicalize(u, v)
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byPair[[2]string{u1, u2}]; ok {
		return c, nil
	}
	now := time.Now()
	c := &conversation.Conversation{ConversationId: bson.NewObjectID(), User1Id: u1, User2Id: u2, CreateTime: now, UpdateTime: now}
	m.byPair[[2]string{u1, u2}] = c
	m.creates++
	return c, nil
}

func (m *memConversations) FindById(_ context.Context, cid string) (*conversation.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byPair {
		if c.ConversationId.Hex() == cid {
			return c, nil
		}
	}
	return nil, conversation.ErrNotFound
}

func (m *memConversations) ListConversations(_ context.Context, uid string, _ *basic.Page) ([]*conversation.Conversation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, false, m.listErr
	}
	var out []*conversation.Conversation
	for _, c := range m.byPair {
		if c.HasParticipant(uid) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdateTime.After(out[j].UpdateTime) })
	return out, false, nil
}

func (m *memConversations) Touch(_ context.Context, cid string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byPair {
		if c.ConversationId.Hex() == cid && at.After(c.UpdateTime) {
			c.UpdateTime = at
		}
	}
	return nil
}

type memMessages struct {
	mu   sync.Mutex
	msgs []*mmsg.Message
}

func (m *memMessages) InsertOne(_ context.Context, msg *mmsg.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *memMessages) ListMessage(_ context.Context, cid string) ([]*mmsg.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*mmsg.Message
	for _, msg := range m.msgs {
		if msg.ConversationId.Hex() == cid {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreateTime.Before(out[j].CreateTime) })
	return out, nil
}

func (m *memMessages) LastMessages(_ context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*mmsg.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[bson.ObjectID]*mmsg.Message)
	for _, id := range ids {
		for _, msg := range m.msgs {
			if msg.ConversationId == id && (out[id] == nil || !msg.CreateTime.Before(out[id].CreateTime)) {
				out[id] = msg
			}
		}
	}
	return out, nil
}

func newTokens() *token.Service {
	s, err := token.New("test-secret", time.Hour)
	if err != nil {
		panic(err)
	}
	return s
}

// asUser 构造携带对应用户令牌的请求上下文
func asUser(s *token.Service, uid string) context.Context {
	c := app.NewContext(0)
	if uid != "" {
		tok, err := s.Issue(uid, uid+"@example.com")
		if err != nil {
			panic(err)
		}
		c.Request.Header.Set("Authorization", "Bearer "+tok)
	}
	return adaptor.InjectContext(context.Background(), c)
}
