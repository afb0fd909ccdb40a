package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xh-polaris/chat-relay/biz/application/dto/basic"
	"github.com/xh-polaris/chat-relay/biz/infra/mapper/conversation"
	mmsg "github.com/xh-polaris/chat-relay/biz/infra/mapper/message"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var errStoreDown = errors.New("store unavailable")

type fakeConversations struct {
	mu       sync.Mutex
	byId     map[string]*conversation.Conversation
	findErr  error
	touched  map[string]time.Time
	touchErr error
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{byId: map[string]*conversation.Conversation{}, touched: map[string]time.Time{}}
}

func (f *fakeConversations) add(u, v string) *conversation.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &conversation.Conversation{ConversationId: bson.NewObjectID(), User1Id: u, User2Id: v, CreateTime: time.Now(), UpdateTime: time.Now()}
	f.byId[c.ConversationId.Hex()] = c
	return c
}

func (f *fakeConversations) FindOrCreate(_ context.Context, u, v string) (*conversation.Conversation, error) {
	u1, u2 := conversation.Canonicalize(u, v)
	f.mu.Lock()
	for _, c := range f.byId {
		if c.User1Id == u1 && c.User2Id == u2 {
			f.mu.Unlock()
			return c, nil
		}
	}
	f.mu.Unlock()
	return f.add(u1, u2), nil
}

func (f *fakeConversations) FindById(_ context.Context, cid string) (*conversation.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	c, ok := f.byId[cid]
	if !ok {
		return nil, conversation.ErrNotFound
	}
	return c, nil
}

func (f *fakeConversations) ListConversations(context.Context, string, *basic.Page) ([]*conversation.Conversation, bool, error) {
	return nil, false, nil
}

func (f *fakeConversations) Touch(_ context.Context, cid string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched[cid] = at
	return nil
}

type fakeMessages struct {
	mu        sync.Mutex
	msgs      []*mmsg.Message
	insertErr error
	hang      bool
}

func (f *fakeMessages) InsertOne(ctx context.Context, msg *mmsg.Message) error {
	if f.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeMessages) ListMessage(_ context.Context, cid string) ([]*mmsg.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*mmsg.Message
	for _, m := range f.msgs {
		if m.ConversationId.Hex() == cid {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) LastMessages(context.Context, []bson.ObjectID) (map[bson.ObjectID]*mmsg.Message, error) {
	return map[bson.ObjectID]*mmsg.Message{}, nil
}

func (f *fakeMessages) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

type push struct {
	uid  string
	typ  string
	data any
}

type fakePusher struct {
	mu     sync.Mutex
	pushes []push
	n      int
	err    error
	panics bool
}

func (f *fakePusher) SendTo(uid, typ string, data any) (int, error) {
	if f.panics {
		panic("push exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, push{uid: uid, typ: typ, data: data})
	return f.n, f.err
}

func (f *fakePusher) all() []push {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]push(nil), f.pushes...)
}
