package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xh-polaris/chat-relay/biz/domain/presence"
	"github.com/xh-polaris/chat-relay/biz/infra/cst"
	"github.com/xh-polaris/chat-relay/pkg/errorx"
	"github.com/xh-polaris/chat-relay/types/errno"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
	marker  = "test:marker"
)

type fakeVerifier map[string]string

func (v fakeVerifier) Verify(tok string) (string, bool) {
	uid, ok := v[tok]
	return uid, ok
}

type fakeTransport struct {
	mu       sync.Mutex
	frames   []*Frame
	closed   bool
	fail     bool
	failPing bool
	block    chan struct{}
}

func (f *fakeTransport) WriteText(data []byte) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("closed")
	}
	if f.fail {
		return errors.New("broken pipe")
	}
	frame, err := Decode(data)
	if err != nil {
		return err
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeTransport) Ping([]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPing {
		return errors.New("ping timeout")
	}
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) all() []*Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Frame(nil), f.frames...)
}

func (f *fakeTransport) ofType(typ string) []*Frame {
	var out []*Frame
	for _, fr := range f.all() {
		if fr.Type == typ {
			out = append(out, fr)
		}
	}
	return out
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func onlineUsers(t *testing.T, fr *Frame) []string {
	var ev struct {
		Users []string `json:"users"`
	}
	require.NoError(t, sonic.Unmarshal(fr.Data, &ev))
	return ev.Users
}

func newTestHub() (*Hub, *presence.Registry) {
	reg := presence.NewRegistry()
	v := fakeVerifier{"tx": "X", "ty": "Y", "ta": "A", "tb": "B"}
	return New(v, reg, Options{SendBuffer: 64}), reg
}

func attach(t *testing.T, h *Hub, tok string) (*Connection, *fakeTransport) {
	ft := &fakeTransport{}
	c, err := h.Attach(context.Background(), ft, tok)
	require.NoError(t, err)
	return c, ft
}

// flush 通过marker确认之前入队的帧都已写出, 单个连接内的帧保持入队顺序
func flush(t *testing.T, h *Hub, uid string, fts ...*fakeTransport) {
	want := make([]int, len(fts))
	for i, ft := range fts {
		want[i] = len(ft.ofType(marker)) + 1
	}
	n, err := h.SendTo(uid, marker, nil)
	require.NoError(t, err)
	require.Equal(t, len(fts), n)
	for i, ft := range fts {
		require.Eventually(t, func() bool { return len(ft.ofType(marker)) >= want[i] }, waitFor, tick)
	}
}

func TestAttachRefusesInvalidToken(t *testing.T) {
	h, reg := newTestHub()
	ft := &fakeTransport{}
	c, err := h.Attach(context.Background(), ft, "bogus")
	assert.Nil(t, c)
	require.Error(t, err)
	assert.Equal(t, int32(errno.UnAuthErrCode), errorx.CodeOf(err))
	assert.Empty(t, reg.Snapshot())
	assert.Empty(t, ft.all())
}

func TestPresenceBroadcasts(t *testing.T) {
	h, reg := newTestHub()

	x1, fx1 := attach(t, h, "tx")
	require.Eventually(t, func() bool { return len(fx1.ofType(cst.EventUsersOnline)) == 1 }, waitFor, tick)
	assert.Equal(t, []string{"X"}, onlineUsers(t, fx1.ofType(cst.EventUsersOnline)[0]))

	_, fy := attach(t, h, "ty")
	require.Eventually(t, func() bool { return len(fy.ofType(cst.EventUsersOnline)) == 1 }, waitFor, tick)
	require.Eventually(t, func() bool { return len(fx1.ofType(cst.EventUsersOnline)) == 2 }, waitFor, tick)
	assert.Equal(t, []string{"X", "Y"}, onlineUsers(t, fy.ofType(cst.EventUsersOnline)[0]))

	// X的第二个连接不产生广播
	x2, fx2 := attach(t, h, "tx")
	flush(t, h, "Y", fy)
	flush(t, h, "X", fx1, fx2)
	assert.Len(t, fy.ofType(cst.EventUsersOnline), 1)
	assert.Len(t, fx1.ofType(cst.EventUsersOnline), 2)
	assert.Empty(t, fx2.ofType(cst.EventUsersOnline))
	assert.Equal(t, 2, reg.Connections("X"))

	// 断开X的其中一个连接不产生广播
	h.Detach(x1)
	assert.True(t, fx1.isClosed())
	flush(t, h, "Y", fy)
	assert.Len(t, fy.ofType(cst.EventUsersOnline), 1)
	assert.True(t, reg.Online("X"))

	// 断开X的最后一个连接广播一次离线
	h.Detach(x2)
	require.Eventually(t, func() bool { return len(fy.ofType(cst.EventUsersOnline)) == 2 }, waitFor, tick)
	assert.Equal(t, []string{"Y"}, onlineUsers(t, fy.ofType(cst.EventUsersOnline)[1]))

	// 重复断开是空操作
	h.Detach(x2)
	h.Detach(x1)
	flush(t, h, "Y", fy)
	assert.Len(t, fy.ofType(cst.EventUsersOnline), 2)
	assert.Equal(t, 0, reg.Connections("X"))
	assert.Equal(t, []string{"Y"}, h.Online())
}

func TestSendToFanOut(t *testing.T) {
	h, _ := newTestHub()
	_, fa := attach(t, h, "ta")
	_, fb1 := attach(t, h, "tb")
	_, fb2 := attach(t, h, "tb")

	n, err := h.SendTo("B", cst.EventMessageNew, map[string]string{"content": "hi"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, ft := range []*fakeTransport{fb1, fb2} {
		require.Eventually(t, func() bool { return len(ft.ofType(cst.EventMessageNew)) == 1 }, waitFor, tick)
	}
	flush(t, h, "A", fa)
	assert.Empty(t, fa.ofType(cst.EventMessageNew))

	n, err = h.SendTo("offline", cst.EventMessageNew, nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitRoutesByType(t *testing.T) {
	h, _ := newTestHub()
	h.Handle("echo", func(_ context.Context, sender string, data []byte) any {
		return map[string]string{"sender": sender, "data": string(data)}
	})
	c, ft := attach(t, h, "ta")

	h.Submit(context.Background(), c, []byte(`{"type":"echo","id":"r1","data":{"senderId":"B"}}`))
	require.Eventually(t, func() bool { return len(ft.ofType("echo"+cst.EventAckSuffix)) == 1 }, waitFor, tick)
	ack := ft.ofType("echo" + cst.EventAckSuffix)[0]
	assert.Equal(t, "r1", ack.Id)
	var body map[string]string
	require.NoError(t, sonic.Unmarshal(ack.Data, &body))
	// 发送者来自连接而不是载荷
	assert.Equal(t, "A", body["sender"])

	h.Submit(context.Background(), c, []byte(`{"type":"nope","id":"r2"}`))
	require.Eventually(t, func() bool { return len(ft.ofType("nope"+cst.EventAckSuffix)) == 1 }, waitFor, tick)
	var errResp ErrorResp
	require.NoError(t, sonic.Unmarshal(ft.ofType("nope"+cst.EventAckSuffix)[0].Data, &errResp))
	assert.Equal(t, errno.InvalidPayload, errResp.Error)

	h.Submit(context.Background(), c, []byte(`not json`))
	require.Eventually(t, func() bool { return len(ft.ofType(cst.EventError)) == 1 }, waitFor, tick)
}

func TestReplyAfterDetachIsNoop(t *testing.T) {
	h, _ := newTestHub()
	c, ft := attach(t, h, "ta")
	h.Detach(c)
	assert.False(t, c.Alive())
	assert.False(t, c.Reply("late", "1", nil))
	assert.Empty(t, ft.ofType("late"))
}

func TestWriteFailureDetaches(t *testing.T) {
	h, reg := newTestHub()
	ft := &fakeTransport{fail: true}
	c, err := h.Attach(context.Background(), ft, "ta")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return !c.Alive() }, waitFor, tick)
	assert.False(t, reg.Online("A"))
	assert.Zero(t, h.ConnectionsOf("A"))
}

func TestSlowConsumerDetached(t *testing.T) {
	reg := presence.NewRegistry()
	h := New(fakeVerifier{"ta": "A"}, reg, Options{SendBuffer: 1})
	ft := &fakeTransport{block: make(chan struct{})}
	defer close(ft.block)
	c, err := h.Attach(context.Background(), ft, "ta")
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		_, _ = h.SendTo("A", cst.EventMessageNew, i)
	}
	require.Eventually(t, func() bool { return !c.Alive() }, waitFor, tick)
	assert.False(t, reg.Online("A"))
}

func TestConcurrentAttachDetach(t *testing.T) {
	reg := presence.NewRegistry()
	v := fakeVerifier{}
	for i := 0; i < 8; i++ {
		v[fmt.Sprintf("t%d", i)] = fmt.Sprintf("u%d", i)
	}
	h := New(v, reg, Options{SendBuffer: 1024})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for j := 0; j < 10; j++ {
			wg.Add(1)
			go func(tok string) {
				defer wg.Done()
				c, err := h.Attach(context.Background(), &fakeTransport{}, tok)
				if !assert.NoError(t, err) {
					return
				}
				h.Detach(c)
				h.Detach(c)
			}(fmt.Sprintf("t%d", i))
		}
	}
	wg.Wait()
	assert.Empty(t, reg.Snapshot())
	for i := 0; i < 8; i++ {
		assert.Zero(t, h.ConnectionsOf(fmt.Sprintf("u%d", i)))
	}
}

func TestCloseAll(t *testing.T) {
	h, reg := newTestHub()
	_, fa := attach(t, h, "ta")
	_, fb := attach(t, h, "tb")
	h.CloseAll()
	assert.True(t, fa.isClosed())
	assert.True(t, fb.isClosed())
	assert.Empty(t, reg.Snapshot())
}

func TestPingFailureRightAfterAttach(t *testing.T) {
	reg := presence.NewRegistry()
	h := New(fakeVerifier{"ta": "A"}, reg, Options{SendBuffer: 64, PingPeriod: time.Microsecond})
	_, err := h.Attach(context.Background(), &fakeTransport{}, "ta")
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		c, err := h.Attach(context.Background(), &fakeTransport{failPing: true}, "ta")
		require.NoError(t, err)
		require.Eventually(t, func() bool { return !c.Alive() }, waitFor, tick)
		assert.Equal(t, 1, h.ConnectionsOf("A"))
		assert.Equal(t, 1, reg.Connections("A"))
	}
	assert.True(t, reg.Online("A"))
}

func TestDetachUnregisteredConnection(t *testing.T) {
	h, reg := newTestHub()
	attach(t, h, "ta")
	ghost := &Connection{
		id:        "ghost",
		uid:       "A",
		hub:       h,
		transport: &fakeTransport{},
		send:      make(chan []byte, 1),
		done:      make(chan struct{}),
	}
	h.Detach(ghost)
	assert.Equal(t, 1, reg.Connections("A"))
	assert.Equal(t, 1, h.ConnectionsOf("A"))
	assert.True(t, reg.Online("A"))
}
