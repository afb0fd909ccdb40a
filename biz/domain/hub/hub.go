package hub

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xh-polaris/chat-relay/biz/application/dto/core_api"
	"github.com/xh-polaris/chat-relay/biz/domain/presence"
	"github.com/xh-polaris/chat-relay/biz/domain/token"
	"github.com/xh-polaris/chat-relay/biz/infra/config"
	"github.com/xh-polaris/chat-relay/biz/infra/cst"
	"github.com/xh-polaris/chat-relay/biz/infra/metrics"
	"github.com/xh-polaris/chat-relay/pkg/errorx"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"github.com/xh-polaris/chat-relay/pkg/safego"
	"github.com/xh-polaris/chat-relay/types/errno"
)

// Handler 处理一类上行请求, sender由连接决定, 返回值作为应答数据
type Handler func(ctx context.Context, sender string, data []byte) any

// ErrorResp 无法路由的请求的应答
type ErrorResp struct {
	Error string `json:"error"`
}

type Options struct {
	SendBuffer int
	PingPeriod time.Duration
}

// Hub 管理所有存活连接, 所有上下行消息都经过hub
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*Connection]struct{} // uid -> 该用户的全部连接

	registry *presence.Registry
	verifier token.Verifier
	opts     Options

	hmu      sync.RWMutex
	handlers map[string]Handler
}

func NewHub(c *config.Config, verifier token.Verifier, registry *presence.Registry) *Hub {
	return New(verifier, registry, Options{
		SendBuffer: c.Relay.SendBuffer,
		PingPeriod: c.Relay.PingPeriod(),
	})
}

func New(verifier token.Verifier, registry *presence.Registry, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	return &Hub{
		conns:    make(map[string]map[*Connection]struct{}),
		registry: registry,
		verifier: verifier,
		opts:     opts,
		handlers: make(map[string]Handler),
	}
}

// Handle 注册上行事件的处理函数
func (h *Hub) Handle(typ string, handler Handler) {
	h.hmu.Lock()
	defer h.hmu.Unlock()
	h.handlers[typ] = handler
}

// Authenticate 校验令牌, 失败时返回鉴权错误
func (h *Hub) Authenticate(tok string) (string, error) {
	uid, ok := h.verifier.Verify(tok)
	if !ok {
		metrics.AttachRefused.Inc()
		return "", errorx.New(errno.UnAuthErrCode)
	}
	return uid, nil
}

// Attach 校验令牌并登记连接, 用户首个连接上线时向所有连接广播在线列表
func (h *Hub) Attach(ctx context.Context, t Transport, tok string) (*Connection, error) {
	uid, err := h.Authenticate(tok)
	if err != nil {
		return nil, err
	}
	c := &Connection{
		id:        uuid.NewString(),
		uid:       uid,
		hub:       h,
		transport: t,
		send:      make(chan []byte, h.opts.SendBuffer),
		done:      make(chan struct{}),
	}
	h.mu.Lock()
	set, ok := h.conns[uid]
	if !ok {
		set = make(map[*Connection]struct{})
		h.conns[uid] = set
	}
	set[c] = struct{}{}
	first := h.registry.Register(uid)
	if first {
		h.broadcastPresenceLocked()
	}
	h.mu.Unlock()
	metrics.Connections.Inc()
	// 登记完成后再启动写协程, 写失败触发的Detach才能找到该连接
	safego.Go(ctx, func() { c.writeLoop(h.opts.PingPeriod) })

	logs.CtxInfof(ctx, "[hub] [Attach] uid=%s conn=%s first=%v", uid, c.id, first)
	return c, nil
}

// Detach 移除连接, 用户最后一个连接断开时向剩余连接广播在线列表, 可重复调用
func (h *Hub) Detach(c *Connection) {
	if c == nil || !c.detached.CompareAndSwap(false, true) {
		return
	}
	h.mu.Lock()
	registered := false
	if set, ok := h.conns[c.uid]; ok {
		if _, registered = set[c]; registered {
			delete(set, c)
			if len(set) == 0 {
				delete(h.conns, c.uid)
			}
		}
	}
	// 未登记的连接不能扣减同一用户其他连接的计数
	absent := registered && h.registry.Deregister(c.uid)
	if absent {
		h.broadcastPresenceLocked()
	}
	h.mu.Unlock()
	// 关闭transport可能阻塞到写超时, 不能持有hub锁
	c.close()

	if registered {
		metrics.Connections.Dec()
	}
	logs.Infof("[hub] [Detach] uid=%s conn=%s last=%v", c.uid, c.id, absent)
}

// broadcastPresenceLocked 调用方需持有h.mu, 保证广播顺序与在线状态变化顺序一致
func (h *Hub) broadcastPresenceLocked() {
	users := h.registry.Snapshot()
	metrics.OnlineUsers.Set(float64(len(users)))
	frame, err := Encode(cst.EventUsersOnline, "", &core_api.OnlineEvent{Users: users})
	if err != nil {
		logs.Errorf("[hub] encode presence err:%v", err)
		return
	}
	for _, set := range h.conns {
		for c := range set {
			c.enqueue(frame)
		}
	}
}

// SendTo 向用户的全部存活连接投递事件, 返回成功入队的连接数, 用户离线时为0
func (h *Hub) SendTo(uid, typ string, data any) (int, error) {
	frame, err := Encode(typ, "", data)
	if err != nil {
		return 0, err
	}
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.conns[uid]))
	for c := range h.conns[uid] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.enqueue(frame) {
			delivered++
		}
	}
	return delivered, nil
}

// Submit 处理连接上的一帧请求, 应答只发回该连接
func (h *Hub) Submit(ctx context.Context, c *Connection, raw []byte) {
	f, err := Decode(raw)
	if err != nil || f.Type == "" {
		logs.CtxInfof(ctx, "[hub] [Submit] undecodable frame from %s", c.uid)
		c.Reply(cst.EventError, "", &ErrorResp{Error: errno.InvalidPayload})
		return
	}
	h.hmu.RLock()
	handler, ok := h.handlers[f.Type]
	h.hmu.RUnlock()
	ack := f.Type + cst.EventAckSuffix
	if !ok {
		c.Reply(ack, f.Id, &ErrorResp{Error: errno.InvalidPayload})
		return
	}
	c.Reply(ack, f.Id, handler(ctx, c.uid, f.Data))
}

// Online 当前在线用户
func (h *Hub) Online() []string {
	return h.registry.Snapshot()
}

// ConnectionsOf 用户当前的连接数
func (h *Hub) ConnectionsOf(uid string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[uid])
}

// CloseAll 断开全部连接, 用于进程退出
func (h *Hub) CloseAll() {
	h.mu.RLock()
	all := make([]*Connection, 0)
	for _, set := range h.conns {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.Detach(c)
	}
}
