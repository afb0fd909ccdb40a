package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xh-polaris/chat-relay/biz/infra/metrics"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"github.com/xh-polaris/chat-relay/pkg/safego"
)

// Transport 连接的底层通道, 只有hub可以写入或关闭
type Transport interface {
	WriteText(data []byte) error
	Ping(data []byte) error
	Close() error
}

// Connection 一条已认证的连接, 归属于唯一用户
type Connection struct {
	id        string
	uid       string
	hub       *Hub
	transport Transport

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	detached  atomic.Bool
}

func (c *Connection) Id() string { return c.id }

// UserId 连接绑定的用户, 来自握手时的令牌
func (c *Connection) UserId() string { return c.uid }

// Alive 连接是否仍然存活
func (c *Connection) Alive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Done 连接关闭时关闭
func (c *Connection) Done() <-chan struct{} { return c.done }

// Reply 向该连接发送对请求id的应答, 连接已关闭时为空操作
func (c *Connection) Reply(typ, id string, data any) bool {
	frame, err := Encode(typ, id, data)
	if err != nil {
		logs.Errorf("[hub] [Reply] encode %s err:%v", typ, err)
		return false
	}
	return c.enqueue(frame)
}

// enqueue 非阻塞写入发送队列, 队列满说明对端消费过慢, 断开该连接
func (c *Connection) enqueue(frame []byte) bool {
	if !c.Alive() {
		return false
	}
	select {
	case c.send <- frame:
		return true
	case <-c.done:
		return false
	default:
		logs.Errorf("[hub] connection %s of %s is too slow, detaching", c.id, c.uid)
		metrics.SlowConsumers.Inc()
		// 调用方可能持有hub锁, 异步断开
		safego.Go(context.Background(), func() { c.hub.Detach(c) })
		return false
	}
}

// writeLoop 每个连接一个写协程, 串行写入transport并定期发送心跳
func (c *Connection) writeLoop(pingPeriod time.Duration) {
	var tick <-chan time.Time
	if pingPeriod > 0 {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			if err := c.transport.WriteText(frame); err != nil {
				logs.Infof("[hub] write to %s failed: %v", c.id, err)
				c.hub.Detach(c)
				return
			}
		case <-tick:
			if err := c.transport.Ping(nil); err != nil {
				c.hub.Detach(c)
				return
			}
		}
	}
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.transport.Close(); err != nil {
			logs.Infof("[hub] close transport %s: %v", c.id, err)
		}
	})
}
