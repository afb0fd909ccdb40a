package wsx

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hertz-contrib/websocket"
	"github.com/xh-polaris/chat-relay/pkg/logs"
)

// classifyErr 将错误归类, 关闭类错误会标记连接已关闭
func (ws *HZWSClient) classifyErr(err error) error {
	err = Classify(err)
	switch {
	case err == nil:
		return nil
	case err == NormalCloseErr:
		ws.closed.Store(true)
	case err == AbnormalCloseErr:
		// 为了避免内部错误被隐藏, 此处日志记录错误原因
		logs.Errorf("[HZWSClient] close error: %v", err)
		ws.closed.Store(true)
	}
	return err
}

// HZWSClient 是基于hertz-contrib/websocket的工具类, 封装了常见读写操作, 简化了异常处理
// 最佳实践是单线程读, 所以此处不设读锁, 若并发读, 需自行维护读锁
// 一个client和一个conn此处设计为一一对应, 不支持更改client的conn
type HZWSClient struct {
	// 写锁
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
	// 连接是否关闭
	closed atomic.Bool
}

// NewHZWSClient 生成管理传入参数的client
func NewHZWSClient(conn *websocket.Conn, writeTimeout time.Duration) *HZWSClient {
	if writeTimeout <= 0 {
		writeTimeout = DefaultTimeout
	}
	return &HZWSClient{conn: conn, writeTimeout: writeTimeout}
}

// Keepalive 设置读上限与心跳等待, 每收到pong顺延读超时
func (ws *HZWSClient) Keepalive(maxSize int64, pongWait time.Duration) {
	if maxSize > 0 {
		ws.conn.SetReadLimit(maxSize)
	}
	if pongWait <= 0 {
		return
	}
	_ = ws.conn.SetReadDeadline(time.Now().Add(pongWait))
	ws.conn.SetPongHandler(func(string) error {
		return ws.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// Read 读取一条消息, 同时返回错误
func (ws *HZWSClient) Read() (mt int, data []byte, err error) {
	mt, data, err = ws.conn.ReadMessage()
	return mt, data, ws.classifyErr(err)
}

// Write 写入指定类型消息, 受写超时约束
func (ws *HZWSClient) Write(mt int, data []byte) (err error) {
	if ws.closed.Load() {
		return NormalCloseErr
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	_ = ws.conn.SetWriteDeadline(time.Now().Add(ws.writeTimeout))
	err = ws.conn.WriteMessage(mt, data)
	return ws.classifyErr(err)
}

// WriteText 写入文本消息
func (ws *HZWSClient) WriteText(data []byte) (err error) {
	return ws.Write(websocket.TextMessage, data)
}

// Ping 写入心跳消息
func (ws *HZWSClient) Ping(data []byte) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.classifyErr(ws.conn.WriteControl(websocket.PingMessage, data, time.Now().Add(ws.writeTimeout)))
}

// Close 关闭连接, 可重复调用
func (ws *HZWSClient) Close() error {
	if !ws.closed.CompareAndSwap(false, true) {
		return nil
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := ws.conn.WriteControl(websocket.CloseMessage, NormalCLoseMsg, time.Now().Add(DefaultTimeout)); err != nil {
		logs.Errorf("[HZWSClient] send close message error: %v", err)
	}
	return ws.conn.Close()
}

func (ws *HZWSClient) IsClosed() bool {
	return ws.closed.Load()
}
