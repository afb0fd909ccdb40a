package wsx

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/websocket"
)

const DefaultTimeout = 10 * time.Second

var (
	NormalCloseErr   = errors.New("websocket closed normally")
	AbnormalCloseErr = errors.New("websocket closed abnormally")
	NormalCLoseMsg   = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
)

// Handler 升级成功后处理连接, 返回时连接即结束
type Handler func(ctx context.Context, conn *websocket.Conn)

// Upgrader 升级配置, 跨域校验交由cors中间件
var Upgrader = websocket.HertzUpgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *app.RequestContext) bool {
		return true
	},
}

// UpgradeWs 将hertz请求升级为websocket并在当前协程中执行handler
func UpgradeWs(ctx context.Context, c *app.RequestContext, handler Handler) error {
	return Upgrader.Upgrade(c, func(conn *websocket.Conn) {
		handler(ctx, conn)
	})
}

// Classify 将底层错误归类为正常关闭/异常关闭/其他
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, NormalCloseErr), errors.Is(err, AbnormalCloseErr):
		return err
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		return NormalCloseErr
	case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		return AbnormalCloseErr
	default:
		return err
	}
}

func IsNormal(err error) bool {
	return err == nil || errors.Is(err, NormalCloseErr)
}
