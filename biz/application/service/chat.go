package service

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/wire"
	"github.com/hertz-contrib/websocket"
	"github.com/xh-polaris/chat-relay/biz/adaptor"
	"github.com/xh-polaris/chat-relay/biz/domain/hub"
	"github.com/xh-polaris/chat-relay/biz/domain/relay"
	"github.com/xh-polaris/chat-relay/biz/infra/config"
	"github.com/xh-polaris/chat-relay/biz/infra/cst"
	"github.com/xh-polaris/chat-relay/pkg/errorx"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"github.com/xh-polaris/chat-relay/pkg/wsx"
)

type IChatService interface {
	Chat(ctx context.Context, c *app.RequestContext) error
}

// ChatService 负责ws连接的整个生命周期
type ChatService struct {
	Hub            *hub.Hub
	writeTimeout   time.Duration
	pongWait       time.Duration
	maxMessageSize int64
}

var ChatServiceSet = wire.NewSet(
	NewChatService,
	wire.Bind(new(IChatService), new(*ChatService)),
)

// NewChatService 将上行事件注册到hub
func NewChatService(c *config.Config, h *hub.Hub, r *relay.Relay) *ChatService {
	h.Handle(cst.EventMessageSend, r.HandleSend)
	return &ChatService{
		Hub:            h,
		writeTimeout:   c.Relay.WriteTimeout,
		pongWait:       c.Relay.PongWait,
		maxMessageSize: c.Relay.MaxMessageSize,
	}
}

// Chat 令牌校验通过后才升级连接, 无效令牌不会建立ws
func (s *ChatService) Chat(ctx context.Context, c *app.RequestContext) error {
	tok := adaptor.ExtractToken(c)
	if _, err := s.Hub.Authenticate(tok); err != nil {
		return err
	}
	return wsx.UpgradeWs(ctx, c, func(ctx context.Context, conn *websocket.Conn) {
		s.serve(ctx, conn, tok)
	})
}

// serve 当前协程即连接的读协程, 返回时连接结束
func (s *ChatService) serve(ctx context.Context, conn *websocket.Conn, tok string) {
	client := wsx.NewHZWSClient(conn, s.writeTimeout)
	client.Keepalive(s.maxMessageSize, s.pongWait)

	hc, err := s.Hub.Attach(ctx, client, tok)
	if err != nil {
		// 升级期间令牌过期
		logs.CtxInfof(ctx, "[chat] attach refused: %s", errorx.ErrorWithoutStack(err))
		_ = client.Close()
		return
	}
	defer s.Hub.Detach(hc)

	for {
		mt, data, err := client.Read()
		if err != nil {
			if !wsx.IsNormal(err) {
				logs.CtxInfof(ctx, "[chat] uid=%s conn=%s read err:%s", hc.UserId(), hc.Id(), errorx.ErrorWithoutStack(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		s.Hub.Submit(ctx, hc, data)
	}
}
