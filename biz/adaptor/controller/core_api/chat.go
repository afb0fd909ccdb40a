package core_api

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/xh-polaris/chat-relay/pkg/errorx"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"github.com/xh-polaris/chat-relay/provider"
)

// Chat 建立ws连接, 令牌通过token参数或Authorization头传递
// @router /ws [GET]
func Chat(ctx context.Context, c *app.RequestContext) {
	p := provider.Get()
	err := p.ChatService.Chat(ctx, c)
	if err == nil {
		return
	}
	// 鉴权失败时尚未升级, 直接拒绝握手; 升级失败的响应已由upgrader写入
	if se, ok := errorx.FromStatusError(err); ok {
		c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"code": se.Code(), "msg": se.Msg()})
	}
	logs.CtxInfof(ctx, "[controller] [Chat] websocket refused: %s", errorx.ErrorWithoutStack(err))
}
