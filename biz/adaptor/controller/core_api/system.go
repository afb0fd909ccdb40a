package core_api

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/xh-polaris/chat-relay/biz/adaptor"
	"github.com/xh-polaris/chat-relay/biz/application/dto/core_api"
	"github.com/xh-polaris/chat-relay/provider"
)

// SocketToken 签发ws令牌
// @router /auth/socket_token [GET]
func SocketToken(ctx context.Context, c *app.RequestContext) {
	var req core_api.SocketTokenReq
	p := provider.Get()
	resp, err := p.SystemService.SocketToken(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// OnlineUsers 在线用户
// @router /presence/online [GET]
func OnlineUsers(ctx context.Context, c *app.RequestContext) {
	var req core_api.OnlineUsersReq
	p := provider.Get()
	resp, err := p.SystemService.OnlineUsers(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
