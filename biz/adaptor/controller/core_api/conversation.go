package core_api

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/xh-polaris/chat-relay/biz/adaptor"
	"github.com/xh-polaris/chat-relay/biz/application/dto/core_api"
	"github.com/xh-polaris/chat-relay/provider"
)

// StartConversation 查找或创建与对方的对话
// @router /conversation/start [POST]
func StartConversation(ctx context.Context, c *app.RequestContext) {
	var err error
	var req core_api.StartConversationReq
	err = c.BindAndValidate(&req)
	if err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, err)
		return
	}

	p := provider.Get()
	resp, err := p.ConversationService.StartConversation(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// ListConversation 分页获取对话列表
// @router /conversation/list [GET]
func ListConversation(ctx context.Context, c *app.RequestContext) {
	var err error
	var req core_api.ListConversationReq
	err = c.BindAndValidate(&req)
	if err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, err)
		return
	}

	p := provider.Get()
	resp, err := p.ConversationService.ListConversation(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// ListMessage 获取对话历史消息
// @router /conversation/messages [GET]
func ListMessage(ctx context.Context, c *app.RequestContext) {
	var err error
	var req core_api.ListMessageReq
	err = c.BindAndValidate(&req)
	if err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, err)
		return
	}

	p := provider.Get()
	resp, err := p.ConversationService.ListMessage(adaptor.InjectContext(ctx, c), &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
