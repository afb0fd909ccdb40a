package service

import (
	"context"

	"github.com/google/wire"
	"github.com/xh-polaris/chat-relay/biz/adaptor"
	"github.com/xh-polaris/chat-relay/biz/application/dto/core_api"
	"github.com/xh-polaris/chat-relay/biz/domain/hub"
	"github.com/xh-polaris/chat-relay/biz/domain/token"
	"github.com/xh-polaris/chat-relay/biz/infra/util"
	"github.com/xh-polaris/chat-relay/pkg/errorx"
	"github.com/xh-polaris/chat-relay/types/errno"
)

type ISystemService interface {
	SocketToken(ctx context.Context, req *core_api.SocketTokenReq) (*core_api.SocketTokenResp, error)
	OnlineUsers(ctx context.Context, req *core_api.OnlineUsersReq) (*core_api.OnlineUsersResp, error)
}

type SystemService struct {
	Token *token.Service
	Hub   *hub.Hub
}

var SystemServiceSet = wire.NewSet(
	wire.Struct(new(SystemService), "*"),
	wire.Bind(new(ISystemService), new(*SystemService)),
)

// SocketToken 为已登录用户签发建立ws连接用的新令牌
func (s *SystemService) SocketToken(ctx context.Context, _ *core_api.SocketTokenReq) (*core_api.SocketTokenResp, error) {
	claims, err := adaptor.ExtractClaims(ctx, s.Token)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	tok, err := s.Token.Issue(claims.UserId, claims.Email)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	return &core_api.SocketTokenResp{Resp: util.Success(), Token: tok}, nil
}

// OnlineUsers 当前在线用户快照
func (s *SystemService) OnlineUsers(ctx context.Context, _ *core_api.OnlineUsersReq) (*core_api.OnlineUsersResp, error) {
	if _, err := adaptor.ExtractUserId(ctx, s.Token); err != nil {
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	return &core_api.OnlineUsersResp{Resp: util.Success(), Users: s.Hub.Online()}, nil
}
