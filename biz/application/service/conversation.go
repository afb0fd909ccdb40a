package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/wire"
	"github.com/xh-polaris/chat-relay/biz/adaptor"
	"github.com/xh-polaris/chat-relay/biz/application/dto/core_api"
	dm "github.com/xh-polaris/chat-relay/biz/domain/message"
	"github.com/xh-polaris/chat-relay/biz/domain/token"
	"github.com/xh-polaris/chat-relay/biz/infra/mapper/conversation"
	mmsg "github.com/xh-polaris/chat-relay/biz/infra/mapper/message"
	"github.com/xh-polaris/chat-relay/biz/infra/util"
	"github.com/xh-polaris/chat-relay/pkg/errorx"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"github.com/xh-polaris/chat-relay/types/errno"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type IConversationService interface {
	StartConversation(ctx context.Context, req *core_api.StartConversationReq) (*core_api.StartConversationResp, error)
	ListConversation(ctx context.Context, req *core_api.ListConversationReq) (*core_api.ListConversationResp, error)
	ListMessage(ctx context.Context, req *core_api.ListMessageReq) (*core_api.ListMessageResp, error)
}

type ConversationService struct {
	ConversationMapper conversation.MongoMapper
	MessageMapper      mmsg.MongoMapper
	Token              *token.Service
}

var ConversationServiceSet = wire.NewSet(
	wire.Struct(new(ConversationService), "*"),
	wire.Bind(new(IConversationService), new(*ConversationService)),
)

// StartConversation 查找或创建与对方的唯一对话
func (s *ConversationService) StartConversation(ctx context.Context, req *core_api.StartConversationReq) (*core_api.StartConversationResp, error) {
	// 鉴权
	uid, err := adaptor.ExtractUserId(ctx, s.Token)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	other := strings.TrimSpace(req.GetOtherUserId())
	if other == "" || other == uid {
		return nil, errorx.New(errno.ConversationInvalidPeerErr)
	}

	conv, err := s.ConversationMapper.FindOrCreate(ctx, uid, other)
	if err != nil {
		logs.CtxErrorf(ctx, "[conversation] [Start] find or create error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationCreateErrCode)
	}
	return &core_api.StartConversationResp{Resp: util.Success(), ConversationId: conv.ConversationId.Hex(), OtherUserId: other}, nil
}

// ListConversation 按最近活跃时间倒序列出对话, 附带最后一条消息
func (s *ConversationService) ListConversation(ctx context.Context, req *core_api.ListConversationReq) (*core_api.ListConversationResp, error) {
	// 鉴权
	uid, err := adaptor.ExtractUserId(ctx, s.Token)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	conversations, hasMore, err := s.ConversationMapper.ListConversations(ctx, uid, req.GetPage())
	if err != nil {
		logs.CtxErrorf(ctx, "[conversation] [List] list conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationListErrCode)
	}
	ids := make([]bson.ObjectID, len(conversations))
	for i, conv := range conversations {
		ids[i] = conv.ConversationId
	}
	last, err := s.MessageMapper.LastMessages(ctx, ids)
	if err != nil {
		logs.CtxErrorf(ctx, "[conversation] [List] last messages error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationListErrCode)
	}

	items := make([]*core_api.Conversation, len(conversations))
	for i, conv := range conversations {
		other, _ := conv.Other(uid)
		items[i] = &core_api.Conversation{
			ConversationId: conv.ConversationId.Hex(),
			OtherUserId:    other,
			LastMessage:    dm.MMsgToLast(last[conv.ConversationId]),
			CreateTime:     conv.CreateTime.Unix(),
			UpdateTime:     conv.UpdateTime.Unix(),
		}
	}
	return &core_api.ListConversationResp{Resp: util.Success(), Conversations: items, HasMore: hasMore}, nil
}

// ListMessage 获取对话的全部消息, 只有参与者可以查看
func (s *ConversationService) ListMessage(ctx context.Context, req *core_api.ListMessageReq) (*core_api.ListMessageResp, error) {
	// 鉴权
	uid, err := adaptor.ExtractUserId(ctx, s.Token)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	conv, err := s.ConversationMapper.FindById(ctx, req.GetConversationId())
	switch {
	case errors.Is(err, conversation.ErrNotFound):
		return nil, errorx.WrapByCode(err, errno.ConversationNotFoundCode)
	case err != nil:
		logs.CtxErrorf(ctx, "[conversation] [ListMessage] find conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationGetErrCode)
	}
	if !conv.HasParticipant(uid) {
		logs.CtxWarnf(ctx, "[conversation] [ListMessage] forbidden: %s is not a participant of %s", uid, req.GetConversationId())
		return nil, errorx.New(errno.ForbiddenCode)
	}

	msgs, err := s.MessageMapper.ListMessage(ctx, req.GetConversationId())
	if err != nil {
		logs.CtxErrorf(ctx, "[conversation] [ListMessage] list message error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationGetErrCode)
	}
	return &core_api.ListMessageResp{Resp: util.Success(), Messages: dm.MMsgToFMsgList(msgs)}, nil
}
