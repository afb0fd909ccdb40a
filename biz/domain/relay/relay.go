package relay

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/xh-polaris/chat-relay/biz/application/dto/core_api"
	"github.com/xh-polaris/chat-relay/biz/domain/hub"
	dm "github.com/xh-polaris/chat-relay/biz/domain/message"
	"github.com/xh-polaris/chat-relay/biz/infra/config"
	"github.com/xh-polaris/chat-relay/biz/infra/cst"
	"github.com/xh-polaris/chat-relay/biz/infra/mapper/conversation"
	mmsg "github.com/xh-polaris/chat-relay/biz/infra/mapper/message"
	"github.com/xh-polaris/chat-relay/biz/infra/metrics"
	"github.com/xh-polaris/chat-relay/pkg/errorx"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"github.com/xh-polaris/chat-relay/pkg/safego"
	"github.com/xh-polaris/chat-relay/types/errno"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultTimeout = 5 * time.Second

var tracer = otel.Tracer("github.com/xh-polaris/chat-relay/biz/domain/relay")

// Pusher 向用户的存活连接推送事件
type Pusher interface {
	SendTo(uid, typ string, data any) (int, error)
}

// Relay 校验、持久化并转发一条消息
// 持久化成功即视为消息已送达历史记录, 之后的推送只尽力而为
type Relay struct {
	ConversationMapper conversation.MongoMapper
	MessageMapper      mmsg.MongoMapper
	Pusher             Pusher
	timeout            time.Duration
	now                func() time.Time
}

func NewRelay(c *config.Config, cm conversation.MongoMapper, mm mmsg.MongoMapper, h *hub.Hub) *Relay {
	return New(cm, mm, h, c.Relay.StoreTimeout)
}

func New(cm conversation.MongoMapper, mm mmsg.MongoMapper, pusher Pusher, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Relay{
		ConversationMapper: cm,
		MessageMapper:      mm,
		Pusher:             pusher,
		timeout:            timeout,
		now:                time.Now,
	}
}

// HandleSend 处理message:send请求, 作为hub.Handler注册
func (r *Relay) HandleSend(ctx context.Context, sender string, data []byte) any {
	req := new(core_api.SendMessageReq)
	if len(data) == 0 || sonic.Unmarshal(data, req) != nil {
		metrics.Submissions.WithLabelValues(errno.InvalidPayload).Inc()
		return &core_api.SendMessageResp{Error: errno.InvalidPayload}
	}
	msg, err := r.Send(ctx, sender, req)
	if err != nil {
		slug := errno.Slug(errorx.CodeOf(err))
		metrics.Submissions.WithLabelValues(slug).Inc()
		return &core_api.SendMessageResp{Error: slug}
	}
	metrics.Submissions.WithLabelValues(metrics.OutcomeOK).Inc()
	return &core_api.SendMessageResp{Message: msg}
}

// Send 发送一条消息, sender必须由连接提供
func (r *Relay) Send(ctx context.Context, sender string, req *core_api.SendMessageReq) (_ *core_api.Message, err error) {
	ctx, span := tracer.Start(ctx, "relay.Send")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, errorx.ErrorWithoutStack(err))
		}
		span.End()
	}()

	// 校验
	content := strings.TrimSpace(req.Content)
	if req.ConversationId == "" || content == "" {
		return nil, errorx.New(errno.InvalidPayloadCode)
	}
	span.SetAttributes(attribute.String("conversation_id", req.ConversationId), attribute.String("sender_id", sender))

	// 查询对话
	conv, err := r.findConversation(ctx, req.ConversationId)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			return nil, errorx.WrapByCode(err, errno.ConversationNotFoundCode)
		}
		logs.CtxErrorf(ctx, "[relay] [Send] find conversation %s err:%s", req.ConversationId, errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.PersistenceFailedCode)
	}

	// 鉴权, 非参与者的投递可能是在探测对话id
	other, ok := conv.Other(sender)
	if !ok {
		logs.CtxWarnf(ctx, "[relay] [Send] forbidden: %s is not a participant of %s", sender, req.ConversationId)
		return nil, errorx.New(errno.ForbiddenCode, errorx.KV("uid", sender))
	}

	// 持久化, 失败时不推送, 由调用方决定是否重试
	msg := &mmsg.Message{
		MessageId:      bson.NewObjectID(),
		ConversationId: conv.ConversationId,
		SenderId:       sender,
		Content:        content,
		Kind:           cst.KindHuman,
		CreateTime:     r.now(),
	}
	if err = r.persist(ctx, msg); err != nil {
		logs.CtxErrorKVs(ctx, "[relay] [Send] persist message failed",
			"conversation_id", req.ConversationId, "sender_id", sender, "err", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.PersistenceFailedCode)
	}

	out := dm.MMsgToFMsg(msg)
	r.push(ctx, sender, other, out)
	return out, nil
}

func (r *Relay) findConversation(ctx context.Context, cid string) (*conversation.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.ConversationMapper.FindById(ctx, cid)
}

// persist 写入消息并推进对话活跃时间, 后者失败只记录日志
func (r *Relay) persist(ctx context.Context, msg *mmsg.Message) error {
	ictx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.MessageMapper.InsertOne(ictx, msg); err != nil {
		return err
	}
	tctx, tcancel := context.WithTimeout(ctx, r.timeout)
	defer tcancel()
	if err := r.ConversationMapper.Touch(tctx, msg.ConversationId.Hex(), msg.CreateTime); err != nil {
		logs.CtxErrorf(ctx, "[relay] [persist] touch conversation %s err:%s", msg.ConversationId.Hex(), errorx.ErrorWithoutStack(err))
	}
	return nil
}

// push 尽力推送给另一方, 任何失败都不影响发送方的应答
func (r *Relay) push(ctx context.Context, sender, recipient string, msg *core_api.Message) {
	defer safego.Recovery(ctx)
	if recipient == sender {
		return
	}
	n, err := r.Pusher.SendTo(recipient, cst.EventMessageNew, &core_api.MessageEvent{Message: msg})
	switch {
	case err != nil:
		metrics.Pushes.WithLabelValues(metrics.PushFailed).Inc()
		logs.CtxErrorf(ctx, "[relay] [push] to %s err:%s", recipient, errorx.ErrorWithoutStack(err))
	case n == 0:
		metrics.Pushes.WithLabelValues(metrics.PushOffline).Inc()
	default:
		metrics.Pushes.WithLabelValues(metrics.PushDelivered).Inc()
	}
}
