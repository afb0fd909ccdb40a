package adaptor

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/xh-polaris/chat-relay/biz/domain/token"
	"github.com/xh-polaris/chat-relay/biz/infra/cst"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"go.opentelemetry.io/otel/propagation"
)

type ctxKey struct{}

func InjectContext(ctx context.Context, c *app.RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func ExtractContext(ctx context.Context) (*app.RequestContext, error) {
	c, ok := ctx.Value(ctxKey{}).(*app.RequestContext)
	if !ok {
		return nil, errors.New("hertz context not found")
	}
	return c, nil
}

// ExtractToken 从Authorization头或token查询参数中取出令牌, 头优先
func ExtractToken(c *app.RequestContext) string {
	if auth := string(c.GetHeader(cst.Authorization)); auth != "" {
		return token.StripBearer(auth)
	}
	return c.Query(cst.TokenQuery)
}

// ExtractClaims 校验请求携带的令牌并返回其中的声明
func ExtractClaims(ctx context.Context, s *token.Service) (claims *token.Claims, err error) {
	defer func() {
		if err != nil {
			logs.CtxInfof(ctx, "extract user meta fail, err=%v", err)
		}
	}()
	c, err := ExtractContext(ctx)
	if err != nil {
		return nil, err
	}
	tok := ExtractToken(c)
	if tok == "" {
		return nil, token.ErrInvalid
	}
	return s.Parse(tok)
}

func ExtractUserId(ctx context.Context, s *token.Service) (string, error) {
	claims, err := ExtractClaims(ctx, s)
	if err != nil {
		return "", err
	}
	return claims.UserId, nil
}

var _ propagation.TextMapCarrier = &headerProvider{}

type headerProvider struct {
	headers *protocol.ResponseHeader
}

// Get a value from metadata by key
func (m *headerProvider) Get(key string) string {
	return m.headers.Get(key)
}

// Set a value to metadata by k/v
func (m *headerProvider) Set(key, value string) {
	m.headers.Set(key, value)
}

// Keys Iteratively get all keys of metadata
func (m *headerProvider) Keys() []string {
	out := make([]string, 0)

	m.headers.VisitAll(func(key, value []byte) {
		out = append(out, string(key))
	})

	return out
}
