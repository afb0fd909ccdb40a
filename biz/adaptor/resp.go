package adaptor

// HTTP 响应相关

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	hertz "github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/xh-polaris/gopkg/util"
	"github.com/xh-polaris/chat-relay/biz/application/dto/basic"
	"github.com/xh-polaris/chat-relay/pkg/errorx"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel/trace"
)

// envelope 统一响应体, data为resp中除Resp外的字段
type envelope struct {
	Code int32          `json:"code"`
	Msg  string         `json:"msg"`
	Data map[string]any `json:"data,omitempty"`
}

// PostProcess 处理http响应, resp要求为结构体指针且带有Resp字段
// 记录调用日志, 并向响应头注入b3链路信息
func PostProcess(ctx context.Context, c *app.RequestContext, req, resp any, err error) {
	b3.New().Inject(ctx, &headerProvider{headers: &c.Response.Header})
	logs.CtxInfof(ctx, "[%s] req=%s, resp=%s, err=%s, trace=%s", c.Path(), util.JSONF(req), util.JSONF(resp), errorx.ErrorWithoutStack(err), trace.SpanContextFromContext(ctx).TraceID().String())

	if err == nil {
		c.JSON(hertz.StatusOK, makeResponse(resp))
		return
	}
	PostError(ctx, c, err)
}

// PostError 业务错误以200返回错误码, 其余错误返回500
func PostError(ctx context.Context, c *app.RequestContext, err error) {
	var se errorx.StatusError
	if errors.As(err, &se) && se.Code() != 0 {
		logs.CtxWarnf(ctx, "[ErrorX] code=%d err=%s", se.Code(), errorx.ErrorWithoutStack(err))
		c.AbortWithStatusJSON(http.StatusOK, &envelope{Code: se.Code(), Msg: se.Msg()})
		return
	}
	logs.CtxErrorf(ctx, "internal error, err=%s", errorx.ErrorWithoutStack(err))
	c.String(hertz.StatusInternalServerError, err.Error())
}

func makeResponse(resp any) *envelope {
	out := &envelope{Msg: "success"}
	v := reflect.ValueOf(resp)
	if !v.IsValid() || v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return out
	}
	v = v.Elem()
	if rf := v.FieldByName("Resp"); rf.IsValid() {
		if r, ok := rf.Interface().(*basic.Response); ok && r != nil {
			out.Code, out.Msg = r.Code, r.Msg
		}
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Name == "Resp" || !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fv := v.Field(i)
		if fv.IsZero() && strings.Contains(opts, "omitempty") {
			continue
		}
		if out.Data == nil {
			out.Data = make(map[string]any)
		}
		out.Data[name] = fv.Interface()
	}
	return out
}
