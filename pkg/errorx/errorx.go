package errorx

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/xh-polaris/chat-relay/pkg/errorx/code"
)

const unknownMsg = "未知错误"

// StatusError 携带业务错误码的错误
type StatusError interface {
	error
	Code() int32
	Msg() string
	Extra() map[string]string
}

type kv struct {
	k, v string
}

// KV 为错误附加键值信息, 键值会替换消息模板中的 {key}
func KV(k, v string) kv {
	return kv{k: k, v: v}
}

type statusError struct {
	code  int32
	msg   string
	extra map[string]string
	cause error
}

func (e *statusError) Code() int32 { return e.code }

func (e *statusError) Msg() string { return e.msg }

func (e *statusError) Extra() map[string]string { return e.extra }

func (e *statusError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("code=%d, msg=%s", e.code, e.msg)
	}
	return fmt.Sprintf("code=%d, msg=%s, cause=%s", e.code, e.msg, e.cause.Error())
}

func (e *statusError) Unwrap() error { return e.cause }

func build(c int32, cause error, kvs ...kv) *statusError {
	msg := unknownMsg
	if entry, ok := code.Get(c); ok {
		msg = entry.Msg
	}
	e := &statusError{code: c, cause: cause}
	if len(kvs) > 0 {
		e.extra = make(map[string]string, len(kvs))
		for _, p := range kvs {
			e.extra[p.k] = p.v
			msg = strings.ReplaceAll(msg, "{"+p.k+"}", p.v)
		}
	}
	e.msg = msg
	return e
}

// New 根据错误码创建错误, 附带调用栈
func New(c int32, kvs ...kv) error {
	return pkgerrors.WithStack(build(c, nil, kvs...))
}

// WrapByCode 用错误码包装一个已有错误
func WrapByCode(err error, c int32, kvs ...kv) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithStack(build(c, err, kvs...))
}

// FromStatusError 取出错误链上的StatusError
func FromStatusError(err error) (StatusError, bool) {
	var se StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// CodeOf 错误链上的错误码, 不存在时为0
func CodeOf(err error) int32 {
	if se, ok := FromStatusError(err); ok {
		return se.Code()
	}
	return 0
}

// ErrorWithoutStack 打印错误信息但不包含调用栈
func ErrorWithoutStack(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
