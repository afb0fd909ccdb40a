package errno

import (
	"github.com/xh-polaris/chat-relay/pkg/errorx/code"
)

const (
	UnAuthErrCode      = 1000
	InvalidParamCode   = 1001
	UnImplementErrCode = 888
	OIDErrCode         = 777
)

func init() {
	code.Register(
		UnAuthErrCode,
		"身份认证失败",
		code.WithAffectStability(false),
	)
	code.Register(
		InvalidParamCode,
		"参数错误",
		code.WithAffectStability(false),
	)
	code.Register(
		UnImplementErrCode,
		"功能暂未实现",
		code.WithAffectStability(true),
	)
	code.Register(
		OIDErrCode,
		"非法的id",
		code.WithAffectStability(false),
	)
}
