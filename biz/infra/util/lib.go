package util

import (
	"github.com/xh-polaris/chat-relay/biz/application/dto/basic"
)

// Success 返回成功的basic.Response指针
func Success() *basic.Response {
	return &basic.Response{
		Code: 0,
		Msg:  "success",
	}
}
