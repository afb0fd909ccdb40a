package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	coreapi "github.com/xh-polaris/chat-relay/biz/router/core_api"
)

// GeneratedRegister 注册全部路由
func GeneratedRegister(r *server.Hertz) {
	coreapi.Register(r)
}
