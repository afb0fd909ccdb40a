package core_api

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	coreapi "github.com/xh-polaris/chat-relay/biz/adaptor/controller/core_api"
)

func Register(r *server.Hertz) {
	root := r.Group("/")
	{
		_conversation := root.Group("/conversation")
		_conversation.POST("/start", coreapi.StartConversation)
		_conversation.GET("/list", coreapi.ListConversation)
		_conversation.GET("/messages", coreapi.ListMessage)
	}
	{
		_auth := root.Group("/auth")
		_auth.GET("/socket_token", coreapi.SocketToken)
	}
	{
		_presence := root.Group("/presence")
		_presence.GET("/online", coreapi.OnlineUsers)
	}
	root.GET("/ws", coreapi.Chat)
}
