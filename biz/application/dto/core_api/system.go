package core_api

import "github.com/xh-polaris/chat-relay/biz/application/dto/basic"

type SocketTokenReq struct{}

type SocketTokenResp struct {
	Resp  *basic.Response `json:"resp"`
	Token string          `json:"token"`
}

type OnlineUsersReq struct{}

type OnlineUsersResp struct {
	Resp  *basic.Response `json:"resp"`
	Users []string        `json:"users"`
}
