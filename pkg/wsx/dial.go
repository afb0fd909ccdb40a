package wsx

import (
	"context"
	"net/http"
	"net/url"

	gws "github.com/gorilla/websocket"
)

// Dial 以客户端身份连接relay, token作为握手参数传递
// hertz只能将服务端响应升级为ws, 客户端一侧使用gorilla/websocket
func Dial(ctx context.Context, endpoint, token string) (*gws.Conn, *http.Response, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	dialer := gws.Dialer{HandshakeTimeout: DefaultTimeout}
	return dialer.DialContext(ctx, u.String(), nil)
}
