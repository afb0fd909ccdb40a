package hub

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Frame ws上传输的一帧, 请求与应答通过Id对应
type Frame struct {
	Type string          `json:"type"`
	Id   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Type string `json:"type"`
	Id   string `json:"id,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Encode 序列化一帧下行数据
func Encode(typ, id string, data any) ([]byte, error) {
	return sonic.Marshal(&outFrame{Type: typ, Id: id, Data: data})
}

// Decode 解析一帧上行数据
func Decode(raw []byte) (*Frame, error) {
	f := new(Frame)
	if err := sonic.Unmarshal(raw, f); err != nil {
		return nil, err
	}
	return f, nil
}
