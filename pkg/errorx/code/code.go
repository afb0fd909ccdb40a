package code

import "sync"

// 错误码注册表, 由types/errno在init中注册

type Option func(*Entry)

// Entry 一个已注册的错误码
type Entry struct {
	Code            int32
	Msg             string
	AffectStability bool
}

var (
	mu       sync.RWMutex
	registry = map[int32]*Entry{}
)

// WithAffectStability 标记该错误是否影响服务稳定性
func WithAffectStability(affect bool) Option {
	return func(e *Entry) {
		e.AffectStability = affect
	}
}

// Register 注册错误码, 重复注册时覆盖
func Register(code int32, msg string, opts ...Option) {
	e := &Entry{Code: code, Msg: msg, AffectStability: true}
	for _, opt := range opts {
		opt(e)
	}
	mu.Lock()
	defer mu.Unlock()
	registry[code] = e
}

// Get 获取错误码定义
func Get(code int32) (*Entry, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[code]
	return e, ok
}
