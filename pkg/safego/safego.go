package safego

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xh-polaris/chat-relay/pkg/logs"
)

// Panics 被捕获的panic次数, 由使用方注册到自己的registry
var Panics = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "recovered_panics_total",
	Help: "Panics recovered in background goroutines.",
})

// Go 启动一个带panic恢复的协程
func Go(ctx context.Context, fn func()) {
	go func() {
		defer Recovery(ctx)
		fn()
	}()
}

// Recovery 需在defer中直接调用
func Recovery(ctx context.Context) {
	e := recover()
	if e == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	Panics.Inc()
	logs.CtxErrorf(ctx, "[safego] recovered panic: %s\nstacktrace:\n%s", fmt.Sprint(e), debug.Stack())
}
