package main

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hertz-contrib/cors"
	prometheus "github.com/hertz-contrib/monitor-prometheus"
	"github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/xh-polaris/chat-relay/biz/infra/config"
	"github.com/xh-polaris/chat-relay/biz/infra/metrics"
	"github.com/xh-polaris/chat-relay/biz/router"
	"github.com/xh-polaris/chat-relay/pkg/logs"
	"github.com/xh-polaris/chat-relay/provider"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func main() {
	provider.Init()
	p := provider.Get()
	c := p.Config

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(b3.New(), propagation.TraceContext{}, propagation.Baggage{}))
	tracer, tracerCfg := tracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(c.ListenOn),
		server.WithExitWaitTime(5*time.Second),
		server.WithTracer(prometheus.NewServerTracer(c.Metrics.ListenOn, c.Metrics.Path, prometheus.WithRegistry(metrics.Registry))),
		tracer,
	)
	h.Use(tracing.ServerMiddleware(tracerCfg), cors.New(corsConfig(c)))
	router.GeneratedRegister(h)

	// 退出前断开全部ws连接
	h.OnShutdown = append(h.OnShutdown, func(_ context.Context) {
		p.Hub.CloseAll()
	})
	logs.Infof("[main] %s listening on %s", c.Name, c.ListenOn)
	h.Spin()
}

func corsConfig(c *config.Config) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-B3-TraceId", "X-B3-SpanId"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(c.CORS.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = c.CORS.AllowOrigins
	}
	return cfg
}
