package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/xh-polaris/chat-relay/pkg/safego"
)

const namespace = "chat_relay"

// Registry 与hertz监控共用的注册表
var Registry = prometheus.NewRegistry()

var (
	OnlineUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "online_users",
		Help:      "Number of identities holding at least one live connection.",
	})
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections",
		Help:      "Number of live connections attached to the hub.",
	})
	AttachRefused = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attach_refused_total",
		Help:      "Attach attempts refused because of an invalid token.",
	})
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Message submissions by outcome.",
	}, []string{"outcome"})
	Pushes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pushes_total",
		Help:      "Best-effort pushes by result.",
	}, []string{"result"})
	SlowConsumers = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slow_consumers_total",
		Help:      "Connections detached because their send buffer overflowed.",
	})
)

const (
	OutcomeOK     = "ok"
	PushDelivered = "delivered"
	PushOffline   = "offline"
	PushFailed    = "failed"
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		OnlineUsers,
		Connections,
		AttachRefused,
		Submissions,
		Pushes,
		SlowConsumers,
		safego.Panics,
	)
}
