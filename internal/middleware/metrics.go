package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application-level metrics not covered by the HTTP middleware.
var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_redis_errors_total",
		Help: "Number of failed Redis commands",
	}, []string{"command"})

	// ActiveWebSockets tracks currently open feed websocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_websocket_active_connections",
		Help: "Number of active websocket connections",
	})

	// WebSocketBackpressureDrops counts snapshots dropped because a client
	// buffer was full or closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_websocket_backpressure_drops_total",
		Help: "Number of websocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// FeedSnapshotsDelivered counts full feed snapshots pushed to subscribers.
	FeedSnapshotsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_feed_snapshots_delivered_total",
		Help: "Number of full feed snapshots delivered to subscribers",
	})

	// PointsAwarded tracks points granted or spent by source (post_reward,
	// daily_claim, gift).
	PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_points_moved_total",
		Help: "Points moved through the economy by source",
	}, []string{"source"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
