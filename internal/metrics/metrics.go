package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "connectn"

// Metrics - prometheus collectors for the game server. A nil *Metrics is a valid no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	Connections     prometheus.Gauge
	ActiveRooms     prometheus.Gauge
	Moves           *prometheus.CounterVec
	RoundsFinished  *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
	MessageLatency  prometheus.Histogram
}

// New - registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	return NewWithRegistry(registry, registry)
}

func NewWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	that := &Metrics{
		gatherer: gatherer,

		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Number of open websocket connections",
		}),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of rooms held by the registry",
		}),
		Moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Moves received, by result",
		}, []string{"result"}),
		RoundsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_finished_total",
			Help:      "Finished rounds, by outcome",
		}, []string{"outcome"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Outbound events, by action",
		}, []string{"action"}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Inbound message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	registerer.MustRegister(
		that.Connections,
		that.ActiveRooms,
		that.Moves,
		that.RoundsFinished,
		that.EventsPublished,
		that.MessageLatency,
	)

	return that
}

// Handler - serves the registry in the prometheus text format.
func (that *Metrics) Handler() http.Handler {
	if that == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(that.gatherer, promhttp.HandlerOpts{})
}

func (that *Metrics) IncConnections() {
	if that == nil {
		return
	}

	that.Connections.Inc()
}

func (that *Metrics) DecConnections() {
	if that == nil {
		return
	}

	that.Connections.Dec()
}

func (that *Metrics) SetActiveRooms(count int) {
	if that == nil {
		return
	}

	that.ActiveRooms.Set(float64(count))
}

// ObserveMove - result is "accepted" or "rejected".
func (that *Metrics) ObserveMove(result string) {
	if that == nil {
		return
	}

	that.Moves.WithLabelValues(result).Inc()
}

// ObserveRound - outcome is "win" or "draw".
func (that *Metrics) ObserveRound(outcome string) {
	if that == nil {
		return
	}

	that.RoundsFinished.WithLabelValues(outcome).Inc()
}

func (that *Metrics) ObserveEvent(action string) {
	if that == nil {
		return
	}

	that.EventsPublished.WithLabelValues(action).Inc()
}

func (that *Metrics) ObserveMessageLatency(duration time.Duration) {
	if that == nil {
		return
	}

	that.MessageLatency.Observe(duration.Seconds())
}
