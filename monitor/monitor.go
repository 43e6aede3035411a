// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlinePlayers       prometheus.Gauge
	CommandsReceived    *prometheus.CounterVec
	InvalidCommands     prometheus.Counter
	Broadcasts          prometheus.Counter
	DeliveryFailures    prometheus.Counter
	Eliminations        prometheus.Counter
	RejectedConnections prometheus.Counter
	CommandLatency      prometheus.Histogram
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of active players",
		}),
		CommandsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_received_total",
			Help:      "Commands applied, by keyword",
		}, []string{"command"}),
		InvalidCommands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_commands_total",
			Help:      "Commands rejected as invalid",
		}),
		Broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "State snapshots published",
		}),
		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Sessions released after a failed delivery",
		}),
		Eliminations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eliminations_total",
			Help:      "Players eliminated in combat",
		}),
		RejectedConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_connections_total",
			Help:      "Connections turned away because the arena was full",
		}),
		CommandLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_latency_seconds",
			Help:      "Time spent applying a command and publishing its result",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	reg.MustRegister(
		m.OnlinePlayers,
		m.CommandsReceived,
		m.InvalidCommands,
		m.Broadcasts,
		m.DeliveryFailures,
		m.Eliminations,
		m.RejectedConnections,
		m.CommandLatency,
	)

	return m
}

// Monitor owns a private registry so several arenas (and tests) can coexist
// in one process.
type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	vars      *expvar.Map
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	registry := prometheus.NewRegistry()
	m := &Monitor{
		metrics:   NewMetrics(namespace, registry),
		registry:  registry,
		vars:      new(expvar.Map).Init(),
		startTime: time.Now(),
	}
	m.vars.Set("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))
	return m
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Register adds the monitor's endpoints to mux.
func (m *Monitor) Register(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug/vars", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(m.vars.String()))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func (m *Monitor) PlayerJoined() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) PlayerLeft() {
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) CommandReceived(command string) {
	m.metrics.CommandsReceived.WithLabelValues(command).Inc()
	m.vars.Add("commands", 1)
}

func (m *Monitor) InvalidCommand() {
	m.metrics.InvalidCommands.Inc()
	m.vars.Add("invalid_commands", 1)
}

func (m *Monitor) BroadcastSent() {
	m.metrics.Broadcasts.Inc()
}

func (m *Monitor) DeliveryFailed() {
	m.metrics.DeliveryFailures.Inc()
}

func (m *Monitor) PlayerEliminated() {
	m.metrics.Eliminations.Inc()
}

func (m *Monitor) ConnectionRejected() {
	m.metrics.RejectedConnections.Inc()
}

func (m *Monitor) ObserveCommandLatency(duration time.Duration) {
	m.metrics.CommandLatency.Observe(duration.Seconds())
}
