package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// CheckinsTotal counts successful check-ins by dormitory.
	CheckinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alojamento_checkins_total",
		Help: "Total number of successful check-ins by dormitory",
	}, []string{"dormitory"})

	// CheckoutsTotal counts successful check-outs by dormitory.
	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alojamento_checkouts_total",
		Help: "Total number of successful check-outs by dormitory",
	}, []string{"dormitory"})

	// DecisionsTotal counts reservation decisions by kind and outcome.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alojamento_reservation_decisions_total",
		Help: "Total number of reservation decisions by kind and outcome",
	}, []string{"kind", "decision"})

	// SlotConflictsTotal counts check-in attempts rejected because the slot
	// was already taken (lost races included).
	SlotConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alojamento_slot_conflicts_total",
		Help: "Total number of check-in attempts that lost a slot to a concurrent occupant",
	})

	// OccupiedSlots is the gauge of currently occupied slots by dormitory.
	OccupiedSlots = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "alojamento_occupied_slots",
		Help: "Number of currently occupied slots per dormitory",
	}, []string{"dormitory"})

	// WebSocketBackpressureDrops counts board messages dropped because a
	// client's send buffer was full or closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alojamento_websocket_backpressure_drops_total",
		Help: "Total number of websocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "alojamento_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// RecordCheckin increments the check-in counter and occupancy gauge.
func RecordCheckin(dormitoryNumber string, occupied int) {
	CheckinsTotal.WithLabelValues(dormitoryNumber).Inc()
	OccupiedSlots.WithLabelValues(dormitoryNumber).Set(float64(occupied))
}

// RecordCheckout increments the check-out counter and updates the occupancy gauge.
func RecordCheckout(dormitoryNumber string, occupied int) {
	CheckoutsTotal.WithLabelValues(dormitoryNumber).Inc()
	OccupiedSlots.WithLabelValues(dormitoryNumber).Set(float64(occupied))
}

// RecordDecision increments the decision counter.
func RecordDecision(kind, decision string) {
	DecisionsTotal.WithLabelValues(kind, decision).Inc()
}

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// GenerateTraceID returns a new trace ID string.
func GenerateTraceID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
