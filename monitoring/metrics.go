package monitoring

import (
	"log/slog"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	portalOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_operations_total",
			Help: "Total portal operations",
		},
		[]string{"operation", "status"},
	)

	paymentsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portal_payments_total",
			Help: "Current number of payments per review status",
		},
		[]string{"status"},
	)

	ticketsAssigned = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_tickets_assigned_total",
			Help: "Current number of seat assignments",
		},
	)

	scanDecodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_scan_decode_seconds",
			Help:    "Duration of ticket QR decode attempts",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)

type Monitor struct {
	app core.App
}

func NewMonitor(app core.App, interval time.Duration) *Monitor {
	monitor := &Monitor{app: app}

	go monitor.collectMetrics(interval)

	return monitor
}

func (m *Monitor) collectMetrics(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		m.collectPaymentMetrics()
		m.collectTicketMetrics()
	}
}

func (m *Monitor) collectPaymentMetrics() {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	err := m.app.DB().
		NewQuery("SELECT status, COUNT(*) AS count FROM payments GROUP BY status").
		All(&rows)
	if err != nil {
		slog.Warn("collect payment metrics", "error", err)
		return
	}

	// Reset all statuses first so an emptied bucket drops to zero.
	for _, status := range []string{"pending", "confirmed", "rejected"} {
		paymentsByStatus.WithLabelValues(status).Set(0)
	}
	for _, row := range rows {
		paymentsByStatus.WithLabelValues(row.Status).Set(float64(row.Count))
	}
}

func (m *Monitor) collectTicketMetrics() {
	var row struct {
		Count int `db:"count"`
	}
	err := m.app.DB().
		NewQuery("SELECT COUNT(*) AS count FROM tickets").
		One(&row)
	if err != nil {
		slog.Warn("collect ticket metrics", "error", err)
		return
	}
	ticketsAssigned.Set(float64(row.Count))
}

// Track portal operations (register, login, receipt, review, assign, verify)
func (m *Monitor) TrackOperation(operation, status string) {
	portalOperations.WithLabelValues(operation, status).Inc()
}

// Track ticket QR decode duration
func (m *Monitor) TrackScan(duration time.Duration) {
	scanDecodeDuration.Observe(duration.Seconds())
}
