// Package metrics exposes counters for the page updater on a dedicated
// Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stringcalc/domain/instrument"
	internalerrors "stringcalc/internal/errors"
)

// Metrics holds the updater's collectors. It satisfies
// ports.ReconcileObserver.
type Metrics struct {
	registry *prometheus.Registry

	rows            *prometheus.CounterVec
	eventsSent      *prometheus.CounterVec
	eventsReceived  *prometheus.CounterVec
	transportErrors prometheus.Counter
	missingElements *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stringcalc",
			Name:      "table_rows_total",
			Help:      "Rows handled by the table reconciler, by outcome.",
		}, []string{"outcome"}),
		eventsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stringcalc",
			Name:      "events_sent_total",
			Help:      "Events emitted to the peer.",
		}, []string{"event"}),
		eventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stringcalc",
			Name:      "events_received_total",
			Help:      "Events received from the peer.",
		}, []string{"event"}),
		transportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stringcalc",
			Name:      "transport_errors_total",
			Help:      "Failed deliveries to the peer.",
		}),
		missingElements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stringcalc",
			Name:      "missing_elements_total",
			Help:      "Page elements an operation needed but could not find.",
		}, []string{"id"}),
	}
	m.registry.MustRegister(m.rows, m.eventsSent, m.eventsReceived, m.transportErrors, m.missingElements)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RowCreated(instrument.RowKey) { m.rows.WithLabelValues("created").Inc() }
func (m *Metrics) RowUpdated(instrument.RowKey) { m.rows.WithLabelValues("updated").Inc() }
func (m *Metrics) RowSkipped(instrument.RowKey, error) {
	m.rows.WithLabelValues("skipped").Inc()
}

// EventSent counts an emitted event.
func (m *Metrics) EventSent(event string) {
	m.eventsSent.WithLabelValues(event).Inc()
}

// EventReceived counts an inbound event.
func (m *Metrics) EventReceived(event string) {
	m.eventsReceived.WithLabelValues(event).Inc()
}

// SendFailed counts a failed send, splitting missing elements from
// transport failures.
func (m *Metrics) SendFailed(err error) {
	if ids := internalerrors.MissingIDs(err); len(ids) > 0 {
		for _, id := range ids {
			m.missingElements.WithLabelValues(id).Inc()
		}
		return
	}
	if internalerrors.GetCode(err) == internalerrors.CodeTransportError {
		m.transportErrors.Inc()
	}
}
