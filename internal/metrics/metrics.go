package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot's Prometheus collectors. A single instance is
// created in main and shared by the services.
type Metrics struct {
	ChartsRendered     prometheus.Counter
	ChartErrors        prometheus.Counter
	ChartRenderSeconds prometheus.Histogram
	PaymentsConfirmed  prometheus.Counter
	PaymentMismatches  prometheus.Counter
	BroadcastsSent     prometheus.Counter
	TicketsOpened      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChartsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_charts_rendered_total",
			Help: "Regime charts rendered and sent.",
		}),
		ChartErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_chart_errors_total",
			Help: "Chart pipeline failures (fetch, analysis or render).",
		}),
		ChartRenderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradegate_chart_render_seconds",
			Help:    "End to end chart pipeline duration.",
			Buckets: prometheus.DefBuckets,
		}),
		PaymentsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_payments_confirmed_total",
			Help: "Star payments confirmed and access granted.",
		}),
		PaymentMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_payment_mismatches_total",
			Help: "Confirmed payments whose amount or currency did not match.",
		}),
		BroadcastsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_broadcasts_sent_total",
			Help: "Broadcast messages delivered to subscribers.",
		}),
		TicketsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradegate_tickets_opened_total",
			Help: "Support tickets opened by users.",
		}),
	}

	reg.MustRegister(
		m.ChartsRendered,
		m.ChartErrors,
		m.ChartRenderSeconds,
		m.PaymentsConfirmed,
		m.PaymentMismatches,
		m.BroadcastsSent,
		m.TicketsOpened,
	)
	return m
}
