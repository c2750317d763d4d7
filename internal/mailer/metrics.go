package mailer

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type sendMetrics struct {
	sendLatency prometheus.Histogram
	outcomes    *prometheus.CounterVec
}

// Instrumented records latency and outcome of every send on a registry.
type Instrumented struct {
	next    Client
	metrics *sendMetrics
}

// Instrument wraps next with prometheus metrics registered on reg.
func Instrument(next Client, reg prometheus.Registerer) *Instrumented {
	metrics := &sendMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "portfolio_contact_send_duration_seconds",
			Help:    "Time taken by the outbound message-send client",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_contact_sends_total",
			Help: "Outbound contact messages by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.outcomes)

	return &Instrumented{next: next, metrics: metrics}
}

// Send forwards to the wrapped client.
func (i *Instrumented) Send(ctx context.Context, serviceID, templateID string, params map[string]string) (Response, error) {
	start := time.Now()
	defer func() {
		i.metrics.sendLatency.Observe(time.Since(start).Seconds())
	}()

	resp, err := i.next.Send(ctx, serviceID, templateID, params)
	switch {
	case err != nil:
		i.metrics.outcomes.WithLabelValues("failed").Inc()
	case resp.OK():
		i.metrics.outcomes.WithLabelValues("sent").Inc()
	default:
		i.metrics.outcomes.WithLabelValues("rejected").Inc()
	}
	return resp, err
}
