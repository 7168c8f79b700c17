package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Verifications    *prometheus.CounterVec
	OtpSent          prometheus.Counter
	RateLimitDenials *prometheus.CounterVec
	UpstreamRetries  *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics. Call once per process;
// promauto registers against the default registry.
func New() *Metrics {
	return &Metrics{
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_verifications_total",
			Help: "Verification attempts by plugin type and outcome code",
		}, []string{"plugin", "outcome"}),
		OtpSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_otp_sent_total",
			Help: "One-time passcodes dispatched through the SMS sender",
		}),
		RateLimitDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_rate_limit_denials_total",
			Help: "Requests rejected by the rate limiter, by bucket",
		}, []string{"bucket"}),
		UpstreamRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_upstream_retries_total",
			Help: "Retries of outbound collaborator calls, by host",
		}, []string{"host"}),
	}
}

// ObserveVerification records one verification outcome. Nil-safe so tests can
// run components without metrics.
func (m *Metrics) ObserveVerification(plugin, outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(plugin, outcome).Inc()
}

// ObserveOtpSent records one dispatched OTP.
func (m *Metrics) ObserveOtpSent() {
	if m == nil {
		return
	}
	m.OtpSent.Inc()
}

// ObserveRateLimitDenial records one rate limited request.
func (m *Metrics) ObserveRateLimitDenial(bucket string) {
	if m == nil {
		return
	}
	m.RateLimitDenials.WithLabelValues(bucket).Inc()
}

// ObserveUpstreamRetry records one outbound retry.
func (m *Metrics) ObserveUpstreamRetry(host string) {
	if m == nil {
		return
	}
	m.UpstreamRetries.WithLabelValues(host).Inc()
}
