package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the registration core.
type Metrics struct {
	RegistrationsStaged   prometheus.Counter
	OTPVerifications      *prometheus.CounterVec
	UsersPromoted         prometheus.Counter
	VerificationDecisions *prometheus.CounterVec
	TerminalOverrides     prometheus.Counter
	PasswordResets        prometheus.Counter
	RequestDuration       *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RegistrationsStaged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventlift_registrations_staged_total",
			Help: "Pending registrations staged (including replacements).",
		}),
		OTPVerifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eventlift_otp_verifications_total",
			Help: "OTP verification attempts by outcome.",
		}, []string{"outcome"}),
		UsersPromoted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventlift_users_promoted_total",
			Help: "Pending registrations promoted to identities.",
		}),
		VerificationDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eventlift_verification_decisions_total",
			Help: "Administrator verification decisions by target status.",
		}, []string{"status"}),
		TerminalOverrides: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventlift_verification_terminal_overrides_total",
			Help: "Status decisions that overwrote an already-terminal status.",
		}),
		PasswordResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eventlift_password_resets_total",
			Help: "Administrator password resets to the documented default.",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventlift_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
