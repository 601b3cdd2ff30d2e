// Package metrics holds the prometheus collectors of the auth module. They are
// usable unregistered, which keeps tests free of registry setup.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "hrms"

func counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

var (
	HTTPRequestsTotal = counterVec("http", "requests_total",
		"HTTP requests by method, route and status.", "method", "path", "status")

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "path"})

	// result: success, failure, locked, disabled, mfa_required
	AuthLoginsTotal = counterVec("auth", "logins_total",
		"Password login attempts by outcome.", "result")

	AuthRegistrationsTotal = counterVec("auth", "registrations_total",
		"Account registrations by outcome.", "result")

	// kind: access, refresh
	TokensIssuedTotal = counterVec("auth", "tokens_issued_total",
		"Signed tokens by kind.", "kind")

	AccountLockoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "account_lockouts_total",
		Help:      "Accounts locked after reaching the failed login limit.",
	})

	GuardRejectionsTotal = counterVec("auth", "guard_rejections_total",
		"Requests refused by the auth guards, by error code.", "code")

	// method: email_otp, totp
	MFAVerificationsTotal = counterVec("auth", "mfa_verifications_total",
		"Second factor checks by method and outcome.", "method", "result")
)

var all = []prometheus.Collector{
	HTTPRequestsTotal,
	HTTPRequestDurationSeconds,
	AuthLoginsTotal,
	AuthRegistrationsTotal,
	TokensIssuedTotal,
	AccountLockoutsTotal,
	GuardRejectionsTotal,
	MFAVerificationsTotal,
}

// Register adds every collector to reg with a constant service label.
func Register(reg prometheus.Registerer, serviceName string) error {
	labelled := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, reg)
	for _, c := range all {
		if err := labelled.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func MustRegister(serviceName string) {
	if err := Register(prometheus.DefaultRegisterer, serviceName); err != nil {
		panic(err)
	}
}
