package bmc

import "github.com/prometheus/client_golang/prometheus"

var (
	v2ConnectionOpenAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "v2_connection_open_attempts_total",
		Help:      "Number of times DialV2 has been called.",
	})
	v2ConnectionOpenFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "v2_connection_open_failures_total",
		Help:      "Number of DialV2 calls that failed to establish the underlying transport.",
	})
	v2ConnectionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "v2_connections_open",
		Help:      "Number of IPMI v2.0 sessionless transports currently open.",
	})

	v2SessionsOpenAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "v2_session_open_attempts_total",
		Help:      "Number of times NewSession has been called, by requested privilege level.",
	}, []string{"privilege_level"})
	v2SessionsOpenFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "v2_session_open_failures_total",
		Help:      "Number of NewSession calls that failed, by failure stage.",
	}, []string{"stage"})
	v2SessionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "v2_sessions_open",
		Help:      "Number of authenticated IPMI v2.0 sessions currently open.",
	})

	v1ConnectionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "v1_connections_open",
		Help:      "Number of IPMI v1.5 sessionless transports currently open.",
	})
	v1SessionsOpenAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "v1_session_open_attempts_total",
		Help:      "Number of times V1Sessionless.NewSession has been called, by requested privilege level.",
	}, []string{"privilege_level"})
	v1SessionsOpenFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "v1_session_open_failures_total",
		Help:      "Number of V1Sessionless.NewSession calls that failed, by failure stage.",
	}, []string{"stage"})
	v1SessionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "v1_sessions_open",
		Help:      "Number of authenticated IPMI v1.5 sessions currently open.",
	})

	commandsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_sent_total",
		Help:      "Number of IPMI commands sent, by network function and command number.",
	}, []string{"net_fn", "command"})
	commandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "command_errors_total",
		Help:      "Number of IPMI commands that returned a non-normal completion code or transport error, by completion code.",
	}, []string{"completion_code"})
)

func init() {
	prometheus.MustRegister(
		v2ConnectionOpenAttempts,
		v2ConnectionOpenFailures,
		v2ConnectionsOpen,
		v2SessionsOpenAttempts,
		v2SessionsOpenFailures,
		v2SessionsOpen,
		v1ConnectionsOpen,
		v1SessionsOpenAttempts,
		v1SessionsOpenFailures,
		v1SessionsOpen,
		commandsSent,
		commandErrors,
	)
}
