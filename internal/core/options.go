package core

import (
	"time"

	"kittycore/internal/entropy"
)

// DefaultNewKittyReserve is the stake reserved per created or bred kitty.
const DefaultNewKittyReserve Balance = 100

type serviceOptions struct {
	clock      Clock
	logger     Logger
	audit      AuditRecorder
	metrics    MetricsRecorder
	tracer     Tracer
	randomness Randomness
	reserve    Balance
	events     *EventLog
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:      ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:     noopLogger{},
		audit:      noopAuditRecorder{},
		metrics:    noopMetricsRecorder{},
		tracer:     noopTracer{},
		randomness: entropy.SystemSource{},
		reserve:    DefaultNewKittyReserve,
	}
}

// ServiceOption customizes a Service.
type ServiceOption func(*serviceOptions)

// WithClock overrides the audit clock.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger installs a structured logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder installs an audit sink.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder installs a metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithRandomness replaces the seed source used for DNA derivation.
func WithRandomness(source Randomness) ServiceOption {
	return func(o *serviceOptions) {
		if source != nil {
			o.randomness = source
		}
	}
}

// WithNewKittyReserve sets the stake reserved per new kitty. Zero is allowed.
func WithNewKittyReserve(amount Balance) ServiceOption {
	return func(o *serviceOptions) {
		o.reserve = amount
	}
}

// WithEventLog shares an event log with the service.
func WithEventLog(log *EventLog) ServiceOption {
	return func(o *serviceOptions) {
		if log != nil {
			o.events = log
		}
	}
}
