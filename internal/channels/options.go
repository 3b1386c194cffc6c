package channels

import (
	"time"

	"github.com/USA-RedDragon/ota-server/internal/metrics"
	"github.com/USA-RedDragon/ota-server/internal/telemetry"
)

const DefaultStoreTimeout = 5 * time.Second

type options struct {
	storeTimeout time.Duration
	emitter      telemetry.Emitter
	metrics      *metrics.Metrics
	now          func() time.Time
}

type Option func(*options)

// WithStoreTimeout bounds each individual store call.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.storeTimeout = timeout
		}
	}
}

func WithEmitter(emitter telemetry.Emitter) Option {
	return func(o *options) {
		if emitter != nil {
			o.emitter = emitter
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock overrides the clock used to stamp device check-ins.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		storeTimeout: DefaultStoreTimeout,
		emitter:      telemetry.Discard{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
