package service

import "time"

// Option configures a service constructor.
type Option func(*options)

type options struct {
	now      func() time.Time
	observer UseCaseObserver
}

// WithClock overrides the wall clock used for lifecycle timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithObserver attaches a use-case observer. Repeated calls combine observers.
func WithObserver(obs UseCaseObserver) Option {
	return func(o *options) {
		o.observer = CombineObservers(o.observer, obs)
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:      func() time.Time { return time.Now().UTC() },
		observer: nil,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		o.observer = NoopUseCaseObserver{}
	}
	return o
}
