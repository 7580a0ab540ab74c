package signal

// Option configures a signal at construction time.
type Option func(*options)

type options struct {
	activity string
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithActivityName names the signal for logging and metrics. Unnamed signals
// get a generated identity.
func WithActivityName(activity string) Option {
	return func(o *options) {
		o.activity = activity
	}
}

type subscribeOptions struct {
	onFailed      func(error)
	onCompleted   func()
	onInterrupted func()
}

// SubscribeOption adds optional terminal callbacks to Subscribe.
type SubscribeOption func(*subscribeOptions)

func WithOnFailed(onFailed func(error)) SubscribeOption {
	return func(o *subscribeOptions) {
		o.onFailed = onFailed
	}
}

func WithOnCompleted(onCompleted func()) SubscribeOption {
	return func(o *subscribeOptions) {
		o.onCompleted = onCompleted
	}
}

func WithOnInterrupted(onInterrupted func()) SubscribeOption {
	return func(o *subscribeOptions) {
		o.onInterrupted = onInterrupted
	}
}

// CallbackObserver assembles an Observer from a value callback plus
// subscribe options.
func CallbackObserver[V any](onValue func(V), opts ...SubscribeOption) Observer[V] {
	options := &subscribeOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return Observer[V]{
		OnValue:       onValue,
		OnFailed:      options.onFailed,
		OnCompleted:   options.onCompleted,
		OnInterrupted: options.onInterrupted,
	}
}
