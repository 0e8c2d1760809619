package engine

// Options holds the tunable behavior of an engine run.
type Options struct {
	disableTradeMatching bool
}

// Option mutates the engine options.
type Option func(*Options)

// WithDisabledTradeMatching stops orders from filling against historical
// trades. Book matching still happens, and historical trades still flow into
// the market trade view at their full quantities.
func WithDisabledTradeMatching() Option {
	return func(o *Options) {
		o.disableTradeMatching = true
	}
}
