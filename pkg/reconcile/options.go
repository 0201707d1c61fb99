package reconcile

import "github.com/rs/zerolog"

// Option is a functional option for configuring the Reconciler.
type Option func(*reconciler)

// WithWorkers sets the number of parallel comparison workers.
func WithWorkers(n int) Option {
	return func(r *reconciler) {
		r.workers = n
	}
}

// WithLogger sets the logger used during the pass.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTopN overrides the catalog's problematic-variable ranking size.
func WithTopN(n int) Option {
	return func(r *reconciler) {
		if n > 0 {
			r.topN = n
		}
	}
}
