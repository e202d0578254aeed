// Package repository defines the score store interface and errors.
package repository

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithHistoryLimit sets the default row limit for history queries that
// do not specify one.
func WithHistoryLimit(limit int) Option {
	return func(s *SQLStore) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}
