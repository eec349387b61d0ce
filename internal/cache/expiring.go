// Package cache holds small value types for cached data that goes stale.
package cache

import "time"

// Expiring is a cached value paired with the instant it stops being valid.
// The zero value is stale.
type Expiring[T any] struct {
	Value     T
	ExpiresAt time.Time
}

// NewExpiring caches value for ttl from now
func NewExpiring[T any](value T, ttl time.Duration, now time.Time) Expiring[T] {
	return Expiring[T]{Value: value, ExpiresAt: now.Add(ttl)}
}

// IsStale reports whether the value must be refreshed at now
func (e Expiring[T]) IsStale(now time.Time) bool {
	return e.ExpiresAt.IsZero() || !now.Before(e.ExpiresAt)
}
