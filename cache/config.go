package cache

import (
	"fmt"
	"time"
)

// Options configures caching for one wrapped handler. Namespaces lists the
// logical collections the handler reads; their current versions become
// part of every key the handler produces.
type Options struct {
	// FreshTTL is how long a stored value is served without touching
	// the handler.
	FreshTTL time.Duration

	// StaleWhileRevalidate is the window after FreshTTL during which the
	// stored value is still served while a background refresh runs.
	StaleWhileRevalidate time.Duration

	// Namespaces the handler reads, e.g. "orders". A bump on any of them
	// orphans every key built with these options.
	Namespaces []string
}

// Validate checks the option values are usable.
func (o Options) Validate() error {
	if o.FreshTTL <= 0 {
		return fmt.Errorf("cache: FreshTTL must be greater than 0, got %v", o.FreshTTL)
	}
	if o.StaleWhileRevalidate < 0 {
		return fmt.Errorf("cache: StaleWhileRevalidate must be non-negative, got %v", o.StaleWhileRevalidate)
	}
	return nil
}
