package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Router manages catalog source factories and keeps one live connection
// per driver.
type Router struct {
	factories map[string]SourceFactory
	pool      map[string]Source
	mu        sync.RWMutex
}

// NewRouter creates a new source router
func NewRouter() *Router {
	return &Router{
		factories: make(map[string]SourceFactory),
		pool:      make(map[string]Source),
	}
}

// RegisterSource registers a source factory for a driver
func (r *Router) RegisterSource(driver string, factory SourceFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[driver] = factory
}

// SupportedDrivers returns the registered drivers, sorted
func (r *Router) SupportedDrivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.factories))
	for d := range r.factories {
		drivers = append(drivers, d)
	}
	sort.Strings(drivers)
	return drivers
}

// GetSource returns a healthy source for the driver, connecting if needed
func (r *Router) GetSource(ctx context.Context, driver string, config ConnectionConfig) (Source, error) {
	r.mu.RLock()
	if src, ok := r.pool[driver]; ok {
		r.mu.RUnlock()
		if err := src.HealthCheck(ctx); err == nil {
			return src, nil
		}
		// Unhealthy, reconnect below
		r.mu.Lock()
		src.Close()
		delete(r.pool, driver)
		r.mu.Unlock()
	} else {
		r.mu.RUnlock()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if src, ok := r.pool[driver]; ok {
		if err := src.HealthCheck(ctx); err == nil {
			return src, nil
		}
		src.Close()
		delete(r.pool, driver)
	}

	factory, ok := r.factories[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported catalog driver: %s", driver)
	}

	src := factory()
	if err := src.Connect(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	r.pool[driver] = src
	return src, nil
}

// CloseAll closes all pooled sources
func (r *Router) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for driver, src := range r.pool {
		src.Close()
		delete(r.pool, driver)
	}
}

// PoolSize returns the number of live sources
func (r *Router) PoolSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pool)
}
