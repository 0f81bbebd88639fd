package feed

import (
	"context"
	"fmt"

	"FeedSentinel/pkg/obswire"
)

// Request carries the parameters required to open an event stream.
type Request struct {
	Options map[string]string
}

// Source captures a single event-stream implementation (replay file, bus
// subscription, etc.).
type Source interface {
	Name() string
	Stream(ctx context.Context, req Request) (<-chan obswire.Event, error)
}

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(source Source) {
	if r.sources == nil {
		r.sources = map[string]Source{}
	}
	r.sources[source.Name()] = source
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if source, ok := r.sources[name]; ok {
		return source, nil
	}
	return nil, fmt.Errorf("event source %s is not registered", name)
}
