// Package storage defines the sink abstraction that receives finished mart
// tables, and a small factory so the pipeline stays backend-agnostic.
// Concrete backends register themselves from init; import storage/all to
// enable every built-in kind.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"moviemart/internal/config"
	"moviemart/internal/schema"
)

// Sink receives whole tables. Replace must swap the table in as a unit:
// readers see either the previous contents or all of t, never a mix.
type Sink interface {
	Replace(ctx context.Context, t schema.Table) (int64, error)
	Close() error
}

// Config is the backend-neutral view of one configured sink.
type Config struct {
	Kind string

	DSN    string
	Schema string

	Dir string

	Project         string
	Dataset         string
	Location        string
	CredentialsFile string
}

// ConfigFromSink flattens a pipeline sink entry.
func ConfigFromSink(s config.Sink) Config {
	return Config{
		Kind:     s.Kind,
		DSN:      s.DB.DSN,
		Schema:   s.DB.Schema,
		Dir:      s.File.Dir,
		Project:  s.BigQuery.Project,
		Dataset:  s.BigQuery.Dataset,
		Location: s.BigQuery.Location,

		CredentialsFile: s.BigQuery.CredentialsFile,
	}
}

// Factory opens a Sink.
type Factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a sink of cfg.Kind.
func New(ctx context.Context, cfg Config) (Sink, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: no backend registered for kind %q", cfg.Kind)
	}
	return f(ctx, cfg)
}

// Kinds lists registered backends, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
