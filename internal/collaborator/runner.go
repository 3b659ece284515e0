// Package collaborator executes named data queries against an external
// producer. The gateway treats the output as opaque text; shaping it into
// a response body happens at the HTTP layer.
package collaborator

import (
	"context"
	"fmt"
)

// Runner executes a named query and returns its raw output.
type Runner interface {
	RunQuery(ctx context.Context, name string, args map[string]string) (string, error)
}

// QueryFunc is a single query implementation.
type QueryFunc func(ctx context.Context, args map[string]string) (string, error)

// FuncRunner dispatches queries to registered Go functions. Useful for
// tests and for embedding data sources directly in the process.
type FuncRunner struct {
	queries map[string]QueryFunc
}

// NewFuncRunner creates an empty function-backed runner.
func NewFuncRunner() *FuncRunner {
	return &FuncRunner{queries: make(map[string]QueryFunc)}
}

// Register adds a query implementation under a name, replacing any
// previous registration.
func (r *FuncRunner) Register(name string, fn QueryFunc) {
	r.queries[name] = fn
}

// RunQuery implements Runner.
func (r *FuncRunner) RunQuery(ctx context.Context, name string, args map[string]string) (string, error) {
	fn, ok := r.queries[name]
	if !ok {
		return "", fmt.Errorf("unknown query %q", name)
	}
	return fn(ctx, args)
}
