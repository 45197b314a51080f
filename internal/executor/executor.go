// Package executor implements the four skill executors the engine
// dispatches to. These are the system's out-of-scope collaborators per
// spec.md §1 — specified here only at their interface — but a runnable
// gateway needs at least a working implementation of each, so each is kept
// deliberately small.
//
// Error-handling policy follows spec.md §7: executor failures are values,
// never propagated as exceptions. Every call carries the 30s deadline from
// spec.md §5.
package executor

import (
	"context"
	"time"

	"github.com/a2a402/gateway/internal/parser"
)

// CallTimeout is the per-invocation deadline spec.md §5 mandates.
const CallTimeout = 30 * time.Second

// Result is the outcome of a successful executor call.
type Result struct {
	// ContentType is the MIME type of Data, or empty if Text is populated
	// instead.
	ContentType string
	Data        []byte
	Text        string
	// Degraded marks a successful-but-placeholder result (e.g. ai-analysis
	// without a configured provider key), per spec.md §7's graceful
	// degradation policy.
	Degraded bool
}

// Executor runs one skill's backing logic.
type Executor interface {
	Execute(ctx context.Context, req parser.Request) (Result, error)
}

// Registry maps skill ids to their executor.
type Registry map[string]Executor

// Run looks up the executor for skillID and runs it under CallTimeout,
// returning a timeout error if it fails to return in time.
func (r Registry) Run(ctx context.Context, skillID string, req parser.Request) (Result, error) {
	ex, ok := r[skillID]
	if !ok {
		return Result{}, errUnknownSkill(skillID)
	}
	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	type outcome struct {
		res Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := ex.Execute(ctx, req)
		ch <- outcome{res, err}
	}()

	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		return Result{}, errTimeout(skillID)
	}
}
