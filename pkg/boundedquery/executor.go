// Package boundedquery runs read operations under a per-attempt timeout with
// bounded, exponentially backed-off retries.
//
// Operations are retried automatically, so they must be safe to run more than
// once. Never wrap a write.
package boundedquery

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "tourism-marketplace/boundedquery"

// Func is a read operation. It must honour ctx.
type Func[T any] func(ctx context.Context) (T, error)

// Spec names a read operation together with its retry policy.
type Spec[T any] struct {
	Name    string
	Execute Func[T]
	Policy  Policy
}

// Outcome is the result of running a Spec. Exactly one of Value (when Err is
// nil) or Err is meaningful.
type Outcome[T any] struct {
	Value    T
	Attempts int
	Err      *QueryError
}

func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// ValueOr returns the value on success and def otherwise.
func (o Outcome[T]) ValueOr(def T) T {
	if o.Err != nil {
		return def
	}
	return o.Value
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Executor holds the collaborators shared by every run. It keeps no state
// between runs and is safe for concurrent use.
type Executor struct {
	logger *zap.Logger
	sleep  Sleeper
	tracer trace.Tracer
}

// Option configures an Executor.
type Option func(*Executor)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSleeper replaces the backoff wait. Tests use it to observe waits.
func WithSleeper(sleep Sleeper) Option {
	return func(e *Executor) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// NewExecutor creates an Executor.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		logger: zap.NewNop(),
		sleep:  sleepContext,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes spec until an attempt succeeds, the policy's attempts are
// exhausted or ctx ends. It always returns; failures are reported in the
// Outcome rather than panicking or blocking.
func Run[T any](ctx context.Context, e *Executor, spec Spec[T]) Outcome[T] {
	if e == nil {
		e = NewExecutor()
	}
	policy := spec.Policy.Normalize()
	log := e.logger.With(zap.String("query", spec.Name))

	ctx, span := e.tracer.Start(ctx, "boundedquery.run",
		trace.WithAttributes(attribute.String("query.name", spec.Name)))
	defer span.End()

	finish := func(out Outcome[T]) Outcome[T] {
		span.SetAttributes(attribute.Int("query.attempts", out.Attempts))
		if out.Err != nil {
			span.SetAttributes(attribute.String("query.outcome", out.Err.Kind.String()))
			span.SetStatus(codes.Error, out.Err.Error())
		} else {
			span.SetAttributes(attribute.String("query.outcome", "succeeded"))
		}
		return out
	}

	if spec.Execute == nil {
		return finish(Outcome[T]{Err: &QueryError{
			Query: spec.Name,
			Kind:  KindTerminalFailure,
			Err:   errors.New("no operation to execute"),
		}})
	}

	b := policy.newBackOff()
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return finish(cancelled[T](spec.Name, attempt-1, ctx.Err()))
		}

		value, aerr := runAttempt(ctx, spec.Execute, policy.Timeout)
		if aerr == nil {
			if attempt > 1 {
				log.Debug("query succeeded after retry", zap.Int("attempt", attempt))
			}
			return finish(Outcome[T]{Value: value, Attempts: attempt})
		}
		if aerr.kind == KindCancelled {
			return finish(cancelled[T](spec.Name, attempt, aerr.err))
		}

		if attempt >= policy.MaxRetries {
			log.Debug("query failed terminally",
				zap.Int("attempts", attempt),
				zap.String("last_failure", aerr.kind.String()),
				zap.Error(aerr.err))
			return finish(Outcome[T]{
				Attempts: attempt,
				Err: &QueryError{
					Query:    spec.Name,
					Kind:     KindTerminalFailure,
					Attempts: attempt,
					LastKind: aerr.kind,
					Err:      aerr.err,
				},
			})
		}

		delay := b.NextBackOff()
		log.Debug("query attempt failed, backing off",
			zap.Int("attempt", attempt),
			zap.String("failure", aerr.kind.String()),
			zap.Duration("backoff", delay),
			zap.Error(aerr.err))

		if err := e.sleep(ctx, delay); err != nil {
			return finish(cancelled[T](spec.Name, attempt, err))
		}
	}
}

func cancelled[T any](name string, attempts int, cause error) Outcome[T] {
	return Outcome[T]{
		Attempts: attempts,
		Err: &QueryError{
			Query:    name,
			Kind:     KindCancelled,
			Attempts: attempts,
			Err:      cause,
		},
	}
}

type attemptResult[T any] struct {
	value T
	err   error
}

// runAttempt races fn against a single timer. The timer is released as soon
// as the race is decided.
func runAttempt[T any](ctx context.Context, fn Func[T], timeout time.Duration) (T, *attemptError) {
	var zero T

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult[T]{err: &panicError{value: r}}
			}
		}()
		v, err := fn(attemptCtx)
		done <- attemptResult[T]{value: v, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			return res.value, nil
		}
		if ctx.Err() != nil {
			return zero, &attemptError{kind: KindCancelled, err: ctx.Err()}
		}
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return zero, &attemptError{kind: KindAttemptTimeout, err: ErrAttemptTimeout}
		}
		return zero, &attemptError{kind: KindAttemptError, err: res.err}
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return zero, &attemptError{kind: KindCancelled, err: ctx.Err()}
		}
		return zero, &attemptError{kind: KindAttemptTimeout, err: ErrAttemptTimeout}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
