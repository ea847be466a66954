package graph

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig configures retry behavior for node functions
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	RetryableErrors func(error) bool // Determines if an error should trigger retry
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		RetryableErrors: func(_ error) bool {
			// By default, retry all errors
			return true
		},
	}
}

// RetryNode wraps a node function with retry logic. Each attempt sees the
// same state snapshot; only the final error reaches the engine.
type RetryNode struct {
	name   string
	fn     NodeFunction
	config *RetryConfig
}

var _ NodeFunction = (*RetryNode)(nil)

// NewRetryNode creates a new retry node; name is only used in error messages.
func NewRetryNode(name string, fn NodeFunction, config *RetryConfig) *RetryNode {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryNode{
		name:   name,
		fn:     fn,
		config: config,
	}
}

// Invoke runs the node function with retry logic
func (rn *RetryNode) Invoke(ctx context.Context, state map[string]any, tools Tools) (*Result, error) {
	var lastErr error
	delay := rn.config.InitialDelay
	attempts := max(rn.config.MaxAttempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		default:
		}

		// A node may mutate its snapshot, so every attempt gets a fresh one.
		result, err := rn.fn.Invoke(ctx, CloneState(state), tools)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if rn.config.RetryableErrors != nil && !rn.config.RetryableErrors(err) {
			return nil, fmt.Errorf("non-retryable error in %s: %w", rn.name, err)
		}

		// Don't sleep after the last attempt
		if attempt < attempts {
			select {
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * rn.config.BackoffFactor)
				if rn.config.MaxDelay > 0 {
					delay = min(delay, rn.config.MaxDelay)
				}
			case <-ctx.Done():
				return nil, fmt.Errorf("retry cancelled during backoff: %w", ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("max retries (%d) exceeded for %s: %w", attempts, rn.name, lastErr)
}

// TimeoutNode wraps a node function with a deadline
type TimeoutNode struct {
	name    string
	fn      NodeFunction
	timeout time.Duration
}

var _ NodeFunction = (*TimeoutNode)(nil)

// NewTimeoutNode creates a new timeout node
func NewTimeoutNode(name string, fn NodeFunction, timeout time.Duration) *TimeoutNode {
	return &TimeoutNode{
		name:    name,
		fn:      fn,
		timeout: timeout,
	}
}

// Invoke runs the node function and gives up once the timeout passes. The
// function keeps its cancelled context and its late result is discarded.
func (tn *TimeoutNode) Invoke(ctx context.Context, state map[string]any, tools Tools) (*Result, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, tn.timeout)
	defer cancel()

	type outcome struct {
		result *Result
		err    error
		panic  any
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{panic: r}
			}
		}()
		result, err := tn.fn.Invoke(timeoutCtx, state, tools)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.panic != nil {
			// re-raised so the engine reports it like any other node panic
			panic(out.panic)
		}
		return out.result, out.err
	case <-timeoutCtx.Done():
		return nil, fmt.Errorf("node %s timed out after %v", tn.name, tn.timeout)
	}
}
