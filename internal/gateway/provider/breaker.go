package provider

import (
	"context"
	"errors"
	"fmt"

	"stockbrief/internal/pkg/circuit"
)

// ErrCircuitOpen is returned, wrapped in ErrInference, while the breaker
// rejects calls.
var ErrCircuitOpen = errors.New("circuit open")

// BreakerModel fails fast after repeated inference failures. It never
// retries; a rejected call is an ordinary ErrInference.
type BreakerModel struct {
	inner   ChatModel
	breaker *circuit.Breaker
}

func NewBreakerModel(inner ChatModel, breaker *circuit.Breaker) *BreakerModel {
	return &BreakerModel{inner: inner, breaker: breaker}
}

func (m *BreakerModel) ID() string { return m.inner.ID() }

func (m *BreakerModel) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if !m.breaker.Allow() {
		return "", fmt.Errorf("%w: %s: %w", ErrInference, m.inner.ID(), ErrCircuitOpen)
	}
	out, err := m.inner.Complete(ctx, req)
	switch {
	case err == nil:
		m.breaker.RecordSuccess()
	case errors.Is(err, context.Canceled):
		// caller gave up; says nothing about the service
		m.breaker.Release()
	default:
		m.breaker.RecordFailure()
	}
	return out, err
}
