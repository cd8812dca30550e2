package flows

import (
	"context"

	"github.com/MrEthical07/goSession/jwt"
)

// GateFailureKind classifies gate failures for root-level mapping.
type GateFailureKind int

const (
	GateFailureNone GateFailureKind = iota
	// GateFailureExhausted means every step was tried and none verified.
	GateFailureExhausted
	// GateFailureThrottled means a step's Before hook refused to run it.
	GateFailureThrottled
)

// GateStep is one verification strategy, tried in order. Path is an opaque
// identifier the caller maps back to its own enum.
type GateStep struct {
	Path   int
	Token  string
	Before func(ctx context.Context, token string) error
	Verify func(ctx context.Context, token string) (*jwt.Claims, error)
}

// GateResult reports the allowing step or, on failure, why every step failed.
// StepErrs is indexed like the input steps; a nil entry means the step was
// never reached.
type GateResult struct {
	Failure  GateFailureKind
	Err      error
	Path     int
	Claims   *jwt.Claims
	StepErrs []error
}

// RunGate tries steps in order and stops at the first that verifies.
func RunGate(ctx context.Context, steps []GateStep) GateResult {
	result := GateResult{
		Failure:  GateFailureExhausted,
		StepErrs: make([]error, len(steps)),
	}

	for i, step := range steps {
		if step.Before != nil {
			if err := step.Before(ctx, step.Token); err != nil {
				result.StepErrs[i] = err
				result.Failure = GateFailureThrottled
				result.Err = err
				result.Path = step.Path
				return result
			}
		}

		claims, err := step.Verify(ctx, step.Token)
		if err != nil {
			result.StepErrs[i] = err
			result.Err = err
			continue
		}

		result.Failure = GateFailureNone
		result.Err = nil
		result.Path = step.Path
		result.Claims = claims
		return result
	}

	return result
}
