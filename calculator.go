package taskmeter

import (
	"fmt"
	"math"
)

// Calculator converts a step count into a fraction complete for one task.
// Fraction must be a pure function of the step count and the calculator's
// construction parameters, returning a value in [0, 1].
type Calculator interface {
	Fraction(step int) (float64, error)
}

// CalculatorFunc adapts a plain function to the Calculator interface, the
// usual vehicle for custom progress strategies.
type CalculatorFunc func(step int) (float64, error)

// Fraction calls f.
func (f CalculatorFunc) Fraction(step int) (float64, error) {
	return f(step)
}

type fixedCalculator struct {
	total int
}

// NewFixedCalculator builds a Calculator for a task with a known number of
// uniform steps. A negative total is rejected with ErrInvalidArgument. A zero
// total is legal: the fraction is 0 until the task ends.
func NewFixedCalculator(totalSteps int) (Calculator, error) {
	if totalSteps < 0 {
		return nil, fmt.Errorf("fixed calculator: total steps %d is negative: %w", totalSteps, ErrInvalidArgument)
	}
	return fixedCalculator{total: totalSteps}, nil
}

func (c fixedCalculator) Fraction(step int) (float64, error) {
	if step < 0 {
		return 0, fmt.Errorf("fixed calculator: step %d is negative: %w", step, ErrOutOfRange)
	}
	if step == 0 {
		return 0, nil
	}
	if step > c.total {
		return 0, fmt.Errorf("fixed calculator: step %d exceeds total %d: %w", step, c.total, ErrOutOfRange)
	}
	return float64(step) / float64(c.total), nil
}

type weightedCalculator struct {
	// cumulative[k] holds the fraction complete after k steps.
	cumulative []float64
}

// NewWeightedCalculator builds a Calculator whose steps contribute unevenly,
// one weight per expected step. The weights must be non-empty, non-negative,
// and sum to a positive value; anything else is rejected with
// ErrInvalidArgument.
func NewWeightedCalculator(weights []float64) (Calculator, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("weighted calculator: empty weights: %w", ErrInvalidArgument)
	}
	var total float64
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("weighted calculator: weight %v at index %d is negative: %w", w, i, ErrInvalidArgument)
		}
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("weighted calculator: weights sum to zero: %w", ErrInvalidArgument)
	}
	cumulative := make([]float64, len(weights)+1)
	var sum float64
	for i, w := range weights {
		sum += w
		cumulative[i+1] = sum / total
	}
	// Floating accumulation can land shy of 1; the final step is 1 by definition.
	cumulative[len(weights)] = 1
	return weightedCalculator{cumulative: cumulative}, nil
}

func (c weightedCalculator) Fraction(step int) (float64, error) {
	if step < 0 {
		return 0, fmt.Errorf("weighted calculator: step %d is negative: %w", step, ErrOutOfRange)
	}
	if step >= len(c.cumulative) {
		return 0, fmt.Errorf("weighted calculator: step %d exceeds %d weights: %w", step, len(c.cumulative)-1, ErrOutOfRange)
	}
	return c.cumulative[step], nil
}

type unknownCalculator struct {
	estimatedCount  int
	estimatedWeight float64
}

// NewUnknownCalculator builds a Calculator for a task whose total step count
// is not known in advance. The fraction is 0 at step 0, exactly
// estimatedWeight at estimatedCount steps, and approaches 1 asymptotically
// without ever reaching it. estimatedCount must be positive and
// estimatedWeight strictly inside (0, 1); a weight of 0 or 1 would make
// the curve degenerate or saturate immediately.
func NewUnknownCalculator(estimatedCount int, estimatedWeight float64) (Calculator, error) {
	if estimatedCount <= 0 {
		return nil, fmt.Errorf("unknown calculator: estimated count %d is not positive: %w", estimatedCount, ErrInvalidArgument)
	}
	if math.IsNaN(estimatedWeight) || estimatedWeight <= 0 || estimatedWeight >= 1 {
		return nil, fmt.Errorf("unknown calculator: estimated weight %v outside (0, 1): %w", estimatedWeight, ErrInvalidArgument)
	}
	return unknownCalculator{estimatedCount: estimatedCount, estimatedWeight: estimatedWeight}, nil
}

func (c unknownCalculator) Fraction(step int) (float64, error) {
	if step < 0 {
		return 0, fmt.Errorf("unknown calculator: step %d is negative: %w", step, ErrOutOfRange)
	}
	if step == 0 {
		return 0, nil
	}
	exponent := float64(step) / float64(c.estimatedCount)
	return 1 - math.Pow(1-c.estimatedWeight, exponent), nil
}

// clamp01 bounds a fraction to [0, 1] and maps NaN to 0.
func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
