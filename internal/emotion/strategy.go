// Package emotion collects emotion readings for a captured frame and reduces
// them to a single confidence-weighted result.
package emotion

import (
	"errors"
	"fmt"
)

// Phase is one pass of the sampling strategy
type Phase struct {
	Name string
	// Strict values cycle by attempt index within the phase
	Strict []bool
	// MinConfidence is the lowest dominant-emotion score (0-100) accepted
	MinConfidence float64
	// BudgetFactor caps the phase at target*BudgetFactor classifier calls
	BudgetFactor int
	// RequireRegion rejects readings that did not locate the face
	RequireRegion bool
}

// Strategy is the ordered list of phases plus the detector backends they rotate through
type Strategy struct {
	Backends []string
	Phases   []Phase
}

// DefaultBackends are the detector backends used when none are configured
var DefaultBackends = []string{"opencv", "mtcnn"}

// DefaultStrategy returns the two-phase strategy: a primary pass alternating
// lenient and strict detection at confidence 50, then a relaxed lenient pass
// at confidence 40 that only runs when the first one fell short.
func DefaultStrategy(backends []string) Strategy {
	if len(backends) == 0 {
		backends = DefaultBackends
	}
	return Strategy{
		Backends: backends,
		Phases: []Phase{
			{
				Name:          "primary",
				Strict:        []bool{false, true},
				MinConfidence: 50,
				BudgetFactor:  3,
				RequireRegion: true,
			},
			{
				Name:          "relaxed",
				Strict:        []bool{false},
				MinConfidence: 40,
				BudgetFactor:  2,
			},
		},
	}
}

// MaxAttempts is the total classifier call budget for a target sample count
func (s Strategy) MaxAttempts(target int) int {
	total := 0
	for _, p := range s.Phases {
		total += target * p.BudgetFactor
	}
	return total
}

// Validate checks that the strategy can run
func (s Strategy) Validate() error {
	if len(s.Backends) == 0 {
		return errors.New("strategy needs at least one backend")
	}
	if len(s.Phases) == 0 {
		return errors.New("strategy needs at least one phase")
	}
	for i, p := range s.Phases {
		if len(p.Strict) == 0 {
			return fmt.Errorf("phase %d (%s): strict cycle is empty", i, p.Name)
		}
		if p.BudgetFactor < 1 {
			return fmt.Errorf("phase %d (%s): budget factor must be at least 1", i, p.Name)
		}
		if p.MinConfidence < 0 || p.MinConfidence > 100 {
			return fmt.Errorf("phase %d (%s): min confidence must be within 0-100", i, p.Name)
		}
	}
	return nil
}
