package domain

import "errors"

var (
	// ErrConvergence marks a model fit the optimizer could not stabilize
	// (singular design, non-SPD normal equations). The fit is excluded from
	// the ranking and reported by name.
	ErrConvergence = errors.New("model failed to converge")

	// ErrInsufficientData marks a dataset that cannot support estimation
	// (fewer than two genre levels, authors, or distinct years).
	ErrInsufficientData = errors.New("insufficient data")
)
