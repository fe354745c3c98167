package decision

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCriteriaSet is returned when weighting is attempted with zero criteria.
	ErrEmptyCriteriaSet = errors.New("decision: empty criteria set")

	// ErrInsufficientAlternatives is returned when fewer than two alternatives
	// have complete score rows; the removal-effect formula is degenerate with one row.
	ErrInsufficientAlternatives = errors.New("decision: fewer than 2 alternatives with complete scores")

	// ErrNoWeights is returned when ranking is attempted with an empty weight
	// vector or one missing a criterion code in scope.
	ErrNoWeights = errors.New("decision: weight vector empty or incomplete")

	// ErrNoCompleteAlternatives is returned when no alternative qualifies for ranking.
	ErrNoCompleteAlternatives = errors.New("decision: no alternatives with complete scores")
)

// DegenerateColumnError reports a criterion column that cannot be normalized
// (zero maximum for a benefit column, or a zero raw value in a cost column).
type DegenerateColumnError struct {
	Code string
}

func (e *DegenerateColumnError) Error() string {
	return fmt.Sprintf("decision: degenerate column %s", e.Code)
}
