package decision

import "math"

// MerecWeights computes objective criterion weights by the removal-effect
// method: each criterion's weight is proportional to how much dropping it
// changes the aggregate normalized score of every alternative.
//
// Only alternatives with a complete score row enter the matrix. The result is
// pure output; persistence belongs to the caller. The returned vector sums to
// 1 within 1e-9.
func MerecWeights(criteria []Criterion, alts []Alternative, scores ScoreMatrix) (WeightVector, error) {
	if len(criteria) == 0 {
		return nil, ErrEmptyCriteriaSet
	}

	rows := CompleteRows(alts, criteria, scores)
	if len(rows) < 2 {
		return nil, ErrInsufficientAlternatives
	}

	// Raw matrix, row per alternative, column per criterion.
	matrix := make([][]float64, len(rows))
	for i, a := range rows {
		matrix[i] = make([]float64, len(criteria))
		for j, c := range criteria {
			v, _ := scores.Get(a.ID, c.Code)
			matrix[i][j] = v
		}
	}

	norm, err := normalizeByRange(criteria, matrix)
	if err != nil {
		return nil, err
	}

	// Full aggregate per alternative, then per-criterion removal effect.
	full := make([]float64, len(rows))
	for i := range norm {
		for j := range criteria {
			full[i] += norm[i][j]
		}
	}

	effects := make([]float64, len(criteria))
	for j := range criteria {
		var sum float64
		for i := range norm {
			without := full[i] - norm[i][j]
			sum += math.Abs(full[i] - without)
		}
		effects[j] = sum / float64(len(rows))
	}

	var total float64
	for _, e := range effects {
		total += e
	}
	if total == 0 {
		// Unreachable once columns pass normalization, kept as a guard.
		return nil, &DegenerateColumnError{Code: criteria[0].Code}
	}

	weights := make(WeightVector, len(criteria))
	for j, c := range criteria {
		weights[c.Code] = effects[j] / total
	}
	return weights, nil
}

// normalizeByRange applies the MEREC normalization: benefit columns divide by
// the column maximum, cost columns divide the column minimum by each value.
// Zero denominators abort with DegenerateColumnError instead of emitting NaN.
func normalizeByRange(criteria []Criterion, matrix [][]float64) ([][]float64, error) {
	norm := make([][]float64, len(matrix))
	for i := range matrix {
		norm[i] = make([]float64, len(criteria))
	}

	for j, c := range criteria {
		max := matrix[0][j]
		min := matrix[0][j]
		for i := range matrix {
			if matrix[i][j] > max {
				max = matrix[i][j]
			}
			if matrix[i][j] < min {
				min = matrix[i][j]
			}
		}

		switch c.Polarity {
		case Cost:
			for i := range matrix {
				if matrix[i][j] == 0 {
					return nil, &DegenerateColumnError{Code: c.Code}
				}
				norm[i][j] = min / matrix[i][j]
			}
		default:
			if max == 0 {
				return nil, &DegenerateColumnError{Code: c.Code}
			}
			for i := range matrix {
				norm[i][j] = matrix[i][j] / max
			}
		}
	}
	return norm, nil
}
