package decision

import (
	"math"
	"sort"
)

// Ranked is one alternative's position in a MOORA outcome.
type Ranked struct {
	AlternativeID string  `json:"alternative_id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Score         float64 `json:"score"`
	Rank          int     `json:"rank"`
}

// RankingDetail carries the ranked outcome plus the intermediate matrices,
// which the report layer renders alongside the final table. Row order in the
// matrices matches Alternatives; column order matches CriterionCodes.
type RankingDetail struct {
	Alternatives   []Alternative `json:"alternatives"`
	CriterionCodes []string      `json:"criterion_codes"`
	Raw            [][]float64   `json:"raw"`
	Normalized     [][]float64   `json:"normalized"`
	Weighted       [][]float64   `json:"weighted"`
	Ranked         []Ranked      `json:"ranked"`
}

// MooraRank ranks alternatives by the ratio-system MOORA method: vector
// normalization per column, weighting, then benefit-minus-cost composite
// scores sorted descending.
//
// Alternatives missing any score are silently excluded (partial data entry is
// expected during setup). An all-zero column normalizes to zeros rather than
// erroring; it contributes no discriminating power. Equal scores keep the
// callers' input order, so ties resolve to the earliest-created alternative
// when rows are loaded in creation order.
func MooraRank(criteria []Criterion, alts []Alternative, scores ScoreMatrix, weights WeightVector) (*RankingDetail, error) {
	if len(weights) == 0 {
		return nil, ErrNoWeights
	}
	for _, c := range criteria {
		if _, ok := weights[c.Code]; !ok {
			return nil, ErrNoWeights
		}
	}

	rows := CompleteRows(alts, criteria, scores)
	if len(rows) == 0 {
		return nil, ErrNoCompleteAlternatives
	}

	codes := make([]string, len(criteria))
	raw := make([][]float64, len(rows))
	for i, a := range rows {
		raw[i] = make([]float64, len(criteria))
		for j, c := range criteria {
			codes[j] = c.Code
			v, _ := scores.Get(a.ID, c.Code)
			raw[i][j] = v
		}
	}

	// Vector normalization: r[i][j] = x[i][j] / sqrt(sum_i x[i][j]^2).
	denom := make([]float64, len(criteria))
	for j := range criteria {
		var ss float64
		for i := range raw {
			ss += raw[i][j] * raw[i][j]
		}
		denom[j] = math.Sqrt(ss)
	}

	normalized := make([][]float64, len(rows))
	weighted := make([][]float64, len(rows))
	composite := make([]float64, len(rows))
	for i := range rows {
		normalized[i] = make([]float64, len(criteria))
		weighted[i] = make([]float64, len(criteria))
		for j, c := range criteria {
			if denom[j] != 0 {
				normalized[i][j] = raw[i][j] / denom[j]
			}
			weighted[i][j] = normalized[i][j] * weights[c.Code]
			if c.Polarity == Cost {
				composite[i] -= weighted[i][j]
			} else {
				composite[i] += weighted[i][j]
			}
		}
	}

	ranked := make([]Ranked, len(rows))
	for i, a := range rows {
		ranked[i] = Ranked{
			AlternativeID: a.ID,
			Code:          a.Code,
			Name:          a.Name,
			Score:         composite[i],
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return &RankingDetail{
		Alternatives:   rows,
		CriterionCodes: codes,
		Raw:            raw,
		Normalized:     normalized,
		Weighted:       weighted,
		Ranked:         ranked,
	}, nil
}
