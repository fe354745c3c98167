package decision

// Polarity marks whether higher raw values are desirable for a criterion.
type Polarity string

const (
	Benefit Polarity = "Benefit"
	Cost    Polarity = "Cost"
)

// Criterion is one scoring dimension of an agenda.
type Criterion struct {
	Code            string   `json:"code"`
	Name            string   `json:"name"`
	Polarity        Polarity `json:"polarity"`
	ManualWeight    float64  `json:"manual_weight"`
	ObjectiveWeight float64  `json:"objective_weight"`
}

// Alternative is a candidate identity; its raw scores live in a ScoreMatrix.
type Alternative struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ScoreMatrix maps alternative ID -> criterion code -> raw score.
// The matrix is sparse: cells are written independently during setup.
type ScoreMatrix map[string]map[string]float64

// Get returns the cell value and whether it is present.
func (m ScoreMatrix) Get(altID, code string) (float64, bool) {
	row, ok := m[altID]
	if !ok {
		return 0, false
	}
	v, ok := row[code]
	return v, ok
}

// Set writes one cell, creating the row if needed.
func (m ScoreMatrix) Set(altID, code string, value float64) {
	row, ok := m[altID]
	if !ok {
		row = make(map[string]float64)
		m[altID] = row
	}
	row[code] = value
}

// Complete reports whether the alternative has a score for every criterion.
func (m ScoreMatrix) Complete(altID string, criteria []Criterion) bool {
	row, ok := m[altID]
	if !ok {
		return false
	}
	for _, c := range criteria {
		if _, ok := row[c.Code]; !ok {
			return false
		}
	}
	return true
}

// CompleteRows filters alternatives down to those with a full score row,
// preserving input order. Incomplete alternatives are expected during setup
// and are excluded rather than rejected.
func CompleteRows(alts []Alternative, criteria []Criterion, m ScoreMatrix) []Alternative {
	var out []Alternative
	for _, a := range alts {
		if m.Complete(a.ID, criteria) {
			out = append(out, a)
		}
	}
	return out
}

// WeightVector maps criterion code -> objective weight. A completed MEREC run
// produces a vector summing to 1.
type WeightVector map[string]float64

// Sum returns the total of all weights.
func (w WeightVector) Sum() float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}
