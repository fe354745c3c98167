package decision

import (
	"errors"
	"math"
	"testing"
)

func twoAltFixture() ([]Criterion, []Alternative, ScoreMatrix) {
	criteria := []Criterion{
		{Code: "C1", Name: "Quality", Polarity: Benefit},
		{Code: "C2", Name: "Price", Polarity: Cost},
	}
	alts := []Alternative{
		{ID: "alt-a", Code: "A1", Name: "Alpha"},
		{ID: "alt-b", Code: "A2", Name: "Beta"},
	}
	scores := ScoreMatrix{
		"alt-a": {"C1": 10, "C2": 2},
		"alt-b": {"C1": 6, "C2": 4},
	}
	return criteria, alts, scores
}

func TestMerecWeightsHandComputed(t *testing.T) {
	criteria, alts, scores := twoAltFixture()

	w, err := MerecWeights(criteria, alts, scores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Normalized matrix: A=(1, 1), B=(0.6, 0.5).
	// E1 = (|2-1| + |1.1-0.5|) / 2 = 0.8
	// E2 = (|2-1| + |1.1-0.6|) / 2 = 0.75
	// w1 = 0.8/1.55 = 16/31, w2 = 0.75/1.55 = 15/31
	if math.Abs(w["C1"]-16.0/31.0) > 1e-9 {
		t.Errorf("C1 weight: got %v, want %v", w["C1"], 16.0/31.0)
	}
	if math.Abs(w["C2"]-15.0/31.0) > 1e-9 {
		t.Errorf("C2 weight: got %v, want %v", w["C2"], 15.0/31.0)
	}
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		t.Errorf("weights sum to %v, want 1", w.Sum())
	}
	// Differing ranges must pull the weights off uniform.
	if w["C1"] == 0.5 || w["C2"] == 0.5 {
		t.Error("expected non-uniform weights for non-uniform ranges")
	}
}

func TestMerecWeightsSumToOne(t *testing.T) {
	criteria := []Criterion{
		{Code: "C1", Polarity: Benefit},
		{Code: "C2", Polarity: Cost},
		{Code: "C3", Polarity: Benefit},
	}
	alts := []Alternative{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	}
	scores := ScoreMatrix{
		"a": {"C1": 7, "C2": 3, "C3": 12},
		"b": {"C1": 4, "C2": 9, "C3": 5},
		"c": {"C1": 9, "C2": 6, "C3": 8},
		"d": {"C1": 2, "C2": 2, "C3": 14},
	}

	w, err := MerecWeights(criteria, alts, scores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w) != 3 {
		t.Fatalf("expected 3 weights, got %d", len(w))
	}
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		t.Errorf("weights sum to %v, want 1", w.Sum())
	}
	for code, v := range w {
		if v <= 0 || v >= 1 {
			t.Errorf("weight %s=%v outside (0,1)", code, v)
		}
	}
}

func TestMerecWeightsIdempotent(t *testing.T) {
	criteria, alts, scores := twoAltFixture()

	w1, err := MerecWeights(criteria, alts, scores)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	w2, err := MerecWeights(criteria, alts, scores)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for code := range w1 {
		if w1[code] != w2[code] {
			t.Errorf("weight %s differs between runs: %v vs %v", code, w1[code], w2[code])
		}
	}
}

func TestMerecWeightsErrors(t *testing.T) {
	criteria, alts, scores := twoAltFixture()

	t.Run("empty criteria", func(t *testing.T) {
		_, err := MerecWeights(nil, alts, scores)
		if !errors.Is(err, ErrEmptyCriteriaSet) {
			t.Errorf("expected ErrEmptyCriteriaSet, got %v", err)
		}
	})

	t.Run("single complete alternative", func(t *testing.T) {
		partial := ScoreMatrix{
			"alt-a": {"C1": 10, "C2": 2},
			"alt-b": {"C1": 6}, // C2 missing
		}
		_, err := MerecWeights(criteria, alts, partial)
		if !errors.Is(err, ErrInsufficientAlternatives) {
			t.Errorf("expected ErrInsufficientAlternatives, got %v", err)
		}
	})

	t.Run("zero benefit column", func(t *testing.T) {
		zeroed := ScoreMatrix{
			"alt-a": {"C1": 0, "C2": 2},
			"alt-b": {"C1": 0, "C2": 4},
		}
		_, err := MerecWeights(criteria, alts, zeroed)
		var dc *DegenerateColumnError
		if !errors.As(err, &dc) {
			t.Fatalf("expected DegenerateColumnError, got %v", err)
		}
		if dc.Code != "C1" {
			t.Errorf("expected column C1, got %s", dc.Code)
		}
	})

	t.Run("zero value in cost column", func(t *testing.T) {
		zeroed := ScoreMatrix{
			"alt-a": {"C1": 10, "C2": 0},
			"alt-b": {"C1": 6, "C2": 4},
		}
		_, err := MerecWeights(criteria, alts, zeroed)
		var dc *DegenerateColumnError
		if !errors.As(err, &dc) {
			t.Fatalf("expected DegenerateColumnError, got %v", err)
		}
		if dc.Code != "C2" {
			t.Errorf("expected column C2, got %s", dc.Code)
		}
	})
}

func TestMerecWeightsExcludesIncompleteRows(t *testing.T) {
	criteria, alts, scores := twoAltFixture()
	alts = append(alts, Alternative{ID: "alt-c", Code: "A3", Name: "Gamma"})
	scores["alt-c"] = map[string]float64{"C1": 3} // incomplete, must not shift weights

	base, err := MerecWeights(criteria, alts[:2], ScoreMatrix{
		"alt-a": scores["alt-a"],
		"alt-b": scores["alt-b"],
	})
	if err != nil {
		t.Fatalf("base run: %v", err)
	}
	withPartial, err := MerecWeights(criteria, alts, scores)
	if err != nil {
		t.Fatalf("run with partial row: %v", err)
	}
	for code := range base {
		if base[code] != withPartial[code] {
			t.Errorf("weight %s shifted by incomplete row: %v vs %v", code, base[code], withPartial[code])
		}
	}
}
