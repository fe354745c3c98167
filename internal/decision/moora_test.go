package decision

import (
	"errors"
	"math"
	"testing"
)

func TestMooraRankHandComputed(t *testing.T) {
	criteria, alts, scores := twoAltFixture()
	weights := WeightVector{"C1": 16.0 / 31.0, "C2": 15.0 / 31.0}

	detail, err := MooraRank(criteria, alts, scores, weights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Column norms: sqrt(10^2+6^2)=sqrt(136), sqrt(2^2+4^2)=sqrt(20).
	d1 := math.Sqrt(136)
	d2 := math.Sqrt(20)
	wantA := (10/d1)*(16.0/31.0) - (2/d2)*(15.0/31.0)
	wantB := (6/d1)*(16.0/31.0) - (4/d2)*(15.0/31.0)

	if len(detail.Ranked) != 2 {
		t.Fatalf("expected 2 ranked rows, got %d", len(detail.Ranked))
	}
	first := detail.Ranked[0]
	second := detail.Ranked[1]
	if first.AlternativeID != "alt-a" || first.Rank != 1 {
		t.Errorf("expected alt-a at rank 1, got %s at rank %d", first.AlternativeID, first.Rank)
	}
	if math.Abs(first.Score-wantA) > 1e-9 {
		t.Errorf("alt-a score: got %v, want %v", first.Score, wantA)
	}
	if second.AlternativeID != "alt-b" || second.Rank != 2 {
		t.Errorf("expected alt-b at rank 2, got %s at rank %d", second.AlternativeID, second.Rank)
	}
	if math.Abs(second.Score-wantB) > 1e-9 {
		t.Errorf("alt-b score: got %v, want %v", second.Score, wantB)
	}
}

func TestMooraRankContiguousRanks(t *testing.T) {
	criteria := []Criterion{
		{Code: "C1", Polarity: Benefit},
		{Code: "C2", Polarity: Cost},
	}
	alts := []Alternative{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	}
	scores := ScoreMatrix{
		"a": {"C1": 5, "C2": 1},
		"b": {"C1": 2, "C2": 8},
		"c": {"C1": 9, "C2": 3},
		"d": {"C1": 4, "C2": 4},
	}
	weights := WeightVector{"C1": 0.6, "C2": 0.4}

	detail, err := MooraRank(criteria, alts, scores, weights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[int]bool)
	for i, r := range detail.Ranked {
		if r.Rank != i+1 {
			t.Errorf("position %d has rank %d", i, r.Rank)
		}
		if seen[r.Rank] {
			t.Errorf("duplicate rank %d", r.Rank)
		}
		seen[r.Rank] = true
		if i > 0 && detail.Ranked[i-1].Score < r.Score {
			t.Errorf("scores not descending at position %d", i)
		}
	}
	if len(seen) != 4 {
		t.Errorf("expected ranks 1..4, got %d distinct", len(seen))
	}
}

func TestMooraRankTiesPreserveInputOrder(t *testing.T) {
	criteria := []Criterion{{Code: "C1", Polarity: Benefit}}
	alts := []Alternative{
		{ID: "first", Code: "A1"},
		{ID: "second", Code: "A2"},
		{ID: "third", Code: "A3"},
	}
	// Identical rows tie exactly.
	scores := ScoreMatrix{
		"first":  {"C1": 4},
		"second": {"C1": 4},
		"third":  {"C1": 4},
	}
	weights := WeightVector{"C1": 1}

	detail, err := MooraRank(criteria, alts, scores, weights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if detail.Ranked[i].AlternativeID != want {
			t.Errorf("position %d: got %s, want %s", i, detail.Ranked[i].AlternativeID, want)
		}
		if detail.Ranked[i].Rank != i+1 {
			t.Errorf("position %d: rank %d", i, detail.Ranked[i].Rank)
		}
	}
}

func TestMooraRankZeroColumn(t *testing.T) {
	criteria := []Criterion{
		{Code: "C1", Polarity: Benefit},
		{Code: "C2", Polarity: Cost},
	}
	alts := []Alternative{{ID: "a"}, {ID: "b"}}
	scores := ScoreMatrix{
		"a": {"C1": 0, "C2": 2},
		"b": {"C1": 0, "C2": 4},
	}
	weights := WeightVector{"C1": 0.5, "C2": 0.5}

	detail, err := MooraRank(criteria, alts, scores, weights)
	if err != nil {
		t.Fatalf("zero column must not error: %v", err)
	}
	for i := range detail.Normalized {
		if detail.Normalized[i][0] != 0 {
			t.Errorf("row %d: expected normalized 0 for zero column, got %v", i, detail.Normalized[i][0])
		}
	}
}

func TestMooraRankErrors(t *testing.T) {
	criteria, alts, scores := twoAltFixture()

	t.Run("no weights", func(t *testing.T) {
		_, err := MooraRank(criteria, alts, scores, WeightVector{})
		if !errors.Is(err, ErrNoWeights) {
			t.Errorf("expected ErrNoWeights, got %v", err)
		}
	})

	t.Run("weight missing for criterion", func(t *testing.T) {
		_, err := MooraRank(criteria, alts, scores, WeightVector{"C1": 1})
		if !errors.Is(err, ErrNoWeights) {
			t.Errorf("expected ErrNoWeights, got %v", err)
		}
	})

	t.Run("no complete alternatives", func(t *testing.T) {
		_, err := MooraRank(criteria, alts, ScoreMatrix{}, WeightVector{"C1": 0.5, "C2": 0.5})
		if !errors.Is(err, ErrNoCompleteAlternatives) {
			t.Errorf("expected ErrNoCompleteAlternatives, got %v", err)
		}
	})
}

func TestMooraRankIdempotent(t *testing.T) {
	criteria, alts, scores := twoAltFixture()
	weights := WeightVector{"C1": 16.0 / 31.0, "C2": 15.0 / 31.0}

	d1, err := MooraRank(criteria, alts, scores, weights)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	d2, err := MooraRank(criteria, alts, scores, weights)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := range d1.Ranked {
		if d1.Ranked[i] != d2.Ranked[i] {
			t.Errorf("row %d differs between runs: %+v vs %+v", i, d1.Ranked[i], d2.Ranked[i])
		}
	}
}

func TestMooraRankExcludesIncompleteAlternatives(t *testing.T) {
	criteria, alts, scores := twoAltFixture()
	alts = append(alts, Alternative{ID: "alt-c", Code: "A3"})
	scores["alt-c"] = map[string]float64{"C1": 99} // incomplete

	detail, err := MooraRank(criteria, alts, scores, WeightVector{"C1": 0.5, "C2": 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detail.Ranked) != 2 {
		t.Fatalf("expected incomplete alternative excluded, got %d rows", len(detail.Ranked))
	}
	for _, r := range detail.Ranked {
		if r.AlternativeID == "alt-c" {
			t.Error("incomplete alternative was ranked")
		}
	}
}
