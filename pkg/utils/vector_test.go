package utils

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMagnitude(t *testing.T) {
	if got := Magnitude([]float32{3, 4}); math.Abs(got-5) > 1e-9 {
		t.Errorf("Magnitude([3 4]) = %v, want 5", got)
	}
	if got := Magnitude(nil); got != 0 {
		t.Errorf("Magnitude(nil) = %v, want 0", got)
	}
}

func TestTopKByScore(t *testing.T) {
	items := []ScoredItem[string]{
		{"a", 0.2}, {"b", 0.9}, {"c", 0.5}, {"d", 0.7}, {"e", 0.1},
	}

	got := TopKByScore(items, 3)
	want := []string{"b", "d", "c"}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i, w := range want {
		if got[i].Item != w {
			t.Errorf("position %d: got %q, want %q", i, got[i].Item, w)
		}
	}
}

func TestTopKByScoreTiesKeepInputOrder(t *testing.T) {
	items := []ScoredItem[string]{
		{"first", 0.5}, {"second", 0.5}, {"third", 0.5}, {"low", 0.1},
	}

	got := TopKByScore(items, 2)
	if got[0].Item != "first" || got[1].Item != "second" {
		t.Errorf("expected ties in input order, got [%s %s]", got[0].Item, got[1].Item)
	}
}

func TestTopKByScoreBounds(t *testing.T) {
	items := []ScoredItem[int]{{1, 0.3}, {2, 0.8}}

	if got := TopKByScore(items, 0); got != nil {
		t.Errorf("expected nil for k=0, got %v", got)
	}
	if got := TopKByScore[int](nil, 3); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}

	got := TopKByScore(items, 10)
	if len(got) != 2 || got[0].Item != 2 {
		t.Errorf("expected full sorted list for k > n, got %v", got)
	}
}
