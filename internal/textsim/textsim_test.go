package textsim

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "identical", a: "P-101A", b: "P-101A", want: 0},
		{name: "empty left", a: "", b: "abc", want: 3},
		{name: "empty right", a: "abc", b: "", want: 3},
		{name: "single substitution", a: "P-101A", b: "P-101B", want: 1},
		{name: "insertion", a: "P-101", b: "P-101A", want: 1},
		{name: "transposed tags", a: "FT-201", b: "TT-201", want: 1},
		{name: "unrelated", a: "PUMP", b: "XV", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Levenshtein(tt.a, tt.b); got != tt.want {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "P-101A", b: "P-101A", want: 1},
		{name: "case insensitive", a: "p-101a", b: "P-101A", want: 1},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "one char off", a: "P-101A", b: "P-101B", want: 1 - 1.0/6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"P-101A", "P-I01A"},
		{"FT-201", "FT-2O1"},
		{"PUMP_CENTRIFUGAL", "P-101A"},
	}
	for _, p := range pairs {
		if Similarity(p[0], p[1]) != Similarity(p[1], p[0]) {
			t.Errorf("Similarity not symmetric for %q and %q", p[0], p[1])
		}
	}
}
