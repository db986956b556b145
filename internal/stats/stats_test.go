package stats

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if got := Mean([]float64{}); got != 0 {
		t.Errorf("Mean(empty) = %v, want 0", got)
	}
	if got := Mean([]int{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Mean = %v, want 2.5", got)
	}
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{3.2}, 0},
		{"pair", []float64{1, 3}, math.Sqrt2},
		{"constant", []float64{2, 2, 2}, 0},
		{"sample", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2.138089935299395},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StdDev(tt.xs)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("StdDev(%v) = %v, want %v", tt.xs, got, tt.want)
			}
		})
	}
}

func TestMaxAndSum(t *testing.T) {
	if got := Max([]int{}); got != 0 {
		t.Errorf("Max(empty) = %d", got)
	}
	if got := Max([]int{3, 9, 2}); got != 9 {
		t.Errorf("Max = %d, want 9", got)
	}
	if got := Max([]float64{-3, -1, -2}); got != -1 {
		t.Errorf("Max negatives = %v, want -1", got)
	}
	if got := Sum([]int{1, 2, 3}); got != 6 {
		t.Errorf("Sum = %d, want 6", got)
	}
}

func TestRatioAndRound(t *testing.T) {
	if Ratio(5, 0) != 0 {
		t.Error("Ratio with zero denominator must be 0")
	}
	if Ratio(1, 4) != 0.25 {
		t.Error("Ratio(1,4) != 0.25")
	}
	if got := Round(0.65449, 3); got != 0.654 {
		t.Errorf("Round = %v, want 0.654", got)
	}
}
