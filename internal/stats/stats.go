// Package stats holds the degenerate-case-safe descriptive statistics used
// by the timing and stylometry passes. Empty inputs never error; they
// yield 0.
package stats

import "math"

// Number is any value the helpers can average.
type Number interface {
	~int | ~int64 | ~float32 | ~float64
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean[T Number](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	return sum / float64(len(xs))
}

// StdDev returns the sample standard deviation (n-1 denominator) of xs,
// or 0 when fewer than two values are present.
func StdDev[T Number](xs []T) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := float64(x) - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Sum returns the sum of xs.
func Sum[T Number](xs []T) T {
	var s T
	for _, x := range xs {
		s += x
	}
	return s
}

// Max returns the largest value in xs, or the zero value for an empty slice.
func Max[T Number](xs []T) T {
	var m T
	for i, x := range xs {
		if i == 0 || x > m {
			m = x
		}
	}
	return m
}

// Ratio returns num/den, or 0 when den is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
