package typing

import "testing"

func TestSegment(t *testing.T) {
	tests := []struct {
		name   string
		pauses []*float64
		want   []int
	}{
		{"empty", nil, nil},
		{"single", []*float64{nil}, []int{1}},
		{"split on long pause", []*float64{nil, ptr(1), ptr(6), ptr(2)}, []int{2, 2}},
		{"threshold is exclusive", []*float64{nil, ptr(5), ptr(5)}, []int{3}},
		{"absent pauses never split", []*float64{nil, nil, nil}, []int{3}},
		{"every word alone", []*float64{ptr(9), ptr(9), ptr(9)}, []int{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := make([]WordEvent, len(tt.pauses))
			for i, p := range tt.pauses {
				words[i] = WordEvent{Word: "w", Duration: 0.3, PauseBefore: p}
			}
			bursts := Segment(words, DefaultBurstThreshold)
			if len(bursts) != len(tt.want) {
				t.Fatalf("got %d bursts, want %d", len(bursts), len(tt.want))
			}
			for i, b := range bursts {
				if len(b) != tt.want[i] {
					t.Errorf("burst %d has %d words, want %d", i, len(b), tt.want[i])
				}
			}
		})
	}
}

func TestSummarizeBursts(t *testing.T) {
	if got := SummarizeBursts(nil); got != (Bursts{}) {
		t.Errorf("SummarizeBursts(nil) = %+v, want zero", got)
	}

	w := WordEvent{Word: "w"}
	got := SummarizeBursts([][]WordEvent{{w, w, w}, {w}})
	want := Bursts{TotalBursts: 2, AvgWordsPerBurst: 2, LongestBurstLength: 3}
	if got != want {
		t.Errorf("SummarizeBursts = %+v, want %+v", got, want)
	}
}
