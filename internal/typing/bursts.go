package typing

// DefaultBurstThreshold is the pause, in seconds, that ends a typing burst.
const DefaultBurstThreshold = 5.0

// Bursts summarizes how a session splits into typing bursts.
type Bursts struct {
	TotalBursts        int     `json:"total_bursts"`
	AvgWordsPerBurst   float64 `json:"avg_words_per_burst"`
	LongestBurstLength int     `json:"longest_burst_length"`
}

// Segment partitions words into bursts. A word whose pause before it
// exceeds threshold closes the current burst and opens a new one; an
// absent pause counts as 0.
func Segment(words []WordEvent, threshold float64) [][]WordEvent {
	var (
		bursts  [][]WordEvent
		current []WordEvent
	)
	for _, w := range words {
		switch {
		case len(current) == 0:
			current = []WordEvent{w}
		case w.Pause() > threshold:
			bursts = append(bursts, current)
			current = []WordEvent{w}
		default:
			current = append(current, w)
		}
	}
	if len(current) > 0 {
		bursts = append(bursts, current)
	}
	return bursts
}

// SummarizeBursts reduces segmented bursts to their counts.
func SummarizeBursts(bursts [][]WordEvent) Bursts {
	if len(bursts) == 0 {
		return Bursts{}
	}
	var total, longest int
	for _, b := range bursts {
		total += len(b)
		if len(b) > longest {
			longest = len(b)
		}
	}
	return Bursts{
		TotalBursts:        len(bursts),
		AvgWordsPerBurst:   float64(total) / float64(len(bursts)),
		LongestBurstLength: longest,
	}
}
