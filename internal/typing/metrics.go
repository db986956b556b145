package typing

import "github.com/abhisek/essaylens/internal/stats"

// DefaultLongPause is the pause, in seconds, above which a pause counts
// as a long thinking pause.
const DefaultLongPause = 2.0

// Metrics is the typing_metrics section of an analysis report.
type Metrics struct {
	TotalWords           int     `json:"total_words"`
	TotalTimeSeconds     float64 `json:"total_time_seconds"`
	AvgTypingTimePerWord float64 `json:"avg_typing_time_per_word"`
	StdTypingTimePerWord float64 `json:"std_typing_time_per_word"`
	AvgPauseBeforeWord   float64 `json:"avg_pause_before_word"`
	StdPauseBeforeWord   float64 `json:"std_pause_before_word"`
	TotalBackspaces      int     `json:"total_backspaces"`
	AvgBackspacesPerWord float64 `json:"avg_backspaces_per_word"`
	TypingSpeedWPM       float64 `json:"typing_speed_wpm"`
	LongThinkingPauses   int     `json:"long_thinking_pauses"`
	TypingBursts         Bursts  `json:"typing_bursts"`
}

// Options tunes the thresholds used by Extract.
type Options struct {
	BurstThreshold float64
	LongPause      float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{BurstThreshold: DefaultBurstThreshold, LongPause: DefaultLongPause}
}

// Extract computes timing and burst metrics for a session. Empty or
// single-word logs yield zero averages and deviations instead of errors.
func Extract(log *Log, opts Options) Metrics {
	n := len(log.Words)
	durations := make([]float64, 0, n)
	backspaces := make([]int, 0, n)
	var pauses []float64
	longPauses := 0
	for _, w := range log.Words {
		durations = append(durations, w.Duration)
		backspaces = append(backspaces, w.Backspaces)
		if w.PauseBefore != nil {
			pauses = append(pauses, *w.PauseBefore)
			if *w.PauseBefore > opts.LongPause {
				longPauses++
			}
		}
	}

	m := Metrics{
		TotalWords:           n,
		TotalTimeSeconds:     log.DurationSeconds,
		AvgTypingTimePerWord: stats.Mean(durations),
		StdTypingTimePerWord: stats.StdDev(durations),
		AvgPauseBeforeWord:   stats.Mean(pauses),
		StdPauseBeforeWord:   stats.StdDev(pauses),
		TotalBackspaces:      stats.Sum(backspaces),
		AvgBackspacesPerWord: stats.Mean(backspaces),
		LongThinkingPauses:   longPauses,
		TypingBursts:         SummarizeBursts(Segment(log.Words, opts.BurstThreshold)),
	}
	if log.DurationSeconds > 0 {
		m.TypingSpeedWPM = float64(n) / log.DurationSeconds * 60
	}
	return m
}
