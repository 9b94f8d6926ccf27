package gesture

import "time"

// DefaultHistorySize is the number of recent samples the smoother votes over.
const DefaultHistorySize = 5

// DefaultConfidenceThreshold is the minimum mean confidence a majority kind
// needs before the smoother emits it.
const DefaultConfidenceThreshold = 0.6

// Smoother suppresses single-frame misclassifications by voting over a fixed
// window of recent samples. A gesture becomes stable only when it fills a
// strict majority of the window's slots and its mean confidence across those
// slots reaches the threshold.
//
// Smoother is not safe for concurrent use; it belongs to a single polling
// caller.
type Smoother struct {
	history   []Sample
	size      int
	threshold float64
}

// NewSmoother creates a smoother voting over size slots with the given mean
// confidence threshold. Non-positive size and out-of-range thresholds fall
// back to the defaults.
func NewSmoother(size int, threshold float64) *Smoother {
	if size <= 0 {
		size = DefaultHistorySize
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultConfidenceThreshold
	}
	return &Smoother{
		history:   make([]Sample, 0, size),
		size:      size,
		threshold: threshold,
	}
}

// Add appends a sample to the history, evicting the oldest when full, and
// returns the current stable gesture. Until the window has filled, and
// whenever no kind holds a strict majority at threshold confidence, the
// result is KindNone.
func (s *Smoother) Add(sample Sample) Stable {
	if len(s.history) == s.size {
		copy(s.history, s.history[1:])
		s.history[len(s.history)-1] = sample
	} else {
		s.history = append(s.history, sample)
	}
	return s.stable(sample.Timestamp)
}

// Reset clears the history. Called on mode toggle and backend switch so stale
// votes from the previous session never leak into the next.
func (s *Smoother) Reset() {
	s.history = s.history[:0]
}

// Len returns the number of samples currently held.
func (s *Smoother) Len() int {
	return len(s.history)
}

func (s *Smoother) stable(ts time.Time) Stable {
	none := Stable{Kind: KindNone, Timestamp: ts}
	if len(s.history) < s.size {
		return none
	}

	counts := make(map[Kind]int, 4)
	sums := make(map[Kind]float64, 4)
	for _, h := range s.history {
		if h.Kind == KindNone {
			continue
		}
		counts[h.Kind]++
		sums[h.Kind] += h.Confidence
	}

	var best Kind
	bestCount := 0
	for k, n := range counts {
		if n > bestCount {
			best, bestCount = k, n
		}
	}

	// Strict majority of the window's slots.
	if bestCount*2 <= s.size {
		return none
	}

	mean := sums[best] / float64(bestCount)
	if mean < s.threshold {
		return none
	}

	return Stable{Kind: best, Confidence: mean, Timestamp: ts}
}
