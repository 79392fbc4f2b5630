package app

import (
	"sort"
	"time"
)

// RateTracker collects (elapsed, chars) samples from served batches and
// computes the P50 characters/second rate over a rolling window.
// Not thread-safe; caller (App.rateMu) must serialize access.
type RateTracker struct {
	window  time.Duration
	samples []rateSample
}

type rateSample struct {
	ts          time.Time
	charsPerSec float64
}

// minRateSamples is the number of samples needed before a rate is reported.
const minRateSamples = 5

// NewRateTracker creates a tracker with the given rolling window duration.
func NewRateTracker(window time.Duration) *RateTracker {
	return &RateTracker{window: window}
}

// Record adds a rate sample at the current time.
func (r *RateTracker) Record(elapsed time.Duration, chars int) {
	r.RecordAt(time.Now(), elapsed, chars)
}

// RecordAt adds a rate sample at a specific timestamp.
// Filters out noisy batches:
//   - chars < 1000 → skip (setup cost dominates)
//   - elapsed < 1ms → skip (timer resolution)
func (r *RateTracker) RecordAt(ts time.Time, elapsed time.Duration, chars int) {
	if chars < 1000 || elapsed < time.Millisecond {
		return
	}
	r.samples = append(r.samples, rateSample{ts: ts, charsPerSec: float64(chars) / elapsed.Seconds()})
	r.evict(ts)
}

// CharsPerSecond returns the P50 (median) rate from samples within the
// window. Returns 0 if fewer than 5 samples are available.
func (r *RateTracker) CharsPerSecond() float64 {
	r.evict(time.Now())
	if len(r.samples) < minRateSamples {
		return 0
	}
	// Copy rates for sorting (don't mutate sample order)
	rates := make([]float64, len(r.samples))
	for i, s := range r.samples {
		rates[i] = s.charsPerSec
	}
	sort.Float64s(rates)
	return rates[len(rates)/2]
}

// HasData returns true if there are enough valid samples to compute a rate.
func (r *RateTracker) HasData() bool {
	r.evict(time.Now())
	return len(r.samples) >= minRateSamples
}

// Reset clears all samples.
func (r *RateTracker) Reset() {
	r.samples = nil
}

// evict removes samples older than the window.
func (r *RateTracker) evict(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.samples) && r.samples[i].ts.Before(cutoff) {
		i++
	}
	if i > 0 {
		r.samples = r.samples[i:]
	}
}
