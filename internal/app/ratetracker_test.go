package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateTracker_Empty(t *testing.T) {
	rt := NewRateTracker(30 * time.Minute)
	assert.False(t, rt.HasData(), "empty tracker should not have data")
	assert.Equal(t, 0.0, rt.CharsPerSecond(), "empty tracker should return 0")
}

func TestRateTracker_InsufficientSamples(t *testing.T) {
	rt := NewRateTracker(30 * time.Minute)
	now := time.Now()

	// 3 valid samples, below the 5-sample minimum
	for i := 0; i < 3; i++ {
		rt.RecordAt(now.Add(time.Duration(i)*time.Second), time.Second, 10_000)
	}

	assert.False(t, rt.HasData(), "3 samples should not be enough")
	assert.Equal(t, 0.0, rt.CharsPerSecond(), "insufficient samples should return 0")
}

func TestRateTracker_SufficientSamples(t *testing.T) {
	rt := NewRateTracker(30 * time.Minute)
	now := time.Now()

	// Rates: 5k, 8k, 10k, 12k, 15k chars/sec
	for i, chars := range []int{5_000, 8_000, 10_000, 12_000, 15_000} {
		rt.RecordAt(now.Add(time.Duration(i)*time.Second), time.Second, chars)
	}

	assert.True(t, rt.HasData(), "5 valid samples should be enough")
	// P50 of [5k, 8k, 10k, 12k, 15k] → index 2
	assert.Equal(t, 10_000.0, rt.CharsPerSecond(), "P50 should be the median value")
}

func TestRateTracker_FilterNoise(t *testing.T) {
	rt := NewRateTracker(30 * time.Minute)
	now := time.Now()

	// Tiny batch → filtered
	rt.RecordAt(now, time.Second, 999)
	// Below timer resolution → filtered
	rt.RecordAt(now.Add(time.Second), 500*time.Microsecond, 50_000)
	assert.False(t, rt.HasData())
	assert.Equal(t, 0.0, rt.CharsPerSecond())

	for i := 0; i < 5; i++ {
		rt.RecordAt(now.Add(time.Duration(2+i)*time.Second), 2*time.Second, 20_000)
	}
	assert.True(t, rt.HasData(), "valid samples after noise should count")
	assert.Equal(t, 10_000.0, rt.CharsPerSecond())
}

func TestRateTracker_WindowEviction(t *testing.T) {
	window := 30 * time.Minute
	rt := NewRateTracker(window)
	base := time.Now().Add(-2 * window)

	for i := 0; i < 5; i++ {
		rt.RecordAt(base.Add(time.Duration(i)*time.Second), time.Second, 10_000)
	}

	// Samples older than the window are evicted on read
	assert.False(t, rt.HasData(), "old samples should be evicted")

	now := time.Now()
	for i := 0; i < 3; i++ {
		rt.RecordAt(now.Add(time.Duration(i)*time.Second), time.Second, 6_000)
	}
	assert.False(t, rt.HasData(), "only 3 fresh samples remain")
	assert.Equal(t, 0.0, rt.CharsPerSecond())
}

func TestRateTracker_Reset(t *testing.T) {
	rt := NewRateTracker(30 * time.Minute)
	now := time.Now()

	for i := 0; i < 5; i++ {
		rt.RecordAt(now.Add(time.Duration(i)*time.Second), time.Second, 10_000)
	}
	assert.True(t, rt.HasData())

	rt.Reset()
	assert.False(t, rt.HasData(), "Reset should clear all data")
	assert.Equal(t, 0.0, rt.CharsPerSecond(), "Reset should return 0")
}
