package frames

import (
	"math"
	"slices"
)

// MaxKeySegments bounds how many transcript segment starts seed the
// key-moment strategy.
const MaxKeySegments = 10

// UniformTimes spreads n frame indices evenly across frameCount frames
// (first and last frame inclusive) and converts them to seconds using fps.
// When the frame count or rate is unknown it spreads n points across
// duration instead. Duplicate indices collapse, so short clips can yield
// fewer than n timestamps.
func UniformTimes(n, frameCount int, fps, duration float64) []float64 {
	if n <= 0 {
		return nil
	}
	if frameCount <= 0 || fps <= 0 {
		if duration <= 0 {
			return nil
		}
		step := duration / float64(n)
		times := make([]float64, 0, n)
		for i := 0; i < n; i++ {
			times = append(times, roundTenth(float64(i)*step))
		}
		return dedupeSorted(times)
	}

	indices := make([]int, 0, n)
	if n == 1 {
		indices = append(indices, 0)
	} else {
		last := float64(frameCount - 1)
		for i := 0; i < n; i++ {
			indices = append(indices, int(float64(i)*last/float64(n-1)))
		}
	}
	indices = slices.Compact(indices)

	times := make([]float64, 0, len(indices))
	for _, idx := range indices {
		times = append(times, float64(idx)/fps)
	}
	return times
}

// IntervalTimes returns 0, k, 2k, ... strictly below duration, capped at
// limit entries when limit is positive.
func IntervalTimes(k, duration float64, limit int) []float64 {
	if k <= 0 || duration <= 0 {
		return nil
	}
	var times []float64
	for i := 0; ; i++ {
		t := float64(i) * k
		if t >= duration {
			break
		}
		if limit > 0 && len(times) >= limit {
			break
		}
		times = append(times, roundTenth(t))
	}
	return times
}

// KeyMomentTimes combines the starts of the first MaxKeySegments transcript
// segments with evenly spaced fill-in points, then deduplicates, sorts, and
// truncates the union to n timestamps.
func KeyMomentTimes(n int, duration float64, segmentStarts []float64) []float64 {
	if n <= 0 {
		return nil
	}

	keys := make([]float64, 0, MaxKeySegments)
	for _, start := range segmentStarts {
		if len(keys) == MaxKeySegments {
			break
		}
		if start < 0 || math.IsNaN(start) || (duration > 0 && start >= duration) {
			continue
		}
		keys = append(keys, start)
	}

	remaining := n - len(keys)
	times := append([]float64(nil), keys...)
	if remaining > 0 {
		interval := duration / float64(max(1, remaining))
		if duration <= 0 {
			interval = 0
		}
		for i := 0; i < remaining; i++ {
			times = append(times, float64(i)*interval)
		}
	}

	for i := range times {
		times[i] = roundTenth(times[i])
	}
	times = dedupeSorted(times)
	if len(times) > n {
		times = times[:n]
	}
	return times
}

func dedupeSorted(times []float64) []float64 {
	slices.Sort(times)
	return slices.Compact(times)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
