package opus

import "math"

// Float32ToInt16 converts float PCM to 16-bit signed PCM. Samples are
// clamped to [-1, 1] and scaled with rounding; NaN and infinite samples
// become silence rather than noise.
func Float32ToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		out[i] = int16(math.Round(f * math.MaxInt16))
	}
	return out
}
