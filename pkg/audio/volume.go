package audio

import "math"

// volumeToPower maps a 0.0-1.0 volume to beep's base-2 exponent scale.
// Unity gain is 0; each -1 halves the amplitude.
func volumeToPower(vol float64) float64 {
	if vol <= 0.01 {
		return -10 // Silent
	}
	return math.Log2(vol)
}
