// Package smooth holds the frame-rate independent exponential smoothing
// shared by the camera rig and the activation field.
package smooth

import "math"

// Decay returns the interpolation factor that closes half of the remaining
// distance every halfLife seconds. Applying it over n steps of dt equals one
// step of n*dt, so results do not depend on the frame rate.
// halfLife <= 0 snaps (factor 1).
func Decay(dt, halfLife float64) float64 {
	if halfLife <= 0 {
		return 1
	}
	if dt <= 0 {
		return 0
	}
	return 1 - math.Exp2(-dt/halfLife)
}

// Toward moves cur toward target by the decay factor for dt
func Toward(cur, target, dt, halfLife float64) float64 {
	return cur + (target-cur)*Decay(dt, halfLife)
}
