package overlay

// Reveal is a finite 0 -> 1 animation that can be played forward or reversed
type Reveal struct {
	Value float64 // 0 hidden, 1 fully revealed
	Dir   int     // +1 revealing, -1 hiding, 0 idle
	In    float64 // Seconds for a full reveal
	Out   float64 // Seconds for a full hide
}

// Play restarts the reveal from the beginning
func (r *Reveal) Play() {
	r.Value = 0
	r.Dir = 1
}

// Reverse hides from the current value
func (r *Reveal) Reverse() {
	r.Dir = -1
}

// Advance moves the animation by dt seconds and stops it at either end
func (r *Reveal) Advance(dt float64) {
	switch r.Dir {
	case 1:
		r.Value = step(r.Value, dt, r.In)
		if r.Value >= 1 {
			r.Value, r.Dir = 1, 0
		}
	case -1:
		r.Value = -step(-r.Value, dt, r.Out)
		if r.Value <= 0 {
			r.Value, r.Dir = 0, 0
		}
	}
}

func step(v, dt, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	return v + dt/duration
}
