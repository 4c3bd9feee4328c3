package sonoscan

import "math"

// Doppler model constants. The insonation angle is fixed at 60°, a common
// vascular-lab assumption; the pulse repetition frequency scales with the
// transmit frequency, which to first order makes the Nyquist velocity
// independent of frequency (it is still derived, not hard-coded, so tests
// can exercise the relation).
const (
	speedOfSoundCmPerSec = 154000.0
	insonationCos        = 0.5 // cos 60°
	prfHzPerMHz          = 750.0

	// Cardiac-cycle-like pulsatility of the flow profile.
	pulseRateHz = 1.15

	// flowDisplayThreshold is the fraction of the Nyquist velocity below
	// which no color is composited (the frame stays pure grayscale).
	flowDisplayThreshold = 0.06

	// Turbulence near the vessel wall.
	turbulenceOnsetRadial = 0.68
	turbulenceAmplitude   = 0.22
)

// NyquistVelocityCmPerSec returns the maximum unambiguous flow velocity
// for the given transmit frequency:
//
//	vNyq = PRF · c / (4 · f0 · cos θ)
func NyquistVelocityCmPerSec(freqMHz float64) float64 {
	if freqMHz <= 0 {
		return 0
	}
	prf := prfHzPerMHz * freqMHz
	f0 := freqMHz * 1e6
	return prf * speedOfSoundCmPerSec / (4 * f0 * insonationCos)
}

// WrapVelocity folds a velocity into [−nyquist, +nyquist). Magnitudes
// beyond the Nyquist limit wrap around (aliasing) rather than clamp; this
// is the physically faithful behavior, not an edge-case bug.
func WrapVelocity(v, nyquist float64) float64 {
	if nyquist <= 0 {
		return 0
	}
	span := 2 * nyquist
	w := math.Mod(v+nyquist, span)
	if w < 0 {
		w += span
	}
	return w - nyquist
}

// pulsatility is the cardiac-cycle scaling of the flow profile at time t.
func pulsatility(t float64) float64 {
	return 0.85 + 0.15*math.Sin(2*math.Pi*pulseRateHz*t)
}

// flowVelocityAt returns the instantaneous flow velocity in cm/s at a
// sampled field point, and whether the point carries flow at all.
// The profile is parabolic (laminar) across the lumen, scaled by
// pulsatility, with stochastic turbulence near the walls. Positive
// velocities flow toward the probe.
func flowVelocityAt(s FieldSample, depthCm, lateralCm, scanDepthCm, t float64, seed uint64) (float64, bool) {
	var peak, rho float64

	switch {
	case s.Inclusion != nil && s.Inclusion.HasFlow:
		peak = s.Inclusion.FlowVelocityCmPerSec
		rho = s.Radial
	case s.Layer != nil && s.Layer.HasFlow:
		peak = s.Layer.FlowVelocityCmPerSec
		if scanDepthCm <= 0 {
			return 0, false
		}
		nd := depthCm / scanDepthCm
		mid := (s.Layer.DepthFrom + s.Layer.DepthTo) / 2
		half := (s.Layer.DepthTo - s.Layer.DepthFrom) / 2
		if half <= 0 {
			return 0, false
		}
		rho = math.Abs(nd-mid) / half
	default:
		return 0, false
	}

	if rho > 1 {
		rho = 1
	}
	v := peak * (1 - rho*rho) * pulsatility(t)

	if rho > turbulenceOnsetRadial && peak != 0 {
		n := valueNoise(seed^0xd1b54a32d192ed03, lateralCm*3.1+t*2.0, depthCm*3.1-t*1.3)
		v += math.Abs(peak) * turbulenceAmplitude * (n - 0.5) * 2
	}
	return v, true
}

// Color ramps for the two flow directions: warm for flow toward the
// probe, cool for flow away. Stops run from low to high magnitude.
var (
	towardRamp = []dopplerStop{
		{0.0, 0.35, 0.02, 0.02},
		{0.5, 0.85, 0.15, 0.05},
		{0.8, 1.00, 0.45, 0.08},
		{1.0, 1.00, 0.85, 0.30},
	}
	awayRamp = []dopplerStop{
		{0.0, 0.02, 0.03, 0.38},
		{0.5, 0.05, 0.25, 0.90},
		{0.8, 0.10, 0.60, 1.00},
		{1.0, 0.35, 0.95, 1.00},
	}
)

type dopplerStop struct {
	offset  float64
	r, g, b float64
}

// rampColor interpolates a ramp at a magnitude in [0, 1].
func rampColor(ramp []dopplerStop, mag float64) (r, g, b float64) {
	if mag <= ramp[0].offset {
		s := ramp[0]
		return s.r, s.g, s.b
	}
	for i := 1; i < len(ramp); i++ {
		if mag <= ramp[i].offset {
			lo, hi := ramp[i-1], ramp[i]
			t := (mag - lo.offset) / (hi.offset - lo.offset)
			return lo.r + (hi.r-lo.r)*t, lo.g + (hi.g-lo.g)*t, lo.b + (hi.b-lo.b)*t
		}
	}
	s := ramp[len(ramp)-1]
	return s.r, s.g, s.b
}

// dopplerColor encodes a wrapped velocity as an overlay color. Direction
// selects the ramp, magnitude drives brightness and the compositing alpha.
// ok is false below the display threshold: the pixel stays grayscale.
func dopplerColor(vWrapped, nyquist float64) (r, g, b, alpha float64, ok bool) {
	if nyquist <= 0 {
		return 0, 0, 0, 0, false
	}
	mag := math.Abs(vWrapped) / nyquist
	if mag < flowDisplayThreshold {
		return 0, 0, 0, 0, false
	}
	if mag > 1 {
		mag = 1
	}
	if vWrapped >= 0 {
		r, g, b = rampColor(towardRamp, mag)
	} else {
		r, g, b = rampColor(awayRamp, mag)
	}
	alpha = 0.55 + 0.40*mag
	return r, g, b, alpha, true
}
