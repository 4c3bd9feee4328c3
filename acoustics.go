package sonoscan

import "math"

// AttenuationFactor returns the round-trip amplitude factor for a signal
// at depthCm through a medium with the given attenuation coefficient:
//
//	10^(−(coeff · freq · depth) / 20)
//
// Monotonically decreasing in depth and frequency.
func AttenuationFactor(depthCm, freqMHz, coeffDBPerCmMHz float64) float64 {
	return math.Pow(10, -(coeffDBPerCmMHz*freqMHz*depthCm)/20)
}

// tgcZones is the number of discretized depth zones on the TGC curve,
// mirroring the slide-pot bank on a physical scanner.
const tgcZones = 8

// TGCCurve is the time-gain-compensation curve: per-zone gain in dB over
// eight depth zones. The zero value is a flat unity curve.
type TGCCurve [tgcZones]float64

// Gain returns the linear TGC gain at a normalized depth in [0, 1],
// interpolating between zone centers and clamping beyond the first and
// last zone.
func (c TGCCurve) Gain(depthNorm float64) float64 {
	pos := depthNorm*tgcZones - 0.5
	switch {
	case pos <= 0:
		return dbToLinear(c[0])
	case pos >= tgcZones-1:
		return dbToLinear(c[tgcZones-1])
	}
	i := int(pos)
	t := pos - float64(i)
	db := c[i] + (c[i+1]-c[i])*t
	return dbToLinear(db)
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// Focal zone constants.
const (
	focalBaseGain = 0.82
	focalBoost    = 0.45

	// focalSigmaCm widens slightly with the focus depth so deep focal
	// zones do not look unnaturally tight.
	focalSigmaBaseCm   = 0.9
	focalSigmaPerFocus = 0.08

	// defocusLoss is the maximum contrast reduction far from the focus.
	defocusLoss = 0.28
)

// FocalGain returns the focal-zone gain at depthCm for a beam focused at
// focusCm: a Gaussian boost centered on the focus over a constant base.
// Maximal at the focus, decaying symmetrically.
func FocalGain(depthCm, focusCm float64) float64 {
	sigma := focalSigmaBaseCm + focalSigmaPerFocus*focusCm
	d := depthCm - focusCm
	return focalBaseGain + focalBoost*math.Exp(-(d*d)/(2*sigma*sigma))
}

// DefocusBlur returns a contrast multiplier that decreases away from the
// focal depth, emulating defocus softening. 1 at the focus, bottoming out
// at 1−defocusLoss near the field extremes.
func DefocusBlur(depthCm, focusCm, scanDepthCm float64) float64 {
	if scanDepthCm <= 0 {
		return 1
	}
	u := math.Abs(depthCm-focusCm) / (0.65 * scanDepthCm)
	if u > 1 {
		u = 1
	}
	return 1 - defocusLoss*u
}
