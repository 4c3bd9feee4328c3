package sonoscan

import "math"

// Transducer enumerates the supported probe geometries. The closed enum
// forces exhaustive handling when a new probe type is added.
type Transducer int

const (
	// TransducerLinear is a parallel-sided field: the beam half-width is
	// constant with depth. High-frequency superficial imaging.
	TransducerLinear Transducer = iota

	// TransducerConvex is a curved-array sector: the field fans out and
	// the beam half-width grows with depth. Abdominal imaging.
	TransducerConvex

	// TransducerMicroconvex is a tighter-radius sector with a wider
	// fan angle. Cardiac and pediatric imaging.
	TransducerMicroconvex
)

// String returns the name of the transducer type.
func (t Transducer) String() string {
	switch t {
	case TransducerLinear:
		return "linear"
	case TransducerConvex:
		return "convex"
	case TransducerMicroconvex:
		return "microconvex"
	default:
		return "unknown"
	}
}

// linearApertureCm is the fixed footprint width of the linear probe.
const linearApertureCm = 4.0

// maxHalfAngleRad returns the sector half-angle for sector probes, and 0
// for the linear probe.
func (t Transducer) maxHalfAngleRad() float64 {
	switch t {
	case TransducerConvex:
		return 30 * math.Pi / 180
	case TransducerMicroconvex:
		return 45 * math.Pi / 180
	default:
		return 0
	}
}

// BeamGeometry maps pixel coordinates to physical field coordinates and
// models the lateral sensitivity profile of the probe.
type BeamGeometry struct {
	Transducer Transducer
}

// PixelToField maps pixel (x, y) on a w×h surface to physical
// (depthCm, lateralCm) for the given scan depth. Depth is proportional to
// the row; the lateral mapping depends on the probe geometry:
//
//   - linear: lateral = (x/w − ½) · aperture, independent of depth
//   - convex/microconvex: lateral = depth · tan(θ), θ = (x/w − ½) · 2 · maxHalfAngle
func (g BeamGeometry) PixelToField(x, y, w, h int, scanDepthCm float64) (depthCm, lateralCm float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	u := float64(x)/float64(w) - 0.5
	depthCm = (float64(y) + 0.5) / float64(h) * scanDepthCm

	switch g.Transducer {
	case TransducerLinear:
		lateralCm = u * linearApertureCm
	default:
		theta := u * 2 * g.Transducer.maxHalfAngleRad()
		lateralCm = depthCm * math.Tan(theta)
	}
	return depthCm, lateralCm
}

// HalfWidthCm returns the beam half-width at the given depth. This is the
// defining visual distinction between probe types: constant for linear,
// growing with depth for sector probes.
func (g BeamGeometry) HalfWidthCm(depthCm float64) float64 {
	switch g.Transducer {
	case TransducerLinear:
		return linearApertureCm / 2
	default:
		// Small base width keeps the near field from collapsing to a
		// zero-width apex.
		return 0.25 + depthCm*math.Tan(g.Transducer.maxHalfAngleRad())
	}
}

// LateralFalloff returns the beam-intensity factor in [0, 1] for a point
// at the given lateral offset and depth. Intensity holds near the beam
// center and smooth-steps down across the outer band, decaying to near
// zero outside it (edge vignetting and lateral resolution loss).
func (g BeamGeometry) LateralFalloff(lateralCm, depthCm float64) float64 {
	hw := g.HalfWidthCm(depthCm)
	if hw <= 0 {
		return 0
	}
	u := math.Abs(lateralCm) / hw
	const (
		flat  = 0.78 // full intensity inside this fraction of the half-width
		edge  = 1.02 // near-zero beyond this fraction
		floor = 0.015
	)
	switch {
	case u <= flat:
		return 1
	case u >= edge:
		return floor
	default:
		t := (u - flat) / (edge - flat)
		s := t * t * (3 - 2*t) // smoothstep
		return 1 - (1-floor)*s
	}
}

// FieldContains reports whether the point lies inside the insonified
// field. Pixels outside can skip the physics pipeline entirely.
func (g BeamGeometry) FieldContains(lateralCm, depthCm, scanDepthCm float64) bool {
	if depthCm < 0 || depthCm > scanDepthCm {
		return false
	}
	return math.Abs(lateralCm) <= g.HalfWidthCm(depthCm)*1.05
}
