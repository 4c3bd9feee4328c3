package sonoscan

import (
	"math"

	"github.com/sonolab/sonoscan/internal/parallel"
)

// Compositor tuning constants.
const (
	// gainDivisorDB linearizes the 0–100 UI gain: 10^((gain−50)/40),
	// unity at 50.
	gainDivisorDB = 40

	// drDivisorDB converts dynamic range to the compression exponent:
	// intensity^(1/(DR/40)).
	drDivisorDB = 40

	// microJitterAmp is the sub-1% deterministic flicker that keeps the
	// live image from looking frozen.
	microJitterAmp = 0.005

	// interfaceBandPx is the half-thickness, in pixels, of the bright
	// band drawn around each layer interface.
	interfaceBandPx = 1.5

	// interfaceBoost scales the interface highlight by the magnitude of
	// the reflection coefficient.
	interfaceBoost = 3.0

	// rowStrip is the scanline granularity handed to the worker pool.
	rowStrip = 16
)

// frameState is the read-only snapshot a single frame renders from. It is
// built once at frame start from the pending config and model references;
// nothing mutates it mid-frame.
type frameState struct {
	cfg   ScanConfig
	model *TissueModel
	cat   *Catalog
	geom  BeamGeometry

	interfaces []Interface
	gainLinear float64
	drExponent float64
	nyquist    float64

	t    float64
	tick uint64
	seed uint64
}

// newFrameState precomputes the per-frame terms of the pipeline.
func newFrameState(cfg ScanConfig, model *TissueModel, cat *Catalog, t float64, seed uint64) frameState {
	return frameState{
		cfg:        cfg,
		model:      model,
		cat:        cat,
		geom:       BeamGeometry{Transducer: cfg.Transducer},
		interfaces: model.Interfaces(cat, cfg.DepthCm),
		gainLinear: math.Pow(10, (cfg.Gain-50)/gainDivisorDB),
		drExponent: 1 / (cfg.DynamicRangeDB / drDivisorDB),
		nyquist:    NyquistVelocityCmPerSec(cfg.FrequencyMHz),
		t:          t,
		tick:       uint64(math.Round(t * 1000)),
		seed:       seed,
	}
}

// renderFrame fills the surface pixel buffer from the frame state. Rows
// run as independent strips through the pool; no pixel reads another's
// output, so parallel and sequential execution are identical.
func renderFrame(surf *Surface, st frameState, pool *parallel.Pool) {
	speckle := surf.ensureSpeckle(st.seed)
	speckle.EnsureFrequency(st.cfg.FrequencyMHz)

	render := func(lo, hi int) {
		renderRows(surf, st, speckle, lo, hi)
	}
	if pool != nil {
		pool.Rows(surf.height, rowStrip, render)
	} else {
		render(0, surf.height)
	}
}

// renderRows runs the per-pixel pipeline over scanlines [lo, hi).
// The stage order is fixed; each stage is strictly multiplicative except
// the additive artifacts (reverberation, near-field clutter).
func renderRows(surf *Surface, st frameState, speckle *SpeckleField, lo, hi int) {
	w, h := surf.width, surf.height
	cfg := &st.cfg

	// Interface band half-thickness in cm at this resolution.
	bandCm := interfaceBandPx * cfg.DepthCm / float64(h)

	for y := lo; y < hi; y++ {
		for x := 0; x < w; x++ {
			depthCm, lateralCm := st.geom.PixelToField(x, y, w, h, cfg.DepthCm)

			// Beyond scan range or outside the insonified sector:
			// black, skip the pipeline.
			if depthCm > cfg.DepthCm || !st.geom.FieldContains(lateralCm, depthCm, cfg.DepthCm) {
				surf.setGray(x, y, 0)
				continue
			}

			s := st.model.SampleAt(st.cat, depthCm, lateralCm, cfg.DepthCm)

			// Base intensity: ambient layer echogenicity scaled by
			// reflectivity, blended toward the inclusion medium
			// across soft rims.
			base := s.Layer.Echogenicity.baseValue() * s.Layer.Reflectivity
			if s.Inclusion != nil {
				incBase := s.Medium.Echogenicity.baseValue()
				base += (incBase - base) * s.Coverage
			}

			// Speckle, modulated by the layer texture class.
			sp := speckle.Value(x, y, st.t)
			intensity := base * s.Layer.textureGain(depthCm, lateralCm, sp)

			// Depth attenuation with the active medium coefficient,
			// plus electronic TGC.
			coeff := s.Layer.AttenuationDBPerCmMHz
			if coeff <= 0 {
				coeff = st.cat.Get(s.Layer.MediumID).AttenuationDBPerCmMHz
			}
			if s.Inclusion != nil {
				coeff += (s.Medium.AttenuationDBPerCmMHz - coeff) * s.Coverage
			}
			intensity *= AttenuationFactor(depthCm, cfg.FrequencyMHz, coeff)
			intensity *= cfg.TGC.Gain(depthCm / cfg.DepthCm)

			// Focal-zone optics and lateral beam profile.
			intensity *= FocalGain(depthCm, cfg.FocusCm)
			intensity *= DefocusBlur(depthCm, cfg.FocusCm, cfg.DepthCm)
			intensity *= st.geom.LateralFalloff(lateralCm, depthCm)

			// Receiver gain.
			intensity *= st.gainLinear

			// Bright interface highlighting.
			for _, iface := range st.interfaces {
				d := depthCm - iface.DepthCm
				if math.Abs(d) < bandCm*3 {
					g := math.Exp(-(d * d) / (2 * bandCm * bandCm))
					intensity *= 1 + interfaceBoost*math.Abs(iface.Reflection)*g
				}
			}

			// Acoustic artifacts, per enabled feature flags. Shadow
			// and enhancement multiply; reverberation and clutter
			// add. All compose before the final clamp.
			if cfg.Features.Has(FeatureShadowing) {
				intensity *= shadowFactor(st.model, depthCm, lateralCm)
			}
			if cfg.Features.Has(FeatureEnhancement) {
				intensity *= enhancementFactor(st.model, st.cat, depthCm, lateralCm, cfg.DepthCm)
			}
			if cfg.Features.Has(FeatureReverberation) {
				intensity += reverberationTerm(st.model, depthCm, cfg.DepthCm)
			}
			if cfg.Features.Has(FeatureNearFieldClutter) {
				intensity += nearFieldClutterTerm(depthCm, cfg.DepthCm, sp)
			}

			// Deterministic micro-jitter, ±0.5%.
			j := hash01(st.seed^0x27d4eb2f165667c5+st.tick, int64(x), int64(y))
			intensity *= 1 + microJitterAmp*(2*j-1)

			// Dynamic-range compression, then clamp and encode.
			if intensity < 0 {
				intensity = 0
			}
			intensity = math.Pow(intensity, st.drExponent)
			if intensity > 1 {
				intensity = 1
			}
			gray := uint8(intensity*255 + 0.5)

			if cfg.Mode == ModeColorDoppler {
				if v, ok := flowVelocityAt(s, depthCm, lateralCm, cfg.DepthCm, st.t, st.seed); ok {
					wrapped := WrapVelocity(v, st.nyquist)
					if r, g, b, a, show := dopplerColor(wrapped, st.nyquist); show {
						gf := float64(gray) / 255
						surf.setRGBA(x, y,
							encodeChannel(a*r+(1-a)*gf),
							encodeChannel(a*g+(1-a)*gf),
							encodeChannel(a*b+(1-a)*gf))
						continue
					}
				}
			}
			surf.setGray(x, y, gray)
		}
	}
}

// encodeChannel clamps a [0, 1] channel to 8 bits.
func encodeChannel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
