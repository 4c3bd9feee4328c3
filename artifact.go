package sonoscan

import "math"

// Artifact tuning constants.
const (
	// Acoustic shadow: near-total attenuation directly below the
	// occluder, recovering slowly with distance past its far edge.
	shadowFloor      = 0.04
	shadowRecoveryCm = 6.0

	// Posterior enhancement: through-transmission gain behind weak
	// attenuators, decaying with distance past the region.
	enhanceInclusionBoost = 0.55
	enhanceLayerBoost     = 0.32
	enhanceDecayCm        = 2.4

	// Reverberation: repeating bright bands at depth intervals
	// proportional to the probe-skin distance.
	reverbAmplitude   = 0.14
	reverbDepthDecay  = 0.35
	reverbBandWidth   = 0.07
	reverbMinPeriodCm = 0.45

	// Near-field clutter: ring-down noise close to the transducer face.
	clutterDepthRatio = 0.08
	clutterAmplitude  = 0.13
)

// shadowFactor returns the multiplicative acoustic-shadow factor at a
// field point: 1 when no shadowing inclusion occludes it, near shadowFloor
// directly below an occluder, recovering exponentially with distance past
// the inclusion's far edge. Shadows from multiple occluders compound.
func shadowFactor(m *TissueModel, depthCm, lateralCm float64) float64 {
	f := 1.0
	for i := range m.Inclusions {
		in := &m.Inclusions[i]
		if !in.StrongShadow {
			continue
		}
		farEdge := in.CenterDepthCm + in.semiDepth()
		if depthCm <= farEdge {
			continue
		}
		if math.Abs(lateralCm-in.CenterLateralCm) > in.SizeCm {
			continue
		}
		dist := depthCm - farEdge
		f *= shadowFloor + (1-shadowFloor)*(1-math.Exp(-dist/shadowRecoveryCm))
	}
	return f
}

// enhancementFactor returns the multiplicative posterior-enhancement
// factor at a field point: >1 below anechoic or hypoechoic regions,
// decaying with distance past them. Inclusions that also cast a strong
// shadow contribute nothing: shadow dominates on a shared column.
func enhancementFactor(m *TissueModel, cat *Catalog, depthCm, lateralCm, scanDepthCm float64) float64 {
	f := 1.0
	for i := range m.Inclusions {
		in := &m.Inclusions[i]
		if !in.PosteriorEnhancement || in.StrongShadow {
			continue
		}
		farEdge := in.CenterDepthCm + in.semiDepth()
		if depthCm <= farEdge {
			continue
		}
		if math.Abs(lateralCm-in.CenterLateralCm) > in.SizeCm {
			continue
		}
		dist := depthCm - farEdge
		f *= 1 + enhanceInclusionBoost*math.Exp(-dist/enhanceDecayCm)
	}

	// Fluid-like layers enhance everything beneath them.
	for i := range m.Layers {
		l := &m.Layers[i]
		if l.Echogenicity > EchoHypoechoic {
			continue
		}
		bottom := l.DepthTo * scanDepthCm
		if depthCm <= bottom {
			continue
		}
		boost := enhanceLayerBoost
		if l.Echogenicity == EchoHypoechoic {
			boost *= 0.5
		}
		dist := depthCm - bottom
		f *= 1 + boost*math.Exp(-dist/enhanceDecayCm)
	}
	return f
}

// reverberationTerm returns the additive echo contribution at a depth:
// periodic bright bands whose interval tracks the probe-skin distance
// (the first layer's thickness) and whose amplitude decays with depth.
func reverberationTerm(m *TissueModel, depthCm, scanDepthCm float64) float64 {
	period := reverbMinPeriodCm
	if len(m.Layers) > 0 {
		skin := m.Layers[0].DepthTo * scanDepthCm
		if skin > period {
			period = skin
		}
	}
	phase := depthCm / period
	frac := phase - math.Round(phase)
	band := math.Exp(-(frac * frac) / (2 * reverbBandWidth * reverbBandWidth))
	return reverbAmplitude * band * math.Exp(-depthCm*reverbDepthDecay)
}

// nearFieldClutterTerm returns the additive ring-down noise near the
// transducer face. noise is a speckle sample in [0, ~1.25] so the clutter
// flickers with the live field; zero beyond the shallow threshold.
func nearFieldClutterTerm(depthCm, scanDepthCm, noise float64) float64 {
	if scanDepthCm <= 0 {
		return 0
	}
	ratio := depthCm / scanDepthCm
	if ratio >= clutterDepthRatio {
		return 0
	}
	falloff := 1 - ratio/clutterDepthRatio
	return clutterAmplitude * falloff * noise
}
