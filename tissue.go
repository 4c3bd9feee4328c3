package sonoscan

import (
	"fmt"
	"math"
)

// Texture classifies the speckle micro-structure of a tissue layer.
type Texture int

const (
	TextureHomogeneous Texture = iota
	TextureHeterogeneous
	TextureStriated
	TextureFibrillar
)

// String returns the name of the texture class.
func (t Texture) String() string {
	switch t {
	case TextureHomogeneous:
		return "homogeneous"
	case TextureHeterogeneous:
		return "heterogeneous"
	case TextureStriated:
		return "striated"
	case TextureFibrillar:
		return "fibrillar"
	default:
		return "unknown"
	}
}

// Layer is one horizontal stratum of the scanned anatomy. Depth bounds are
// normalized to [0, 1] of the configured scan depth; ordered layers must
// tile [0, 1] without gaps (validated by TissueModel.Validate).
type Layer struct {
	Name string

	// DepthFrom and DepthTo bound the layer in normalized scan depth.
	DepthFrom float64
	DepthTo   float64

	// Reflectivity scales the layer's base intensity, in [0, 1].
	Reflectivity float64

	Echogenicity Echogenicity
	Texture      Texture

	// AttenuationDBPerCmMHz overrides the medium attenuation for depth
	// traversed inside this layer.
	AttenuationDBPerCmMHz float64

	// MediumID selects the acoustic constants used for interface
	// reflection. Empty resolves to generic soft tissue.
	MediumID string

	// HasFlow marks the layer as flow-bearing for color Doppler.
	HasFlow              bool
	FlowVelocityCmPerSec float64
}

// Shape enumerates the supported inclusion geometries.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeEllipse
	ShapeRect
	ShapeCapsule
	ShapeVessel
)

// String returns the name of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeCircle:
		return "circle"
	case ShapeEllipse:
		return "ellipse"
	case ShapeRect:
		return "rect"
	case ShapeCapsule:
		return "capsule"
	case ShapeVessel:
		return "vessel"
	default:
		return "unknown"
	}
}

// Border selects how an inclusion blends into the ambient layer.
type Border int

const (
	BorderSharp Border = iota
	BorderSoft
)

// vesselDefaultRotationDeg is applied to vessels that declare no rotation.
// The sign alternates by declaration index so adjacent unrotated vessels
// do not look like copies.
const vesselDefaultRotationDeg = 12.0

// softBorderRim is the fraction of the inclusion radius over which a soft
// border feathers from inside to outside.
const softBorderRim = 0.18

// wallWaveCyclesPerCm controls the spatial frequency of the sinusoidal
// wall perturbation applied to capsules and vessels.
const wallWaveCyclesPerCm = 2.6

// Inclusion is a localized region overriding the ambient layer, e.g. a
// cyst, vessel or calcification. Positions and sizes are in centimeters.
type Inclusion struct {
	Shape Shape

	CenterDepthCm   float64
	CenterLateralCm float64

	// SizeCm is the lateral semi-axis (or half-extent) of the inclusion.
	SizeCm float64

	// SizeDepthCm is the depth semi-axis. Zero means same as SizeCm.
	SizeDepthCm float64

	// MediumID selects the acoustic constants inside the inclusion.
	MediumID string

	Border Border

	// StrongShadow casts an acoustic shadow below the inclusion.
	StrongShadow bool

	// PosteriorEnhancement brightens the column below the inclusion.
	// Ignored when StrongShadow is also set: shadow dominates.
	PosteriorEnhancement bool

	// RotationDeg rotates capsule and vessel shapes. Zero on a vessel
	// selects the alternating default of ±12 degrees.
	RotationDeg float64

	// WallIrregularity perturbs the capsule/vessel wall radius, in
	// fraction of the radius. Zero gives a smooth wall.
	WallIrregularity float64

	// HasFlow marks the inclusion as flow-bearing for color Doppler.
	// Vessel shapes typically set this.
	HasFlow              bool
	FlowVelocityCmPerSec float64
}

// semiDepth returns the effective depth semi-axis.
func (in *Inclusion) semiDepth() float64 {
	if in.SizeDepthCm > 0 {
		return in.SizeDepthCm
	}
	return in.SizeCm
}

// rotationRad returns the effective rotation for the inclusion at the
// given declaration index, applying the vessel default when unset.
func (in *Inclusion) rotationRad(index int) float64 {
	deg := in.RotationDeg
	if deg == 0 && in.Shape == ShapeVessel {
		deg = vesselDefaultRotationDeg
		if index%2 == 1 {
			deg = -deg
		}
	}
	return deg * math.Pi / 180
}

// coverage returns how strongly the inclusion claims the point, in [0, 1]:
// 1 deep inside, 0 outside, and a feathered ramp across the rim for soft
// borders. Sharp borders step from 1 to 0 at the wall.
//
// The second return value is the normalized radial position in [0, 1+]
// measured from the inclusion axis, used by the Doppler flow profile.
func (in *Inclusion) coverage(index int, depthCm, lateralCm float64) (float64, float64) {
	dl := lateralCm - in.CenterLateralCm
	dd := depthCm - in.CenterDepthCm

	a := math.Max(in.SizeCm, 1e-6)
	b := math.Max(in.semiDepth(), 1e-6)

	// rho is the normalized distance from the inclusion axis: 1 at the wall.
	var rho float64

	switch in.Shape {
	case ShapeCircle:
		rho = math.Hypot(dl, dd) / a

	case ShapeEllipse:
		rho = math.Sqrt((dl/a)*(dl/a) + (dd/b)*(dd/b))

	case ShapeRect:
		rho = math.Max(math.Abs(dl)/a, math.Abs(dd)/b)

	case ShapeCapsule, ShapeVessel:
		rot := in.rotationRad(index)
		cos, sin := math.Cos(rot), math.Sin(rot)
		// Rotate the point into the inclusion-local frame.
		lx := dl*cos + dd*sin
		ly := -dl*sin + dd*cos

		// Rectangle with rounded caps: the segment half-length is the
		// lateral semi-axis minus the cap radius.
		r := b
		halfLen := math.Max(a-r, 0)
		ax := math.Abs(lx) - halfLen
		if ax < 0 {
			ax = 0
		}
		dist := math.Hypot(ax, ly)

		// Organic wall texture: perturb the effective radius along the
		// local lateral axis.
		if in.WallIrregularity != 0 {
			r *= 1 + in.WallIrregularity*math.Sin(lx*wallWaveCyclesPerCm*2*math.Pi)
			if r < 1e-6 {
				r = 1e-6
			}
		}
		rho = dist / r

	default:
		rho = math.Hypot(dl, dd) / a
	}

	switch {
	case in.Border == BorderSharp:
		if rho <= 1 {
			return 1, rho
		}
		return 0, rho
	default: // BorderSoft
		inner := 1 - softBorderRim
		switch {
		case rho <= inner:
			return 1, rho
		case rho >= 1:
			return 0, rho
		default:
			return (1 - rho) / softBorderRim, rho
		}
	}
}

// Interface describes the boundary between two adjacent layers: its depth
// in centimeters and the pressure reflection coefficient across it.
type Interface struct {
	DepthCm    float64
	Reflection float64
}

// TissueModel is the plain-data description of the sampled anatomy:
// ordered layers tiling the scan depth plus localized inclusions.
// It is treated as a read-only snapshot during a frame.
type TissueModel struct {
	Name       string
	Layers     []Layer
	Inclusions []Inclusion
}

// layerTilingEps is the tolerance for gaps between adjacent layer bounds.
const layerTilingEps = 1e-6

// Validate checks that the model can back the per-pixel pipeline: at least
// one layer, and layer depth ranges tiling [0, 1] in order without gaps.
func (m *TissueModel) Validate() error {
	if m == nil || len(m.Layers) == 0 {
		return &ConfigError{Field: "model.layers", Reason: "at least one layer is required"}
	}
	prev := 0.0
	for i, l := range m.Layers {
		if !isFinite(l.DepthFrom) || !isFinite(l.DepthTo) {
			return &ConfigError{Field: fmt.Sprintf("model.layers[%d]", i), Reason: "depth bounds must be finite"}
		}
		if l.DepthTo <= l.DepthFrom {
			return &ConfigError{Field: fmt.Sprintf("model.layers[%d]", i), Reason: "depthTo must exceed depthFrom"}
		}
		if math.Abs(l.DepthFrom-prev) > layerTilingEps {
			return &ConfigError{Field: fmt.Sprintf("model.layers[%d]", i), Reason: fmt.Sprintf("gap in layer tiling at normalized depth %.4f", prev)}
		}
		if l.Reflectivity < 0 || l.Reflectivity > 1 || !isFinite(l.Reflectivity) {
			return &ConfigError{Field: fmt.Sprintf("model.layers[%d].reflectivity", i), Reason: "must be in [0, 1]"}
		}
		prev = l.DepthTo
	}
	if math.Abs(prev-1) > layerTilingEps {
		return &ConfigError{Field: "model.layers", Reason: fmt.Sprintf("layers end at %.4f, must tile to 1", prev)}
	}
	for i, in := range m.Inclusions {
		if in.SizeCm <= 0 || !isFinite(in.SizeCm) || in.SizeDepthCm < 0 || !isFinite(in.SizeDepthCm) {
			return &ConfigError{Field: fmt.Sprintf("model.inclusions[%d].size", i), Reason: "size must be positive and finite"}
		}
		if !isFinite(in.CenterDepthCm) || !isFinite(in.CenterLateralCm) {
			return &ConfigError{Field: fmt.Sprintf("model.inclusions[%d].center", i), Reason: "center must be finite"}
		}
	}
	return nil
}

// FieldSample is the result of a tissue lookup at one field point.
type FieldSample struct {
	Medium Medium

	// Layer is the ambient layer at the point. Never nil for a model
	// with at least one layer (out-of-range depths use the last layer).
	Layer *Layer

	// Inclusion is non-nil when the point lies inside an inclusion;
	// the first declared inclusion containing the point wins.
	Inclusion *Inclusion

	// InclusionIndex is the declaration index of Inclusion, or -1.
	InclusionIndex int

	// Coverage is 1 deep inside the inclusion, below 1 across a soft
	// rim, and 0 for ambient points.
	Coverage float64

	// Radial is the normalized distance from the inclusion axis
	// (0 center, 1 wall). Only meaningful when Inclusion is non-nil.
	Radial float64
}

// SampleAt resolves the active medium, layer and inclusion at a field
// point. Inclusions are tested first, in declaration order; ambient layers
// are walked by normalized depth with the last layer as fallback. SampleAt
// is total: it never fails for finite coordinates, falling back to the
// catalog default medium when IDs are unknown.
func (m *TissueModel) SampleAt(cat *Catalog, depthCm, lateralCm, scanDepthCm float64) FieldSample {
	s := FieldSample{InclusionIndex: -1}

	for i := range m.Inclusions {
		in := &m.Inclusions[i]
		cov, rho := in.coverage(i, depthCm, lateralCm)
		if cov > 0 {
			s.Inclusion = in
			s.InclusionIndex = i
			s.Coverage = cov
			s.Radial = rho
			break
		}
	}

	s.Layer = m.layerAt(depthCm, scanDepthCm)

	switch {
	case s.Inclusion != nil:
		s.Medium = cat.Get(s.Inclusion.MediumID)
	case s.Layer != nil:
		s.Medium = cat.Get(s.Layer.MediumID)
	default:
		s.Medium = cat.Get("")
	}
	return s
}

// layerAt returns the layer containing the normalized depth, or the last
// layer when the coordinate falls outside all ranges.
func (m *TissueModel) layerAt(depthCm, scanDepthCm float64) *Layer {
	if len(m.Layers) == 0 {
		return nil
	}
	nd := 0.0
	if scanDepthCm > 0 {
		nd = depthCm / scanDepthCm
	}
	for i := range m.Layers {
		l := &m.Layers[i]
		if nd >= l.DepthFrom && nd < l.DepthTo {
			return l
		}
	}
	return &m.Layers[len(m.Layers)-1]
}

// Interfaces precomputes, for each adjacent layer pair, the boundary depth
// in centimeters and the reflection coefficient derived from the layer
// media. Used for bright interface highlighting in the compositor.
func (m *TissueModel) Interfaces(cat *Catalog, scanDepthCm float64) []Interface {
	if len(m.Layers) < 2 {
		return nil
	}
	out := make([]Interface, 0, len(m.Layers)-1)
	for i := 0; i < len(m.Layers)-1; i++ {
		z1 := cat.Get(m.Layers[i].MediumID).ImpedanceMRayl
		z2 := cat.Get(m.Layers[i+1].MediumID).ImpedanceMRayl
		out = append(out, Interface{
			DepthCm:    m.Layers[i].DepthTo * scanDepthCm,
			Reflection: ReflectionCoefficient(z1, z2),
		})
	}
	return out
}

// textureGain modulates the speckle contribution by the layer's texture
// class. Striated tissue banding runs along depth, fibrillar along the
// lateral axis, heterogeneous tissue widens the speckle spread.
func (l *Layer) textureGain(depthCm, lateralCm, speckle float64) float64 {
	switch l.Texture {
	case TextureStriated:
		return speckle * (1 + 0.22*math.Sin(depthCm*7.1))
	case TextureFibrillar:
		return speckle * (1 + 0.18*math.Sin(lateralCm*9.3))
	case TextureHeterogeneous:
		return 0.5 + (speckle-0.5)*1.45
	default:
		return speckle
	}
}

// isFinite reports whether v is neither NaN nor infinite.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
