package sonoscan

import (
	"math"
	"testing"
)

// TestBeamWidthDistinction checks the defining geometric difference
// between probe types: the linear beam half-width is constant with depth,
// the convex half-width grows with depth.
func TestBeamWidthDistinction(t *testing.T) {
	linear := BeamGeometry{Transducer: TransducerLinear}
	convex := BeamGeometry{Transducer: TransducerConvex}

	lw2 := linear.HalfWidthCm(2)
	lw10 := linear.HalfWidthCm(10)
	if lw2 != lw10 {
		t.Errorf("linear half-width changed with depth: %v at 2cm, %v at 10cm", lw2, lw10)
	}

	cw2 := convex.HalfWidthCm(2)
	cw10 := convex.HalfWidthCm(10)
	if cw10 <= cw2 {
		t.Errorf("convex half-width did not grow with depth: %v at 2cm, %v at 10cm", cw2, cw10)
	}

	micro := BeamGeometry{Transducer: TransducerMicroconvex}
	if micro.HalfWidthCm(10) <= convex.HalfWidthCm(10) {
		t.Error("microconvex should fan wider than convex at equal depth")
	}
}

// TestPixelToFieldLinear checks the parallel-sided linear mapping: the
// lateral coordinate depends only on the column, never the row.
func TestPixelToFieldLinear(t *testing.T) {
	g := BeamGeometry{Transducer: TransducerLinear}
	const w, h = 400, 400

	_, latTop := g.PixelToField(100, 10, w, h, 12)
	_, latBottom := g.PixelToField(100, 390, w, h, 12)
	if latTop != latBottom {
		t.Errorf("linear lateral varies with depth: %v vs %v", latTop, latBottom)
	}

	// Edges map to ±aperture/2.
	_, latLeft := g.PixelToField(0, 200, w, h, 12)
	if math.Abs(latLeft+linearApertureCm/2) > 0.02 {
		t.Errorf("left edge lateral = %v, want ≈ %v", latLeft, -linearApertureCm/2)
	}

	depth, _ := g.PixelToField(200, h-1, w, h, 12)
	if depth > 12 {
		t.Errorf("bottom row depth = %v, want <= scan depth", depth)
	}
}

// TestPixelToFieldConvex checks the sector mapping: lateral extent scales
// with depth along a fixed column.
func TestPixelToFieldConvex(t *testing.T) {
	g := BeamGeometry{Transducer: TransducerConvex}
	const w, h = 400, 400

	_, latShallow := g.PixelToField(350, 40, w, h, 12)
	_, latDeep := g.PixelToField(350, 360, w, h, 12)
	if math.Abs(latDeep) <= math.Abs(latShallow) {
		t.Errorf("convex lateral did not grow with depth: %v vs %v", latShallow, latDeep)
	}

	// The center column stays on the beam axis.
	_, latCenter := g.PixelToField(w/2, 200, w, h, 12)
	if math.Abs(latCenter) > 0.1 {
		t.Errorf("center column lateral = %v, want ≈ 0", latCenter)
	}
}

// TestLateralFalloff checks the profile: full intensity on the axis,
// monotone decay, near zero outside the band.
func TestLateralFalloff(t *testing.T) {
	for _, tr := range []Transducer{TransducerLinear, TransducerConvex, TransducerMicroconvex} {
		g := BeamGeometry{Transducer: tr}
		hw := g.HalfWidthCm(6)

		if got := g.LateralFalloff(0, 6); got != 1 {
			t.Errorf("%v: on-axis falloff = %v, want 1", tr, got)
		}
		mid := g.LateralFalloff(hw*0.95, 6)
		if mid <= 0 || mid >= 1 {
			t.Errorf("%v: shoulder falloff = %v, want in (0, 1)", tr, mid)
		}
		far := g.LateralFalloff(hw*1.5, 6)
		if far > 0.02 {
			t.Errorf("%v: outside-band falloff = %v, want near zero", tr, far)
		}
	}
}

func TestFieldContains(t *testing.T) {
	g := BeamGeometry{Transducer: TransducerLinear}
	if !g.FieldContains(0, 5, 12) {
		t.Error("axis point at mid depth should be inside the field")
	}
	if g.FieldContains(0, 13, 12) {
		t.Error("point beyond scan depth should be outside the field")
	}
	if g.FieldContains(5, 5, 12) {
		t.Error("point far outside the aperture should be outside the field")
	}
}
