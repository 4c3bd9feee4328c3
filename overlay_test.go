package sonoscan

import (
	"bytes"
	"testing"
)

// TestOverlayFlagGating checks that each overlay draws only when its flag
// is set and never disturbs pixels away from its own region.
func TestOverlayFlagGating(t *testing.T) {
	const w, h = 200, 200
	m := PresetAbdominal()

	render := func(feats FeatureSet) *Surface {
		cfg := DefaultConfig()
		cfg.Features = feats
		surf := NewSurface(w, h)
		st := newFrameState(cfg, m, DefaultCatalog(), 0.5, 42)
		renderFrame(surf, st, nil)
		drawOverlays(surf, st)
		return surf
	}

	bare := render(0)

	for _, tc := range []struct {
		name string
		flag FeatureSet
	}{
		{"depth scale", FeatureOverlayDepthScale},
		{"focus marker", FeatureOverlayFocusMarker},
		{"beam lines", FeatureOverlayBeamLines},
		{"labels", FeatureOverlayLabels},
	} {
		t.Run(tc.name, func(t *testing.T) {
			with := render(tc.flag)
			if bytes.Equal(bare.Pix(), with.Pix()) {
				t.Errorf("enabling %s changed nothing", tc.name)
			}
		})
	}
}

// TestDepthScaleStaysAtEdge checks that the depth scale only touches the
// right edge of the frame, leaving the image area untouched.
func TestDepthScaleStaysAtEdge(t *testing.T) {
	const w, h = 200, 200
	cfg := DefaultConfig()
	m := uniformModel()

	bare := NewSurface(w, h)
	scaled := NewSurface(w, h)

	cfg.Features = 0
	st := newFrameState(cfg, m, DefaultCatalog(), 0.5, 42)
	renderFrame(bare, st, nil)
	drawOverlays(bare, st)

	cfg.Features = FeatureOverlayDepthScale
	st = newFrameState(cfg, m, DefaultCatalog(), 0.5, 42)
	renderFrame(scaled, st, nil)
	drawOverlays(scaled, st)

	// Ticks and captions live within the rightmost 40 columns.
	for y := 0; y < h; y++ {
		for x := 0; x < w-40; x++ {
			i := (y*w + x) * 4
			if scaled.pix[i] != bare.pix[i] {
				t.Fatalf("depth scale touched image pixel (%d, %d)", x, y)
			}
		}
	}
}

// TestFocusMarkerTracksFocus checks the caret moves with the focal depth.
func TestFocusMarkerTracksFocus(t *testing.T) {
	const w, h = 120, 120
	m := uniformModel()

	render := func(focus float64) *Surface {
		cfg := DefaultConfig()
		cfg.FocusCm = focus
		cfg.Features = FeatureOverlayFocusMarker
		surf := NewSurface(w, h)
		st := newFrameState(cfg, m, DefaultCatalog(), 0, 9)
		renderFrame(surf, st, nil)
		drawOverlays(surf, st)
		return surf
	}

	markerRow := func(surf *Surface) int {
		for y := 0; y < h; y++ {
			px := surf.pix[(y*w+(w-11))*4 : (y*w+(w-11))*4+3]
			if px[0] == overlayFocus.R && px[1] == overlayFocus.G && px[2] == overlayFocus.B {
				return y
			}
		}
		return -1
	}

	shallow := markerRow(render(3))
	deep := markerRow(render(9))
	if shallow < 0 || deep < 0 {
		t.Fatalf("focus marker not found: shallow=%d deep=%d", shallow, deep)
	}
	if deep <= shallow {
		t.Errorf("marker row for focus 9cm (%d) should be below focus 3cm (%d)", deep, shallow)
	}
}

// TestLayerLabelsDrawNames checks that the labels overlay marks named
// layers and is a no-op for an unnamed single-layer model.
func TestLayerLabelsDrawNames(t *testing.T) {
	const w, h = 200, 200

	render := func(m *TissueModel, feats FeatureSet) *Surface {
		cfg := DefaultConfig()
		cfg.Features = feats
		surf := NewSurface(w, h)
		st := newFrameState(cfg, m, DefaultCatalog(), 0, 3)
		renderFrame(surf, st, nil)
		drawOverlays(surf, st)
		return surf
	}
	diff := func(a, b *Surface) int {
		n := 0
		for i := range a.pix {
			if a.pix[i] != b.pix[i] {
				n++
			}
		}
		return n
	}

	named := PresetAbdominal()
	if got := diff(render(named, FeatureOverlayLabels), render(named, 0)); got == 0 {
		t.Error("labels overlay drew nothing for a model with named layers")
	}

	anon := uniformModel()
	anon.Layers[0].Name = ""
	if got := diff(render(anon, FeatureOverlayLabels), render(anon, 0)); got != 0 {
		t.Errorf("labels overlay touched %d bytes for an unnamed single-layer model, want 0", got)
	}
}
