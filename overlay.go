package sonoscan

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Overlay palette. Overlays are pure presentation drawn after the physics
// buffer is complete; they write pixels on top and never feed back into
// the intensity pipeline.
var (
	overlayTick  = color.RGBA{R: 205, G: 205, B: 205, A: 255}
	overlayFocus = color.RGBA{R: 255, G: 214, B: 64, A: 255}
	overlayBeam  = color.RGBA{R: 70, G: 110, B: 140, A: 255}
	overlayLabel = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	overlayFaint = color.RGBA{R: 90, G: 90, B: 90, A: 255}
)

var (
	labelFaceOnce sync.Once
	labelFace     font.Face
)

// labelFont lazily parses the bundled Go Regular face used for anatomy
// labels and depth captions.
func labelFont() font.Face {
	labelFaceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			Logger().Warn("overlay font unavailable", "err", err)
			return
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    11,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			Logger().Warn("overlay face unavailable", "err", err)
			return
		}
		labelFace = face
	})
	return labelFace
}

// drawOverlays renders the enabled overlay set on top of the finished
// frame: depth-scale ticks, focus marker, beam guide lines, layer
// boundaries and labels.
func drawOverlays(surf *Surface, st frameState) {
	feats := st.cfg.Features
	if feats.Has(FeatureOverlayBeamLines) {
		drawBeamLines(surf, st)
	}
	if feats.Has(FeatureOverlayDepthScale) {
		drawDepthScale(surf, st)
	}
	if feats.Has(FeatureOverlayFocusMarker) {
		drawFocusMarker(surf, st)
	}
	if feats.Has(FeatureOverlayLabels) {
		drawLayerLabels(surf, st)
	}
}

// drawDepthScale draws centimeter ticks along the right edge, with longer
// ticks and captions on the major marks.
func drawDepthScale(surf *Surface, st frameState) {
	w, h := surf.width, surf.height
	depth := st.cfg.DepthCm

	stepCm := 1.0
	if depth <= 5 {
		stepCm = 0.5
	}
	labelEvery := 1.0
	if depth > 10 {
		labelEvery = 2.0
	}

	for d := stepCm; d < depth; d += stepCm {
		y := int(d / depth * float64(h))
		if y >= h {
			break
		}
		major := remainderNear(d, labelEvery)
		tickLen := 4
		if major {
			tickLen = 8
		}
		drawHLine(surf, w-1-tickLen, w-1, y, overlayTick)
		if major {
			drawText(surf, w-30, y+4, fmt.Sprintf("%g", d), overlayTick)
		}
	}
}

// remainderNear reports whether v is within tolerance of a multiple of m.
func remainderNear(v, m float64) bool {
	r := v / m
	return absFloat(r-float64(int(r+0.5))) < 1e-9
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// drawFocusMarker draws a caret at the focal depth on the right edge.
func drawFocusMarker(surf *Surface, st frameState) {
	h := surf.height
	w := surf.width
	y := int(st.cfg.FocusCm / st.cfg.DepthCm * float64(h))
	if y < 0 || y >= h {
		return
	}
	for i := 0; i < 5; i++ {
		drawVLine(surf, w-11+i, y-i, y+i, overlayFocus)
	}
}

// drawBeamLines draws beam-direction guide lines: equally spaced verticals
// for the linear probe, a fan from the apex for sector probes.
func drawBeamLines(surf *Surface, st frameState) {
	w, h := surf.width, surf.height
	const lines = 5

	switch st.cfg.Transducer {
	case TransducerLinear:
		for i := 1; i < lines; i++ {
			x := i * w / lines
			drawVLine(surf, x, 0, h-1, overlayBeam)
		}
	default:
		apexX := w / 2
		for i := 0; i <= lines; i++ {
			xBottom := i * w / lines
			drawLine(surf, apexX, 0, xBottom, h-1, overlayBeam)
		}
	}
}

// drawLayerLabels draws a faint line at each layer boundary and the layer
// name at its mid-depth along the left edge.
func drawLayerLabels(surf *Surface, st frameState) {
	w, h := surf.width, surf.height

	for _, iface := range st.interfaces {
		y := int(iface.DepthCm / st.cfg.DepthCm * float64(h))
		if y <= 0 || y >= h {
			continue
		}
		for x := 0; x < w; x += 6 {
			drawHLine(surf, x, minInt(x+2, w-1), y, overlayFaint)
		}
	}

	for i := range st.model.Layers {
		l := &st.model.Layers[i]
		if l.Name == "" {
			continue
		}
		mid := (l.DepthFrom + l.DepthTo) / 2
		y := int(mid * float64(h))
		if y < 8 || y >= h-2 {
			continue
		}
		drawText(surf, 6, y+4, l.Name, overlayLabel)
	}
}

// drawText renders a short caption with the bundled face. No shaping is
// performed; captions are plain ASCII.
func drawText(surf *Surface, x, y int, s string, c color.RGBA) {
	face := labelFont()
	if face == nil || surf.closed {
		return
	}
	img := &image.RGBA{
		Pix:    surf.pix,
		Stride: surf.width * 4,
		Rect:   image.Rect(0, 0, surf.width, surf.height),
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func drawHLine(surf *Surface, x0, x1, y int, c color.RGBA) {
	if y < 0 || y >= surf.height {
		return
	}
	for x := maxInt(x0, 0); x <= minInt(x1, surf.width-1); x++ {
		surf.setRGBA(x, y, c.R, c.G, c.B)
	}
}

func drawVLine(surf *Surface, x, y0, y1 int, c color.RGBA) {
	if x < 0 || x >= surf.width {
		return
	}
	for y := maxInt(y0, 0); y <= minInt(y1, surf.height-1); y++ {
		surf.setRGBA(x, y, c.R, c.G, c.B)
	}
}

// drawLine is a plain Bresenham segment used for beam guide fans.
func drawLine(surf *Surface, x0, y0, x1, y1 int, c color.RGBA) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if x0 >= 0 && x0 < surf.width && y0 >= 0 && y0 < surf.height {
			surf.setRGBA(x0, y0, c.R, c.G, c.B)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
