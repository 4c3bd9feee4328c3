package sonoscan

import "image"

// Surface is the render target: a fixed-resolution RGBA pixel buffer plus
// the surface-sized speckle cache. A surface is created once per session
// and destroyed when the hosting view unmounts; the speckle cache is
// regenerated only on reseed or a frequency change, never per frame.
type Surface struct {
	width  int
	height int
	pix    []uint8 // RGBA, 4 bytes per pixel

	speckle *SpeckleField
	closed  bool
}

// NewSurface creates a surface with the given dimensions, clamped to a
// minimum of 1×1.
func NewSurface(width, height int) *Surface {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Surface{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Pix returns the raw RGBA pixel data. The engine writes it once per
// frame; hosts blit it to the screen between frames.
func (s *Surface) Pix() []uint8 { return s.pix }

// Closed reports whether the surface has been released.
func (s *Surface) Closed() bool { return s.closed }

// setGray writes an opaque grayscale pixel.
func (s *Surface) setGray(x, y int, v uint8) {
	i := (y*s.width + x) * 4
	s.pix[i+0] = v
	s.pix[i+1] = v
	s.pix[i+2] = v
	s.pix[i+3] = 255
}

// setRGBA writes an opaque color pixel.
func (s *Surface) setRGBA(x, y int, r, g, b uint8) {
	i := (y*s.width + x) * 4
	s.pix[i+0] = r
	s.pix[i+1] = g
	s.pix[i+2] = b
	s.pix[i+3] = 255
}

// grayAt returns the red channel at (x, y); for B-mode pixels all three
// channels are equal.
func (s *Surface) grayAt(x, y int) uint8 {
	return s.pix[(y*s.width+x)*4]
}

// Snapshot copies the current frame into a new image.RGBA.
func (s *Surface) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.pix)
	return img
}

// ensureSpeckle lazily creates the surface-sized speckle cache.
func (s *Surface) ensureSpeckle(seed uint64) *SpeckleField {
	if s.speckle == nil {
		s.speckle = NewSpeckleField(seed, s.width, s.height)
	}
	return s.speckle
}

// Close releases the pixel buffer and speckle cache. Safe to call more
// than once.
func (s *Surface) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.pix = nil
	if s.speckle != nil {
		s.speckle.Release()
		s.speckle = nil
	}
}
