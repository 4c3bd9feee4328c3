package sonoscan

import "math"

// Speckle tuning constants.
const (
	speckleOctaves = 4

	// speckleGrainPerMHz converts transmit frequency to noise-space
	// scale: higher frequency means finer grain.
	speckleGrainPerMHz = 0.045

	// rayleighMix is the fraction of the fractal value replaced by the
	// Rayleigh-remapped amplitude.
	rayleighMix = 0.40

	// rayleighNorm maps the Rayleigh amplitude (mode ~1) into [0, 1].
	rayleighNorm = 2.2

	// driftRowsPerSec and driftSwayPx give the slow phase drift of the
	// live field without changing its statistical character.
	driftRowsPerSec = 3.5
	driftSwayPx     = 5.0
	driftSwayHz     = 0.05
)

// SpeckleField produces the coherent-scatterer speckle texture: seeded
// hash noise blended over several octaves with a Rayleigh-style amplitude
// remap. A field caches one surface-sized realization and animates it by
// slow phase drift; the cache is regenerated only on resize, reseed or a
// transmit-frequency change, never per frame.
//
// SpeckleField is not safe for concurrent mutation; the engine owns it
// exclusively (the cache is the only mutable state shared across frames).
type SpeckleField struct {
	seed    uint64
	width   int
	height  int
	freqMHz float64
	cache   []float32
}

// NewSpeckleField creates a field sized to a w×h surface.
func NewSpeckleField(seed uint64, width, height int) *SpeckleField {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &SpeckleField{seed: seed, width: width, height: height}
}

// EnsureFrequency regenerates the cached realization when the transmit
// frequency changed (grain size is frequency dependent). The first call
// always builds the cache.
func (f *SpeckleField) EnsureFrequency(freqMHz float64) {
	if f.cache != nil && f.freqMHz == freqMHz {
		return
	}
	f.freqMHz = freqMHz
	if f.cache == nil {
		f.cache = make([]float32, f.width*f.height)
	}
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			f.cache[y*f.width+x] = float32(f.Sample(float64(x), float64(y), freqMHz, 0))
		}
	}
	Logger().Debug("speckle cache rebuilt",
		"width", f.width, "height", f.height, "freqMHz", freqMHz)
}

// Value returns the animated speckle factor for pixel (x, y) at time t
// seconds, reading the cached realization with a slow drift offset.
// EnsureFrequency must have been called first.
func (f *SpeckleField) Value(x, y int, t float64) float64 {
	if f.cache == nil {
		return 1
	}
	fx := float64(x) + driftSwayPx*math.Sin(2*math.Pi*driftSwayHz*t)
	fy := float64(y) + driftRowsPerSec*t
	return f.bilinear(fx, fy)
}

// bilinear samples the cache with wrap-around at the edges.
func (f *SpeckleField) bilinear(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	tx := x - x0
	ty := y - y0

	xi := wrapIndex(int(x0), f.width)
	yi := wrapIndex(int(y0), f.height)
	xj := wrapIndex(xi+1, f.width)
	yj := wrapIndex(yi+1, f.height)

	v00 := float64(f.cache[yi*f.width+xi])
	v10 := float64(f.cache[yi*f.width+xj])
	v01 := float64(f.cache[yj*f.width+xi])
	v11 := float64(f.cache[yj*f.width+xj])

	top := v00 + (v10-v00)*tx
	bot := v01 + (v11-v01)*tx
	return top + (bot-top)*ty
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Sample is the pure-seed mode: it computes the speckle factor for pixel
// coordinates (px, py) at time t from the seed alone, with no cache.
// Two invocations with the same seed, coordinates, frequency and time are
// bit-identical.
func (f *SpeckleField) Sample(px, py, freqMHz, t float64) float64 {
	scale := speckleGrainPerMHz * freqMHz
	if scale <= 0 {
		scale = speckleGrainPerMHz
	}
	x := px*scale + t*0.31
	y := py*scale + t*0.47

	// Classic fractal blend: amplitude halves and frequency doubles
	// per octave.
	sum := 0.0
	norm := 0.0
	amp := 1.0
	freq := 1.0
	for o := 0; o < speckleOctaves; o++ {
		sum += amp * valueNoise(f.seed+uint64(o)*0x9e3779b97f4a7c15, x*freq, y*freq)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	v := sum / norm

	// Rayleigh-style remap over a fraction of the blended value,
	// emulating coherent-scatterer amplitude statistics.
	u1 := math.Min(math.Max(v, 1e-4), 1-1e-4)
	u2 := valueNoise(f.seed^0xa0761d6478bd642f, x*1.7+19.19, y*1.7-7.77)
	r := math.Sqrt(-2*math.Log(u1)) * math.Abs(math.Cos(2*math.Pi*u2))
	ray := math.Min(r/rayleighNorm, 1.25)

	return (1-rayleighMix)*v + rayleighMix*ray
}

// valueNoise is deterministic lattice noise in [0, 1): hashed corners with
// smoothstep bilinear interpolation.
func valueNoise(seed uint64, x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	tx := smooth(x - x0)
	ty := smooth(y - y0)

	xi := int64(x0)
	yi := int64(y0)
	v00 := hash01(seed, xi, yi)
	v10 := hash01(seed, xi+1, yi)
	v01 := hash01(seed, xi, yi+1)
	v11 := hash01(seed, xi+1, yi+1)

	top := v00 + (v10-v00)*tx
	bot := v01 + (v11-v01)*tx
	return top + (bot-top)*ty
}

func smooth(t float64) float64 { return t * t * (3 - 2*t) }

// hash01 maps a lattice point to [0, 1) using a splitmix64-style mix.
func hash01(seed uint64, x, y int64) float64 {
	h := seed ^ uint64(x)*0x9e3779b97f4a7c15 ^ uint64(y)*0xbf58476d1ce4e5b9
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return float64(h>>11) / float64(1<<53)
}

// Release drops the cached realization.
func (f *SpeckleField) Release() {
	f.cache = nil
}
