package sonoscan

import (
	"bytes"
	"testing"

	"github.com/sonolab/sonoscan/internal/parallel"
)

func renderOne(cfg ScanConfig, m *TissueModel, t float64, w, h int) *Surface {
	surf := NewSurface(w, h)
	st := newFrameState(cfg, m, DefaultCatalog(), t, 99)
	renderFrame(surf, st, nil)
	return surf
}

func bandMean(surf *Surface, x, yLo, yHi int) float64 {
	sum := 0.0
	for y := yLo; y < yHi; y++ {
		sum += float64(surf.grayAt(x, y))
	}
	return sum / float64(yHi-yLo)
}

// TestAcousticShadowColumn renders the same uniform scene with and without
// a strongly shadowing inclusion and compares the column directly beneath
// it. The shadowed band must lose at least 70% of its intensity.
func TestAcousticShadowColumn(t *testing.T) {
	const w, h = 200, 200

	cfg := ScanConfig{
		Transducer:     TransducerLinear,
		FrequencyMHz:   3.5,
		DepthCm:        12,
		FocusCm:        6,
		Gain:           80,
		DynamicRangeDB: 40,
		Mode:           ModeBMode,
		Features:       FeatureShadowing,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}

	plain := uniformModel()
	shadowed := uniformModel()
	shadowed.Inclusions = []Inclusion{
		{Shape: ShapeCircle, CenterDepthCm: 6, CenterLateralCm: 0, SizeCm: 0.8,
			MediumID: MediumBone, StrongShadow: true},
	}

	a := renderOne(cfg, plain, 0.5, w, h)
	b := renderOne(cfg, shadowed, 0.5, w, h)

	// A 3cm band starting just below the inclusion's far edge (6.8cm),
	// on the center column. Rows map depth 7–10cm.
	hf := float64(h)
	yLo := int(7.0 / 12 * hf)
	yHi := int(10.0 / 12 * hf)
	ref := bandMean(a, w/2, yLo, yHi)
	got := bandMean(b, w/2, yLo, yHi)

	if ref < 10 {
		t.Fatalf("reference band too dark to measure: mean %v", ref)
	}
	if got > ref*0.30 {
		t.Errorf("shadowed band mean = %v, reference %v: reduction %.0f%%, want >= 70%%",
			got, ref, (1-got/ref)*100)
	}

	// A column outside the occluder is untouched.
	side := w/2 + 50
	if bandMean(a, side, yLo, yHi) != bandMean(b, side, yLo, yHi) {
		t.Error("shadow leaked outside the occluder's lateral extent")
	}
}

// TestParallelMatchesSequential checks that the worker pool changes only
// the execution order, never the pixels.
func TestParallelMatchesSequential(t *testing.T) {
	cfg := DefaultConfig()
	m := PresetAbdominal()

	seq := NewSurface(160, 160)
	par := NewSurface(160, 160)

	stSeq := newFrameState(cfg, m, DefaultCatalog(), 1.25, 7)
	stPar := newFrameState(cfg, m, DefaultCatalog(), 1.25, 7)

	renderFrame(seq, stSeq, nil)

	pool := parallel.NewPool(4)
	defer pool.Close()
	renderFrame(par, stPar, pool)

	if !bytes.Equal(seq.Pix(), par.Pix()) {
		t.Error("parallel render differs from sequential render")
	}
}

// TestGainBrightens checks monotone response of the rendered frame to the
// receiver gain and to the dynamic-range setting.
func TestGainBrightens(t *testing.T) {
	m := uniformModel()
	base := DefaultConfig()
	base.Transducer = TransducerLinear
	base.Features = 0

	mean := func(cfg ScanConfig) float64 {
		surf := renderOne(cfg, m, 0.5, 120, 120)
		sum := 0.0
		for y := 10; y < 110; y++ {
			sum += float64(surf.grayAt(60, y))
		}
		return sum / 100
	}

	low, high := base, base
	low.Gain, high.Gain = 30, 70
	if mLow, mHigh := mean(low), mean(high); mHigh <= mLow {
		t.Errorf("gain 70 mean (%v) should exceed gain 30 mean (%v)", mHigh, mLow)
	}

	// Wider dynamic range compresses harder and lifts the midtones.
	narrow, wide := base, base
	narrow.DynamicRangeDB, wide.DynamicRangeDB = 40, 120
	if mNarrow, mWide := mean(narrow), mean(wide); mWide <= mNarrow {
		t.Errorf("DR 120 mean (%v) should exceed DR 40 mean (%v)", mWide, mNarrow)
	}
}

// TestEdgeVignetting checks the lateral falloff in a rendered convex
// frame: columns near the fan edge are markedly dimmer than the axis at
// the same depths.
func TestEdgeVignetting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Features = 0
	surf := renderOne(cfg, uniformModel(), 0, 200, 200)

	colMean := func(x int) float64 {
		sum := 0.0
		for y := 150; y < 190; y++ {
			sum += float64(surf.grayAt(x, y))
		}
		return sum / 40
	}
	center := colMean(100)
	edge := colMean(2)
	if center == 0 {
		t.Fatal("axis band is black, expected signal")
	}
	if edge >= center*0.6 {
		t.Errorf("fan-edge band mean = %v, center = %v: expected strong vignetting", edge, center)
	}
}

// TestInterfaceHighlight checks the bright band at a layer boundary by
// comparing two models identical except for the deep layer's medium.
func TestInterfaceHighlight(t *testing.T) {
	const w, h = 200, 200
	mkModel := func(deepMedium string) *TissueModel {
		return &TissueModel{
			Layers: []Layer{
				{Name: "top", DepthFrom: 0, DepthTo: 0.25, Reflectivity: 0.6,
					Echogenicity: EchoIsoechoic, MediumID: MediumFat,
					AttenuationDBPerCmMHz: 0.54},
				{Name: "deep", DepthFrom: 0.25, DepthTo: 1, Reflectivity: 0.6,
					Echogenicity: EchoIsoechoic, MediumID: deepMedium,
					AttenuationDBPerCmMHz: 0.54},
			},
		}
	}

	cfg := DefaultConfig()
	cfg.Transducer = TransducerLinear
	cfg.Features = 0

	// Fat over muscle reflects; fat over fat does not.
	withIface := renderOne(cfg, mkModel(MediumMuscle), 0.5, w, h)
	without := renderOne(cfg, mkModel(MediumFat), 0.5, w, h)

	// Boundary depth 3cm of 12 maps near row 49.
	rowMean := func(surf *Surface, y int) float64 {
		sum := 0.0
		for x := 40; x < 160; x++ {
			sum += float64(surf.grayAt(x, y))
		}
		return sum / 120
	}
	if a, b := rowMean(withIface, 49), rowMean(without, 49); a <= b {
		t.Errorf("boundary row with interface (%v) should be brighter than without (%v)", a, b)
	}
	// Away from the band the frames agree.
	if a, b := rowMean(withIface, 100), rowMean(without, 100); a != b {
		t.Errorf("row far from the interface differs: %v vs %v", a, b)
	}
}

// TestDopplerCompositing checks that color appears only in Doppler mode
// and only inside flow regions.
func TestDopplerCompositing(t *testing.T) {
	const w, h = 200, 200
	m := PresetVascular()

	cfg := DefaultConfig()
	cfg.Transducer = TransducerLinear
	cfg.Features = 0
	cfg.Mode = ModeColorDoppler

	// Render at the pulsatility peak so the slow vessel clears the
	// display threshold.
	tPeak := 1 / (4 * pulseRateHz)
	surf := renderOne(cfg, m, tPeak, w, h)

	// Center of the first vessel: depth 2.2cm, lateral -0.5cm.
	wf, hf := float64(w), float64(h)
	x := int((-0.5/linearApertureCm + 0.5) * wf)
	y := int(2.2 / 12 * hf)
	i := (y*w + x) * 4
	r, g, b := surf.pix[i], surf.pix[i+1], surf.pix[i+2]
	if r == g && g == b {
		t.Errorf("vessel center pixel (%d, %d) is grayscale (%d), want color", x, y, r)
	}
	if r <= b {
		t.Errorf("flow toward the probe should map warm: r=%d b=%d", r, b)
	}

	// Tissue well away from both vessels stays grayscale.
	ti := ((h-20)*w + w/2) * 4
	if surf.pix[ti] != surf.pix[ti+1] || surf.pix[ti+1] != surf.pix[ti+2] {
		t.Error("tissue pixel carries color outside flow regions")
	}

	// The same scene in B-mode is grayscale everywhere.
	cfg.Mode = ModeBMode
	gray := renderOne(cfg, m, tPeak, w, h)
	for p := 0; p < len(gray.pix); p += 4 {
		if gray.pix[p] != gray.pix[p+1] || gray.pix[p+1] != gray.pix[p+2] {
			t.Fatalf("B-mode pixel %d is not grayscale", p/4)
		}
	}
}

// TestFrameDeterminism checks bit-exact reproducibility for equal time and
// seed, and micro-jitter motion across time.
func TestFrameDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	m := PresetObstetric()

	a := renderOne(cfg, m, 2.0, 120, 120)
	b := renderOne(cfg, m, 2.0, 120, 120)
	if !bytes.Equal(a.Pix(), b.Pix()) {
		t.Error("two renders at the same time value differ")
	}

	c := renderOne(cfg, m, 2.5, 120, 120)
	if bytes.Equal(a.Pix(), c.Pix()) {
		t.Error("frames at different time values are identical, expected live motion")
	}
}
