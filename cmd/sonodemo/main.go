// Command sonodemo opens an interactive ultrasound lab window.
//
// The ebiten event loop owns the scheduling: each update tick drives the
// engine through its pacing gate and blits the surface to the window.
//
// Controls:
//
//	up/down        gain
//	left/right     scan depth
//	[ / ]          focus depth
//	- / =          transmit frequency
//	1 / 2 / 3      linear / convex / microconvex transducer
//	d              toggle color Doppler
//	p              cycle presets
//	s e r c        toggle shadow / enhancement / reverberation / clutter
//	z x b l        toggle depth scale / focus marker / beam lines / labels
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/sonolab/sonoscan"
)

func main() {
	var (
		width   = flag.Int("width", 560, "surface width in pixels")
		height  = flag.Int("height", 640, "surface height in pixels")
		fps     = flag.Float64("fps", 30, "target frame rate")
		scale   = flag.Int("scale", 1, "window scale factor")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		sonoscan.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	} else {
		sonoscan.SetLogger(slog.Default())
	}

	surf := sonoscan.NewSurface(*width, *height)
	presets := sonoscan.Presets()

	eng, err := sonoscan.New(surf, sonoscan.DefaultConfig(), presets[0],
		sonoscan.WithFrameRate(*fps))
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	defer eng.Destroy()

	g := &game{
		eng:      eng,
		surf:     surf,
		img:      ebiten.NewImage(*width, *height),
		epoch:    time.Now(),
		interval: time.Duration(float64(time.Second) / *fps),
		presets:  presets,
	}

	ebiten.SetWindowSize(*width**scale, *height**scale)
	ebiten.SetWindowTitle("sonoscan")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("run: %v", err)
	}
}

type game struct {
	eng  *sonoscan.Engine
	surf *sonoscan.Surface
	img  *ebiten.Image

	epoch    time.Time
	last     time.Time
	interval time.Duration

	presets []*sonoscan.TissueModel
	preset  int
}

func (g *game) Update() error {
	g.handleInput()

	now := time.Now()
	if now.Sub(g.last) >= g.interval {
		g.last = now
		g.eng.RenderOnce(now.Sub(g.epoch).Seconds())
		g.img.WritePixels(g.surf.Pix())
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.surf.Width(), g.surf.Height()
}

// handleInput translates key presses into config patches. Rejected
// patches (for example depth pushed below the focus) are logged and the
// active configuration stays as it was.
func (g *game) handleInput() {
	cfg := g.eng.Config()
	var p sonoscan.Patch

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		p.Gain = ptr(min(cfg.Gain+2, 100))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		p.Gain = ptr(max(cfg.Gain-2, 0))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		p.DepthCm = ptr(min(cfg.DepthCm+1, 30))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		d := max(cfg.DepthCm-1, 2)
		p.DepthCm = ptr(d)
		if cfg.FocusCm > d {
			p.FocusCm = ptr(d)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		p.FocusCm = ptr(min(cfg.FocusCm+0.5, cfg.DepthCm))
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		p.FocusCm = ptr(max(cfg.FocusCm-0.5, 0))
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		p.FrequencyMHz = ptr(min(cfg.FrequencyMHz+0.5, 15))
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		p.FrequencyMHz = ptr(max(cfg.FrequencyMHz-0.5, 1))

	case inpututil.IsKeyJustPressed(ebiten.KeyDigit1):
		p.Transducer = ptrT(sonoscan.TransducerLinear)
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit2):
		p.Transducer = ptrT(sonoscan.TransducerConvex)
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit3):
		p.Transducer = ptrT(sonoscan.TransducerMicroconvex)

	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		mode := sonoscan.ModeBMode
		if cfg.Mode == sonoscan.ModeBMode {
			mode = sonoscan.ModeColorDoppler
		}
		p.Mode = &mode

	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.preset = (g.preset + 1) % len(g.presets)
		if err := g.eng.UpdateModel(g.presets[g.preset]); err != nil {
			log.Printf("preset: %v", err)
		}
		return

	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		p.Features = toggled(cfg, sonoscan.FeatureShadowing)
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		p.Features = toggled(cfg, sonoscan.FeatureEnhancement)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		p.Features = toggled(cfg, sonoscan.FeatureReverberation)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		p.Features = toggled(cfg, sonoscan.FeatureNearFieldClutter)
	case inpututil.IsKeyJustPressed(ebiten.KeyZ):
		p.Features = toggled(cfg, sonoscan.FeatureOverlayDepthScale)
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		p.Features = toggled(cfg, sonoscan.FeatureOverlayFocusMarker)
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		p.Features = toggled(cfg, sonoscan.FeatureOverlayBeamLines)
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		p.Features = toggled(cfg, sonoscan.FeatureOverlayLabels)

	default:
		return
	}

	if err := g.eng.UpdateConfig(p); err != nil {
		log.Printf("config rejected: %v", err)
	}
}

func toggled(cfg sonoscan.ScanConfig, f sonoscan.FeatureSet) *sonoscan.FeatureSet {
	set := cfg.Features.Toggle(f)
	return &set
}

func ptr(v float64) *float64 { return &v }

func ptrT(t sonoscan.Transducer) *sonoscan.Transducer { return &t }
