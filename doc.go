// Package sonoscan is a procedural ultrasound image synthesis engine.
//
// It turns an abstract anatomical model (ordered tissue layers plus
// localized inclusions) and scanner settings into a physically plausible
// B-mode grayscale image, with an optional color-Doppler flow overlay,
// rendered on the CPU at interactive frame rates.
//
// The per-pixel pipeline models a layered acoustic medium, stochastic
// speckle texture, transducer beam geometry, frequency-dependent
// attenuation with time-gain compensation, focal-zone optics, the classic
// acoustic artifacts (shadowing, posterior enhancement, reverberation,
// near-field clutter), and a pulsatile velocity field with Nyquist
// aliasing for the Doppler overlay.
//
// Basic use:
//
//	surf := sonoscan.NewSurface(512, 512)
//	eng, err := sonoscan.New(surf, sonoscan.DefaultConfig(), sonoscan.PresetAbdominal())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eng.Start()
//	defer eng.Destroy()
//
//	// Later, from a slider:
//	gain := 65.0
//	_ = eng.UpdateConfig(sonoscan.Patch{Gain: &gain})
//
// Hosts that own an event loop can skip Start and call
// [Engine.RenderOnce] from their update tick instead; cmd/sonodemo shows
// this with an ebiten window.
//
// The engine performs no network, file, or persistence I/O, and emits no
// events beyond writing the surface and the optional frame callback.
package sonoscan
