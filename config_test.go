package sonoscan

import (
	"errors"
	"math"
	"testing"
)

// TestConfigValidate exercises the rejection paths field by field.
func TestConfigValidate(t *testing.T) {
	base := DefaultConfig()
	if err := base.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	tests := []struct {
		name      string
		mutate    func(*ScanConfig)
		wantField string
	}{
		{"negative frequency", func(c *ScanConfig) { c.FrequencyMHz = -1 }, "frequencyMHz"},
		{"nan frequency", func(c *ScanConfig) { c.FrequencyMHz = math.NaN() }, "frequencyMHz"},
		{"excessive frequency", func(c *ScanConfig) { c.FrequencyMHz = 31 }, "frequencyMHz"},
		{"zero depth", func(c *ScanConfig) { c.DepthCm = 0 }, "depthCm"},
		{"inf depth", func(c *ScanConfig) { c.DepthCm = math.Inf(1) }, "depthCm"},
		{"focus beyond depth", func(c *ScanConfig) { c.FocusCm = c.DepthCm + 1 }, "focusCm"},
		{"negative focus", func(c *ScanConfig) { c.FocusCm = -0.5 }, "focusCm"},
		{"gain above range", func(c *ScanConfig) { c.Gain = 101 }, "gain"},
		{"dynamic range too low", func(c *ScanConfig) { c.DynamicRangeDB = 10 }, "dynamicRangeDb"},
		{"bad transducer", func(c *ScanConfig) { c.Transducer = Transducer(99) }, "transducer"},
		{"bad mode", func(c *ScanConfig) { c.Mode = Mode(99) }, "mode"},
		{"nan tgc zone", func(c *ScanConfig) { c.TGC[3] = math.NaN() }, "tgc[3]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			err := c.Validate()
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cerr.Field != tc.wantField {
				t.Errorf("rejected field = %q, want %q", cerr.Field, tc.wantField)
			}
		})
	}
}

// TestPatchApply checks that only the set fields change and the rest
// carry over.
func TestPatchApply(t *testing.T) {
	base := DefaultConfig()
	freq := 7.5
	mode := ModeColorDoppler

	next, err := base.Apply(Patch{FrequencyMHz: &freq, Mode: &mode})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if next.FrequencyMHz != 7.5 || next.Mode != ModeColorDoppler {
		t.Errorf("patched fields not applied: freq=%v mode=%v", next.FrequencyMHz, next.Mode)
	}
	if next.DepthCm != base.DepthCm || next.Gain != base.Gain || next.Features != base.Features {
		t.Error("unpatched fields changed")
	}
}

// TestPatchRejection checks that a rejected patch returns the original
// config unchanged.
func TestPatchRejection(t *testing.T) {
	base := DefaultConfig()
	depth := 3.0 // valid alone, but leaves focus (6cm) beyond depth

	got, err := base.Apply(Patch{DepthCm: &depth})
	if err == nil {
		t.Fatal("expected merged-result validation to reject focus > depth")
	}
	if got != base {
		t.Error("rejected patch modified the config")
	}

	// Patching both depth and focus together passes.
	focus := 2.0
	got, err = base.Apply(Patch{DepthCm: &depth, FocusCm: &focus})
	if err != nil {
		t.Fatalf("joint patch rejected: %v", err)
	}
	if got.DepthCm != 3 || got.FocusCm != 2 {
		t.Errorf("joint patch not applied: depth=%v focus=%v", got.DepthCm, got.FocusCm)
	}
}

func TestFeatureSetOps(t *testing.T) {
	s := DefaultFeatures
	if !s.Has(FeatureShadowing) || !s.Has(FeatureOverlayDepthScale) {
		t.Error("defaults missing expected features")
	}
	if s.Has(FeatureOverlayLabels) {
		t.Error("labels should be off by default")
	}

	s = s.Without(FeatureShadowing)
	if s.Has(FeatureShadowing) {
		t.Error("Without did not clear the bit")
	}
	s = s.With(FeatureShadowing)
	if !s.Has(FeatureShadowing) {
		t.Error("With did not set the bit")
	}
	s = s.Toggle(FeatureReverberation)
	if s.Has(FeatureReverberation) {
		t.Error("Toggle did not flip the bit off")
	}

	// Has requires all bits of a combined mask.
	if s.Has(FeatureShadowing | FeatureReverberation) {
		t.Error("Has on a combined mask should require every bit")
	}
}
