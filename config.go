package sonoscan

import "fmt"

// Mode selects the imaging mode.
type Mode int

const (
	// ModeBMode is grayscale brightness-mode imaging.
	ModeBMode Mode = iota
	// ModeColorDoppler overlays color-encoded flow on the B-mode frame.
	ModeColorDoppler
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeBMode:
		return "b-mode"
	case ModeColorDoppler:
		return "color-doppler"
	default:
		return "unknown"
	}
}

// FeatureSet is an explicit bitset of independently toggleable artifact
// and overlay features. Every combination is representable.
type FeatureSet uint16

const (
	// Acoustic artifact toggles.
	FeatureShadowing FeatureSet = 1 << iota
	FeatureEnhancement
	FeatureReverberation
	FeatureNearFieldClutter

	// Overlay toggles.
	FeatureOverlayDepthScale
	FeatureOverlayFocusMarker
	FeatureOverlayBeamLines
	FeatureOverlayLabels
)

// DefaultFeatures enables all acoustic artifacts plus the depth scale and
// focus marker overlays.
const DefaultFeatures = FeatureShadowing | FeatureEnhancement |
	FeatureReverberation | FeatureNearFieldClutter |
	FeatureOverlayDepthScale | FeatureOverlayFocusMarker

// Has reports whether all features in f are enabled.
func (s FeatureSet) Has(f FeatureSet) bool { return s&f == f }

// With returns the set with f enabled.
func (s FeatureSet) With(f FeatureSet) FeatureSet { return s | f }

// Without returns the set with f disabled.
func (s FeatureSet) Without(f FeatureSet) FeatureSet { return s &^ f }

// Toggle returns the set with f flipped.
func (s FeatureSet) Toggle(f FeatureSet) FeatureSet { return s ^ f }

// ScanConfig holds the scanner settings for a frame. Configs are plain
// values: the engine adopts a pending config wholesale at the start of the
// next frame, never partially mid-frame.
type ScanConfig struct {
	Transducer     Transducer
	FrequencyMHz   float64
	DepthCm        float64
	FocusCm        float64
	Gain           float64 // UI gain, 0–100; 50 is unity
	DynamicRangeDB float64
	Mode           Mode
	Features       FeatureSet
	TGC            TGCCurve
}

// DefaultConfig returns a mid-range abdominal starting point.
func DefaultConfig() ScanConfig {
	return ScanConfig{
		Transducer:     TransducerConvex,
		FrequencyMHz:   3.5,
		DepthCm:        12,
		FocusCm:        6,
		Gain:           50,
		DynamicRangeDB: 60,
		Mode:           ModeBMode,
		Features:       DefaultFeatures,
	}
}

// ConfigError describes a rejected configuration value. It is returned
// synchronously from New, UpdateConfig and UpdateModel so an invalid
// configuration can never reach the per-pixel pipeline.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validation bounds.
const (
	maxFrequencyMHz = 30
	maxDepthCm      = 40
	minDynamicRange = 20
	maxDynamicRange = 120
)

// Validate checks every field for finiteness and range. Any violation is
// reported as a *ConfigError naming the offending field.
func (c ScanConfig) Validate() error {
	switch c.Transducer {
	case TransducerLinear, TransducerConvex, TransducerMicroconvex:
	default:
		return &ConfigError{Field: "transducer", Reason: "unknown transducer type"}
	}
	switch c.Mode {
	case ModeBMode, ModeColorDoppler:
	default:
		return &ConfigError{Field: "mode", Reason: "unknown imaging mode"}
	}
	if !isFinite(c.FrequencyMHz) || c.FrequencyMHz <= 0 || c.FrequencyMHz > maxFrequencyMHz {
		return &ConfigError{Field: "frequencyMHz", Reason: fmt.Sprintf("must be in (0, %d]", maxFrequencyMHz)}
	}
	if !isFinite(c.DepthCm) || c.DepthCm <= 0 || c.DepthCm > maxDepthCm {
		return &ConfigError{Field: "depthCm", Reason: fmt.Sprintf("must be in (0, %d]", maxDepthCm)}
	}
	if !isFinite(c.FocusCm) || c.FocusCm < 0 || c.FocusCm > c.DepthCm {
		return &ConfigError{Field: "focusCm", Reason: "must satisfy 0 <= focus <= depth"}
	}
	if !isFinite(c.Gain) || c.Gain < 0 || c.Gain > 100 {
		return &ConfigError{Field: "gain", Reason: "must be in [0, 100]"}
	}
	if !isFinite(c.DynamicRangeDB) || c.DynamicRangeDB < minDynamicRange || c.DynamicRangeDB > maxDynamicRange {
		return &ConfigError{Field: "dynamicRangeDb", Reason: fmt.Sprintf("must be in [%d, %d]", minDynamicRange, maxDynamicRange)}
	}
	for i, db := range c.TGC {
		if !isFinite(db) {
			return &ConfigError{Field: fmt.Sprintf("tgc[%d]", i), Reason: "must be finite"}
		}
	}
	return nil
}

// Patch is a partial configuration update. Nil fields keep their current
// value. The merged result is validated before adoption; a rejected patch
// leaves the active configuration untouched.
type Patch struct {
	Transducer     *Transducer
	FrequencyMHz   *float64
	DepthCm        *float64
	FocusCm        *float64
	Gain           *float64
	DynamicRangeDB *float64
	Mode           *Mode
	Features       *FeatureSet
	TGC            *TGCCurve
}

// Apply merges the patch into the config and validates the result.
func (c ScanConfig) Apply(p Patch) (ScanConfig, error) {
	next := c
	if p.Transducer != nil {
		next.Transducer = *p.Transducer
	}
	if p.FrequencyMHz != nil {
		next.FrequencyMHz = *p.FrequencyMHz
	}
	if p.DepthCm != nil {
		next.DepthCm = *p.DepthCm
	}
	if p.FocusCm != nil {
		next.FocusCm = *p.FocusCm
	}
	if p.Gain != nil {
		next.Gain = *p.Gain
	}
	if p.DynamicRangeDB != nil {
		next.DynamicRangeDB = *p.DynamicRangeDB
	}
	if p.Mode != nil {
		next.Mode = *p.Mode
	}
	if p.Features != nil {
		next.Features = *p.Features
	}
	if p.TGC != nil {
		next.TGC = *p.TGC
	}
	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}
