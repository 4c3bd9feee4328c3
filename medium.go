package sonoscan

// Echogenicity classifies the relative brightness a medium returns under
// insonation, from anechoic (black, e.g. fluid) to hyperechoic (bright,
// e.g. bone or calcification).
type Echogenicity int

const (
	EchoAnechoic Echogenicity = iota
	EchoHypoechoic
	EchoIsoechoic
	EchoHyperechoic
)

// String returns the name of the echogenicity class.
func (e Echogenicity) String() string {
	switch e {
	case EchoAnechoic:
		return "anechoic"
	case EchoHypoechoic:
		return "hypoechoic"
	case EchoIsoechoic:
		return "isoechoic"
	case EchoHyperechoic:
		return "hyperechoic"
	default:
		return "unknown"
	}
}

// baseValue maps an echogenicity class to a base intensity in [0, 1].
func (e Echogenicity) baseValue() float64 {
	switch e {
	case EchoAnechoic:
		return 0.02
	case EchoHypoechoic:
		return 0.22
	case EchoIsoechoic:
		return 0.55
	case EchoHyperechoic:
		return 0.92
	default:
		return 0.55
	}
}

// Medium holds the acoustic constants of a tissue or material class.
// Media are immutable values looked up by ID from a Catalog.
type Medium struct {
	ID string

	// ImpedanceMRayl is the characteristic acoustic impedance in MRayl.
	ImpedanceMRayl float64

	// AttenuationDBPerCmMHz is the frequency-dependent attenuation
	// coefficient in dB per cm per MHz.
	AttenuationDBPerCmMHz float64

	Echogenicity Echogenicity
}

// Built-in medium IDs.
const (
	MediumSoftTissue    = "soft-tissue"
	MediumFluid         = "fluid"
	MediumBlood         = "blood"
	MediumFat           = "fat"
	MediumMuscle        = "muscle"
	MediumBone          = "bone"
	MediumAir           = "air"
	MediumCalcification = "calcification"
)

// genericSoftTissue is the fallback for any unknown medium ID.
var genericSoftTissue = Medium{
	ID:                    MediumSoftTissue,
	ImpedanceMRayl:        1.63,
	AttenuationDBPerCmMHz: 0.54,
	Echogenicity:          EchoIsoechoic,
}

// Catalog maps medium IDs to their acoustic constants.
// Lookup never fails: unknown IDs resolve to generic soft tissue.
type Catalog struct {
	media map[string]Medium
}

// DefaultCatalog returns a catalog populated with the built-in media.
// Impedance and attenuation values are textbook approximations, not a
// validated tissue database.
func DefaultCatalog() *Catalog {
	c := &Catalog{media: make(map[string]Medium)}
	for _, m := range []Medium{
		genericSoftTissue,
		{ID: MediumFluid, ImpedanceMRayl: 1.48, AttenuationDBPerCmMHz: 0.002, Echogenicity: EchoAnechoic},
		{ID: MediumBlood, ImpedanceMRayl: 1.61, AttenuationDBPerCmMHz: 0.18, Echogenicity: EchoAnechoic},
		{ID: MediumFat, ImpedanceMRayl: 1.38, AttenuationDBPerCmMHz: 0.63, Echogenicity: EchoHypoechoic},
		{ID: MediumMuscle, ImpedanceMRayl: 1.70, AttenuationDBPerCmMHz: 1.09, Echogenicity: EchoIsoechoic},
		{ID: MediumBone, ImpedanceMRayl: 7.80, AttenuationDBPerCmMHz: 5.0, Echogenicity: EchoHyperechoic},
		{ID: MediumAir, ImpedanceMRayl: 0.0004, AttenuationDBPerCmMHz: 12.0, Echogenicity: EchoHyperechoic},
		{ID: MediumCalcification, ImpedanceMRayl: 6.20, AttenuationDBPerCmMHz: 4.2, Echogenicity: EchoHyperechoic},
	} {
		c.media[m.ID] = m
	}
	return c
}

// Register adds or replaces a medium in the catalog.
func (c *Catalog) Register(m Medium) {
	if c.media == nil {
		c.media = make(map[string]Medium)
	}
	c.media[m.ID] = m
}

// Get returns the medium for the given ID, or generic soft tissue when
// the ID is unknown. Get never fails.
func (c *Catalog) Get(id string) Medium {
	if c != nil && c.media != nil {
		if m, ok := c.media[id]; ok {
			return m
		}
	}
	return genericSoftTissue
}

// ReflectionCoefficient returns the pressure reflection coefficient at an
// interface between media with impedances z1 (proximal) and z2 (distal):
//
//	r = (z2 - z1) / (z2 + z1)
//
// The result is antisymmetric under argument swap and its magnitude never
// exceeds 1 for non-negative impedances. Two zero impedances yield 0.
func ReflectionCoefficient(z1, z2 float64) float64 {
	sum := z1 + z2
	if sum == 0 {
		return 0
	}
	return (z2 - z1) / sum
}
