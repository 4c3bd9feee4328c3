package sonoscan

// Built-in tissue phantoms. These are teaching presets, not validated
// anatomy: layer proportions and flow velocities are chosen to exercise
// every pipeline feature at the default scan depths.

// PresetAbdominal is a layered abdominal wall and liver with a simple
// cyst (posterior enhancement) and a calcification (acoustic shadow).
func PresetAbdominal() *TissueModel {
	return &TissueModel{
		Name: "abdominal",
		Layers: []Layer{
			{Name: "skin", DepthFrom: 0, DepthTo: 0.04, Reflectivity: 0.85,
				Echogenicity: EchoHyperechoic, Texture: TextureHomogeneous, MediumID: MediumSoftTissue},
			{Name: "subcutaneous fat", DepthFrom: 0.04, DepthTo: 0.18, Reflectivity: 0.55,
				Echogenicity: EchoHypoechoic, Texture: TextureHeterogeneous, MediumID: MediumFat},
			{Name: "muscle", DepthFrom: 0.18, DepthTo: 0.34, Reflectivity: 0.65,
				Echogenicity: EchoIsoechoic, Texture: TextureStriated, MediumID: MediumMuscle},
			{Name: "liver", DepthFrom: 0.34, DepthTo: 1.0, Reflectivity: 0.7,
				Echogenicity: EchoIsoechoic, Texture: TextureHomogeneous, MediumID: MediumSoftTissue},
		},
		Inclusions: []Inclusion{
			{Shape: ShapeCircle, CenterDepthCm: 6.5, CenterLateralCm: -1.2, SizeCm: 0.9,
				MediumID: MediumFluid, Border: BorderSharp, PosteriorEnhancement: true},
			{Shape: ShapeEllipse, CenterDepthCm: 8.2, CenterLateralCm: 1.6, SizeCm: 0.45, SizeDepthCm: 0.3,
				MediumID: MediumCalcification, Border: BorderSharp, StrongShadow: true},
		},
	}
}

// PresetVascular is a superficial field with two counter-flowing vessels
// for color Doppler, one of them fast enough to alias at default settings.
func PresetVascular() *TissueModel {
	return &TissueModel{
		Name: "vascular",
		Layers: []Layer{
			{Name: "skin", DepthFrom: 0, DepthTo: 0.06, Reflectivity: 0.85,
				Echogenicity: EchoHyperechoic, Texture: TextureHomogeneous, MediumID: MediumSoftTissue},
			{Name: "fat", DepthFrom: 0.06, DepthTo: 0.3, Reflectivity: 0.5,
				Echogenicity: EchoHypoechoic, Texture: TextureHeterogeneous, MediumID: MediumFat},
			{Name: "soft tissue", DepthFrom: 0.3, DepthTo: 1.0, Reflectivity: 0.68,
				Echogenicity: EchoIsoechoic, Texture: TextureFibrillar, MediumID: MediumSoftTissue},
		},
		Inclusions: []Inclusion{
			{Shape: ShapeVessel, CenterDepthCm: 2.2, CenterLateralCm: -0.5, SizeCm: 1.6, SizeDepthCm: 0.35,
				MediumID: MediumBlood, Border: BorderSoft, WallIrregularity: 0.06,
				HasFlow: true, FlowVelocityCmPerSec: 38},
			{Shape: ShapeVessel, CenterDepthCm: 3.4, CenterLateralCm: 0.4, SizeCm: 1.4, SizeDepthCm: 0.3,
				MediumID: MediumBlood, Border: BorderSoft, WallIrregularity: 0.08,
				HasFlow: true, FlowVelocityCmPerSec: -95},
		},
	}
}

// PresetObstetric is a fluid-dominant field: a large anechoic sac with
// strong posterior enhancement over a deep soft-tissue bed.
func PresetObstetric() *TissueModel {
	return &TissueModel{
		Name: "obstetric",
		Layers: []Layer{
			{Name: "abdominal wall", DepthFrom: 0, DepthTo: 0.15, Reflectivity: 0.7,
				Echogenicity: EchoIsoechoic, Texture: TextureStriated, MediumID: MediumMuscle},
			{Name: "amniotic fluid", DepthFrom: 0.15, DepthTo: 0.6, Reflectivity: 0.25,
				Echogenicity: EchoAnechoic, Texture: TextureHomogeneous, MediumID: MediumFluid},
			{Name: "deep tissue", DepthFrom: 0.6, DepthTo: 1.0, Reflectivity: 0.68,
				Echogenicity: EchoIsoechoic, Texture: TextureHomogeneous, MediumID: MediumSoftTissue},
		},
		Inclusions: []Inclusion{
			{Shape: ShapeCapsule, CenterDepthCm: 6.8, CenterLateralCm: 0.8, SizeCm: 1.1, SizeDepthCm: 0.7,
				MediumID: MediumSoftTissue, Border: BorderSoft, RotationDeg: 20, WallIrregularity: 0.1},
		},
	}
}

// Presets returns the built-in phantoms in display order.
func Presets() []*TissueModel {
	return []*TissueModel{PresetAbdominal(), PresetVascular(), PresetObstetric()}
}
