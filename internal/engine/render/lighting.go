package render

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/mdxview/pkg/math"
)

// LightConfig holds the lighting parameters for flat shading.
type LightConfig struct {
	LightDir math.Vec3
	Ambient  float32
	Direct   float32
	Hemi     float32
	InvGamma float32
}

// DefaultLightConfig returns a key light from the upper front-right with
// a soft hemisphere fill.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir: math.Vec3{X: 0.4, Y: -0.6, Z: 0.7}.Normalize(),
		Ambient:  0.35,
		Direct:   0.85,
		Hemi:     0.25,
		InvGamma: 1.0 / 2.2,
	}
}

// Shade returns the combined lighting scalar for a face normal.
// Lambertian term uses the absolute dot product so back faces of
// double-sided geometry light the same as front faces.
func (lc *LightConfig) Shade(normal math.Vec3) float32 {
	ndl := math32.Abs(normal.Dot(lc.LightDir))
	hemi := ((1.0-math32.Abs(normal.Z))*0.5 + 0.5) * lc.Hemi
	return lc.Ambient + hemi + ndl*lc.Direct
}
