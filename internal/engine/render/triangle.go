package render

import (
	"image"

	"github.com/chewxy/math32"
)

// screenVertex is a projected vertex: X/Y in pixels, Z in view depth
// (larger is closer).
type screenVertex struct {
	X, Y, Z float32
	U, V    float32
}

// fillTriangle rasterizes one flat-shaded triangle into fb with a depth
// test. When tex is nil the base color is used for every pixel.
//
// This is the hot path: no allocations inside the pixel loop.
func fillTriangle(fb *FrameBuffer, v0, v1, v2 screenVertex, tex *image.NRGBA, base [4]uint8, shade, invGamma float32) {
	minX := int(math32.Min(math32.Min(v0.X, v1.X), v2.X))
	maxX := int(math32.Max(math32.Max(v0.X, v1.X), v2.X)) + 1
	minY := int(math32.Min(math32.Min(v0.Y, v1.Y), v2.Y))
	maxY := int(math32.Max(math32.Max(v0.Y, v1.Y), v2.Y)) + 1

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	det := (v1.Y-v2.Y)*(v0.X-v2.X) + (v2.X-v1.X)*(v0.Y-v2.Y)
	if det > -1e-6 && det < 1e-6 {
		return
	}
	invDet := 1.0 / det

	dy12 := v1.Y - v2.Y
	dx21 := v2.X - v1.X
	dy20 := v2.Y - v0.Y
	dx02 := v0.X - v2.X

	for sy := minY; sy <= maxY; sy++ {
		dsy := float32(sy) - v2.Y
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float32(sx) - v2.X
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*v0.Z + w1*v1.Z + w2*v2.Z
			zIdx := rowOff + sx
			if z <= fb.Depth[zIdx] {
				continue
			}

			cr, cg, cb, ca := base[0], base[1], base[2], base[3]
			if tex != nil {
				u := w0*v0.U + w1*v1.U + w2*v2.U
				v := w0*v0.V + w1*v1.V + w2*v2.V
				cr, cg, cb, ca = sampleTexture(tex, u, v)
			}
			if ca < 8 {
				continue
			}
			fb.Depth[zIdx] = z

			// Shade in linear space, then gamma-encode
			fr := math32.Pow(srgbToLinear[cr]*shade, invGamma)
			fg := math32.Pow(srgbToLinear[cg]*shade, invGamma)
			fbl := math32.Pow(srgbToLinear[cb]*shade, invGamma)

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = clamp255(fr * 255)
			fb.Color[pxIdx+1] = clamp255(fg * 255)
			fb.Color[pxIdx+2] = clamp255(fbl * 255)
			fb.Color[pxIdx+3] = ca
		}
	}
}

// Precomputed sRGB-to-linear lookup table.
var srgbToLinear [256]float32

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math32.Pow(float32(i)/255.0, 2.2)
	}
}

func clamp255(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
