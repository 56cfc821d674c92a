package render

import (
	"image"

	"golang.org/x/image/draw"
)

// downsample scales the supersampled frame down to targetSize with
// alpha-premultiplied Catmull-Rom filtering. Filtering straight NRGBA
// would bleed the colors of fully transparent pixels into edges.
func downsample(img *image.NRGBA, targetSize int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= targetSize && b.Dy() <= targetSize {
		return img
	}

	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float32(img.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float32(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float32(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float32(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	out := image.NewNRGBA(dst.Bounds())
	for y := 0; y < targetSize; y++ {
		for x := 0; x < targetSize; x++ {
			si := dst.PixOffset(x, y)
			di := out.PixOffset(x, y)
			a := float32(dst.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				out.Pix[di] = clamp255(float32(dst.Pix[si]) * inv)
				out.Pix[di+1] = clamp255(float32(dst.Pix[si+1]) * inv)
				out.Pix[di+2] = clamp255(float32(dst.Pix[si+2]) * inv)
			}
			out.Pix[di+3] = dst.Pix[si+3]
		}
	}
	return out
}
