package render

import "image"

// sampleTexture performs bilinear filtering with UV wrapping, reading
// tex.Pix directly to stay allocation free.
func sampleTexture(tex *image.NRGBA, u, v float32) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	u = u - float32(int(u))
	if u < 0 {
		u += 1.0
	}
	v = v - float32(int(v))
	if v < 0 {
		v += 1.0
	}

	fx := u * float32(w-1)
	fy := v * float32(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	dx := fx - float32(x0)
	dy := fy - float32(y0)

	stride := tex.Stride
	pix := tex.Pix

	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	fr := float32(pix[i00])*w00 + float32(pix[i10])*w10 + float32(pix[i01])*w01 + float32(pix[i11])*w11
	fg := float32(pix[i00+1])*w00 + float32(pix[i10+1])*w10 + float32(pix[i01+1])*w01 + float32(pix[i11+1])*w11
	fb := float32(pix[i00+2])*w00 + float32(pix[i10+2])*w10 + float32(pix[i01+2])*w01 + float32(pix[i11+2])*w11
	fa := float32(pix[i00+3])*w00 + float32(pix[i10+3])*w10 + float32(pix[i01+3])*w01 + float32(pix[i11+3])*w11

	return uint8(fr + 0.5), uint8(fg + 0.5), uint8(fb + 0.5), uint8(fa + 0.5)
}
