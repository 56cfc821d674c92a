// Package render is a software rasterizer for posed models. It draws
// flat-shaded triangles into a CPU framebuffer and encodes the result
// as WebP, TGA or PNG. The viewer uses OpenGL instead; this package
// backs headless snapshots.
package render

import (
	"image"

	"github.com/chewxy/math32"
)

// FrameBuffer is the rendering target, kept as flat slices for cache
// locality in the pixel loop.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	Depth  []float32 // Per-pixel depth, initialized to -inf
}

// NewFrameBuffer allocates a zeroed color buffer and a -inf depth buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	depth := make([]float32, n)
	for i := range depth {
		depth[i] = math32.Inf(-1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		Depth:  depth,
	}
}

// ToImage copies the color buffer into a freshly allocated NRGBA image.
func (fb *FrameBuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}
