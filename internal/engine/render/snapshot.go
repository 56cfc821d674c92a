package render

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/chewxy/math32"
	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"

	"github.com/Faultbox/mdxview/internal/engine/animation"
	"github.com/Faultbox/mdxview/pkg/formats"
	"github.com/Faultbox/mdxview/pkg/math"
)

// ErrUnknownImageFormat is returned by WriteImage for extensions with
// no registered encoder.
var ErrUnknownImageFormat = errors.New("render: unknown image format")

// Options controls a snapshot render.
type Options struct {
	Size        int     // Output edge length in pixels
	Supersample int     // Internal oversampling factor, 1 disables
	Yaw         float32 // View rotation about the model's up axis, degrees
	Pitch       float32 // View tilt, degrees
	Textures    TextureResolver
}

// DefaultOptions returns a 512px snapshot with 2x supersampling, viewed
// slightly from above.
func DefaultOptions() Options {
	return Options{
		Size:        512,
		Supersample: 2,
		Yaw:         30,
		Pitch:       15,
	}
}

// Snapshot renders the model in the system's current pose to an image.
// The camera is orthographic and auto-fitted to the posed geometry;
// models are Z-up, drawn with +Z toward the top of the image.
func Snapshot(model *formats.MDX, sys *animation.System, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = 512
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	renderSize := opts.Size * opts.Supersample

	view := viewRotation(opts.Yaw, opts.Pitch)

	// Pose every geoset up front; the bounding box must cover all of them.
	posed := make([][]math.Vec3, len(model.Geosets))
	for gi := range model.Geosets {
		posed[gi] = poseGeoset(sys, &model.Geosets[gi])
	}

	minX, maxX := math32.Inf(1), math32.Inf(-1)
	minY, maxY := math32.Inf(1), math32.Inf(-1)
	for _, verts := range posed {
		for _, v := range verts {
			tv := view.MulVec3(v)
			minX = math32.Min(minX, tv.X)
			maxX = math32.Max(maxX, tv.X)
			minY = math32.Min(minY, tv.Z)
			maxY = math32.Max(maxY, tv.Z)
		}
	}
	if minX > maxX {
		return image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	}

	span := math32.Max(maxX-minX, maxY-minY)
	if span < 0.001 {
		span = 0.001
	}
	margin := 16 * opts.Supersample
	scale := float32(renderSize-2*margin) / span
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	half := float32(renderSize) / 2

	fb := NewFrameBuffer(renderSize, renderSize)
	lc := DefaultLightConfig()

	for gi := range model.Geosets {
		geo := &model.Geosets[gi]
		verts := posed[gi]
		if len(verts) == 0 {
			continue
		}

		screen := make([]screenVertex, len(verts))
		for i, v := range verts {
			tv := view.MulVec3(v)
			screen[i] = screenVertex{
				X: (tv.X-cx)*scale + half,
				Y: half - (tv.Z-cy)*scale, // Image Y grows downward
				Z: -tv.Y,                  // Camera looks down +Y in view space
			}
			if i < len(geo.TexCoords) {
				screen[i].U = geo.TexCoords[i][0]
				screen[i].V = geo.TexCoords[i][1]
			}
		}

		tex := geosetTexture(model, geo, opts.Textures)
		base := [4]uint8{160, 160, 170, 255}

		for _, face := range geo.Faces {
			i0, i1, i2 := int(face[0]), int(face[1]), int(face[2])
			if i0 >= len(screen) || i1 >= len(screen) || i2 >= len(screen) {
				continue
			}
			shade := lc.Shade(faceNormal(verts[i0], verts[i1], verts[i2]))
			fillTriangle(fb, screen[i0], screen[i1], screen[i2], tex, base, shade, lc.InvGamma)
		}
	}

	img := fb.ToImage()
	if opts.Supersample > 1 {
		img = downsample(img, opts.Size)
	}
	return img
}

// poseGeoset skins the geoset's vertices with the current pose, or
// returns the rest positions when no skeleton is available.
func poseGeoset(sys *animation.System, geo *formats.MDXGeoset) []math.Vec3 {
	verts := make([]math.Vec3, len(geo.Vertices))
	for i, v := range geo.Vertices {
		verts[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	if sys == nil || sys.BoneCount() == 0 {
		return verts
	}
	return sys.TransformVertices(verts, geo.VertexGroups, geo.MatrixGroups, sys.Pivots)
}

func geosetTexture(model *formats.MDX, geo *formats.MDXGeoset, resolver TextureResolver) *image.NRGBA {
	if resolver == nil {
		return nil
	}
	if geo.MaterialID < 0 || int(geo.MaterialID) >= len(model.Materials) {
		return nil
	}
	for _, layer := range model.Materials[geo.MaterialID].Layers {
		if int(layer.TextureID) >= len(model.Textures) {
			continue
		}
		if img := resolver.Resolve(model.Textures[layer.TextureID].Filename); img != nil {
			return img
		}
	}
	return nil
}

func viewRotation(yawDeg, pitchDeg float32) math.Mat3 {
	const degToRad = math32.Pi / 180
	yaw := math.QuatFromAxisAngle(math.Vec3{X: 0, Y: 0, Z: 1}, yawDeg*degToRad)
	pitch := math.QuatFromAxisAngle(math.Vec3{X: 1, Y: 0, Z: 0}, pitchDeg*degToRad)
	return pitch.Mul(yaw).ToMat3()
}

func faceNormal(a, b, c math.Vec3) math.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// WriteImage encodes img to path, picking the format from the file
// extension: .webp, .tga or .png.
func WriteImage(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	case ".tga":
		err = tga.Encode(f, img)
	case ".png":
		err = png.Encode(f, img)
	default:
		return errors.Wrapf(ErrUnknownImageFormat, "%s", filepath.Ext(path))
	}
	return errors.Wrapf(err, "encode %s", path)
}
