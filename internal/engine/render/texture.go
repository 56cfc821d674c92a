package render

import (
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"

	"github.com/Faultbox/mdxview/internal/logger"
)

// TextureResolver maps the texture paths stored inside a model to
// decoded images. Implementations return nil for textures they cannot
// provide; the rasterizer then falls back to a flat color.
type TextureResolver interface {
	Resolve(path string) *image.NRGBA
}

// DirResolver loads textures from a directory on disk, caching decodes.
// Model texture paths frequently name formats we do not decode (BLP in
// particular), so the resolver also probes for a same-named TGA or PNG
// sitting next to the model.
type DirResolver struct {
	Dir   string
	cache map[string]*image.NRGBA
}

// NewDirResolver creates a resolver rooted at dir.
func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{Dir: dir, cache: make(map[string]*image.NRGBA)}
}

// Resolve loads the texture at path relative to the resolver's root.
// Failed lookups are cached as nil so each missing file logs once.
func (r *DirResolver) Resolve(path string) *image.NRGBA {
	if path == "" {
		return nil
	}
	if img, ok := r.cache[path]; ok {
		return img
	}

	img := r.load(path)
	r.cache[path] = img
	return img
}

func (r *DirResolver) load(path string) *image.NRGBA {
	// Model paths use backslashes regardless of host OS
	clean := filepath.FromSlash(strings.ReplaceAll(path, "\\", "/"))
	base := strings.TrimSuffix(clean, filepath.Ext(clean))

	for _, candidate := range []string{
		filepath.Join(r.Dir, clean),
		filepath.Join(r.Dir, base+".tga"),
		filepath.Join(r.Dir, base+".png"),
		filepath.Join(r.Dir, filepath.Base(base)+".tga"),
		filepath.Join(r.Dir, filepath.Base(base)+".png"),
	} {
		img, err := LoadTexture(candidate)
		if err == nil {
			return img
		}
		if !os.IsNotExist(errors.Cause(err)) {
			logger.Sugar.Debugf("texture %s: %v", candidate, err)
		}
	}

	logger.Sugar.Debugf("texture not found: %s", path)
	return nil
}

// LoadTexture reads and decodes one texture file into NRGBA.
func LoadTexture(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return toNRGBA(img), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}
