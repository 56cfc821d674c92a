package viewer

import (
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"

	"github.com/Faultbox/mdxview/internal/engine/animation"
	"github.com/Faultbox/mdxview/internal/engine/render"
	"github.com/Faultbox/mdxview/internal/engine/shader"
	"github.com/Faultbox/mdxview/internal/logger"
	"github.com/Faultbox/mdxview/pkg/formats"
	"github.com/Faultbox/mdxview/pkg/math"
)

const vertexShaderSource = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec2 vTexCoord;

void main() {
    vNormal = aNormal;
    vTexCoord = aTexCoord;
    gl_Position = uProjection * uView * vec4(aPosition, 1.0);
}
`

const fragmentShaderSource = `#version 410 core
in vec3 vNormal;
in vec2 vTexCoord;

uniform sampler2D uTexture;
uniform vec3 uLightDir;
uniform vec3 uAmbient;
uniform vec3 uDiffuse;

out vec4 FragColor;

void main() {
    vec3 normal = normalize(vNormal);
    float diff = abs(dot(normal, normalize(uLightDir)));
    vec4 tex = texture(uTexture, vTexCoord);
    if (tex.a < 0.03) {
        discard;
    }
    vec3 result = (uAmbient + diff * uDiffuse) * tex.rgb;
    FragColor = vec4(result, tex.a);
}
`

// vertexStride is position + normal + texcoord, in floats.
const vertexStride = 8

// geosetMesh is the GPU state for one geoset. The vertex buffer is
// refilled every frame with CPU-skinned positions and normals.
type geosetMesh struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	texture    uint32

	geoset    *formats.MDXGeoset
	rest      []math.Vec3 // Unposed vertex positions
	restNorms []math.Vec3
	scratch   []float32 // Interleaved upload buffer, reused
}

// Scene owns the GL resources for one loaded model.
type Scene struct {
	program       uint32
	locView       int32
	locProjection int32
	locLightDir   int32
	locAmbient    int32
	locDiffuse    int32
	locTexture    int32

	meshes          []*geosetMesh
	fallbackTexture uint32
	glTextures      []uint32

	model  *formats.MDX
	system *animation.System
	player *animation.Player
}

// NewScene uploads the model's geosets and compiles the shader.
// Requires a current GL context.
func NewScene(model *formats.MDX, textures render.TextureResolver) (*Scene, error) {
	s := &Scene{
		model:  model,
		system: animation.NewSystem(),
	}
	s.system.InitFromModel(model)
	s.system.ResetToBasePose()
	s.player = animation.NewPlayer(model.Sequences)

	var err error
	s.program, err = shader.CompileProgram(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, errors.Wrap(err, "model shader")
	}
	s.locView = shader.GetUniform(s.program, "uView")
	s.locProjection = shader.GetUniform(s.program, "uProjection")
	s.locLightDir = shader.GetUniform(s.program, "uLightDir")
	s.locAmbient = shader.GetUniform(s.program, "uAmbient")
	s.locDiffuse = shader.GetUniform(s.program, "uDiffuse")
	s.locTexture = shader.GetUniform(s.program, "uTexture")

	s.createFallbackTexture()

	for gi := range model.Geosets {
		mesh, err := s.buildMesh(&model.Geosets[gi], textures)
		if err != nil {
			s.Destroy()
			return nil, err
		}
		s.meshes = append(s.meshes, mesh)
	}

	logger.Sugar.Infof("scene ready: %d geosets, %d nodes, %d sequences",
		len(s.meshes), model.NodeCount(), len(model.Sequences))
	return s, nil
}

// Player exposes the playback clock for input handling.
func (s *Scene) Player() *animation.Player {
	return s.player
}

// Bounds returns the rest-pose bounding box across all geosets.
func (s *Scene) Bounds() (min, max math.Vec3) {
	first := true
	for _, m := range s.meshes {
		for _, v := range m.rest {
			if first {
				min, max = v, v
				first = false
				continue
			}
			if v.X < min.X {
				min.X = v.X
			}
			if v.Y < min.Y {
				min.Y = v.Y
			}
			if v.Z < min.Z {
				min.Z = v.Z
			}
			if v.X > max.X {
				max.X = v.X
			}
			if v.Y > max.Y {
				max.Y = v.Y
			}
			if v.Z > max.Z {
				max.Z = v.Z
			}
		}
	}
	return min, max
}

// Update advances playback and re-skins every geoset.
func (s *Scene) Update(deltaMs float32) {
	s.player.Advance(deltaMs)
	s.system.Update(s.player.Frame)

	for _, m := range s.meshes {
		s.reskin(m)
	}
}

// ResetPose rewinds to the base pose with playback stopped.
func (s *Scene) ResetPose() {
	s.player.Playing = false
	s.system.ResetToBasePose()
	for _, m := range s.meshes {
		s.reskin(m)
	}
}

func (s *Scene) reskin(m *geosetMesh) {
	if len(m.scratch) == 0 {
		return
	}
	geo := m.geoset
	posed := s.system.TransformVertices(m.rest, geo.VertexGroups, geo.MatrixGroups, s.system.Pivots)
	normals := s.system.TransformNormals(m.restNorms, geo.VertexGroups, geo.MatrixGroups)

	for i, p := range posed {
		off := i * vertexStride
		m.scratch[off] = p.X
		m.scratch[off+1] = p.Y
		m.scratch[off+2] = p.Z
		if i < len(normals) {
			m.scratch[off+3] = normals[i].X
			m.scratch[off+4] = normals[i].Y
			m.scratch[off+5] = normals[i].Z
		}
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(m.scratch)*4, gl.Ptr(m.scratch))
}

// Render draws every geoset with the given camera matrices.
func (s *Scene) Render(view, projection math.Mat4) {
	gl.UseProgram(s.program)
	gl.UniformMatrix4fv(s.locView, 1, false, view.Ptr())
	gl.UniformMatrix4fv(s.locProjection, 1, false, projection.Ptr())
	gl.Uniform3f(s.locLightDir, 0.4, -0.6, 0.7)
	gl.Uniform3f(s.locAmbient, 0.45, 0.45, 0.45)
	gl.Uniform3f(s.locDiffuse, 0.75, 0.75, 0.75)
	gl.Uniform1i(s.locTexture, 0)

	gl.ActiveTexture(gl.TEXTURE0)
	for _, m := range s.meshes {
		tex := m.texture
		if tex == 0 {
			tex = s.fallbackTexture
		}
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
}

func (s *Scene) buildMesh(geo *formats.MDXGeoset, textures render.TextureResolver) (*geosetMesh, error) {
	m := &geosetMesh{
		geoset:    geo,
		rest:      make([]math.Vec3, len(geo.Vertices)),
		restNorms: make([]math.Vec3, len(geo.Vertices)),
		scratch:   make([]float32, len(geo.Vertices)*vertexStride),
	}
	for i, v := range geo.Vertices {
		m.rest[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
		if i < len(geo.Normals) {
			n := geo.Normals[i]
			m.restNorms[i] = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		off := i * vertexStride
		if i < len(geo.TexCoords) {
			m.scratch[off+6] = geo.TexCoords[i][0]
			m.scratch[off+7] = geo.TexCoords[i][1]
		}
	}

	indices := make([]uint32, 0, len(geo.Faces)*3)
	for _, f := range geo.Faces {
		indices = append(indices, f[0], f[1], f[2])
	}
	m.indexCount = int32(len(indices))

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.scratch)*4, nil, gl.DYNAMIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	}

	stride := int32(vertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(6*4))

	gl.BindVertexArray(0)

	m.texture = s.loadGeosetTexture(geo, textures)

	// Fill the initial pose
	s.reskin(m)
	return m, nil
}

func (s *Scene) loadGeosetTexture(geo *formats.MDXGeoset, textures render.TextureResolver) uint32 {
	if textures == nil {
		return 0
	}
	if geo.MaterialID < 0 || int(geo.MaterialID) >= len(s.model.Materials) {
		return 0
	}
	for _, layer := range s.model.Materials[geo.MaterialID].Layers {
		if int(layer.TextureID) >= len(s.model.Textures) {
			continue
		}
		img := textures.Resolve(s.model.Textures[layer.TextureID].Filename)
		if img == nil {
			continue
		}
		return s.uploadTexture(img)
	}
	return 0
}

func (s *Scene) uploadTexture(img *image.NRGBA) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	s.glTextures = append(s.glTextures, tex)
	return tex
}

func (s *Scene) createFallbackTexture() {
	// 1x1 neutral gray
	pixel := []uint8{170, 170, 180, 255}
	gl.GenTextures(1, &s.fallbackTexture)
	gl.BindTexture(gl.TEXTURE_2D, s.fallbackTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, 1, 1, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixel[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
}

// Destroy releases all GL resources.
func (s *Scene) Destroy() {
	for _, m := range s.meshes {
		if m.vbo != 0 {
			gl.DeleteBuffers(1, &m.vbo)
		}
		if m.ebo != 0 {
			gl.DeleteBuffers(1, &m.ebo)
		}
		if m.vao != 0 {
			gl.DeleteVertexArrays(1, &m.vao)
		}
	}
	s.meshes = nil

	for _, tex := range s.glTextures {
		gl.DeleteTextures(1, &tex)
	}
	s.glTextures = nil

	if s.fallbackTexture != 0 {
		gl.DeleteTextures(1, &s.fallbackTexture)
		s.fallbackTexture = 0
	}
	if s.program != 0 {
		gl.DeleteProgram(s.program)
		s.program = 0
	}
}
