// Package viewer implements the interactive model viewer loop.
package viewer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/mdxview/internal/config"
	"github.com/Faultbox/mdxview/internal/engine/camera"
	"github.com/Faultbox/mdxview/internal/engine/input"
	"github.com/Faultbox/mdxview/internal/engine/render"
	"github.com/Faultbox/mdxview/internal/engine/window"
	"github.com/Faultbox/mdxview/internal/logger"
	"github.com/Faultbox/mdxview/pkg/formats"
	"github.com/Faultbox/mdxview/pkg/math"
)

// Viewer displays one model in a window with orbit controls.
type Viewer struct {
	cfg       *config.Config
	modelPath string

	window *window.Window
	input  *input.Input
	camera *camera.OrbitCamera
	scene  *Scene

	width     int
	height    int
	wireframe bool
	running   bool
}

// New opens a window and loads the model at modelPath.
func New(cfg *config.Config, modelPath string) (*Viewer, error) {
	v := &Viewer{
		cfg:       cfg,
		modelPath: modelPath,
		width:     cfg.Window.Width,
		height:    cfg.Window.Height,
		wireframe: cfg.Viewer.Wireframe,
	}

	model, err := formats.ParseMDXFile(modelPath)
	if err != nil {
		return nil, err
	}
	logger.Info("model loaded",
		zap.String("name", model.Name),
		zap.Int("geosets", len(model.Geosets)),
		zap.Int("nodes", model.NodeCount()),
		zap.Int("vertices", model.TotalVertexCount()),
	)

	v.window, err = window.New(window.Config{
		Title:  fmt.Sprintf("mdxview - %s", model.Name),
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating window")
	}

	if err := gl.Init(); err != nil {
		v.window.Close()
		return nil, errors.Wrap(err, "initializing OpenGL")
	}

	texDir := cfg.Viewer.TextureDir
	if texDir == "" {
		texDir = filepath.Dir(modelPath)
	}

	v.scene, err = NewScene(model, render.NewDirResolver(texDir))
	if err != nil {
		v.window.Close()
		return nil, errors.Wrap(err, "building scene")
	}
	v.scene.Player().Speed = cfg.Viewer.PlaybackSpeed

	v.input = input.New()
	v.camera = camera.NewOrbitCamera()
	min, max := v.scene.Bounds()
	v.camera.FitToBounds(min, max)

	return v, nil
}

// Run drives the main loop until quit.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	for v.running {
		now := time.Now()
		deltaMs := float32(now.Sub(lastTime).Seconds() * 1000)
		lastTime = now

		if v.input.Update() {
			break
		}
		v.handleEvents()

		v.scene.Update(deltaMs)
		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if v.cfg.Viewer.ShowFPS {
				v.window.SetTitle(fmt.Sprintf("mdxview - %s [%d fps]",
					v.scene.Player().SequenceName(), frameCount))
			}
			logger.Sugar.Debugf("fps %d", frameCount)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *Viewer) handleEvents() {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventQuit:
			v.running = false

		case input.EventWindowResize:
			v.width = e.Width
			v.height = e.Height
			gl.Viewport(0, 0, int32(e.Width), int32(e.Height))

		case input.EventMouseMove:
			if input.MouseHeld(sdl.BUTTON_LEFT) {
				v.camera.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
			} else if input.MouseHeld(sdl.BUTTON_RIGHT) || input.MouseHeld(sdl.BUTTON_MIDDLE) {
				v.camera.HandlePan(float32(e.DeltaX), float32(e.DeltaY))
			}

		case input.EventMouseWheel:
			v.camera.HandleZoom(e.WheelY)

		case input.EventFileDrop:
			if err := v.loadModel(e.DropPath); err != nil {
				logger.Error("failed to load dropped model", zap.Error(err))
			}

		case input.EventKeyDown:
			v.handleKey(e.Key)
		}
	}
}

// loadModel replaces the current scene with the model at path.
func (v *Viewer) loadModel(path string) error {
	model, err := formats.ParseMDXFile(path)
	if err != nil {
		return err
	}

	texDir := v.cfg.Viewer.TextureDir
	if texDir == "" {
		texDir = filepath.Dir(path)
	}
	scene, err := NewScene(model, render.NewDirResolver(texDir))
	if err != nil {
		return err
	}
	scene.Player().Speed = v.cfg.Viewer.PlaybackSpeed

	v.scene.Destroy()
	v.scene = scene
	v.modelPath = path
	v.window.SetTitle(fmt.Sprintf("mdxview - %s", model.Name))

	min, max := v.scene.Bounds()
	v.camera.FitToBounds(min, max)
	return nil
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	player := v.scene.Player()
	switch key {
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		v.running = false
	case sdl.SCANCODE_SPACE:
		player.Playing = !player.Playing
	case sdl.SCANCODE_PERIOD, sdl.SCANCODE_RIGHT:
		player.NextSequence()
		logger.Sugar.Infof("sequence: %s", player.SequenceName())
	case sdl.SCANCODE_COMMA, sdl.SCANCODE_LEFT:
		player.PrevSequence()
		logger.Sugar.Infof("sequence: %s", player.SequenceName())
	case sdl.SCANCODE_R:
		v.scene.ResetPose()
	case sdl.SCANCODE_W:
		v.wireframe = !v.wireframe
	case sdl.SCANCODE_F:
		min, max := v.scene.Bounds()
		v.camera.FitToBounds(min, max)
	case sdl.SCANCODE_EQUALS:
		player.Speed *= 1.25
	case sdl.SCANCODE_MINUS:
		player.Speed /= 1.25
	}
}

func (v *Viewer) render() {
	gl.ClearColor(0.10, 0.11, 0.13, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	if v.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	aspect := float32(v.width) / float32(v.height)
	projection := math.Perspective(math32.Pi/4, aspect, 1.0, 10000.0)
	v.scene.Render(v.camera.ViewMatrix(), projection)

	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

// Close releases all resources.
func (v *Viewer) Close() {
	if v.scene != nil {
		v.scene.Destroy()
	}
	if v.window != nil {
		v.window.Close()
	}
}
