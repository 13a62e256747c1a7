// Package app ties the window, camera, particle store and renderer into the
// per-frame simulation-and-render loop.
package app

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/hesom/ParticleSystem/config"
	"github.com/hesom/ParticleSystem/core"
	"github.com/hesom/ParticleSystem/gpu"
)

const (
	panSpeed   = 8.0  // world units per second while a pan key is held
	orbitSpeed = 60.0 // degrees per second while an orbit key is held

	// Frames after a stall integrate at most this much simulated time.
	maxFrameDt = 0.1
)

// EventSink receives the discrete window events the visualizer reacts to.
// The App implements it and is registered with the window at creation time;
// callbacks fire on the main thread during event polling, never concurrently
// with the frame body.
type EventSink interface {
	OnFramebufferResize(width, height int)
	OnScroll(xoffset, yoffset float64)
}

// frameRenderer is the GPU collaborator surface the App drives.
// *gpu.Renderer is the production implementation.
type frameRenderer interface {
	EnableHUD(atlas *core.TextAtlas) error
	Resize(width, height int)
	RenderFrame(view, proj mgl32.Mat4, instances []core.ParticleInstance, hud []core.TextVertex) error
	Release()
}

// App owns the window, the GPU renderer, the camera and the particle store.
// All of them live exactly as long as the App: Create builds them together,
// Free releases them together.
type App struct {
	window   *glfw.Window
	renderer frameRenderer
	camera   *core.Camera
	store    *core.ParticleStore
	hud      *core.TextAtlas
	log      Logger

	hudVerts []core.TextVertex
	lastTime float64
	frames   int
	fpsTime  float64
	fps      float64
}

// Create builds the window through the GLFW factory, then the renderer,
// camera and particle store, and registers the App as the window's event
// sink. glfw.Init must have been called on the same OS thread. The caller
// owns the result and must call Free exactly once; on error nothing is
// retained.
func Create(cfg *config.Config, log Logger) (*App, error) {
	if log == nil {
		log = NewNopLogger()
	}

	store, err := core.NewParticleStore(cfg.ParticleCount, cfg.Seed)
	if err != nil {
		return nil, err
	}

	window, err := createWindow(cfg.WindowWidth, cfg.WindowHeight, cfg.Title)
	if err != nil {
		return nil, fmt.Errorf("creating window: %v: %w", err, core.ErrInit)
	}

	renderer, err := gpu.NewRenderer(window, cfg.ParticleCount)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("creating renderer: %v: %w", err, core.ErrInit)
	}

	fbWidth, fbHeight := window.GetFramebufferSize()
	a := &App{
		window:   window,
		renderer: renderer,
		camera:   core.NewCamera(fbWidth, fbHeight),
		store:    store,
		log:      log,
	}

	if cfg.FontPath != "" {
		atlas, err := core.NewTextAtlas(cfg.FontPath, 24)
		if err == nil {
			err = renderer.EnableHUD(atlas)
		}
		if err != nil {
			log.Warnf("HUD disabled: %v", err)
		} else {
			a.hud = atlas
		}
	}

	registerCallbacks(window, a)
	log.Infof("created %d particles, seed %d", store.Len(), cfg.Seed)
	return a, nil
}

func createWindow(width, height int, title string) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // surface comes from wgpu, not OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)
	return glfw.CreateWindow(width, height, title, nil, nil)
}

func registerCallbacks(window *glfw.Window, sink EventSink) {
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		sink.OnFramebufferResize(width, height)
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		sink.OnScroll(xoff, yoff)
	})
}

// OnFramebufferResize updates the camera aspect ratio and the swapchain. A
// zero-sized framebuffer (minimized window) keeps the previous projection.
func (a *App) OnFramebufferResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.camera.SetViewport(width, height)
	a.renderer.Resize(width, height)
	a.log.Debugf("framebuffer resized to %dx%d", width, height)
}

// OnScroll adjusts the camera zoom. Only the vertical offset matters.
func (a *App) OnScroll(xoffset, yoffset float64) {
	a.camera.Zoom(yoffset)
}

// processInput reads held keys once per frame and applies incremental camera
// changes scaled by the frame time.
func (a *App) processInput(dt float32) {
	if a.window.GetKey(glfw.KeyEscape) == glfw.Press {
		a.window.SetShouldClose(true)
		return
	}

	var dx, dy float32
	if a.window.GetKey(glfw.KeyA) == glfw.Press || a.window.GetKey(glfw.KeyLeft) == glfw.Press {
		dx -= 1
	}
	if a.window.GetKey(glfw.KeyD) == glfw.Press || a.window.GetKey(glfw.KeyRight) == glfw.Press {
		dx += 1
	}
	if a.window.GetKey(glfw.KeyS) == glfw.Press || a.window.GetKey(glfw.KeyDown) == glfw.Press {
		dy -= 1
	}
	if a.window.GetKey(glfw.KeyW) == glfw.Press || a.window.GetKey(glfw.KeyUp) == glfw.Press {
		dy += 1
	}
	if dx != 0 || dy != 0 {
		a.camera.Pan(dx*panSpeed*dt, dy*panSpeed*dt)
	}

	var dyaw float32
	if a.window.GetKey(glfw.KeyQ) == glfw.Press {
		dyaw -= 1
	}
	if a.window.GetKey(glfw.KeyE) == glfw.Press {
		dyaw += 1
	}
	if dyaw != 0 {
		a.camera.Orbit(dyaw*orbitSpeed*dt, 0)
	}
}

// Exec runs the frame loop until the window close flag is set or a frame
// fails to submit, and returns the process exit code. Each iteration polls
// events (which may fire the sink callbacks), applies held input, steps the
// simulation and submits the frame. The particle buffer upload happens
// before the draw submission inside RenderFrame.
func (a *App) Exec() int {
	a.lastTime = glfw.GetTime()

	for !a.window.ShouldClose() {
		glfw.PollEvents()

		now := glfw.GetTime()
		dt := float32(now - a.lastTime)
		a.lastTime = now
		if dt > maxFrameDt {
			dt = maxFrameDt
		}

		a.processInput(dt)
		a.store.Step(dt)
		a.countFrame(float64(dt))

		err := a.renderer.RenderFrame(
			a.camera.ViewMatrix(),
			a.camera.ProjectionMatrix(),
			a.store.Instances(),
			a.buildHUD(),
		)
		if err != nil {
			a.log.Errorf("frame submission failed: %v", err)
			return core.ExitCode(fmt.Errorf("%v: %w", err, core.ErrRuntime))
		}
	}

	a.log.Infof("window closed")
	return core.ExitCode(nil)
}

func (a *App) countFrame(dt float64) {
	a.frames++
	a.fpsTime += dt
	if a.fpsTime >= 1.0 {
		a.fps = float64(a.frames) / a.fpsTime
		a.frames = 0
		a.fpsTime = 0
	}
}

func (a *App) buildHUD() []core.TextVertex {
	if a.hud == nil {
		return nil
	}
	w, h := a.window.GetFramebufferSize()
	line := fmt.Sprintf("%.1f fps  %d particles  zoom %.1f", a.fps, a.store.Len(), a.camera.Distance)
	a.hudVerts = a.hud.Line(a.hudVerts[:0], line, 10, 10, 1.0, [4]float32{1, 1, 0, 1}, w, h)
	return a.hudVerts
}

// Free releases the GPU resources and the window. Call exactly once, only on
// a successfully created App.
func (a *App) Free() {
	a.renderer.Release()
	a.window.Destroy()
}
