// Package app implements the viewer's main loop.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/app/world"
	"github.com/Faultbox/lumen/internal/assets"
	"github.com/Faultbox/lumen/internal/config"
	"github.com/Faultbox/lumen/internal/engine/capture"
	"github.com/Faultbox/lumen/internal/engine/gfx/glbackend"
	"github.com/Faultbox/lumen/internal/engine/input"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/renderer"
	"github.com/Faultbox/lumen/internal/engine/scene"
	"github.com/Faultbox/lumen/internal/engine/window"
	"github.com/Faultbox/lumen/internal/logger"
)

// App is the viewer instance. All methods must be called from the main
// goroutine, which owns the window and the GL context.
type App struct {
	config  *config.Config
	running bool
	started time.Time

	window   *window.Window
	device   *glbackend.Device
	pipeline *renderer.Pipeline
	input    *input.Input
	loader   *assets.Loader
	watcher  *assets.Watcher
	scene    *scene.Scene
	shots    *capture.Screenshots

	// set by F12, consumed after the next frame is drawn
	captureNext bool

	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

// New creates the window, the graphics device and the render pipeline,
// builds the configured scene and starts loading its assets.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		config:  cfg,
		started: time.Now(),
		log:     logger.Named("app"),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	a.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		a.cancel()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The device needs the context the window just made current.
	a.device, err = glbackend.New()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	a.pipeline, err = renderer.New(a.device, renderer.Config{
		ClearColor: cfg.Render.ClearColor,
		Strengths: lighting.Strengths{
			Ambient:  cfg.Render.AmbientStrength,
			Specular: cfg.Render.SpecularStrength,
		},
		CullBackFaces: cfg.Render.CullBackFaces,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	fetcher := assets.NewFetcher(cfg.Assets.Root, cfg.Assets.BaseURL, cfg.Assets.FetchTimeout)
	a.loader = assets.NewLoader(a.device, fetcher)

	a.scene, err = world.Build(a.ctx, cfg, a.loader)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}

	if cfg.Assets.HotReload {
		a.startWatcher()
	}

	a.input = input.New()
	a.shots = capture.NewScreenshots(cfg.Window.ScreenshotDir, "lumen")

	a.log.Info("viewer initialized",
		zap.Int("entities", len(a.scene.Entities)),
		zap.Int("lights", len(a.scene.Lights)),
	)
	return a, nil
}

func (a *App) startWatcher() {
	if a.config.Assets.BaseURL != "" {
		a.log.Warn("hot reload needs a local asset root, ignoring",
			zap.String("base_url", a.config.Assets.BaseURL))
		return
	}
	w, err := assets.NewWatcher(a.config.Assets.Root)
	if err != nil {
		a.log.Warn("failed to watch assets", zap.String("root", a.config.Assets.Root), zap.Error(err))
		return
	}
	a.watcher = w
	a.log.Info("watching assets", zap.String("root", a.config.Assets.Root))
}

// Scene returns the scene being shown.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// Run runs the main loop until the window is closed or Escape is pressed.
func (a *App) Run() error {
	a.running = true

	clock := world.NewFrameClock(a.started)
	fps := world.NewFPSCounter(time.Now())

	a.log.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := clock.Tick(now)

		if a.input.Update() {
			a.running = false
			break
		}
		for _, event := range a.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				a.log.Debug("window resized", zap.Int("width", event.Width), zap.Int("height", event.Height))
			case input.EventKeyDown:
				switch event.Key {
				case sdl.SCANCODE_ESCAPE:
					a.running = false
				case sdl.SCANCODE_F12:
					a.captureNext = true
				}
			}
		}

		a.reloadChanged()
		a.loader.Pump()

		a.update(dt)
		a.render()
		if a.captureNext {
			a.captureNext = false
			a.screenshot()
		}
		a.window.SwapBuffers()

		if n, ok := fps.Frame(now); ok && a.config.Window.ShowFPS {
			a.log.Info("fps",
				zap.Int("frames", n),
				zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
				zap.Int("loaded", a.scene.LoadedCount()),
				zap.Int("pending", a.loader.Pending()),
			)
		}
	}

	return nil
}

// reloadChanged reissues loads for asset files changed on disk.
func (a *App) reloadChanged() {
	if a.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-a.watcher.Changes():
			if !ok {
				a.watcher = nil
				return
			}
			a.loader.Reload(path)
		default:
			return
		}
	}
}

// screenshot saves the frame just drawn, before it is presented.
func (a *App) screenshot() {
	w, h := a.window.DrawableSize()
	path, err := a.shots.Capture(a.device, w, h)
	if err != nil {
		a.log.Warn("failed to save screenshot", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func (a *App) update(dt float32) {
	forward, right, up := a.input.Movement()
	if forward != 0 || right != 0 || up != 0 {
		a.scene.Camera.HandleMovement(forward, right, up, dt)
	}
	a.scene.Update(dt)
}

func (a *App) render() {
	w, h := a.window.DrawableSize()
	a.pipeline.Draw(a.scene, w, h)
}

// Close releases the viewer's resources. It is safe to call on a partially
// constructed App.
func (a *App) Close() {
	a.log.Info("closing viewer")

	a.cancel()
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("failed to stop watcher", zap.Error(err))
		}
	}
	if a.loader != nil {
		a.loader.Close()
	}
	if a.device != nil {
		a.device.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
