// Package app wires the window, renderer, input and viewer into the main loop.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/stereoview/internal/config"
	"github.com/Faultbox/stereoview/internal/decode"
	"github.com/Faultbox/stereoview/internal/engine/input"
	"github.com/Faultbox/stereoview/internal/engine/renderer"
	"github.com/Faultbox/stereoview/internal/engine/screenshot"
	"github.com/Faultbox/stereoview/internal/engine/window"
	"github.com/Faultbox/stereoview/internal/logger"
	"github.com/Faultbox/stereoview/internal/viewer"
)

const windowTitle = "StereoView"

// App is the main viewer instance.
type App struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	viewer   *viewer.Viewer
	loader   *decode.CachingLoader
	shots    *screenshot.Saver

	captureNext bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the window, renderer and viewer.
func New(cfg *config.Config) (*App, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	a := &App{config: cfg}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		HighDPI:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	drawW, drawH := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:          drawW,
		Height:         drawH,
		MaxTextureSize: cfg.Graphics.MaxTextureSize,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.shots = screenshot.New(cfg.Viewer.ScreenshotDir, "")
	a.shots.Format = screenshot.ParseFormat(cfg.Viewer.ScreenshotFormat)
	a.loader = decode.NewCachingLoader(decode.NewSourceLoader(), cfg.Viewer.CacheEntries)
	a.viewer = viewer.New(viewer.Options{
		Decoder:        decode.NewRegistry(a.loader),
		Driver:         a.renderer,
		WiggleInterval: cfg.Viewer.WiggleInterval,
		Resample:       cfg.Viewer.ResampleOversize,
		OnError:        a.showError,
	})

	logger.Info("viewer initialized")
	return a, nil
}

// Run parses the configured source and runs the frame loop until quit.
func (a *App) Run() error {
	a.running = true
	a.parse()

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting frame loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()

		// Frames without a loaded pair still need clearing.
		if !a.viewer.Looping() {
			a.renderer.Clear()
		}
		a.viewer.Tick(dt)
		if a.captureNext {
			a.captureNext = false
			a.capture()
		}

		// With vsync on this blocks until the next display refresh.
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleEvents() {
	cam := a.viewer.Camera()
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			a.renderer.Resize(a.window.DrawableSize())
		case input.EventDrag:
			cam.HandleDrag(event.DeltaX, event.DeltaY)
		case input.EventWheel:
			cam.HandleZoom(event.DeltaY)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				a.running = false
			case sdl.SCANCODE_W:
				a.toggleWiggle()
			case sdl.SCANCODE_F:
				logger.Debug("fullscreen", zap.Bool("on", a.window.ToggleFullscreen()))
			case sdl.SCANCODE_R:
				a.loader.Clear()
				a.parse()
			case sdl.SCANCODE_P:
				a.captureNext = true
			case sdl.SCANCODE_D:
				a.toggleDebugLog()
			case sdl.SCANCODE_S:
				a.saveConfig()
			}
		}
	}
}

// parse starts a parse cycle from the current config.
func (a *App) parse() {
	p := viewer.ParamsFromConfig(a.config.Viewer)
	if p.Source == "" {
		logger.Warn("no source given, pass -src or a path argument")
		return
	}
	a.window.SetTitle(fmt.Sprintf("%s - %s", windowTitle, p.Source))
	a.viewer.Parse(a.ctx, p)
}

// capture saves the frame just drawn, before it is swapped out.
func (a *App) capture() {
	pixels, w, h := a.renderer.ReadPixels()
	name, err := a.shots.SaveFramebuffer(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", name))
}

// toggleWiggle flips wiggling and records the choice in the config, so a reload
// keeps it.
func (a *App) toggleWiggle() {
	a.config.Viewer.Wiggle = a.viewer.ToggleWiggle()
	logger.Info("wiggle toggled", zap.Bool("wiggle", a.config.Viewer.Wiggle))
}

// saveConfig stores the current viewer settings as the user's defaults.
func (a *App) saveConfig() {
	a.config.Viewer.Wiggle = a.viewer.Params().Wiggle
	path, err := a.config.Save()
	if err != nil {
		logger.Warn("saving config failed", zap.Error(err))
		return
	}
	logger.Info("config saved", zap.String("file", path))
}

// toggleDebugLog switches the running logger between debug and the configured level.
func (a *App) toggleDebugLog() {
	if !logger.DebugEnabled() {
		logger.SetLevel("debug")
		logger.Debug("debug logging on")
		return
	}
	lvl := a.config.Logging.Level
	if lvl == "debug" {
		lvl = "info"
	}
	logger.SetLevel(lvl)
	logger.Info("debug logging off", zap.String("level", lvl))
}

func (a *App) showError(err error) {
	a.window.SetTitle(fmt.Sprintf("%s - error: %v", windowTitle, err))
}

// Close cleans up all resources.
func (a *App) Close() {
	logger.Info("closing viewer")

	a.cancel()
	if a.viewer != nil {
		a.viewer.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
