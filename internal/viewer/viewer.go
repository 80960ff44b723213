// Package viewer owns the stereo viewer state: it runs parse cycles, applies their
// results on the render thread and drives the per-frame loop.
package viewer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/stereoview/internal/config"
	"github.com/Faultbox/stereoview/internal/decode"
	"github.com/Faultbox/stereoview/internal/engine/camera"
	"github.com/Faultbox/stereoview/internal/engine/eye"
	"github.com/Faultbox/stereoview/internal/engine/projection"
	"github.com/Faultbox/stereoview/internal/engine/scene"
	"github.com/Faultbox/stereoview/internal/engine/texture"
	"github.com/Faultbox/stereoview/internal/engine/wiggle"
	"github.com/Faultbox/stereoview/internal/logger"
)

// Limits reports hardware capabilities.
type Limits interface {
	MaxTextureSize() int
}

// RenderDriver draws the scene. It is called on the render thread only.
type RenderDriver interface {
	Limits
	Render(s *scene.Scene, cam *camera.LookCamera)
}

// Params are the inputs of one parse cycle.
type Params struct {
	Type        decode.Type
	Source      string
	SourceRight string
	Angle       float64
	Projection  string
	Wiggle      bool
	Debug       bool
}

// ParamsFromConfig converts the viewer section of a config.
func ParamsFromConfig(cfg config.ViewerConfig) Params {
	angle := cfg.Angle
	if angle <= 0 {
		angle = config.DefaultAngle
	}
	return Params{
		Type:        decode.ParseType(cfg.Type),
		Source:      cfg.Source,
		SourceRight: cfg.SourceRight,
		Angle:       angle,
		Projection:  cfg.Projection,
		Wiggle:      cfg.Wiggle,
		Debug:       cfg.Debug,
	}
}

// Options configure a Viewer.
type Options struct {
	Decoder decode.Decoder
	Driver  RenderDriver

	// Scheduler drives the wiggle timer. Nil uses a ticker that posts onto the
	// viewer's intent queue.
	Scheduler wiggle.Scheduler

	WiggleInterval time.Duration

	// MaxTextureSize overrides the driver's limit when positive.
	MaxTextureSize int
	// Resample scales oversize pixel buffers as well as their logical size.
	Resample bool

	// OnError is called on the render thread for every failed parse cycle.
	OnError func(error)
}

// Viewer is the viewer state. Parse may be called from any goroutine; every other
// method belongs to the render thread.
type Viewer struct {
	opts Options

	scene   *scene.Scene
	pair    *eye.Pair
	factory *projection.Factory
	wiggle  *wiggle.Oscillator
	camera  *camera.LookCamera
	loop    Loop

	queue      intentQueue
	generation atomic.Uint64
	inflight   sync.WaitGroup

	mu     sync.Mutex
	cancel context.CancelFunc

	params  Params
	applied int
	closed  bool
}

// New creates a viewer with an empty scene.
func New(opts Options) *Viewer {
	v := &Viewer{
		opts:    opts,
		scene:   scene.New(),
		pair:    &eye.Pair{},
		factory: projection.NewFactory(),
		camera:  camera.NewLookCamera(),
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = wiggle.TickerScheduler{Post: v.queue.Post}
	}
	v.wiggle = wiggle.New(sched, v.pair, opts.WiggleInterval)
	return v
}

// Parse starts a parse cycle for p and returns its generation. Decoding runs on its own
// goroutine; the result is applied by a later Tick only if no newer Parse has started
// by then. An empty source is ignored and returns 0.
func (v *Viewer) Parse(ctx context.Context, p Params) uint64 {
	if p.Source == "" {
		logger.Debug("parse skipped, no source")
		return 0
	}
	if p.Angle <= 0 {
		p.Angle = config.DefaultAngle
	}

	ctx, cancel := context.WithCancel(ctx)
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	v.cancel = cancel
	gen := v.generation.Add(1)
	v.mu.Unlock()

	logger.Info("parse started",
		zap.Uint64("generation", gen),
		zap.String("type", string(p.Type)),
		zap.String("src", p.Source),
		zap.Float64("angle", p.Angle),
		zap.String("projection", p.Projection),
		zap.Bool("wiggle", p.Wiggle))

	req := decode.Request{Type: p.Type, Source: p.Source, SourceRight: p.SourceRight}
	v.inflight.Add(1)
	go func() {
		defer v.inflight.Done()
		res, err := v.opts.Decoder.Decode(ctx, req)
		v.queue.Post(func() { v.apply(gen, p, res, err) })
	}()
	return gen
}

// Wait blocks until every started decode has posted its result.
func (v *Viewer) Wait() {
	v.inflight.Wait()
}

// Tick runs on each display refresh: it applies pending results and timer ticks,
// then renders a frame if the loop is running.
func (v *Viewer) Tick(dt time.Duration) {
	v.queue.Drain()
	v.loop.Frame(dt)
}

func (v *Viewer) apply(gen uint64, p Params, res decode.Result, err error) {
	if v.closed || gen != v.generation.Load() {
		logger.Debug("discarding stale parse result", zap.Uint64("generation", gen))
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("parse failed", zap.Uint64("generation", gen), zap.Error(err))
		if v.opts.OnError != nil {
			v.opts.OnError(err)
		}
		return
	}

	guard := texture.Guard{MaxSize: v.maxTextureSize(), Resample: v.opts.Resample}
	leftClamped, rightClamped := guard.ApplyPair(res.Left, res.Right)
	if leftClamped || rightClamped {
		logger.Warn("texture exceeds hardware limit, clamped",
			zap.Int("max", guard.MaxSize),
			zap.Int("width", res.Left.Width),
			zap.Int("height", res.Left.Height))
	}

	mode, err := projection.ParseMode(p.Projection)
	if err != nil {
		logger.Warn("falling back to equirectangular", zap.Error(err))
	}
	geom, built := v.factory.Geometry(p.Angle, mode)

	v.pair.Create(v.scene, res.Left, res.Right, geom)
	if geom.Shape == projection.ShapeSphere {
		v.camera.Reset(0, 0)
	} else {
		v.camera.Reset(camera.PlaneViewYaw, camera.PlaneViewDistance)
	}
	v.wiggle.SetEnabled(p.Wiggle)
	v.loop.Start(v.frame)

	v.params = p
	v.applied++

	fields := []zap.Field{
		zap.Uint64("generation", gen),
		zap.Stringer("shape", geom.Shape),
		zap.Stringer("projection", mode),
		zap.Bool("geometry_built", built),
		zap.Bool("mono", res.Mono()),
	}
	if p.Debug {
		logger.Info("eyes created", append(fields,
			zap.String("left", res.Left.ID.String()),
			zap.String("right", res.Right.ID.String()),
			zap.Int("triangles", geom.TriangleCount()))...)
	} else {
		logger.Debug("eyes created", fields...)
	}
}

func (v *Viewer) frame(time.Duration) {
	v.camera.Update()
	if v.opts.Driver != nil {
		v.opts.Driver.Render(v.scene, v.camera)
	}
}

func (v *Viewer) maxTextureSize() int {
	if v.opts.MaxTextureSize > 0 {
		return v.opts.MaxTextureSize
	}
	if v.opts.Driver != nil {
		return v.opts.Driver.MaxTextureSize()
	}
	return 0
}

// SetWiggle turns wiggling on or off for the current pair.
func (v *Viewer) SetWiggle(enabled bool) {
	v.params.Wiggle = enabled
	if v.pair.Ready() {
		v.wiggle.SetEnabled(enabled)
	}
}

// ToggleWiggle flips the wiggle setting and returns the new value.
func (v *Viewer) ToggleWiggle() bool {
	v.SetWiggle(!v.params.Wiggle)
	return v.params.Wiggle
}

// Close cancels any in-flight decode, stops wiggling and clears the frame callback.
// Results that arrive afterwards are discarded.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.generation.Add(1)
	v.mu.Unlock()

	v.closed = true
	v.wiggle.Stop()
	v.loop.Stop()
}

// Scene returns the scene the eyes are attached to.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Pair returns the eye pair.
func (v *Viewer) Pair() *eye.Pair { return v.pair }

// Camera returns the camera.
func (v *Viewer) Camera() *camera.LookCamera { return v.camera }

// Wiggling reports whether the oscillator is running.
func (v *Viewer) Wiggling() bool { return v.wiggle.Running() }

// Looping reports whether a frame callback is installed.
func (v *Viewer) Looping() bool { return v.loop.Running() }

// Generation returns the newest parse generation.
func (v *Viewer) Generation() uint64 { return v.generation.Load() }

// Params returns the inputs of the last applied parse cycle.
func (v *Viewer) Params() Params { return v.params }

// Applied returns how many parse cycles have been applied.
func (v *Viewer) Applied() int { return v.applied }

// Geometries returns how many geometries have been built.
func (v *Viewer) Geometries() int { return v.factory.Builds() }
