package viewer

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/Faultbox/stereoview/internal/config"
	"github.com/Faultbox/stereoview/internal/decode"
	"github.com/Faultbox/stereoview/internal/engine/camera"
	"github.com/Faultbox/stereoview/internal/engine/eye"
	"github.com/Faultbox/stereoview/internal/engine/projection"
	"github.com/Faultbox/stereoview/internal/engine/scene"
	"github.com/Faultbox/stereoview/internal/engine/texture"
)

// fakeDecoder returns textures of a fixed size per source. Sources listed in gates
// block until their channel is closed.
type fakeDecoder struct {
	mu    sync.Mutex
	sizes map[string]image.Point
	gates map[string]chan struct{}
	calls int
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{
		sizes: make(map[string]image.Point),
		gates: make(map[string]chan struct{}),
	}
}

func (d *fakeDecoder) add(source string, w, h int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sizes[source] = image.Pt(w, h)
}

func (d *fakeDecoder) gate(source string) chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch := make(chan struct{})
	d.gates[source] = ch
	return ch
}

func (d *fakeDecoder) Decode(_ context.Context, req decode.Request) (decode.Result, error) {
	d.mu.Lock()
	d.calls++
	gate := d.gates[req.Source]
	size, ok := d.sizes[req.Source]
	d.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if !ok {
		return decode.Result{}, &decode.Error{Type: req.Type, Source: req.Source, Err: errors.New("not found")}
	}
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	if req.Type == decode.TypeMono {
		tex := texture.New(img)
		return decode.Result{Left: tex, Right: tex}, nil
	}
	return decode.Result{Left: texture.New(img), Right: texture.New(image.NewRGBA(img.Rect))}, nil
}

type fakeDriver struct {
	maxSize int
	renders int
	visible []*scene.Mesh
}

func (d *fakeDriver) MaxTextureSize() int { return d.maxSize }

func (d *fakeDriver) Render(s *scene.Scene, _ *camera.LookCamera) {
	d.renders++
	d.visible = s.Visible()
}

type fakeScheduler struct {
	fns    []func()
	active []bool
}

func (s *fakeScheduler) Every(_ time.Duration, fn func()) func() {
	i := len(s.fns)
	s.fns = append(s.fns, fn)
	s.active = append(s.active, true)
	return func() { s.active[i] = false }
}

func (s *fakeScheduler) outstanding() int {
	n := 0
	for _, a := range s.active {
		if a {
			n++
		}
	}
	return n
}

func (s *fakeScheduler) fire() {
	for i, fn := range s.fns {
		if s.active[i] {
			fn()
		}
	}
}

type harness struct {
	v      *Viewer
	dec    *fakeDecoder
	driver *fakeDriver
	sched  *fakeScheduler
	errs   []error
}

func newHarness(maxSize int) *harness {
	h := &harness{
		dec:    newFakeDecoder(),
		driver: &fakeDriver{maxSize: maxSize},
		sched:  &fakeScheduler{},
	}
	h.v = New(Options{
		Decoder:   h.dec,
		Driver:    h.driver,
		Scheduler: h.sched,
		Resample:  false,
		OnError:   func(err error) { h.errs = append(h.errs, err) },
	})
	return h
}

// parse runs a full cycle: decode, then one tick to apply and render.
func (h *harness) parse(t *testing.T, p Params) {
	t.Helper()
	h.v.Parse(context.Background(), p)
	h.v.Wait()
	h.v.Tick(16 * time.Millisecond)
}

func eyeMeshes(s *scene.Scene) int {
	n := 0
	for _, m := range s.Children() {
		if m.Name == "left" || m.Name == "right" {
			n++
		}
	}
	return n
}

func TestSideBySideFlatParse(t *testing.T) {
	h := newHarness(4096)
	h.dec.add("pair.jpg", 1024, 1024)

	h.parse(t, Params{Type: decode.TypeLeftRight, Source: "pair.jpg", Angle: 180})

	if n := eyeMeshes(h.v.Scene()); n != 2 {
		t.Fatalf("eye meshes = %d, want 2", n)
	}
	pair := h.v.Pair()
	if pair.Geometry().Shape != projection.ShapePlane {
		t.Errorf("shape = %v, want plane", pair.Geometry().Shape)
	}
	if !pair.Mesh(eye.Left).Visible || pair.Mesh(eye.Right).Visible {
		t.Error("want left visible and right hidden")
	}
	if pair.Mesh(eye.Left).Scale.X != -1 || pair.Mesh(eye.Right).Scale.X != -1 {
		t.Error("eye meshes not mirrored on X")
	}
	if h.v.Wiggling() || h.sched.outstanding() != 0 {
		t.Error("wiggle running without being requested")
	}
	if !h.v.Looping() {
		t.Error("render loop not started")
	}
	if h.driver.renders != 1 || len(h.driver.visible) != 1 {
		t.Errorf("renders = %d, visible = %d, want 1 and 1", h.driver.renders, len(h.driver.visible))
	}
	if pos := h.v.Camera().Position(); pos.Z != -camera.PlaneViewDistance {
		t.Errorf("camera position = %+v, want behind the plane", pos)
	}
}

func TestFullSphereWiggle(t *testing.T) {
	h := newHarness(4096)
	h.dec.add("vr.jpg", 2048, 1024)

	h.parse(t, Params{Type: decode.TypeVR, Source: "vr.jpg", Angle: 360, Projection: "fisheye", Wiggle: true})

	pair := h.v.Pair()
	if pair.Geometry().Shape != projection.ShapeSphere {
		t.Fatalf("shape = %v, want sphere", pair.Geometry().Shape)
	}
	if pair.Geometry().Mode != projection.Fisheye {
		t.Errorf("mode = %v, want fisheye", pair.Geometry().Mode)
	}
	if len(h.errs) != 0 {
		t.Errorf("unexpected errors: %v", h.errs)
	}
	if pos := h.v.Camera().Position(); pos.Length() != 0 {
		t.Errorf("camera position = %+v, want the sphere centre", pos)
	}
	if !h.v.Wiggling() || h.sched.outstanding() != 1 {
		t.Fatalf("wiggling = %v, timers = %d", h.v.Wiggling(), h.sched.outstanding())
	}

	h.sched.fire()
	if pair.VisibleSide() != eye.Right {
		t.Error("first tick should show the right eye")
	}
	h.sched.fire()
	if pair.VisibleSide() != eye.Left {
		t.Error("second tick should show the left eye")
	}
	if pair.Mesh(eye.Left).Visible == pair.Mesh(eye.Right).Visible {
		t.Error("eye visibility not complementary")
	}

	// Re-parse with wiggle off: timer cancelled, mono view restored.
	h.sched.fire()
	h.parse(t, Params{Type: decode.TypeVR, Source: "vr.jpg", Angle: 360})
	if h.v.Wiggling() || h.sched.outstanding() != 0 {
		t.Error("wiggle still running")
	}
	if h.v.Pair().VisibleSide() != eye.Left {
		t.Error("mono view not restored")
	}
	if n := eyeMeshes(h.v.Scene()); n != 2 {
		t.Errorf("eye meshes = %d after re-parse, want 2", n)
	}
}

func TestRepeatedWiggleParsesKeepOneTimer(t *testing.T) {
	h := newHarness(4096)
	h.dec.add("vr.jpg", 64, 32)

	for i := 0; i < 3; i++ {
		h.parse(t, Params{Type: decode.TypeVR, Source: "vr.jpg", Angle: 360, Wiggle: true})
	}
	if got := h.sched.outstanding(); got != 1 {
		t.Errorf("outstanding timers = %d, want 1", got)
	}
}

func TestOversizeTextureClamped(t *testing.T) {
	h := newHarness(4096)
	h.dec.add("big.jpg", 8000, 4000)

	h.parse(t, Params{Type: decode.TypeMono, Source: "big.jpg", Angle: 180})

	left := h.v.Pair().Mesh(eye.Left).Material.Texture
	if left.Width != 4096 || left.Height != 2048 {
		t.Errorf("clamped = %dx%d, want 4096x2048", left.Width, left.Height)
	}
	right := h.v.Pair().Mesh(eye.Right).Material.Texture
	if right != left {
		t.Error("mono eyes should share one texture")
	}
}

func TestMaxTextureSizeOverride(t *testing.T) {
	h := newHarness(4096)
	h.v.opts.MaxTextureSize = 1000
	h.dec.add("a.jpg", 2000, 1000)

	h.parse(t, Params{Type: decode.TypeLeftRight, Source: "a.jpg", Angle: 180})
	for _, side := range []eye.Side{eye.Left, eye.Right} {
		tex := h.v.Pair().Mesh(side).Material.Texture
		if tex.Width != 1000 || tex.Height != 500 {
			t.Errorf("%s = %dx%d, want 1000x500", side, tex.Width, tex.Height)
		}
	}
}

func TestDecodeFailureLeavesStateUntouched(t *testing.T) {
	h := newHarness(4096)
	h.dec.add("good.jpg", 64, 64)

	h.parse(t, Params{Type: decode.TypeLeftRight, Source: "good.jpg", Angle: 360, Wiggle: true})
	before := h.v.Scene().Children()
	builds := h.v.Geometries()

	h.parse(t, Params{Type: decode.TypeLeftRight, Source: "missing.jpg", Angle: 180})

	if len(h.errs) != 1 || !errors.Is(h.errs[0], decode.ErrDecodeFailure) {
		t.Fatalf("errors = %v, want one decode failure", h.errs)
	}
	after := h.v.Scene().Children()
	if len(after) != len(before) || after[0] != before[0] || after[1] != before[1] {
		t.Error("scene changed after a failed decode")
	}
	if h.v.Geometries() != builds {
		t.Error("geometry rebuilt after a failed decode")
	}
	if !h.v.Wiggling() {
		t.Error("wiggle stopped after a failed decode")
	}
	if h.v.Params().Source != "good.jpg" {
		t.Errorf("applied params = %+v", h.v.Params())
	}
}

// imageLoader serves in-memory images to a real decode.Registry.
type imageLoader map[string]image.Image

func (l imageLoader) Load(_ context.Context, source string) (image.Image, error) {
	img, ok := l[source]
	if !ok {
		return nil, errors.New("not found")
	}
	return img, nil
}

func TestEmptyEyesKeepPriorPair(t *testing.T) {
	var errs []error
	driver := &fakeDriver{maxSize: 4096}
	v := New(Options{
		Decoder: decode.NewRegistry(imageLoader{
			"pair.png": image.NewRGBA(image.Rect(0, 0, 64, 32)),
			"thin.png": image.NewRGBA(image.Rect(0, 0, 1, 1)),
		}),
		Driver:    driver,
		Scheduler: &fakeScheduler{},
		OnError:   func(err error) { errs = append(errs, err) },
	})
	run := func(p Params) {
		v.Parse(context.Background(), p)
		v.Wait()
		v.Tick(16 * time.Millisecond)
	}

	run(Params{Type: decode.TypeLeftRight, Source: "pair.png", Angle: 180})
	left := v.Pair().Mesh(eye.Left)
	if left == nil || left.Material.Texture.Width != 32 {
		t.Fatalf("first parse did not create a 32 px wide left eye")
	}

	run(Params{Type: decode.TypeLeftRight, Source: "thin.png", Angle: 180})

	if len(errs) != 1 || !errors.Is(errs[0], decode.ErrDecodeFailure) {
		t.Fatalf("errors = %v, want one decode failure", errs)
	}
	if v.Pair().Mesh(eye.Left) != left || !v.Scene().Contains(left) {
		t.Error("prior pair detached by a source with empty eyes")
	}
	if v.Params().Source != "pair.png" {
		t.Errorf("applied source = %q, want pair.png", v.Params().Source)
	}
	if driver.renders != 2 || len(driver.visible) != 1 {
		t.Errorf("renders = %d, visible = %d, want 2 and 1", driver.renders, len(driver.visible))
	}
}

func TestFailureBeforeFirstSuccess(t *testing.T) {
	h := newHarness(4096)
	h.parse(t, Params{Type: decode.TypeAuto, Source: "nope.jpg", Angle: 180})

	if len(h.errs) != 1 {
		t.Fatalf("errors = %d, want 1", len(h.errs))
	}
	if h.v.Scene().Len() != 0 || h.v.Looping() || h.driver.renders != 0 {
		t.Error("state changed after a failed first decode")
	}
}

func TestLatestParseWins(t *testing.T) {
	h := newHarness(4096)
	h.dec.add("slow.jpg", 64, 64)
	h.dec.add("fast.jpg", 32, 32)
	gate := h.dec.gate("slow.jpg")

	ctx := context.Background()
	first := h.v.Parse(ctx, Params{Type: decode.TypeLeftRight, Source: "slow.jpg", Angle: 180})
	second := h.v.Parse(ctx, Params{Type: decode.TypeLeftRight, Source: "fast.jpg", Angle: 360})
	if second <= first {
		t.Fatalf("generations %d then %d", first, second)
	}

	// The fast result lands first, then the slow one resolves late.
	close(gate)
	h.v.Wait()
	h.v.Tick(0)

	if h.v.Applied() != 1 {
		t.Fatalf("applied = %d, want 1", h.v.Applied())
	}
	if got := h.v.Params().Source; got != "fast.jpg" {
		t.Errorf("applied source = %q, want fast.jpg", got)
	}
	if h.v.Pair().Geometry().Shape != projection.ShapeSphere {
		t.Error("stale result replaced the newer geometry")
	}
	if n := eyeMeshes(h.v.Scene()); n != 2 {
		t.Errorf("eye meshes = %d, want 2", n)
	}
}

func TestStaleFailureIgnored(t *testing.T) {
	h := newHarness(4096)
	h.dec.add("ok.jpg", 16, 16)
	gate := h.dec.gate("broken.jpg")

	ctx := context.Background()
	h.v.Parse(ctx, Params{Type: decode.TypeLeftRight, Source: "broken.jpg", Angle: 180})
	h.v.Parse(ctx, Params{Type: decode.TypeLeftRight, Source: "ok.jpg", Angle: 180})
	close(gate)
	h.v.Wait()
	h.v.Tick(0)

	if len(h.errs) != 0 {
		t.Errorf("stale failure reported: %v", h.errs)
	}
	if h.v.Applied() != 1 {
		t.Errorf("applied = %d, want 1", h.v.Applied())
	}
}

func TestGeometryRebuildOnProjectionChange(t *testing.T) {
	h := newHarness(4096)
	h.dec.add("fish.jpg", 64, 32)

	p := Params{Type: decode.TypeVR, Source: "fish.jpg", Angle: 360, Projection: "equirectangular"}
	h.parse(t, p)
	first := h.v.Pair().Geometry()

	h.parse(t, p)
	if h.v.Pair().Geometry() != first {
		t.Error("identical inputs rebuilt the geometry")
	}

	p.Projection = "fisheye"
	h.parse(t, p)
	second := h.v.Pair().Geometry()
	if second == first || second.Mode != projection.Fisheye {
		t.Error("projection change did not rebuild the geometry")
	}
	if h.v.Pair().Mesh(eye.Left).Geometry != h.v.Pair().Mesh(eye.Right).Geometry {
		t.Error("eyes do not share geometry")
	}

	p.Projection = "cubemap"
	h.parse(t, p)
	if h.v.Pair().Geometry().Mode != projection.Equirectangular {
		t.Error("unknown projection did not fall back to equirectangular")
	}
	if len(h.errs) != 0 {
		t.Errorf("unknown projection reported as failure: %v", h.errs)
	}
}

func TestToggleWiggle(t *testing.T) {
	h := newHarness(4096)

	h.v.ToggleWiggle()
	if h.v.Wiggling() {
		t.Error("wiggle started before any pair exists")
	}

	h.dec.add("a.jpg", 16, 16)
	h.parse(t, Params{Type: decode.TypeLeftRight, Source: "a.jpg", Angle: 180})
	if h.v.Wiggling() {
		t.Fatal("parse params should override the earlier toggle")
	}
	if !h.v.ToggleWiggle() || !h.v.Wiggling() {
		t.Error("toggle did not start wiggle")
	}
	if h.v.ToggleWiggle() || h.v.Wiggling() || h.v.Pair().VisibleSide() != eye.Left {
		t.Error("toggle did not stop wiggle and restore mono")
	}
}

func TestEmptySourceIgnored(t *testing.T) {
	h := newHarness(4096)
	if gen := h.v.Parse(context.Background(), Params{}); gen != 0 {
		t.Errorf("generation = %d, want 0", gen)
	}
	h.v.Tick(0)
	if h.dec.calls != 0 || len(h.errs) != 0 {
		t.Error("empty source started a decode")
	}
}

func TestClose(t *testing.T) {
	h := newHarness(4096)
	h.dec.add("a.jpg", 16, 16)
	h.parse(t, Params{Type: decode.TypeVR, Source: "a.jpg", Angle: 360, Wiggle: true})

	gate := h.dec.gate("late.jpg")
	h.dec.add("late.jpg", 16, 16)
	h.v.Parse(context.Background(), Params{Type: decode.TypeVR, Source: "late.jpg", Angle: 180})

	h.v.Close()
	close(gate)
	h.v.Wait()
	renders := h.driver.renders
	h.v.Tick(0)

	if h.v.Wiggling() || h.sched.outstanding() != 0 {
		t.Error("wiggle still running after Close")
	}
	if h.v.Looping() || h.driver.renders != renders {
		t.Error("loop still rendering after Close")
	}
	if h.v.Applied() != 1 {
		t.Errorf("applied = %d, want 1", h.v.Applied())
	}
}

func TestLoopLatestCallbackOnly(t *testing.T) {
	var l Loop
	var a, b int
	l.Start(func(time.Duration) { a++ })
	l.Start(func(time.Duration) { b++ })
	l.Frame(0)
	if a != 0 || b != 1 {
		t.Errorf("a = %d, b = %d, want 0 and 1", a, b)
	}
	l.Stop()
	l.Frame(0)
	if b != 1 || l.Running() {
		t.Error("stopped loop still runs")
	}
}

func TestIntentQueueOrder(t *testing.T) {
	var q intentQueue
	var got []int
	for i := 0; i < 3; i++ {
		q.Post(func() { got = append(got, i) })
	}
	if n := q.Drain(); n != 3 {
		t.Fatalf("drained %d, want 3", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v", got)
		}
	}
	if q.Len() != 0 {
		t.Error("queue not empty")
	}
}

func TestParamsFromConfig(t *testing.T) {
	cfg := config.Default().Viewer
	cfg.Source = "x.jpg"
	cfg.Angle = 0
	cfg.Type = "Top-Bottom"

	p := ParamsFromConfig(cfg)
	if p.Angle != config.DefaultAngle {
		t.Errorf("Angle = %v, want %v", p.Angle, config.DefaultAngle)
	}
	if p.Type != decode.TypeTopBottom {
		t.Errorf("Type = %q", p.Type)
	}
	if p.Source != "x.jpg" || p.Projection != "equirectangular" {
		t.Errorf("params = %+v", p)
	}
}
