package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/ckbridge"
	"github.com/gogpu/ckbridge/surface"
	"github.com/gogpu/ckbridge/target"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	format gputypes.TextureFormat
}

func (m *mockProvider) Device() gpucontext.Device             { return nil }
func (m *mockProvider) Queue() gpucontext.Queue               { return nil }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock", Type: gpucontext.AdapterTypeSoftware}
}

var _ gpucontext.DeviceProvider = (*mockProvider)(nil)

type createCall struct {
	canvas          *target.Canvas
	preserveCurrent bool
	exclusive       bool
	options         ContextOptions
}

type surfaceCall struct {
	gr            gpucontext.DeviceProvider
	width, height int
	cs            surface.ColorSpace
}

// mockEngine records calls and returns canned results.
type mockEngine struct {
	handle   ContextHandle
	gr       gpucontext.DeviceProvider
	noGPU    bool
	swErr    error
	creates  []createCall
	surfaces []surfaceCall
	sw       []*target.Canvas
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		handle: 7,
		gr:     &mockProvider{format: gputypes.TextureFormatBGRA8Unorm},
	}
}

func (m *mockEngine) CreateContext(c *target.Canvas, preserveCurrent, exclusive bool, o ContextOptions) ContextHandle {
	m.creates = append(m.creates, createCall{c, preserveCurrent, exclusive, o})
	return m.handle
}

func (m *mockEngine) MakeGrContext(h ContextHandle) gpucontext.DeviceProvider {
	if h != m.handle {
		return nil
	}
	return m.gr
}

func (m *mockEngine) MakeOnScreenGLSurface(gr gpucontext.DeviceProvider, width, height int, cs surface.ColorSpace) *surface.GPUSurface {
	m.surfaces = append(m.surfaces, surfaceCall{gr, width, height, cs})
	if m.noGPU {
		return nil
	}
	s, err := surface.NewGPUSurface(width, height, gr.SurfaceFormat(), cs, nopBackend{})
	if err != nil {
		return nil
	}
	return s
}

func (m *mockEngine) MakeSWCanvasSurface(c *target.Canvas) (surface.Surface, error) {
	m.sw = append(m.sw, c)
	if m.swErr != nil {
		return nil, m.swErr
	}
	return surface.NewRasterSurface(c), nil
}

type nopBackend struct{}

func (nopBackend) Flush() error { return nil }
func (nopBackend) Close() error { return nil }

func newTestDocument(t *testing.T, ids ...string) (*target.Document, *target.Container) {
	t.Helper()
	doc := target.NewDocument()
	body := doc.NewContainer("body")
	for _, id := range ids {
		if err := body.Append(target.NewCanvas(id, 300, 150)); err != nil {
			t.Fatal(err)
		}
	}
	return doc, body
}

func TestEstablishContextAppliesDefaults(t *testing.T) {
	eng := newMockEngine()
	reg := NewContextRegistry()
	p := New(eng, target.NewDocument(), WithRegistry(reg))
	c := target.NewCanvas("c", 10, 10)

	h, err := p.EstablishContext(c)
	if err != nil {
		t.Fatal(err)
	}
	if h != 7 || reg.Current() != 7 {
		t.Errorf("handle = %d, current = %d, want 7", h, reg.Current())
	}
	if len(eng.creates) != 1 {
		t.Fatalf("CreateContext called %d times", len(eng.creates))
	}
	call := eng.creates[0]
	if call.options != DefaultContextOptions() {
		t.Errorf("options = %+v, want defaults", call.options)
	}
	if !call.preserveCurrent || !call.exclusive || call.canvas != c {
		t.Errorf("CreateContext(%v, %v, %v)", call.canvas, call.preserveCurrent, call.exclusive)
	}
}

func TestEstablishContextOverrides(t *testing.T) {
	eng := newMockEngine()
	p := New(eng, target.NewDocument(), WithRegistry(NewContextRegistry()))

	_, err := p.EstablishContext(target.NewCanvas("c", 1, 1), WithAntialias(true), WithStencil(0))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultContextOptions()
	want.Antialias = true
	want.Stencil = 0
	if got := eng.creates[0].options; got != want {
		t.Errorf("options = %+v, want %+v", got, want)
	}
}

func TestEstablishContextRejectsExplicitSwapControl(t *testing.T) {
	eng := newMockEngine()
	reg := NewContextRegistry()
	p := New(eng, target.NewDocument(), WithRegistry(reg))

	_, err := p.EstablishContext(target.NewCanvas("c", 1, 1), WithExplicitSwapControl(true))
	if !errors.Is(err, ckbridge.ErrUnsupportedOption) {
		t.Fatalf("err = %v, want ErrUnsupportedOption", err)
	}
	if len(eng.creates) != 0 {
		t.Error("engine was called for rejected options")
	}
	if reg.Current() != 0 {
		t.Error("registry changed for rejected options")
	}
}

func TestEstablishContextFailureLeavesRegistry(t *testing.T) {
	eng := newMockEngine()
	eng.handle = 0
	reg := NewContextRegistry()
	reg.SetCurrent(3)
	p := New(eng, target.NewDocument(), WithRegistry(reg))

	h, err := p.EstablishContext(target.NewCanvas("c", 1, 1))
	if err != nil {
		t.Fatalf("EstablishContext() error = %v, want nil", err)
	}
	if h.Valid() {
		t.Errorf("handle = %d, want invalid", h)
	}
	if reg.Current() != 3 {
		t.Errorf("current = %d, want 3", reg.Current())
	}
}

func TestEstablishContextNilCanvas(t *testing.T) {
	p := New(newMockEngine(), target.NewDocument())
	if _, err := p.EstablishContext(nil); !errors.Is(err, ckbridge.ErrInvalidTarget) {
		t.Errorf("err = %v, want ErrInvalidTarget", err)
	}
}

func TestSurfaceGPUPath(t *testing.T) {
	eng := newMockEngine()
	doc, _ := newTestDocument(t, "main")
	c, _ := doc.Lookup("main")
	c.Resize(600, 300)
	c.SetDisplaySize(300, 150)
	p := New(eng, doc, WithRegistry(NewContextRegistry()))

	res, err := p.Surface(target.ByID("main"), surface.ColorSpaceDisplayP3)
	if err != nil {
		t.Fatal(err)
	}
	if res.State != StateGPU || res.GPU == nil || res.Surface != res.GPU {
		t.Fatalf("result = %+v, want GPU surface", res)
	}
	if res.Target != c || res.Replaced != nil {
		t.Error("GPU path must keep the original target")
	}
	if got := eng.surfaces[0]; got.width != 600 || got.height != 300 || got.cs != surface.ColorSpaceDisplayP3 {
		t.Errorf("MakeOnScreenGLSurface(%d, %d, %v), want backing size 600x300 DisplayP3", got.width, got.height, got.cs)
	}
	if res.GPU.Context() != 7 || res.GPU.GrContext() != eng.gr {
		t.Errorf("surface context = %d, gr = %v", res.GPU.Context(), res.GPU.GrContext())
	}
	if c.HasClass(target.ReplacedClass) {
		t.Error("GPU path marked the target replaced")
	}
}

func TestSurfaceFallback(t *testing.T) {
	eng := newMockEngine()
	eng.noGPU = true
	doc, body := newTestDocument(t, "before", "main", "after")
	orig, _ := doc.Lookup("main")
	orig.SetAttr("data-role", "player")
	p := New(eng, doc, WithRegistry(NewContextRegistry()))

	res, err := p.Surface(target.ByID("main"), surface.ColorSpaceSRGB)
	if err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
	if res.State != StateSoftware || res.GPU != nil {
		t.Fatalf("state = %v, want software", res.State)
	}
	if res.Replaced != orig || res.Target == orig {
		t.Fatal("fallback must replace the original target")
	}
	if body.Index(res.Target) != 1 {
		t.Errorf("replacement at index %d, want 1", body.Index(res.Target))
	}
	if body.Index(orig) != -1 || !orig.Detached() {
		t.Error("original still attached")
	}
	if !res.Target.HasClass(target.ReplacedClass) {
		t.Error("replacement not marked")
	}
	if v, _ := res.Target.Attr("data-role"); v != "player" {
		t.Error("replacement lost attributes")
	}
	if len(eng.sw) != 1 || eng.sw[0] != res.Target {
		t.Error("software surface not built on the replacement")
	}
	if res.Surface.Backend() != surface.BackendSoftware {
		t.Errorf("backend = %v", res.Surface.Backend())
	}
	if got, ok := doc.Lookup("main"); !ok || got != res.Target {
		t.Error("lookup by ID does not find the replacement")
	}
}

func TestSurfaceFallbackDetachedTarget(t *testing.T) {
	eng := newMockEngine()
	eng.noGPU = true
	p := New(eng, target.NewDocument(), WithRegistry(NewContextRegistry()))
	c := target.NewCanvas("loose", 8, 8)

	res, err := p.Surface(target.Direct(c), surface.ColorSpaceSRGB)
	if err != nil {
		t.Fatal(err)
	}
	if res.State != StateSoftware || !res.Target.HasClass(target.ReplacedClass) {
		t.Errorf("result = %+v", res)
	}
}

func TestSurfaceFallbackSoftwareOverride(t *testing.T) {
	eng := newMockEngine()
	eng.noGPU = true
	doc, _ := newTestDocument(t, "main")
	var got *target.Canvas
	p := New(eng, doc,
		WithRegistry(NewContextRegistry()),
		WithSoftwareSurface(func(c *target.Canvas) (surface.Surface, error) {
			got = c
			return surface.NewRasterSurface(c), nil
		}))

	res, err := p.Surface(target.ByID("main"), surface.ColorSpaceSRGB)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got != res.Target || len(eng.sw) != 0 {
		t.Error("software override not used")
	}
}

func TestSurfaceFallbackSoftwareError(t *testing.T) {
	eng := newMockEngine()
	eng.noGPU = true
	eng.swErr = errors.New("no raster")
	doc, _ := newTestDocument(t, "main")
	p := New(eng, doc, WithRegistry(NewContextRegistry()))

	if _, err := p.Surface(target.ByID("main"), surface.ColorSpaceSRGB); !errors.Is(err, eng.swErr) {
		t.Errorf("err = %v, want wrapped software error", err)
	}
}

func TestSurfaceErrors(t *testing.T) {
	tests := []struct {
		name  string
		ref   target.Ref
		setup func(*mockEngine)
		want  error
	}{
		{"unknown id", target.ByID("missing"), nil, ckbridge.ErrTargetNotFound},
		{"nil direct", target.Direct(nil), nil, ckbridge.ErrInvalidTarget},
		{"context failure", target.ByID("main"), func(m *mockEngine) { m.handle = -1 }, ckbridge.ErrGpuContextCreation},
		{"no backend", target.ByID("main"), func(m *mockEngine) { m.gr = nil }, ckbridge.ErrGpuContextCreation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newMockEngine()
			if tt.setup != nil {
				tt.setup(eng)
			}
			doc, _ := newTestDocument(t, "main")
			p := New(eng, doc, WithRegistry(NewContextRegistry()))

			_, err := p.Surface(tt.ref, surface.ColorSpaceSRGB)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if len(eng.surfaces) != 0 {
				t.Error("surface creation attempted after failure")
			}
		})
	}
}

func TestSurfaceTargetNotFoundCarriesID(t *testing.T) {
	doc, _ := newTestDocument(t, "main")
	p := New(newMockEngine(), doc, WithRegistry(NewContextRegistry()))

	_, err := p.Surface(target.ByID("nope"), surface.ColorSpaceSRGB)
	var nf *ckbridge.TargetNotFoundError
	if !errors.As(err, &nf) || nf.ID != "nope" {
		t.Errorf("err = %v, want TargetNotFoundError{nope}", err)
	}
}

func TestMakeCanvasSurfaceIsSurface(t *testing.T) {
	doc, _ := newTestDocument(t, "main")
	p := New(newMockEngine(), doc, WithRegistry(NewContextRegistry()))
	res, err := p.MakeCanvasSurface(target.ByID("main"), surface.ColorSpaceSRGB)
	if err != nil || res.State != StateGPU {
		t.Errorf("MakeCanvasSurface() = %v, %v", res.State, err)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{StateGPU: "gpu", StateSoftware: "software", 0: "unknown"} {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
