// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/ckbridge/target"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// TestSurfaceInterface verifies the Surface interface contract.
func TestSurfaceInterface(t *testing.T) {
	var _ Surface = (*RasterSurface)(nil)
	var _ Surface = (*GPUSurface)(nil)
}

// mockBackend implements GPUBackend for testing.
type mockBackend struct {
	flushes  int
	closes   int
	flushErr error
}

func (m *mockBackend) Flush() error { m.flushes++; return m.flushErr }
func (m *mockBackend) Close() error { m.closes++; return nil }

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct{}

func (mockProvider) Device() gpucontext.Device             { return nil }
func (mockProvider) Queue() gpucontext.Queue               { return nil }
func (mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock", Type: gpucontext.AdapterTypeSoftware}
}

var _ gpucontext.DeviceProvider = mockProvider{}

func TestNewGPUSurface(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		backend GPUBackend
		wantErr bool
	}{
		{"valid", 640, 480, &mockBackend{}, false},
		{"nil backend", 640, 480, nil, true},
		{"zero width", 0, 480, &mockBackend{}, true},
		{"negative height", 640, -1, &mockBackend{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewGPUSurface(tt.w, tt.h, gputypes.TextureFormatBGRA8Unorm, ColorSpaceSRGB, tt.backend)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGPUSurface() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (s.Width() != tt.w || s.Height() != tt.h) {
				t.Errorf("size = %dx%d, want %dx%d", s.Width(), s.Height(), tt.w, tt.h)
			}
		})
	}
}

func TestGPUSurfaceAttachAndClose(t *testing.T) {
	b := &mockBackend{}
	s, err := NewGPUSurface(32, 16, gputypes.TextureFormatRGBA8Unorm, ColorSpaceDisplayP3, b)
	if err != nil {
		t.Fatal(err)
	}
	if s.Backend() != BackendGPU {
		t.Errorf("Backend() = %v, want gpu", s.Backend())
	}
	if s.Format() != gputypes.TextureFormatRGBA8Unorm || s.ColorSpace() != ColorSpaceDisplayP3 {
		t.Errorf("format/colorspace = %v/%v", s.Format(), s.ColorSpace())
	}
	if s.Context() != 0 || s.GrContext() != nil {
		t.Error("fresh surface should carry no context references")
	}

	gr := mockProvider{}
	s.Attach(3, gr)
	if s.Context() != 3 || s.GrContext() != gr {
		t.Error("Attach() did not record references")
	}

	if err := s.Flush(); err != nil || b.flushes != 1 {
		t.Errorf("Flush() = %v, flushes = %d", err, b.flushes)
	}
	_ = s.Close()
	_ = s.Close()
	if b.closes != 1 || !s.Closed() {
		t.Errorf("backend closed %d times, want 1", b.closes)
	}
	if err := s.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("Flush() after Close = %v, want ErrClosed", err)
	}
}

func TestRasterSurfaceMatchesBackingBuffer(t *testing.T) {
	c := target.NewCanvas("c", 200, 100)
	c.SetDisplaySize(100, 50)

	s := NewRasterSurface(c)
	if s.Width() != 200 || s.Height() != 100 {
		t.Errorf("size = %dx%d, want backing size 200x100", s.Width(), s.Height())
	}
	if s.Backend() != BackendSoftware || s.Canvas() != c {
		t.Error("unexpected backend or canvas")
	}
}

func TestRasterSurfaceFlushPresents(t *testing.T) {
	c := target.NewCanvas("c", 4, 4)
	s := NewRasterSurface(c)
	red := color.RGBA{R: 255, A: 255}
	s.Pixels().Set(1, 1, red)

	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	frame := c.Frame()
	if frame == nil {
		t.Fatal("Flush() presented nothing")
	}
	if got := frame.RGBAAt(1, 1); got != red {
		t.Errorf("presented pixel = %v, want %v", got, red)
	}

	// The presented frame is a snapshot, not the live buffer.
	s.Pixels().Set(1, 1, color.RGBA{})
	if got := frame.RGBAAt(1, 1); got != red {
		t.Error("presented frame aliases the surface buffer")
	}
}

func TestRasterSurfaceFlushScalesToDisplay(t *testing.T) {
	c := target.NewCanvas("c", 8, 8)
	c.SetDisplaySize(4, 4)
	s := NewRasterSurface(c)
	for y := range 8 {
		for x := range 8 {
			s.Pixels().Set(x, y, color.White)
		}
	}
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := c.Frame().Bounds(); got != image.Rect(0, 0, 4, 4) {
		t.Errorf("presented bounds = %v, want 4x4", got)
	}
	if got := c.Frame().RGBAAt(2, 2); got.A != 255 {
		t.Errorf("scaled pixel = %v, want opaque", got)
	}
}

func TestRasterSurfaceClose(t *testing.T) {
	s := NewRasterSurface(target.NewCanvas("c", 0, 0))
	if s.Width() != 1 || s.Height() != 1 {
		t.Errorf("empty canvas surface = %dx%d, want 1x1", s.Width(), s.Height())
	}
	_ = s.Close()
	if err := s.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("Flush() after Close = %v, want ErrClosed", err)
	}
}

func TestStrings(t *testing.T) {
	if BackendGPU.String() != "gpu" || BackendSoftware.String() != "software" || Backend(0).String() != "unknown" {
		t.Error("unexpected Backend strings")
	}
	if ColorSpaceUnspecified.String() != "unspecified" || ColorSpaceDisplayP3.String() != "display-p3" {
		t.Error("unexpected ColorSpace strings")
	}
}
