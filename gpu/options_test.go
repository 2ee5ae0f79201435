package gpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/ckbridge"
	"github.com/gogpu/gputypes"
)

func TestDefaultContextOptions(t *testing.T) {
	want := ContextOptions{
		Alpha:                        true,
		Depth:                        true,
		Stencil:                      8,
		PremultipliedAlpha:           true,
		EnableExtensionsByDefault:    true,
		Antialias:                    false,
		PreserveDrawingBuffer:        false,
		ExplicitSwapControl:          false,
		RenderViaOffscreenBackBuffer: false,
	}
	if got := DefaultContextOptions(); got != want {
		t.Errorf("DefaultContextOptions() = %+v, want %+v", got, want)
	}
	if err := DefaultContextOptions().Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestContextOptionFuncs(t *testing.T) {
	o := DefaultContextOptions()
	for _, opt := range []ContextOption{
		WithAlpha(false),
		WithDepth(false),
		WithStencil(0),
		WithAntialias(true),
		WithPremultipliedAlpha(false),
		WithPreserveDrawingBuffer(true),
		WithPreferLowPower(true),
		WithFailIfMajorPerformanceCaveat(true),
		WithEnableExtensionsByDefault(false),
		WithRenderViaOffscreenBackBuffer(true),
	} {
		opt(&o)
	}
	want := ContextOptions{
		Stencil:                         0,
		Antialias:                       true,
		PreserveDrawingBuffer:           true,
		PreferLowPowerToHighPerformance: true,
		FailIfMajorPerformanceCaveat:    true,
		RenderViaOffscreenBackBuffer:    true,
	}
	if o != want {
		t.Errorf("options = %+v, want %+v", o, want)
	}
	if o.PowerPreference() != gputypes.PowerPreferenceLowPower {
		t.Errorf("PowerPreference() = %v, want low power", o.PowerPreference())
	}
	if DefaultContextOptions().PowerPreference() != gputypes.PowerPreferenceHighPerformance {
		t.Error("default PowerPreference() should be high performance")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		opt    ContextOption
		option string
	}{
		{"explicit swap control", WithExplicitSwapControl(true), "explicitSwapControl"},
		{"negative stencil", WithStencil(-1), "stencil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultContextOptions()
			tt.opt(&o)
			err := o.Validate()
			if !errors.Is(err, ckbridge.ErrUnsupportedOption) {
				t.Fatalf("Validate() = %v, want ErrUnsupportedOption", err)
			}
			var ue *ckbridge.UnsupportedOptionError
			if !errors.As(err, &ue) || ue.Option != tt.option {
				t.Errorf("rejected option = %v, want %s", err, tt.option)
			}
		})
	}
}

func TestLoadContextOptions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    func() ContextOptions
		wantErr string
	}{
		{
			name:  "empty keeps defaults",
			input: "",
			want:  DefaultContextOptions,
		},
		{
			name:  "partial override",
			input: "antialias = true\nstencil = 0\n",
			want: func() ContextOptions {
				o := DefaultContextOptions()
				o.Antialias = true
				o.Stencil = 0
				return o
			},
		},
		{
			name:    "explicit swap control rejected",
			input:   "explicitSwapControl = true\n",
			wantErr: "explicitSwapControl",
		},
		{
			name:    "unknown key",
			input:   "alpah = false\n",
			wantErr: "unknown context options: alpah",
		},
		{
			name:    "bad syntax",
			input:   "alpha = ",
			wantErr: "decode context options",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadContextOptions(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("LoadContextOptions() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadContextOptions() error = %v", err)
			}
			if want := tt.want(); got != want {
				t.Errorf("LoadContextOptions() = %+v, want %+v", got, want)
			}
		})
	}
}
