package gpu

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/ckbridge"
	"github.com/gogpu/gputypes"
)

// ContextOptions are the attributes a rendering context is created with.
//
// Every field has a default (see DefaultContextOptions); the record handed
// to the engine is always fully populated. The TOML keys match the engine's
// attribute names.
type ContextOptions struct {
	Alpha                           bool `toml:"alpha"`
	Depth                           bool `toml:"depth"`
	Stencil                         int  `toml:"stencil"`
	Antialias                       bool `toml:"antialias"`
	PremultipliedAlpha              bool `toml:"premultipliedAlpha"`
	PreserveDrawingBuffer           bool `toml:"preserveDrawingBuffer"`
	PreferLowPowerToHighPerformance bool `toml:"preferLowPowerToHighPerformance"`
	FailIfMajorPerformanceCaveat    bool `toml:"failIfMajorPerformanceCaveat"`
	EnableExtensionsByDefault       bool `toml:"enableExtensionsByDefault"`

	// ExplicitSwapControl must be false; the engine cannot drive swaps
	// explicitly.
	ExplicitSwapControl bool `toml:"explicitSwapControl"`

	RenderViaOffscreenBackBuffer bool `toml:"renderViaOffscreenBackBuffer"`
}

// DefaultContextOptions returns the defaults applied to every unset option.
func DefaultContextOptions() ContextOptions {
	return ContextOptions{
		Alpha:                           true,
		Depth:                           true,
		Stencil:                         8,
		Antialias:                       false,
		PremultipliedAlpha:              true,
		PreserveDrawingBuffer:           false,
		PreferLowPowerToHighPerformance: false,
		FailIfMajorPerformanceCaveat:    false,
		EnableExtensionsByDefault:       true,
		ExplicitSwapControl:             false,
		RenderViaOffscreenBackBuffer:    false,
	}
}

// Validate reports options the engine rejects.
func (o ContextOptions) Validate() error {
	if o.ExplicitSwapControl {
		return &ckbridge.UnsupportedOptionError{Option: "explicitSwapControl"}
	}
	if o.Stencil < 0 {
		return &ckbridge.UnsupportedOptionError{Option: "stencil", Reason: fmt.Sprintf("negative bit depth %d", o.Stencil)}
	}
	return nil
}

// PowerPreference maps the low-power flag to the adapter power preference.
func (o ContextOptions) PowerPreference() gputypes.PowerPreference {
	if o.PreferLowPowerToHighPerformance {
		return gputypes.PowerPreferenceLowPower
	}
	return gputypes.PowerPreferenceHighPerformance
}

// LogValue implements slog.LogValuer.
func (o ContextOptions) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("alpha", o.Alpha),
		slog.Bool("depth", o.Depth),
		slog.Int("stencil", o.Stencil),
		slog.Bool("antialias", o.Antialias),
		slog.Bool("premultipliedAlpha", o.PremultipliedAlpha),
		slog.Bool("preserveDrawingBuffer", o.PreserveDrawingBuffer),
		slog.Bool("preferLowPowerToHighPerformance", o.PreferLowPowerToHighPerformance),
		slog.Bool("failIfMajorPerformanceCaveat", o.FailIfMajorPerformanceCaveat),
		slog.Bool("enableExtensionsByDefault", o.EnableExtensionsByDefault),
		slog.Bool("explicitSwapControl", o.ExplicitSwapControl),
		slog.Bool("renderViaOffscreenBackBuffer", o.RenderViaOffscreenBackBuffer),
	)
}

// ContextOption overrides one context attribute.
//
// Example:
//
//	h, err := p.EstablishContext(c, gpu.WithAntialias(true), gpu.WithStencil(0))
type ContextOption func(*ContextOptions)

// WithAlpha sets whether the drawing buffer has an alpha channel.
func WithAlpha(v bool) ContextOption { return func(o *ContextOptions) { o.Alpha = v } }

// WithDepth sets whether the drawing buffer has a depth buffer.
func WithDepth(v bool) ContextOption { return func(o *ContextOptions) { o.Depth = v } }

// WithStencil sets the stencil buffer bit depth (0 disables it).
func WithStencil(bits int) ContextOption { return func(o *ContextOptions) { o.Stencil = bits } }

// WithAntialias sets whether the default framebuffer is multisampled.
func WithAntialias(v bool) ContextOption { return func(o *ContextOptions) { o.Antialias = v } }

// WithPremultipliedAlpha sets whether colors are premultiplied by alpha.
func WithPremultipliedAlpha(v bool) ContextOption {
	return func(o *ContextOptions) { o.PremultipliedAlpha = v }
}

// WithPreserveDrawingBuffer sets whether the buffer survives presentation.
func WithPreserveDrawingBuffer(v bool) ContextOption {
	return func(o *ContextOptions) { o.PreserveDrawingBuffer = v }
}

// WithPreferLowPower selects a low-power adapter over a high-performance one.
func WithPreferLowPower(v bool) ContextOption {
	return func(o *ContextOptions) { o.PreferLowPowerToHighPerformance = v }
}

// WithFailIfMajorPerformanceCaveat refuses contexts on slow fallback drivers.
func WithFailIfMajorPerformanceCaveat(v bool) ContextOption {
	return func(o *ContextOptions) { o.FailIfMajorPerformanceCaveat = v }
}

// WithEnableExtensionsByDefault enables all supported extensions at creation.
func WithEnableExtensionsByDefault(v bool) ContextOption {
	return func(o *ContextOptions) { o.EnableExtensionsByDefault = v }
}

// WithExplicitSwapControl requests explicit swap control. The engine does
// not support it; EstablishContext rejects true.
func WithExplicitSwapControl(v bool) ContextOption {
	return func(o *ContextOptions) { o.ExplicitSwapControl = v }
}

// WithRenderViaOffscreenBackBuffer renders through an offscreen back buffer.
func WithRenderViaOffscreenBackBuffer(v bool) ContextOption {
	return func(o *ContextOptions) { o.RenderViaOffscreenBackBuffer = v }
}

// WithContextOptions replaces the whole record, for options loaded from
// configuration.
func WithContextOptions(v ContextOptions) ContextOption {
	return func(o *ContextOptions) { *o = v }
}

// LoadContextOptions decodes TOML onto DefaultContextOptions, so absent keys
// keep their defaults. Unknown keys are an error. The result is validated.
//
//	antialias = true
//	stencil = 0
func LoadContextOptions(r io.Reader) (ContextOptions, error) {
	o := DefaultContextOptions()
	md, err := toml.NewDecoder(r).Decode(&o)
	if err != nil {
		return ContextOptions{}, fmt.Errorf("gpu: decode context options: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return ContextOptions{}, fmt.Errorf("gpu: unknown context options: %s", strings.Join(keys, ", "))
	}
	if err := o.Validate(); err != nil {
		return ContextOptions{}, err
	}
	return o, nil
}
