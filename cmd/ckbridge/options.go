package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/ckbridge/gpu"
	"github.com/gogpu/ckbridge/surface"
	"github.com/gogpu/ckbridge/target"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/urfave/cli/v2"
)

var configFlag = &cli.PathFlag{
	Name:  "config",
	Usage: "TOML file with context options",
}

var optionsCommand = &cli.Command{
	Name:   "options",
	Usage:  "print the resolved context options as TOML",
	Flags:  []cli.Flag{configFlag},
	Action: printOptions,
}

var surfaceCommand = &cli.Command{
	Name:  "surface",
	Usage: "provision a surface for a detached target and report the backend",
	Flags: []cli.Flag{
		configFlag,
		&cli.IntFlag{Name: "width", Value: 300, Usage: "backing buffer width"},
		&cli.IntFlag{Name: "height", Value: 150, Usage: "backing buffer height"},
		&cli.IntFlag{Name: "display-width", Usage: "display width (default: backing width)"},
		&cli.IntFlag{Name: "display-height", Usage: "display height (default: backing height)"},
		&cli.PathFlag{Name: "out", Usage: "write the presented frame as PNG"},
	},
	Action: provisionSurface,
}

func loadOptions(ctx *cli.Context) (gpu.ContextOptions, error) {
	path := ctx.Path(configFlag.Name)
	if path == "" {
		return gpu.DefaultContextOptions(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return gpu.ContextOptions{}, err
	}
	defer f.Close()
	o, err := gpu.LoadContextOptions(f)
	if err != nil {
		return gpu.ContextOptions{}, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

func printOptions(ctx *cli.Context) error {
	o, err := loadOptions(ctx)
	if err != nil {
		return err
	}
	return toml.NewEncoder(ctx.App.Writer).Encode(o)
}

// headless is a device with no presentable surface format. Contexts open,
// but every GPU surface request fails and targets fall back to software.
type headless struct{}

func (headless) Device() gpucontext.Device             { return nil }
func (headless) Queue() gpucontext.Queue               { return nil }
func (headless) Adapter() gpucontext.Adapter           { return nil }
func (headless) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (headless) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "headless", Type: gpucontext.AdapterTypeUnknown}
}

var _ gpucontext.DeviceProvider = headless{}

func openHeadless(*target.Canvas, gpu.ContextOptions) (gpucontext.DeviceProvider, error) {
	return headless{}, nil
}

func provisionSurface(ctx *cli.Context) error {
	o, err := loadOptions(ctx)
	if err != nil {
		return err
	}

	doc := target.NewDocument()
	c := target.NewCanvas("ckbridge", ctx.Int("width"), ctx.Int("height"))
	dw, dh := c.DisplaySize()
	if v := ctx.Int("display-width"); v > 0 {
		dw = v
	}
	if v := ctx.Int("display-height"); v > 0 {
		dh = v
	}
	c.SetDisplaySize(dw, dh)
	if err := doc.NewContainer("body").Append(c); err != nil {
		return err
	}

	eng := gpu.NewDeviceEngine(openHeadless)
	p := gpu.New(eng, doc, gpu.WithRegistry(gpu.NewContextRegistry()))

	// The canvas stays locked to this first context, so Surface below
	// reuses it with the configured options.
	h, err := p.EstablishContext(c, gpu.WithContextOptions(o))
	if err != nil {
		return err
	}
	res, err := p.Surface(target.ByID(c.ID()), surface.ColorSpaceSRGB)
	if err != nil {
		return err
	}
	defer res.Surface.Close()
	if err := res.Surface.Flush(); err != nil {
		return err
	}

	w := ctx.App.Writer
	used, _ := eng.Options(h)
	fmt.Fprintf(w, "context %d: antialias=%v stencil=%d power=%v\n",
		h, used.Antialias, used.Stencil, used.PowerPreference())
	dw, dh = res.Target.DisplaySize()
	fmt.Fprintf(w, "target %q: %s surface %dx%d, display %dx%d, replaced=%v\n",
		res.Target.ID(), res.State, res.Surface.Width(), res.Surface.Height(),
		dw, dh, res.Target.HasClass(target.ReplacedClass))

	if out := ctx.Path("out"); out != "" {
		return writePNG(out, res.Target.Frame())
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("no frame presented")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
