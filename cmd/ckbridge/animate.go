package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/ckbridge"
	"github.com/gogpu/ckbridge/foreign"
	"github.com/gogpu/ckbridge/foreign/wasmheap"
	"github.com/gogpu/ckbridge/skottie"
	"github.com/gogpu/ckbridge/skottie/wasm"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/urfave/cli/v2"
)

var assetsFlag = &cli.PathFlag{
	Name:  "assets",
	Usage: "directory of animation assets; names are slash-separated relative paths",
}

var inspectCommand = &cli.Command{
	Name:   "inspect",
	Usage:  "classify the assets in a directory",
	Flags:  []cli.Flag{&cli.PathFlag{Name: "assets", Usage: assetsFlag.Usage, Required: true}},
	Action: inspectAssets,
}

var animateCommand = &cli.Command{
	Name:  "animate",
	Usage: "build an animation on a wasm engine build and apply property overrides",
	Flags: []cli.Flag{
		&cli.PathFlag{Name: "engine", Usage: "engine build (.wasm)", Required: true},
		&cli.PathFlag{Name: "json", Usage: "animation document", Required: true},
		assetsFlag,
		&cli.BoolFlag{Name: "retain", Usage: "keep asset buffers until the animation is deleted"},
		&cli.StringFlag{Name: "export-prefix", Usage: "prefix of the engine's exported symbols"},
		&cli.StringSliceFlag{Name: "color", Usage: "color override key=#rrggbb[aa]"},
		&cli.StringSliceFlag{Name: "opacity", Usage: "opacity override key=0..1"},
	},
	Action: animate,
}

// loadAssets reads every regular file under dir, keyed by its
// slash-separated path relative to dir.
func loadAssets(dir string) (skottie.Assets, error) {
	if dir == "" {
		return nil, nil
	}
	assets := make(skottie.Assets)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		assets[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	return assets, nil
}

func inspectAssets(ctx *cli.Context) error {
	assets, err := loadAssets(ctx.Path("assets"))
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	for _, info := range skottie.Inspect(assets) {
		switch info.Kind {
		case skottie.AssetImage:
			fmt.Fprintf(w, "%s\t%d\timage\t%s %dx%d\n", info.Name, info.Size, info.Format, info.Width, info.Height)
		case skottie.AssetFont:
			fmt.Fprintf(w, "%s\t%d\tfont\tupem %d\n", info.Name, info.Size, info.UnitsPerEm)
		default:
			fmt.Fprintf(w, "%s\t%d\t%s\n", info.Name, info.Size, info.Kind)
		}
	}
	return nil
}

// parseOverride splits key=value at the last '='; keys may contain '='.
func parseOverride(s string) (key, value string, err error) {
	i := strings.LastIndexByte(s, '=')
	if i <= 0 {
		return "", "", fmt.Errorf("override %q: want key=value", s)
	}
	return s[:i], s[i+1:], nil
}

// parseHexColor parses #rrggbb or #rrggbbaa.
func parseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseOpacity(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("opacity %q: %w", s, err)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("opacity %q: outside [0, 1]", s)
	}
	return float32(v), nil
}

func animate(ctx *cli.Context) (err error) {
	bin, err := os.ReadFile(ctx.Path("engine"))
	if err != nil {
		return err
	}
	doc, err := os.ReadFile(ctx.Path("json"))
	if err != nil {
		return err
	}
	assets, err := loadAssets(ctx.Path("assets"))
	if err != nil {
		return err
	}

	c := ctx.Context
	r := wazero.NewRuntime(c)
	defer r.Close(context.WithoutCancel(c))
	wasi_snapshot_preview1.MustInstantiate(c, r)

	mod, err := r.Instantiate(c, bin)
	if err != nil {
		return fmt.Errorf("instantiate engine: %w", err)
	}
	prefix := ctx.String("export-prefix")
	heap, err := wasmheap.New(c, mod, wasmheap.WithAllocator(prefix+wasmheap.DefaultMalloc, prefix+wasmheap.DefaultFree))
	if err != nil {
		return err
	}
	tracked := foreign.NewTracker(heap)
	eng := wasm.New(c, mod, tracked, wasm.WithExportPrefix(prefix))

	opts := []skottie.MarshallerOption{skottie.WithInspection()}
	if ctx.Bool("retain") {
		opts = append(opts, skottie.WithRetainedAssets())
	}
	anim, err := skottie.NewMarshaller(tracked, eng, opts...).MakeManagedAnimation(string(doc), assets)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, anim.Delete()) }()

	for _, o := range ctx.StringSlice("color") {
		key, val, err := parseOverride(o)
		if err != nil {
			return err
		}
		col, err := parseHexColor(val)
		if err != nil {
			return err
		}
		if err := anim.SetColor(key, col); err != nil {
			return err
		}
	}
	for _, o := range ctx.StringSlice("opacity") {
		key, val, err := parseOverride(o)
		if err != nil {
			return err
		}
		v, err := parseOpacity(val)
		if err != nil {
			return err
		}
		if err := anim.SetOpacity(key, v); err != nil {
			return err
		}
	}

	s := tracked.Stats()
	fmt.Fprintf(ctx.App.Writer, "animation %d: %d assets, %d allocations, %d live\n",
		anim.Ref(), len(assets), s.Allocs, s.Live)
	ckbridge.Logger().Debug("animate: done", "stats", s)
	return nil
}
