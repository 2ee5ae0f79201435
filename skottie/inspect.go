// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package skottie

import (
	"bytes"
	"image"
	"log/slog"

	// Decoders for image assets.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-text/typesetting/font"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// AssetKind classifies an asset blob.
type AssetKind uint8

const (
	// AssetOpaque is any blob that is not a recognized font or image.
	AssetOpaque AssetKind = iota
	// AssetFont is an OpenType or TrueType font.
	AssetFont
	// AssetImage is a raster image in a registered format.
	AssetImage
)

// String returns the kind name.
func (k AssetKind) String() string {
	switch k {
	case AssetFont:
		return "font"
	case AssetImage:
		return "image"
	default:
		return "opaque"
	}
}

// AssetInfo describes one asset.
type AssetInfo struct {
	Name string
	Size int
	Kind AssetKind

	// Format is the image format name for images.
	Format string

	// Width and Height are image dimensions.
	Width, Height int

	// UnitsPerEm is the font design grid size for fonts.
	UnitsPerEm int
}

// LogValue implements slog.LogValuer.
func (i AssetInfo) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("name", i.Name),
		slog.Int("size", i.Size),
		slog.String("kind", i.Kind.String()),
	}
	switch i.Kind {
	case AssetImage:
		attrs = append(attrs, slog.String("format", i.Format), slog.Int("width", i.Width), slog.Int("height", i.Height))
	case AssetFont:
		attrs = append(attrs, slog.Int("upem", i.UnitsPerEm))
	}
	return slog.GroupValue(attrs...)
}

// Inspect classifies every asset, in sorted name order. It never fails;
// unparseable blobs are AssetOpaque.
func Inspect(assets Assets) []AssetInfo {
	out := make([]AssetInfo, 0, len(assets))
	for _, name := range assets.Keys() {
		out = append(out, inspectBlob(name, assets[name]))
	}
	return out
}

func inspectBlob(name string, blob []byte) AssetInfo {
	info := AssetInfo{Name: name, Size: len(blob)}
	if len(blob) == 0 {
		return info
	}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(blob)); err == nil {
		info.Kind = AssetImage
		info.Format = format
		info.Width = cfg.Width
		info.Height = cfg.Height
		return info
	}
	if face, err := font.ParseTTF(bytes.NewReader(blob)); err == nil {
		info.Kind = AssetFont
		info.UnitsPerEm = int(face.Upem())
	}
	return info
}
