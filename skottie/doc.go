// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package skottie moves animation assets into the engine's heap and wraps
// the animations the engine builds from them.
//
// Assets are named binary blobs (fonts, images) referenced by an animation
// document. The engine reads them through three parallel packed arrays:
// NUL-terminated UTF-8 names, data addresses and byte sizes, all in one
// shared order. A Marshaller builds those arrays on a foreign.Heap, calls
// the engine and frees what it allocated.
//
// Example:
//
//	m := skottie.NewMarshaller(heap, engine)
//	anim, err := m.MakeManagedAnimation(doc, skottie.Assets{
//		"fonts/Roboto.ttf": roboto,
//		"img_0.png":        logo,
//	})
//	if err != nil {
//		return err
//	}
//	defer anim.Delete()
//	_ = anim.SetColor("Background", color.NRGBA{R: 0x20, A: 0xff})
package skottie
