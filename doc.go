// Package ckbridge is the host-side boundary between a Go application and a
// native rendering engine that lives in a sandboxed linear heap.
//
// # Overview
//
// The engine is reached only through numeric addresses and explicit
// allocate/write/free operations. ckbridge covers the two places where that
// boundary has real invariants:
//
//   - GPU surface provisioning (package gpu). A drawing target gets a GPU
//     rendering context and an on-screen surface. When the GPU surface cannot
//     be built, the target is swapped for a structural clone and a software
//     surface is returned instead. Context creation failures are still errors.
//   - Named-blob marshalling (package skottie). A map of asset name to bytes
//     is copied into the foreign heap, indexed by three packed arrays and
//     handed to the native animation constructor. The boundary's own
//     allocations are released on every exit path.
//
// # Architecture
//
// The module is organized into:
//   - ckbridge: error taxonomy and logging shared by all sub-packages
//   - foreign: foreign memory model (Heap, Scope, packed arrays, Tracker, Arena)
//   - foreign/wasmheap: Heap backed by a wazero module
//   - target: drawing targets and their document registry
//   - surface: GPU and raster surface handles
//   - gpu: context options, current-context registry, surface provisioning
//   - skottie: asset marshalling and managed animation handles
//   - skottie/wasm: skottie.Engine backed by wazero exports
//   - cmd/ckbridge: command line front end
//
// # Logging
//
// ckbridge is silent by default. Call [SetLogger] to route diagnostics,
// including the GPU to software fallback notice, to a [log/slog] handler.
package ckbridge

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
