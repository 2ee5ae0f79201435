// Package gpu provisions drawable surfaces for a drawing target.
//
// A Provisioner first establishes a GPU rendering context for the target
// and makes it the current context in a ContextRegistry, then asks the
// engine for an on-screen GPU surface sized to the target's backing buffer.
//
// When the engine cannot build the GPU surface, the Provisioner degrades to
// software rendering instead of failing:
//
//  1. a warning is logged,
//  2. the target is cloned (no GPU-locked state is carried over),
//  3. the clone takes the original's place in its container,
//  4. the clone is tagged with target.ReplacedClass,
//  5. the software surface constructor builds a surface on the clone.
//
// The outcome is reported as a Result whose State is StateGPU or
// StateSoftware. A failure to create the rendering context itself is still
// an error (ckbridge.ErrGpuContextCreation); only surface creation degrades.
//
// Usage:
//
//	p := gpu.New(engine, doc)
//	res, err := p.Surface(target.ByID("main"), surface.ColorSpaceUnspecified)
//	if err != nil {
//	    return err
//	}
//	if res.State == gpu.StateSoftware {
//	    // res.Target is the replacement canvas
//	}
package gpu
