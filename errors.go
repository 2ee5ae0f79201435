package ckbridge

import (
	"errors"
	"strconv"
)

// Error taxonomy shared by the gpu and skottie packages.
//
// Every typed error below matches its sentinel with errors.Is, so callers
// can branch on the category without caring about the payload.
var (
	// ErrInvalidTarget is returned when a drawing target is missing.
	ErrInvalidTarget = errors.New("ckbridge: invalid drawing target")

	// ErrTargetNotFound is returned when a target registry lookup misses.
	ErrTargetNotFound = errors.New("ckbridge: drawing target not found")

	// ErrUnsupportedOption is returned for a rejected context configuration.
	ErrUnsupportedOption = errors.New("ckbridge: unsupported option")

	// ErrGpuContextCreation is returned when the GPU layer yields no usable context.
	ErrGpuContextCreation = errors.New("ckbridge: failed to create GPU context")

	// ErrFeatureNotCompiled is returned when the loaded engine build lacks an entry point.
	ErrFeatureNotCompiled = errors.New("ckbridge: feature not compiled into engine")
)

// TargetNotFoundError reports the ID that did not resolve.
type TargetNotFoundError struct {
	ID string
}

func (e *TargetNotFoundError) Error() string {
	return "ckbridge: drawing target with id " + strconv.Quote(e.ID) + " was not found"
}

// Is reports whether target is ErrTargetNotFound.
func (e *TargetNotFoundError) Is(target error) bool { return target == ErrTargetNotFound }

// UnsupportedOptionError names the rejected option.
type UnsupportedOptionError struct {
	Option string
	Reason string
}

func (e *UnsupportedOptionError) Error() string {
	msg := "ckbridge: " + e.Option + " is not supported"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether target is ErrUnsupportedOption.
func (e *UnsupportedOptionError) Is(target error) bool { return target == ErrUnsupportedOption }

// GpuContextCreationError carries the handle returned by the GPU layer.
type GpuContextCreationError struct {
	Handle int32
	Reason string
}

func (e *GpuContextCreationError) Error() string {
	msg := "ckbridge: failed to create GPU context: err " + strconv.FormatInt(int64(e.Handle), 10)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// Is reports whether target is ErrGpuContextCreation.
func (e *GpuContextCreationError) Is(target error) bool { return target == ErrGpuContextCreation }

// FeatureNotCompiledError names the missing engine entry point.
type FeatureNotCompiledError struct {
	Entry string
}

func (e *FeatureNotCompiledError) Error() string {
	return "ckbridge: engine not compiled with " + e.Entry
}

// Is reports whether target is ErrFeatureNotCompiled.
func (e *FeatureNotCompiledError) Is(target error) bool { return target == ErrFeatureNotCompiled }
