package osge

import (
	"golang.org/x/exp/slog"
)

// Handle is a scoped owner of a single native Vulkan object. It replaces the per resource
// create/destroy wrapper pairs: the object is released exactly once by Destroy, which is
// safe to call on every exit path.
//
// T is one of the vulkan-go handle types, all of which are comparable and whose zero value
// is the null handle.
type Handle[T comparable] struct {
	kind    string
	value   T
	release func(T)
	log     *slog.Logger
}

// NewHandle takes ownership of value. release is called by Destroy with the owned value.
func NewHandle[T comparable](kind string, value T, release func(T), log *slog.Logger) *Handle[T] {
	return &Handle[T]{kind: kind, value: value, release: release, log: log}
}

// CreateHandle runs create and wraps the result. A failed create never produces a handle.
func CreateHandle[T comparable](kind string, create func() (T, error), release func(T), log *slog.Logger) (*Handle[T], error) {
	v, err := create()
	if err != nil {
		return nil, err
	}
	return NewHandle(kind, v, release, log), nil
}

// Get returns the owned value, which is the null handle after Destroy
func (h *Handle[T]) Get() T {
	if h == nil {
		var zero T
		return zero
	}
	return h.value
}

// Valid reports whether the handle still owns a native object
func (h *Handle[T]) Valid() bool {
	var zero T
	return h != nil && h.value != zero
}

// Destroy releases the native object and nulls the handle. Destroying a null handle is
// logged and otherwise ignored, so partially built object graphs can always be unwound.
func (h *Handle[T]) Destroy() {
	if !h.Valid() {
		kind := "unknown"
		if h != nil {
			kind = h.kind
		}
		logger(h).Error("destroy called on null handle", slog.String("kind", kind))
		return
	}
	if h.release != nil {
		h.release(h.value)
	}
	var zero T
	h.value = zero
}

// Replace destroys the current object, if any, and takes ownership of v
func (h *Handle[T]) Replace(v T) {
	if h.Valid() {
		h.Destroy()
	}
	h.value = v
}

func logger[T comparable](h *Handle[T]) *slog.Logger {
	if h == nil || h.log == nil {
		return slog.Default()
	}
	return h.log
}
