package application

import (
	"sync"
	"sync/atomic"
)

// Rect is the on-screen area occupied by an open form.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point lies inside the rectangle, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Viewport is the page behind a modal form.
type Viewport interface {
	SuspendScroll()
	RestoreScroll()
}

// Overlay tracks a modal form's lifetime. Opening it suspends page scroll;
// closing it, by any path, restores scroll exactly once.
type Overlay struct {
	bounds   Rect
	viewport Viewport
	onClose  func()
	once     sync.Once
	closed   atomic.Bool
}

// OpenOverlay suspends scrolling on viewport and returns the open overlay.
// Either argument may be nil for surfaces without a page or a callback.
func OpenOverlay(bounds Rect, viewport Viewport, onClose func()) *Overlay {
	o := &Overlay{bounds: bounds, viewport: viewport, onClose: onClose}
	if viewport != nil {
		viewport.SuspendScroll()
	}
	return o
}

// PointerDown closes the overlay when the press lands outside its bounds and
// reports whether it did.
func (o *Overlay) PointerDown(x, y float64) bool {
	if o == nil || o.closed.Load() {
		return false
	}
	if o.bounds.Contains(x, y) {
		return false
	}
	o.Close()
	return true
}

// Close dismisses the overlay. Calls after the first are no-ops.
func (o *Overlay) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		o.closed.Store(true)
		if o.viewport != nil {
			o.viewport.RestoreScroll()
		}
		if o.onClose != nil {
			o.onClose()
		}
	})
}

// Closed reports whether the overlay has been dismissed.
func (o *Overlay) Closed() bool {
	return o == nil || o.closed.Load()
}
