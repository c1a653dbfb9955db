package window

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Sizes are logical window units; DevicePixelRatio converts them to framebuffer pixels.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window size or its content scale changes.
	// The callback runs on the thread pumping messages.
	//
	// Parameters:
	//   - callback: function receiving the new logical size and device pixel ratio
	SetResizeCallback(callback func(vp common.Viewport))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyUpCallback(callback func(keyCode uint32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to exit. Safe to call from any goroutine.
	RequestClose()

	// Close destroys the window and releases platform resources. Must run on the main thread.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop on the calling (main) thread.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Viewport returns the current logical size and device pixel ratio.
	//
	// Returns:
	//   - common.Viewport: the viewport
	Viewport() common.Viewport

	// Width returns the current logical width.
	//
	// Returns:
	//   - int: width in window units
	Width() int

	// Height returns the current logical height.
	//
	// Returns:
	//   - int: height in window units
	Height() int

	// DevicePixelRatio returns the ratio of framebuffer pixels to window units.
	//
	// Returns:
	//   - float32: the ratio (1 on standard displays)
	DevicePixelRatio() float32
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	mu *sync.Mutex

	title     string
	minWidth  int
	minHeight int
	width     int
	height    int
	dpr       float32

	closeRequested atomic.Bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate  func()
	onResize  func(vp common.Viewport)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a new Window with the specified options.
// Must be called from the main goroutine; the calling OS thread is locked.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: error wrapping common.ErrConfiguration if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		mu:        &sync.Mutex{},
		title:     "oxy-stage",
		minWidth:  200,
		minHeight: 150,
		width:     1280,
		height:    720,
		dpr:       1,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(vp common.Viewport)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return !w.closeRequested.Load() && platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	w.closeRequested.Store(true)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !platformProcessMessages(w) {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Viewport() common.Viewport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return common.Viewport{Width: w.width, Height: w.height, DevicePixelRatio: w.dpr}
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

func (w *engineWindow) DevicePixelRatio() float32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dpr
}

// update stores a new logical size and/or scale and notifies the resize callback.
// Non-positive sizes (a minimised window) keep the stored dimension but are still reported.
func (w *engineWindow) update(width, height int, dpr float32) {
	w.mu.Lock()
	if width > 0 {
		w.width = width
	}
	if height > 0 {
		w.height = height
	}
	if dpr > 0 {
		w.dpr = dpr
	}
	vp := common.Viewport{Width: width, Height: height, DevicePixelRatio: w.dpr}
	w.mu.Unlock()

	if w.onResize != nil {
		w.onResize(vp)
	}
}
