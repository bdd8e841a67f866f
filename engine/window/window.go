package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/surface"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides a platform window the viewer renders into, together with the pointer input
// that drives the orbit controls. It implements surface.Container.
type Window interface {
	surface.Container

	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetDragStartCallback sets the callback for the primary button being pressed.
	//
	// Parameters:
	//   - callback: function to call when a drag starts
	SetDragStartCallback(callback func())

	// SetDragCallback sets the callback for pointer movement while the primary button is held.
	//
	// Parameters:
	//   - callback: function receiving the movement since the previous event, in pixels
	SetDragCallback(callback func(dx, dy float32))

	// SetDragEndCallback sets the callback for the primary button being released.
	//
	// Parameters:
	//   - callback: function to call when a drag ends
	SetDragEndCallback(callback func())

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close asks the window to close. Safe to call from any goroutine; ProcessMessages returns and
	// releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed, then releases it. Calls the update callback each iteration.
	ProcessMessages()
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	mu *sync.Mutex

	// title is the window title displayed in the title bar.
	title string

	// width and height are the framebuffer size in pixels. They are read from the viewer's tick goroutine.
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// dragging is true while the primary button is held.
	dragging     bool
	lastX, lastY float64

	onUpdate    func()
	onResize    func(width, height int)
	onScroll    func(delta float32)
	onDragStart func()
	onDrag      func(dx, dy float32)
	onDragEnd   func()
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options and spawns the platform window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		mu:     &sync.Mutex{},
		title:  "oxy viewer",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetDragStartCallback(callback func()) {
	w.onDragStart = callback
}

func (w *engineWindow) SetDragCallback(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *engineWindow) SetDragEndCallback(callback func()) {
	w.onDragEnd = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
	platformDestroyWindow(w)
}

// handleFramebufferSize records a framebuffer resize and forwards it.
func (w *engineWindow) handleFramebufferSize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *engineWindow) handleScroll(yoff float64) {
	if w.onScroll != nil {
		w.onScroll(float32(yoff))
	}
}

// handlePrimaryButton starts or ends a drag at the given cursor position.
func (w *engineWindow) handlePrimaryButton(pressed bool, x, y float64) {
	if pressed == w.dragging {
		return
	}
	w.dragging = pressed
	w.lastX, w.lastY = x, y
	switch {
	case pressed && w.onDragStart != nil:
		w.onDragStart()
	case !pressed && w.onDragEnd != nil:
		w.onDragEnd()
	}
}

// handleCursor reports pointer movement as a drag delta while a drag is active.
func (w *engineWindow) handleCursor(x, y float64) {
	if !w.dragging {
		return
	}
	dx, dy := x-w.lastX, y-w.lastY
	w.lastX, w.lastY = x, y
	if w.onDrag != nil && (dx != 0 || dy != 0) {
		w.onDrag(float32(dx), float32(dy))
	}
}
