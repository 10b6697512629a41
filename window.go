package osge

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

func init() {
	// GLFW must only be driven from the main thread
	runtime.LockOSThread()
}

// Window is the windowing layer the renderer presents into
type Window interface {
	// FramebufferSize returns the drawable size in pixels, 0x0 while minimized
	FramebufferSize() (width, height int)
	// WaitEvents blocks until at least one event has been processed
	WaitEvents()
	PollEvents()
	ShouldClose() bool
	// Resized reports and clears a pending framebuffer resize
	Resized() bool
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
}

// GLFWWindow is a Window backed by a GLFW window created without a client API
type GLFWWindow struct {
	Window *glfw.Window

	resized bool
}

// NewGLFWWindow initializes GLFW and the Vulkan loader it exposes, then opens a resizable
// window of width by height screen coordinates
func NewGLFWWindow(title string, width, height int) (*GLFWWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "initializing glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("vulkan is not supported by glfw")
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "initializing vulkan")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "creating window")
	}

	w := &GLFWWindow{Window: window}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized = true
	})
	return w, nil
}

func (w *GLFWWindow) FramebufferSize() (int, int) {
	return w.Window.GetFramebufferSize()
}

func (w *GLFWWindow) WaitEvents() {
	glfw.WaitEvents()
}

func (w *GLFWWindow) PollEvents() {
	glfw.PollEvents()
}

func (w *GLFWWindow) ShouldClose() bool {
	return w.Window.ShouldClose()
}

func (w *GLFWWindow) Resized() bool {
	r := w.resized
	w.resized = false
	return r
}

func (w *GLFWWindow) RequiredInstanceExtensions() []string {
	return w.Window.GetRequiredInstanceExtensions()
}

// CreateSurface creates the presentation surface of the window on instance
func (w *GLFWWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := w.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "creating window surface")
	}
	return vk.SurfaceFromPointer(surface), nil
}

// Destroy closes the window and terminates GLFW
func (w *GLFWWindow) Destroy() {
	w.Window.Destroy()
	glfw.Terminate()
}

// waitWhileMinimized blocks on window events for as long as the framebuffer is empty. It
// returns false when the window was closed while waiting.
func waitWhileMinimized(win Window) bool {
	for {
		if win.ShouldClose() {
			return false
		}
		w, h := win.FramebufferSize()
		if w > 0 && h > 0 {
			return true
		}
		win.WaitEvents()
	}
}
