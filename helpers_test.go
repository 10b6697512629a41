package osge

import (
	"io"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeHandles backs the stand in native handles. The handle types point at incomplete
// C types, so a fresh allocation may be placed on the stack and share its address with
// every other one; addresses into a package level array stay distinct.
var (
	fakeHandles [1 << 16]byte
	fakeNext    int
)

// fakePtr returns a distinct non nil pointer usable as a stand in native handle
func fakePtr() unsafe.Pointer {
	p := unsafe.Pointer(&fakeHandles[fakeNext%len(fakeHandles)])
	fakeNext++
	return p
}

func fakeFence() vk.Fence {
	return vk.Fence(fakePtr())
}

func fakeSemaphore() vk.Semaphore {
	return vk.Semaphore(fakePtr())
}
