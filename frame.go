package osge

import (
	"fmt"
	"time"

	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// FrameResult is the outcome of drawing one frame
type FrameResult int

const (
	// FrameSuccess means the frame was submitted and queued for presentation
	FrameSuccess FrameResult = iota
	// FrameRecreate means the swapchain no longer matches the surface
	FrameRecreate
	// FrameFailed means the frame was dropped, the loop may continue
	FrameFailed
	// FrameExit means the window was closed and the loop must stop
	FrameExit
)

func (r FrameResult) String() string {
	switch r {
	case FrameSuccess:
		return "success"
	case FrameRecreate:
		return "recreate"
	case FrameFailed:
		return "failed"
	case FrameExit:
		return "exit"
	}
	return fmt.Sprintf("FrameResult(%d)", int(r))
}

// frameDriver performs the GPU side of each step of a frame
type frameDriver interface {
	imageCount() int
	waitForFence(f vk.Fence) error
	acquireImage(imageAvailable vk.Semaphore) (uint32, vk.Result)
	// record resets and records the command buffer of slot for image and writes the
	// uniform block of slot
	record(slot int, image uint32, elapsed time.Duration) error
	resetFence(f vk.Fence) error
	submit(slot int, wait, signal vk.Semaphore, fence vk.Fence) error
	present(image uint32, wait vk.Semaphore) vk.Result
}

// stale reports whether res means the swapchain has to be recreated
func stale(res vk.Result) bool {
	return res == vk.ErrorOutOfDate || res == vk.Suboptimal
}

// frameLoop tracks the frame slot the next call will use
type frameLoop struct {
	frame int
	// abandoned is set once a frame failed while holding an acquired image. Its
	// image available semaphore stays signaled and the image is never presented, so
	// nothing more is drawn until the swapchain and sync objects are rebuilt.
	abandoned bool
	log       *slog.Logger
}

// reset starts over on slot 0 with fresh sync objects
func (l *frameLoop) reset() {
	l.frame = 0
	l.abandoned = false
}

// nextFrame returns the slot following frame for n images
func nextFrame(frame, n int) int {
	if n <= 0 {
		return 0
	}
	return (frame + 1) % n
}

// draw runs one frame on the current slot and advances the slot whatever the outcome
func (l *frameLoop) draw(d frameDriver, sync *FrameSync, elapsed time.Duration) FrameResult {
	res := FrameRecreate
	if !l.abandoned {
		res = l.drawSlot(d, sync, l.frame, elapsed)
	}
	l.frame = nextFrame(l.frame, d.imageCount())
	return res
}

func (l *frameLoop) drawSlot(d frameDriver, sync *FrameSync, slot int, elapsed time.Duration) FrameResult {
	if slot < 0 || slot >= len(sync.Fences) || slot >= len(sync.ImageAvailable) {
		l.log.Error("frame slot has no sync objects",
			slog.Int("frame", slot),
			slog.Int("fences", len(sync.Fences)),
			slog.Int("semaphores", len(sync.ImageAvailable)))
		return FrameFailed
	}
	fence := sync.Fences[slot]

	if err := d.waitForFence(fence); err != nil {
		l.log.Error("waiting for frame fence", slog.Int("frame", slot), slog.Any("error", err))
		return FrameFailed
	}

	image, res := d.acquireImage(sync.ImageAvailable[slot])
	switch {
	case stale(res):
		return FrameRecreate
	case res != vk.Success:
		l.log.Error("acquiring swapchain image", slog.Int("frame", slot), slog.Any("error", vkErr(res, "vkAcquireNextImageKHR")))
		return FrameFailed
	}
	if int(image) >= len(sync.RenderFinished) {
		l.log.Error("acquired image has no render finished semaphore",
			slog.Int("image", int(image)),
			slog.Int("semaphores", len(sync.RenderFinished)))
		return l.abandon()
	}
	renderFinished := sync.RenderFinished[image]

	// the fence is reset only once a submit that signals it is certain to follow
	if err := d.record(slot, image, elapsed); err != nil {
		l.log.Error("recording frame", slog.Int("frame", slot), slog.Any("error", err))
		return l.abandon()
	}
	if err := d.resetFence(fence); err != nil {
		l.log.Error("resetting frame fence", slog.Int("frame", slot), slog.Any("error", err))
		return l.abandon()
	}
	if err := d.submit(slot, sync.ImageAvailable[slot], renderFinished, fence); err != nil {
		l.log.Error("submitting frame", slog.Int("frame", slot), slog.Any("error", err))
		return l.abandon()
	}

	res = d.present(image, renderFinished)
	switch {
	case stale(res):
		return FrameRecreate
	case res != vk.Success:
		l.log.Error("presenting frame", slog.Int("image", int(image)), slog.Any("error", vkErr(res, "vkQueuePresentKHR")))
		return l.abandon()
	}
	return FrameSuccess
}

// abandon drops the current frame after its image was acquired. The next draw asks for a
// recreate instead of reusing the slot.
func (l *frameLoop) abandon() FrameResult {
	l.abandoned = true
	return FrameFailed
}
