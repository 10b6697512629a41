package osge

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// syncObjectFactory creates and destroys the native objects FrameSync owns
type syncObjectFactory interface {
	createFence(signaled bool) (vk.Fence, error)
	destroyFence(f vk.Fence)
	createSemaphore() (vk.Semaphore, error)
	destroySemaphore(s vk.Semaphore)
}

type deviceSyncFactory struct {
	device *Device
}

func (f deviceSyncFactory) createFence(signaled bool) (vk.Fence, error) {
	return f.device.VKCreateFence(signaled)
}

func (f deviceSyncFactory) destroyFence(fence vk.Fence) {
	f.device.VKDestroyFence(fence)
}

func (f deviceSyncFactory) createSemaphore() (vk.Semaphore, error) {
	return f.device.VKCreateSemaphore()
}

func (f deviceSyncFactory) destroySemaphore(s vk.Semaphore) {
	f.device.VKDestroySemaphore(s)
}

// FrameSync holds one fence and two semaphores per swapchain image. The semaphores are
// created as a single block of 2N which is split in half: the first half signals image
// acquisition and is indexed by frame slot, the second signals render completion and is
// indexed by the acquired image.
type FrameSync struct {
	Fences         []vk.Fence
	ImageAvailable []vk.Semaphore
	RenderFinished []vk.Semaphore

	semaphores []vk.Semaphore
	factory    syncObjectFactory
	log        *slog.Logger
}

// NewFrameSync creates the synchronization objects for n swapchain images
func NewFrameSync(d *Device, n int, log *slog.Logger) (*FrameSync, error) {
	return newFrameSync(deviceSyncFactory{device: d}, n, log)
}

func newFrameSync(factory syncObjectFactory, n int, log *slog.Logger) (*FrameSync, error) {
	s := &FrameSync{factory: factory, log: log}
	if err := s.Rebuild(n); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of frame slots
func (s *FrameSync) Len() int {
	return len(s.Fences)
}

// Validate checks that there is exactly one fence, one image available and one render
// finished semaphore per swapchain image
func (s *FrameSync) Validate(images int) error {
	if len(s.Fences) != images || len(s.ImageAvailable) != images || len(s.RenderFinished) != images {
		return errors.Wrapf(ErrSyncMismatch, "%d images, %d fences, %d image available, %d render finished",
			images, len(s.Fences), len(s.ImageAvailable), len(s.RenderFinished))
	}
	return nil
}

// Rebuild releases whatever is still held and creates a full set for n images. The device
// must be idle. Fences start signaled so the first wait on each slot returns at once.
func (s *FrameSync) Rebuild(n int) error {
	if n <= 0 {
		return invalid("frame sync for %d images", n)
	}
	s.Destroy()

	for i := 0; i < 2*n; i++ {
		sem, err := s.factory.createSemaphore()
		if err != nil {
			s.Destroy()
			return errors.Wrapf(err, "creating semaphore %d", i)
		}
		s.semaphores = append(s.semaphores, sem)
	}
	s.ImageAvailable = s.semaphores[:n:n]
	s.RenderFinished = s.semaphores[n:]

	for i := 0; i < n; i++ {
		f, err := s.factory.createFence(true)
		if err != nil {
			s.Destroy()
			return errors.Wrapf(err, "creating fence %d", i)
		}
		s.Fences = append(s.Fences, f)
	}

	if err := s.Validate(n); err != nil {
		s.Destroy()
		return err
	}
	s.log.Debug("frame sync ready", slog.Int("images", n))
	return nil
}

// DestroySemaphores releases both semaphore halves
func (s *FrameSync) DestroySemaphores() {
	for _, sem := range s.semaphores {
		s.factory.destroySemaphore(sem)
	}
	s.semaphores = nil
	s.ImageAvailable = nil
	s.RenderFinished = nil
}

// DestroyFences releases the fences
func (s *FrameSync) DestroyFences() {
	for _, f := range s.Fences {
		s.factory.destroyFence(f)
	}
	s.Fences = nil
}

// Destroy releases every object
func (s *FrameSync) Destroy() {
	s.DestroySemaphores()
	s.DestroyFences()
}
