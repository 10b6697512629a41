package osge

import (
	"testing"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type fakeSyncFactory struct {
	fences     map[vk.Fence]bool
	semaphores map[vk.Semaphore]bool
	signaled   int
	// failAfter makes creation fail once this many objects exist, 0 never fails
	failAfter int
}

func newFakeSyncFactory() *fakeSyncFactory {
	return &fakeSyncFactory{fences: map[vk.Fence]bool{}, semaphores: map[vk.Semaphore]bool{}}
}

func (f *fakeSyncFactory) live() int {
	return len(f.fences) + len(f.semaphores)
}

func (f *fakeSyncFactory) full() bool {
	return f.failAfter > 0 && f.live() >= f.failAfter
}

func (f *fakeSyncFactory) createFence(signaled bool) (vk.Fence, error) {
	if f.full() {
		return vk.NullFence, errors.New("out of fences")
	}
	if signaled {
		f.signaled++
	}
	fence := fakeFence()
	f.fences[fence] = true
	return fence, nil
}

func (f *fakeSyncFactory) destroyFence(fence vk.Fence) {
	delete(f.fences, fence)
}

func (f *fakeSyncFactory) createSemaphore() (vk.Semaphore, error) {
	if f.full() {
		return vk.NullSemaphore, errors.New("out of semaphores")
	}
	s := fakeSemaphore()
	f.semaphores[s] = true
	return s, nil
}

func (f *fakeSyncFactory) destroySemaphore(s vk.Semaphore) {
	delete(f.semaphores, s)
}

func checkCounts(t *testing.T, s *FrameSync, n int) {
	t.Helper()
	if len(s.Fences) != n || len(s.ImageAvailable) != n || len(s.RenderFinished) != n {
		t.Fatalf("got %d fences, %d image available, %d render finished, want %d of each",
			len(s.Fences), len(s.ImageAvailable), len(s.RenderFinished), n)
	}
	if err := s.Validate(n); err != nil {
		t.Fatalf("Validate(%d) = %v", n, err)
	}
}

func TestFrameSyncCreate(t *testing.T) {
	f := newFakeSyncFactory()
	s, err := newFrameSync(f, 3, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	checkCounts(t, s, 3)
	if f.signaled != 3 {
		t.Errorf("%d fences created signaled, want 3", f.signaled)
	}
	if f.live() != 9 {
		t.Errorf("%d live objects, want 9", f.live())
	}

	seen := map[vk.Semaphore]bool{}
	for _, sem := range append(append([]vk.Semaphore{}, s.ImageAvailable...), s.RenderFinished...) {
		if seen[sem] {
			t.Fatal("semaphore shared between halves")
		}
		seen[sem] = true
	}
}

func TestFrameSyncRecreate(t *testing.T) {
	f := newFakeSyncFactory()
	s, err := newFrameSync(f, 3, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	s.DestroySemaphores()
	if len(f.semaphores) != 0 {
		t.Fatalf("%d semaphores survived DestroySemaphores", len(f.semaphores))
	}
	if err := s.Rebuild(2); err != nil {
		t.Fatal(err)
	}
	checkCounts(t, s, 2)
	if f.live() != 6 {
		t.Errorf("%d live objects after rebuild, want 6", f.live())
	}

	if err := s.Rebuild(4); err != nil {
		t.Fatal(err)
	}
	checkCounts(t, s, 4)
	if f.live() != 12 {
		t.Errorf("%d live objects after rebuild, want 12", f.live())
	}

	s.Destroy()
	if f.live() != 0 {
		t.Errorf("%d objects leaked", f.live())
	}
}

func TestFrameSyncValidate(t *testing.T) {
	s, err := newFrameSync(newFakeSyncFactory(), 3, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Validate(2); errors.Cause(err) != ErrSyncMismatch {
		t.Errorf("Validate(2) = %v, want ErrSyncMismatch", err)
	}
	s.RenderFinished = s.RenderFinished[:2]
	if err := s.Validate(3); errors.Cause(err) != ErrSyncMismatch {
		t.Errorf("Validate with a short render finished half = %v, want ErrSyncMismatch", err)
	}
}

func TestFrameSyncCreateFailure(t *testing.T) {
	f := newFakeSyncFactory()
	f.failAfter = 7
	if _, err := newFrameSync(f, 3, discardLogger()); err == nil {
		t.Fatal("expected an error")
	}
	if f.live() != 0 {
		t.Errorf("%d objects leaked by a failed create", f.live())
	}
}

func TestFrameSyncInvalidCount(t *testing.T) {
	if _, err := newFrameSync(newFakeSyncFactory(), 0, discardLogger()); errors.Cause(err) != ErrInvalidArgument {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
