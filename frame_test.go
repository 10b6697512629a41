package osge

import (
	"testing"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type submission struct {
	slot         int
	wait, signal vk.Semaphore
	fence        vk.Fence
}

type fakeDriver struct {
	images     int
	image      uint32
	acquireRes vk.Result
	presentRes vk.Result
	recordErr  error
	submitErr  error

	calls       []string
	submits     []submission
	presentWait vk.Semaphore
	resets      []vk.Fence
}

func (d *fakeDriver) imageCount() int { return d.images }

func (d *fakeDriver) waitForFence(f vk.Fence) error {
	d.calls = append(d.calls, "wait")
	return nil
}

func (d *fakeDriver) acquireImage(vk.Semaphore) (uint32, vk.Result) {
	d.calls = append(d.calls, "acquire")
	return d.image, d.acquireRes
}

func (d *fakeDriver) record(slot int, image uint32, elapsed time.Duration) error {
	d.calls = append(d.calls, "record")
	return d.recordErr
}

func (d *fakeDriver) resetFence(f vk.Fence) error {
	d.calls = append(d.calls, "reset")
	d.resets = append(d.resets, f)
	return nil
}

func (d *fakeDriver) submit(slot int, wait, signal vk.Semaphore, fence vk.Fence) error {
	d.calls = append(d.calls, "submit")
	d.submits = append(d.submits, submission{slot, wait, signal, fence})
	return d.submitErr
}

func (d *fakeDriver) present(image uint32, wait vk.Semaphore) vk.Result {
	d.calls = append(d.calls, "present")
	d.presentWait = wait
	return d.presentRes
}

func newTestSync(t *testing.T, n int) *FrameSync {
	t.Helper()
	s, err := newFrameSync(newFakeSyncFactory(), n, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFrameIndexSequence(t *testing.T) {
	d := &fakeDriver{images: 3}
	sync := newTestSync(t, 3)
	l := frameLoop{log: discardLogger()}

	want := []int{0, 1, 2, 0, 1, 2, 0}
	for i, w := range want {
		if l.frame != w {
			t.Fatalf("call %d used frame %d, want %d", i, l.frame, w)
		}
		d.image = uint32(l.frame)
		if res := l.draw(d, sync, 0); res != FrameSuccess {
			t.Fatalf("call %d = %v", i, res)
		}
	}
}

func TestFrameIndexAdvancesOnFailure(t *testing.T) {
	d := &fakeDriver{images: 2, acquireRes: vk.ErrorOutOfDate}
	sync := newTestSync(t, 2)
	l := frameLoop{log: discardLogger()}

	if res := l.draw(d, sync, 0); res != FrameRecreate {
		t.Fatalf("draw = %v, want recreate", res)
	}
	if l.frame != 1 {
		t.Errorf("frame = %d after a stale acquire, want 1", l.frame)
	}

	d.acquireRes = vk.ErrorDeviceLost
	if res := l.draw(d, sync, 0); res != FrameFailed {
		t.Fatalf("draw = %v, want failed", res)
	}
	if l.frame != 0 {
		t.Errorf("frame = %d after a failed acquire, want 0", l.frame)
	}
}

func TestTooFewFences(t *testing.T) {
	d := &fakeDriver{images: 3}
	sync := newTestSync(t, 3)
	sync.Fences = sync.Fences[:2]
	l := frameLoop{log: discardLogger()}

	for i := 0; i < 2; i++ {
		d.image = uint32(i)
		if res := l.draw(d, sync, 0); res != FrameSuccess {
			t.Fatalf("frame %d = %v", i, res)
		}
	}

	d.calls = nil
	if res := l.draw(d, sync, 0); res != FrameFailed {
		t.Fatalf("frame 2 = %v, want failed", res)
	}
	if len(d.calls) != 0 {
		t.Errorf("driver called for a slot without sync objects: %v", d.calls)
	}
	if l.frame != 0 {
		t.Errorf("frame = %d, want 0", l.frame)
	}
}

func TestRenderFinishedIndexedByImage(t *testing.T) {
	d := &fakeDriver{images: 3}
	sync := newTestSync(t, 3)
	l := frameLoop{log: discardLogger()}

	seen := map[unsafe.Pointer]bool{}
	for _, f := range sync.Fences {
		seen[unsafe.Pointer(f)] = true
	}
	for _, s := range append(append([]vk.Semaphore{}, sync.ImageAvailable...), sync.RenderFinished...) {
		seen[unsafe.Pointer(s)] = true
	}
	if len(seen) != 9 {
		t.Fatalf("%d distinct sync objects, want 9", len(seen))
	}

	// slot 0 acquires image 2, slot 1 acquires image 0
	for slot, image := range []uint32{2, 0} {
		d.image = image
		if res := l.draw(d, sync, 0); res != FrameSuccess {
			t.Fatalf("slot %d: draw = %v", slot, res)
		}
		s := d.submits[slot]
		if s.wait != sync.ImageAvailable[slot] {
			t.Errorf("slot %d: submit does not wait on the slot's image available semaphore", slot)
		}
		if s.signal != sync.RenderFinished[image] {
			t.Errorf("slot %d: submit does not signal render finished of image %d", slot, image)
		}
		if s.fence != sync.Fences[slot] {
			t.Errorf("slot %d: submit does not signal the slot fence", slot)
		}
		if d.presentWait != sync.RenderFinished[image] {
			t.Errorf("slot %d: present does not wait on render finished of image %d", slot, image)
		}
	}
}

func TestFrameStepOrder(t *testing.T) {
	d := &fakeDriver{images: 2}
	l := frameLoop{log: discardLogger()}
	l.draw(d, newTestSync(t, 2), 0)

	want := []string{"wait", "acquire", "record", "reset", "submit", "present"}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
	for i := range want {
		if d.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", d.calls, want)
		}
	}
}

func TestFrameResults(t *testing.T) {
	tests := []struct {
		name       string
		image      uint32
		acquire    vk.Result
		present    vk.Result
		recordErr  error
		submitErr  error
		want       FrameResult
		wantResets int
	}{
		{name: "success", want: FrameSuccess, wantResets: 1},
		{name: "acquire out of date", acquire: vk.ErrorOutOfDate, want: FrameRecreate},
		{name: "acquire suboptimal", acquire: vk.Suboptimal, want: FrameRecreate},
		{name: "acquire lost", acquire: vk.ErrorDeviceLost, want: FrameFailed},
		{name: "image out of range", image: 5, want: FrameFailed},
		{name: "record fails", recordErr: errors.New("boom"), want: FrameFailed},
		{name: "submit fails", submitErr: errors.New("boom"), want: FrameFailed, wantResets: 1},
		{name: "present out of date", present: vk.ErrorOutOfDate, want: FrameRecreate, wantResets: 1},
		{name: "present suboptimal", present: vk.Suboptimal, want: FrameRecreate, wantResets: 1},
		{name: "present lost", present: vk.ErrorDeviceLost, want: FrameFailed, wantResets: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDriver{
				images:     2,
				image:      tt.image,
				acquireRes: tt.acquire,
				presentRes: tt.present,
				recordErr:  tt.recordErr,
				submitErr:  tt.submitErr,
			}
			l := frameLoop{log: discardLogger()}
			if res := l.draw(d, newTestSync(t, 2), 0); res != tt.want {
				t.Errorf("draw = %v, want %v", res, tt.want)
			}
			if len(d.resets) != tt.wantResets {
				t.Errorf("%d fence resets, want %d", len(d.resets), tt.wantResets)
			}
		})
	}
}

func TestNextFrame(t *testing.T) {
	if got := nextFrame(2, 3); got != 0 {
		t.Errorf("nextFrame(2, 3) = %d", got)
	}
	if got := nextFrame(4, 0); got != 0 {
		t.Errorf("nextFrame(4, 0) = %d", got)
	}
}

func TestFrameResultString(t *testing.T) {
	names := map[FrameResult]string{
		FrameSuccess:   "success",
		FrameRecreate:  "recreate",
		FrameFailed:    "failed",
		FrameExit:      "exit",
		FrameResult(9): "FrameResult(9)",
	}
	for r, want := range names {
		if r.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(r), r.String(), want)
		}
	}
}

func TestFrameAbandonedAfterAcquire(t *testing.T) {
	tests := []struct {
		name   string
		driver fakeDriver
	}{
		{"image out of range", fakeDriver{images: 2, image: 5}},
		{"record fails", fakeDriver{images: 2, recordErr: errors.New("boom")}},
		{"submit fails", fakeDriver{images: 2, submitErr: errors.New("boom")}},
		{"present lost", fakeDriver{images: 2, presentRes: vk.ErrorDeviceLost}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.driver
			sync := newTestSync(t, 2)
			l := frameLoop{log: discardLogger()}

			if res := l.draw(&d, sync, 0); res != FrameFailed {
				t.Fatalf("first draw = %v, want failed", res)
			}
			d.calls = nil
			if res := l.draw(&d, sync, 0); res != FrameRecreate {
				t.Fatalf("draw after an abandoned image = %v, want recreate", res)
			}
			if len(d.calls) != 0 {
				t.Errorf("slot reused before recreate: %v", d.calls)
			}
			if l.frame != 0 {
				t.Errorf("frame = %d, want 0", l.frame)
			}

			l.reset()
			d = fakeDriver{images: 2}
			if res := l.draw(&d, sync, 0); res != FrameSuccess {
				t.Errorf("draw after reset = %v, want success", res)
			}
		})
	}
}

func TestFailedAcquireKeepsDrawing(t *testing.T) {
	d := &fakeDriver{images: 2, acquireRes: vk.ErrorDeviceLost}
	sync := newTestSync(t, 2)
	l := frameLoop{log: discardLogger()}

	if res := l.draw(d, sync, 0); res != FrameFailed {
		t.Fatalf("draw = %v, want failed", res)
	}
	d.acquireRes = vk.Success
	if res := l.draw(d, sync, 0); res != FrameSuccess {
		t.Errorf("draw after a failed acquire = %v, want success", res)
	}
}
