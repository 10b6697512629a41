package osge

import (
	"testing"

	"github.com/pkg/errors"
)

func TestHandleDestroyOnce(t *testing.T) {
	v := 7
	released := 0
	h := NewHandle("thing", &v, func(p *int) {
		if p != &v {
			t.Errorf("released %p, want %p", p, &v)
		}
		released++
	}, discardLogger())

	if !h.Valid() || h.Get() != &v {
		t.Fatal("new handle does not own its value")
	}
	h.Destroy()
	h.Destroy()
	if released != 1 {
		t.Errorf("released %d times, want 1", released)
	}
	if h.Valid() || h.Get() != nil {
		t.Error("destroyed handle is not null")
	}
}

func TestHandleNil(t *testing.T) {
	var h *Handle[*int]
	if h.Valid() {
		t.Error("nil handle is valid")
	}
	if h.Get() != nil {
		t.Error("nil handle has a value")
	}
	h.Destroy()
}

func TestCreateHandleFailure(t *testing.T) {
	boom := errors.New("boom")
	h, err := CreateHandle("thing", func() (*int, error) {
		return nil, boom
	}, func(*int) { t.Error("release called for a failed create") }, discardLogger())
	if err != boom || h != nil {
		t.Errorf("CreateHandle = %v, %v", h, err)
	}
}

func TestHandleReplace(t *testing.T) {
	a, b := 1, 2
	var released []*int
	h := NewHandle("thing", &a, func(p *int) { released = append(released, p) }, discardLogger())
	h.Replace(&b)
	if h.Get() != &b {
		t.Error("Replace did not take ownership")
	}
	if len(released) != 1 || released[0] != &a {
		t.Errorf("released = %v, want the old value", released)
	}
}
