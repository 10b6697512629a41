package osge

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	ErrNoDevice              = errors.New("no suitable physical device found")
	ErrNoMemoryType          = errors.New("no matching memory type found")
	ErrNoDepthFormat         = errors.New("no supported depth format found")
	ErrUnsupportedTransition = errors.New("unsupported image layout transition")
	ErrSyncMismatch          = errors.New("fence and semaphore counts do not match")
	ErrNullHandle            = errors.New("null handle")
	ErrMissingResource       = errors.New("missing resource")
	ErrNoShaders             = errors.New("no usable shaders found")
	ErrInvalidArgument       = errors.New("invalid argument")
)

// vkErr wraps a non-success Vulkan result with the name of the call that produced it
func vkErr(res vk.Result, call string) error {
	if res == vk.Success {
		return nil
	}
	err := vk.Error(res)
	if err == nil {
		err = errors.Errorf("vulkan result %d", res)
	}
	return errors.Wrap(err, call)
}

func missing(what string) error {
	return errors.Wrap(ErrMissingResource, what)
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}
