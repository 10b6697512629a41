package osge

import (
	"time"

	vk "github.com/vulkan-go/vulkan"
)

type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

func (d *Device) VKDestroyFence(f vk.Fence) {
	if f == vk.NullFence {
		d.nullDestroy("fence")
		return
	}
	vk.DestroyFence(d.VKDevice, f, nil)
}

func (d *Device) VKCreateFence(signaled bool) (vk.Fence, error) {
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var fence vk.Fence
	if err := vkErr(vk.CreateFence(d.VKDevice, &fenceCreateInfo, nil, &fence), "vkCreateFence"); err != nil {
		return vk.NullFence, err
	}
	return fence, nil
}

func (d *Device) CreateFence(signaled bool) (*Fence, error) {
	fence, err := d.VKCreateFence(signaled)
	if err != nil {
		return nil, err
	}
	return &Fence{VKFence: fence, Device: d}, nil
}

// VKWaitForFence blocks until f is signaled, a negative timeout waits forever
func (d *Device) VKWaitForFence(f vk.Fence, timeout time.Duration) error {
	ts := uint64(vk.MaxUint64)
	if timeout >= 0 {
		ts = uint64(timeout.Nanoseconds())
	}
	return vkErr(vk.WaitForFences(d.VKDevice, 1, []vk.Fence{f}, vk.True, ts), "vkWaitForFences")
}

func (d *Device) VKResetFence(f vk.Fence) error {
	return vkErr(vk.ResetFences(d.VKDevice, 1, []vk.Fence{f}), "vkResetFences")
}

func (f *Fence) Wait(timeout time.Duration) error {
	return f.Device.VKWaitForFence(f.VKFence, timeout)
}

func (f *Fence) Destroy() {
	f.Device.VKDestroyFence(f.VKFence)
	f.VKFence = vk.NullFence
}
