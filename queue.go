package osge

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type Queue struct {
	Device      *Device
	FamilyIndex int
	VKQueue     vk.Queue
}

func (q *Queue) WaitIdle() error {
	return vkErr(vk.QueueWaitIdle(q.VKQueue), "vkQueueWaitIdle")
}

// SubmitWithFence submits the buffers, fence is signaled once they complete and may be nil
func (q *Queue) SubmitWithFence(fence *Fence, buffers ...*CommandBuffer) error {
	b := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		b[i] = buffers[i].VKCommandBuffer
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(b)),
		PCommandBuffers:    b,
	}

	f := vk.NullFence
	if fence != nil {
		f = fence.VKFence
	}
	return vkErr(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, f), "vkQueueSubmit")
}

func (q *Queue) String() string {
	return fmt.Sprintf("{Device: %s QueueFamily: %d}", q.Device.String(), q.FamilyIndex)
}
