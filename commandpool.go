package osge

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type CommandPool struct {
	Device        *Device
	FamilyIndex   int
	VKCommandPool vk.CommandPool
}

func (c *CommandPool) Destroy() {
	if c.VKCommandPool == vk.NullCommandPool {
		c.Device.nullDestroy("command pool")
		return
	}
	vk.DestroyCommandPool(c.Device.VKDevice, c.VKCommandPool, nil)
	c.VKCommandPool = vk.NullCommandPool
}

func (c *CommandPool) AllocateBuffers(count int) ([]*CommandBuffer, error) {
	commandBufferAllocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.VKCommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}

	cmdBuffers := make([]vk.CommandBuffer, count)
	if err := vkErr(vk.AllocateCommandBuffers(c.Device.VKDevice, &commandBufferAllocateInfo, cmdBuffers), "vkAllocateCommandBuffers"); err != nil {
		return nil, err
	}

	ret := make([]*CommandBuffer, count)
	for i := range ret {
		ret[i] = &CommandBuffer{VKCommandBuffer: cmdBuffers[i]}
	}
	return ret, nil
}

func (c *CommandPool) AllocateBuffer() (*CommandBuffer, error) {
	ret, err := c.AllocateBuffers(1)
	if err != nil {
		return nil, err
	}
	return ret[0], nil
}

func (c *CommandPool) FreeBuffers(bs []*CommandBuffer) {
	if len(bs) == 0 {
		return
	}
	b := make([]vk.CommandBuffer, len(bs))
	for i := range bs {
		b[i] = bs[i].VKCommandBuffer
	}
	vk.FreeCommandBuffers(c.Device.VKDevice, c.VKCommandPool, uint32(len(bs)), b)
}

func (c *CommandPool) FreeBuffer(b *CommandBuffer) {
	vk.FreeCommandBuffers(c.Device.VKDevice, c.VKCommandPool, 1, []vk.CommandBuffer{b.VKCommandBuffer})
}

// RunOneTime records a single use command buffer with record, submits it to queue and
// waits on a fence for it to complete before freeing it
func (c *CommandPool) RunOneTime(queue *Queue, record func(cmd *CommandBuffer) error) error {
	cmd, err := c.AllocateBuffer()
	if err != nil {
		return errors.Wrap(err, "allocating one time command buffer")
	}
	defer c.FreeBuffer(cmd)

	if err := cmd.BeginOneTime(); err != nil {
		return err
	}
	if err := record(cmd); err != nil {
		return err
	}
	if err := cmd.End(); err != nil {
		return err
	}

	fence, err := c.Device.CreateFence(false)
	if err != nil {
		return err
	}
	defer fence.Destroy()
	if err := queue.SubmitWithFence(fence, cmd); err != nil {
		return err
	}
	return fence.Wait(-1)
}

// CreateCommandPool creates a pool whose buffers may be individually reset
func (d *Device) CreateCommandPool(familyIndex int) (*CommandPool, error) {
	commandPoolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: uint32(familyIndex),
	}

	var commandPool vk.CommandPool
	if err := vkErr(vk.CreateCommandPool(d.VKDevice, &commandPoolCreateInfo, nil, &commandPool), "vkCreateCommandPool"); err != nil {
		return nil, err
	}

	return &CommandPool{
		Device:        d,
		FamilyIndex:   familyIndex,
		VKCommandPool: commandPool,
	}, nil
}
