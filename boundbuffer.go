package osge

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// BoundBuffer is a buffer together with the memory bound to it
type BoundBuffer struct {
	*Buffer
	Memory *DeviceMemory
}

// CreateBoundBuffer creates a buffer, allocates memory with props from the lowest
// matching memory type and binds it
func (d *Device) CreateBoundBuffer(size uint64, usage vk.BufferUsageFlagBits, props vk.MemoryPropertyFlagBits) (*BoundBuffer, error) {
	buffer, err := d.CreateBuffer(size, usage)
	if err != nil {
		return nil, err
	}
	memory, err := d.AllocateForBuffer(buffer, props)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}
	if err := buffer.Bind(memory, 0); err != nil {
		buffer.Destroy()
		memory.Destroy()
		return nil, err
	}
	return &BoundBuffer{Buffer: buffer, Memory: memory}, nil
}

// Destroy destroys the buffer before freeing its memory
func (b *BoundBuffer) Destroy() {
	if b.Buffer != nil && b.VKBuffer != vk.NullBuffer {
		b.Buffer.Destroy()
	}
	if b.Memory != nil && b.Memory.VKDeviceMemory != vk.NullDeviceMemory {
		b.Memory.Destroy()
	}
}

// copyToMapped copies data into mapped memory at ptr and returns the bytes written
func copyToMapped(ptr unsafe.Pointer, data []byte) int {
	if ptr == nil || len(data) == 0 {
		return 0
	}
	return copy(ToBytes(ptr, len(data)), data)
}

// CreateStagingBuffer creates a host visible transfer source holding a copy of data
func (d *Device) CreateStagingBuffer(data []byte) (*BoundBuffer, error) {
	if len(data) == 0 {
		return nil, invalid("staging buffer with no data")
	}
	staging, err := d.CreateBoundBuffer(uint64(len(data)), vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, errors.Wrap(err, "creating staging buffer")
	}

	if err := staging.Memory.Write(0, data); err != nil {
		staging.Destroy()
		return nil, err
	}
	return staging, nil
}

// UploadBuffer copies bo into a new device local buffer through a staging buffer. usage is
// combined with the transfer destination bit.
func (pool *CommandPool) UploadBuffer(queue *Queue, bo BufferObject, usage vk.BufferUsageFlagBits) (*BoundBuffer, error) {
	data := bo.Bytes()
	staging, err := pool.Device.CreateStagingBuffer(data)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	size := uint64(len(data))
	dst, err := pool.Device.CreateBoundBuffer(size, usage|vk.BufferUsageTransferDstBit, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, errors.Wrap(err, "creating device local buffer")
	}

	err = pool.RunOneTime(queue, func(cmd *CommandBuffer) error {
		cmd.CmdCopyBuffer(staging.Buffer, dst.Buffer, size)
		return nil
	})
	if err != nil {
		dst.Destroy()
		return nil, errors.Wrap(err, "copying staged buffer")
	}
	return dst, nil
}
