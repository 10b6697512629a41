package osge

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// UniformPool is a single host visible buffer carved into one uniform block per frame
// slot. Vulkan limits the number of memory allocations an application can make, so the
// slots share one allocation which stays mapped for the lifetime of the pool.
type UniformPool struct {
	*BoundBuffer
	Allocator LinearAllocator
	Slots     []*Allocation
	// BlockSize is the size of the uniform block stored in each slot
	BlockSize uint64
}

// CreateUniformPool allocates count uniform blocks of blockSize bytes, each aligned to the
// device's minimum uniform buffer offset alignment
func (d *Device) CreateUniformPool(count int, blockSize uint64) (*UniformPool, error) {
	if count <= 0 || blockSize == 0 {
		return nil, invalid("uniform pool of %d blocks of %d bytes", count, blockSize)
	}
	align := uint64(d.PhysicalDevice.VKPhysicalDeviceProperties.Limits.MinUniformBufferOffsetAlignment)
	stride := makeAlignUp(blockSize, align)

	bb, err := d.CreateBoundBuffer(stride*uint64(count), vk.BufferUsageUniformBufferBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, errors.Wrap(err, "creating uniform buffer")
	}

	u := &UniformPool{
		BoundBuffer: bb,
		Allocator:   LinearAllocator{Size: bb.Size},
		BlockSize:   blockSize,
	}
	for i := 0; i < count; i++ {
		a := u.Allocator.Allocate(blockSize, align)
		if a == nil {
			u.Destroy()
			return nil, errors.Errorf("uniform pool exhausted at block %d", i)
		}
		u.Slots = append(u.Slots, a)
	}

	if _, err := bb.Memory.Map(); err != nil {
		u.Destroy()
		return nil, err
	}
	return u, nil
}

// Bytes returns the mapped bytes of slot i, nil when the slot does not exist or the pool
// is not mapped
func (u *UniformPool) Bytes(i int) []byte {
	if i < 0 || i >= len(u.Slots) || u.Memory.Ptr == nil {
		return nil
	}
	a := u.Slots[i]
	all := ToBytes(u.Memory.Ptr, int(u.Memory.Size))
	return all[a.Offset : a.Offset+a.Size]
}

// Write copies bo into slot i
func (u *UniformPool) Write(i int, bo BufferObject) error {
	dst := u.Bytes(i)
	if dst == nil {
		return missing("uniform slot")
	}
	data := bo.Bytes()
	if uint64(len(data)) > u.BlockSize {
		return invalid("uniform data of %d bytes exceeds block of %d", len(data), u.BlockSize)
	}
	copy(dst, data)
	return nil
}

// DSInfo describes slot i for a descriptor write
func (u *UniformPool) DSInfo(i int) vk.DescriptorBufferInfo {
	a := u.Slots[i]
	return u.Buffer.DSInfo(a.Offset, a.Size)
}

// Destroy unmaps and releases the pool
func (u *UniformPool) Destroy() {
	for _, a := range u.Slots {
		u.Allocator.Free(a)
	}
	u.Slots = nil
	u.BoundBuffer.Destroy()
}
