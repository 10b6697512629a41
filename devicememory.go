package osge

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory is one allocation of device memory. Host visible allocations can be mapped;
// at most one mapping is live at a time and its pointer is kept in Ptr.
type DeviceMemory struct {
	Device         *Device
	VKDeviceMemory vk.DeviceMemory
	Size           uint64
	Ptr            unsafe.Pointer
}

// IsMapped reports whether the memory is currently mapped
func (d *DeviceMemory) IsMapped() bool {
	return d.Ptr != nil
}

// Destroy unmaps the memory if needed and frees it
func (d *DeviceMemory) Destroy() {
	if d.VKDeviceMemory == vk.NullDeviceMemory {
		d.Device.nullDestroy("device memory")
		return
	}
	if d.IsMapped() {
		d.Unmap()
	}
	vk.FreeMemory(d.Device.VKDevice, d.VKDeviceMemory, nil)
	d.VKDeviceMemory = vk.NullDeviceMemory
}

// Write maps size bytes at offset, copies data into them and unmaps again
func (d *DeviceMemory) Write(offset uint64, data []byte) error {
	if offset+uint64(len(data)) > d.Size {
		return invalid("write of %d bytes at %d overflows %d byte allocation", len(data), offset, d.Size)
	}
	ptr, err := d.MapRange(offset, uint64(len(data)))
	if err != nil {
		return err
	}
	copyToMapped(ptr, data)
	d.Unmap()
	return nil
}

// MapRange maps size bytes starting at offset
func (d *DeviceMemory) MapRange(offset, size uint64) (unsafe.Pointer, error) {
	if d.IsMapped() {
		return nil, invalid("memory is already mapped")
	}
	var ptr unsafe.Pointer
	res := vk.MapMemory(d.Device.VKDevice, d.VKDeviceMemory, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &ptr)
	if err := vkErr(res, "vkMapMemory"); err != nil {
		return nil, err
	}
	d.Ptr = ptr
	return ptr, nil
}

// Map maps the whole allocation
func (d *DeviceMemory) Map() (unsafe.Pointer, error) {
	return d.MapRange(0, d.Size)
}

// Unmap releases the current mapping
func (d *DeviceMemory) Unmap() {
	if !d.IsMapped() {
		return
	}
	vk.UnmapMemory(d.Device.VKDevice, d.VKDeviceMemory)
	d.Ptr = nil
}
