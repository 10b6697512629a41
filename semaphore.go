package osge

import (
	vk "github.com/vulkan-go/vulkan"
)

// VKCreateSemaphore creates a native vulkan semaphore object
func (d *Device) VKCreateSemaphore() (vk.Semaphore, error) {
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var sema vk.Semaphore
	if err := vkErr(vk.CreateSemaphore(d.VKDevice, &semaphoreCreateInfo, nil, &sema), "vkCreateSemaphore"); err != nil {
		return vk.NullSemaphore, err
	}
	return sema, nil
}

func (d *Device) VKDestroySemaphore(s vk.Semaphore) {
	if s == vk.NullSemaphore {
		d.nullDestroy("semaphore")
		return
	}
	vk.DestroySemaphore(d.VKDevice, s, nil)
}
