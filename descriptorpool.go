package osge

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorPool is essentially a resource manager for descriptor pools provided by Vulkan.
type DescriptorPool struct {
	Device               *Device
	VKDescriptorPool     vk.DescriptorPool
	VKDescriptorPoolSize []vk.DescriptorPoolSize
}

func (d *Device) NewDescriptorPool() *DescriptorPool {
	return &DescriptorPool{Device: d}
}

// DescriptorPoolSizes returns the pool sizes needed for one set per swapchain image, each
// holding a uniform buffer and textures combined image samplers. The descriptor total is
// images * (1 + textures).
func DescriptorPoolSizes(images, textures int) []vk.DescriptorPoolSize {
	return []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: uint32(images),
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: uint32(images * textures),
		},
	}
}

// AddPoolSize informs the descriptor pool how many of a certain descriptortype it will contain
func (d *DescriptorPool) AddPoolSize(dtype vk.DescriptorType, count int) {
	d.VKDescriptorPoolSize = append(d.VKDescriptorPoolSize, vk.DescriptorPoolSize{
		Type:            dtype,
		DescriptorCount: uint32(count),
	})
}

// CreateDescriptorPool creates the descriptor pool
func (d *Device) CreateDescriptorPool(pool *DescriptorPool, maxSets int) (*DescriptorPool, error) {
	if maxSets <= 0 || len(pool.VKDescriptorPoolSize) == 0 {
		return nil, invalid("descriptor pool with %d sets and %d sizes", maxSets, len(pool.VKDescriptorPoolSize))
	}

	descriptorPoolCreateInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(maxSets),
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		PoolSizeCount: uint32(len(pool.VKDescriptorPoolSize)),
		PPoolSizes:    pool.VKDescriptorPoolSize,
	}

	var descriptorPool vk.DescriptorPool
	if err := vkErr(vk.CreateDescriptorPool(d.VKDevice, &descriptorPoolCreateInfo, nil, &descriptorPool), "vkCreateDescriptorPool"); err != nil {
		return nil, err
	}

	pool.Device = d
	pool.VKDescriptorPool = descriptorPool
	return pool, nil
}

// Allocate allocates one descriptor set per layout given
func (d *DescriptorPool) Allocate(layouts ...*DescriptorSetLayout) ([]*DescriptorSet, error) {
	if len(layouts) == 0 {
		return nil, invalid("no descriptor set layouts")
	}
	dsl := make([]vk.DescriptorSetLayout, len(layouts))
	for i, ds := range layouts {
		dsl[i] = ds.VKDescriptorSetLayout
	}

	descriptorSetAllocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.VKDescriptorPool,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        dsl,
	}

	sets := make([]vk.DescriptorSet, len(layouts))
	if err := vkErr(vk.AllocateDescriptorSets(d.Device.VKDevice, &descriptorSetAllocateInfo, &sets[0]), "vkAllocateDescriptorSets"); err != nil {
		return nil, err
	}

	ret := make([]*DescriptorSet, len(sets))
	for i := range sets {
		ret[i] = &DescriptorSet{
			Device:          d.Device,
			DescriptorPool:  d,
			VKDescriptorSet: sets[i],
		}
	}
	return ret, nil
}

func (d *DescriptorPool) Reset() error {
	return vkErr(vk.ResetDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool, 0), "vkResetDescriptorPool")
}

func (d *DescriptorPool) Destroy() {
	if d.VKDescriptorPool == vk.DescriptorPool(vk.NullHandle) {
		d.Device.nullDestroy("descriptor pool")
		return
	}
	vk.DestroyDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool, nil)
	d.VKDescriptorPool = vk.DescriptorPool(vk.NullHandle)
}
