package osge

import (
	vk "github.com/vulkan-go/vulkan"
)

type Image struct {
	Device    *Device
	VKImage   vk.Image
	VKFormat  vk.Format
	Extent    vk.Extent2D
	MipLevels uint32
}

// ImageOptions describes a 2D image
type ImageOptions struct {
	Extent    vk.Extent2D
	Format    vk.Format
	Tiling    vk.ImageTiling
	Usage     vk.ImageUsageFlagBits
	MipLevels uint32
	Samples   vk.SampleCountFlagBits
}

func (i *Image) VKMemoryRequirements() vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.Device.VKDevice, i.VKImage, &memRequirements)
	memRequirements.Deref()
	return memRequirements
}

func (i *Image) AllocationRequirements() *AllocationRequirements {
	mr := i.VKMemoryRequirements()
	return &AllocationRequirements{
		Size:           int(mr.Size),
		MemoryTypeBits: mr.MemoryTypeBits,
	}
}

func (d *Device) CreateImage(opts ImageOptions) (*Image, error) {
	if opts.Extent.Width == 0 || opts.Extent.Height == 0 {
		return nil, invalid("image extent %dx%d", opts.Extent.Width, opts.Extent.Height)
	}
	if opts.MipLevels == 0 {
		opts.MipLevels = 1
	}
	if opts.Samples == 0 {
		opts.Samples = vk.SampleCount1Bit
	}

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  opts.Extent.Width,
			Height: opts.Extent.Height,
			Depth:  1,
		},
		MipLevels:     opts.MipLevels,
		ArrayLayers:   1,
		Format:        opts.Format,
		Tiling:        opts.Tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         vk.ImageUsageFlags(opts.Usage),
		Samples:       opts.Samples,
		SharingMode:   vk.SharingModeExclusive,
	}

	var image vk.Image
	if err := vkErr(vk.CreateImage(d.VKDevice, &imageInfo, nil, &image), "vkCreateImage"); err != nil {
		return nil, err
	}

	return &Image{
		Device:    d,
		VKImage:   image,
		VKFormat:  opts.Format,
		Extent:    opts.Extent,
		MipLevels: opts.MipLevels,
	}, nil
}

func (i *Image) Destroy() {
	if i.VKImage == vk.NullImage {
		i.Device.nullDestroy("image")
		return
	}
	vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
	i.VKImage = vk.NullImage
}

// BoundImage is an image together with the memory backing it
type BoundImage struct {
	*Image
	DeviceMemory *DeviceMemory
}

// CreateBoundImage creates an image, allocates memory for it with props and binds the two
func (d *Device) CreateBoundImage(opts ImageOptions, props vk.MemoryPropertyFlagBits) (*BoundImage, error) {
	i, err := d.CreateImage(opts)
	if err != nil {
		return nil, err
	}

	mem, err := d.AllocateForImage(i, props)
	if err != nil {
		i.Destroy()
		return nil, err
	}

	if err := vkErr(vk.BindImageMemory(d.VKDevice, i.VKImage, mem.VKDeviceMemory, 0), "vkBindImageMemory"); err != nil {
		i.Destroy()
		mem.Destroy()
		return nil, err
	}

	return &BoundImage{Image: i, DeviceMemory: mem}, nil
}

// Destroy destroys the image before freeing its memory
func (b *BoundImage) Destroy() {
	b.Image.Destroy()
	b.DeviceMemory.Destroy()
}

// CmdCopyFromBuffer copies tightly packed pixels from the start of src into mip level 0.
// The image must be in the transfer destination layout.
func (i *Image) CmdCopyFromBuffer(cb *CommandBuffer, src *Buffer) {
	vk.CmdCopyBufferToImage(cb.VK(), src.VKBuffer, i.VKImage, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{
			Width: i.Extent.Width, Height: i.Extent.Height, Depth: 1,
		},
	}})
}
