package osge

import (
	vk "github.com/vulkan-go/vulkan"
)

type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

func (i *Image) CreateImageView() (*ImageView, error) {
	return i.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectColorBit))
}

// CreateImageViewWithAspectMask creates a 2D view covering every mip level of the image
func (i *Image) CreateImageViewWithAspectMask(mask vk.ImageAspectFlags) (*ImageView, error) {
	levels := i.MipLevels
	if levels == 0 {
		levels = 1
	}
	createImage := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.VKImage,
		ViewType: vk.ImageViewType2d,
		Format:   i.VKFormat,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: mask,
			LevelCount: levels,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	if err := vkErr(vk.CreateImageView(i.Device.VKDevice, createImage, nil, &view), "vkCreateImageView"); err != nil {
		return nil, err
	}
	return &ImageView{Device: i.Device, VKImageView: view}, nil
}

func (i *ImageView) Destroy() {
	if i.VKImageView == vk.NullImageView {
		i.Device.nullDestroy("image view")
		return
	}
	vk.DestroyImageView(i.Device.VKDevice, i.VKImageView, nil)
	i.VKImageView = vk.NullImageView
}

func destroyImageViews(views []*ImageView) {
	for _, v := range views {
		v.Destroy()
	}
}
