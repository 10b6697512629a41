package osge

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

type Swapchain struct {
	Extent      vk.Extent2D
	Format      vk.Format
	ColorSpace  vk.ColorSpace
	PresentMode vk.PresentMode
	Device      *Device
	VKSwapchain vk.Swapchain
}

func (s *Swapchain) Destroy() {
	if s.VKSwapchain == vk.NullSwapchain {
		s.Device.nullDestroy("swapchain")
		return
	}
	vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
	s.VKSwapchain = vk.NullSwapchain
}

// GetImages returns the presentable images owned by the swapchain. They are released with
// the swapchain and must not be destroyed individually.
func (s *Swapchain) GetImages() ([]*Image, error) {
	var imageCount uint32
	if err := vkErr(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, nil), "vkGetSwapchainImages"); err != nil {
		return nil, err
	}

	swapchainImages := make([]vk.Image, imageCount)
	if err := vkErr(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, swapchainImages), "vkGetSwapchainImages"); err != nil {
		return nil, err
	}

	ret := make([]*Image, imageCount)
	for i := range swapchainImages {
		ret[i] = &Image{
			Device:    s.Device,
			VKImage:   swapchainImages[i],
			VKFormat:  s.Format,
			Extent:    s.Extent,
			MipLevels: 1,
		}
	}
	return ret, nil
}

// CreateImageViews creates one color view per swapchain image
func (s *Swapchain) CreateImageViews() ([]*ImageView, error) {
	images, err := s.GetImages()
	if err != nil {
		return nil, err
	}
	views := make([]*ImageView, 0, len(images))
	for i, img := range images {
		v, err := img.CreateImageView()
		if err != nil {
			for _, created := range views {
				created.Destroy()
			}
			return nil, errors.Wrapf(err, "creating view for swapchain image %d", i)
		}
		views = append(views, v)
	}
	return views, nil
}

// CreateSwapchain negotiates format, present mode, extent and image count against the
// surface of ctx and creates the swapchain. width and height are the framebuffer size of
// the window. old may be nil.
func (ctx *DeviceContext) CreateSwapchain(width, height int, old *Swapchain, log *slog.Logger) (*Swapchain, error) {
	pd := ctx.Device.PhysicalDevice

	caps, err := pd.GetSurfaceCapabilities(ctx.Surface)
	if err != nil {
		return nil, err
	}
	formats, err := pd.GetSurfaceFormats(ctx.Surface)
	if err != nil {
		return nil, err
	}
	modes, err := pd.GetSurfacePresentModes(ctx.Surface)
	if err != nil {
		return nil, err
	}

	format := ChooseSurfaceFormat(formats, log)
	presentMode := ChoosePresentMode(modes)
	extent := ChooseExtent(caps, width, height)
	imageCount := ChooseImageCount(caps, log)

	createInfo := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          ctx.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		PresentMode:      presentMode,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageArrayLayers: 1,
		Clipped:          vk.True,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		OldSwapchain:     vk.NullSwapchain,
	}
	if old != nil {
		createInfo.OldSwapchain = old.VKSwapchain
	}

	if !ctx.Families.Shared() {
		indices := ctx.Families.Unique()
		createInfo.QueueFamilyIndexCount = uint32(len(indices))
		createInfo.PQueueFamilyIndices = indices
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchain vk.Swapchain
	if err := vkErr(vk.CreateSwapchain(ctx.Device.VKDevice, createInfo, nil, &swapchain), "vkCreateSwapchain"); err != nil {
		return nil, err
	}

	log.Debug("swapchain created",
		slog.Int("width", int(extent.Width)),
		slog.Int("height", int(extent.Height)),
		slog.Int("images", int(imageCount)),
		slog.Int("present_mode", int(presentMode)))

	return &Swapchain{
		VKSwapchain: swapchain,
		Device:      ctx.Device,
		Extent:      extent,
		Format:      format.Format,
		ColorSpace:  format.ColorSpace,
		PresentMode: presentMode,
	}, nil
}
