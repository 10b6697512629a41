package osge

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// TextureFormat is the format every texture is uploaded in
const TextureFormat = vk.FormatR8g8b8a8Srgb

// Texture is a sampled image with a full mip chain
type Texture struct {
	Name    string
	Image   *BoundImage
	View    *ImageView
	Sampler *Handle[vk.Sampler]
}

// DSInfo describes the texture for a combined image sampler descriptor
func (t *Texture) DSInfo() vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{
		Sampler:     t.Sampler.Get(),
		ImageView:   t.View.VKImageView,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
}

// Destroy releases the sampler, the view and then the image
func (t *Texture) Destroy() {
	if t.Sampler != nil {
		t.Sampler.Destroy()
	}
	if t.View != nil {
		t.View.Destroy()
	}
	if t.Image != nil {
		t.Image.Destroy()
	}
}

// CreateTexture uploads width by height tightly packed RGBA pixels into a device local
// image, generates its mip chain and creates its view and sampler
func (pool *CommandPool) CreateTexture(ctx *DeviceContext, name string, width, height int, pixels []byte, log *slog.Logger) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, invalid("texture %s has size %dx%d", name, width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, invalid("texture %s has %d bytes, want %d", name, len(pixels), width*height*4)
	}

	staging, err := pool.Device.CreateStagingBuffer(pixels)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	extent := vk.Extent2D{Width: uint32(width), Height: uint32(height)}
	levels := MipLevels(extent.Width, extent.Height)

	img, err := pool.Device.CreateBoundImage(ImageOptions{
		Extent:    extent,
		Format:    TextureFormat,
		Tiling:    vk.ImageTilingOptimal,
		Usage:     vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit,
		MipLevels: levels,
	}, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, errors.Wrapf(err, "creating image for texture %s", name)
	}

	t := &Texture{Name: name, Image: img}

	err = pool.RunOneTime(ctx.GraphicsQueue, func(cmd *CommandBuffer) error {
		if err := cmd.CmdTransitionImageLayout(img.Image, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
			return err
		}
		img.CmdCopyFromBuffer(cmd, staging.Buffer)
		if levels == 1 {
			return cmd.CmdTransitionImageLayout(img.Image, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
		}
		return cmd.GenerateMipmaps(pool.Device.PhysicalDevice, img.Image)
	})
	if err != nil {
		t.Destroy()
		return nil, errors.Wrapf(err, "uploading texture %s", name)
	}

	if t.View, err = img.CreateImageView(); err != nil {
		t.Destroy()
		return nil, err
	}

	opts := SamplerOptions{MipLevels: levels}
	if ctx.AnisotropyEnabled() {
		opts.MaxAnisotropy = pool.Device.PhysicalDevice.VKPhysicalDeviceProperties.Limits.MaxSamplerAnisotropy
	}
	if t.Sampler, err = pool.Device.CreateSampler(opts, log); err != nil {
		t.Destroy()
		return nil, err
	}

	log.Debug("texture uploaded",
		slog.String("name", name),
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Int("mip_levels", int(levels)))
	return t, nil
}
