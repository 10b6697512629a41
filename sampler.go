package osge

import (
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// SamplerOptions configures a texture sampler
type SamplerOptions struct {
	MipLevels uint32
	// MaxAnisotropy enables anisotropic filtering when greater than 1
	MaxAnisotropy float32
}

func samplerCreateInfo(opts SamplerOptions) vk.SamplerCreateInfo {
	info := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0,
		MaxLod:                  float32(opts.MipLevels),
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	if opts.MaxAnisotropy > 1 {
		info.AnisotropyEnable = vk.True
		info.MaxAnisotropy = opts.MaxAnisotropy
	}
	return info
}

// CreateSampler creates a linear, repeating sampler covering opts.MipLevels levels
func (d *Device) CreateSampler(opts SamplerOptions, log *slog.Logger) (*Handle[vk.Sampler], error) {
	device := d.VKDevice
	return CreateHandle("sampler", func() (vk.Sampler, error) {
		info := samplerCreateInfo(opts)
		var sampler vk.Sampler
		if err := vkErr(vk.CreateSampler(device, &info, nil, &sampler), "vkCreateSampler"); err != nil {
			return vk.NullSampler, err
		}
		return sampler, nil
	}, func(s vk.Sampler) {
		vk.DestroySampler(device, s, nil)
	}, log)
}
