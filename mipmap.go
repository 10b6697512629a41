package osge

import (
	"math/bits"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// MipLevels returns the length of a full mip chain for a w by h image
func MipLevels(w, h uint32) uint32 {
	m := w
	if h > m {
		m = h
	}
	if m == 0 {
		return 1
	}
	return uint32(bits.Len32(m))
}

// mipExtent halves a mip dimension, never going below one texel
func mipExtent(v int32) int32 {
	if v > 1 {
		return v / 2
	}
	return 1
}

// GenerateMipmaps fills levels 1..n-1 of img by repeatedly blitting the previous level at
// half size. Every level must be in the transfer destination layout with level 0 holding
// the pixels. All levels end in the shader read layout.
func (cb *CommandBuffer) GenerateMipmaps(pd *PhysicalDevice, img *Image) error {
	if pd.FormatFeatures(img.VKFormat)&vk.FormatFeatureFlags(vk.FormatFeatureSampledImageFilterLinearBit) == 0 {
		return errors.Errorf("format %d does not support linear blitting", img.VKFormat)
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		Image:               img.VKImage,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	barrierAt := func(level uint32, old, new vk.ImageLayout, src, dst vk.AccessFlagBits, srcStage, dstStage vk.PipelineStageFlagBits) {
		barrier.SubresourceRange.BaseMipLevel = level
		barrier.OldLayout = old
		barrier.NewLayout = new
		barrier.SrcAccessMask = vk.AccessFlags(src)
		barrier.DstAccessMask = vk.AccessFlags(dst)
		vk.CmdPipelineBarrier(cb.VK(), vk.PipelineStageFlags(srcStage), vk.PipelineStageFlags(dstStage),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	}

	w, h := int32(img.Extent.Width), int32(img.Extent.Height)
	for i := uint32(1); i < img.MipLevels; i++ {
		barrierAt(i-1, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal,
			vk.AccessTransferWriteBit, vk.AccessTransferReadBit,
			vk.PipelineStageTransferBit, vk.PipelineStageTransferBit)

		nw, nh := mipExtent(w), mipExtent(h)
		blit := vk.ImageBlit{
			SrcSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:   i - 1,
				LayerCount: 1,
			},
			SrcOffsets: [2]vk.Offset3D{{}, {X: w, Y: h, Z: 1}},
			DstSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:   i,
				LayerCount: 1,
			},
			DstOffsets: [2]vk.Offset3D{{}, {X: nw, Y: nh, Z: 1}},
		}
		vk.CmdBlitImage(cb.VK(),
			img.VKImage, vk.ImageLayoutTransferSrcOptimal,
			img.VKImage, vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{blit}, vk.FilterLinear)

		barrierAt(i-1, vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
			vk.AccessTransferReadBit, vk.AccessShaderReadBit,
			vk.PipelineStageTransferBit, vk.PipelineStageFragmentShaderBit)

		w, h = nw, nh
	}

	barrierAt(img.MipLevels-1, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
		vk.AccessTransferWriteBit, vk.AccessShaderReadBit,
		vk.PipelineStageTransferBit, vk.PipelineStageFragmentShaderBit)
	return nil
}
