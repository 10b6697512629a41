package osge

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// LayoutTransition holds the access and stage masks of a supported layout change
type LayoutTransition struct {
	Old, New  vk.ImageLayout
	SrcAccess vk.AccessFlags
	DstAccess vk.AccessFlags
	SrcStage  vk.PipelineStageFlags
	DstStage  vk.PipelineStageFlags
}

// layoutTransitions is the complete set of transitions images go through: upload
// destination, sampled texture and depth attachment.
var layoutTransitions = []LayoutTransition{
	{
		Old:       vk.ImageLayoutUndefined,
		New:       vk.ImageLayoutTransferDstOptimal,
		SrcAccess: 0,
		DstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		DstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	},
	{
		Old:       vk.ImageLayoutTransferDstOptimal,
		New:       vk.ImageLayoutShaderReadOnlyOptimal,
		SrcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
		SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		DstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
	},
	{
		Old:       vk.ImageLayoutUndefined,
		New:       vk.ImageLayoutDepthStencilAttachmentOptimal,
		SrcAccess: 0,
		DstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
		SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		DstStage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
	},
}

// LayoutTransitionFor looks up the masks for old to new. Pairs outside the supported set
// return ErrUnsupportedTransition.
func LayoutTransitionFor(old, new vk.ImageLayout) (LayoutTransition, error) {
	for _, t := range layoutTransitions {
		if t.Old == old && t.New == new {
			return t, nil
		}
	}
	return LayoutTransition{}, errors.Wrapf(ErrUnsupportedTransition, "%d -> %d", old, new)
}

// HasStencilComponent reports whether format carries a stencil aspect
func HasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

// transitionAspect returns the aspect a barrier to layout must name for format
func transitionAspect(layout vk.ImageLayout, format vk.Format) vk.ImageAspectFlags {
	if layout != vk.ImageLayoutDepthStencilAttachmentOptimal {
		return vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
	aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	if HasStencilComponent(format) {
		aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	return aspect
}

// CmdTransitionImageLayout records a barrier moving every mip level of img from old to new
func (cb *CommandBuffer) CmdTransitionImageLayout(img *Image, old, new vk.ImageLayout) error {
	t, err := LayoutTransitionFor(old, new)
	if err != nil {
		return err
	}
	levels := img.MipLevels
	if levels == 0 {
		levels = 1
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           old,
		NewLayout:           new,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.VKImage,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: transitionAspect(new, img.VKFormat),
			LevelCount: levels,
			LayerCount: 1,
		},
		SrcAccessMask: t.SrcAccess,
		DstAccessMask: t.DstAccess,
	}

	vk.CmdPipelineBarrier(cb.VK(), t.SrcStage, t.DstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	return nil
}
