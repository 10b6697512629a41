package osge

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// DrawInputs is everything one frame's command buffer references
type DrawInputs struct {
	RenderPass    vk.RenderPass
	Framebuffer   vk.Framebuffer
	Extent        vk.Extent2D
	Pipeline      vk.Pipeline
	Layout        vk.PipelineLayout
	VertexBuffer  vk.Buffer
	IndexBuffer   vk.Buffer
	IndexCount    uint32
	DescriptorSet vk.DescriptorSet
	TextureIndex  int
	TextureCount  int
}

// Validate reports the first resource missing from the inputs
func (in *DrawInputs) Validate() error {
	switch {
	case in.RenderPass == vk.NullRenderPass:
		return missing("render pass")
	case in.Framebuffer == vk.NullFramebuffer:
		return missing("framebuffer")
	case in.Pipeline == vk.NullPipeline:
		return missing("pipeline")
	case in.Layout == vk.NullPipelineLayout:
		return missing("pipeline layout")
	case in.VertexBuffer == vk.NullBuffer:
		return missing("vertex buffer")
	case in.IndexBuffer == vk.NullBuffer:
		return missing("index buffer")
	case in.IndexCount == 0:
		return missing("indices")
	case in.DescriptorSet == vk.DescriptorSet(vk.NullHandle):
		return missing("descriptor set")
	case in.Extent.Width == 0 || in.Extent.Height == 0:
		return invalid("render area %dx%d", in.Extent.Width, in.Extent.Height)
	}
	return nil
}

// clampTextureIndex replaces an index outside [0, count) with 0
func clampTextureIndex(index, count int, log *slog.Logger) int32 {
	if index < 0 || index >= count {
		log.Warn("texture index out of range, using 0",
			slog.Int("index", index),
			slog.Int("textures", count))
		return 0
	}
	return int32(index)
}

// RecordDrawCommands records one indexed draw of the whole index buffer into cmd. Every
// input is checked before anything is recorded.
func RecordDrawCommands(cmd *CommandBuffer, in DrawInputs, log *slog.Logger) error {
	if cmd == nil || cmd.VKCommandBuffer == nil {
		return missing("command buffer")
	}
	if err := in.Validate(); err != nil {
		return err
	}
	textureIndex := clampTextureIndex(in.TextureIndex, in.TextureCount, log)

	if err := cmd.Begin(); err != nil {
		return err
	}
	cb := cmd.VK()

	clearValues := []vk.ClearValue{
		vk.NewClearValue([]float32{0, 0, 0, 1}),
		vk.NewClearDepthStencil(1, 0),
	}
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  in.RenderPass,
		Framebuffer: in.Framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: in.Extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(cb, &renderPassInfo, vk.SubpassContentsInline)

	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, in.Pipeline)
	vk.CmdBindVertexBuffers(cb, 0, 1, []vk.Buffer{in.VertexBuffer}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cb, in.IndexBuffer, 0, vk.IndexTypeUint32)
	vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointGraphics, in.Layout, 0, 1,
		[]vk.DescriptorSet{in.DescriptorSet}, 0, nil)
	vk.CmdPushConstants(cb, in.Layout, vk.ShaderStageFlags(vk.ShaderStageFragmentBit), 0,
		uint32(unsafe.Sizeof(textureIndex)), unsafe.Pointer(&textureIndex))

	vk.CmdSetViewport(cb, 0, 1, []vk.Viewport{{
		Width:    float32(in.Extent.Width),
		Height:   float32(in.Extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(cb, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: in.Extent,
	}})

	vk.CmdDrawIndexed(cb, in.IndexCount, 1, 0, 0, 0)

	vk.CmdEndRenderPass(cb)
	return cmd.End()
}
