package osge

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestDescriptorPoolSizes(t *testing.T) {
	tests := []struct {
		images, textures int
		ubo, samplers    uint32
	}{
		{3, 2, 3, 6},
		{2, 1, 2, 2},
		{4, 5, 4, 20},
	}
	for _, tt := range tests {
		sizes := DescriptorPoolSizes(tt.images, tt.textures)
		counts := map[vk.DescriptorType]uint32{}
		var total uint32
		for _, s := range sizes {
			counts[s.Type] += s.DescriptorCount
			total += s.DescriptorCount
		}
		if counts[vk.DescriptorTypeUniformBuffer] != tt.ubo {
			t.Errorf("(%d, %d) uniform buffers = %d, want %d", tt.images, tt.textures, counts[vk.DescriptorTypeUniformBuffer], tt.ubo)
		}
		if counts[vk.DescriptorTypeCombinedImageSampler] != tt.samplers {
			t.Errorf("(%d, %d) samplers = %d, want %d", tt.images, tt.textures, counts[vk.DescriptorTypeCombinedImageSampler], tt.samplers)
		}
		if want := uint32(tt.images * (1 + tt.textures)); total != want {
			t.Errorf("(%d, %d) total = %d, want %d", tt.images, tt.textures, total, want)
		}
	}
}

func TestFrameBindings(t *testing.T) {
	b := FrameBindings(3)
	if len(b) != 2 {
		t.Fatalf("bindings = %d, want 2", len(b))
	}
	if b[0].Binding != 0 || b[0].DescriptorType != vk.DescriptorTypeUniformBuffer ||
		b[0].StageFlags != vk.ShaderStageFlags(vk.ShaderStageVertexBit) {
		t.Errorf("binding 0 = %+v", b[0])
	}
	if b[1].Binding != 1 || b[1].DescriptorCount != 3 ||
		b[1].StageFlags != vk.ShaderStageFlags(vk.ShaderStageFragmentBit) {
		t.Errorf("binding 1 = %+v", b[1])
	}
}

func TestTextureIndexPushConstant(t *testing.T) {
	pc := TextureIndexPushConstant()
	if pc.Offset != 0 || pc.Size != 4 || pc.StageFlags != vk.ShaderStageFlags(vk.ShaderStageFragmentBit) {
		t.Errorf("push constant = %+v", pc)
	}
}
