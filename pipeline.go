package osge

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// GraphicsPipelineConfig is a utility object to ease construction of graphics pipelines
type GraphicsPipelineConfig struct {
	Device       *Device
	ShaderStages []vk.PipelineShaderStageCreateInfo

	PipelineLayout *PipelineLayout

	// PrimitiveTopology defaults to VK_PRIMITIVE_TOPOLOGY_TRIANGLE_LIST
	PrimitiveTopology vk.PrimitiveTopology

	// PolygonMode defaults to VK_POLYGON_MODE_FILL
	PolygonMode vk.PolygonMode

	// LineWidth of rasterized lines, defaults to 1.0
	LineWidth float32

	// CullMode specifies which triangles will be culled, defaults to vk.CullModeBackBit
	CullMode vk.CullModeFlagBits

	// FrontFace defaults to vk.FrontFaceCounterClockwise
	FrontFace vk.FrontFace

	// DynamicState specifies which part of the pipeline is set by the command buffer,
	// defaults to the viewport and scissor
	DynamicState []vk.DynamicState

	// Samples must match the sample count of the render targets
	Samples vk.SampleCountFlagBits

	DepthTestEnable  bool
	DepthWriteEnable bool

	VertexInputBindingDescriptions   []vk.VertexInputBindingDescription
	VertexInputAttributeDescriptions []vk.VertexInputAttributeDescription

	modules []*ShaderModule
}

// CreateGraphicsPipelineConfig creates a new config object
func (d *Device) CreateGraphicsPipelineConfig() *GraphicsPipelineConfig {
	return &GraphicsPipelineConfig{
		Device:            d,
		PrimitiveTopology: vk.PrimitiveTopologyTriangleList,
		PolygonMode:       vk.PolygonModeFill,
		LineWidth:         1.0,
		CullMode:          vk.CullModeBackBit,
		FrontFace:         vk.FrontFaceCounterClockwise,
		DynamicState:      []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
		Samples:           vk.SampleCount1Bit,
		DepthTestEnable:   true,
		DepthWriteEnable:  true,
	}
}

// Destroy releases the shader modules, which are only needed until the pipeline exists
func (g *GraphicsPipelineConfig) Destroy() {
	for _, m := range g.modules {
		m.Destroy()
	}
	g.modules = nil
}

// AddShaderStage creates a module from src and adds it as a stage with a main entry point
func (g *GraphicsPipelineConfig) AddShaderStage(src ShaderSource) error {
	shader, err := g.Device.LoadShaderModule(src.Path, src.Code)
	if err != nil {
		return err
	}
	g.ShaderStages = append(g.ShaderStages, shader.VKPipelineShaderStageCreateInfo(src.Stage, "main"))
	g.modules = append(g.modules, shader)
	return nil
}

// SetPipelineLayout sets the pipeline layout
func (g *GraphicsPipelineConfig) SetPipelineLayout(layout *PipelineLayout) *GraphicsPipelineConfig {
	g.PipelineLayout = layout
	return g
}

// AddVertexDescriptor adds vertex descriptors based off the specified interface
func (g *GraphicsPipelineConfig) AddVertexDescriptor(v VertexSource) *GraphicsPipelineConfig {
	g.VertexInputBindingDescriptions = append(g.VertexInputBindingDescriptions, v.GetBindingDescription())
	g.VertexInputAttributeDescriptions = append(g.VertexInputAttributeDescriptions, v.GetAttributeDescriptions()...)
	return g
}

func vkBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// VKGraphicsPipelineCreateInfo uses the provided config information to create a vulkan
// vk.GraphicsPipelineCreateInfo structure. Viewport and scissor counts are set, their
// values come from the command buffer.
func (g *GraphicsPipelineConfig) VKGraphicsPipelineCreateInfo(renderPass vk.RenderPass) (vk.GraphicsPipelineCreateInfo, error) {
	if len(g.ShaderStages) == 0 {
		return vk.GraphicsPipelineCreateInfo{}, ErrNoShaders
	}
	if g.PipelineLayout == nil {
		return vk.GraphicsPipelineCreateInfo{}, missing("pipeline layout")
	}

	vertexInputState := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(g.VertexInputBindingDescriptions)),
		PVertexBindingDescriptions:      g.VertexInputBindingDescriptions,
		VertexAttributeDescriptionCount: uint32(len(g.VertexInputAttributeDescriptions)),
		PVertexAttributeDescriptions:    g.VertexInputAttributeDescriptions,
	}

	inputAssemblyState := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               g.PrimitiveTopology,
		PrimitiveRestartEnable: vk.False,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterState := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             g.PolygonMode,
		LineWidth:               g.LineWidth,
		CullMode:                vk.CullModeFlags(g.CullMode),
		FrontFace:               g.FrontFace,
		DepthBiasEnable:         vk.False,
	}

	multisampleState := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vk.False,
		RasterizationSamples: g.Samples,
		MinSampleShading:     1.0,
	}

	blendAttachments := []vk.PipelineColorBlendAttachmentState{{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable:    vk.False,
	}}

	colorBlendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(blendAttachments)),
		PAttachments:    blendAttachments,
	}

	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		PDynamicStates:    g.DynamicState,
		DynamicStateCount: uint32(len(g.DynamicState)),
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vkBool(g.DepthTestEnable),
		DepthWriteEnable:      vkBool(g.DepthWriteEnable),
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		MinDepthBounds:        0.0,
		MaxDepthBounds:        1.0,
		StencilTestEnable:     vk.False,
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(g.ShaderStages)),
		PStages:             g.ShaderStages,
		PVertexInputState:   &vertexInputState,
		PInputAssemblyState: &inputAssemblyState,
		PDepthStencilState:  &depthStencil,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterState,
		PMultisampleState:   &multisampleState,
		PColorBlendState:    &colorBlendState,
		PDynamicState:       &dynamicState,
		Layout:              g.PipelineLayout.VKPipelineLayout,
		RenderPass:          renderPass,
		Subpass:             0,
	}, nil
}

type PipelineCache struct {
	Device          *Device
	VKPipelineCache vk.PipelineCache
}

func (d *Device) CreatePipelineCache() (*PipelineCache, error) {
	pipelineCacheCreate := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}

	var pipelineCache vk.PipelineCache
	if err := vkErr(vk.CreatePipelineCache(d.VKDevice, &pipelineCacheCreate, nil, &pipelineCache), "vkCreatePipelineCache"); err != nil {
		return nil, err
	}
	return &PipelineCache{Device: d, VKPipelineCache: pipelineCache}, nil
}

func (c *PipelineCache) Destroy() {
	if c.VKPipelineCache == vk.PipelineCache(vk.NullHandle) {
		c.Device.nullDestroy("pipeline cache")
		return
	}
	vk.DestroyPipelineCache(c.Device.VKDevice, c.VKPipelineCache, nil)
	c.VKPipelineCache = vk.PipelineCache(vk.NullHandle)
}

// GraphicsPipeline is the immutable pipeline used by every draw, with its layout and the
// layout of the per frame descriptor set
type GraphicsPipeline struct {
	Pipeline  *Handle[vk.Pipeline]
	Layout    *PipelineLayout
	SetLayout *DescriptorSetLayout
}

// PipelineOptions are the inputs of NewGraphicsPipeline
type PipelineOptions struct {
	Shaders    []ShaderSource
	Vertex     VertexSource
	Textures   int
	Samples    vk.SampleCountFlagBits
	RenderPass vk.RenderPass
	Cache      *PipelineCache
}

// NewGraphicsPipeline builds the descriptor set layout, the pipeline layout with the
// texture index push constant and the pipeline itself
func (d *Device) NewGraphicsPipeline(opts PipelineOptions, log *slog.Logger) (*GraphicsPipeline, error) {
	if opts.RenderPass == vk.NullRenderPass {
		return nil, missing("render pass")
	}
	if opts.Vertex == nil {
		return nil, missing("vertex layout")
	}
	if opts.Textures <= 0 {
		return nil, invalid("pipeline needs at least one texture, got %d", opts.Textures)
	}

	setLayout := d.NewDescriptorSetLayout()
	for _, b := range FrameBindings(opts.Textures) {
		setLayout.AddBinding(b)
	}
	if _, err := d.CreateDescriptorSetLayout(setLayout); err != nil {
		return nil, errors.Wrap(err, "creating descriptor set layout")
	}

	gp := &GraphicsPipeline{SetLayout: setLayout}

	layout, err := d.CreatePipelineLayoutWithPushConstants([]*DescriptorSetLayout{setLayout},
		[]vk.PushConstantRange{TextureIndexPushConstant()})
	if err != nil {
		gp.Destroy()
		return nil, errors.Wrap(err, "creating pipeline layout")
	}
	gp.Layout = layout

	config := d.CreateGraphicsPipelineConfig()
	defer config.Destroy()
	config.Samples = opts.Samples
	config.SetPipelineLayout(layout)
	config.AddVertexDescriptor(opts.Vertex)
	for _, s := range opts.Shaders {
		if err := config.AddShaderStage(s); err != nil {
			gp.Destroy()
			return nil, err
		}
	}

	info, err := config.VKGraphicsPipelineCreateInfo(opts.RenderPass)
	if err != nil {
		gp.Destroy()
		return nil, err
	}

	cache := vk.PipelineCache(vk.NullHandle)
	if opts.Cache != nil {
		cache = opts.Cache.VKPipelineCache
	}

	device := d.VKDevice
	gp.Pipeline, err = CreateHandle("pipeline", func() (vk.Pipeline, error) {
		pipelines := make([]vk.Pipeline, 1)
		if err := vkErr(vk.CreateGraphicsPipelines(device, cache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pipelines), "vkCreateGraphicsPipelines"); err != nil {
			return vk.NullPipeline, err
		}
		return pipelines[0], nil
	}, func(p vk.Pipeline) {
		vk.DestroyPipeline(device, p, nil)
	}, log)
	if err != nil {
		gp.Destroy()
		return nil, err
	}

	log.Debug("graphics pipeline created",
		slog.Int("stages", len(opts.Shaders)),
		slog.Int("textures", opts.Textures),
		slog.Int("samples", int(opts.Samples)))
	return gp, nil
}

// Destroy releases the pipeline and then its layouts
func (g *GraphicsPipeline) Destroy() {
	if g.Pipeline.Valid() {
		g.Pipeline.Destroy()
	}
	if g.Layout != nil {
		g.Layout.Destroy()
		g.Layout = nil
	}
	if g.SetLayout != nil {
		g.SetLayout.Destroy()
		g.SetLayout = nil
	}
}
