package osge

import (
	"time"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// Renderer owns the whole object graph needed to draw the loaded scene into a window.
//
// See https://vulkan-tutorial.com/ for a good walkthrough of the steps it takes.
type Renderer struct {
	Instance *Instance
	Surface  vk.Surface
	Context  *DeviceContext

	Swapchain *Swapchain
	Views     []*ImageView
	Targets   *RenderTargets
	Sync      *FrameSync

	Pool     *CommandPool
	Commands []*CommandBuffer

	VertexBuffer *BoundBuffer
	IndexBuffer  *BoundBuffer
	IndexCount   uint32

	Textures    []*Texture
	Uniforms    *UniformPool
	Descriptors *DescriptorPool
	Sets        []*DescriptorSet

	Shaders  []ShaderSource
	Cache    *PipelineCache
	Pipeline *GraphicsPipeline

	cfg    Config
	window Window
	loop   frameLoop
	log    *slog.Logger
}

// NewRenderer creates every object needed to draw into win. On failure whatever was
// already created is released before the error is returned.
func NewRenderer(cfg Config, win Window) (*Renderer, error) {
	log := cfg.logger()
	r := &Renderer{cfg: cfg, window: win, log: log, loop: frameLoop{log: log}}
	if err := r.init(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init() error {
	app := &App{
		Name:       r.cfg.Title,
		EngineName: "osge",
		Version:    Version{Major: 0, Minor: 1, Patch: 0},
	}
	for _, ext := range r.window.RequiredInstanceExtensions() {
		app.EnableExtension(ext)
	}
	validation := r.cfg.Validation && app.EnableDebugging()
	if r.cfg.Validation && !validation {
		r.log.Warn("validation requested but the layer is not installed")
	}

	var err error
	if r.Instance, err = app.CreateInstance(); err != nil {
		return errors.Wrap(err, "creating instance")
	}
	if validation {
		if err := r.Instance.RouteDebugReports(r.log); err != nil {
			r.log.Warn("debug reports unavailable", slog.Any("error", err))
		}
	}

	if r.Surface, err = r.window.CreateSurface(r.Instance.VKInstance); err != nil {
		return err
	}
	if r.Context, err = NewDeviceContext(r.Instance, r.Surface, DeviceOptions{MaxSamples: r.cfg.MaxSamples}, r.log); err != nil {
		return err
	}
	device := r.Context.Device

	if r.Pool, err = device.CreateCommandPool(r.Context.Families.Graphics); err != nil {
		return errors.Wrap(err, "creating command pool")
	}
	if err := r.createSwapchain(); err != nil {
		return err
	}
	if r.Targets, err = NewRenderTargets(r.Context, r.Swapchain, r.Views, r.Pool, r.log); err != nil {
		return errors.Wrap(err, "creating render targets")
	}
	if r.Sync, err = NewFrameSync(device, len(r.Views), r.log); err != nil {
		return errors.Wrap(err, "creating frame sync")
	}

	if err := r.uploadScene(); err != nil {
		return err
	}
	if r.Shaders, err = DiscoverShaders(r.cfg.ShaderDir, r.log); err != nil {
		return err
	}
	if r.Cache, err = device.CreatePipelineCache(); err != nil {
		return errors.Wrap(err, "creating pipeline cache")
	}
	if err := r.createPipeline(); err != nil {
		return err
	}
	return r.createFrameResources(len(r.Views))
}

func (r *Renderer) createSwapchain() error {
	w, h := r.window.FramebufferSize()
	sc, err := r.Context.CreateSwapchain(w, h, nil, r.log)
	if err != nil {
		return errors.Wrap(err, "creating swapchain")
	}
	r.Swapchain = sc
	if r.Views, err = sc.CreateImageViews(); err != nil {
		return errors.Wrap(err, "creating swapchain image views")
	}
	return nil
}

// uploadScene stages the merged geometry and every texture into device local memory
func (r *Renderer) uploadScene() error {
	mesh := LoadMeshes(r.cfg.ModelDir, r.log)
	queue := r.Context.GraphicsQueue

	var err error
	if r.VertexBuffer, err = r.Pool.UploadBuffer(queue, mesh.Vertices, vk.BufferUsageVertexBufferBit); err != nil {
		return errors.Wrap(err, "uploading vertices")
	}
	if r.IndexBuffer, err = r.Pool.UploadBuffer(queue, mesh.Indices, vk.BufferUsageIndexBufferBit); err != nil {
		return errors.Wrap(err, "uploading indices")
	}
	r.IndexCount = uint32(mesh.Indices.Count())

	if r.Textures, err = r.Pool.LoadTextures(r.Context, r.cfg.TextureDir, r.cfg.MaxTextureSize, r.log); err != nil {
		return err
	}
	return nil
}

func (r *Renderer) createPipeline() error {
	gp, err := r.Context.Device.NewGraphicsPipeline(PipelineOptions{
		Shaders:    r.Shaders,
		Vertex:     VertexData(nil),
		Textures:   len(r.Textures),
		Samples:    r.Targets.Samples,
		RenderPass: r.Targets.RenderPass.Get(),
		Cache:      r.Cache,
	}, r.log)
	if err != nil {
		return errors.Wrap(err, "creating graphics pipeline")
	}
	r.Pipeline = gp
	return nil
}

// createFrameResources creates the command buffer, uniform block and descriptor set of
// each of the n frame slots
func (r *Renderer) createFrameResources(n int) error {
	device := r.Context.Device

	var err error
	if r.Commands, err = r.Pool.AllocateBuffers(n); err != nil {
		return errors.Wrap(err, "allocating command buffers")
	}
	if r.Uniforms, err = device.CreateUniformPool(n, uniformBufferObjectSize); err != nil {
		return errors.Wrap(err, "creating uniform buffers")
	}

	pool := device.NewDescriptorPool()
	for _, s := range DescriptorPoolSizes(n, len(r.Textures)) {
		pool.AddPoolSize(s.Type, int(s.DescriptorCount))
	}
	if r.Descriptors, err = device.CreateDescriptorPool(pool, n); err != nil {
		return errors.Wrap(err, "creating descriptor pool")
	}

	layouts := make([]*DescriptorSetLayout, n)
	for i := range layouts {
		layouts[i] = r.Pipeline.SetLayout
	}
	if r.Sets, err = r.Descriptors.Allocate(layouts...); err != nil {
		return errors.Wrap(err, "allocating descriptor sets")
	}

	images := make([]vk.DescriptorImageInfo, len(r.Textures))
	for i, t := range r.Textures {
		images[i] = t.DSInfo()
	}
	for i, set := range r.Sets {
		set.AddBuffer(0, vk.DescriptorTypeUniformBuffer, r.Uniforms.DSInfo(i))
		set.AddCombinedImageSamplers(1, images)
		set.Write()
	}
	return nil
}

func (r *Renderer) destroyFrameResources() {
	if r.Descriptors != nil {
		r.Descriptors.Destroy()
		r.Descriptors = nil
		r.Sets = nil
	}
	if r.Uniforms != nil {
		r.Uniforms.Destroy()
		r.Uniforms = nil
	}
	if r.Commands != nil {
		r.Pool.FreeBuffers(r.Commands)
		r.Commands = nil
	}
}

// DrawFrame draws one frame. A pending window resize turns a successful frame into
// FrameRecreate.
func (r *Renderer) DrawFrame(clock *RenderClock) FrameResult {
	elapsed, _ := clock.Tick()
	res := r.loop.draw(r, r.Sync, elapsed)
	if res == FrameSuccess && r.window.Resized() {
		return FrameRecreate
	}
	return res
}

// Recreate rebuilds everything that depends on the swapchain. It blocks while the window
// is minimized and returns FrameExit if the window is closed meanwhile.
func (r *Renderer) Recreate() FrameResult {
	if !waitWhileMinimized(r.window) {
		return FrameExit
	}
	if err := r.Context.WaitIdle(); err != nil {
		r.log.Error("waiting for device before recreate", slog.Any("error", err))
		return FrameFailed
	}

	r.Targets.DestroyFramebuffers()
	r.Targets.DestroyAttachments()
	destroyImageViews(r.Views)
	r.Views = nil
	r.Swapchain.Destroy()
	r.Swapchain = nil
	r.Sync.DestroySemaphores()

	if err := r.rebuild(); err != nil {
		r.log.Error("recreating swapchain", slog.Any("error", err))
		return FrameFailed
	}
	if err := r.Sync.Validate(len(r.Views)); err != nil {
		r.log.Error("frame sync after recreate", slog.Any("error", err))
		return FrameFailed
	}

	r.loop.reset()
	r.window.Resized()
	r.log.Info("swapchain recreated",
		slog.Int("width", int(r.Swapchain.Extent.Width)),
		slog.Int("height", int(r.Swapchain.Extent.Height)),
		slog.Int("images", len(r.Views)))
	return FrameSuccess
}

func (r *Renderer) rebuild() error {
	if err := r.createSwapchain(); err != nil {
		return err
	}
	renderPass := r.Targets.RenderPass.Get()
	if err := r.Targets.Rebuild(r.Swapchain, r.Views); err != nil {
		return errors.Wrap(err, "rebuilding render targets")
	}
	n := len(r.Views)
	if err := r.Sync.Rebuild(n); err != nil {
		return errors.Wrap(err, "rebuilding frame sync")
	}

	if r.Targets.RenderPass.Get() != renderPass {
		r.destroyFrameResources()
		r.Pipeline.Destroy()
		if err := r.createPipeline(); err != nil {
			return err
		}
		return r.createFrameResources(n)
	}
	if n != len(r.Commands) {
		r.destroyFrameResources()
		return r.createFrameResources(n)
	}
	return nil
}

// Destroy waits for the device and both queues to go idle and then releases everything
// in reverse creation order. It is safe on a partially initialized renderer.
func (r *Renderer) Destroy() {
	if r.Context != nil && r.Context.Device != nil {
		if err := r.Context.WaitIdle(); err != nil {
			r.log.Error("waiting for device", slog.Any("error", err))
		}
		for _, q := range []*Queue{r.Context.GraphicsQueue, r.Context.PresentQueue} {
			if err := q.WaitIdle(); err != nil {
				r.log.Error("waiting for queue", slog.Any("error", err))
			}
		}
	}

	if r.Pool != nil {
		r.destroyFrameResources()
	}
	if r.Pipeline != nil {
		r.Pipeline.Destroy()
		r.Pipeline = nil
	}
	if r.Cache != nil {
		r.Cache.Destroy()
		r.Cache = nil
	}
	for _, t := range r.Textures {
		t.Destroy()
	}
	r.Textures = nil
	if r.IndexBuffer != nil {
		r.IndexBuffer.Destroy()
		r.IndexBuffer = nil
	}
	if r.VertexBuffer != nil {
		r.VertexBuffer.Destroy()
		r.VertexBuffer = nil
	}
	if r.Sync != nil {
		r.Sync.Destroy()
		r.Sync = nil
	}
	if r.Targets != nil {
		r.Targets.Destroy()
		r.Targets = nil
	}
	destroyImageViews(r.Views)
	r.Views = nil
	if r.Swapchain != nil {
		r.Swapchain.Destroy()
		r.Swapchain = nil
	}
	if r.Pool != nil {
		r.Pool.Destroy()
		r.Pool = nil
	}
	if r.Context != nil {
		r.Context.Destroy()
		r.Context = nil
	}
	if r.Instance != nil {
		if r.Surface != vk.NullSurface {
			vk.DestroySurface(r.Instance.VKInstance, r.Surface, nil)
			r.Surface = vk.NullSurface
		}
		r.Instance.Destroy()
		r.Instance = nil
	}
}

// frameDriver

func (r *Renderer) imageCount() int {
	return len(r.Views)
}

func (r *Renderer) waitForFence(f vk.Fence) error {
	return r.Context.Device.VKWaitForFence(f, -1)
}

func (r *Renderer) acquireImage(imageAvailable vk.Semaphore) (uint32, vk.Result) {
	var image uint32
	res := vk.AcquireNextImage(r.Context.Device.VKDevice, r.Swapchain.VKSwapchain, vk.MaxUint64,
		imageAvailable, vk.NullFence, &image)
	return image, res
}

func (r *Renderer) record(slot int, image uint32, elapsed time.Duration) error {
	if slot >= len(r.Commands) || slot >= len(r.Sets) {
		return missing("frame slot resources")
	}
	cmd := r.Commands[slot]
	if err := cmd.Reset(); err != nil {
		return err
	}

	err := RecordDrawCommands(cmd, DrawInputs{
		RenderPass:    r.Targets.RenderPass.Get(),
		Framebuffer:   r.Targets.Framebuffer(int(image)),
		Extent:        r.Swapchain.Extent,
		Pipeline:      r.Pipeline.Pipeline.Get(),
		Layout:        r.Pipeline.Layout.VKPipelineLayout,
		VertexBuffer:  r.VertexBuffer.VKBuffer,
		IndexBuffer:   r.IndexBuffer.VKBuffer,
		IndexCount:    r.IndexCount,
		DescriptorSet: r.Sets[slot].VKDescriptorSet,
		TextureIndex:  r.cfg.TextureIndex,
		TextureCount:  len(r.Textures),
	}, r.log)
	if err != nil {
		return err
	}

	ubo := NewUniformBufferObject(elapsed, r.Swapchain.Extent.Width, r.Swapchain.Extent.Height)
	return r.Uniforms.Write(slot, &ubo)
}

func (r *Renderer) resetFence(f vk.Fence) error {
	return r.Context.Device.VKResetFence(f)
}

func (r *Renderer) submit(slot int, wait, signal vk.Semaphore, fence vk.Fence) error {
	submitInfo := []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{wait},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{r.Commands[slot].VKCommandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signal},
	}}
	return vkErr(vk.QueueSubmit(r.Context.GraphicsQueue.VKQueue, 1, submitInfo, fence), "vkQueueSubmit")
}

func (r *Renderer) present(image uint32, wait vk.Semaphore) vk.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{r.Swapchain.VKSwapchain},
		PImageIndices:      []uint32{image},
	}
	return vk.QueuePresent(r.Context.PresentQueue.VKQueue, &presentInfo)
}
