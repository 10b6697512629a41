package osge

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// depthFormatCandidates are probed in order by FindDepthFormat
var depthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

// FindDepthFormat returns the first candidate depth format whose optimal tiling features,
// as reported by query, include depth stencil attachment support
func FindDepthFormat(query func(vk.Format) vk.FormatFeatureFlags) (vk.Format, error) {
	want := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, f := range depthFormatCandidates {
		if query(f)&want == want {
			return f, nil
		}
	}
	return vk.FormatUndefined, ErrNoDepthFormat
}

// RenderTargets owns the render pass, the multisampled color and depth attachments and
// one framebuffer per swapchain image. Framebuffer i binds color, depth and swapchain
// view i, the last being the resolve target.
type RenderTargets struct {
	Device      *Device
	Samples     vk.SampleCountFlagBits
	ColorFormat vk.Format
	DepthFormat vk.Format
	Extent      vk.Extent2D

	RenderPass *Handle[vk.RenderPass]

	Color     *BoundImage
	ColorView *ImageView
	Depth     *BoundImage
	DepthView *ImageView

	Framebuffers []*Handle[vk.Framebuffer]

	pool  *CommandPool
	queue *Queue
	log   *slog.Logger
}

// NewRenderTargets builds the render pass and every attachment for sc. pool is used for
// the one time depth layout transition.
func NewRenderTargets(ctx *DeviceContext, sc *Swapchain, views []*ImageView, pool *CommandPool, log *slog.Logger) (*RenderTargets, error) {
	depthFormat, err := FindDepthFormat(ctx.Device.PhysicalDevice.FormatFeatures)
	if err != nil {
		return nil, err
	}
	r := &RenderTargets{
		Device:      ctx.Device,
		Samples:     ctx.Samples,
		DepthFormat: depthFormat,
		pool:        pool,
		queue:       ctx.GraphicsQueue,
		log:         log,
	}
	if err := r.Rebuild(sc, views); err != nil {
		r.Destroy()
		return nil, err
	}
	log.Debug("render targets ready",
		slog.Int("depth_format", int(depthFormat)),
		slog.Int("samples", int(r.Samples)))
	return r, nil
}

// Multisampled reports whether the pass renders into an intermediate color target which
// is resolved into the swapchain image
func (r *RenderTargets) Multisampled() bool {
	return r.Samples > vk.SampleCount1Bit
}

// Rebuild creates the attachments and framebuffers for a new swapchain. Framebuffers and
// attachments of the previous swapchain must already have been released with
// DestroyFramebuffers and DestroyAttachments. The render pass is kept unless the swapchain
// format changed.
func (r *RenderTargets) Rebuild(sc *Swapchain, views []*ImageView) error {
	if sc == nil || len(views) == 0 {
		return missing("swapchain image views")
	}
	if r.RenderPass.Valid() && r.ColorFormat != sc.Format {
		r.RenderPass.Destroy()
	}
	r.ColorFormat = sc.Format
	r.Extent = sc.Extent

	if !r.RenderPass.Valid() {
		rp, err := r.createRenderPass()
		if err != nil {
			return errors.Wrap(err, "creating render pass")
		}
		r.RenderPass = rp
	}
	if err := r.createAttachments(); err != nil {
		return err
	}
	return r.createFramebuffers(views)
}

func (r *RenderTargets) renderPassCreateInfo() vk.RenderPassCreateInfo {
	color := vk.AttachmentDescription{
		Format:         r.ColorFormat,
		Samples:        r.Samples,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	if r.Multisampled() {
		color.StoreOp = vk.AttachmentStoreOpDontCare
		color.FinalLayout = vk.ImageLayoutColorAttachmentOptimal
	}

	attachments := []vk.AttachmentDescription{
		color,
		{
			Format:         r.DepthFormat,
			Samples:        r.Samples,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	depthAttachmentRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
		PDepthStencilAttachment: &depthAttachmentRef,
	}

	if r.Multisampled() {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         r.ColorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpDontCare,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		})
		subpass.PResolveAttachments = []vk.AttachmentReference{{
			Attachment: 2,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}}
	}

	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit)
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  stages,
		SrcAccessMask: vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
		DstStageMask:  stages,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}

	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
}

func (r *RenderTargets) createRenderPass() (*Handle[vk.RenderPass], error) {
	device := r.Device.VKDevice
	return CreateHandle("render pass", func() (vk.RenderPass, error) {
		info := r.renderPassCreateInfo()
		var rp vk.RenderPass
		if err := vkErr(vk.CreateRenderPass(device, &info, nil, &rp), "vkCreateRenderPass"); err != nil {
			return vk.NullRenderPass, err
		}
		return rp, nil
	}, func(rp vk.RenderPass) {
		vk.DestroyRenderPass(device, rp, nil)
	}, r.log)
}

func (r *RenderTargets) createAttachments() error {
	var err error
	if r.Multisampled() {
		r.Color, err = r.Device.CreateBoundImage(ImageOptions{
			Extent:  r.Extent,
			Format:  r.ColorFormat,
			Tiling:  vk.ImageTilingOptimal,
			Usage:   vk.ImageUsageTransientAttachmentBit | vk.ImageUsageColorAttachmentBit,
			Samples: r.Samples,
		}, vk.MemoryPropertyDeviceLocalBit)
		if err != nil {
			return errors.Wrap(err, "creating color target")
		}
		if r.ColorView, err = r.Color.CreateImageView(); err != nil {
			return errors.Wrap(err, "creating color target view")
		}
	}

	r.Depth, err = r.Device.CreateBoundImage(ImageOptions{
		Extent:  r.Extent,
		Format:  r.DepthFormat,
		Tiling:  vk.ImageTilingOptimal,
		Usage:   vk.ImageUsageDepthStencilAttachmentBit,
		Samples: r.Samples,
	}, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return errors.Wrap(err, "creating depth target")
	}
	if r.DepthView, err = r.Depth.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectDepthBit)); err != nil {
		return errors.Wrap(err, "creating depth target view")
	}

	return r.pool.RunOneTime(r.queue, func(cmd *CommandBuffer) error {
		return cmd.CmdTransitionImageLayout(r.Depth.Image, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal)
	})
}

// framebufferAttachments returns the views bound by the framebuffer of one swapchain view
func (r *RenderTargets) framebufferAttachments(view vk.ImageView) []vk.ImageView {
	if r.Multisampled() {
		return []vk.ImageView{r.ColorView.VKImageView, r.DepthView.VKImageView, view}
	}
	return []vk.ImageView{view, r.DepthView.VKImageView}
}

func (r *RenderTargets) createFramebuffers(views []*ImageView) error {
	device := r.Device.VKDevice
	release := func(fb vk.Framebuffer) { vk.DestroyFramebuffer(device, fb, nil) }

	r.Framebuffers = make([]*Handle[vk.Framebuffer], 0, len(views))
	for i, view := range views {
		attachments := r.framebufferAttachments(view.VKImageView)
		fbCreateInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      r.RenderPass.Get(),
			Layers:          1,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           r.Extent.Width,
			Height:          r.Extent.Height,
		}
		var fb vk.Framebuffer
		if err := vkErr(vk.CreateFramebuffer(device, &fbCreateInfo, nil, &fb), "vkCreateFramebuffer"); err != nil {
			return errors.Wrapf(err, "framebuffer %d", i)
		}
		r.Framebuffers = append(r.Framebuffers, NewHandle("framebuffer", fb, release, r.log))
	}
	return nil
}

// Framebuffer returns the framebuffer targeting swapchain image i
func (r *RenderTargets) Framebuffer(i int) vk.Framebuffer {
	if i < 0 || i >= len(r.Framebuffers) {
		return vk.NullFramebuffer
	}
	return r.Framebuffers[i].Get()
}

// DestroyFramebuffers releases every framebuffer. It must run before the swapchain views
// they reference are destroyed.
func (r *RenderTargets) DestroyFramebuffers() {
	for _, fb := range r.Framebuffers {
		fb.Destroy()
	}
	r.Framebuffers = nil
}

// DestroyAttachments releases the color and depth targets
func (r *RenderTargets) DestroyAttachments() {
	if r.ColorView != nil {
		r.ColorView.Destroy()
		r.ColorView = nil
	}
	if r.Color != nil {
		r.Color.Destroy()
		r.Color = nil
	}
	if r.DepthView != nil {
		r.DepthView.Destroy()
		r.DepthView = nil
	}
	if r.Depth != nil {
		r.Depth.Destroy()
		r.Depth = nil
	}
}

// Destroy releases everything, the render pass last
func (r *RenderTargets) Destroy() {
	r.DestroyFramebuffers()
	r.DestroyAttachments()
	if r.RenderPass.Valid() {
		r.RenderPass.Destroy()
	}
}
