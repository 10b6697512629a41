/*
Package osge is the GPU frame-rendering core of the osge engine, built atop the Vulkan
bindings provided by github.com/vulkan-go/vulkan.

It owns the presentation surface, the swapchain and its render targets, the per-frame
CPU/GPU synchronization, command recording and the lifetime of every GPU resident
resource the engine uses (vertex, index and uniform buffers, textures, descriptor sets and
pipelines).

Object graph

Every object below is created from, and must be destroyed before, the object above it:

	Instance
	  DeviceContext        physical + logical device, graphics and present queues
	    Swapchain          presentable images, surface format, present mode, extent
	      ImageView[N]     one per swapchain image
	      RenderTargets    MSAA color + depth images, render pass, framebuffers
	    FrameSync          fences[N], image available[N], render finished[N]
	    CommandBuffer[N]   re-recorded every frame
	    BoundBuffer        vertex and index data (staged into device local memory)
	    UniformPool        per image uniform buffers, persistently mapped
	    Texture            image, memory, view and sampler with a full mip chain
	    DescriptorSet[N]   uniform buffer (binding 0) and textures (binding 1)
	    GraphicsPipeline   immutable for the lifetime of the renderer

Frame loop

Renderer.DrawFrame returns a FrameResult rather than an error. FrameRecreate signals that
the swapchain is stale; the caller runs Renderer.Recreate, which itself may return
FrameExit when the window was closed while minimized.

	for {
		switch r.DrawFrame(clock) {
		case osge.FrameRecreate:
			if r.Recreate() == osge.FrameExit {
				return
			}
		case osge.FrameExit:
			return
		}
	}

Native Vulkan structures are exposed on every wrapper through fields prefixed with 'VK',
so applications are never limited by what this package wraps.
*/
package osge
