package osge

import (
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// ChooseSurfaceFormat returns the 8 bit BGRA sRGB format with the sRGB non linear color
// space when the surface offers it, otherwise the first format reported. An empty list
// yields the zero format.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat, log *slog.Logger) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	if len(formats) == 0 {
		log.Warn("surface reports no formats")
		return vk.SurfaceFormat{}
	}
	log.Warn("preferred surface format unavailable, using first reported",
		slog.Int("format", int(formats[0].Format)),
		slog.Int("color_space", int(formats[0].ColorSpace)))
	return formats[0]
}

// ChoosePresentMode prefers mailbox, then immediate, and falls back to FIFO which every
// implementation must support
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, want := range []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeImmediate} {
		for _, m := range modes {
			if m == want {
				return m
			}
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent clamps the framebuffer size of the window to the extent bounds of the surface
func ChooseExtent(caps *vk.SurfaceCapabilities, width, height int) vk.Extent2D {
	return vk.Extent2D{
		Width:  clampU32(nonNegative(width), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampU32(nonNegative(height), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum so the driver never stalls the
// acquire, within the maximum when the surface reports one
func ChooseImageCount(caps *vk.SurfaceCapabilities, log *slog.Logger) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		log.Info("clamping swapchain image count",
			slog.Int("wanted", int(count)),
			slog.Int("max", int(caps.MaxImageCount)))
		count = caps.MaxImageCount
	}
	return count
}

func nonNegative(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
