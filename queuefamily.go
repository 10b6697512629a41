package osge

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type QueueFamilySlice []*QueueFamily

func (ql QueueFamilySlice) Filter(f func(q *QueueFamily) bool) QueueFamilySlice {
	ret := make([]*QueueFamily, 0)
	for _, q := range ql {
		if f(q) {
			ret = append(ret, q)
		}
	}
	return ret
}

func (ql QueueFamilySlice) FilterPresent(surface vk.Surface) QueueFamilySlice {
	return ql.Filter(func(q *QueueFamily) bool {
		return q.SupportsPresent(surface)
	})
}

func (ql QueueFamilySlice) FilterGraphics() QueueFamilySlice {
	return ql.Filter(func(q *QueueFamily) bool {
		return q.IsGraphics()
	})
}

// QueueFamilyIndices holds the families the renderer submits to and presents from
type QueueFamilyIndices struct {
	Graphics int
	Present  int
}

// Shared reports whether graphics and presentation use the same family
func (q QueueFamilyIndices) Shared() bool {
	return q.Graphics == q.Present
}

// Unique returns the distinct family indices, graphics first
func (q QueueFamilyIndices) Unique() []uint32 {
	if q.Shared() {
		return []uint32{uint32(q.Graphics)}
	}
	return []uint32{uint32(q.Graphics), uint32(q.Present)}
}

// FindQueueFamilies picks the first graphics family and the first family able to present
// to surface, preferring one family which does both
func FindQueueFamilies(families QueueFamilySlice, surface vk.Surface) (QueueFamilyIndices, bool) {
	return pickQueueFamilies(families, func(q *QueueFamily) bool { return q.SupportsPresent(surface) })
}

func pickQueueFamilies(families QueueFamilySlice, presents func(q *QueueFamily) bool) (QueueFamilyIndices, bool) {
	ret := QueueFamilyIndices{Graphics: -1, Present: -1}
	for _, q := range families {
		g, p := q.IsGraphics(), presents(q)
		if g && p {
			return QueueFamilyIndices{Graphics: q.Index, Present: q.Index}, true
		}
		if g && ret.Graphics < 0 {
			ret.Graphics = q.Index
		}
		if p && ret.Present < 0 {
			ret.Present = q.Index
		}
	}
	return ret, ret.Graphics >= 0 && ret.Present >= 0
}

type QueueFamily struct {
	Index                   int
	PhysicalDevice          *PhysicalDevice
	VKQueueFamilyProperties vk.QueueFamilyProperties
}

func (q *QueueFamily) IsGraphics() bool {
	return q.VKQueueFamilyProperties.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) == vk.QueueFlags(vk.QueueGraphicsBit)
}

func (q *QueueFamily) IsTransfer() bool {
	return q.VKQueueFamilyProperties.QueueFlags&vk.QueueFlags(vk.QueueTransferBit) == vk.QueueFlags(vk.QueueTransferBit)
}

func (q *QueueFamily) SupportsPresent(surface vk.Surface) bool {
	var supportsPresent vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(q.PhysicalDevice.VKPhysicalDevice, uint32(q.Index), surface, &supportsPresent)
	return supportsPresent == vk.True
}

func (q *QueueFamily) String() string {
	return fmt.Sprintf("{ Index: %d Graphics: %v Transfer: %v }", q.Index, q.IsGraphics(), q.IsTransfer())
}
