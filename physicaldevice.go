package osge

import (
	"github.com/docker/go-units"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

type PhysicalDevice struct {
	DeviceName                 string
	VKPhysicalDevice           vk.PhysicalDevice
	VKPhysicalDeviceProperties vk.PhysicalDeviceProperties
}

func newPhysicalDevice(device vk.PhysicalDevice) *PhysicalDevice {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &props)
	props.Deref()
	props.Limits.Deref()
	return &PhysicalDevice{
		VKPhysicalDevice:           device,
		VKPhysicalDeviceProperties: props,
		DeviceName:                 vk.ToString(props.DeviceName[:]),
	}
}

func (p *PhysicalDevice) String() string {
	return p.DeviceName
}

func (p *PhysicalDevice) GetSurfacePresentModes(surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	if err := vkErr(vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, nil), "vkGetPhysicalDeviceSurfacePresentModes"); err != nil {
		return nil, err
	}

	f := make([]vk.PresentMode, count)
	if err := vkErr(vk.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface, &count, f), "vkGetPhysicalDeviceSurfacePresentModes"); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *PhysicalDevice) GetSurfaceFormats(surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	if err := vkErr(vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, nil), "vkGetPhysicalDeviceSurfaceFormats"); err != nil {
		return nil, err
	}

	f := make([]vk.SurfaceFormat, count)
	if err := vkErr(vk.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface, &count, f), "vkGetPhysicalDeviceSurfaceFormats"); err != nil {
		return nil, err
	}
	for i := range f {
		f[i].Deref()
	}
	return f, nil
}

func (p *PhysicalDevice) GetSurfaceCapabilities(surface vk.Surface) (*vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := vkErr(vk.GetPhysicalDeviceSurfaceCapabilities(p.VKPhysicalDevice, surface, &caps), "vkGetPhysicalDeviceSurfaceCapabilities"); err != nil {
		return nil, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return &caps, nil
}

func (p *PhysicalDevice) QueueFamilies() QueueFamilySlice {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &queueFamilyCount, nil)
	if queueFamilyCount == 0 {
		return nil
	}

	queues := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice, &queueFamilyCount, queues)

	ret := make([]*QueueFamily, queueFamilyCount)
	for i, queue := range queues {
		ret[i] = &QueueFamily{Index: i, PhysicalDevice: p, VKQueueFamilyProperties: queue}
		ret[i].VKQueueFamilyProperties.Deref()
	}
	return ret
}

type CreateDeviceOptions struct {
	EnabledExtensions []string
	EnabledLayers     []string
	// Features enabled on the logical device, the device's full feature set when nil
	Features *vk.PhysicalDeviceFeatures
}

// CreateLogicalDevice creates a logical device with one queue for every family index given
func (p *PhysicalDevice) CreateLogicalDevice(families []uint32, options *CreateDeviceOptions) (*Device, error) {
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(families))
	for j, index := range families {
		queueCreateInfos[j] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: index,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceFeatures := p.VKPhysicalDeviceFeatures()
	if options != nil && options.Features != nil {
		deviceFeatures = *options.Features
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),
		PQueueCreateInfos:    queueCreateInfos,
		PEnabledFeatures:     []vk.PhysicalDeviceFeatures{deviceFeatures},
	}

	if options != nil {
		if options.EnabledExtensions != nil {
			deviceCreateInfo.EnabledExtensionCount = uint32(len(options.EnabledExtensions))
			deviceCreateInfo.PpEnabledExtensionNames = safeStrings(options.EnabledExtensions)
		}
		if options.EnabledLayers != nil {
			deviceCreateInfo.EnabledLayerCount = uint32(len(options.EnabledLayers))
			deviceCreateInfo.PpEnabledLayerNames = safeStrings(options.EnabledLayers)
		}
	}

	var ldevice vk.Device
	if err := vkErr(vk.CreateDevice(p.VKPhysicalDevice, &deviceCreateInfo, nil, &ldevice), "vkCreateDevice"); err != nil {
		return nil, err
	}

	return &Device{PhysicalDevice: p, VKDevice: ldevice}, nil
}

func (p *PhysicalDevice) VKPhysicalDeviceFeatures() vk.PhysicalDeviceFeatures {
	var deviceFeatures vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(p.VKPhysicalDevice, &deviceFeatures)
	deviceFeatures.Deref()
	return deviceFeatures
}

// HasGeometryShader reports whether the device supports geometry shaders
func (p *PhysicalDevice) HasGeometryShader() bool {
	f := p.VKPhysicalDeviceFeatures()
	return f.GeometryShader == vk.True
}

func (p *PhysicalDevice) VKPhysicalDeviceMemoryProperties() vk.PhysicalDeviceMemoryProperties {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(p.VKPhysicalDevice, &memoryProperties)
	memoryProperties.Deref()
	return memoryProperties
}

func (p *PhysicalDevice) MemoryTypes() []vk.MemoryType {
	mp := p.VKPhysicalDeviceMemoryProperties()

	ret := make([]vk.MemoryType, 0, mp.MemoryTypeCount)
	for i := uint32(0); i < mp.MemoryTypeCount; i++ {
		mt := mp.MemoryTypes[i]
		mt.Deref()
		ret = append(ret, mt)
	}
	return ret
}

// MemoryHeaps returns the sizes of the device memory heaps
func (p *PhysicalDevice) MemoryHeaps() []vk.MemoryHeap {
	mp := p.VKPhysicalDeviceMemoryProperties()

	ret := make([]vk.MemoryHeap, 0, mp.MemoryHeapCount)
	for i := uint32(0); i < mp.MemoryHeapCount; i++ {
		h := mp.MemoryHeaps[i]
		h.Deref()
		ret = append(ret, h)
	}
	return ret
}

// FindMemoryType returns the lowest memory type index allowed by memoryTypeBits which has
// every flag in properties
func (p *PhysicalDevice) FindMemoryType(memoryTypeBits uint32, properties vk.MemoryPropertyFlagBits) (uint32, error) {
	return findMemoryType(p.MemoryTypes(), memoryTypeBits, properties)
}

func findMemoryType(types []vk.MemoryType, memoryTypeBits uint32, properties vk.MemoryPropertyFlagBits) (uint32, error) {
	for i := range types {
		if i >= 32 {
			break
		}
		if memoryTypeBits&(1<<uint(i)) != 0 &&
			vk.MemoryPropertyFlagBits(types[i].PropertyFlags)&properties == properties {
			return uint32(i), nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "type bits %#b, properties %#x", memoryTypeBits, uint32(properties))
}

// FormatFeatures returns the optimal tiling features of format
func (p *PhysicalDevice) FormatFeatures(format vk.Format) vk.FormatFeatureFlags {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(p.VKPhysicalDevice, format, &props)
	props.Deref()
	return props.OptimalTilingFeatures
}

// MaxUsableSampleCount returns the highest sample count supported for both color and
// depth attachments, capped at ceiling samples. A ceiling below 1 means no cap.
func (p *PhysicalDevice) MaxUsableSampleCount(ceiling int) vk.SampleCountFlagBits {
	limits := p.VKPhysicalDeviceProperties.Limits
	counts := limits.FramebufferColorSampleCounts & limits.FramebufferDepthSampleCounts
	return maxSampleCount(counts, ceiling)
}

var sampleCounts = []struct {
	bit vk.SampleCountFlagBits
	n   int
}{
	{vk.SampleCount64Bit, 64},
	{vk.SampleCount32Bit, 32},
	{vk.SampleCount16Bit, 16},
	{vk.SampleCount8Bit, 8},
	{vk.SampleCount4Bit, 4},
	{vk.SampleCount2Bit, 2},
}

func maxSampleCount(counts vk.SampleCountFlags, ceiling int) vk.SampleCountFlagBits {
	for _, c := range sampleCounts {
		if ceiling > 0 && c.n > ceiling {
			continue
		}
		if counts&vk.SampleCountFlags(c.bit) != 0 {
			return c.bit
		}
	}
	return vk.SampleCount1Bit
}

// SupportedExtensions returns the names of the device extensions
func (p *PhysicalDevice) SupportedExtensions() ([]string, error) {
	var count uint32
	if err := vkErr(vk.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice, "", &count, nil), "vkEnumerateDeviceExtensionProperties"); err != nil {
		return nil, err
	}

	ext := make([]vk.ExtensionProperties, count)
	if err := vkErr(vk.EnumerateDeviceExtensionProperties(p.VKPhysicalDevice, "", &count, ext), "vkEnumerateDeviceExtensionProperties"); err != nil {
		return nil, err
	}
	names := make([]string, len(ext))
	for i := range ext {
		ext[i].Deref()
		names[i] = vk.ToString(ext[i].ExtensionName[:])
	}
	return names, nil
}

// SupportsExtension reports whether the device offers the named extension
func (p *PhysicalDevice) SupportsExtension(name string) bool {
	exts, err := p.SupportedExtensions()
	if err != nil {
		return false
	}
	for _, e := range exts {
		if e == name {
			return true
		}
	}
	return false
}

// DeviceTypeName returns a readable name for the device type
func DeviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "other"
	}
}

// LogInfo writes a summary of the device to log
func (p *PhysicalDevice) LogInfo(log *slog.Logger) {
	props := p.VKPhysicalDeviceProperties
	var local, total uint64
	for _, h := range p.MemoryHeaps() {
		total += uint64(h.Size)
		if h.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 {
			local += uint64(h.Size)
		}
	}
	log.Info("physical device",
		slog.String("name", p.DeviceName),
		slog.String("type", DeviceTypeName(props.DeviceType)),
		slog.String("api", apiVersionString(props.ApiVersion)),
		slog.String("device_local", units.BytesSize(float64(local))),
		slog.String("heaps_total", units.BytesSize(float64(total))),
		slog.Int("max_image_2d", int(props.Limits.MaxImageDimension2D)),
	)
}

func apiVersionString(v uint32) string {
	return Version{
		Major: int(v >> 22),
		Minor: int((v >> 12) & 0x3ff),
		Patch: int(v & 0xfff),
	}.String()
}
