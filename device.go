package osge

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

type Device struct {
	PhysicalDevice *PhysicalDevice
	VKDevice       vk.Device

	// Log receives errors from the wrappers created on this device, slog.Default when nil
	Log *slog.Logger
}

func (d *Device) Destroy() {
	if d.VKDevice == nil {
		d.nullDestroy("device")
		return
	}
	vk.DestroyDevice(d.VKDevice, nil)
	d.VKDevice = nil
}

// nullDestroy logs a destroy of an object which holds no native handle, either because it
// was never created or because it was already released
func (d *Device) nullDestroy(kind string) {
	log := slog.Default()
	if d != nil && d.Log != nil {
		log = d.Log
	}
	log.Error("destroy called on null handle", slog.String("kind", kind))
}

func (d *Device) String() string {
	return fmt.Sprintf("{ PhysicalDevice: %s }", d.PhysicalDevice)
}

func (d *Device) WaitIdle() error {
	return vkErr(vk.DeviceWaitIdle(d.VKDevice), "vkDeviceWaitIdle")
}

func (d *Device) GetQueue(familyIndex int) *Queue {
	var vkq vk.Queue
	vk.GetDeviceQueue(d.VKDevice, uint32(familyIndex), 0, &vkq)

	return &Queue{
		Device:      d,
		FamilyIndex: familyIndex,
		VKQueue:     vkq,
	}
}

type AllocationRequirements struct {
	Size           int
	MemoryTypeBits uint32
}

func (d *Device) AllocateForBuffer(b *Buffer, memoryProperties vk.MemoryPropertyFlagBits) (*DeviceMemory, error) {
	ar := b.AllocationRequirements()
	return d.Allocate(ar.Size, ar.MemoryTypeBits, memoryProperties)
}

func (d *Device) AllocateForImage(i *Image, memoryProperties vk.MemoryPropertyFlagBits) (*DeviceMemory, error) {
	ar := i.AllocationRequirements()
	return d.Allocate(ar.Size, ar.MemoryTypeBits, memoryProperties)
}

// Allocate allocates sizeInBytes of memory from the lowest memory type allowed by
// memoryTypeBits which has all of memoryProperties
func (d *Device) Allocate(sizeInBytes int, memoryTypeBits uint32, memoryProperties vk.MemoryPropertyFlagBits) (*DeviceMemory, error) {
	typeIndex, err := d.PhysicalDevice.FindMemoryType(memoryTypeBits, memoryProperties)
	if err != nil {
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(sizeInBytes),
		MemoryTypeIndex: typeIndex,
	}

	var deviceMemory vk.DeviceMemory
	if err := vkErr(vk.AllocateMemory(d.VKDevice, &allocateInfo, nil, &deviceMemory), "vkAllocateMemory"); err != nil {
		return nil, err
	}

	return &DeviceMemory{
		Size:           uint64(sizeInBytes),
		Device:         d,
		VKDeviceMemory: deviceMemory,
	}, nil
}

// DeviceContext bundles the chosen physical device, the logical device created from it
// and the queues the renderer submits to and presents from
type DeviceContext struct {
	Instance      *Instance
	Surface       vk.Surface
	Device        *Device
	Families      QueueFamilyIndices
	GraphicsQueue *Queue
	PresentQueue  *Queue
	// Samples is the MSAA sample count used by the color and depth targets
	Samples vk.SampleCountFlagBits

	anisotropy bool
}

const swapchainExtension = "VK_KHR_swapchain"

// DeviceOptions controls how NewDeviceContext picks and configures the device
type DeviceOptions struct {
	// Suitable filters physical devices, HasGeometryShader when nil
	Suitable func(p *PhysicalDevice) bool
	// MaxSamples caps the MSAA sample count, 0 means the device maximum
	MaxSamples int
}

// SelectPhysicalDevice returns the first device for which suitable reports true. A nil
// suitable selects the first device with geometry shader support.
func SelectPhysicalDevice(devices []*PhysicalDevice, suitable func(p *PhysicalDevice) bool) (*PhysicalDevice, error) {
	if len(devices) == 0 {
		return nil, errors.Wrap(ErrNoDevice, "no device exposes Vulkan")
	}
	if suitable == nil {
		suitable = (*PhysicalDevice).HasGeometryShader
	}
	for _, d := range devices {
		if suitable(d) {
			return d, nil
		}
	}
	return nil, ErrNoDevice
}

// NewDeviceContext selects a physical device, creates the logical device with the
// swapchain extension and every supported feature enabled, and fetches its graphics and
// present queues
func NewDeviceContext(instance *Instance, surface vk.Surface, opts DeviceOptions, log *slog.Logger) (*DeviceContext, error) {
	devices, err := instance.PhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerating physical devices")
	}
	suitable := opts.Suitable
	if suitable == nil {
		suitable = (*PhysicalDevice).HasGeometryShader
	}
	pd, err := SelectPhysicalDevice(devices, func(p *PhysicalDevice) bool {
		return p.SupportsExtension(swapchainExtension) && suitable(p)
	})
	if err != nil {
		return nil, err
	}
	pd.LogInfo(log)

	families, ok := FindQueueFamilies(pd.QueueFamilies(), surface)
	if !ok {
		return nil, errors.Wrapf(ErrNoDevice, "%s has no graphics or present queue", pd)
	}

	features := pd.VKPhysicalDeviceFeatures()
	device, err := pd.CreateLogicalDevice(families.Unique(), &CreateDeviceOptions{
		EnabledExtensions: []string{swapchainExtension},
		Features:          &features,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating logical device")
	}
	device.Log = log

	ctx := &DeviceContext{
		Instance:      instance,
		Surface:       surface,
		Device:        device,
		Families:      families,
		GraphicsQueue: device.GetQueue(families.Graphics),
		PresentQueue:  device.GetQueue(families.Present),
		Samples:       pd.MaxUsableSampleCount(opts.MaxSamples),
		anisotropy:    features.SamplerAnisotropy == vk.True,
	}
	log.Debug("device context ready",
		slog.Int("graphics_family", families.Graphics),
		slog.Int("present_family", families.Present),
		slog.Int("samples", int(ctx.Samples)))
	return ctx, nil
}

// AnisotropyEnabled reports whether sampler anisotropy was enabled on the logical device
func (c *DeviceContext) AnisotropyEnabled() bool {
	return c.anisotropy
}

// WaitIdle blocks until the device has finished all submitted work
func (c *DeviceContext) WaitIdle() error {
	return c.Device.WaitIdle()
}

// Destroy destroys the logical device. The surface and instance are owned by the caller.
func (c *DeviceContext) Destroy() {
	if c.Device != nil {
		c.Device.Destroy()
		c.Device = nil
	}
}
