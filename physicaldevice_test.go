package osge

import (
	"testing"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func memType(flags vk.MemoryPropertyFlagBits) vk.MemoryType {
	return vk.MemoryType{PropertyFlags: vk.MemoryPropertyFlags(flags)}
}

func TestFindMemoryType(t *testing.T) {
	types := []vk.MemoryType{
		memType(vk.MemoryPropertyDeviceLocalBit),
		memType(vk.MemoryPropertyHostVisibleBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit | vk.MemoryPropertyHostCachedBit),
	}
	hostCoherent := vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit

	tests := []struct {
		name  string
		bits  uint32
		props vk.MemoryPropertyFlagBits
		want  uint32
	}{
		{"device local", 0xf, vk.MemoryPropertyDeviceLocalBit, 0},
		{"lowest superset", 0xf, hostCoherent, 2},
		{"bit filter", 0x8, hostCoherent, 3},
		{"any visible", 0xe, vk.MemoryPropertyHostVisibleBit, 1},
		{"no properties", 0x4, 0, 2},
	}
	for _, tt := range tests {
		got, err := findMemoryType(types, tt.bits, tt.props)
		if err != nil || got != tt.want {
			t.Errorf("%s: findMemoryType = %d, %v, want %d", tt.name, got, err, tt.want)
		}
	}
}

func TestFindMemoryTypeNoMatch(t *testing.T) {
	types := []vk.MemoryType{
		memType(vk.MemoryPropertyDeviceLocalBit),
		memType(vk.MemoryPropertyHostVisibleBit),
	}
	for _, bits := range []uint32{0, 0x1, 0x4} {
		_, err := findMemoryType(types, bits, vk.MemoryPropertyHostVisibleBit)
		if errors.Cause(err) != ErrNoMemoryType {
			t.Errorf("bits %#b: err = %v, want ErrNoMemoryType", bits, err)
		}
	}
}

func TestMaxSampleCount(t *testing.T) {
	all := vk.SampleCountFlags(vk.SampleCount1Bit | vk.SampleCount2Bit | vk.SampleCount4Bit | vk.SampleCount8Bit)
	tests := []struct {
		counts  vk.SampleCountFlags
		ceiling int
		want    vk.SampleCountFlagBits
	}{
		{all, 0, vk.SampleCount8Bit},
		{all, 4, vk.SampleCount4Bit},
		{all, 6, vk.SampleCount4Bit},
		{all, 1, vk.SampleCount1Bit},
		{vk.SampleCountFlags(vk.SampleCount1Bit), 8, vk.SampleCount1Bit},
		{vk.SampleCountFlags(vk.SampleCount1Bit | vk.SampleCount2Bit | vk.SampleCount64Bit), 0, vk.SampleCount64Bit},
		{0, 0, vk.SampleCount1Bit},
	}
	for _, tt := range tests {
		if got := maxSampleCount(tt.counts, tt.ceiling); got != tt.want {
			t.Errorf("maxSampleCount(%#x, %d) = %d, want %d", tt.counts, tt.ceiling, got, tt.want)
		}
	}
}

func TestDeviceTypeName(t *testing.T) {
	if DeviceTypeName(vk.PhysicalDeviceTypeDiscreteGpu) != "discrete" {
		t.Error("discrete gpu misnamed")
	}
	if DeviceTypeName(vk.PhysicalDeviceTypeOther) != "other" {
		t.Error("other device misnamed")
	}
}

func TestAPIVersionString(t *testing.T) {
	if got := apiVersionString(vk.MakeVersion(1, 3, 250)); got != "1.3.250" {
		t.Errorf("apiVersionString = %q", got)
	}
}
