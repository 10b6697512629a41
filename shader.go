package osge

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/ArchorByte/osge-sub000/assets"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slog"
)

// spirvMagic is the first word of every SPIR-V module
const spirvMagic = 0x07230203

type ShaderModule struct {
	Device         *Device
	Description    string
	VKShaderModule vk.ShaderModule
}

// ShaderSource is a SPIR-V blob and the stage it was discovered for
type ShaderSource struct {
	Path  string
	Stage vk.ShaderStageFlagBits
	Code  []byte
}

// ValidSPIRV reports whether code is a whole number of words starting with the SPIR-V magic
func ValidSPIRV(code []byte) bool {
	if len(code) < 4 || len(code)%4 != 0 {
		return false
	}
	return binary.LittleEndian.Uint32(code) == spirvMagic
}

// ShaderStageForPath maps a .vert or .frag file to its pipeline stage
func ShaderStageForPath(path string) (vk.ShaderStageFlagBits, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vert":
		return vk.ShaderStageVertexBit, true
	case ".frag":
		return vk.ShaderStageFragmentBit, true
	}
	return 0, false
}

// DiscoverShaders scans dir for .vert and .frag SPIR-V files. Unreadable or invalid files
// are skipped with a warning. The first valid file of each stage, in name order, is used;
// a missing vertex or fragment stage returns ErrNoShaders.
func DiscoverShaders(dir string, log *slog.Logger) ([]ShaderSource, error) {
	paths, err := assets.ScanDir(dir, ".vert", ".frag")
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s for shaders", dir)
	}

	var vert, frag *ShaderSource
	for _, p := range paths {
		stage, _ := ShaderStageForPath(p)
		code, err := os.ReadFile(p)
		if err != nil {
			log.Warn("skipping unreadable shader", slog.String("path", p), slog.Any("error", err))
			continue
		}
		if !ValidSPIRV(code) {
			log.Warn("skipping invalid SPIR-V", slog.String("path", p), slog.Int("bytes", len(code)))
			continue
		}

		src := &ShaderSource{Path: p, Stage: stage, Code: code}
		slot := &vert
		if stage == vk.ShaderStageFragmentBit {
			slot = &frag
		}
		if *slot != nil {
			log.Warn("ignoring extra shader for stage", slog.String("path", p), slog.String("using", (*slot).Path))
			continue
		}
		*slot = src
		log.Debug("shader found", slog.String("path", p))
	}

	if vert == nil || frag == nil {
		return nil, errors.Wrapf(ErrNoShaders, "%s needs one vertex and one fragment shader", dir)
	}
	return []ShaderSource{*vert, *frag}, nil
}

// LoadShaderModule creates a shader module from a SPIR-V blob
func (d *Device) LoadShaderModule(description string, code []byte) (*ShaderModule, error) {
	if !ValidSPIRV(code) {
		return nil, invalid("shader %s is not SPIR-V", description)
	}
	var module vk.ShaderModule
	err := vkErr(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}, nil, &module), "vkCreateShaderModule")
	if err != nil {
		return nil, errors.Wrap(err, description)
	}

	return &ShaderModule{
		VKShaderModule: module,
		Device:         d,
		Description:    description,
	}, nil
}

func (s *ShaderModule) VKPipelineShaderStageCreateInfo(stage vk.ShaderStageFlagBits, entryPoint string) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: s.VKShaderModule,
		PName:  safeString(entryPoint),
	}
}

func (s *ShaderModule) Destroy() {
	if s.VKShaderModule == vk.NullShaderModule {
		s.Device.nullDestroy("shader module")
		return
	}
	vk.DestroyShaderModule(s.Device.VKDevice, s.VKShaderModule, nil)
	s.VKShaderModule = vk.NullShaderModule
}

func sliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
