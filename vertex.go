package osge

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

type BufferObject interface {
	Bytes() []byte
}

type IndexSource interface {
	BufferObject
	IndexType() vk.IndexType
	Count() int
}

type VertexSource interface {
	BufferObject
	GetBindingDescription() vk.VertexInputBindingDescription
	GetAttributeDescriptions() []vk.VertexInputAttributeDescription
}

// Vertex is the layout consumed by the vertex shader: location 0 position, location 1
// color and location 2 texture coordinate
type Vertex struct {
	Pos      mgl32.Vec3
	Color    mgl32.Vec3
	TexCoord mgl32.Vec2
}

var vertexSize = uint32(unsafe.Sizeof(Vertex{}))

// VertexData is a tightly packed vertex array
type VertexData []Vertex

func (v VertexData) Bytes() []byte {
	if len(v) == 0 {
		return nil
	}
	return ToBytes(unsafe.Pointer(&v[0]), len(v)*int(vertexSize))
}

func (v VertexData) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    vertexSize,
		InputRate: vk.VertexInputRateVertex,
	}
}

func (v VertexData) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
		{
			Binding:  0,
			Location: 2,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.TexCoord)),
		},
	}
}

// IndexData holds 32 bit indices
type IndexData []uint32

func (i IndexData) Bytes() []byte {
	if len(i) == 0 {
		return nil
	}
	return ToBytes(unsafe.Pointer(&i[0]), len(i)*int(unsafe.Sizeof(uint32(0))))
}

func (i IndexData) IndexType() vk.IndexType {
	return vk.IndexTypeUint32
}

func (i IndexData) Count() int {
	return len(i)
}

// Mesh is geometry ready for upload
type Mesh struct {
	Vertices VertexData
	Indices  IndexData
}

// Append adds m to the mesh, rebasing its indices past the vertices already present
func (mesh *Mesh) Append(m Mesh) {
	base := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, m.Vertices...)
	for _, idx := range m.Indices {
		mesh.Indices = append(mesh.Indices, base+idx)
	}
}
