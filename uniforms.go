package osge

import (
	"math"
	"time"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformBufferObject is the per frame block bound at binding 0
type UniformBufferObject struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

var uniformBufferObjectSize = uint64(unsafe.Sizeof(UniformBufferObject{}))

func (u *UniformBufferObject) Bytes() []byte {
	return ToBytes(unsafe.Pointer(u), int(uniformBufferObjectSize))
}

// rotationSpeed is the model spin in radians per second
const rotationSpeed = math.Pi / 2

// NewUniformBufferObject computes the matrices for a frame elapsed into the session. The
// model spins around Z, the camera looks at the origin from (2, 2, 2) and the projection is
// flipped vertically for Vulkan's clip space.
func NewUniformBufferObject(elapsed time.Duration, width, height uint32) UniformBufferObject {
	aspect := float32(1)
	if height != 0 {
		aspect = float32(width) / float32(height)
	}

	angle := float32(elapsed.Seconds() * rotationSpeed)
	proj := mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 10)
	proj[5] *= -1

	return UniformBufferObject{
		Model: mgl32.HomogRotate3D(angle, mgl32.Vec3{0, 0, 1}),
		View: mgl32.LookAtV(
			mgl32.Vec3{2, 2, 2},
			mgl32.Vec3{0, 0, 0},
			mgl32.Vec3{0, 0, 1},
		),
		Proj: proj,
	}
}
