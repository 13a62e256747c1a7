package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/hesom/ParticleSystem/core"
)

// Byte sizes of the GPU-visible records. WGSL-side structs must agree.
const (
	instanceStride    = 32 // vec3 center + f32 size + vec4 color
	textVertexStride  = 32 // vec2 pos + vec2 uv + vec4 color
	cameraUniformSize = 96 // mat4 view_proj + vec4 right + vec4 up
)

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func grow(buf []byte, need int) []byte {
	if cap(buf) < need {
		return make([]byte, need)
	}
	return buf[:need]
}

// packCamera lays out the camera uniform: view-projection matrix, then the
// camera right and up axes used for billboarding, each padded to vec4.
func packCamera(buf []byte, viewProj mgl32.Mat4, right, up mgl32.Vec3) []byte {
	buf = grow(buf, cameraUniformSize)
	for i, v := range viewProj {
		putF32(buf, i*4, v)
	}
	for i := 0; i < 3; i++ {
		putF32(buf, 64+i*4, right[i])
		putF32(buf, 80+i*4, up[i])
	}
	putF32(buf, 76, 0)
	putF32(buf, 92, 0)
	return buf
}

func packInstances(buf []byte, instances []core.ParticleInstance) []byte {
	buf = grow(buf, len(instances)*instanceStride)
	off := 0
	for i := range instances {
		in := &instances[i]
		putF32(buf, off+0, in.Pos[0])
		putF32(buf, off+4, in.Pos[1])
		putF32(buf, off+8, in.Pos[2])
		putF32(buf, off+12, in.Size)
		putF32(buf, off+16, in.Color[0])
		putF32(buf, off+20, in.Color[1])
		putF32(buf, off+24, in.Color[2])
		putF32(buf, off+28, in.Color[3])
		off += instanceStride
	}
	return buf
}

func packTextVertices(buf []byte, vertices []core.TextVertex) []byte {
	buf = grow(buf, len(vertices)*textVertexStride)
	off := 0
	for i := range vertices {
		v := &vertices[i]
		putF32(buf, off+0, v.Pos[0])
		putF32(buf, off+4, v.Pos[1])
		putF32(buf, off+8, v.UV[0])
		putF32(buf, off+12, v.UV[1])
		putF32(buf, off+16, v.Color[0])
		putF32(buf, off+20, v.Color[1])
		putF32(buf, off+24, v.Color[2])
		putF32(buf, off+28, v.Color[3])
		off += textVertexStride
	}
	return buf
}
