// Package gfx defines the graphics API boundary used by the renderer.
//
// Everything above this package talks to a Device; the OpenGL
// implementation lives in gfx/glbackend and a recording fake in gfx/gfxtest.
// A Device is bound to the render thread and is not safe for concurrent use.
package gfx

import (
	"errors"

	"github.com/Faultbox/lumen/pkg/math"
)

// ErrProgramLink is returned when a shader program fails to compile or link.
var ErrProgramLink = errors.New("shader program link failed")

// Buffer is a vertex buffer handle.
type Buffer uint32

// Texture is a 2D texture handle.
type Texture uint32

// Program is a linked shader program handle.
type Program uint32

// TextureParam selects a 2D texture parameter.
type TextureParam int

// Texture parameters.
const (
	TextureMinFilter TextureParam = iota
	TextureMagFilter
	TextureWrapS
	TextureWrapT
)

// TextureValue is a value for a TextureParam.
type TextureValue int

// Texture parameter values.
const (
	FilterNearest TextureValue = iota
	FilterLinear
	FilterLinearMipmapLinear
	WrapRepeat
	WrapClampToEdge
)

// Device is the set of graphics operations the engine needs.
//
// Vertex attributes are always tightly packed float32 streams. Buffer and
// texture operations act on the currently bound object, as in OpenGL.
type Device interface {
	CreateBuffer() Buffer
	BindBuffer(b Buffer)
	BufferData(data []float32)
	VertexAttribPointer(location int32, components int)
	EnableVertexAttribArray(location int32)

	CreateTexture() Texture
	ActiveTexture(unit int)
	BindTexture(t Texture)
	TexImage2D(width, height int, rgba []byte)
	TexParameter(param TextureParam, value TextureValue)
	GenerateMipmap()

	CompileProgram(vertexSrc, fragmentSrc string) (Program, error)
	UseProgram(p Program)
	AttribLocation(p Program, name string) int32
	UniformLocation(p Program, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform1fv(location int32, v []float32)
	Uniform3fv(location int32, v []float32)
	UniformMatrix4fv(location int32, m math.Mat4)

	DrawArrays(first, count int)
	ClearColor(r, g, b, a float32)
	Clear()
	Viewport(width, height int)
	EnableDepthTest()
	EnableBackFaceCulling()

	// ReadPixels returns the bottom-left width×height region of the
	// framebuffer as RGBA rows, bottom row first.
	ReadPixels(width, height int) []byte
}

// Bool converts a flag to the integer form boolean uniforms take.
func Bool(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
