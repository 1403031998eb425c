// Package glbackend implements gfx.Device on OpenGL 4.1 core.
package glbackend

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/gfx"
	"github.com/Faultbox/lumen/internal/logger"
	"github.com/Faultbox/lumen/pkg/math"
)

// Device is an OpenGL gfx.Device.
type Device struct {
	vao uint32
	log *zap.Logger
}

var _ gfx.Device = (*Device)(nil)

// New initializes the OpenGL function pointers and returns a device.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{log: logger.Named("gl")}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	// Core profile requires a bound vertex array for attribute state.
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	return d, nil
}

// Close releases the device's vertex array.
func (d *Device) Close() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func (d *Device) CreateBuffer() gfx.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return gfx.Buffer(b)
}

func (d *Device) BindBuffer(b gfx.Buffer) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b))
}

func (d *Device) BufferData(data []float32) {
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
}

func (d *Device) VertexAttribPointer(location int32, components int) {
	if location < 0 {
		return
	}
	gl.VertexAttribPointer(uint32(location), int32(components), gl.FLOAT, false, 0, nil)
}

func (d *Device) EnableVertexAttribArray(location int32) {
	if location < 0 {
		return
	}
	gl.EnableVertexAttribArray(uint32(location))
}

func (d *Device) CreateTexture() gfx.Texture {
	var t uint32
	gl.GenTextures(1, &t)
	return gfx.Texture(t)
}

func (d *Device) ActiveTexture(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
}

func (d *Device) BindTexture(t gfx.Texture) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (d *Device) TexImage2D(width, height int, rgba []byte) {
	var pixels unsafe.Pointer
	if len(rgba) > 0 {
		pixels = gl.Ptr(rgba)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, pixels)
}

func (d *Device) TexParameter(param gfx.TextureParam, value gfx.TextureValue) {
	var pname uint32
	switch param {
	case gfx.TextureMinFilter:
		pname = gl.TEXTURE_MIN_FILTER
	case gfx.TextureMagFilter:
		pname = gl.TEXTURE_MAG_FILTER
	case gfx.TextureWrapS:
		pname = gl.TEXTURE_WRAP_S
	case gfx.TextureWrapT:
		pname = gl.TEXTURE_WRAP_T
	default:
		return
	}

	var v int32
	switch value {
	case gfx.FilterNearest:
		v = gl.NEAREST
	case gfx.FilterLinear:
		v = gl.LINEAR
	case gfx.FilterLinearMipmapLinear:
		v = gl.LINEAR_MIPMAP_LINEAR
	case gfx.WrapRepeat:
		v = gl.REPEAT
	case gfx.WrapClampToEdge:
		v = gl.CLAMP_TO_EDGE
	default:
		return
	}
	gl.TexParameteri(gl.TEXTURE_2D, pname, v)
}

func (d *Device) GenerateMipmap() {
	gl.GenerateMipmap(gl.TEXTURE_2D)
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (gfx.Program, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", gfx.ErrProgramLink, err)
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", gfx.ErrProgramLink, err)
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", gfx.ErrProgramLink, gl.GoStr(&log[0]))
	}

	d.log.Debug("shader program created", zap.Uint32("program", program))
	return gfx.Program(program), nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, gl.GoStr(&log[0]))
	}

	return shader, nil
}

func (d *Device) UseProgram(p gfx.Program) {
	gl.UseProgram(uint32(p))
}

func (d *Device) AttribLocation(p gfx.Program, name string) int32 {
	return gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00"))
}

func (d *Device) UniformLocation(p gfx.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (d *Device) Uniform1i(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (d *Device) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (d *Device) Uniform1fv(location int32, v []float32) {
	if len(v) == 0 {
		return
	}
	gl.Uniform1fv(location, int32(len(v)), &v[0])
}

func (d *Device) Uniform3fv(location int32, v []float32) {
	if len(v) < 3 {
		return
	}
	gl.Uniform3fv(location, int32(len(v)/3), &v[0])
}

func (d *Device) UniformMatrix4fv(location int32, m math.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, m.Ptr())
}

func (d *Device) DrawArrays(first, count int) {
	gl.DrawArrays(gl.TRIANGLES, int32(first), int32(count))
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// EnableDepthTest enables depth testing with a less-or-equal comparison.
func (d *Device) EnableDepthTest() {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
}

func (d *Device) EnableBackFaceCulling() {
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
}

func (d *Device) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}
