// Package gfxtest provides a recording gfx.Device for tests.
package gfxtest

import (
	"fmt"

	"github.com/Faultbox/lumen/internal/engine/gfx"
	"github.com/Faultbox/lumen/pkg/math"
)

// Draw is a snapshot of device state taken at each DrawArrays call.
type Draw struct {
	Program  gfx.Program
	First    int
	Count    int
	Uniforms map[string]any
	// Textures maps texture unit to the bound texture.
	Textures map[int]gfx.Texture
	// Attribs maps attribute location to the buffer bound when it was pointed.
	Attribs map[int32]gfx.Buffer
}

// Recorder implements gfx.Device in memory. Uniform locations are assigned
// per name so that values can be inspected by uniform name.
type Recorder struct {
	// CompileErr, when set, is returned by CompileProgram.
	CompileErr error

	// Sources passed to the last CompileProgram call.
	VertexSource   string
	FragmentSource string

	Calls []string
	Draws []Draw

	Buffers  map[gfx.Buffer][]float32
	Textures map[gfx.Texture]TextureState

	ClearColorValue [4]float32
	ViewportSize    [2]int
	DepthTest       bool
	BackFaceCulling bool
	Program         gfx.Program

	// Framebuffer, when set, is returned by ReadPixels.
	Framebuffer []byte

	nextID       uint32
	uniformNames map[int32]string
	uniformLocs  map[string]int32
	uniforms     map[string]any
	attribLocs   map[string]int32
	attribs      map[int32]gfx.Buffer
	enabled      map[int32]bool
	boundBuffer  gfx.Buffer
	activeUnit   int
	unitTextures map[int]gfx.Texture
}

// TextureState is what the recorder knows about one texture.
type TextureState struct {
	Width, Height int
	Pixels        []byte
	Params        map[gfx.TextureParam]gfx.TextureValue
	Mipmapped     bool
}

var _ gfx.Device = (*Recorder)(nil)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Buffers:      make(map[gfx.Buffer][]float32),
		Textures:     make(map[gfx.Texture]TextureState),
		uniformNames: make(map[int32]string),
		uniformLocs:  make(map[string]int32),
		uniforms:     make(map[string]any),
		attribLocs: map[string]int32{
			"aVertexPosition": 0,
			"aTextureCoord":   1,
			"aVertexNormal":   2,
		},
		attribs:      make(map[int32]gfx.Buffer),
		enabled:      make(map[int32]bool),
		unitTextures: make(map[int]gfx.Texture),
	}
}

func (r *Recorder) record(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

func (r *Recorder) CreateBuffer() gfx.Buffer {
	b := gfx.Buffer(r.id())
	r.Buffers[b] = nil
	r.record("CreateBuffer %d", b)
	return b
}

func (r *Recorder) BindBuffer(b gfx.Buffer) {
	r.boundBuffer = b
	r.record("BindBuffer %d", b)
}

func (r *Recorder) BufferData(data []float32) {
	r.Buffers[r.boundBuffer] = append([]float32(nil), data...)
	r.record("BufferData %d len=%d", r.boundBuffer, len(data))
}

func (r *Recorder) VertexAttribPointer(location int32, components int) {
	r.attribs[location] = r.boundBuffer
	r.record("VertexAttribPointer %d size=%d", location, components)
}

func (r *Recorder) EnableVertexAttribArray(location int32) {
	r.enabled[location] = true
	r.record("EnableVertexAttribArray %d", location)
}

func (r *Recorder) CreateTexture() gfx.Texture {
	t := gfx.Texture(r.id())
	r.Textures[t] = TextureState{Params: make(map[gfx.TextureParam]gfx.TextureValue)}
	r.record("CreateTexture %d", t)
	return t
}

func (r *Recorder) ActiveTexture(unit int) {
	r.activeUnit = unit
	r.record("ActiveTexture %d", unit)
}

func (r *Recorder) BindTexture(t gfx.Texture) {
	r.unitTextures[r.activeUnit] = t
	r.record("BindTexture %d", t)
}

func (r *Recorder) bound() (gfx.Texture, TextureState) {
	t := r.unitTextures[r.activeUnit]
	return t, r.Textures[t]
}

func (r *Recorder) TexImage2D(width, height int, rgba []byte) {
	t, st := r.bound()
	st.Width, st.Height = width, height
	st.Pixels = append([]byte(nil), rgba...)
	r.Textures[t] = st
	r.record("TexImage2D %d %dx%d", t, width, height)
}

func (r *Recorder) TexParameter(param gfx.TextureParam, value gfx.TextureValue) {
	t, st := r.bound()
	if st.Params == nil {
		st.Params = make(map[gfx.TextureParam]gfx.TextureValue)
	}
	st.Params[param] = value
	r.Textures[t] = st
	r.record("TexParameter %d %d=%d", t, param, value)
}

func (r *Recorder) GenerateMipmap() {
	t, st := r.bound()
	st.Mipmapped = true
	r.Textures[t] = st
	r.record("GenerateMipmap %d", t)
}

func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (gfx.Program, error) {
	r.VertexSource, r.FragmentSource = vertexSrc, fragmentSrc
	if r.CompileErr != nil {
		r.record("CompileProgram failed")
		return 0, fmt.Errorf("%w: %v", gfx.ErrProgramLink, r.CompileErr)
	}
	p := gfx.Program(r.id())
	r.record("CompileProgram %d", p)
	return p, nil
}

func (r *Recorder) UseProgram(p gfx.Program) {
	r.Program = p
	r.record("UseProgram %d", p)
}

func (r *Recorder) AttribLocation(p gfx.Program, name string) int32 {
	if loc, ok := r.attribLocs[name]; ok {
		return loc
	}
	return -1
}

func (r *Recorder) UniformLocation(p gfx.Program, name string) int32 {
	if loc, ok := r.uniformLocs[name]; ok {
		return loc
	}
	loc := int32(len(r.uniformLocs))
	r.uniformLocs[name] = loc
	r.uniformNames[loc] = name
	return loc
}

func (r *Recorder) setUniform(location int32, v any) {
	name, ok := r.uniformNames[location]
	if !ok {
		name = fmt.Sprintf("#%d", location)
	}
	r.uniforms[name] = v
	r.record("Uniform %s", name)
}

func (r *Recorder) Uniform1i(location int32, v int32) {
	r.setUniform(location, v)
}

func (r *Recorder) Uniform1f(location int32, v float32) {
	r.setUniform(location, v)
}

func (r *Recorder) Uniform1fv(location int32, v []float32) {
	r.setUniform(location, append([]float32(nil), v...))
}

func (r *Recorder) Uniform3fv(location int32, v []float32) {
	r.setUniform(location, append([]float32(nil), v...))
}

func (r *Recorder) UniformMatrix4fv(location int32, m math.Mat4) {
	r.setUniform(location, m)
}

func (r *Recorder) DrawArrays(first, count int) {
	d := Draw{
		Program:  r.Program,
		First:    first,
		Count:    count,
		Uniforms: make(map[string]any, len(r.uniforms)),
		Textures: make(map[int]gfx.Texture, len(r.unitTextures)),
		Attribs:  make(map[int32]gfx.Buffer, len(r.attribs)),
	}
	for k, v := range r.uniforms {
		d.Uniforms[k] = v
	}
	for k, v := range r.unitTextures {
		d.Textures[k] = v
	}
	for k, v := range r.attribs {
		if r.enabled[k] {
			d.Attribs[k] = v
		}
	}
	r.Draws = append(r.Draws, d)
	r.record("DrawArrays %d %d", first, count)
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.ClearColorValue = [4]float32{red, green, blue, alpha}
	r.record("ClearColor")
}

func (r *Recorder) Clear() {
	r.record("Clear")
}

func (r *Recorder) Viewport(width, height int) {
	r.ViewportSize = [2]int{width, height}
	r.record("Viewport %dx%d", width, height)
}

func (r *Recorder) EnableDepthTest() {
	r.DepthTest = true
	r.record("EnableDepthTest")
}

func (r *Recorder) EnableBackFaceCulling() {
	r.BackFaceCulling = true
	r.record("EnableBackFaceCulling")
}

// ReadPixels returns Framebuffer when it has the requested size and a
// buffer filled with the clear color otherwise.
func (r *Recorder) ReadPixels(width, height int) []byte {
	r.record("ReadPixels %dx%d", width, height)
	if len(r.Framebuffer) == width*height*4 {
		return append([]byte(nil), r.Framebuffer...)
	}
	px := make([]byte, width*height*4)
	c := r.ClearColorValue
	for i := 0; i < len(px); i += 4 {
		px[i], px[i+1], px[i+2], px[i+3] = byte(c[0]*255), byte(c[1]*255), byte(c[2]*255), byte(c[3]*255)
	}
	return px
}

// Uniform returns the last value uploaded to the named uniform.
func (r *Recorder) Uniform(name string) (any, bool) {
	v, ok := r.uniforms[name]
	return v, ok
}

// Reset forgets recorded calls and draws but keeps resources.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Draws = nil
}
