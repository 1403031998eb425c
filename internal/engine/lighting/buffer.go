package lighting

import "github.com/Faultbox/lumen/pkg/math"

// MaxLights is the maximum number of lights supported in shaders.
const MaxLights = 16

// Buffer holds lights for GPU upload. Lights past MaxLights are dropped.
type Buffer struct {
	Lights []Light
	Count  int
}

// NewBuffer creates an empty light buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		Lights: make([]Light, 0, MaxLights),
	}
}

// Clear removes all lights from the buffer.
func (b *Buffer) Clear() {
	b.Lights = b.Lights[:0]
	b.Count = 0
}

// AddLight adds a light to the buffer.
// Returns false if buffer is full.
func (b *Buffer) AddLight(light Light) bool {
	if b.Count >= MaxLights {
		return false
	}
	b.Lights = append(b.Lights, light)
	b.Count++
	return true
}

// SetLights replaces all lights in the buffer, keeping at most the first
// MaxLights in order.
func (b *Buffer) SetLights(lights []Light) {
	b.Clear()
	b.Lights = append(b.Lights, Active(lights)...)
	b.Count = len(b.Lights)
}

// Active returns the prefix of lights that shading takes into account.
func Active(lights []Light) []Light {
	if len(lights) > MaxLights {
		return lights[:MaxLights]
	}
	return lights
}

// GetPositions returns positions as a flat float32 slice for GPU upload.
// Format: [x0, y0, z0, x1, y1, z1, ...], zero padded to MaxLights.
func (b *Buffer) GetPositions() []float32 {
	return b.vec3s(func(l *Light) math.Vec3 { return l.Position })
}

// GetColors returns colors as a flat float32 slice for GPU upload.
func (b *Buffer) GetColors() []float32 {
	return b.vec3s(func(l *Light) math.Vec3 { return l.Color })
}

// GetDirections returns cone directions as a flat float32 slice for GPU upload.
func (b *Buffer) GetDirections() []float32 {
	return b.vec3s(func(l *Light) math.Vec3 { return l.Direction })
}

// GetMaxDistances returns the range of every light.
func (b *Buffer) GetMaxDistances() []float32 {
	return b.scalars(func(l *Light) float32 { return l.MaxDistance })
}

// GetQuadratics returns the quadratic attenuation terms.
func (b *Buffer) GetQuadratics() []float32 {
	return b.scalars(func(l *Light) float32 { return l.Quadratic })
}

// GetLinears returns the linear attenuation terms.
func (b *Buffer) GetLinears() []float32 {
	return b.scalars(func(l *Light) float32 { return l.Linear })
}

// GetConstants returns the constant attenuation terms.
func (b *Buffer) GetConstants() []float32 {
	return b.scalars(func(l *Light) float32 { return l.Constant })
}

// GetInnerAngles returns the inner cone angles in degrees.
func (b *Buffer) GetInnerAngles() []float32 {
	return b.scalars(func(l *Light) float32 { return l.InnerAngle })
}

// GetOuterAngles returns the outer cone angles in degrees.
func (b *Buffer) GetOuterAngles() []float32 {
	return b.scalars(func(l *Light) float32 { return l.OuterAngle })
}

func (b *Buffer) vec3s(get func(*Light) math.Vec3) []float32 {
	result := make([]float32, MaxLights*3)
	for i := range b.Lights {
		v := get(&b.Lights[i])
		result[i*3+0] = v.X
		result[i*3+1] = v.Y
		result[i*3+2] = v.Z
	}
	return result
}

func (b *Buffer) scalars(get func(*Light) float32) []float32 {
	result := make([]float32, MaxLights)
	for i := range b.Lights {
		result[i] = get(&b.Lights[i])
	}
	return result
}
