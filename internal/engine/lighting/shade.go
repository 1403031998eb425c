package lighting

import (
	gomath "math"

	"github.com/Faultbox/lumen/pkg/math"
)

// Shininess is the specular exponent.
const Shininess = 32

// DefaultColor is the surface color used when no albedo texture is bound.
var DefaultColor = math.Vec4{X: 0, Y: 0, Z: 1, W: 1}

// Strengths are the per-frame material scalars.
type Strengths struct {
	Ambient  float32
	Specular float32
}

// DefaultStrengths returns ambient 0.1 and specular 0.5.
func DefaultStrengths() Strengths {
	return Strengths{Ambient: 0.1, Specular: 0.5}
}

// Samples are the texture values at a fragment. A nil channel is unbound.
type Samples struct {
	Albedo    *math.Vec4
	Normal    *math.Vec3 // raw texel in [0, 1]
	Roughness *math.Vec3
	AO        *math.Vec4
}

// Fragment is a surface point in the same space as the light positions.
type Fragment struct {
	Position math.Vec3
	Normal   math.Vec3
	Samples  Samples
}

// Shade evaluates the fragment shader on the CPU. It is the reference the
// GLSL program is written against: only the first MaxLights lights count,
// and degenerate input (zero vectors, zero attenuation denominators) never
// produces NaN.
func Shade(frag Fragment, viewPos math.Vec3, lights []Light, s Strengths) math.Vec4 {
	object := DefaultColor
	if frag.Samples.Albedo != nil {
		object = *frag.Samples.Albedo
	}
	if frag.Samples.AO != nil {
		object = object.Mul(*frag.Samples.AO)
	}

	norm := frag.Normal.Normalize()
	if frag.Samples.Normal != nil {
		tex := frag.Samples.Normal.Scale(2).Sub(math.Vec3{X: 1, Y: 1, Z: 1}).Normalize()
		norm = norm.Add(tex).Normalize()
	}

	viewDir := viewPos.Sub(frag.Position).Normalize()
	var color math.Vec3

	for i := range Active(lights) {
		l := &lights[i]
		contrib := l.contribution(frag, norm, viewDir, s)
		color = color.Add(object.XYZ().Mul(contrib))
	}

	return math.Vec4{X: color.X, Y: color.Y, Z: color.Z, W: object.W}
}

// contribution returns (ambient + diffuse + specular) * attenuation for one light.
func (l *Light) contribution(frag Fragment, norm, viewDir math.Vec3, s Strengths) math.Vec3 {
	toLight := l.Position.Sub(frag.Position)
	lightDir := toLight.Normalize()

	ambient := l.Color.Scale(s.Ambient)

	diff := max(norm.Dot(lightDir), 0)
	diffuse := l.Color.Scale(diff)

	reflectDir := lightDir.Negate().Reflect(norm)
	spec := float32(gomath.Pow(float64(max(viewDir.Dot(reflectDir), 0)), Shininess))
	specular := l.Color.Scale(s.Specular * spec)
	if frag.Samples.Roughness != nil {
		specular = specular.Mul(*frag.Samples.Roughness)
	}

	attenuation := float32(1)
	d := toLight.Length()
	if d < l.MaxDistance {
		attenuation = Attenuation(d, l.Quadratic, l.Linear, l.Constant)
	} else {
		diffuse = math.Vec3{}
		specular = math.Vec3{}
	}

	intensity := l.ConeIntensity(ConeAngle(lightDir, l.Direction))
	diffuse = diffuse.Scale(intensity)
	specular = specular.Scale(intensity)

	return ambient.Add(diffuse).Add(specular).Scale(attenuation)
}

// Attenuation returns 1/(d²q + dl + c), or 0 when the denominator is not
// positive.
func Attenuation(d, quadratic, linear, constant float32) float32 {
	denom := d*d*quadratic + d*linear + constant
	if denom <= 0 {
		return 0
	}
	return 1 / denom
}

// ConeAngle returns the angle in degrees between the fragment-to-light
// direction and the reversed cone direction.
func ConeAngle(lightDir, coneDir math.Vec3) float32 {
	c := lightDir.Dot(coneDir.Negate().Normalize())
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return float32(gomath.Acos(float64(c)) * 180 / gomath.Pi)
}

// ConeIntensity returns the diffuse/specular scale for a fragment at the
// given cone angle: 1 up to OuterAngle, then falling linearly to 0 at
// OuterAngle + (OuterAngle - InnerAngle).
func (l *Light) ConeIntensity(angle float32) float32 {
	if angle <= l.OuterAngle {
		return 1
	}
	eps := l.OuterAngle - l.InnerAngle
	if eps <= 0 {
		return 0
	}
	t := (angle - l.OuterAngle) / eps
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return 1 - t
}
