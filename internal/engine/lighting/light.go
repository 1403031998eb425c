// Package lighting provides the light model shared by the renderer and the
// CPU reference shader.
package lighting

import (
	"fmt"

	"github.com/Faultbox/lumen/pkg/math"
)

// Kind tags which preset a light was built from.
type Kind int

// Light kinds.
const (
	KindSpot Kind = iota
	KindArea
	KindDirectional
)

// String returns the kind name as used in config files.
func (k Kind) String() string {
	switch k {
	case KindSpot:
		return "spot"
	case KindArea:
		return "area"
	case KindDirectional:
		return "directional"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "spot", "":
		return KindSpot, nil
	case "area":
		return KindArea, nil
	case "directional":
		return KindDirectional, nil
	default:
		return 0, fmt.Errorf("unknown light kind %q", s)
	}
}

// FullCone is the outer angle, in degrees, of lights that shine in every
// direction.
const FullCone = 360

// SpotInnerRatio is the inner/outer cone ratio of spot light presets.
const SpotInnerRatio = 0.75

// Light is one light source. Every kind is evaluated by the same shading
// code; the presets only differ in the values they fill in.
type Light struct {
	Kind     Kind
	Position math.Vec3
	Color    math.Vec3

	// Fragments at MaxDistance or further receive ambient light only.
	MaxDistance float32
	Quadratic   float32
	Linear      float32
	Constant    float32

	// Direction the cone points along. Angles are in degrees; outside
	// OuterAngle the intensity falls off linearly over OuterAngle-InnerAngle.
	Direction  math.Vec3
	InnerAngle float32
	OuterAngle float32
}

// NewLight creates a light with every parameter given. The inner angle is
// clamped so it never exceeds the outer angle.
func NewLight(pos, color math.Vec3, maxDistance, quadratic, linear, constant float32,
	direction math.Vec3, innerAngle, outerAngle float32) Light {
	if innerAngle > outerAngle {
		innerAngle = outerAngle
	}
	return Light{
		Kind:        KindSpot,
		Position:    pos,
		Color:       color,
		MaxDistance: maxDistance,
		Quadratic:   quadratic,
		Linear:      linear,
		Constant:    constant,
		Direction:   direction,
		InnerAngle:  innerAngle,
		OuterAngle:  outerAngle,
	}
}

// NewSpotLight creates a cone light whose inner angle is 3/4 of the outer.
func NewSpotLight(pos, color math.Vec3, maxDistance, quadratic, linear, constant float32,
	direction math.Vec3, outerAngle float32) Light {
	return NewLight(pos, color, maxDistance, quadratic, linear, constant,
		direction, outerAngle*SpotInnerRatio, outerAngle)
}

// NewAreaLight creates a light that shines in every direction.
func NewAreaLight(pos, color math.Vec3, maxDistance, quadratic, linear, constant float32) Light {
	l := NewSpotLight(pos, color, maxDistance, quadratic, linear, constant, math.Vec3{}, FullCone)
	l.Kind = KindArea
	return l
}

// NewDirectionalLight creates an omnidirectional light with no distance
// falloff inside maxDistance.
func NewDirectionalLight(pos, color math.Vec3, maxDistance float32) Light {
	l := NewAreaLight(pos, color, maxDistance, 0, 0, 1)
	l.Kind = KindDirectional
	return l
}
