// Package shader holds the Phong lighting program and its variable locations.
package shader

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Faultbox/lumen/internal/engine/gfx"
	"github.com/Faultbox/lumen/internal/engine/lighting"
)

// PhongVertexShader is the vertex stage of the lighting program.
//
//go:embed phong.vert
var PhongVertexShader string

// PhongFragmentShader is the fragment stage of the lighting program. It
// expects MAX_LIGHTS to be defined; see PhongFragmentSource.
//
//go:embed phong.frag
var PhongFragmentShader string

// Attribs holds vertex attribute locations.
type Attribs struct {
	Position int32
	TexCoord int32
	Normal   int32
}

// Uniforms holds uniform locations. A location of -1 means the uniform was
// optimized out; uploads to it are ignored by the driver.
type Uniforms struct {
	Projection   int32
	ModelView    int32
	NormalMatrix int32

	ViewPos          int32
	AmbientStrength  int32
	SpecularStrength int32

	LightCount       int32
	LightPos         int32
	LightColor       int32
	LightMaxDistance int32
	LightQuadratic   int32
	LightLinear      int32
	LightConstant    int32
	LightDirection   int32
	LightAngle       int32
	LightMaxAngle    int32

	Albedo       int32
	Normal       int32
	Roughness    int32
	AO           int32
	UseAlbedo    int32
	UseNormal    int32
	UseRoughness int32
	UseAO        int32
}

// Program is a linked shader program with its locations resolved.
type Program struct {
	ID       gfx.Program
	Attribs  Attribs
	Uniforms Uniforms
}

// PhongFragmentSource returns the fragment stage with its light arrays
// sized to lighting.MaxLights.
func PhongFragmentSource() string {
	version, body, _ := strings.Cut(PhongFragmentShader, "\n")
	return fmt.Sprintf("%s\n#define MAX_LIGHTS %d\n%s", version, lighting.MaxLights, body)
}

// LoadPhong compiles and links the Phong program on dev.
// Errors wrap gfx.ErrProgramLink.
func LoadPhong(dev gfx.Device) (*Program, error) {
	return Load(dev, PhongVertexShader, PhongFragmentSource())
}

// Load compiles a program from the given sources and resolves the Phong
// variable names in it.
func Load(dev gfx.Device, vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := dev.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("phong program: %w", err)
	}

	u := func(name string) int32 { return dev.UniformLocation(id, name) }
	a := func(name string) int32 { return dev.AttribLocation(id, name) }

	return &Program{
		ID: id,
		Attribs: Attribs{
			Position: a("aVertexPosition"),
			TexCoord: a("aTextureCoord"),
			Normal:   a("aVertexNormal"),
		},
		Uniforms: Uniforms{
			Projection:   u("uProjectionMatrix"),
			ModelView:    u("uModelViewMatrix"),
			NormalMatrix: u("uNormalMatrix"),

			ViewPos:          u("viewPos"),
			AmbientStrength:  u("ambientStrength"),
			SpecularStrength: u("specularStrength"),

			LightCount:       u("lightCount"),
			LightPos:         u("lightPos"),
			LightColor:       u("lightColor"),
			LightMaxDistance: u("lightMaxDistance"),
			LightQuadratic:   u("lightQuadratic"),
			LightLinear:      u("lightLinear"),
			LightConstant:    u("lightConstant"),
			LightDirection:   u("lightDirection"),
			LightAngle:       u("lightAngle"),
			LightMaxAngle:    u("lightMaxAngle"),

			Albedo:       u("albedo"),
			Normal:       u("normal"),
			Roughness:    u("roughness"),
			AO:           u("ao"),
			UseAlbedo:    u("useAlbedo"),
			UseNormal:    u("useNormal"),
			UseRoughness: u("useRoughness"),
			UseAO:        u("useAO"),
		},
	}, nil
}
