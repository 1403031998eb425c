// Package renderer draws a scene with the Phong lighting program.
package renderer

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/entity"
	"github.com/Faultbox/lumen/internal/engine/gfx"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/scene"
	"github.com/Faultbox/lumen/internal/engine/shader"
	"github.com/Faultbox/lumen/internal/logger"
	"github.com/Faultbox/lumen/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	ClearColor    [4]float32
	Strengths     lighting.Strengths
	CullBackFaces bool
}

// DefaultConfig clears to opaque black, culls back faces and uses ambient
// 0.1 and specular 0.5.
func DefaultConfig() Config {
	return Config{
		ClearColor:    [4]float32{0, 0, 0, 1},
		Strengths:     lighting.DefaultStrengths(),
		CullBackFaces: true,
	}
}

// Stats summarizes one frame.
type Stats struct {
	Lights  int
	Drawn   int
	Skipped int
}

// Pipeline renders scenes on one device. It is not safe for concurrent use.
type Pipeline struct {
	dev     gfx.Device
	cfg     Config
	program *shader.Program
	lights  *lighting.Buffer
	log     *zap.Logger

	// entities already reported as waiting for their mesh
	waiting map[uuid.UUID]bool
}

// New compiles the lighting program. A link failure is returned wrapping
// gfx.ErrProgramLink and is fatal for the caller.
func New(dev gfx.Device, cfg Config) (*Pipeline, error) {
	program, err := shader.LoadPhong(dev)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	p := &Pipeline{
		dev:     dev,
		cfg:     cfg,
		program: program,
		lights:  lighting.NewBuffer(),
		log:     logger.Named("renderer"),
		waiting: make(map[uuid.UUID]bool),
	}
	p.log.Debug("pipeline created", zap.Uint32("program", uint32(program.ID)))
	return p, nil
}

// Program returns the lighting program.
func (p *Pipeline) Program() *shader.Program {
	return p.program
}

// Config returns the renderer configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Draw renders one frame of s into a viewport of the given size. An empty
// viewport, as reported by a minimized window, draws nothing.
func (p *Pipeline) Draw(s *scene.Scene, width, height int) Stats {
	if width <= 0 || height <= 0 {
		return Stats{}
	}
	p.begin(width, height)

	p.dev.UseProgram(p.program.ID)
	stats := Stats{Lights: p.uploadLights(s.Lights)}
	p.uploadCamera(s, width, height)
	p.uploadStrengths()

	for _, e := range s.Entities {
		if !e.Loaded() {
			if !p.waiting[e.ID] {
				p.waiting[e.ID] = true
				p.log.Debug("skipping entity without mesh",
					zap.Stringer("entity", e.ID),
					zap.String("name", e.Name),
				)
			}
			stats.Skipped++
			continue
		}
		delete(p.waiting, e.ID)
		p.drawEntity(s, e)
		stats.Drawn++
	}
	return stats
}

// begin sets the viewport and fixed state and clears the frame.
func (p *Pipeline) begin(width, height int) {
	p.dev.Viewport(width, height)
	c := p.cfg.ClearColor
	p.dev.ClearColor(c[0], c[1], c[2], c[3])
	p.dev.EnableDepthTest()
	if p.cfg.CullBackFaces {
		p.dev.EnableBackFaceCulling()
	}
	p.dev.Clear()
}

// uploadLights uploads the first lighting.MaxLights lights as parallel
// arrays and returns how many were uploaded.
func (p *Pipeline) uploadLights(lights []lighting.Light) int {
	u := p.program.Uniforms
	p.lights.SetLights(lights)

	p.dev.Uniform1i(u.LightCount, int32(p.lights.Count))
	p.dev.Uniform3fv(u.LightPos, p.lights.GetPositions())
	p.dev.Uniform3fv(u.LightColor, p.lights.GetColors())
	p.dev.Uniform1fv(u.LightMaxDistance, p.lights.GetMaxDistances())
	p.dev.Uniform1fv(u.LightQuadratic, p.lights.GetQuadratics())
	p.dev.Uniform1fv(u.LightLinear, p.lights.GetLinears())
	p.dev.Uniform1fv(u.LightConstant, p.lights.GetConstants())
	p.dev.Uniform3fv(u.LightDirection, p.lights.GetDirections())
	p.dev.Uniform1fv(u.LightAngle, p.lights.GetInnerAngles())
	p.dev.Uniform1fv(u.LightMaxAngle, p.lights.GetOuterAngles())
	return p.lights.Count
}

func (p *Pipeline) uploadCamera(s *scene.Scene, width, height int) {
	u := p.program.Uniforms
	pos := s.Camera.Position
	p.dev.Uniform3fv(u.ViewPos, []float32{pos.X, pos.Y, pos.Z})
	p.dev.UniformMatrix4fv(u.Projection, s.Camera.ProjectionMatrix(width, height))
}

func (p *Pipeline) uploadStrengths() {
	u := p.program.Uniforms
	p.dev.Uniform1f(u.AmbientStrength, p.cfg.Strengths.Ambient)
	p.dev.Uniform1f(u.SpecularStrength, p.cfg.Strengths.Specular)
}

func (p *Pipeline) drawEntity(s *scene.Scene, e *entity.Entity) {
	u := p.program.Uniforms

	e.Mesh.Bind(p.dev, p.program.Attribs)

	modelView := ModelView(e, s.Camera.Position)
	p.dev.UniformMatrix4fv(u.ModelView, modelView)
	p.dev.UniformMatrix4fv(u.NormalMatrix, NormalMatrix(modelView))

	e.Material.Bind(p.dev, u)
	e.Mesh.Draw(p.dev)
}

// ModelView returns the entity transform with the negated camera position
// applied as a post-multiplied translation. Camera rotation is not applied.
func ModelView(e *entity.Entity, cameraPos math.Vec3) math.Mat4 {
	return e.Transform().TranslateBy(cameraPos.Negate())
}

// NormalMatrix returns the inverse transpose of modelView. A singular
// matrix inverts to identity.
func NormalMatrix(modelView math.Mat4) math.Mat4 {
	return modelView.Inverse().Transpose()
}
