// Package scene holds the state rendered each frame: a camera, an ordered
// list of entities and an ordered list of lights.
package scene

import (
	"github.com/google/uuid"

	"github.com/Faultbox/lumen/internal/engine/camera"
	"github.com/Faultbox/lumen/internal/engine/entity"
	"github.com/Faultbox/lumen/internal/engine/lighting"
)

// Scene is owned by the frame driver and passed to the renderer. Entities
// are drawn and lights uploaded in insertion order; lights past
// lighting.MaxLights are ignored.
type Scene struct {
	Camera   *camera.Camera
	Entities []*entity.Entity
	Lights   []lighting.Light
}

// New creates an empty scene. A nil camera is replaced by camera.Default().
func New(cam *camera.Camera) *Scene {
	if cam == nil {
		cam = camera.Default()
	}
	return &Scene{Camera: cam}
}

// AddEntity appends e to the draw list.
func (s *Scene) AddEntity(e *entity.Entity) {
	s.Entities = append(s.Entities, e)
}

// AddLight appends l to the light list.
func (s *Scene) AddLight(l lighting.Light) {
	s.Lights = append(s.Lights, l)
}

// ActiveLights returns the lights the renderer uploads.
func (s *Scene) ActiveLights() []lighting.Light {
	return lighting.Active(s.Lights)
}

// Entity returns the entity with the given ID, or nil.
func (s *Scene) Entity(id uuid.UUID) *entity.Entity {
	for _, e := range s.Entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// EntityByName returns the first entity with the given name, or nil.
func (s *Scene) EntityByName(name string) *entity.Entity {
	for _, e := range s.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Update advances every entity by dt seconds.
func (s *Scene) Update(dt float32) {
	for _, e := range s.Entities {
		e.Update(dt)
	}
}

// LoadedCount returns how many entities have a mesh.
func (s *Scene) LoadedCount() int {
	n := 0
	for _, e := range s.Entities {
		if e.Loaded() {
			n++
		}
	}
	return n
}
