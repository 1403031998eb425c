// Package entity implements renderable scene entities.
package entity

import (
	"github.com/google/uuid"

	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/mesh"
	"github.com/Faultbox/lumen/pkg/math"
)

// Entity is a mesh placed in the world.
//
// Rotation holds Euler angles in radians (X roll, Y pitch, Z yaw) and is
// converted to a quaternion on every Transform call. A new entity has zero
// scale; callers grow it with ScaleBy.
type Entity struct {
	ID       uuid.UUID
	Name     string
	Position math.Vec3
	Rotation math.Vec3
	Scale    math.Vec3

	// Mesh is nil until the mesh asset has loaded.
	Mesh     *mesh.Mesh
	Material *material.Material

	// Spin is an angular velocity in radians per second applied by Update.
	Spin math.Vec3
}

// New creates an entity at the origin with zero rotation and zero scale.
func New(name string) *Entity {
	return &Entity{
		ID:   uuid.New(),
		Name: name,
	}
}

// Move adds delta to the position.
func (e *Entity) Move(delta math.Vec3) {
	e.Position = e.Position.Add(delta)
}

// Rotate adds delta, in radians, to the Euler rotation.
func (e *Entity) Rotate(delta math.Vec3) {
	e.Rotation = e.Rotation.Add(delta)
}

// ScaleBy adds delta to the scale.
func (e *Entity) ScaleBy(delta math.Vec3) {
	e.Scale = e.Scale.Add(delta)
}

// RotationQuat returns the rotation as a unit quaternion.
func (e *Entity) RotationQuat() math.Quat {
	return math.QuatFromEuler(e.Rotation.X, e.Rotation.Y, e.Rotation.Z)
}

// Transform returns the model matrix T·R·S.
func (e *Entity) Transform() math.Mat4 {
	return math.FromRotationTranslationScaleOrigin(e.RotationQuat(), e.Position, e.Scale, math.Vec3{})
}

// Update advances the entity by dt seconds.
func (e *Entity) Update(dt float32) {
	if e.Spin != (math.Vec3{}) {
		e.Rotate(e.Spin.Scale(dt))
	}
}

// Loaded reports whether the entity has a mesh to draw.
func (e *Entity) Loaded() bool {
	return e.Mesh != nil
}
