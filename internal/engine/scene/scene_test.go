package scene

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/lumen/internal/engine/entity"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/pkg/math"
)

func TestNewUsesDefaultCamera(t *testing.T) {
	s := New(nil)
	assert.NotNil(t, s.Camera)
	assert.Equal(t, float32(45), s.Camera.FOVDegrees)
}

func TestInsertionOrder(t *testing.T) {
	s := New(nil)
	a, b, c := entity.New("a"), entity.New("b"), entity.New("c")
	s.AddEntity(a)
	s.AddEntity(b)
	s.AddEntity(c)

	assert.Equal(t, []*entity.Entity{a, b, c}, s.Entities)
	assert.Same(t, b, s.Entity(b.ID))
	assert.Same(t, c, s.EntityByName("c"))
	assert.Nil(t, s.Entity(uuid.New()))
	assert.Nil(t, s.EntityByName("missing"))
}

func TestActiveLightsCapped(t *testing.T) {
	s := New(nil)
	for i := 0; i < 20; i++ {
		s.AddLight(lighting.NewAreaLight(math.Vec3{X: float32(i)}, math.Vec3{X: 1}, 10, 0, 0, 1))
	}

	active := s.ActiveLights()
	assert.Len(t, active, lighting.MaxLights)
	assert.Equal(t, float32(15), active[15].Position.X)
	assert.Len(t, s.Lights, 20)
}

func TestUpdateSpinsEntities(t *testing.T) {
	s := New(nil)
	spinning := entity.New("spin")
	spinning.Spin = math.Vec3{Y: 2}
	still := entity.New("still")
	s.AddEntity(spinning)
	s.AddEntity(still)

	s.Update(0.5)

	assert.Equal(t, math.Vec3{Y: 1}, spinning.Rotation)
	assert.Equal(t, math.Vec3{}, still.Rotation)
	assert.Equal(t, 0, s.LoadedCount())
}
