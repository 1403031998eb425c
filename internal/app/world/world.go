package world

import (
	"context"
	"fmt"

	"github.com/Faultbox/lumen/internal/config"
	"github.com/Faultbox/lumen/internal/engine/camera"
	"github.com/Faultbox/lumen/internal/engine/entity"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/scene"
	"github.com/Faultbox/lumen/pkg/math"
)

// Attacher starts asset loads for an entity. *assets.Loader implements it.
type Attacher interface {
	AttachMesh(ctx context.Context, e *entity.Entity, path string)
	AttachTexture(ctx context.Context, e *entity.Entity, c material.Channel, path string) *material.Texture
}

// Build creates the camera, entities and lights described by cfg and
// starts loading every referenced asset. Entities are added before their
// assets arrive and are skipped by the renderer until their mesh loads.
func Build(ctx context.Context, cfg *config.Config, loader Attacher) (*scene.Scene, error) {
	s := scene.New(Camera(cfg.Camera))

	for i, lc := range cfg.Scene.Lights {
		l, err := Light(lc)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		s.AddLight(l)
	}

	for _, ec := range cfg.Scene.Entities {
		e := Entity(ec)
		s.AddEntity(e)

		loader.AttachMesh(ctx, e, ec.Mesh)
		for _, ch := range []struct {
			channel material.Channel
			path    string
		}{
			{material.Albedo, ec.Albedo},
			{material.Normal, ec.Normal},
			{material.Roughness, ec.Roughness},
			{material.AO, ec.AO},
		} {
			if ch.path != "" {
				loader.AttachTexture(ctx, e, ch.channel, ch.path)
			}
		}
	}

	return s, nil
}

// Camera creates the camera described by cc.
func Camera(cc config.CameraConfig) *camera.Camera {
	r := cc.Rotation
	cam := camera.New(
		math.Vec3FromArray(cc.Position),
		math.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]},
		cc.FOV, cc.Near, cc.Far,
	)
	if cc.Speed > 0 {
		cam.Speed = cc.Speed
	}
	return cam
}

// Entity creates an entity from ec with the additive transform helpers, so
// a zero scale in the config leaves the entity invisible.
func Entity(ec config.EntityConfig) *entity.Entity {
	e := entity.New(ec.Name)
	e.Move(math.Vec3FromArray(ec.Position))
	e.Rotate(math.Vec3FromArray(ec.Rotation))
	e.ScaleBy(math.Vec3FromArray(ec.Scale))
	e.Spin = math.Vec3FromArray(ec.Spin)
	return e
}

// Light creates a light from lc. Spot lights take their direction from
// Direction when set and from Azimuth and Elevation otherwise.
func Light(lc config.LightConfig) (lighting.Light, error) {
	kind, err := lighting.ParseKind(lc.Kind)
	if err != nil {
		return lighting.Light{}, err
	}

	pos := math.Vec3FromArray(lc.Position)
	color := math.Vec3FromArray(lc.Color)

	switch kind {
	case lighting.KindArea:
		return lighting.NewAreaLight(pos, color, lc.MaxDistance, lc.Quadratic, lc.Linear, lc.Constant), nil
	case lighting.KindDirectional:
		return lighting.NewDirectionalLight(pos, color, lc.MaxDistance), nil
	default:
		dir := lighting.DirectionFromAngles(lc.Azimuth, lc.Elevation)
		if lc.Direction != nil {
			dir = math.Vec3FromArray(*lc.Direction)
		}
		return lighting.NewSpotLight(pos, color, lc.MaxDistance, lc.Quadratic, lc.Linear, lc.Constant,
			dir, lc.Angle), nil
	}
}
