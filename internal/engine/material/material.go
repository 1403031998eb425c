package material

import (
	"github.com/Faultbox/lumen/internal/engine/gfx"
	"github.com/Faultbox/lumen/internal/engine/shader"
)

// Channel identifies a material texture slot. Its value is the texture unit.
type Channel int

// Material channels.
const (
	Albedo Channel = iota
	Normal
	Roughness
	AO
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case Albedo:
		return "albedo"
	case Normal:
		return "normal"
	case Roughness:
		return "roughness"
	case AO:
		return "ao"
	default:
		return "unknown"
	}
}

// Material is a set of optional textures. Any channel may be nil.
type Material struct {
	Albedo    *Texture
	Normal    *Texture
	Roughness *Texture
	AO        *Texture
}

// Texture returns the texture in channel c.
func (m *Material) Texture(c Channel) *Texture {
	if m == nil {
		return nil
	}
	switch c {
	case Albedo:
		return m.Albedo
	case Normal:
		return m.Normal
	case Roughness:
		return m.Roughness
	case AO:
		return m.AO
	}
	return nil
}

// SetTexture stores t in channel c.
func (m *Material) SetTexture(c Channel, t *Texture) {
	switch c {
	case Albedo:
		m.Albedo = t
	case Normal:
		m.Normal = t
	case Roughness:
		m.Roughness = t
	case AO:
		m.AO = t
	}
}

// Bind binds every channel to its texture unit and uploads the presence
// flags. A channel whose image has not arrived keeps its placeholder bound
// with the flag off. A nil material binds nothing.
func (m *Material) Bind(dev gfx.Device, u shader.Uniforms) {
	bindChannel(dev, m.Texture(Albedo), Albedo, u.Albedo, u.UseAlbedo)
	bindChannel(dev, m.Texture(Normal), Normal, u.Normal, u.UseNormal)
	bindChannel(dev, m.Texture(Roughness), Roughness, u.Roughness, u.UseRoughness)
	bindChannel(dev, m.Texture(AO), AO, u.AO, u.UseAO)
}

func bindChannel(dev gfx.Device, t *Texture, c Channel, sampler, flag int32) {
	dev.Uniform1i(flag, gfx.Bool(t.Ready()))
	if t == nil {
		return
	}
	dev.ActiveTexture(int(c))
	dev.BindTexture(t.ID)
	dev.Uniform1i(sampler, int32(c))
}
