// Package material provides textures and the four-channel surface material.
package material

import (
	"image"

	"github.com/Faultbox/lumen/internal/engine/gfx"
)

// PlaceholderColor is the RGBA texel a texture shows until its image arrives.
var PlaceholderColor = [4]byte{0, 0, 255, 255}

// Texture is a 2D texture that starts as a 1×1 placeholder and is replaced
// by its real image once the asynchronous load completes.
type Texture struct {
	ID     gfx.Texture
	Path   string
	Width  int
	Height int

	ready bool
}

// NewTexture creates the placeholder texture for an image at path.
func NewTexture(dev gfx.Device, path string) *Texture {
	t := &Texture{
		ID:     dev.CreateTexture(),
		Path:   path,
		Width:  1,
		Height: 1,
	}
	dev.BindTexture(t.ID)
	dev.TexImage2D(1, 1, PlaceholderColor[:])
	return t
}

// Ready reports whether the real image has been applied.
func (t *Texture) Ready() bool {
	return t != nil && t.ready
}

// Apply uploads img over the placeholder. Power-of-two images get a mipmap
// chain; other sizes are sampled linearly without mipmaps. Must be called
// on the render thread.
func (t *Texture) Apply(dev gfx.Device, img *image.RGBA) {
	if img.Rect.Min != (image.Point{}) || img.Stride != img.Rect.Dx()*4 {
		img = ToRGBA(img)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()

	dev.BindTexture(t.ID)
	dev.TexImage2D(w, h, img.Pix)

	if IsPowerOfTwo(w) && IsPowerOfTwo(h) {
		dev.GenerateMipmap()
		dev.TexParameter(gfx.TextureMinFilter, gfx.FilterLinearMipmapLinear)
	} else {
		dev.TexParameter(gfx.TextureMinFilter, gfx.FilterLinear)
	}
	dev.TexParameter(gfx.TextureMagFilter, gfx.FilterLinear)
	// Mesh texcoords have V negated, so sampling relies on wrapping.
	dev.TexParameter(gfx.TextureWrapS, gfx.WrapRepeat)
	dev.TexParameter(gfx.TextureWrapT, gfx.WrapRepeat)

	t.Width, t.Height = w, h
	t.ready = true
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
