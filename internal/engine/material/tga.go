package material

import (
	"errors"
	"fmt"
	"image"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

var errTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes uncompressed (type 2) and RLE compressed (type 10)
// true-color TGA images with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, errTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped TGA", ErrUnsupportedImage)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("%w: TGA type %d", ErrUnsupportedImage, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: TGA bit depth %d", ErrUnsupportedImage, bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	p := tgaPixels{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		width:       width,
		height:      height,
		bpp:         bpp / 8,
		topToBottom: topToBottom,
	}

	if imageType == TGATypeUncompressed {
		if len(p.src) < width*height*p.bpp {
			return nil, errTGATruncated
		}
		for i := 0; i < width*height; i++ {
			p.put(i, p.read())
		}
		return p.img, nil
	}

	p.decodeRLE()
	return p.img, nil
}

// tgaPixels walks TGA pixel data in file order and writes image rows.
type tgaPixels struct {
	img           *image.RGBA
	src           []byte
	pos           int
	width, height int
	bpp           int
	topToBottom   bool
}

// read consumes one BGR(A) pixel and returns it as RGBA.
func (p *tgaPixels) read() [4]byte {
	s := p.src[p.pos : p.pos+p.bpp]
	p.pos += p.bpp
	a := byte(255)
	if p.bpp == 4 {
		a = s[3]
	}
	return [4]byte{s[2], s[1], s[0], a}
}

func (p *tgaPixels) available() bool {
	return p.pos+p.bpp <= len(p.src)
}

// put stores the n-th pixel in file order; bottom-up files are flipped.
func (p *tgaPixels) put(n int, c [4]byte) {
	x, y := n%p.width, n/p.width
	if !p.topToBottom {
		y = p.height - 1 - y
	}
	copy(p.img.Pix[p.img.PixOffset(x, y):], c[:])
}

// decodeRLE expands run-length packets. Missing trailing data leaves the
// remaining pixels transparent.
func (p *tgaPixels) decodeRLE() {
	total := p.width * p.height
	n := 0
	for n < total && p.pos < len(p.src) {
		header := p.src[p.pos]
		p.pos++
		count := int(header&0x7F) + 1

		if header&0x80 != 0 {
			if !p.available() {
				return
			}
			c := p.read()
			for i := 0; i < count && n < total; i++ {
				p.put(n, c)
				n++
			}
			continue
		}

		for i := 0; i < count && n < total; i++ {
			if !p.available() {
				return
			}
			p.put(n, p.read())
			n++
		}
	}
}
