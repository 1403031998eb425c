// Package capture saves rendered frames as PNG screenshots.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/lumen/internal/engine/gfx"
)

// Screenshots writes timestamped PNG files into a directory.
type Screenshots struct {
	outputDir string
	prefix    string

	// Now returns the timestamp used in file names.
	Now func() time.Time
}

// NewScreenshots creates a screenshot writer. An empty dir writes into the
// working directory.
func NewScreenshots(outputDir, prefix string) *Screenshots {
	return &Screenshots{
		outputDir: outputDir,
		prefix:    prefix,
		Now:       time.Now,
	}
}

// Capture reads the current framebuffer from dev and saves it.
func (s *Screenshots) Capture(dev gfx.Device, width, height int) (string, error) {
	return s.SavePixels(dev.ReadPixels(width, height), width, height)
}

// SavePixels saves bottom-up RGBA rows, as the framebuffer returns them,
// as a top-down PNG.
func (s *Screenshots) SavePixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return s.Save(img)
}

// Save writes img under a new timestamped name and returns the path.
func (s *Screenshots) Save(img image.Image) (string, error) {
	if s.outputDir != "" {
		if err := os.MkdirAll(s.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := s.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// Filename returns the path the next screenshot would be written to.
func (s *Screenshots) Filename() string {
	name := fmt.Sprintf("%s_%s.png", s.prefix, s.Now().Format("2006-01-02_15-04-05.000"))
	return filepath.Join(s.outputDir, name)
}
