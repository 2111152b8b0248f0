package utils

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/thelolagemann/gbcemu/internal/ppu"
	"github.com/thelolagemann/gbcemu/pkg/display"
	"golang.org/x/image/draw"
)

// MaxScale is the largest factor ScaleImage will scale by.
const MaxScale = 8

// FrameToImage converts a frame to an image.
func FrameToImage(f *display.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y := range f {
		for x, c := range f[y] {
			r, g, b := c.RGB()
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, 0xFF
		}
	}
	return img
}

// ScaleImage scales img by an integer factor (1 to MaxScale) using
// nearest neighbour sampling, keeping pixels sharp.
func ScaleImage(img image.Image, factor int) *image.RGBA {
	factor = Clamp(1, factor, MaxScale)
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SaveImage encodes img as a PNG to filename. A .png extension is
// appended if missing.
func SaveImage(img image.Image, filename string) (string, error) {
	// does file have a .png extension?
	if filepath.Ext(filename) != ".png" {
		filename += ".png"
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("utils: encoding %s: %w", filename, err)
	}
	return filename, f.Close()
}
