package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"

	"github.com/Steve132/uraster/pkg/math3d"
	"github.com/Steve132/uraster/pkg/shaders"
	"github.com/Steve132/uraster/pkg/uraster"
)

// ErrUnsupportedFormat is returned for image formats other than PNG and BMP.
var ErrUnsupportedFormat = errors.New("render: unsupported image format")

// ToImageFunc converts a framebuffer to an image using conv for each pixel.
// Framebuffer row 0 is NDC y = -1, the bottom of the view, so rows are
// flipped to put it at the bottom of the image.
func ToImageFunc[P any](fb *uraster.Framebuffer[P], conv func(P) color.RGBA) *image.RGBA {
	w, h := fb.Width(), fb.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for pt, p := range fb.All() {
		img.SetRGBA(pt.X, h-1-pt.Y, conv(p))
	}
	return img
}

// ToImage converts a color framebuffer to an image, clamping channels to
// the displayable range.
func ToImage(fb *uraster.Framebuffer[shaders.Pixel]) *image.RGBA {
	return ToImageFunc(fb, func(p shaders.Pixel) color.RGBA {
		return RGBFloat(p.Color)
	})
}

// RGBFloat converts a 0-1 color to 8-bit RGBA, clamping each channel.
func RGBFloat(c math3d.Vec3) color.RGBA {
	return color.RGBA{channel(c.X), channel(c.Y), channel(c.Z), 255}
}

func channel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Upscale enlarges img by an integer factor with nearest-neighbour
// sampling, which keeps pixel edges sharp. Factors below 2 return a copy.
func Upscale(img image.Image, factor int) *image.RGBA {
	factor = max(factor, 1)
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Encode writes img in the named format, "png" or "bmp".
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// SaveImage writes img to path, choosing the format from the extension.
func SaveImage(img image.Image, path string) (err error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format != "png" && format != "bmp" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := Encode(f, img, format); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
