package uraster

import (
	"fmt"
	"image"
	"iter"
)

// Framebuffer is a fixed-size 2D grid of pixels in row-major order.
// Row 0 holds the pixels at NDC y = -1; the core never flips Y.
type Framebuffer[P any] struct {
	width  int
	height int
	pixels []P
}

// NewFramebuffer allocates a width x height framebuffer filled with fill.
func NewFramebuffer[P any](width, height int, fill P) (*Framebuffer[P], error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	fb := &Framebuffer[P]{
		width:  width,
		height: height,
		pixels: make([]P, width*height),
	}
	fb.Clear(fill)
	return fb, nil
}

// Width returns the width in pixels.
func (fb *Framebuffer[P]) Width() int { return fb.width }

// Height returns the height in pixels.
func (fb *Framebuffer[P]) Height() int { return fb.height }

// Bounds returns the framebuffer extent as a rectangle at the origin.
func (fb *Framebuffer[P]) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.width, fb.height)
}

// Clear fills the framebuffer with fill.
func (fb *Framebuffer[P]) Clear(fill P) {
	// Use copy-doubling for faster clearing
	n := len(fb.pixels)
	if n == 0 {
		return
	}
	fb.pixels[0] = fill
	for i := 1; i < n; i *= 2 {
		copy(fb.pixels[i:], fb.pixels[:i])
	}
}

func (fb *Framebuffer[P]) index(x, y int) (int, error) {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return 0, fmt.Errorf("%w: pixel (%d, %d) outside %dx%d", ErrOutOfRange, x, y, fb.width, fb.height)
	}
	return y*fb.width + x, nil
}

// At returns the pixel at (x, y).
func (fb *Framebuffer[P]) At(x, y int) (P, error) {
	i, err := fb.index(x, y)
	if err != nil {
		var zero P
		return zero, err
	}
	return fb.pixels[i], nil
}

// Ref returns a pointer to the pixel at (x, y) for in-place edits.
func (fb *Framebuffer[P]) Ref(x, y int) (*P, error) {
	i, err := fb.index(x, y)
	if err != nil {
		return nil, err
	}
	return &fb.pixels[i], nil
}

// Set stores p at (x, y).
func (fb *Framebuffer[P]) Set(x, y int, p P) error {
	i, err := fb.index(x, y)
	if err != nil {
		return err
	}
	fb.pixels[i] = p
	return nil
}

// Pixels returns the backing row-major slice, index y*Width()+x.
// Writes through it are visible to the framebuffer.
func (fb *Framebuffer[P]) Pixels() []P {
	return fb.pixels
}

// All iterates the pixels in row-major order.
func (fb *Framebuffer[P]) All() iter.Seq2[image.Point, P] {
	return func(yield func(image.Point, P) bool) {
		for i, p := range fb.pixels {
			if !yield(image.Pt(i%fb.width, i/fb.width), p) {
				return
			}
		}
	}
}
