package main

import (
	"fmt"
	"time"

	"github.com/Steve132/uraster/pkg/render"
)

func runRender(args []string) error {
	fs, o := newFlagSet("render", "Render one frame to a PNG or BMP image.")
	fs.BoolVar(&o.verbose, "v", false, "log per-draw rasterizer statistics")
	fs.StringVar(&o.out, "o", "", "output image, .png or .bmp")
	fs.IntVar(&o.scale, "scale", 0, "integer upscale factor for the saved image")
	yaw := fs.Float64("yaw", 0, "model rotation about the vertical axis in degrees")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, logger, err := o.load(fs)
	if err != nil {
		return err
	}
	out := s.Config.Output

	fb, err := s.NewFramebuffer(out.Width, out.Height)
	if err != nil {
		return fmt.Errorf("framebuffer: %w", err)
	}

	start := time.Now()
	stats, err := s.Render(fb, *yaw)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	img := render.Upscale(render.ToImage(fb), out.Scale)
	if err := render.SaveImage(img, out.Path); err != nil {
		return err
	}

	logger.Info("rendered",
		"path", out.Path,
		"size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		"triangles", stats.Triangles,
		"drawn", stats.Drawn,
		"skipped", stats.Skipped(),
		"fragments", stats.Fragments,
		"elapsed", elapsed,
	)
	return nil
}
