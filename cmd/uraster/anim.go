package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/schollz/progressbar/v3"

	"github.com/Steve132/uraster/pkg/render"
	"github.com/Steve132/uraster/pkg/scene"
)

func runAnim(args []string) error {
	fs, o := newFlagSet("anim", "Render a turntable animation as numbered image frames.")
	fs.BoolVar(&o.verbose, "v", false, "log per-draw rasterizer statistics")
	fs.StringVar(&o.out, "o", "", "output path; frame numbers go before the extension")
	fs.IntVar(&o.scale, "scale", 0, "integer upscale factor for the saved frames")
	fs.IntVar(&o.frames, "frames", 0, "number of frames")
	fs.StringVar(&o.easing, "easing", "", "linear or spring")
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

	angles := turntable(s.Config.Animation)
	start := time.Now()
	var fragments int

	bar := progressbar.Default(int64(len(angles)), "rendering")
	defer bar.Close()

	for i, yaw := range angles {
		stats, err := s.Render(fb, yaw)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		fragments += stats.Fragments

		path := framePath(out.Path, i, len(angles))
		if err := render.SaveImage(render.Upscale(render.ToImage(fb), out.Scale), path); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		bar.Add(1)
	}

	logger.Info("animation done",
		"frames", len(angles),
		"first", framePath(out.Path, 0, len(angles)),
		"fragments", fragments,
		"elapsed", time.Since(start),
	)
	return nil
}

// turntable returns the model yaw in degrees for each frame. Linear easing
// spins at a constant rate and stops one step short of the full turn so the
// frames loop. Spring easing starts fast and settles onto the final angle.
func turntable(a scene.AnimationConfig) []float64 {
	angles := make([]float64, a.Frames)
	if a.Easing == "spring" {
		// One simulated second across all frames, critically damped.
		spring := harmonica.NewSpring(harmonica.FPS(a.Frames), 6.0, 1.0)
		var pos, vel float64
		for i := range angles {
			angles[i] = pos
			pos, vel = spring.Update(pos, vel, a.Degrees)
		}
		return angles
	}
	for i := range angles {
		angles[i] = a.Degrees * float64(i) / float64(a.Frames)
	}
	return angles
}

// framePath inserts a zero-padded frame number before the extension:
// out.png becomes out_07.png for frame 7 of 100.
func framePath(path string, frame, total int) string {
	ext := filepath.Ext(path)
	digits := len(strconv.Itoa(max(total-1, 0)))
	return fmt.Sprintf("%s_%0*d%s", strings.TrimSuffix(path, ext), digits, frame, ext)
}
