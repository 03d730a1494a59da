package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/Steve132/uraster/pkg/render"
)

// spin is the model's yaw in degrees. Key presses add angular velocity,
// which a critically damped spring brings back to rest.
type spin struct {
	yaw      float64
	velocity float64 // degrees per frame
	accel    float64 // spring velocity of velocity
	spring   harmonica.Spring
	fps      int
}

func newSpin(fps int) *spin {
	return &spin{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 2.0, 1.0),
		fps:    fps,
	}
}

func (s *spin) kick(degrees float64) {
	s.velocity += degrees
}

func (s *spin) update() {
	s.yaw += s.velocity
	s.velocity, s.accel = s.spring.Update(s.velocity, s.accel, 0)
}

func (s *spin) reset() {
	*s = *newSpin(s.fps)
}

func runView(args []string) error {
	fs, o := newFlagSet("view", "Spin the model in the terminal.\n\nControls:\n  Left/Right, A/D  spin\n  Space            nudge\n  R                reset\n  Q, Esc           quit")
	fps := fs.Int("fps", 30, "target frames per second")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fps < 1 {
		return fmt.Errorf("fps must be positive, got %d", *fps)
	}

	s, _, err := o.load(fs)
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	fb, err := s.NewFramebuffer(render.TerminalSize(width, height))
	if err != nil {
		return fmt.Errorf("framebuffer: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	const impulse = 4.0
	rot := newSpin(*fps)
	rot.kick(impulse)

	ticker := time.NewTicker(time.Second / time.Duration(*fps))
	defer ticker.Stop()
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				if fb, err = s.NewFramebuffer(render.TerminalSize(width, height)); err != nil {
					return fmt.Errorf("framebuffer: %w", err)
				}
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("q", "escape", "ctrl+c"):
					return nil
				case ev.MatchString("a", "left"):
					rot.kick(-impulse)
				case ev.MatchString("d", "right"):
					rot.kick(impulse)
				case ev.MatchString("space"):
					rot.kick(impulse / 2)
				case ev.MatchString("r"):
					rot.reset()
				}
			}

		case <-ticker.C:
			rot.update()
			if _, err := s.Render(fb, rot.yaw); err != nil {
				return err
			}
			render.DrawHalfBlocks(term, image.Rect(0, 0, width, height), render.ToImage(fb))
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
