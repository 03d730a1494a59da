// uraster - CPU triangle rasterizer
// Render meshes to images, turntable animations, or straight to the terminal.
//
// Usage:
//
//	uraster render [options] [model.obj|model.glb]
//	uraster anim   [options] [model.obj|model.glb]
//	uraster view   [options] [model.obj|model.glb]
//
// Without a model the built-in shape from the scene file is drawn.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Steve132/uraster/pkg/scene"
	"github.com/Steve132/uraster/pkg/uraster"
)

func usage() {
	fmt.Fprintf(os.Stderr, "uraster - CPU triangle rasterizer\n\n")
	fmt.Fprintf(os.Stderr, "Usage: uraster <command> [options] [model.obj|model.glb]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  render  - Render one frame to a PNG or BMP image\n")
	fmt.Fprintf(os.Stderr, "  anim    - Render a turntable animation as numbered frames\n")
	fmt.Fprintf(os.Stderr, "  view    - Spin the model in the terminal\n")
	fmt.Fprintf(os.Stderr, "\nRun 'uraster <command> -h' for command options.\n")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "render":
		err = runRender(args)
	case "anim":
		err = runAnim(args)
	case "view":
		err = runView(args)
	case "help", "-h", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the flags shared by every command. Flags left unset keep the
// value from the scene file.
type options struct {
	config  string
	shape   string
	shading string
	width   int
	height  int
	workers int

	// render and anim only
	verbose bool
	out     string
	scale   int

	// anim only
	frames int
	easing string
}

func newFlagSet(name, summary string) (*flag.FlagSet, *options) {
	o := &options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "%s\n\n", summary)
		fmt.Fprintf(fs.Output(), "Usage: uraster %s [options] [model.obj|model.glb]\n\n", name)
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&o.config, "config", "", "YAML scene file")
	fs.StringVar(&o.shape, "shape", "", "built-in shape when no model is given (triangle, quad, cube, sphere)")
	fs.StringVar(&o.shading, "shading", "", "flat, color, normal or gouraud")
	fs.IntVar(&o.width, "width", 0, "framebuffer width in pixels")
	fs.IntVar(&o.height, "height", 0, "framebuffer height in pixels")
	fs.IntVar(&o.workers, "workers", 0, "rasterizer workers (default GOMAXPROCS)")
	return fs, o
}

// configFrom loads the scene file, if any, and applies the flags that were set.
func (o *options) configFrom(fs *flag.FlagSet) (scene.Config, error) {
	cfg := scene.Default()
	if o.config != "" {
		var err error
		if cfg, err = scene.Load(o.config); err != nil {
			return scene.Config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "shape":
			cfg.Model.Shape = o.shape
		case "shading":
			cfg.Shading = o.shading
		case "width":
			cfg.Output.Width = o.width
		case "height":
			cfg.Output.Height = o.height
		case "workers":
			cfg.Workers = o.workers
		case "o":
			cfg.Output.Path = o.out
		case "scale":
			cfg.Output.Scale = o.scale
		case "frames":
			cfg.Animation.Frames = o.frames
		case "easing":
			cfg.Animation.Easing = o.easing
		}
	})
	if fs.NArg() > 0 {
		cfg.Model.Path = fs.Arg(0)
	}
	return cfg, cfg.Validate()
}

// load builds the scene and the command logger. Logs go to stderr; -v
// includes the rasterizer's per-draw debug records.
func (o *options) load(fs *flag.FlagSet) (*scene.Scene, *slog.Logger, error) {
	logger := newLogger(o.verbose)
	uraster.SetLogger(logger)

	cfg, err := o.configFrom(fs)
	if err != nil {
		return nil, nil, err
	}
	s, err := scene.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, logger, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
