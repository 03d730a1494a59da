package uraster

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Stats reports what a draw call did.
type Stats struct {
	Triangles  int // Triangles submitted (len(indices)/3)
	Drawn      int // Triangles that reached the fill stage
	Culled     int // Triangles whose clamped bounding box was empty
	Degenerate int // Triangles skipped with ErrDegenerateTriangle
	InvalidW   int // Triangles skipped with ErrInvalidHomogeneousCoordinate
	Fragments  int // Pixels written
	Tiles      int // Tiles that had at least one triangle
}

// Skipped returns the number of triangles dropped for numeric reasons.
func (s Stats) Skipped() int {
	return s.Degenerate + s.InvalidW
}

type drawConfig struct {
	workers int
	tileW   int
	tileH   int
	logger  *slog.Logger
}

// Option configures a draw call.
type Option func(*drawConfig)

// WithWorkers sets the number of goroutines used by each parallel phase.
// Values <= 0 mean GOMAXPROCS. The image does not depend on this setting.
func WithWorkers(n int) Option {
	return func(c *drawConfig) {
		c.workers = n
	}
}

// WithTileSize sets the size of the framebuffer tiles that workers own
// during rasterization. Non-positive values keep the default.
func WithTileSize(w, h int) Option {
	return func(c *drawConfig) {
		if w > 0 {
			c.tileW = w
		}
		if h > 0 {
			c.tileH = h
		}
	}
}

// WithLogger sets the logger for this draw call instead of the package
// logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *drawConfig) {
		c.logger = l
	}
}

// vertexCache is the vertex output buffer for one draw call: either the
// caller's buffer, borrowed, or one the call allocated and drops on return.
type vertexCache[V any] struct {
	buf   []V
	owned bool
}

func resolveCache[V any](cache []V, n int) vertexCache[V] {
	if cache != nil && len(cache) == n {
		return vertexCache[V]{buf: cache}
	}
	return vertexCache[V]{buf: make([]V, n), owned: true}
}

func (c *vertexCache[V]) release() {
	if c.owned {
		c.buf = nil
	}
}

// validateIndices checks the index buffer before any work is done.
func validateIndices(indices []int, vertexCount int) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: got %d indices", ErrInvalidIndexBuffer, len(indices))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= vertexCount {
			return fmt.Errorf("%w: indices[%d] = %d with %d vertices", ErrIndexOutOfRange, i, idx, vertexCount)
		}
	}
	return nil
}

// Draw renders the indexed triangle list into fb.
//
// Every vertex is run through vs, into cache when len(cache) matches
// len(vertices) and into a temporary buffer otherwise. Each consecutive
// index triplet is then rasterized with fs. Structural problems (nil
// arguments, malformed or out-of-range indices) fail before fb is touched.
// Triangles that cannot be rasterized are skipped and counted in Stats.
//
// Rasterization is parallel over disjoint framebuffer tiles; each tile
// processes its triangles in submission order, so the result is identical
// to drawing the triangles one after another on a single goroutine,
// whatever the worker count.
func Draw[In any, V Varying[V], P Pixel[P]](
	fb *Framebuffer[P],
	vertices []In,
	indices []int,
	cache []V,
	vs VertexShader[In, V],
	fs FragmentShader[V, P],
	opts ...Option,
) (Stats, error) {
	if fb == nil {
		return Stats{}, fmt.Errorf("%w: nil framebuffer", ErrInvalidArgument)
	}
	if vs == nil || fs == nil {
		return Stats{}, fmt.Errorf("%w: nil shader", ErrInvalidArgument)
	}
	if err := validateIndices(indices, len(vertices)); err != nil {
		return Stats{}, err
	}

	cfg := drawConfig{
		workers: runtime.GOMAXPROCS(0),
		tileW:   DefaultTileWidth,
		tileH:   DefaultTileHeight,
		logger:  Logger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers <= 0 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}
	if cfg.logger == nil {
		cfg.logger = Logger()
	}

	vc := resolveCache(cache, len(vertices))
	defer vc.release()

	if err := ShadeVertices(vertices, vc.buf, vs, cfg.workers); err != nil {
		return Stats{}, fmt.Errorf("shade vertices: %w", err)
	}

	stats := Stats{Triangles: len(indices) / 3}
	tris := make([]triangle[V], stats.Triangles)
	errs := make([]error, stats.Triangles)

	forEachChunk(len(tris), cfg.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			ti := indices[3*i : 3*i+3]
			verts := [3]V{vc.buf[ti[0]], vc.buf[ti[1]], vc.buf[ti[2]]}
			tris[i], errs[i] = setupTriangle(verts, fb.width, fb.height)
		}
	})

	grid := newTileGrid(fb.width, fb.height, cfg.tileW, cfg.tileH)
	for i := range tris {
		switch err := errs[i]; {
		case errors.Is(err, ErrDegenerateTriangle):
			stats.Degenerate++
			cfg.logger.Debug("skipped triangle", "triangle", i, "error", err)
		case errors.Is(err, ErrInvalidHomogeneousCoordinate):
			stats.InvalidW++
			cfg.logger.Debug("skipped triangle", "triangle", i, "error", err)
		case tris[i].box.Empty():
			stats.Culled++
		default:
			stats.Drawn++
			grid.bin(i, tris[i].box)
		}
	}

	busy := grid.busy()
	stats.Tiles = len(busy)
	written := make([]int, len(busy))

	var g errgroup.Group
	g.SetLimit(cfg.workers)
	for n, t := range busy {
		g.Go(func() error {
			for _, id := range t.tris {
				written[n] += fillTriangle(fb, &tris[id], t.rect, fs)
			}
			return nil
		})
	}
	_ = g.Wait() // tile workers cannot fail

	for _, w := range written {
		stats.Fragments += w
	}

	cfg.logger.Debug("draw",
		"vertices", len(vertices),
		"triangles", stats.Triangles,
		"drawn", stats.Drawn,
		"culled", stats.Culled,
		"skipped", stats.Skipped(),
		"fragments", stats.Fragments,
		"tiles", stats.Tiles,
		"workers", cfg.workers,
		"cache_owned", vc.owned,
	)
	return stats, nil
}
