package uraster

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Steve132/uraster/pkg/math3d"
)

// vtx is a minimal varying: a position plus one scalar attribute.
type vtx struct {
	pos math3d.Vec4
	c   float64
}

func (v vtx) Position() math3d.Vec4 { return v.pos }
func (v vtx) Add(o vtx) vtx         { return vtx{v.pos.Add(o.pos), v.c + o.c} }
func (v vtx) Scale(s float64) vtx   { return vtx{v.pos.Scale(s), v.c * s} }

// px records the interpolated attribute and whether it was written.
type px struct {
	d   float64
	c   float64
	hit bool
}

func (p px) Depth() float64         { return p.d }
func (p px) WithDepth(d float64) px { p.d = d; return p }

var (
	passVS VertexShader[vtx, vtx]  = func(v vtx) vtx { return v }
	attrFS FragmentShader[vtx, px] = func(v vtx) px { return px{c: v.c, hit: true} }
)

func v(x, y, z, c float64) vtx {
	return vtx{pos: math3d.V4(x, y, z, 1), c: c}
}

func newTestFB(t testing.TB, w, h int) *Framebuffer[px] {
	t.Helper()
	fb, err := NewFramebuffer(w, h, px{d: FarDepth})
	if err != nil {
		t.Fatalf("NewFramebuffer(%d, %d): %v", w, h, err)
	}
	return fb
}

func countHits(fb *Framebuffer[px]) int {
	n := 0
	for _, p := range fb.All() {
		if p.hit {
			n++
		}
	}
	return n
}

func TestDrawSingleTriangle4x4(t *testing.T) {
	fb := newTestFB(t, 4, 4)
	verts := []vtx{v(-1, -1, 0, 1), v(1, -1, 0, 1), v(0, 1, 0, 1)}

	stats, err := Draw(fb, verts, []int{0, 1, 2}, nil, passVS, attrFS)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	want := [4][4]bool{
		{true, true, true, true},
		{false, true, true, false},
		{false, true, true, false},
		{false, false, false, false},
	}
	for y := range 4 {
		for x := range 4 {
			p, err := fb.At(x, y)
			if err != nil {
				t.Fatalf("At(%d, %d): %v", x, y, err)
			}
			if p.hit != want[y][x] {
				t.Errorf("pixel (%d, %d) hit = %v, want %v", x, y, p.hit, want[y][x])
			}
			if p.hit && p.d != 0 {
				t.Errorf("pixel (%d, %d) depth = %v, want 0", x, y, p.d)
			}
			if !p.hit && p.d != FarDepth {
				t.Errorf("pixel (%d, %d) depth = %v, want FarDepth", x, y, p.d)
			}
		}
	}

	if stats.Triangles != 1 || stats.Drawn != 1 || stats.Fragments != 8 {
		t.Errorf("stats = %+v, want 1 triangle, 1 drawn, 8 fragments", stats)
	}
}

func TestDepthOrderIndependence(t *testing.T) {
	near := []vtx{v(-4, -4, 0.2, 1), v(4, -4, 0.2, 1), v(0, 4, 0.2, 1)}
	far := []vtx{v(-4, -4, 0.8, 2), v(4, -4, 0.8, 2), v(0, 4, 0.8, 2)}

	orders := map[string][]vtx{
		"low first":  append(append([]vtx{}, near...), far...),
		"high first": append(append([]vtx{}, far...), near...),
	}
	for name, verts := range orders {
		t.Run(name, func(t *testing.T) {
			fb := newTestFB(t, 8, 8)
			if _, err := Draw(fb, verts, []int{0, 1, 2, 3, 4, 5}, nil, passVS, attrFS); err != nil {
				t.Fatalf("Draw: %v", err)
			}
			for pt, p := range fb.All() {
				if !p.hit {
					t.Fatalf("pixel %v not covered", pt)
				}
				if math.Abs(p.d-0.8) > 1e-9 || math.Abs(p.c-2) > 1e-9 {
					t.Fatalf("pixel %v = %+v, want depth 0.8 attribute 2", pt, p)
				}
			}
		})
	}
}

func TestFarPlaneDiscard(t *testing.T) {
	for _, z := range []float64{1, 1.5} {
		fb := newTestFB(t, 8, 8)
		verts := []vtx{v(-4, -4, z, 1), v(4, -4, z, 1), v(0, 4, z, 1)}
		stats, err := Draw(fb, verts, []int{0, 1, 2}, nil, passVS, attrFS)
		if err != nil {
			t.Fatalf("Draw: %v", err)
		}
		if stats.Fragments != 0 || countHits(fb) != 0 {
			t.Errorf("z = %v: wrote %d fragments, want 0", z, stats.Fragments)
		}
	}
}

func TestAttributeInterpolation(t *testing.T) {
	fb := newTestFB(t, 32, 32)
	// Attribute equals NDC x at every corner, so the affine interpolation
	// must reproduce x at every covered pixel center.
	verts := []vtx{v(-1, -1, 0, -1), v(1, -1, 0, 1), v(-1, 1, 0, -1)}
	if _, err := Draw(fb, verts, []int{0, 1, 2}, nil, passVS, attrFS); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	for pt, p := range fb.All() {
		if !p.hit {
			continue
		}
		want := (float64(pt.X)+0.5)*2/32 - 1
		if math.Abs(p.c-want) > 1e-9 {
			t.Errorf("pixel %v attribute = %v, want %v", pt, p.c, want)
		}
	}
}

func TestCoverageMatchesArea(t *testing.T) {
	const size = 256
	fb := newTestFB(t, size, size)
	verts := []vtx{v(-0.8, -0.8, 0, 0), v(0.8, -0.8, 0, 0), v(0, 0.8, 0, 0)}
	stats, err := Draw(fb, verts, []int{0, 1, 2}, nil, passVS, attrFS)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// NDC area 1.28 out of 4.
	want := 1.28 / 4 * size * size
	got := float64(stats.Fragments)
	if math.Abs(got-want)/want > 0.05 {
		t.Errorf("covered %v pixels, want about %v", got, want)
	}
	if stats.Fragments != countHits(fb) {
		t.Errorf("Fragments = %d, framebuffer has %d hits", stats.Fragments, countHits(fb))
	}
}

func TestSharedEdgeNotDrawn(t *testing.T) {
	// Two triangles sharing the diagonal y = x of a 4x4 target. Pixel centers
	// on the diagonal are on both triangles' edges and stay empty.
	fb := newTestFB(t, 4, 4)
	verts := []vtx{v(-1, -1, 0, 1), v(1, -1, 0, 1), v(1, 1, 0, 1), v(-1, 1, 0, 1)}
	if _, err := Draw(fb, verts, []int{0, 1, 2, 0, 2, 3}, nil, passVS, attrFS); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	for pt, p := range fb.All() {
		onDiagonal := pt.X == pt.Y
		if p.hit == onDiagonal {
			t.Errorf("pixel %v hit = %v", pt, p.hit)
		}
	}
}

func TestOffscreenTriangle(t *testing.T) {
	fb := newTestFB(t, 16, 16)
	verts := []vtx{v(2, 2, 0, 1), v(3, 2, 0, 1), v(2, 3, 0, 1)}
	stats, err := Draw(fb, verts, []int{0, 1, 2}, nil, passVS, attrFS)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if stats.Culled != 1 || stats.Drawn != 0 || stats.Fragments != 0 {
		t.Errorf("stats = %+v, want one culled triangle", stats)
	}
	if countHits(fb) != 0 {
		t.Error("off-screen triangle modified the framebuffer")
	}
}

func TestSkippedTriangles(t *testing.T) {
	fb := newTestFB(t, 16, 16)
	verts := []vtx{
		// collinear
		v(-0.5, -0.5, 0, 1), v(0, 0, 0, 1), v(0.5, 0.5, 0, 1),
		// w == 0 at one corner
		v(-0.5, -0.5, 0, 1), v(0.5, -0.5, 0, 1), {pos: math3d.V4(0, 0.5, 0, 0)},
		// valid
		v(-1, -1, 0, 1), v(1, -1, 0, 1), v(0, 1, 0, 1),
	}
	idx := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	stats, err := Draw(fb, verts, idx, nil, passVS, attrFS, WithLogger(logger))
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if stats.Degenerate != 1 || stats.InvalidW != 1 || stats.Drawn != 1 || stats.Skipped() != 2 {
		t.Errorf("stats = %+v, want 1 degenerate, 1 invalid w, 1 drawn", stats)
	}
	if stats.Fragments == 0 {
		t.Error("valid triangle after skipped ones was not drawn")
	}
	if got := strings.Count(buf.String(), "skipped triangle"); got != 2 {
		t.Errorf("logged %d skipped triangles, want 2:\n%s", got, buf.String())
	}
}

func TestRasterizeTriangleErrors(t *testing.T) {
	fb := newTestFB(t, 8, 8)

	_, err := RasterizeTriangle(fb, [3]vtx{v(0, 0, 0, 1), v(0, 0, 0, 1), v(0.5, 0.5, 0, 1)}, attrFS)
	if !errors.Is(err, ErrDegenerateTriangle) {
		t.Errorf("repeated corner: err = %v, want ErrDegenerateTriangle", err)
	}

	inf := vtx{pos: math3d.V4(math.Inf(1), 0, 0, 1)}
	_, err = RasterizeTriangle(fb, [3]vtx{inf, v(0, 0, 0, 1), v(0.5, 0.5, 0, 1)}, attrFS)
	if !errors.Is(err, ErrInvalidHomogeneousCoordinate) {
		t.Errorf("infinite corner: err = %v, want ErrInvalidHomogeneousCoordinate", err)
	}

	if countHits(fb) != 0 {
		t.Error("failed triangles modified the framebuffer")
	}
}

func TestDrawStructuralErrors(t *testing.T) {
	verts := []vtx{v(-1, -1, 0, 1), v(1, -1, 0, 1), v(0, 1, 0, 1)}

	tests := []struct {
		name    string
		indices []int
		want    error
	}{
		{"length not multiple of 3", []int{0, 1, 2, 0}, ErrInvalidIndexBuffer},
		{"index too large", []int{0, 1, 3}, ErrIndexOutOfRange},
		{"negative index", []int{0, -1, 2}, ErrIndexOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := newTestFB(t, 4, 4)
			var calls atomic.Int64
			vs := VertexShader[vtx, vtx](func(in vtx) vtx {
				calls.Add(1)
				return in
			})
			_, err := Draw(fb, verts, tc.indices, nil, vs, attrFS)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if calls.Load() != 0 {
				t.Errorf("vertex shader ran %d times before validation failed", calls.Load())
			}
			if countHits(fb) != 0 {
				t.Error("framebuffer modified")
			}
		})
	}

	t.Run("nil framebuffer", func(t *testing.T) {
		var fb *Framebuffer[px]
		if _, err := Draw(fb, verts, []int{0, 1, 2}, nil, passVS, attrFS); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("nil shader", func(t *testing.T) {
		fb := newTestFB(t, 4, 4)
		if _, err := Draw(fb, verts, []int{0, 1, 2}, nil, nil, attrFS); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestDrawEmpty(t *testing.T) {
	fb := newTestFB(t, 4, 4)
	stats, err := Draw(fb, []vtx{}, nil, nil, passVS, attrFS)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

func TestVertexCache(t *testing.T) {
	verts := []vtx{v(-1, -1, 0, 1), v(1, -1, 0, 2), v(0, 1, 0, 3)}
	scale := VertexShader[vtx, vtx](func(in vtx) vtx { return in.Scale(2) })

	t.Run("matching length is filled", func(t *testing.T) {
		fb := newTestFB(t, 4, 4)
		cache := make([]vtx, len(verts))
		if _, err := Draw(fb, verts, []int{0, 1, 2}, cache, scale, attrFS); err != nil {
			t.Fatalf("Draw: %v", err)
		}
		for i := range verts {
			if cache[i] != scale(verts[i]) {
				t.Errorf("cache[%d] = %+v, want %+v", i, cache[i], scale(verts[i]))
			}
		}
	})

	t.Run("wrong length is ignored", func(t *testing.T) {
		fb := newTestFB(t, 4, 4)
		cache := make([]vtx, 1)
		stats, err := Draw(fb, verts, []int{0, 1, 2}, cache, scale, attrFS)
		if err != nil {
			t.Fatalf("Draw: %v", err)
		}
		if cache[0] != (vtx{}) {
			t.Errorf("short cache was written: %+v", cache[0])
		}
		if stats.Fragments != 8 {
			t.Errorf("Fragments = %d, want 8", stats.Fragments)
		}
	})
}

func randomScene(n int, seed uint64) ([]vtx, []int) {
	r := rand.New(rand.NewPCG(seed, 0))
	verts := make([]vtx, 3*n)
	idx := make([]int, 3*n)
	for i := range verts {
		verts[i] = v(r.Float64()*2.4-1.2, r.Float64()*2.4-1.2, r.Float64()*2-1, r.Float64())
		idx[i] = i
	}
	// Shared vertices between neighbours.
	for i := 3; i < len(idx); i += 3 {
		idx[i] = idx[i-1]
	}
	return verts, idx
}

func TestDrawMatchesSequential(t *testing.T) {
	const w, h = 97, 61
	verts, idx := randomScene(300, 1)

	want := newTestFB(t, w, h)
	for i := 0; i < len(idx); i += 3 {
		tri := [3]vtx{verts[idx[i]], verts[idx[i+1]], verts[idx[i+2]]}
		_, _ = RasterizeTriangle(want, tri, attrFS)
	}

	configs := []struct {
		name string
		opts []Option
	}{
		{"one worker", []Option{WithWorkers(1)}},
		{"four workers", []Option{WithWorkers(4)}},
		{"small tiles", []Option{WithWorkers(8), WithTileSize(7, 5)}},
		{"single tile", []Option{WithTileSize(w, h)}},
		{"default", nil},
	}
	for _, tc := range configs {
		t.Run(tc.name, func(t *testing.T) {
			got := newTestFB(t, w, h)
			if _, err := Draw(got, verts, idx, nil, passVS, attrFS, tc.opts...); err != nil {
				t.Fatalf("Draw: %v", err)
			}
			gp, wp := got.Pixels(), want.Pixels()
			for i := range wp {
				if gp[i] != wp[i] {
					t.Fatalf("pixel %d = %+v, want %+v", i, gp[i], wp[i])
				}
			}
		})
	}
}

func TestBarycentricWeights(t *testing.T) {
	s1, s2, s3 := math3d.V2(-0.5, -0.25), math3d.V2(0.75, -0.5), math3d.V2(0.1, 0.9)
	bt, err := NewBarycentricTransform(s1, s2, s3)
	if err != nil {
		t.Fatalf("NewBarycentricTransform: %v", err)
	}

	corners := []struct {
		p    math3d.Vec2
		want math3d.Vec3
	}{
		{s1, math3d.V3(1, 0, 0)},
		{s2, math3d.V3(0, 1, 0)},
		{s3, math3d.V3(0, 0, 1)},
	}
	for _, c := range corners {
		b := bt.Weights(c.p)
		if b.Sub(c.want).Len() > 1e-12 {
			t.Errorf("Weights(%v) = %v, want %v", c.p, b, c.want)
		}
	}

	r := rand.New(rand.NewPCG(2, 0))
	for range 100 {
		p := math3d.V2(r.Float64()*4-2, r.Float64()*4-2)
		b := bt.Weights(p)
		if math.Abs(b.X+b.Y+b.Z-1) > 1e-12 {
			t.Fatalf("Weights(%v) = %v, sum %v", p, b, b.X+b.Y+b.Z)
		}
	}

	centroid := s1.Add(s2).Add(s3).Scale(1.0 / 3)
	if !inside(bt.Weights(centroid)) {
		t.Error("centroid not inside")
	}

	if _, err := NewBarycentricTransform(s1, s1, s3); !errors.Is(err, ErrDegenerateTriangle) {
		t.Errorf("repeated corner: err = %v, want ErrDegenerateTriangle", err)
	}
}

func TestPixelSpan(t *testing.T) {
	tests := []struct {
		lo, hi float64
		size   int
		wantLo int
		wantHi int
	}{
		{-1, 1, 4, 0, 4},
		{-0.5, 0.5, 4, 1, 4},
		{2, 3, 4, 0, 0},
		{-3, -2, 4, 0, 0},
		{-1e300, 1e300, 8, 0, 8},
		{0, 0, 4, 2, 3},
	}
	for _, tc := range tests {
		lo, hi := pixelSpan(tc.lo, tc.hi, tc.size)
		if lo != tc.wantLo || hi != tc.wantHi {
			t.Errorf("pixelSpan(%v, %v, %d) = (%d, %d), want (%d, %d)",
				tc.lo, tc.hi, tc.size, lo, hi, tc.wantLo, tc.wantHi)
		}
	}
}

func TestTileGrid(t *testing.T) {
	g := newTileGrid(100, 70, 64, 64)
	if g.cols != 2 || g.rows != 2 {
		t.Fatalf("grid = %dx%d, want 2x2", g.cols, g.rows)
	}
	if got := g.tiles[3].rect; got.Dx() != 36 || got.Dy() != 6 {
		t.Errorf("corner tile = %v, want 36x6", got)
	}

	box := g.tiles[0].rect.Union(g.tiles[1].rect)
	g.bin(5, box)
	g.bin(2, g.tiles[1].rect)
	g.bin(9, box.Sub(box.Min)) // same box again
	busy := g.busy()
	if len(busy) != 2 {
		t.Fatalf("busy tiles = %d, want 2", len(busy))
	}
	if got := busy[1].tris; len(got) != 3 || got[0] != 5 || got[1] != 2 || got[2] != 9 {
		t.Errorf("tile 1 triangles = %v, want [5 2 9]", got)
	}
}

func TestFramebuffer(t *testing.T) {
	if _, err := NewFramebuffer(0, 4, px{}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("zero width: err = %v, want ErrInvalidDimensions", err)
	}
	if _, err := NewFramebuffer(4, -1, px{}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("negative height: err = %v, want ErrInvalidDimensions", err)
	}

	fb := newTestFB(t, 5, 3)
	if fb.Width() != 5 || fb.Height() != 3 || len(fb.Pixels()) != 15 {
		t.Fatalf("framebuffer is %dx%d with %d pixels", fb.Width(), fb.Height(), len(fb.Pixels()))
	}
	for pt, p := range fb.All() {
		if p.d != FarDepth {
			t.Fatalf("pixel %v depth = %v after clear", pt, p.d)
		}
	}

	if err := fb.Set(4, 2, px{c: 7}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if p, _ := fb.At(4, 2); p.c != 7 {
		t.Errorf("At(4, 2) = %+v", p)
	}
	if fb.Pixels()[2*5+4].c != 7 {
		t.Error("Pixels is not row-major")
	}
	ref, err := fb.Ref(0, 1)
	if err != nil {
		t.Fatalf("Ref: %v", err)
	}
	ref.c = 3
	if p, _ := fb.At(0, 1); p.c != 3 {
		t.Errorf("write through Ref not visible: %+v", p)
	}

	for _, pt := range [][2]int{{-1, 0}, {5, 0}, {0, 3}, {0, -1}} {
		if _, err := fb.At(pt[0], pt[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("At(%d, %d): err = %v, want ErrOutOfRange", pt[0], pt[1], err)
		}
		if err := fb.Set(pt[0], pt[1], px{}); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Set(%d, %d): err = %v, want ErrOutOfRange", pt[0], pt[1], err)
		}
	}

	fb.Clear(px{d: 0.5})
	for pt, p := range fb.All() {
		if p != (px{d: 0.5}) {
			t.Fatalf("pixel %v = %+v after Clear", pt, p)
		}
	}
}

func TestShadeVertices(t *testing.T) {
	in := make([]vtx, 1000)
	for i := range in {
		in[i] = v(float64(i), 0, 0, float64(i))
	}
	out := make([]vtx, len(in))
	if err := ShadeVertices(in, out, passVS, 7); err != nil {
		t.Fatalf("ShadeVertices: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %+v, want %+v", i, out[i], in[i])
		}
	}

	if err := ShadeVertices(in, out[:10], passVS, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("short output: err = %v, want ErrOutOfRange", err)
	}
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	fb := newTestFB(t, 4, 4)
	verts := []vtx{v(-1, -1, 0, 1), v(1, -1, 0, 1), v(0, 1, 0, 1)}
	if _, err := Draw(fb, verts, []int{0, 1, 2}, nil, passVS, attrFS); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if !strings.Contains(buf.String(), "fragments=8") {
		t.Errorf("draw stats not logged: %q", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("nil logger should restore the silent default")
	}
}

func BenchmarkDraw(b *testing.B) {
	verts, idx := randomScene(2000, 3)
	fb := newTestFB(b, 320, 240)
	cache := make([]vtx, len(verts))

	b.ReportAllocs()
	for b.Loop() {
		fb.Clear(px{d: FarDepth})
		if _, err := Draw(fb, verts, idx, cache, passVS, attrFS); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDrawSingleWorker(b *testing.B) {
	verts, idx := randomScene(2000, 3)
	fb := newTestFB(b, 320, 240)
	cache := make([]vtx, len(verts))

	for b.Loop() {
		fb.Clear(px{d: FarDepth})
		if _, err := Draw(fb, verts, idx, cache, passVS, attrFS, WithWorkers(1)); err != nil {
			b.Fatal(err)
		}
	}
}
