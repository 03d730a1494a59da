// Package dense rasterizes meshes given as flat numeric arrays, the layout
// used when the rasterizer is driven from array-oriented environments.
//
// Every vertex carries a position of PosDims components and NumAttrs float
// attributes. The attributes are interpolated across each face and written
// to one image plane per attribute, alongside a mask of written pixels.
package dense

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Steve132/uraster/pkg/math3d"
	"github.com/Steve132/uraster/pkg/shaders"
	"github.com/Steve132/uraster/pkg/uraster"
)

// ErrShape is returned when the input arrays do not have consistent sizes.
var ErrShape = errors.New("dense: inconsistent input shape")

// Input describes one rasterization request.
type Input struct {
	Faces      []int32   // 3 vertex indices per face
	Positions  []float32 // N x PosDims, vertex-major
	PosDims    int       // components per position; 4 at most are used
	Attributes []float32 // N x NumAttrs, vertex-major
	NumAttrs   int

	// Camera maps positions to clip space, column-major.
	Camera math3d.Mat4

	Rows, Cols int

	// ColumnMajor lays out Images and Mask with the row index varying
	// fastest, as array languages with column-major storage expect.
	ColumnMajor bool

	// Workers bounds parallelism; <= 0 means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Output holds the rendered planes.
type Output struct {
	Rows, Cols int
	NumAttrs   int

	// Images holds NumAttrs planes of Rows*Cols values each. Unwritten
	// pixels are zero.
	Images []float32
	// Mask is 1 where a face was drawn, 0 elsewhere.
	Mask []int32

	Stats uraster.Stats
}

// vertex is a view into the input arrays for one vertex.
type vertex struct {
	pos   math3d.Vec4
	attrs []float32
}

func (in *Input) vertexCount() (int, error) {
	if in.Rows <= 0 || in.Cols <= 0 {
		return 0, fmt.Errorf("%w: image size %dx%d", ErrShape, in.Rows, in.Cols)
	}
	if in.PosDims <= 0 {
		return 0, fmt.Errorf("%w: %d position components", ErrShape, in.PosDims)
	}
	if len(in.Positions)%in.PosDims != 0 {
		return 0, fmt.Errorf("%w: %d position values not a multiple of %d", ErrShape, len(in.Positions), in.PosDims)
	}
	n := len(in.Positions) / in.PosDims
	if in.NumAttrs < 0 || len(in.Attributes) != n*in.NumAttrs {
		return 0, fmt.Errorf("%w: %d attribute values for %d vertices with %d attributes",
			ErrShape, len(in.Attributes), n, in.NumAttrs)
	}
	if len(in.Faces)%3 != 0 {
		return 0, fmt.Errorf("%w: %d face indices not a multiple of 3", ErrShape, len(in.Faces))
	}
	return n, nil
}

// Rasterize renders in and returns the attribute planes and mask.
// Shape errors are reported before any rendering; face indices outside the
// vertex range fail with uraster.ErrIndexOutOfRange.
func Rasterize(in Input) (*Output, error) {
	n, err := in.vertexCount()
	if err != nil {
		return nil, err
	}
	workers := in.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	dims := min(in.PosDims, 4)
	verts := make([]vertex, n)
	for i := range verts {
		p := [4]float64{0, 0, 0, 1}
		for d := range dims {
			p[d] = float64(in.Positions[i*in.PosDims+d])
		}
		verts[i] = vertex{
			pos:   math3d.V4(p[0], p[1], p[2], p[3]),
			attrs: in.Attributes[i*in.NumAttrs : (i+1)*in.NumAttrs],
		}
	}

	indices := make([]int, len(in.Faces))
	for i, f := range in.Faces {
		indices[i] = int(f)
	}

	fb, err := uraster.NewFramebuffer(in.Cols, in.Rows, shaders.ClearAttribPixel())
	if err != nil {
		return nil, err
	}

	camera := in.Camera
	vs := uraster.VertexShader[vertex, shaders.Attribs](func(v vertex) shaders.Attribs {
		values := make([]float64, len(v.attrs))
		for k, a := range v.attrs {
			values[k] = float64(a)
		}
		return shaders.Attribs{Pos: camera.MulVec4(v.pos), Values: values}
	})

	opts := []uraster.Option{uraster.WithWorkers(workers)}
	if in.Logger != nil {
		opts = append(opts, uraster.WithLogger(in.Logger))
	}
	stats, err := uraster.Draw(fb, verts, indices, nil, vs, shaders.AttribFragment, opts...)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}

	out := &Output{
		Rows:     in.Rows,
		Cols:     in.Cols,
		NumAttrs: in.NumAttrs,
		Images:   make([]float32, in.NumAttrs*in.Rows*in.Cols),
		Mask:     make([]int32, in.Rows*in.Cols),
		Stats:    stats,
	}
	out.writeback(fb, in.ColumnMajor, workers)
	return out, nil
}

// writeback copies the framebuffer into the output planes, one row per task.
func (out *Output) writeback(fb *uraster.Framebuffer[shaders.AttribPixel], columnMajor bool, workers int) {
	plane := out.Rows * out.Cols
	pixels := fb.Pixels()

	var g errgroup.Group
	g.SetLimit(workers)
	for r := range out.Rows {
		g.Go(func() error {
			for c := range out.Cols {
				px := pixels[r*out.Cols+c]
				off := r*out.Cols + c
				if columnMajor {
					off = c*out.Rows + r
				}
				if px.Drawn {
					out.Mask[off] = 1
				}
				for k := range min(len(px.Values), out.NumAttrs) {
					out.Images[k*plane+off] = float32(px.Values[k])
				}
			}
			return nil
		})
	}
	_ = g.Wait() // row tasks cannot fail
}

// At returns attribute k of the pixel at row r, column c for a row-major
// output.
func (out *Output) At(k, r, c int) float32 {
	return out.Images[k*out.Rows*out.Cols+r*out.Cols+c]
}
