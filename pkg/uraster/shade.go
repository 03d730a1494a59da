package uraster

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps tiny buffers from being split into goroutines that cost
// more than the work they do.
const minChunk = 256

// ShadeVertices runs vs over every input vertex, storing out[i] = vs(in[i]).
// Vertices are shaded in parallel on up to workers goroutines (GOMAXPROCS
// when workers <= 0); every output slot is written by exactly one worker.
func ShadeVertices[In any, V Varying[V]](in []In, out []V, vs VertexShader[In, V], workers int) error {
	if vs == nil {
		return fmt.Errorf("%w: nil vertex shader", ErrInvalidArgument)
	}
	if len(out) != len(in) {
		return fmt.Errorf("%w: %d vertex outputs for %d vertices", ErrOutOfRange, len(out), len(in))
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	forEachChunk(len(in), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = vs(in[i])
		}
	})
	return nil
}

// forEachChunk splits [0, n) into contiguous ranges and runs fn on them in
// parallel, returning once all ranges are done.
func forEachChunk(n, workers int, fn func(lo, hi int)) {
	if n == 0 {
		return
	}
	chunks := min(workers, (n+minChunk-1)/minChunk)
	if chunks <= 1 {
		fn(0, n)
		return
	}

	size := (n + chunks - 1) / chunks
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait() // fn cannot fail
}
