package uraster

import "errors"

// Structural errors. Draw returns these before any rendering work starts.
var (
	// ErrInvalidDimensions is returned for a framebuffer with a zero or
	// negative width or height.
	ErrInvalidDimensions = errors.New("uraster: invalid framebuffer dimensions")

	// ErrOutOfRange is returned for pixel access outside the framebuffer or a
	// vertex output buffer whose length does not match its input.
	ErrOutOfRange = errors.New("uraster: out of range")

	// ErrInvalidIndexBuffer is returned when the index count is not a
	// multiple of 3.
	ErrInvalidIndexBuffer = errors.New("uraster: index buffer length is not a multiple of 3")

	// ErrIndexOutOfRange is returned when an index does not name a vertex.
	ErrIndexOutOfRange = errors.New("uraster: index out of range")

	// ErrInvalidArgument is returned for a nil framebuffer or shader.
	ErrInvalidArgument = errors.New("uraster: invalid argument")
)

// Per-triangle errors. RasterizeTriangle returns them; Draw skips the
// triangle, counts it in Stats and carries on.
var (
	// ErrDegenerateTriangle means the screen-space edge matrix is singular
	// (collinear or repeated corners).
	ErrDegenerateTriangle = errors.New("uraster: degenerate triangle")

	// ErrInvalidHomogeneousCoordinate means a corner has w == 0 or its
	// perspective divide is not finite.
	ErrInvalidHomogeneousCoordinate = errors.New("uraster: invalid homogeneous coordinate")
)
