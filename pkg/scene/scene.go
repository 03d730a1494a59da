package scene

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Steve132/uraster/pkg/math3d"
	"github.com/Steve132/uraster/pkg/models"
	"github.com/Steve132/uraster/pkg/render"
	"github.com/Steve132/uraster/pkg/shaders"
	"github.com/Steve132/uraster/pkg/uraster"
)

// Scene is a loaded model ready to be rendered repeatedly.
type Scene struct {
	Config Config
	Mesh   *models.Mesh

	verts   []models.Vertex
	indices []int
	cache   []shaders.Varying // reused by every frame
	logger  *slog.Logger
}

// New loads the model described by cfg.
func New(cfg Config, logger *slog.Logger) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = uraster.Logger()
	}

	mesh, err := loadMesh(cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.Model.Normalize {
		mesh.Normalize()
	}
	if cfg.Model.Flat {
		mesh.Flatten()
	}
	if cfg.Model.Path == "" && cfg.Model.Shape != "triangle" {
		mesh.SetColor(vec(cfg.Model.Color))
	}

	verts, indices := mesh.Buffers()
	logger.Info("loaded model",
		"name", mesh.Name,
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"size", mesh.Size(),
	)
	return &Scene{
		Config:  cfg,
		Mesh:    mesh,
		verts:   verts,
		indices: indices,
		cache:   make([]shaders.Varying, len(verts)),
		logger:  logger,
	}, nil
}

func loadMesh(mc ModelConfig) (*models.Mesh, error) {
	if mc.Path != "" {
		m, err := models.Load(mc.Path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		return m, nil
	}
	switch mc.Shape {
	case "triangle":
		return models.Triangle(), nil
	case "quad":
		return models.Quad(), nil
	case "cube":
		return models.Cube(1.5), nil
	default:
		return models.UVSphere(24, 48), nil
	}
}

func vec(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// NewFramebuffer allocates a framebuffer of the given size cleared to the
// configured background.
func (s *Scene) NewFramebuffer(width, height int) (*uraster.Framebuffer[shaders.Pixel], error) {
	return uraster.NewFramebuffer(width, height, s.Background())
}

// Background is the cleared pixel for this scene.
func (s *Scene) Background() shaders.Pixel {
	return shaders.Background(vec(s.Config.Output.Background))
}

// Camera returns the configured orbit camera for a framebuffer aspect ratio.
func (s *Scene) Camera(aspect float64) *render.Camera {
	cc := s.Config.Camera
	cam := render.NewCamera()
	cam.SetFOV(radians(cc.FOV))
	cam.SetAspectRatio(aspect)
	cam.SetClipPlanes(cc.Near, cc.Far)
	cam.Orbit(math3d.Vec3{}, cc.Distance, radians(cc.Yaw), radians(cc.Pitch))
	return cam
}

// VertexShader returns the configured shader for a camera and model
// transform.
func (s *Scene) VertexShader(cam *render.Camera, model math3d.Mat4) uraster.VertexShader[models.Vertex, shaders.Varying] {
	mvp := cam.MVP(model)
	switch s.Config.Shading {
	case ShadingFlat:
		return shaders.Flat(mvp, vec(s.Config.Model.Color))
	case ShadingColor:
		return shaders.VertexColor(mvp)
	case ShadingGouraud:
		lc := s.Config.Light
		return shaders.Gouraud(mvp, model, shaders.Light{
			Direction: vec(lc.Direction),
			Ambient:   lc.Ambient,
			Diffuse:   lc.Diffuse,
		})
	default:
		return shaders.NormalColor(mvp, model)
	}
}

// Render clears fb and draws the model rotated yaw degrees about the Y axis.
// A model whose bounds are outside the view is counted as culled without
// shading any vertices.
func (s *Scene) Render(fb *uraster.Framebuffer[shaders.Pixel], yaw float64) (uraster.Stats, error) {
	fb.Clear(s.Background())

	cam := s.Camera(float64(fb.Width()) / float64(fb.Height()))
	model := math3d.RotateY(radians(yaw))

	if cam.Frustum(model).Outside(s.Mesh.BoundsMin, s.Mesh.BoundsMax) {
		n := len(s.indices) / 3
		s.logger.Debug("model outside view", "name", s.Mesh.Name)
		return uraster.Stats{Triangles: n, Culled: n}, nil
	}

	opts := []uraster.Option{
		uraster.WithWorkers(s.Config.Workers),
		uraster.WithLogger(s.logger),
	}
	if s.Config.TileSize > 0 {
		opts = append(opts, uraster.WithTileSize(s.Config.TileSize, s.Config.TileSize))
	}

	stats, err := uraster.Draw(fb, s.verts, s.indices, s.cache, s.VertexShader(cam, model), shaders.Color, opts...)
	if err != nil {
		return stats, fmt.Errorf("draw %s: %w", s.Mesh.Name, err)
	}
	return stats, nil
}
