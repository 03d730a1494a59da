package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Steve132/uraster/pkg/math3d"
)

// objKey identifies a unique position/normal pair in an OBJ face.
type objKey struct {
	v, vn int
}

// LoadOBJ loads a Wavefront OBJ file. Polygons are triangulated as fans.
// Vertex colors written as "v x y z r g b" are honored. If any face vertex
// lacks a normal, smooth normals are computed for the whole mesh.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ReadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ReadOBJ parses OBJ data from r.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		colors    []math3d.Vec3
		normals   []math3d.Vec3
	)
	mesh := NewMesh("")
	seen := make(map[objKey]int)
	missingNormals := false

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			vals, err := parseFloats(fields[1:])
			if err != nil || len(vals) < 3 {
				return nil, fmt.Errorf("line %d: bad vertex %q", line, sc.Text())
			}
			positions = append(positions, math3d.V3(vals[0], vals[1], vals[2]))
			c := DefaultColor
			if len(vals) >= 6 {
				c = math3d.V3(vals[3], vals[4], vals[5])
			}
			colors = append(colors, c)

		case "vn":
			vals, err := parseFloats(fields[1:])
			if err != nil || len(vals) < 3 {
				return nil, fmt.Errorf("line %d: bad normal %q", line, sc.Text())
			}
			normals = append(normals, math3d.V3(vals[0], vals[1], vals[2]).Normalize())

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face with %d vertices", line, len(fields)-1)
			}
			poly := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				key, err := parseFaceRef(ref, len(positions), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				idx, ok := seen[key]
				if !ok {
					v := Vertex{Position: positions[key.v], Color: colors[key.v]}
					if key.vn >= 0 {
						v.Normal = normals[key.vn]
					} else {
						missingNormals = true
					}
					idx = mesh.AddVertex(v)
					seen[key] = idx
				}
				poly = append(poly, idx)
			}
			for i := 1; i+1 < len(poly); i++ {
				mesh.AddFace(poly[0], poly[i], poly[i+1])
			}
		}
		// Texture coordinates, groups, materials and smoothing groups
		// do not affect geometry and are ignored.
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(mesh.Faces) == 0 {
		return nil, ErrNoGeometry
	}

	if missingNormals {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseFaceRef parses "v", "v/vt", "v//vn" or "v/vt/vn". Indices are 1-based;
// negative indices count back from the most recent element.
func parseFaceRef(ref string, numV, numVN int) (objKey, error) {
	parts := strings.Split(ref, "/")
	v, err := resolveIndex(parts[0], numV)
	if err != nil {
		return objKey{}, fmt.Errorf("vertex %q: %w", ref, err)
	}
	key := objKey{v: v, vn: -1}
	if len(parts) == 3 && parts[2] != "" {
		vn, err := resolveIndex(parts[2], numVN)
		if err != nil {
			return objKey{}, fmt.Errorf("normal %q: %w", ref, err)
		}
		key.vn = vn
	}
	return key, nil
}

func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i += n
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, ErrInvalidFace
	}
	return i, nil
}

// Load loads a model by file extension: .obj, .gltf or .glb.
func Load(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}
