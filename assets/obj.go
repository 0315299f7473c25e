package assets

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/depthtruth/utils"
)

// A Mesh is a triangle mesh with flat, per-vertex attributes. Faces from the OBJ file are
// expanded so every triangle has its own three vertices.
type Mesh struct {
	Vertices  []float32 // x,y,z per vertex
	TexCoords []float32 // u,v per vertex; empty when the file has none
	Normals   []float32 // x,y,z per vertex; empty when the file has none
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// Scale multiplies every vertex position by factor.
func (m *Mesh) Scale(factor float32) {
	for i := range m.Vertices {
		m.Vertices[i] *= factor
	}
}

type faceVertex struct {
	v, vt, vn int
}

// ReadOBJ parses the geometry of a Wavefront OBJ stream: v, vt, vn and f statements. Polygons
// are triangulated as fans. Other statements are ignored.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	var (
		positions [][3]float32
		texCoords [][2]float32
		normals   [][3]float32
		mesh      Mesh
	)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			vals, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, utils.NewDecodeError("obj line %d: %v", line, err)
			}
			positions = append(positions, [3]float32{vals[0], vals[1], vals[2]})
		case "vt":
			vals, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, utils.NewDecodeError("obj line %d: %v", line, err)
			}
			texCoords = append(texCoords, [2]float32{vals[0], vals[1]})
		case "vn":
			vals, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, utils.NewDecodeError("obj line %d: %v", line, err)
			}
			normals = append(normals, [3]float32{vals[0], vals[1], vals[2]})
		case "f":
			if len(fields) < 4 {
				return nil, utils.NewDecodeError("obj line %d: face has %d vertices", line, len(fields)-1)
			}
			face := make([]faceVertex, 0, len(fields)-1)
			for _, f := range fields[1:] {
				fv, err := parseFaceVertex(f, len(positions), len(texCoords), len(normals))
				if err != nil {
					return nil, utils.NewDecodeError("obj line %d: %v", line, err)
				}
				face = append(face, fv)
			}
			for i := 1; i+1 < len(face); i++ {
				for _, fv := range []faceVertex{face[0], face[i], face[i+1]} {
					mesh.Indices = append(mesh.Indices, uint32(mesh.VertexCount()))
					p := positions[fv.v]
					mesh.Vertices = append(mesh.Vertices, p[0], p[1], p[2])
					if fv.vt >= 0 {
						t := texCoords[fv.vt]
						mesh.TexCoords = append(mesh.TexCoords, t[0], t[1])
					}
					if fv.vn >= 0 {
						n := normals[fv.vn]
						mesh.Normals = append(mesh.Normals, n[0], n[1], n[2])
					}
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading obj")
	}
	// attributes only count when every vertex has them
	if len(mesh.TexCoords) != 2*mesh.VertexCount() {
		mesh.TexCoords = nil
	}
	if len(mesh.Normals) != 3*mesh.VertexCount() {
		mesh.Normals = nil
	}
	return &mesh, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, errors.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseFaceVertex parses v, v/vt, v//vn or v/vt/vn into zero-based indices, -1 when absent.
// Negative OBJ indices count back from the last element read so far.
func parseFaceVertex(s string, numV, numVT, numVN int) (faceVertex, error) {
	parts := strings.Split(s, "/")
	fv := faceVertex{v: -1, vt: -1, vn: -1}
	resolve := func(part string, count int) (int, error) {
		if part == "" {
			return -1, nil
		}
		i, err := strconv.Atoi(part)
		if err != nil {
			return 0, err
		}
		if i < 0 {
			i += count
		} else {
			i--
		}
		if i < 0 || i >= count {
			return 0, errors.Errorf("index %s out of range of %d", part, count)
		}
		return i, nil
	}
	var err error
	if fv.v, err = resolve(parts[0], numV); err != nil {
		return fv, err
	}
	if fv.v < 0 {
		return fv, errors.Errorf("face vertex %q has no position", s)
	}
	if len(parts) > 1 {
		if fv.vt, err = resolve(parts[1], numVT); err != nil {
			return fv, err
		}
	}
	if len(parts) > 2 {
		if fv.vn, err = resolve(parts[2], numVN); err != nil {
			return fv, err
		}
	}
	return fv, nil
}
