package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chazu/spanloft/pkg/kernel"
	"github.com/hschendel/stl"
)

// ErrNoGeometry is returned when there is nothing to write.
var ErrNoGeometry = errors.New("export: no geometry")

// toSTL merges meshes into one STL solid. Facet normals are recomputed from
// the winding so they agree with the vertices after any transforms.
func toSTL(meshes []*kernel.Mesh) (*stl.Solid, error) {
	n := 0
	for _, m := range meshes {
		if m != nil {
			n += m.TriangleCount()
		}
	}
	if n == 0 {
		return nil, ErrNoGeometry
	}

	solid := &stl.Solid{Triangles: make([]stl.Triangle, 0, n)}
	for _, m := range meshes {
		if m == nil {
			continue
		}
		for i := 0; i < m.TriangleCount(); i++ {
			t := m.Triangle(i)
			var tri stl.Triangle
			for j := range t {
				tri.Vertices[j] = stl.Vec3(t[j])
			}
			tri.Normal = facetNormal(t)
			solid.Triangles = append(solid.Triangles, tri)
		}
	}
	return solid, nil
}

func facetNormal(t [3][3]float32) stl.Vec3 {
	var u, v [3]float64
	for i := 0; i < 3; i++ {
		u[i] = float64(t[1][i] - t[0][i])
		v[i] = float64(t[2][i] - t[0][i])
	}
	n := [3]float64{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
	l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l == 0 {
		return stl.Vec3{}
	}
	return stl.Vec3{float32(n[0] / l), float32(n[1] / l), float32(n[2] / l)}
}

// WriteSTL writes all meshes as one binary STL solid.
func WriteSTL(w io.Writer, meshes []*kernel.Mesh) error {
	solid, err := toSTL(meshes)
	if err != nil {
		return err
	}
	if err := solid.WriteAll(w); err != nil {
		return fmt.Errorf("export: write stl: %w", err)
	}
	return nil
}

// SaveSTL writes all meshes to path as one binary STL solid.
func SaveSTL(path string, meshes []*kernel.Mesh) error {
	solid, err := toSTL(meshes)
	if err != nil {
		return err
	}
	if err := solid.WriteFile(path); err != nil {
		return fmt.Errorf("export: save stl %s: %w", path, err)
	}
	return nil
}
