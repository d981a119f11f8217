// Package models builds renderable scenes, either from the built-in presets
// or from glTF files.
package models

import (
	"math"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// Mesh is the vertex cloud of one glTF mesh primitive. Only positions are
// kept: the tracer stands each mesh in with a bounding sphere.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Material  int // Index into the document's materials (-1 for the default)

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Positions: make([]math3d.Vec3, 0),
		Material:  -1,
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Positions {
		m.Positions[i] = mat.MulVec3(m.Positions[i])
	}
	m.CalculateBounds()
}

// BoundingSphere returns the sphere centred on the bounding box whose radius
// is half the box's largest side. For a tessellated sphere this recovers the
// original sphere.
func (m *Mesh) BoundingSphere() (center math3d.Point3, radius float64) {
	size := m.Size()
	return m.Center(), 0.5 * math.Max(size.X, math.Max(size.Y, size.Z))
}
