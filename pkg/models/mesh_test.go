package models

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/taigrr/pathtrace/pkg/math3d"
	"github.com/taigrr/pathtrace/pkg/scene"
)

func TestMeshBounds(t *testing.T) {
	mesh := NewMesh("box")
	mesh.Positions = []math3d.Vec3{
		math3d.V3(-1, 0, 2),
		math3d.V3(3, -2, 0),
		math3d.V3(0, 4, 1),
	}
	mesh.CalculateBounds()

	if mesh.BoundsMin != math3d.V3(-1, -2, 0) {
		t.Errorf("BoundsMin = %v", mesh.BoundsMin)
	}
	if mesh.BoundsMax != math3d.V3(3, 4, 2) {
		t.Errorf("BoundsMax = %v", mesh.BoundsMax)
	}
	if mesh.Center() != math3d.V3(1, 1, 1) {
		t.Errorf("Center = %v", mesh.Center())
	}
	if mesh.Size() != math3d.V3(4, 6, 2) {
		t.Errorf("Size = %v", mesh.Size())
	}

	center, radius := mesh.BoundingSphere()
	if center != math3d.V3(1, 1, 1) || radius != 3 {
		t.Errorf("BoundingSphere = (%v, %v), want ((1,1,1), 3)", center, radius)
	}
}

func TestMeshTransform(t *testing.T) {
	mesh := NewMesh("unit")
	mesh.Positions = []math3d.Vec3{math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)}
	mesh.Transform(math3d.Translate(math3d.V3(0, 5, 0)).Mul(math3d.Scale(math3d.V3(2, 2, 2))))

	center, radius := mesh.BoundingSphere()
	if center != math3d.V3(0, 5, 0) {
		t.Errorf("center = %v, want (0,5,0)", center)
	}
	if math.Abs(radius-2) > 1e-12 {
		t.Errorf("radius = %v, want 2", radius)
	}
	if mesh.VertexCount() != 2 {
		t.Errorf("VertexCount = %d, want 2", mesh.VertexCount())
	}
}

func TestMaterialMapping(t *testing.T) {
	tests := []struct {
		name string
		mat  Material
		want scene.Material
	}{
		{"default", DefaultMaterial(), scene.NewLambertian(math3d.V3(0.5, 0.5, 0.5))},
		{
			"rough plastic",
			Material{BaseColor: [4]float64{1, 0, 0, 1}, Metallic: 0.1, Roughness: 0.8},
			scene.NewLambertian(math3d.V3(1, 0, 0)),
		},
		{
			"metal",
			Material{BaseColor: [4]float64{0.9, 0.8, 0.7, 1}, Metallic: 1, Roughness: 0.2},
			scene.NewMetal(math3d.V3(0.9, 0.8, 0.7), 0.2),
		},
		{"alpha", Material{BaseColor: [4]float64{1, 1, 1, 0.3}, Metallic: 1}, scene.NewDielectric(DefaultIOR)},
		{"blend", Material{BaseColor: [4]float64{1, 1, 1, 1}, Blend: true}, scene.NewDielectric(DefaultIOR)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.mat.SceneMaterial()); diff != "" {
				t.Errorf("SceneMaterial() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
