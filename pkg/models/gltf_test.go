package models

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/qmuntal/gltf"

	"github.com/taigrr/pathtrace/pkg/math3d"
	"github.com/taigrr/pathtrace/pkg/scene"
)

func ptr[T any](v T) *T { return &v }

// cubeDocument builds an in-memory document holding one unit cube mesh
// (corners at ±1) instanced by the given nodes.
func cubeDocument(nodes ...*gltf.Node) *gltf.Document {
	var data []byte
	for _, x := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			for _, z := range []float32{-1, 1} {
				for _, f := range []float32{x, y, z} {
					data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
				}
			}
		}
	}

	roots := make([]int, len(nodes))
	for i := range nodes {
		roots[i] = i
	}

	return &gltf.Document{
		Buffers:     []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteLength: len(data)}},
		Accessors: []*gltf.Accessor{{
			BufferView:    gltf.Index(0),
			ComponentType: gltf.ComponentFloat,
			Count:         8,
			Type:          gltf.AccessorVec3,
		}},
		Materials: []*gltf.Material{{
			Name: "steel",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{0.8, 0.8, 0.9, 1},
				MetallicFactor:  ptr(1.0),
				RoughnessFactor: ptr(0.25),
			},
		}},
		Meshes: []*gltf.Mesh{{
			Name: "cube",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Material:   gltf.Index(0),
			}},
		}},
		Nodes:  nodes,
		Scenes: []*gltf.Scene{{Nodes: roots}},
		Scene:  gltf.Index(0),
	}
}

func TestLoadDocumentSpheres(t *testing.T) {
	doc := cubeDocument(
		&gltf.Node{Name: "a", Mesh: gltf.Index(0), Translation: [3]float64{0, 1, -3}},
		&gltf.Node{Name: "b", Mesh: gltf.Index(0), Translation: [3]float64{4, 0, 0}, Scale: [3]float64{2, 2, 2}},
	)

	s, err := NewGLTFLoader().LoadDocument(doc, "cubes.glb")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if s.World.Len() != 2 {
		t.Fatalf("got %d objects, want 2", s.World.Len())
	}

	want := []*scene.Sphere{
		{Center: math3d.V3(0, 1, -3), Radius: 1, Material: scene.NewMetal(math3d.V3(0.8, 0.8, 0.9), 0.25)},
		{Center: math3d.V3(4, 0, 0), Radius: 2, Material: scene.NewMetal(math3d.V3(0.8, 0.8, 0.9), 0.25)},
	}
	var got []*scene.Sphere
	for _, obj := range s.World.Objects {
		sp, ok := obj.(*scene.Sphere)
		if !ok {
			t.Fatalf("object %T is not a sphere", obj)
		}
		got = append(got, sp)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("spheres mismatch (-want +got):\n%s", diff)
	}

	// Without a glTF camera the view is framed on the scene bounds.
	if err := s.Camera.Validate(); err != nil {
		t.Errorf("framed camera invalid: %v", err)
	}
	if s.Camera.LookAt != math3d.V3(2.5, 0, -1) {
		t.Errorf("LookAt = %v, want scene centre (2.5, 0, -1)", s.Camera.LookAt)
	}
}

func TestLoadDocumentHierarchy(t *testing.T) {
	doc := cubeDocument(
		&gltf.Node{Name: "parent", Translation: [3]float64{10, 0, 0}, Children: []int{1}},
		&gltf.Node{Name: "child", Mesh: gltf.Index(0), Translation: [3]float64{0, 0, 5}},
	)
	doc.Scenes[0].Nodes = []int{0}

	s, err := NewGLTFLoader().LoadDocument(doc, "nested.gltf")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if s.World.Len() != 1 {
		t.Fatalf("got %d objects, want 1", s.World.Len())
	}
	sp := s.World.Objects[0].(*scene.Sphere)
	if sp.Center != math3d.V3(10, 0, 5) {
		t.Errorf("child centre = %v, want (10,0,5)", sp.Center)
	}
}

func TestLoadDocumentCamera(t *testing.T) {
	// Rotated 90 degrees about Y, the camera looks down world -X.
	h := math.Sqrt2 / 2
	doc := cubeDocument(
		&gltf.Node{Mesh: gltf.Index(0), Translation: [3]float64{-5, 0, 0}},
		&gltf.Node{Camera: gltf.Index(0), Translation: [3]float64{1, 2, 3}, Rotation: [4]float64{0, h, 0, h}},
	)
	doc.Cameras = []*gltf.Camera{{
		Perspective: &gltf.Perspective{Yfov: math.Pi / 4, Znear: 0.1, AspectRatio: ptr(2.0)},
	}}

	loader := NewGLTFLoader()
	loader.Camera.ImageWidth = 64
	s, err := loader.LoadDocument(doc, "cam.glb")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}

	cam := s.Camera
	opts := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(math3d.V3(1, 2, 3), cam.LookFrom, opts); diff != "" {
		t.Errorf("LookFrom mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(math3d.V3(0, 2, 3), cam.LookAt, opts); diff != "" {
		t.Errorf("LookAt mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(math3d.V3(0, 1, 0), cam.Up, opts); diff != "" {
		t.Errorf("Up mismatch (-want +got):\n%s", diff)
	}
	if math.Abs(cam.VFOV-45) > 1e-9 || cam.AspectRatio != 2 || cam.ImageWidth != 64 {
		t.Errorf("camera = %+v, want vfov 45, aspect 2, width 64", cam)
	}
}

func TestLoadDocumentEmpty(t *testing.T) {
	doc := cubeDocument(&gltf.Node{Name: "empty"})
	if _, err := NewGLTFLoader().LoadDocument(doc, "empty.gltf"); !errors.Is(err, ErrEmptyScene) {
		t.Errorf("LoadDocument() error = %v, want ErrEmptyScene", err)
	}
}

func TestLoadDocumentDefaultMaterial(t *testing.T) {
	doc := cubeDocument(&gltf.Node{Mesh: gltf.Index(0)})
	doc.Meshes[0].Primitives[0].Material = nil

	s, err := NewGLTFLoader().LoadDocument(doc, "plain.gltf")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	got := s.World.Objects[0].(*scene.Sphere).Material
	if diff := cmp.Diff(DefaultMaterial().SceneMaterial(), got); diff != "" {
		t.Errorf("material mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadGLTFInvalidPath(t *testing.T) {
	if _, err := LoadGLTF("/nonexistent/path.glb"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestReadVec3AccessorOverrun(t *testing.T) {
	doc := cubeDocument(&gltf.Node{Mesh: gltf.Index(0)})
	doc.Accessors[0].Count = 9
	if _, err := readVec3Accessor(doc, 0); err == nil {
		t.Error("expected an error for an accessor longer than its buffer")
	}
}

func TestReadVec3AccessorBadIndices(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(doc *gltf.Document)
	}{
		{"buffer view", func(doc *gltf.Document) { doc.Accessors[0].BufferView = gltf.Index(7) }},
		{"buffer", func(doc *gltf.Document) { doc.BufferViews[0].Buffer = 3 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := cubeDocument(&gltf.Node{Mesh: gltf.Index(0)})
			tc.corrupt(doc)
			if _, err := readVec3Accessor(doc, 0); err == nil {
				t.Errorf("readVec3Accessor accepted an out-of-range %s index", tc.name)
			}
			if _, err := NewGLTFLoader().LoadDocument(doc, "broken.glb"); err == nil {
				t.Errorf("LoadDocument accepted an out-of-range %s index", tc.name)
			}
		})
	}
}

func TestLoadDocumentBadCameraIndex(t *testing.T) {
	doc := cubeDocument(&gltf.Node{Mesh: gltf.Index(0)}, &gltf.Node{Name: "cam", Camera: gltf.Index(3)})
	if _, err := NewGLTFLoader().LoadDocument(doc, "broken.glb"); err == nil {
		t.Error("LoadDocument accepted a camera index past the end of Cameras")
	}
}

func TestLoadDocumentSkipsDegenerateMesh(t *testing.T) {
	doc := cubeDocument(&gltf.Node{Name: "cube", Mesh: gltf.Index(0)}, &gltf.Node{Name: "point", Mesh: gltf.Index(1)})

	// A second mesh whose three vertices all sit on the origin.
	point := make([]byte, 36)
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{ByteLength: len(point), Data: point})
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{Buffer: 1, ByteLength: len(point)})
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    gltf.Index(1),
		ComponentType: gltf.ComponentFloat,
		Count:         3,
		Type:          gltf.AccessorVec3,
	})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       "point",
		Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: 1}}},
	})

	s, err := NewGLTFLoader().LoadDocument(doc, "mixed.gltf")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if s.World.Len() != 1 {
		t.Errorf("got %d objects, want only the cube", s.World.Len())
	}
	if s.Description != "glTF scene with 1 meshes (8 vertices)" {
		t.Errorf("Description = %q", s.Description)
	}

	// A document made only of degenerate meshes has nothing to render.
	doc.Scenes[0].Nodes = []int{1}
	if _, err := NewGLTFLoader().LoadDocument(doc, "point.gltf"); !errors.Is(err, ErrEmptyScene) {
		t.Errorf("LoadDocument() error = %v, want ErrEmptyScene", err)
	}
}
