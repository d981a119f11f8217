package models

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/pathtrace/pkg/math3d"
	"github.com/taigrr/pathtrace/pkg/render"
	"github.com/taigrr/pathtrace/pkg/scene"
)

// ErrEmptyScene is returned when a glTF document contains no usable meshes.
var ErrEmptyScene = errors.New("no renderable meshes")

// GLTFLoader turns glTF/GLB documents into sphere scenes. Each mesh node is
// replaced by its world-space bounding sphere.
type GLTFLoader struct {
	// Camera supplies the options glTF cannot express (image size,
	// sampling, depth of field). Position, orientation and field of view
	// come from the document's camera when it has one.
	Camera render.CameraConfig
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		Camera: render.DefaultCameraConfig(),
	}
}

// LoadGLTF loads a .gltf or .glb file with the default loader.
func LoadGLTF(path string) (*Scene, error) {
	return NewGLTFLoader().Load(path)
}

// Load opens a glTF or GLB file and converts it.
func (l *GLTFLoader) Load(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.LoadDocument(doc, filepath.Base(path))
}

// placedMesh is a mesh transformed into world space.
type placedMesh struct {
	mesh *Mesh
	mat  scene.Material
}

// LoadDocument converts an already parsed document.
func (l *GLTFLoader) LoadDocument(doc *gltf.Document, name string) (*Scene, error) {
	materials := make([]scene.Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		materials[i] = materialFromGLTF(gm).SceneMaterial()
	}
	defaultMat := DefaultMaterial().SceneMaterial()

	var (
		placed    []placedMesh
		camNode   *gltf.Node
		camMatrix math3d.Mat4
	)

	var visit func(idx int, parent math3d.Mat4, depth int) error
	visit = func(idx int, parent math3d.Mat4, depth int) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", idx)
		}
		if depth > len(doc.Nodes) {
			return fmt.Errorf("node %d: cycle in node hierarchy", idx)
		}
		node := doc.Nodes[idx]
		world := parent.Mul(localMatrix(node))

		if node.Mesh != nil {
			meshes, err := l.readMesh(doc, *node.Mesh)
			if err != nil {
				return fmt.Errorf("node %q: %w", node.Name, err)
			}
			for _, m := range meshes {
				m.Transform(world)
				mat := defaultMat
				if m.Material >= 0 && m.Material < len(materials) {
					mat = materials[m.Material]
				}
				placed = append(placed, placedMesh{mesh: m, mat: mat})
			}
		}
		if node.Camera != nil && camNode == nil {
			if c := *node.Camera; c < 0 || c >= len(doc.Cameras) {
				return fmt.Errorf("node %q: camera index %d out of range", node.Name, c)
			}
			camNode, camMatrix = node, world
		}

		for _, child := range node.Children {
			if err := visit(child, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, idx := range rootNodes(doc) {
		if err := visit(idx, math3d.Identity(), 0); err != nil {
			return nil, err
		}
	}

	world := scene.NewList()
	var sceneMin, sceneMax math3d.Vec3
	vertices := 0
	for _, p := range placed {
		center, radius := p.mesh.BoundingSphere()
		if radius <= 0 {
			// Every vertex coincides; there is no volume to stand in for.
			continue
		}
		s, err := scene.NewSphere(center, radius, p.mat)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", p.mesh.Name, err)
		}
		if world.Len() == 0 {
			sceneMin, sceneMax = p.mesh.BoundsMin, p.mesh.BoundsMax
		}
		world.Add(s)
		sceneMin = sceneMin.Min(p.mesh.BoundsMin)
		sceneMax = sceneMax.Max(p.mesh.BoundsMax)
		vertices += p.mesh.VertexCount()
	}
	if world.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyScene)
	}

	cam := l.Camera
	if camNode != nil {
		applyGLTFCamera(&cam, doc.Cameras[*camNode.Camera], camMatrix)
	} else {
		frameBounds(&cam, sceneMin, sceneMax)
	}

	return &Scene{
		Name:        name,
		Description: fmt.Sprintf("glTF scene with %d meshes (%d vertices)", world.Len(), vertices),
		World:       world,
		Camera:      cam,
	}, nil
}

// rootNodes returns the nodes of the default scene, falling back to the
// first scene and then to every node that is nobody's child.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// localMatrix returns the node's transform. glTF nodes carry either a
// matrix or separate TRS properties; zero values mean "unset".
func localMatrix(n *gltf.Node) math3d.Mat4 {
	if n.Matrix != ([16]float64{}) && math3d.Mat4(n.Matrix) != math3d.Identity() {
		return math3d.Mat4(n.Matrix)
	}

	rot := n.Rotation
	if rot == ([4]float64{}) {
		rot = [4]float64{0, 0, 0, 1}
	}
	scale := math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2])
	if scale == math3d.Zero3() {
		scale = math3d.V3(1, 1, 1)
	}
	return math3d.TRS(math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2]), rot, scale)
}

// applyGLTFCamera places the camera where the node puts it. glTF cameras
// look down their local -Z with +Y up.
func applyGLTFCamera(cfg *render.CameraConfig, c *gltf.Camera, world math3d.Mat4) {
	from := world.Translation()
	forward := world.MulVec3Dir(math3d.Forward()).Normalize()
	up := world.MulVec3Dir(math3d.Up()).Normalize()

	cfg.LookFrom = from
	cfg.LookAt = from.Add(forward)
	cfg.Up = up
	// Focus on the look-at point is meaningless for a unit forward vector.
	cfg.FocusDist = 0
	cfg.DefocusAngle = 0

	if p := c.Perspective; p != nil {
		if p.Yfov > 0 {
			cfg.VFOV = p.Yfov * 180 / math.Pi
		}
		if p.AspectRatio != nil && *p.AspectRatio > 0 {
			cfg.AspectRatio = *p.AspectRatio
		}
	}
}

// frameBounds points the camera at the scene from the front, far enough back
// for the whole bounding box to fit the vertical field of view.
func frameBounds(cfg *render.CameraConfig, lo, hi math3d.Vec3) {
	center := lo.Add(hi).Scale(0.5)
	radius := math.Max(hi.Sub(lo).Len()/2, 1e-3)
	dist := radius / math.Sin(math3d.DegreesToRadians(cfg.VFOV)/2)

	cfg.LookAt = center
	cfg.LookFrom = center.Add(math3d.V3(0, 0.25, 1).Normalize().Scale(dist))
	cfg.Up = math3d.Up()
	cfg.FocusDist = 0
}

// readMesh extracts one Mesh per triangle primitive.
func (l *GLTFLoader) readMesh(doc *gltf.Document, idx int) ([]*Mesh, error) {
	if idx < 0 || idx >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", idx)
	}
	m := doc.Meshes[idx]

	var out []*Mesh
	for i, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: read positions: %w", m.Name, i, err)
		}
		if len(positions) == 0 {
			continue
		}

		mesh := NewMesh(fmt.Sprintf("%s/%d", m.Name, i))
		mesh.Positions = positions
		if prim.Material != nil {
			mesh.Material = *prim.Material
		}
		mesh.CalculateBounds()
		out = append(out, mesh)
	}
	return out, nil
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected FLOAT components, got %v", accessor.ComponentType)
	}
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}

	if bv := *accessor.BufferView; bv < 0 || bv >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view index %d out of range", bv)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bufferView.Buffer)
	}
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, fmt.Errorf("buffer has no data")
	}
	bufData := buffer.Data

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = 12 // 3 floats * 4 bytes
	}
	count := accessor.Count
	if count > 0 && start+(count-1)*stride+12 > len(bufData) {
		return nil, fmt.Errorf("accessor overruns buffer: %d elements from offset %d in %d bytes", count, start, len(bufData))
	}

	result := make([]math3d.Vec3, count)
	for i := range count {
		offset := start + i*stride
		result[i] = math3d.V3(
			float64(readFloat32(bufData[offset:])),
			float64(readFloat32(bufData[offset+4:])),
			float64(readFloat32(bufData[offset+8:])),
		)
	}
	return result, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
