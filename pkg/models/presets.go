package models

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/taigrr/pathtrace/pkg/math3d"
	"github.com/taigrr/pathtrace/pkg/render"
	"github.com/taigrr/pathtrace/pkg/scene"
)

// ErrUnknownPreset is returned for a preset name that is not registered.
var ErrUnknownPreset = errors.New("unknown scene preset")

// Preset is a named, built-in scene.
type Preset struct {
	Name        string
	Description string
	build       func(rng *rand.Rand) (*scene.List, render.CameraConfig, error)
}

var presets = map[string]Preset{
	"cover": {
		Name:        "cover",
		Description: "Field of small random spheres around three large glass, diffuse and metal spheres",
		build:       buildCover,
	},
	"materials": {
		Name:        "materials",
		Description: "Hollow glass, diffuse and fuzzy metal spheres on a ground plane",
		build:       buildMaterials,
	},
	"single": {
		Name:        "single",
		Description: "One grey diffuse sphere in front of the camera",
		build:       buildSingle,
	},
}

// Presets returns every preset sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BuildPreset constructs the named preset.
func BuildPreset(name string, rng *rand.Rand) (*Scene, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	world, cam, err := p.build(rng)
	if err != nil {
		return nil, fmt.Errorf("build preset %q: %w", name, err)
	}
	return &Scene{
		Name:        p.Name,
		Description: p.Description,
		World:       world,
		Camera:      cam,
	}, nil
}

// sceneBuilder collects spheres and remembers the first construction error.
type sceneBuilder struct {
	world *scene.List
	err   error
}

func newSceneBuilder() *sceneBuilder {
	return &sceneBuilder{world: scene.NewList()}
}

func (b *sceneBuilder) sphere(center math3d.Point3, radius float64, mat scene.Material) {
	if b.err != nil {
		return
	}
	s, err := scene.NewSphere(center, radius, mat)
	if err != nil {
		b.err = err
		return
	}
	b.world.Add(s)
}

func buildCover(rng *rand.Rand) (*scene.List, render.CameraConfig, error) {
	b := newSceneBuilder()
	b.sphere(math3d.V3(0, -1000, 0), 1000, scene.NewLambertian(math3d.V3(0.5, 0.5, 0.5)))

	clearing := math3d.V3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for c := -11; c < 11; c++ {
			choose := rng.Float64()
			center := math3d.V3(float64(a)+0.9*rng.Float64(), 0.2, float64(c)+0.9*rng.Float64())
			if center.Sub(clearing).Len() <= 0.9 {
				continue
			}

			var mat scene.Material
			switch {
			case choose < 0.8:
				mat = scene.NewLambertian(math3d.Random(rng).Mul(math3d.Random(rng)))
			case choose < 0.95:
				mat = scene.NewMetal(math3d.RandomRange(rng, 0.5, 1), math3d.RandomFloat(rng, 0, 0.5))
			default:
				mat = scene.NewDielectric(1.5)
			}
			b.sphere(center, 0.2, mat)
		}
	}

	b.sphere(math3d.V3(0, 1, 0), 1, scene.NewDielectric(1.5))
	b.sphere(math3d.V3(-4, 1, 0), 1, scene.NewLambertian(math3d.V3(0.4, 0.2, 0.1)))
	b.sphere(math3d.V3(4, 1, 0), 1, scene.NewMetal(math3d.V3(0.7, 0.6, 0.5), 0))

	cam := render.CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      1200,
		SamplesPerPixel: 500,
		MaxDepth:        50,
		VFOV:            20,
		LookFrom:        math3d.V3(13, 2, 3),
		LookAt:          math3d.V3(0, 0, 0),
		Up:              math3d.Up(),
		DefocusAngle:    0.5,
		FocusDist:       10,
	}
	return b.world, cam, b.err
}

func buildMaterials(_ *rand.Rand) (*scene.List, render.CameraConfig, error) {
	b := newSceneBuilder()
	b.sphere(math3d.V3(0, -100.5, -1), 100, scene.NewLambertian(math3d.V3(0.8, 0.8, 0)))
	b.sphere(math3d.V3(0, 0, -1), 0.5, scene.NewLambertian(math3d.V3(0.1, 0.2, 0.5)))
	// Negative radius inner shell makes the left sphere a hollow bubble.
	b.sphere(math3d.V3(-1, 0, -1), 0.5, scene.NewDielectric(1.5))
	b.sphere(math3d.V3(-1, 0, -1), -0.4, scene.NewDielectric(1.5))
	b.sphere(math3d.V3(1, 0, -1), 0.5, scene.NewMetal(math3d.V3(0.8, 0.6, 0.2), 0))

	cam := render.DefaultCameraConfig()
	cam.VFOV = 20
	cam.LookFrom = math3d.V3(-2, 2, 1)
	cam.LookAt = math3d.V3(0, 0, -1)
	cam.DefocusAngle = 10
	cam.FocusDist = 3.4
	return b.world, cam, b.err
}

func buildSingle(_ *rand.Rand) (*scene.List, render.CameraConfig, error) {
	b := newSceneBuilder()
	b.sphere(math3d.V3(0, 0, -1), 0.5, scene.NewLambertian(math3d.V3(0.5, 0.5, 0.5)))

	cam := render.DefaultCameraConfig()
	return b.world, cam, b.err
}
