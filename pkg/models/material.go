package models

import (
	"github.com/qmuntal/gltf"

	"github.com/taigrr/pathtrace/pkg/math3d"
	"github.com/taigrr/pathtrace/pkg/scene"
)

// DefaultIOR is used for translucent glTF materials.
const DefaultIOR = 1.5

// Material is the subset of a glTF PBR material the tracer understands.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	Metallic  float64    // 0 = dielectric, 1 = metal
	Roughness float64    // 0 = smooth, 1 = rough
	Blend     bool       // alphaMode BLEND
}

// DefaultMaterial is assigned to primitives without a material.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		BaseColor: [4]float64{0.5, 0.5, 0.5, 1},
		Metallic:  0,
		Roughness: 1,
	}
}

// materialFromGLTF applies glTF defaults (white, fully metallic, fully
// rough) to any factor the file leaves out.
func materialFromGLTF(gm *gltf.Material) Material {
	m := Material{
		Name:      gm.Name,
		BaseColor: [4]float64{1, 1, 1, 1},
		Metallic:  1,
		Roughness: 1,
		Blend:     gm.AlphaMode == gltf.AlphaBlend,
	}
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			m.BaseColor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			m.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			m.Roughness = *pbr.RoughnessFactor
		}
	}
	return m
}

// Translucent reports whether the material should be rendered as glass.
func (m Material) Translucent() bool {
	return m.Blend || m.BaseColor[3] < 1
}

// SceneMaterial maps the PBR parameters onto the tracer's closed material
// set: translucent materials become glass, mostly metallic ones become metal
// with roughness as fuzz, and everything else is diffuse.
func (m Material) SceneMaterial() scene.Material {
	albedo := math3d.V3(m.BaseColor[0], m.BaseColor[1], m.BaseColor[2])
	switch {
	case m.Translucent():
		return scene.NewDielectric(DefaultIOR)
	case m.Metallic >= 0.5:
		return scene.NewMetal(albedo, m.Roughness)
	default:
		return scene.NewLambertian(albedo)
	}
}
