package scene

import (
	"math"
	"math/rand"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// Material decides how light leaves a surface after a hit.
type Material interface {
	// Scatter returns the attenuation and the scattered ray. ok is false
	// when the ray is absorbed.
	Scatter(rng *rand.Rand, in math3d.Ray, rec HitRecord) (attenuation math3d.Color, scattered math3d.Ray, ok bool)
}

// Lambertian is an ideal diffuse reflector.
type Lambertian struct {
	Albedo math3d.Color
}

// NewLambertian creates a diffuse material.
func NewLambertian(albedo math3d.Color) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter implements Material. Lambertian surfaces always scatter.
func (l *Lambertian) Scatter(rng *rand.Rand, _ math3d.Ray, rec HitRecord) (math3d.Color, math3d.Ray, bool) {
	dir := rec.Normal.Add(math3d.RandomUnitVector(rng))
	if dir.NearZero() {
		dir = rec.Normal
	}
	return l.Albedo, math3d.NewRay(rec.Point, dir), true
}

// Metal reflects specularly, blurred by Fuzz.
type Metal struct {
	Albedo math3d.Color
	Fuzz   float64
}

// NewMetal creates a metal material. fuzz is clamped to [0, 1].
func NewMetal(albedo math3d.Color, fuzz float64) *Metal {
	return &Metal{Albedo: albedo, Fuzz: math.Max(0, math.Min(fuzz, 1))}
}

// Scatter implements Material. Rays fuzzed below the surface are absorbed.
func (m *Metal) Scatter(rng *rand.Rand, in math3d.Ray, rec HitRecord) (math3d.Color, math3d.Ray, bool) {
	dir := in.Direction.Normalize().Reflect(rec.Normal)
	if m.Fuzz > 0 {
		dir = dir.Add(math3d.RandomUnitVector(rng).Scale(m.Fuzz))
	}
	scattered := math3d.NewRay(rec.Point, dir)
	return m.Albedo, scattered, dir.Dot(rec.Normal) > 0
}

// Dielectric is a clear refracting material such as glass or water.
type Dielectric struct {
	// RefractionIndex is relative to the surrounding medium.
	RefractionIndex float64
}

// NewDielectric creates a dielectric with the given index of refraction.
func NewDielectric(ior float64) *Dielectric {
	return &Dielectric{RefractionIndex: ior}
}

// Scatter implements Material. Dielectrics always scatter, either reflecting
// or refracting.
func (d *Dielectric) Scatter(rng *rand.Rand, in math3d.Ray, rec HitRecord) (math3d.Color, math3d.Ray, bool) {
	ratio := d.RefractionIndex
	if rec.FrontFace {
		ratio = 1 / d.RefractionIndex
	}

	unit := in.Direction.Normalize()
	cosTheta := math.Min(unit.Negate().Dot(rec.Normal), 1)
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)

	var dir math3d.Vec3
	if ratio*sinTheta > 1 || Reflectance(cosTheta, ratio) > rng.Float64() {
		dir = unit.Reflect(rec.Normal)
	} else {
		dir = unit.Refract(rec.Normal, ratio)
	}
	return math3d.V3(1, 1, 1), math3d.NewRay(rec.Point, dir), true
}

// Reflectance is Schlick's approximation of the Fresnel reflectance.
func Reflectance(cosine, ratio float64) float64 {
	r0 := (1 - ratio) / (1 + ratio)
	r0 *= r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
