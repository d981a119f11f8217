package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// ErrInvalidSphere is returned by NewSphere for unusable parameters.
var ErrInvalidSphere = errors.New("invalid sphere")

// Sphere is a sphere with a single material. A negative radius flips the
// outward normal, which models the inner wall of a hollow glass shell.
type Sphere struct {
	Center   math3d.Point3
	Radius   float64
	Material Material
}

// NewSphere creates a sphere, rejecting zero or non-finite radii, non-finite
// centres and a nil material.
func NewSphere(center math3d.Point3, radius float64, mat Material) (*Sphere, error) {
	switch {
	case radius == 0 || math.IsNaN(radius) || math.IsInf(radius, 0):
		return nil, fmt.Errorf("%w: radius %v", ErrInvalidSphere, radius)
	case !center.IsFinite():
		return nil, fmt.Errorf("%w: center %v", ErrInvalidSphere, center)
	case mat == nil:
		return nil, fmt.Errorf("%w: nil material", ErrInvalidSphere)
	}
	return &Sphere{Center: center, Radius: radius, Material: mat}, nil
}

// Hit implements Hittable.
func (s *Sphere) Hit(r math3d.Ray, rayT math3d.Interval) (HitRecord, bool) {
	oc := r.Origin.Sub(s.Center)
	a := r.Direction.LenSq()
	halfB := oc.Dot(r.Direction)
	c := oc.LenSq() - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 {
		return HitRecord{}, false
	}
	sqrtd := math.Sqrt(disc)

	// Nearest root inside the acceptable range.
	root := (-halfB - sqrtd) / a
	if !rayT.Surrounds(root) {
		root = (-halfB + sqrtd) / a
		if !rayT.Surrounds(root) {
			return HitRecord{}, false
		}
	}

	rec := HitRecord{
		T:        root,
		Point:    r.At(root),
		Material: s.Material,
	}
	outward := rec.Point.Sub(s.Center).Div(s.Radius)
	rec.SetFaceNormal(r, outward)
	return rec, true
}
