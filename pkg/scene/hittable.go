// Package scene holds the geometry and materials a path tracer intersects
// rays against.
package scene

import "github.com/taigrr/pathtrace/pkg/math3d"

// HitRecord describes a ray-surface intersection.
type HitRecord struct {
	Point    math3d.Point3
	Normal   math3d.Vec3
	Material Material
	T        float64
	// FrontFace is true when the ray struck the outside of the surface.
	// Normal always points against the incoming ray.
	FrontFace bool
}

// SetFaceNormal records the face orientation and stores the normal so that
// it opposes r. outwardNormal must be unit length.
func (rec *HitRecord) SetFaceNormal(r math3d.Ray, outwardNormal math3d.Vec3) {
	rec.FrontFace = r.Direction.Dot(outwardNormal) < 0
	if rec.FrontFace {
		rec.Normal = outwardNormal
	} else {
		rec.Normal = outwardNormal.Negate()
	}
}

// Hittable is anything a ray can intersect.
type Hittable interface {
	// Hit returns the nearest intersection with parameter strictly inside
	// rayT, if any.
	Hit(r math3d.Ray, rayT math3d.Interval) (HitRecord, bool)
}
