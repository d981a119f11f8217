package scene

import "github.com/taigrr/pathtrace/pkg/math3d"

// List is a flat, ordered collection of hittables. Intersection is a linear
// scan.
type List struct {
	Objects []Hittable
}

// NewList creates a list holding objects.
func NewList(objects ...Hittable) *List {
	return &List{Objects: objects}
}

// Add appends an object.
func (l *List) Add(h Hittable) {
	l.Objects = append(l.Objects, h)
}

// Len returns the number of objects.
func (l *List) Len() int {
	return len(l.Objects)
}

// Hit returns the closest intersection over all objects. On equal t the
// object added first wins.
func (l *List) Hit(r math3d.Ray, rayT math3d.Interval) (HitRecord, bool) {
	var (
		closest HitRecord
		hit     bool
	)
	closestSoFar := rayT.Max

	for _, obj := range l.Objects {
		rec, ok := obj.Hit(r, math3d.NewInterval(rayT.Min, closestSoFar))
		if !ok {
			continue
		}
		hit = true
		closestSoFar = rec.T
		closest = rec
	}
	return closest, hit
}
