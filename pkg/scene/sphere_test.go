package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func forward() math3d.Interval {
	return math3d.NewInterval(0.001, math.Inf(1))
}

func mustSphere(t *testing.T, center math3d.Point3, radius float64, mat Material) *Sphere {
	t.Helper()
	s, err := NewSphere(center, radius, mat)
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	return s
}

func TestNewSphereValidation(t *testing.T) {
	mat := NewLambertian(math3d.V3(0.5, 0.5, 0.5))

	tests := []struct {
		name    string
		center  math3d.Point3
		radius  float64
		mat     Material
		wantErr bool
	}{
		{"valid", math3d.V3(0, 0, -1), 0.5, mat, false},
		{"negative radius", math3d.V3(0, 0, -1), -0.4, mat, false},
		{"zero radius", math3d.V3(0, 0, -1), 0, mat, true},
		{"nan radius", math3d.V3(0, 0, -1), math.NaN(), mat, true},
		{"inf radius", math3d.V3(0, 0, -1), math.Inf(1), mat, true},
		{"nan center", math3d.V3(math.NaN(), 0, 0), 1, mat, true},
		{"nil material", math3d.V3(0, 0, -1), 1, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSphere(tc.center, tc.radius, tc.mat)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewSphere() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSphere) {
				t.Errorf("error %v does not wrap ErrInvalidSphere", err)
			}
		})
	}
}

func TestSphereHitFromOutside(t *testing.T) {
	s := mustSphere(t, math3d.V3(0, 0, -1), 0.5, NewLambertian(math3d.V3(1, 1, 1)))
	r := math3d.NewRay(math3d.Zero3(), math3d.V3(0, 0, -1))

	rec, ok := s.Hit(r, forward())
	if !ok {
		t.Fatal("expected hit")
	}
	if math.Abs(rec.T-0.5) > 1e-12 {
		t.Errorf("T = %v, want 0.5", rec.T)
	}
	if !rec.FrontFace {
		t.Error("expected front face")
	}
	if diff := cmp.Diff(math3d.V3(0, 0, 1), rec.Normal, approx); diff != "" {
		t.Errorf("Normal mismatch (-want +got):\n%s", diff)
	}
	if rec.Material != s.Material {
		t.Error("hit record does not carry the sphere's material")
	}
}

func TestSphereHitFromCenter(t *testing.T) {
	const radius = 2.0
	center := math3d.V3(1, 2, 3)
	s := mustSphere(t, center, radius, NewLambertian(math3d.V3(1, 1, 1)))

	for _, dir := range []math3d.Vec3{
		math3d.V3(1, 0, 0),
		math3d.V3(0, -1, 0),
		math3d.V3(0.3, 0.4, -0.5).Normalize(),
	} {
		rec, ok := s.Hit(math3d.NewRay(center, dir), forward())
		if !ok {
			t.Fatalf("ray from centre along %v missed", dir)
		}
		if math.Abs(rec.T-radius) > 1e-12 {
			t.Errorf("T = %v, want %v", rec.T, radius)
		}
		if rec.FrontFace {
			t.Error("ray leaving the sphere reported a front face")
		}
		// The stored normal opposes the ray.
		if rec.Normal.Dot(dir) >= 0 {
			t.Errorf("normal %v does not oppose direction %v", rec.Normal, dir)
		}
	}
}

func TestSphereMiss(t *testing.T) {
	s := mustSphere(t, math3d.V3(0, 0, -1), 0.5, NewLambertian(math3d.V3(1, 1, 1)))

	if _, ok := s.Hit(math3d.NewRay(math3d.Zero3(), math3d.V3(0, 1, 0)), forward()); ok {
		t.Error("ray pointing away hit the sphere")
	}
	// Behind the ray origin.
	if _, ok := s.Hit(math3d.NewRay(math3d.V3(0, 0, -3), math3d.V3(0, 0, -1)), forward()); ok {
		t.Error("sphere behind the ray was hit")
	}
}

func TestSphereAcneGuard(t *testing.T) {
	s := mustSphere(t, math3d.V3(0, 0, -1), 0.5, NewLambertian(math3d.V3(1, 1, 1)))

	// A ray starting on the surface must not re-hit it at t ≈ 0.
	origin := math3d.V3(0, 0, -0.5)
	rec, ok := s.Hit(math3d.NewRay(origin, math3d.V3(0, 0, -1)), forward())
	if !ok {
		t.Fatal("expected the far wall to be hit")
	}
	if rec.T < 0.001 {
		t.Errorf("T = %v, below the acne guard", rec.T)
	}
	if math.Abs(rec.T-1) > 1e-12 {
		t.Errorf("T = %v, want 1 (far wall)", rec.T)
	}

	// Leaving outward from the surface there is nothing to hit.
	if _, ok := s.Hit(math3d.NewRay(origin, math3d.V3(0, 0, 1)), forward()); ok {
		t.Error("outgoing ray re-hit its own surface")
	}
}

func TestSphereNegativeRadiusFlipsNormal(t *testing.T) {
	s := mustSphere(t, math3d.V3(0, 0, -1), -0.5, NewDielectric(1.5))
	r := math3d.NewRay(math3d.Zero3(), math3d.V3(0, 0, -1))

	rec, ok := s.Hit(r, forward())
	if !ok {
		t.Fatal("expected hit")
	}
	if rec.FrontFace {
		t.Error("negative radius should make the outer wall a back face")
	}
	if rec.Normal.Dot(r.Direction) >= 0 {
		t.Error("stored normal must oppose the ray")
	}
}

func TestFrontFaceInvariant(t *testing.T) {
	outward := math3d.V3(0, 1, 0)
	tests := []struct {
		name      string
		dir       math3d.Vec3
		wantFront bool
	}{
		{"against", math3d.V3(0, -1, 0), true},
		{"oblique against", math3d.V3(1, -0.1, 0), true},
		{"along", math3d.V3(0, 1, 0), false},
		{"grazing", math3d.V3(1, 0, 0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var rec HitRecord
			r := math3d.NewRay(math3d.Zero3(), tc.dir)
			rec.SetFaceNormal(r, outward)
			if rec.FrontFace != tc.wantFront {
				t.Errorf("FrontFace = %v, want %v", rec.FrontFace, tc.wantFront)
			}
			want := outward
			if !tc.wantFront {
				want = outward.Negate()
			}
			if rec.Normal != want {
				t.Errorf("Normal = %v, want %v", rec.Normal, want)
			}
		})
	}
}
