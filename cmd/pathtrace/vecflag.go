package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// vec3Value is a pflag.Value holding a vector written as "x,y,z".
type vec3Value struct {
	v *math3d.Vec3
}

var _ pflag.Value = vec3Value{}

func newVec3Value(p *math3d.Vec3, def math3d.Vec3) vec3Value {
	*p = def
	return vec3Value{v: p}
}

func (f vec3Value) String() string {
	if f.v == nil {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g", f.v.X, f.v.Y, f.v.Z)
}

func (f vec3Value) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want x,y,z, got %q", s)
	}
	var c [3]float64
	for i, part := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		c[i] = x
	}
	*f.v = math3d.V3(c[0], c[1], c[2])
	return nil
}

func (vec3Value) Type() string {
	return "vec3"
}
