package render

import (
	"math"
	"math/rand"

	"github.com/taigrr/pathtrace/pkg/math3d"
	"github.com/taigrr/pathtrace/pkg/scene"
)

// ShadowAcneEpsilon is the minimum hit distance accepted after a bounce, so
// rays leaving a surface do not re-hit it through rounding error.
const ShadowAcneEpsilon = 0.001

var (
	skyZenith  = math3d.V3(0.5, 0.7, 1.0)
	skyHorizon = math3d.V3(1, 1, 1)
)

// Sky returns the background radiance seen along r: a vertical gradient from
// white to light blue.
func Sky(r math3d.Ray) math3d.Color {
	unit := r.Direction.Normalize()
	a := 0.5 * (unit.Y + 1)
	return skyHorizon.Lerp(skyZenith, a)
}

// RayColor traces r through world for at most depth bounces and returns the
// radiance it carries back. Exhausting depth or being absorbed yields black.
func RayColor(rng *rand.Rand, r math3d.Ray, depth int, world scene.Hittable) math3d.Color {
	throughput := math3d.V3(1, 1, 1)
	rayT := math3d.NewInterval(ShadowAcneEpsilon, math.Inf(1))

	for ; depth > 0; depth-- {
		rec, ok := world.Hit(r, rayT)
		if !ok {
			return throughput.Mul(Sky(r))
		}

		attenuation, scattered, ok := rec.Material.Scatter(rng, r, rec)
		if !ok {
			return math3d.Zero3()
		}
		throughput = throughput.Mul(attenuation)
		r = scattered
	}
	return math3d.Zero3()
}
