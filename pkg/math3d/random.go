package math3d

import "math/rand"

// RandomFloat returns a float uniformly distributed in [min, max).
func RandomFloat(rng *rand.Rand, min, max float64) float64 {
	return min + (max-min)*rng.Float64()
}

// Random returns a vector whose components are uniform in [0, 1).
func Random(rng *rand.Rand) Vec3 {
	return Vec3{rng.Float64(), rng.Float64(), rng.Float64()}
}

// RandomRange returns a vector whose components are uniform in [min, max).
func RandomRange(rng *rand.Rand, min, max float64) Vec3 {
	return Vec3{
		RandomFloat(rng, min, max),
		RandomFloat(rng, min, max),
		RandomFloat(rng, min, max),
	}
}

// RandomInUnitSphere returns a point uniformly distributed inside the unit
// ball by rejection sampling the enclosing cube. The loop has no iteration
// cap; it accepts a candidate with probability π/6 per draw.
func RandomInUnitSphere(rng *rand.Rand) Vec3 {
	for {
		p := RandomRange(rng, -1, 1)
		if p.LenSq() < 1 {
			return p
		}
	}
}

// RandomUnitVector returns a random direction on the unit sphere.
func RandomUnitVector(rng *rand.Rand) Vec3 {
	for {
		p := RandomInUnitSphere(rng)
		// The origin itself has no direction.
		if p.LenSq() > 0 {
			return p.Normalize()
		}
	}
}

// RandomInUnitDisk returns a point uniformly distributed inside the unit disk
// in the z = 0 plane, again by unbounded rejection sampling.
func RandomInUnitDisk(rng *rand.Rand) Vec3 {
	for {
		p := Vec3{RandomFloat(rng, -1, 1), RandomFloat(rng, -1, 1), 0}
		if p.LenSq() < 1 {
			return p
		}
	}
}
