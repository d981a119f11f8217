package render

import (
	"image/color"
	"math"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

var intensity = math3d.NewInterval(0, 0.999)

// LinearToGamma applies gamma 2 correction. Non-positive input, including
// NaN, maps to 0.
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// ToRGBA gamma corrects a linear colour and quantises it to 8 bits per
// channel.
func ToRGBA(c math3d.Color) color.RGBA {
	return color.RGBA{
		R: quantize(c.X),
		G: quantize(c.Y),
		B: quantize(c.Z),
		A: 255,
	}
}

func quantize(linear float64) uint8 {
	return uint8(256 * intensity.Clamp(LinearToGamma(linear)))
}
