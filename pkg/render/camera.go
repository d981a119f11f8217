package render

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/taigrr/pathtrace/pkg/math3d"
)

// ErrInvalidConfig is wrapped by every CameraConfig validation failure.
var ErrInvalidConfig = errors.New("invalid camera config")

// CameraConfig holds the user-facing camera and sampling options.
type CameraConfig struct {
	AspectRatio     float64 // Width / Height
	ImageWidth      int     // Rendered width in pixels
	SamplesPerPixel int     // Random samples averaged per pixel
	MaxDepth        int     // Maximum bounces per sample; 0 renders black

	VFOV     float64     // Vertical field of view in degrees
	LookFrom math3d.Vec3 // Camera position
	LookAt   math3d.Vec3 // Point the camera looks at
	Up       math3d.Vec3 // Camera-relative up direction

	DefocusAngle float64 // Aperture cone angle in degrees; 0 disables depth of field
	FocusDist    float64 // Distance to the plane of perfect focus; 0 focuses on LookAt
}

// DefaultCameraConfig returns a 16:9, 400 pixel wide camera at the origin
// looking down -Z.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		VFOV:            90,
		LookFrom:        math3d.V3(0, 0, 0),
		LookAt:          math3d.V3(0, 0, -1),
		Up:              math3d.Up(),
	}
}

// ImageHeight returns the image height implied by the width and aspect
// ratio. It is never less than 1.
func (c CameraConfig) ImageHeight() int {
	return max(int(float64(c.ImageWidth)/c.AspectRatio), 1)
}

// Validate reports every problem with the configuration. The returned error
// wraps ErrInvalidConfig.
func (c CameraConfig) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.ImageWidth <= 0 {
		bad("image width %d must be positive", c.ImageWidth)
	}
	if !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0) {
		bad("aspect ratio %v must be positive and finite", c.AspectRatio)
	}
	if c.SamplesPerPixel <= 0 {
		bad("samples per pixel %d must be positive", c.SamplesPerPixel)
	}
	if c.MaxDepth < 0 {
		bad("max depth %d must not be negative", c.MaxDepth)
	}
	if !(c.VFOV > 0 && c.VFOV < 180) {
		bad("vertical fov %v must be in (0, 180) degrees", c.VFOV)
	}
	if !(c.DefocusAngle >= 0 && c.DefocusAngle < 180) {
		bad("defocus angle %v must be in [0, 180) degrees", c.DefocusAngle)
	}
	if !(c.FocusDist >= 0) || math.IsInf(c.FocusDist, 0) {
		bad("focus distance %v must be non-negative and finite", c.FocusDist)
	}

	vectorsOK := true
	for _, v := range []struct {
		name string
		v    math3d.Vec3
	}{{"look from", c.LookFrom}, {"look at", c.LookAt}, {"up", c.Up}} {
		if !v.v.IsFinite() {
			bad("%s %v is not finite", v.name, v.v)
			vectorsOK = false
		}
	}
	if vectorsOK {
		view := c.LookAt.Sub(c.LookFrom)
		switch {
		case view.NearZero():
			bad("look from and look at coincide at %v", c.LookFrom)
		case c.Up.NearZero():
			bad("up vector is zero")
		case c.Up.Normalize().Cross(view.Normalize()).LenSq() < 1e-12:
			bad("up %v is parallel to the view direction", c.Up)
		}
	}

	return errors.Join(errs...)
}

// Camera generates primary rays for each pixel. It is immutable once built.
type Camera struct {
	cfg    CameraConfig
	width  int
	height int

	center      math3d.Point3
	pixel00     math3d.Point3 // Centre of pixel (0, 0), the top-left pixel
	pixelDeltaU math3d.Vec3   // Offset to the pixel to the right
	pixelDeltaV math3d.Vec3   // Offset to the pixel below

	u, v, w math3d.Vec3 // Camera frame basis

	defocusDiskU math3d.Vec3
	defocusDiskV math3d.Vec3
}

// NewCamera validates cfg and precomputes the viewport.
func NewCamera(cfg CameraConfig) (*Camera, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Camera{
		cfg:    cfg,
		width:  cfg.ImageWidth,
		height: cfg.ImageHeight(),
		center: cfg.LookFrom,
	}

	focusDist := cfg.FocusDist
	if focusDist == 0 {
		focusDist = cfg.LookFrom.Distance(cfg.LookAt)
	}

	theta := math3d.DegreesToRadians(cfg.VFOV)
	viewportHeight := 2 * math.Tan(theta/2) * focusDist
	viewportWidth := viewportHeight * float64(c.width) / float64(c.height)

	c.w = cfg.LookFrom.Sub(cfg.LookAt).Normalize()
	c.u = cfg.Up.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)

	// Screen space runs right along u and down along -v.
	viewportU := c.u.Scale(viewportWidth)
	viewportV := c.v.Negate().Scale(viewportHeight)

	c.pixelDeltaU = viewportU.Div(float64(c.width))
	c.pixelDeltaV = viewportV.Div(float64(c.height))

	upperLeft := c.center.
		Sub(c.w.Scale(focusDist)).
		Sub(viewportU.Div(2)).
		Sub(viewportV.Div(2))
	c.pixel00 = upperLeft.Add(c.pixelDeltaU.Add(c.pixelDeltaV).Scale(0.5))

	defocusRadius := focusDist * math.Tan(math3d.DegreesToRadians(cfg.DefocusAngle/2))
	c.defocusDiskU = c.u.Scale(defocusRadius)
	c.defocusDiskV = c.v.Scale(defocusRadius)

	return c, nil
}

// Config returns the configuration the camera was built from.
func (c *Camera) Config() CameraConfig {
	return c.cfg
}

// Width returns the image width in pixels.
func (c *Camera) Width() int {
	return c.width
}

// Height returns the image height in pixels.
func (c *Camera) Height() int {
	return c.height
}

// Basis returns the camera frame: u points right, v up and w backwards.
func (c *Camera) Basis() (u, v, w math3d.Vec3) {
	return c.u, c.v, c.w
}

// GetRay returns a ray through a random point in the footprint of pixel
// (i, j), starting on the defocus disk when depth of field is enabled.
func (c *Camera) GetRay(rng *rand.Rand, i, j int) math3d.Ray {
	offsetX := rng.Float64() - 0.5
	offsetY := rng.Float64() - 0.5
	sample := c.pixel00.
		Add(c.pixelDeltaU.Scale(float64(i) + offsetX)).
		Add(c.pixelDeltaV.Scale(float64(j) + offsetY))

	origin := c.center
	if c.cfg.DefocusAngle > 0 {
		origin = c.defocusDiskSample(rng)
	}
	return math3d.NewRay(origin, sample.Sub(origin))
}

func (c *Camera) defocusDiskSample(rng *rand.Rand) math3d.Point3 {
	p := math3d.RandomInUnitDisk(rng)
	return c.center.Add(c.defocusDiskU.Scale(p.X)).Add(c.defocusDiskV.Scale(p.Y))
}
