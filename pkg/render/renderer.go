package render

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"

	"github.com/taigrr/pathtrace/pkg/math3d"
	"github.com/taigrr/pathtrace/pkg/scene"
)

const instrumentationName = "github.com/taigrr/pathtrace/pkg/render"

// ProgressFunc is told how many scanlines are left before each row starts
// and once more with remaining == 0 when the image is complete.
type ProgressFunc func(remaining, total int)

// Renderer drives a Camera over a scene. It is single-threaded and owns its
// random number generator, so a fixed seed reproduces an image exactly.
type Renderer struct {
	cam      *Camera
	rng      *rand.Rand
	progress ProgressFunc
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRand makes the renderer draw every random number from rng.
func WithRand(rng *rand.Rand) Option {
	return func(r *Renderer) {
		r.rng = rng
	}
}

// WithProgress installs a scanline progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Renderer) {
		r.progress = fn
	}
}

// NewRenderer creates a renderer for cam. Without WithRand the
// generator is seeded from the clock.
func NewRenderer(cam *Camera, opts ...Option) *Renderer {
	r := &Renderer{cam: cam}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return r
}

// Camera returns the renderer's camera.
func (r *Renderer) Camera() *Camera {
	return r.cam
}

// PixelColor averages SamplesPerPixel jittered samples through pixel (i, j)
// and returns the linear colour.
func (r *Renderer) PixelColor(world scene.Hittable, i, j int) math3d.Color {
	cfg := r.cam.cfg
	var sum math3d.Color
	for range cfg.SamplesPerPixel {
		ray := r.cam.GetRay(r.rng, i, j)
		sum = sum.Add(RayColor(r.rng, ray, cfg.MaxDepth, world))
	}
	return sum.Scale(1 / float64(cfg.SamplesPerPixel))
}

// Render traces every pixel of the image in row-major order, top row first,
// and hands each gamma-corrected pixel to sink. Cancellation is checked
// between scanlines.
func (r *Renderer) Render(ctx context.Context, world scene.Hittable, sink Sink) (err error) {
	width, height := r.cam.Width(), r.cam.Height()
	cfg := r.cam.cfg

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "Render")
	span.SetAttributes(
		attribute.Int("render.width", width),
		attribute.Int("render.height", height),
		attribute.Int("render.samples_per_pixel", cfg.SamplesPerPixel),
		attribute.Int("render.max_depth", cfg.MaxDepth),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	samples := metric.Must(global.Meter(instrumentationName)).NewInt64Counter("pathtrace.samples")

	if err := sink.Begin(width, height); err != nil {
		return fmt.Errorf("begin image: %w", err)
	}

	for j := range height {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("render interrupted at scanline %d: %w", j, err)
		}
		if r.progress != nil {
			r.progress(height-j, height)
		}

		for i := range width {
			if err := sink.WritePixel(ToRGBA(r.PixelColor(world, i, j))); err != nil {
				return fmt.Errorf("write pixel (%d, %d): %w", i, j, err)
			}
		}
		samples.Add(ctx, int64(width*cfg.SamplesPerPixel))
	}

	if err := sink.End(); err != nil {
		return fmt.Errorf("end image: %w", err)
	}
	if r.progress != nil {
		r.progress(0, height)
	}
	return nil
}
