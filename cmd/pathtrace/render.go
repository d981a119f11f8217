package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/taigrr/pathtrace/pkg/cache"
	"github.com/taigrr/pathtrace/pkg/models"
	"github.com/taigrr/pathtrace/pkg/output"
	"github.com/taigrr/pathtrace/pkg/progress"
	"github.com/taigrr/pathtrace/pkg/render"
	"github.com/taigrr/pathtrace/pkg/scene"
	"github.com/taigrr/pathtrace/pkg/telemetry"
)

// renderFlags mirrors render.CameraConfig plus the command's own options.
// Camera values only override the scene's camera when set explicitly.
type renderFlags struct {
	scene   string
	out     string
	seed    int64
	preview bool
	quiet   bool

	cacheDir string

	trace        bool
	traceProject string
	traceRatio   float64

	camera render.CameraConfig
}

var renderOpts renderFlags

var cmdRender = &cobra.Command{
	Use:   "render",
	Short: "Render a scene to an image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runRender(ctx, cmd.Flags(), renderOpts, cmd.ErrOrStderr())
	},
}

func init() {
	registerRenderFlags(cmdRender.Flags(), &renderOpts)
}

func registerRenderFlags(f *pflag.FlagSet, opts *renderFlags) {
	def := render.DefaultCameraConfig()
	cam := &opts.camera

	f.StringVar(&opts.scene, "scene", "cover", "Preset name (see `pathtrace scenes`) or path to a .gltf/.glb file")
	f.StringVarP(&opts.out, "out", "o", output.Stdout, "Output: - for stdout, a .ppm/.png path or gs://bucket/object")
	f.Int64Var(&opts.seed, "seed", 0, "Random seed; 0 seeds from the clock")
	f.BoolVar(&opts.preview, "preview", false, "Show the finished image in the terminal")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")
	f.StringVar(&opts.cacheDir, "cache-dir", "", "Directory for the render cache (seeded renders only)")

	f.BoolVar(&opts.trace, "trace", false, "Export traces and metrics to Google Cloud")
	f.StringVar(&opts.traceProject, "trace-project", "", "Override project used for telemetry. If not specified, the project associated with Application Default Credentials is used.")
	f.Float64Var(&opts.traceRatio, "trace-ratio", 0.0001, "What ratio of traces should be exported?")

	f.IntVar(&cam.ImageWidth, "width", def.ImageWidth, "Image width in pixels")
	f.Float64Var(&cam.AspectRatio, "aspect", def.AspectRatio, "Image aspect ratio (width / height)")
	f.IntVar(&cam.SamplesPerPixel, "samples", def.SamplesPerPixel, "Samples per pixel")
	f.IntVar(&cam.MaxDepth, "depth", def.MaxDepth, "Maximum ray bounces")
	f.Float64Var(&cam.VFOV, "vfov", def.VFOV, "Vertical field of view in degrees")
	f.Var(newVec3Value(&cam.LookFrom, def.LookFrom), "look-from", "Camera position x,y,z")
	f.Var(newVec3Value(&cam.LookAt, def.LookAt), "look-at", "Point the camera looks at x,y,z")
	f.Var(newVec3Value(&cam.Up, def.Up), "up", "Camera up direction x,y,z")
	f.Float64Var(&cam.DefocusAngle, "defocus-angle", def.DefocusAngle, "Aperture angle in degrees; 0 disables depth of field")
	f.Float64Var(&cam.FocusDist, "focus-dist", def.FocusDist, "Focus distance; 0 focuses on the look-at point")
}

// applyCameraFlags copies every explicitly set camera flag onto cfg.
func applyCameraFlags(flags *pflag.FlagSet, from render.CameraConfig, cfg *render.CameraConfig) {
	set := map[string]func(){
		"width":         func() { cfg.ImageWidth = from.ImageWidth },
		"aspect":        func() { cfg.AspectRatio = from.AspectRatio },
		"samples":       func() { cfg.SamplesPerPixel = from.SamplesPerPixel },
		"depth":         func() { cfg.MaxDepth = from.MaxDepth },
		"vfov":          func() { cfg.VFOV = from.VFOV },
		"look-from":     func() { cfg.LookFrom = from.LookFrom },
		"look-at":       func() { cfg.LookAt = from.LookAt },
		"up":            func() { cfg.Up = from.Up },
		"defocus-angle": func() { cfg.DefocusAngle = from.DefocusAngle },
		"focus-dist":    func() { cfg.FocusDist = from.FocusDist },
	}
	for name, apply := range set {
		if flags.Changed(name) {
			apply()
		}
	}
}

func runRender(ctx context.Context, flags *pflag.FlagSet, opts renderFlags, stderr io.Writer) (err error) {
	if opts.trace {
		shutdown, err := telemetry.Install(ctx, telemetry.Config{Project: opts.traceProject, TraceRatio: opts.traceRatio})
		if err != nil {
			return err
		}
		defer shutdown()
	}

	format, err := output.FormatFor(opts.out)
	if err != nil {
		return err
	}

	seeded := opts.seed != 0
	seed := opts.seed
	if !seeded {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	s, err := models.Load(ctx, opts.scene, rng)
	if err != nil {
		return err
	}
	cfg := s.Camera
	applyCameraFlags(flags, opts.camera, &cfg)

	cam, err := render.NewCamera(cfg)
	if err != nil {
		return err
	}
	if glog.V(1) {
		u, v, w := cam.Basis()
		glog.Infof("Camera basis u=%v v=%v w=%v", u, v, w)
	}
	glog.Infof("Rendering %q (%d objects) at %dx%d, %d samples, depth %d, seed %d",
		s.Name, s.World.Len(), cam.Width(), cam.Height(), cfg.SamplesPerPixel, cfg.MaxDepth, seed)

	var (
		store *cache.Cache
		key   []byte
	)
	if opts.cacheDir != "" {
		if !seeded {
			glog.Warningf("Ignoring --cache-dir: only renders with an explicit --seed are cached")
		} else {
			store, err = cache.Open(opts.cacheDir)
			if err != nil {
				return err
			}
			defer store.Close()

			key = cache.Key(sceneFingerprint(opts.scene), cfg, seed)
			fb, ok, err := store.Get(key)
			if err != nil {
				glog.Warningf("Render cache lookup failed: %v", err)
			} else if ok {
				glog.Infof("Render cache hit for %q", opts.scene)
				if err := writeOutput(ctx, opts.out, format, fb); err != nil {
					return err
				}
				return maybePreview(ctx, opts, fb)
			}
		}
	}

	ropts := []render.Option{render.WithRand(rng)}
	if !opts.quiet {
		ropts = append(ropts, render.WithProgress(progress.New(stderr).Scanline))
	}

	start := time.Now()
	fb, err := renderImage(ctx, opts.out, format, render.NewRenderer(cam, ropts...), s.World)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			glog.Warningf("Render interrupted after %v", time.Since(start))
		}
		return err
	}
	glog.Infof("Rendered %d pixels in %v", len(fb.Pixels), time.Since(start))

	if store != nil {
		if err := store.Put(key, fb); err != nil {
			glog.Warningf("Could not cache render: %v", err)
		}
	}

	return maybePreview(ctx, opts, fb)
}

// renderImage renders into a framebuffer, streaming PPM to dest as it goes
// or encoding PNG once complete. On failure dest is discarded.
func renderImage(ctx context.Context, dest string, format output.Format, r *render.Renderer, world scene.Hittable) (fb *render.Framebuffer, err error) {
	w, err := output.Create(ctx, dest)
	if err != nil {
		return nil, err
	}
	defer finishOutput(w, &err)

	fb = &render.Framebuffer{}
	sink := render.Sink(fb)
	if format == output.FormatPPM {
		sink = render.MultiSink(fb, render.NewPPMWriter(w))
	}
	if err := r.Render(ctx, world, sink); err != nil {
		return nil, err
	}
	if format == output.FormatPNG {
		if err := fb.EncodePNG(w); err != nil {
			return nil, err
		}
	}
	return fb, nil
}

// writeOutput encodes a finished framebuffer to dest.
func writeOutput(ctx context.Context, dest string, format output.Format, fb *render.Framebuffer) (err error) {
	w, err := output.Create(ctx, dest)
	if err != nil {
		return err
	}
	defer finishOutput(w, &err)

	if format == output.FormatPNG {
		return fb.EncodePNG(w)
	}
	return fb.Replay(render.NewPPMWriter(w))
}

// finishOutput commits w if *err is nil and discards it otherwise.
func finishOutput(w output.Writer, err *error) {
	if *err != nil {
		if aerr := w.Abort(); aerr != nil {
			glog.Warningf("Could not discard partial output: %v", aerr)
		}
		return
	}
	if cerr := w.Close(); cerr != nil {
		*err = fmt.Errorf("close output: %w", cerr)
	}
}

func maybePreview(ctx context.Context, opts renderFlags, fb *render.Framebuffer) error {
	if !opts.preview {
		return nil
	}
	if opts.out == output.Stdout {
		glog.Warningf("Skipping --preview: the image was written to stdout")
		return nil
	}
	return showPreview(ctx, fb)
}

// sceneFingerprint identifies a scene for caching. Presets are identified by
// name; model files also by size and modification time so edits invalidate
// the cache.
func sceneFingerprint(ref string) string {
	if !models.IsModelPath(ref) {
		return ref
	}
	fi, err := os.Stat(ref)
	if err != nil {
		return ref
	}
	return fmt.Sprintf("%s@%d:%d", ref, fi.Size(), fi.ModTime().UnixNano())
}

