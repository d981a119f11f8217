package models

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/taigrr/pathtrace/pkg/render"
	"github.com/taigrr/pathtrace/pkg/scene"
)

// Scene is a world together with the camera it is meant to be viewed from.
type Scene struct {
	Name        string
	Description string
	World       *scene.List
	Camera      render.CameraConfig
}

// IsModelPath reports whether ref names a glTF file rather than a preset.
func IsModelPath(ref string) bool {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".gltf", ".glb":
		return true
	}
	return false
}

// Load resolves ref to a scene: glTF paths are loaded from disk and anything
// else is looked up as a preset. rng drives preset randomisation.
func Load(ctx context.Context, ref string, rng *rand.Rand) (*Scene, error) {
	_, span := otel.Tracer("github.com/taigrr/pathtrace/pkg/models").Start(ctx, "LoadScene")
	defer span.End()
	span.SetAttributes(attribute.String("scene.ref", ref))

	var (
		s   *Scene
		err error
	)
	if IsModelPath(ref) {
		s, err = LoadGLTF(ref)
	} else {
		s, err = BuildPreset(ref, rng)
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load scene %q: %w", ref, err)
	}
	span.SetAttributes(attribute.Int("scene.objects", s.World.Len()))
	return s, nil
}
