// Package output opens the destinations a rendered image can be written to:
// standard output, a local file or a Cloud Storage object.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	googleopt "google.golang.org/api/option"
)

// Stdout is the destination name for standard output.
const Stdout = "-"

// Format is an image encoding.
type Format int

const (
	FormatPPM Format = iota // Plain-text P3, streamed while rendering
	FormatPNG               // Encoded once the render completes
)

func (f Format) String() string {
	switch f {
	case FormatPPM:
		return "ppm"
	case FormatPNG:
		return "png"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ErrUnknownFormat is returned for a destination with an unsupported
// extension.
var ErrUnknownFormat = errors.New("unknown image format")

// FormatFor picks the encoding from the destination's extension. Standard
// output is always PPM.
func FormatFor(dest string) (Format, error) {
	if dest == Stdout {
		return FormatPPM, nil
	}
	switch ext := strings.ToLower(path.Ext(dest)); ext {
	case ".ppm":
		return FormatPPM, nil
	case ".png":
		return FormatPNG, nil
	default:
		return 0, fmt.Errorf("%w: %q (use .ppm or .png)", ErrUnknownFormat, ext)
	}
}

// ParseGCS splits a gs://bucket/object URL.
func ParseGCS(dest string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(dest, "gs://")
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

// Writer is an open destination. Close commits what was written; Abort
// discards it instead, so a failed render leaves no partial image behind.
type Writer interface {
	io.WriteCloser
	Abort() error
}

// Create opens dest for writing. The caller must finish the writer with
// exactly one of Close or Abort; for Cloud Storage the object only becomes
// visible once Close succeeds.
func Create(ctx context.Context, dest string) (Writer, error) {
	if dest == Stdout {
		return stdoutWriter{os.Stdout}, nil
	}

	if strings.HasPrefix(dest, "gs://") {
		bucket, object, ok := ParseGCS(dest)
		if !ok {
			return nil, fmt.Errorf("malformed Cloud Storage destination %q, want gs://bucket/object", dest)
		}
		return createGCS(ctx, bucket, object)
	}

	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return fileWriter{f}, nil
}

// fileWriter removes the file on Abort.
type fileWriter struct {
	*os.File
}

func (f fileWriter) Abort() error {
	cerr := f.File.Close()
	if err := os.Remove(f.Name()); err != nil {
		return fmt.Errorf("remove partial output: %w", err)
	}
	if cerr != nil && !errors.Is(cerr, os.ErrClosed) {
		return fmt.Errorf("close partial output: %w", cerr)
	}
	return nil
}

func createGCS(ctx context.Context, bucket, object string) (Writer, error) {
	gcs, err := storage.NewClient(ctx, googleopt.WithGRPCConnectionPool(1))
	if err != nil {
		return nil, fmt.Errorf("while creating Cloud Storage client: %w", err)
	}

	// Cancelling the writer's context is the only way to drop an upload
	// without committing it.
	wctx, cancel := context.WithCancel(ctx)
	w := gcs.Bucket(bucket).Object(object).NewWriter(wctx)
	switch strings.ToLower(path.Ext(object)) {
	case ".png":
		w.ContentType = "image/png"
	case ".ppm":
		w.ContentType = "image/x-portable-pixmap"
	}

	return &gcsWriter{w: w, client: gcs, cancel: cancel}, nil
}

// gcsWriter closes the client together with the object writer.
type gcsWriter struct {
	w      *storage.Writer
	client *storage.Client
	cancel context.CancelFunc
}

func (g *gcsWriter) Write(p []byte) (int, error) {
	return g.w.Write(p)
}

func (g *gcsWriter) Close() error {
	var errs []error
	if err := g.w.Close(); err != nil {
		errs = append(errs, fmt.Errorf("while closing object writer: %w", err))
	}
	g.cancel()
	if err := g.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("while closing Cloud Storage client: %w", err))
	}
	return errors.Join(errs...)
}

// Abort cancels the upload; the object is left untouched.
func (g *gcsWriter) Abort() error {
	g.cancel()
	// Close reports the cancellation; nothing was committed.
	_ = g.w.Close()
	if err := g.client.Close(); err != nil {
		return fmt.Errorf("while closing Cloud Storage client: %w", err)
	}
	return nil
}

// stdoutWriter leaves standard output open. Bytes already streamed cannot
// be taken back, so Abort does nothing.
type stdoutWriter struct {
	io.Writer
}

func (stdoutWriter) Close() error { return nil }
func (stdoutWriter) Abort() error { return nil }
