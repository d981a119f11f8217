package render

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
)

// PPMWriter streams pixels as a plain-text (P3) PPM image.
type PPMWriter struct {
	w *bufio.Writer
}

// NewPPMWriter creates a PPM sink writing to w. The caller owns w.
func NewPPMWriter(w io.Writer) *PPMWriter {
	return &PPMWriter{w: bufio.NewWriter(w)}
}

// Begin writes the header.
func (p *PPMWriter) Begin(width, height int) error {
	if _, err := fmt.Fprintf(p.w, "P3\n%d %d\n255\n", width, height); err != nil {
		return fmt.Errorf("write ppm header: %w", err)
	}
	return nil
}

// WritePixel writes one "R G B" line.
func (p *PPMWriter) WritePixel(c color.RGBA) error {
	if _, err := fmt.Fprintf(p.w, "%d %d %d\n", c.R, c.G, c.B); err != nil {
		return fmt.Errorf("write ppm pixel: %w", err)
	}
	return nil
}

// End flushes buffered output.
func (p *PPMWriter) End() error {
	if err := p.w.Flush(); err != nil {
		return fmt.Errorf("flush ppm: %w", err)
	}
	return nil
}
