// Package render turns a scene into pixels: camera ray generation, the
// light transport loop and the sinks that receive finished pixels.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Framebuffer is an in-memory RGBA image. It also implements Sink so a
// render can be captured for PNG encoding, caching or terminal preview.
type Framebuffer struct {
	Width  int          // Width in pixels
	Height int          // Height in pixels
	Pixels []color.RGBA // Row-major pixel data

	next int // Index of the next pixel written through the Sink interface
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// Begin implements Sink, reallocating the pixel buffer if the size differs.
func (fb *Framebuffer) Begin(width, height int) error {
	if width != fb.Width || height != fb.Height || len(fb.Pixels) != width*height {
		fb.Width, fb.Height = width, height
		fb.Pixels = make([]color.RGBA, width*height)
	}
	fb.next = 0
	return nil
}

// WritePixel implements Sink.
func (fb *Framebuffer) WritePixel(c color.RGBA) error {
	if fb.next >= len(fb.Pixels) {
		return fmt.Errorf("framebuffer overflow: %dx%d already full", fb.Width, fb.Height)
	}
	fb.Pixels[fb.next] = c
	fb.next++
	return nil
}

// End implements Sink.
func (fb *Framebuffer) End() error {
	if fb.next != len(fb.Pixels) {
		return fmt.Errorf("framebuffer incomplete: got %d of %d pixels", fb.next, len(fb.Pixels))
	}
	return nil
}

// Replay feeds the framebuffer's pixels to another sink.
func (fb *Framebuffer) Replay(s Sink) error {
	if err := s.Begin(fb.Width, fb.Height); err != nil {
		return err
	}
	for _, c := range fb.Pixels {
		if err := s.WritePixel(c); err != nil {
			return err
		}
	}
	return s.End()
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// EncodePNG writes the framebuffer to w as a PNG image.
func (fb *Framebuffer) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, fb.ToImage()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
