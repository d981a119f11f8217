package render

import (
	"errors"
	"image/color"
)

// Sink consumes a rendered image one pixel at a time, top row first and
// left to right within a row.
type Sink interface {
	// Begin is called once before the first pixel.
	Begin(width, height int) error
	WritePixel(c color.RGBA) error
	// End is called once after the last pixel.
	End() error
}

type multiSink []Sink

// MultiSink returns a sink that duplicates every call to each of sinks in
// order, stopping at the first error.
func MultiSink(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Begin(width, height int) error {
	for _, s := range m {
		if err := s.Begin(width, height); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) WritePixel(c color.RGBA) error {
	for _, s := range m {
		if err := s.WritePixel(c); err != nil {
			return err
		}
	}
	return nil
}

// End finishes every sink even if one fails.
func (m multiSink) End() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.End())
	}
	return errors.Join(errs...)
}
