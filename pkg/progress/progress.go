// Package progress reports render progress on a terminal or log stream.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/harmonica"
	"golang.org/x/term"
)

// Reporter prints "Scanlines remaining" lines while a render runs and
// "Done." when it completes. On a terminal the line is redrawn in place and
// carries an ETA from spring-smoothed throughput.
type Reporter struct {
	w   io.Writer
	tty bool
	now func() time.Time

	spring   harmonica.Spring
	rate     float64 // Smoothed scanlines per second
	rateVel  float64
	lastTime time.Time
	lastLeft int
}

// New creates a reporter writing to w. Terminal redraws are used only when w
// is an *os.File attached to a terminal.
func New(w io.Writer) *Reporter {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &Reporter{
		w:   w,
		tty: tty,
		now: time.Now,
		// Critically damped so the ETA settles without oscillating.
		spring: harmonica.NewSpring(harmonica.FPS(10), 2.0, 1.0),
	}
}

// Scanline has the signature of render.ProgressFunc.
func (r *Reporter) Scanline(remaining, total int) {
	now := r.now()

	if remaining == 0 {
		if r.tty {
			fmt.Fprint(r.w, "\r\x1b[2K")
		}
		fmt.Fprintln(r.w, "Done.")
		return
	}

	if !r.lastTime.IsZero() && remaining < r.lastLeft {
		if dt := now.Sub(r.lastTime).Seconds(); dt > 0 {
			instant := float64(r.lastLeft-remaining) / dt
			if r.rate == 0 {
				r.rate = instant
			} else {
				r.rate, r.rateVel = r.spring.Update(r.rate, r.rateVel, instant)
			}
		}
	}
	r.lastTime = now
	r.lastLeft = remaining

	if !r.tty {
		fmt.Fprintf(r.w, "Scanlines remaining: %d\n", remaining)
		return
	}
	line := fmt.Sprintf("Scanlines remaining: %d/%d", remaining, total)
	if eta, ok := r.ETA(); ok {
		line += fmt.Sprintf(" (eta %s)", eta.Round(time.Second))
	}
	fmt.Fprint(r.w, "\r\x1b[2K"+line)
}

// ETA estimates the time left from the smoothed throughput. ok is false
// until at least two scanlines have been observed.
func (r *Reporter) ETA() (time.Duration, bool) {
	if r.rate <= 0 {
		return 0, false
	}
	return time.Duration(float64(r.lastLeft) / r.rate * float64(time.Second)), true
}
