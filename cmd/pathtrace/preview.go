package main

import (
	"context"
	"fmt"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/pathtrace/pkg/render"
)

// showPreview draws fb on the alternate screen until a key is pressed or ctx
// is cancelled.
func showPreview(ctx context.Context, fb *render.Framebuffer) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	draw := func() error {
		term.Erase()
		fb.Draw(term, uv.Rect(0, 0, width, height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display preview: %w", err)
		}
		return nil
	}
	if err := draw(); err != nil {
		return err
	}

	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Resize(width, height)
				if err := draw(); err != nil {
					return err
				}
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"),
					ev.MatchString("q"), ev.MatchString("enter"):
					return nil
				}
			}
		}
	}
}
