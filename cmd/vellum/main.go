// Command vellum is the terminal entry point: it opens a real
// terminal backend, loads any file paths given on the command line
// into buffers, and runs the editor's main loop until the user quits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/keystorm/internal/buffer"
	"github.com/dshills/keystorm/internal/cursor"
	"github.com/dshills/keystorm/internal/editor"
	"github.com/dshills/keystorm/internal/renderer/backend"
	"github.com/dshills/keystorm/internal/renderer/highlight"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "vellum:", err)
		os.Exit(1)
	}
}

func run() error {
	term, err := backend.NewTerminal()
	if err != nil {
		return err
	}
	if err := term.Init(); err != nil {
		return err
	}
	defer term.Shutdown()

	ed := editor.New(term, editor.WithLanguage(highlight.GoHighlighter(), highlight.DefaultTheme()))
	defer ed.Close()

	args := os.Args[1:]
	if len(args) == 0 {
		ed.OpenBuffer("[no name]", buffer.New())
	}
	for _, path := range args {
		b, name, err := openFileBuffer(path)
		if err != nil {
			return err
		}
		ed.OpenBuffer(name, b)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return ed.Run(ctx)
}

// openFileBuffer reads path's contents into a fresh Buffer via a
// single Edit against the buffer's initial empty line, the same
// primitive every keystroke-driven edit goes through.
func openFileBuffer(path string) (*buffer.Buffer, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return buffer.New(), path, nil
		}
		return nil, "", err
	}

	b := buffer.New()
	if len(data) == 0 {
		return b, path, nil
	}
	start := cursor.Position{Line: 0, Column: 0}
	if err := b.Edit(cursor.Range{Start: start, End: start}, string(data), "load "+path); err != nil {
		return nil, "", err
	}
	return b, path, nil
}
