// Package editor owns the global state named in the collaborator model:
// the buffer map, the active widget tree, pending modifiers, the signal
// and work queues, the status line, and the single point through which
// terminal input is dispatched down into a mode, then a transformation,
// then a buffer edit. It is the top-level component every other
// package in this module is a collaborator of, never a peer.
//
// Grounded on internal/app.Application's role as the coordination point
// between backend events, the mode manager, and document state
// (internal/app/app.go, eventloop.go) — rebuilt from scratch against
// this module's own internal/buffer, internal/widget, and internal/async
// instead of the teacher's internal/dispatcher/internal/event stack,
// which this module does not carry forward.
package editor

import (
	"sync"

	"github.com/dshills/keystorm/internal/async"
	"github.com/dshills/keystorm/internal/buffer"
	"github.com/dshills/keystorm/internal/input/mode"
	"github.com/dshills/keystorm/internal/predictor"
	"github.com/dshills/keystorm/internal/renderer/backend"
	"github.com/dshills/keystorm/internal/renderer/highlight"
	"github.com/dshills/keystorm/internal/renderer/layout"
	"github.com/dshills/keystorm/internal/script"
	"github.com/dshills/keystorm/internal/widget"
)

// Editor is the single top-level object a binary constructs. It owns
// every buffer, the widget tree that lays them out on screen, and the
// modal input pipeline that routes terminal events into edits.
type Editor struct {
	mu sync.Mutex

	be     backend.Backend
	root   widget.Node
	names  map[*buffer.Buffer]string
	order  []string

	modes   *mode.Manager
	layout  *layout.LayoutEngine
	themes  *highlight.Registry
	current *highlight.Provider
	scripts *script.Engine
	predict *predictor.Registry
	eval    *async.Evaluator

	signals *async.Queue
	work    *async.Queue

	status   string
	register string // the single unnamed yank register (§ Non-goals excludes named registers)
	quit     bool
}

// Option configures an Editor at construction.
type Option func(*Editor)

// WithLanguage selects the syntax highlighter and theme used for every
// buffer this Editor opens, keyed the way internal/renderer/highlight's
// Registry/ThemeRegistry key themselves (by language name).
func WithLanguage(h highlight.Highlighter, theme *highlight.Theme) Option {
	return func(e *Editor) {
		e.themes.Register(h)
		e.current = highlight.NewProvider(theme, 512)
		e.current.SetHighlighter(h)
	}
}

// New builds an Editor around be, the terminal backend it paints into.
func New(be backend.Backend, opts ...Option) *Editor {
	w, h := be.Size()

	modes := mode.NewManager()
	modes.Register(mode.NewNormalMode())
	modes.Register(mode.NewInsertMode())
	modes.Register(mode.NewVisualMode())
	modes.Register(mode.NewCommandMode())
	modes.Register(mode.NewOperatorPendingMode())
	modes.Register(mode.NewReplaceMode())
	_ = modes.SetInitialMode(mode.ModeNormal)

	e := &Editor{
		be:      be,
		names:   make(map[*buffer.Buffer]string),
		modes:   modes,
		layout:  layout.NewLayoutEngine(8),
		themes:  highlight.NewRegistry(),
		scripts: script.New(),
		predict: predictor.NewRegistry(predictor.SyntaxSource{Keywords: goKeywords}),
		signals: async.NewQueue(),
		work:    async.NewQueue(),
	}
	e.eval = async.NewEvaluator(e.work)
	e.layout.SetWrap(w, false)
	_ = h

	for _, opt := range opts {
		opt(e)
	}
	if e.current == nil {
		e.current = highlight.NewProvider(highlight.DefaultTheme(), 512)
	}
	e.bindScriptCommands()
	return e
}

// OpenBuffer adds b to the editor under name, and lays it out as the
// only leaf if this is the first buffer opened.
func (e *Editor) OpenBuffer(name string, b *buffer.Buffer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.names[b] = name
	e.order = append(e.order, name)
	leaf := widget.NewLeaf(b)
	if e.root.IsZero() {
		e.root = leaf
	} else {
		e.root = widget.NewVSplit([]widget.Node{e.root, leaf}, 1)
	}
}

// ActiveBuffer returns the buffer backing the widget tree's active
// leaf, or nil if no buffer has been opened.
func (e *Editor) ActiveBuffer() *buffer.Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	leaf, ok := e.root.ActiveLeaf()
	if !ok {
		return nil
	}
	return leaf.Buffer
}

// AdvanceWidget moves the active leaf n positions through the tree's
// leaf order (§9's window-cycling operation).
func (e *Editor) AdvanceWidget(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.root = widget.Advance(e.root, n)
}

// Modes exposes the mode manager so a caller can register additional
// modes or subscribe to transitions before the loop starts.
func (e *Editor) Modes() *mode.Manager { return e.modes }

// Scripts exposes the expression evaluator bound to editor commands
// (see bindScriptCommands), so a host can also call it directly for
// scripted configuration.
func (e *Editor) Scripts() *script.Engine { return e.scripts }

// SetStatus overwrites the status line text (§2's "status line" field).
func (e *Editor) SetStatus(s string) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// StatusLine returns the current status line text, falling back to the
// active mode's display name and buffer name when nothing was set
// explicitly.
func (e *Editor) StatusLine() string {
	e.mu.Lock()
	s := e.status
	e.mu.Unlock()
	if s != "" {
		return s
	}
	name := "[no name]"
	if b := e.ActiveBuffer(); b != nil {
		if n, ok := e.names[b]; ok {
			name = n
		}
	}
	current := e.modes.Current()
	if current == nil {
		return name
	}
	return "-- " + current.DisplayName() + " -- " + name
}

// Signal enqueues fn on the signal queue (§4.7 step 1: OS-level events
// such as SIGWINCH arrive here, decoupled from the main dispatch path).
func (e *Editor) Signal(fn func()) { e.signals.Push(fn) }

// QueueWork enqueues fn on the work queue (§4.7 step 2: results of
// async.Evaluator computations rejoin the loop here).
func (e *Editor) QueueWork(fn func()) { e.work.Push(fn) }

// Quit marks the editor to stop after the current iteration.
func (e *Editor) Quit() {
	e.mu.Lock()
	e.quit = true
	e.mu.Unlock()
}

// ShouldQuit reports whether Quit has been called.
func (e *Editor) ShouldQuit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quit
}

// Close shuts down the background evaluator and the script engine's
// Lua state. Safe to call once, after the loop has stopped.
func (e *Editor) Close() {
	e.eval.Shutdown()
	e.scripts.Close()
}

var goKeywords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer",
	"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
	"interface", "map", "package", "range", "return", "select", "struct",
	"switch", "type", "var",
}
