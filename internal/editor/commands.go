package editor

import (
	"strings"

	"github.com/dshills/keystorm/internal/async"
	"github.com/dshills/keystorm/internal/buffer"
	"github.com/dshills/keystorm/internal/predictor"
	"github.com/dshills/keystorm/internal/script"
)

// bindScriptCommands exposes a handful of editor operations as Lua
// globals so configuration scripts (bound the way internal/plugin/lua
// binds host functions into a *lua.LState) can drive the editor
// without reaching into unexported state.
func (e *Editor) bindScriptCommands() {
	e.scripts.Bind("quit", func(args []script.Value) script.Value {
		e.Quit()
		return script.Nil
	})
	e.scripts.Bind("status", func(args []script.Value) script.Value {
		if len(args) > 0 {
			e.SetStatus(args[0].AsString())
		}
		return script.Nil
	})
	e.scripts.Bind("undo", func(args []script.Value) script.Value {
		if b := e.ActiveBuffer(); b != nil {
			_ = b.Undo()
		}
		return script.Nil
	})
	e.scripts.Bind("redo", func(args []script.Value) script.Value {
		if b := e.ActiveBuffer(); b != nil {
			_ = b.Redo()
		}
		return script.Nil
	})
}

// runCommandLine executes one line entered in command mode (§9's
// ex-style command line, entered via the ':' prefix that
// handleModeTransitionKeys switches into ModeCommand). A small set of
// built-ins are recognized directly; anything else is handed to the
// Lua engine as an expression, matching the teacher's treatment of
// command-mode input as a scripting surface rather than a fixed
// command table.
func (e *Editor) runCommandLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	switch line {
	case "q", "quit":
		e.Quit()
		return
	case "w", "write":
		e.SetStatus("write is not wired to a filesystem sink")
		return
	case "wq":
		e.SetStatus("write is not wired to a filesystem sink")
		e.Quit()
		return
	case "undo":
		if b := e.ActiveBuffer(); b != nil {
			_ = b.Undo()
		}
		return
	case "redo":
		if b := e.ActiveBuffer(); b != nil {
			_ = b.Redo()
		}
		return
	}

	if n, ok := parseGoToLine(line); ok {
		if b := e.ActiveBuffer(); b != nil {
			_ = e.moveToLine(b, n)
		}
		return
	}

	v, err := e.scripts.Evaluate(line, script.MapEnv{})
	if err != nil {
		e.SetStatus(err.Error())
		return
	}
	if !v.IsNil() {
		e.SetStatus(v.AsString())
	}
}

func parseGoToLine(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// completeAtCursor requests completions for the word immediately
// before the primary cursor and, once the registry resolves, inserts
// the highest-ranked result (§8 P7's completion pipeline, driven
// through the same async.Evaluator/Notification pair every other
// background computation uses).
func (e *Editor) completeAtCursor(b *buffer.Buffer) {
	pos := primaryPos(b)
	prefix := wordBefore(lineText(b, pos.Line), pos.Column)
	if prefix == "" {
		return
	}

	n := async.NewNotification()
	v := e.predict.Complete(e.eval, n, predictor.Query{Prefix: prefix, Limit: 1})
	v.OnReady(func(c predictor.Completion) {
		e.QueueWork(func() {
			if c.Cancelled || len(c.Results) == 0 {
				return
			}
			best := c.Results[0]
			if !strings.HasPrefix(best.Text, prefix) {
				return
			}
			e.insertAt(b, best.Text[len(prefix):])
		})
	})
}

func wordBefore(line string, col int) string {
	r := []rune(line)
	if col > len(r) {
		col = len(r)
	}
	start := col
	for start > 0 && isWordRune(r[start-1]) {
		start--
	}
	return string(r[start:col])
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
