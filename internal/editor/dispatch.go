package editor

import (
	"github.com/dshills/keystorm/internal/buffer"
	"github.com/dshills/keystorm/internal/cursor"
	"github.com/dshills/keystorm/internal/input/key"
	"github.com/dshills/keystorm/internal/input/mode"
	"github.com/dshills/keystorm/internal/renderer/backend"
	"github.com/dshills/keystorm/internal/transform"
)

// Dispatch routes one backend event through resize handling, the
// modal input pipeline, or paste insertion (§4.7 step 4: "dispatch
// through the active mode -> command -> transformation pipeline").
func (e *Editor) Dispatch(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		e.handleResize(ev)
	case backend.EventKey:
		return e.handleKey(ev)
	case backend.EventPaste:
		e.handlePaste(ev)
	}
	return nil
}

func (e *Editor) handleResize(ev backend.Event) {
	e.layout.SetWrap(ev.Width, false)
}

func (e *Editor) handlePaste(ev backend.Event) {
	if ev.PasteText == "" {
		return
	}
	b := e.ActiveBuffer()
	if b == nil {
		return
	}
	e.insertAt(b, ev.PasteText)
}

func (e *Editor) handleKey(ev backend.Event) error {
	kev := convertKeyEvent(ev)
	b := e.ActiveBuffer()
	if b == nil {
		return nil
	}

	current := e.modes.Current()
	if current == nil {
		return nil
	}

	if handled := e.handleModeTransitionKeys(current, kev, b); handled {
		return nil
	}

	ctx := mode.NewContext()
	result := current.HandleUnmapped(kev, ctx)
	if result == nil || !result.Consumed {
		return nil
	}
	if result.Action == nil {
		return nil
	}
	return e.applyAction(b, result.Action)
}

// handleModeTransitionKeys intercepts keys the mode packages leave
// Consumed=false on purpose (Enter/Escape while in command mode,
// Ctrl-N completion in insert mode) since those cross mode boundaries
// or call collaborators HandleUnmapped has no access to.
func (e *Editor) handleModeTransitionKeys(current mode.Mode, kev key.Event, b *buffer.Buffer) bool {
	switch current.Name() {
	case mode.ModeCommand:
		cmd, _ := current.(*mode.CommandMode)
		if cmd == nil {
			return false
		}
		switch {
		case kev.Key == key.KeyEnter:
			line := cmd.Buffer()
			cmd.AddToHistory(line)
			e.runCommandLine(line)
			_ = e.modes.SwitchWithContext(mode.ModeNormal, mode.NewContext())
			return true
		case kev.IsEscape():
			_ = e.modes.SwitchWithContext(mode.ModeNormal, mode.NewContext())
			return true
		}
	case mode.ModeInsert:
		if kev.Key == key.KeyEscape {
			_ = e.modes.SwitchWithContext(mode.ModeNormal, mode.NewContext())
			return true
		}
		if kev.IsChar() && kev.Modifiers.HasCtrl() && kev.Rune == 'n' {
			e.completeAtCursor(b)
			return true
		}
	case mode.ModeNormal:
		if kev.IsChar() && kev.Rune == ':' && !kev.IsModified() {
			_ = e.modes.SwitchWithContext(mode.ModeCommand, mode.NewContext())
			return true
		}
	}
	return false
}

// applyAction interprets one mode.Action, the boundary between the
// modal input packages (which only know key sequences) and this
// module's transform/buffer pipeline (which only knows positions and
// text).
func (e *Editor) applyAction(b *buffer.Buffer, action *mode.Action) error {
	switch action.Name {
	case "mode.insert":
		return e.enterInsert(b, action.Args)
	case "mode.normal":
		return e.modes.SwitchWithContext(mode.ModeNormal, mode.NewContext())
	case "mode.command":
		return e.modes.SwitchWithContext(mode.ModeCommand, mode.NewContext())
	case "mode.visual":
		return e.modes.SwitchWithContext(mode.ModeVisual, mode.NewContext())
	case "mode.replace":
		return e.modes.SwitchWithContext(mode.ModeReplace, mode.NewContext())
	case "editor.insertText":
		text, _ := action.Args["text"].(string)
		e.insertAt(b, text)
	case "editor.delete_char":
		return e.deleteMotion(b, transform.Char, transform.Forward, 1)
	case "editor.delete_char_before":
		return e.deleteMotion(b, transform.Char, transform.Backward, 1)
	case "editor.delete_line":
		return e.deleteLine(b, true)
	case "editor.change_line":
		if err := e.deleteLine(b, false); err != nil {
			return err
		}
		return e.modes.SwitchWithContext(mode.ModeInsert, mode.NewContext())
	case "editor.yank_line":
		e.yankLine(b)
	case "editor.paste":
		e.pasteRegister(b)
	case "editor.undo":
		return b.Undo()
	case "editor.redo":
		return b.Redo()
	case "cursor.left":
		return e.moveMotion(b, transform.Char, transform.Backward, 1)
	case "cursor.right":
		return e.moveMotion(b, transform.Char, transform.Forward, 1)
	case "cursor.word_forward":
		return e.moveMotion(b, transform.Word, transform.Forward, 1)
	case "cursor.word_backward":
		return e.moveMotion(b, transform.Word, transform.Backward, 1)
	case "cursor.word_end":
		return e.moveMotion(b, transform.Word, transform.Forward, 1)
	case "cursor.line_start":
		return e.moveToLineStart(b, false)
	case "cursor.first_non_blank":
		return e.moveToLineStart(b, true)
	case "cursor.line_end":
		return e.moveToLineEnd(b)
	case "cursor.up":
		return e.moveVertical(b, -1)
	case "cursor.down":
		return e.moveVertical(b, 1)
	case "cursor.file_end":
		return e.moveMotion(b, transform.Buffer, transform.Forward, 1)
	case "cursor.go_to_line":
		n, _ := action.Args["line"].(int)
		return e.moveToLine(b, n)
	case "view.page_up":
		return e.moveVertical(b, -pageSize)
	case "view.page_down":
		return e.moveVertical(b, pageSize)
	case "view.half_page_up":
		return e.moveVertical(b, -pageSize/2)
	case "view.half_page_down":
		return e.moveVertical(b, pageSize/2)
	}
	return nil
}

// pageSize is the vertical scroll unit used by page/half-page motions
// when no viewport height is wired in yet.
const pageSize = 20

func (e *Editor) enterInsert(b *buffer.Buffer, args map[string]any) error {
	pos := primaryPos(b)
	switch args["position"] {
	case "line_start":
		pos.Column = 0
	case "after":
		pos.Column++
	case "line_end":
		pos.Column = lineLen(b, pos.Line)
	case "new_line_below":
		if err := b.Edit(cursor.Range{Start: cursor.Position{Line: pos.Line, Column: lineLen(b, pos.Line)}, End: cursor.Position{Line: pos.Line, Column: lineLen(b, pos.Line)}}, "\n", "open below"); err != nil {
			return err
		}
		pos = cursor.Position{Line: pos.Line + 1, Column: 0}
	case "new_line_above":
		if err := b.Edit(cursor.Range{Start: cursor.Position{Line: pos.Line}, End: cursor.Position{Line: pos.Line}}, "\n", "open above"); err != nil {
			return err
		}
		pos = cursor.Position{Line: pos.Line, Column: 0}
	}
	if err := setPrimaryPos(b, pos); err != nil {
		return err
	}
	return e.modes.SwitchWithContext(mode.ModeInsert, mode.NewContext())
}

// convertKeyEvent adapts a backend.Event into a key.Event, the same
// translation internal/app/eventloop.go performed between tcell's
// wire representation and the modal input packages' own Key/Modifier
// enums (kept identical between the two since both are grounded on
// the teacher's naming).
func convertKeyEvent(ev backend.Event) key.Event {
	k := mapBackendKey(ev.Key, ev.Rune)
	r := ev.Rune

	mods := key.ModNone
	if ev.Mod.Has(backend.ModCtrl) {
		mods = mods.With(key.ModCtrl)
	}
	if ev.Mod.Has(backend.ModAlt) {
		mods = mods.With(key.ModAlt)
	}
	if ev.Mod.Has(backend.ModShift) {
		mods = mods.With(key.ModShift)
	}
	if ev.Mod.Has(backend.ModMeta) {
		mods = mods.With(key.ModMeta)
	}

	// tcell (and this module's backend) report Ctrl+letter as a
	// dedicated Key constant with Rune unset rather than KeyRune plus
	// ModCtrl; normalize to the latter, which is what every mode
	// package's HandleUnmapped matches against.
	if ev.Key >= backend.KeyCtrlA && ev.Key <= backend.KeyCtrlZ {
		k = key.KeyRune
		r = rune('a' + (ev.Key - backend.KeyCtrlA))
		mods = mods.With(key.ModCtrl)
	}

	return key.NewEvent(k, r, mods)
}

func mapBackendKey(bk backend.Key, r rune) key.Key {
	switch bk {
	case backend.KeyRune:
		return key.KeyRune
	case backend.KeyEscape:
		return key.KeyEscape
	case backend.KeyEnter:
		return key.KeyEnter
	case backend.KeyTab:
		return key.KeyTab
	case backend.KeyBackspace:
		return key.KeyBackspace
	case backend.KeyDelete:
		return key.KeyDelete
	case backend.KeyInsert:
		return key.KeyInsert
	case backend.KeyHome:
		return key.KeyHome
	case backend.KeyEnd:
		return key.KeyEnd
	case backend.KeyPageUp:
		return key.KeyPageUp
	case backend.KeyPageDown:
		return key.KeyPageDown
	case backend.KeyUp:
		return key.KeyUp
	case backend.KeyDown:
		return key.KeyDown
	case backend.KeyLeft:
		return key.KeyLeft
	case backend.KeyRight:
		return key.KeyRight
	case backend.KeyF1:
		return key.KeyF1
	case backend.KeyF2:
		return key.KeyF2
	case backend.KeyF3:
		return key.KeyF3
	case backend.KeyF4:
		return key.KeyF4
	case backend.KeyF5:
		return key.KeyF5
	case backend.KeyF6:
		return key.KeyF6
	case backend.KeyF7:
		return key.KeyF7
	case backend.KeyF8:
		return key.KeyF8
	case backend.KeyF9:
		return key.KeyF9
	case backend.KeyF10:
		return key.KeyF10
	case backend.KeyF11:
		return key.KeyF11
	case backend.KeyF12:
		return key.KeyF12
	default:
		if r != 0 {
			return key.KeyRune
		}
		return key.KeyNone
	}
}
