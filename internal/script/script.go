// Package script wraps gopher-lua behind the opaque "expression
// evaluator" collaborator that transform.Structure resolution and
// keymap binding depend on (§6): evaluate an expression against an
// environment, where environments are variable bags, and bind Go
// callbacks that Lua-side keymaps can invoke.
//
// Grounded on internal/plugin/lua.State for the SkipOpenLibs-then-
// open-selectively sandboxing pattern and internal/plugin/lua.Bridge
// for Lua-value/Go-value conversion, but collapsed to single-goroutine
// synchronous calls instead of internal/plugin/lua.Executor's
// channel-serialized worker: this spec's editor loop is already
// single-threaded cooperative (§5), so there is no concurrent caller
// to serialize against.
package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ErrEngineClosed is returned by any operation on a closed Engine.
var ErrEngineClosed = errors.New("script: engine is closed")

// Value is a Go-side representation of a script value: exactly the
// variants named by the variable bag's `bool | int | string |
// script-value` union, plus nil for Lua's absence-of-a-value.
type Value struct {
	kind valueKind
	b    bool
	i    int64
	f    float64
	s    string
}

type valueKind int

const (
	kindNil valueKind = iota
	kindBool
	kindInt
	kindFloat
	kindString
)

// Nil is the absent value.
var Nil = Value{kind: kindNil}

func Bool(b bool) Value     { return Value{kind: kindBool, b: b} }
func Int(i int64) Value     { return Value{kind: kindInt, i: i} }
func Float(f float64) Value { return Value{kind: kindFloat, f: f} }
func String(s string) Value { return Value{kind: kindString, s: s} }

// IsNil reports whether v carries no value.
func (v Value) IsNil() bool { return v.kind == kindNil }

// AsBool returns v's boolean interpretation: nil and zero values are
// false, everything else true, matching Lua truthiness except that
// Lua treats 0 as truthy — this bag intentionally does not, since the
// buffer's own boolean variables (§3) need ordinary Go semantics.
func (v Value) AsBool() bool {
	switch v.kind {
	case kindNil:
		return false
	case kindBool:
		return v.b
	case kindInt:
		return v.i != 0
	case kindFloat:
		return v.f != 0
	case kindString:
		return v.s != ""
	default:
		return false
	}
}

func (v Value) AsInt() int64 {
	switch v.kind {
	case kindInt:
		return v.i
	case kindFloat:
		return int64(v.f)
	case kindBool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) AsFloat() float64 {
	switch v.kind {
	case kindFloat:
		return v.f
	case kindInt:
		return float64(v.i)
	default:
		return 0
	}
}

func (v Value) AsString() string {
	switch v.kind {
	case kindString:
		return v.s
	case kindInt:
		return fmt.Sprintf("%d", v.i)
	case kindFloat:
		return fmt.Sprintf("%g", v.f)
	case kindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Env is a variable bag consulted and updated by evaluated
// expressions. It intentionally exposes only Get/Set of Values, not
// the interning-to-numeric-descriptor machinery internal to
// buffer.Variables — Env is the plugin-facing surface, Variables the
// storage backend.
type Env interface {
	Get(name string) (Value, bool)
	Set(name string, v Value)
}

// MapEnv is a minimal Env backed by a plain map, sufficient for
// scoped/local script environments that don't need to be backed by a
// buffer's persistent variable bag.
type MapEnv map[string]Value

func (e MapEnv) Get(name string) (Value, bool) { v, ok := e[name]; return v, ok }
func (e MapEnv) Set(name string, v Value)      { e[name] = v }

// Engine evaluates expressions against an Env. It wraps a single
// gopher-lua state and must only be used from one goroutine at a
// time — the same restriction the teacher documents on lua.State.
type Engine struct {
	l      *lua.LState
	closed bool
}

// New creates a sandboxed Engine: base, table, string, and math
// libraries only, matching the teacher's openSafeLibraries — no io/
// os/debug/package, since a keymap expression has no business
// touching the filesystem or process state directly.
func New() *Engine {
	l := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(l)
	lua.OpenTable(l)
	lua.OpenString(l)
	lua.OpenMath(l)
	return &Engine{l: l}
}

// Close releases the underlying Lua state.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.l.Close()
}

// Evaluate compiles and runs expression as a Lua chunk with env's
// entries installed as globals beforehand, returning the chunk's
// first return value converted to a Value. Globals mutated by the
// chunk are written back into env afterward, so a script can update
// the buffer's variable bag through ordinary Lua assignment.
func (e *Engine) Evaluate(expression string, env Env) (Value, error) {
	if e.closed {
		return Nil, ErrEngineClosed
	}
	if m, ok := env.(MapEnv); ok {
		for name, v := range m {
			e.l.SetGlobal(name, toLua(e.l, v))
		}
	}

	fn, err := e.l.LoadString(expression)
	if err != nil {
		return Nil, fmt.Errorf("script: parse %q: %w", expression, err)
	}
	e.l.Push(fn)
	if err := e.l.PCall(0, 1, nil); err != nil {
		return Nil, fmt.Errorf("script: eval %q: %w", expression, err)
	}
	ret := e.l.Get(-1)
	e.l.Pop(1)

	if m, ok := env.(MapEnv); ok {
		for name := range m {
			m.Set(name, toValue(e.l.GetGlobal(name)))
		}
	}
	return toValue(ret), nil
}

// Bind installs fn as a global Lua function so keymaps and other
// scripts can call name(...) from within an evaluated expression;
// this is the "callback binding for keymaps" collaborator named in
// §6.
func (e *Engine) Bind(name string, fn func(args []Value) Value) {
	e.l.SetGlobal(name, e.l.NewFunction(func(l *lua.LState) int {
		n := l.GetTop()
		args := make([]Value, n)
		for i := 1; i <= n; i++ {
			args[i-1] = toValue(l.Get(i))
		}
		l.Push(toLua(l, fn(args)))
		return 1
	}))
}

func toLua(l *lua.LState, v Value) lua.LValue {
	switch v.kind {
	case kindBool:
		return lua.LBool(v.b)
	case kindInt:
		return lua.LNumber(v.i)
	case kindFloat:
		return lua.LNumber(v.f)
	case kindString:
		return lua.LString(v.s)
	default:
		return lua.LNil
	}
}

func toValue(lv lua.LValue) Value {
	switch v := lv.(type) {
	case lua.LBool:
		return Bool(bool(v))
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return Int(int64(f))
		}
		return Float(f)
	case lua.LString:
		return String(string(v))
	default:
		return Nil
	}
}
