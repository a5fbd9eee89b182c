package buffer

import (
	"sync"

	"github.com/dshills/keystorm/internal/script"
)

// Variables is the buffer's typed variable bag (§3, §9 "intern
// variable descriptors to numeric ids"): string names are interned
// once into a small integer descriptor, and storage is a dense slice
// indexed by that descriptor rather than a map keyed by string on
// every access — the id lookup happens once per distinct name, not
// once per line the way a per-line copy of a string-keyed map would.
//
// Grounded on internal/config/registry.Setting's typed-descriptor
// metadata, adapted from a path-keyed map of *Setting definitions to
// an interned dense vector of live script.Value storage, since a
// buffer's variables are read on every keystroke (tab width, reload
// policy) where the registry's settings are read at config-load time.
type Variables struct {
	mu    sync.RWMutex
	ids   map[string]int
	names []string
	vals  []script.Value
}

// NewVariables returns an empty variable bag.
func NewVariables() *Variables {
	return &Variables{ids: make(map[string]int)}
}

// Descriptor interns name, returning its numeric id. Repeated calls
// with the same name return the same id.
func (v *Variables) Descriptor(name string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.internLocked(name)
}

func (v *Variables) internLocked(name string) int {
	if id, ok := v.ids[name]; ok {
		return id
	}
	id := len(v.names)
	v.ids[name] = id
	v.names = append(v.names, name)
	v.vals = append(v.vals, script.Nil)
	return id
}

// Get returns the value stored under name, and whether that value is
// currently something other than nil.
func (v *Variables) Get(name string) (script.Value, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.ids[name]
	if !ok {
		return script.Nil, false
	}
	val := v.vals[id]
	return val, !val.IsNil()
}

// GetByID returns the value at a previously interned descriptor.
func (v *Variables) GetByID(id int) script.Value {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if id < 0 || id >= len(v.vals) {
		return script.Nil
	}
	return v.vals[id]
}

// Set interns name if necessary and stores val under it.
func (v *Variables) Set(name string, val script.Value) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.internLocked(name)
	v.vals[id] = val
}

// SetByID stores val at a previously interned descriptor.
func (v *Variables) SetByID(id int, val script.Value) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if id < 0 || id >= len(v.vals) {
		return
	}
	v.vals[id] = val
}

// Bool, Int, and String are convenience readers over Get, defaulting
// when the variable is unset — the shape most call sites want for
// things like reload_after_exit or default_reload_after_exit.
func (v *Variables) Bool(name string, def bool) bool {
	if val, ok := v.Get(name); ok {
		return val.AsBool()
	}
	return def
}

func (v *Variables) Int(name string, def int64) int64 {
	if val, ok := v.Get(name); ok {
		return val.AsInt()
	}
	return def
}

func (v *Variables) String(name string, def string) string {
	if val, ok := v.Get(name); ok {
		return val.AsString()
	}
	return def
}
