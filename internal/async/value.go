package async

import "sync"

// Value is a one-shot future. Exactly two orderings are legal:
// register a consumer with OnReady before Produce is called, or call
// Produce before OnReady registers a consumer — either side can go
// first, but Produce and OnReady may each only be called once. A
// second call to either panics, since it would mean two different
// parts of the pipeline both believe they own the single production
// or the single consumption.
type Value[T any] struct {
	mu       sync.Mutex
	produced bool
	consumed bool
	val      T
	consumer func(T)
}

// NewValue returns a not-yet-produced Value.
func NewValue[T any]() *Value[T] { return &Value[T]{} }

// Produce supplies the value. If a consumer is already registered, it
// runs immediately on the calling goroutine (the caller — typically an
// Evaluator's worker — is responsible for hopping back onto the main
// Queue first if that matters).
func (v *Value[T]) Produce(val T) {
	v.mu.Lock()
	if v.produced {
		v.mu.Unlock()
		panic("async: Value produced twice")
	}
	v.produced = true
	v.val = val
	consumer := v.consumer
	if consumer == nil {
		v.mu.Unlock()
		return
	}
	v.consumed = true
	v.mu.Unlock()
	consumer(val)
}

// OnReady registers the consumer. If the value was already produced,
// consumer runs immediately on the calling goroutine.
func (v *Value[T]) OnReady(consumer func(T)) {
	v.mu.Lock()
	if v.consumer != nil || v.consumed {
		v.mu.Unlock()
		panic("async: Value consumer already set")
	}
	if v.produced {
		v.consumed = true
		val := v.val
		v.mu.Unlock()
		consumer(val)
		return
	}
	v.consumer = consumer
	v.mu.Unlock()
}

// Ready reports whether Produce has already been called.
func (v *Value[T]) Ready() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.produced
}

// Transform returns a new Value that resolves to f(val) once v
// resolves. f runs on whichever goroutine ultimately calls v.Produce.
func Transform[T, U any](v *Value[T], f func(T) U) *Value[U] {
	out := NewValue[U]()
	v.OnReady(func(val T) { out.Produce(f(val)) })
	return out
}

// ForEach registers f to run with v's value once it resolves; used
// when the continuation produces no further Value of its own.
func ForEach[T any](v *Value[T], f func(T)) {
	v.OnReady(f)
}

// While drives an asynchronous loop: while cond holds, step is called
// with a done callback the caller must invoke exactly once when that
// iteration's asynchronous work completes, at which point cond is
// re-checked. If step calls done synchronously, the loop recurses on
// the calling goroutine.
func While(cond func() bool, step func(done func())) {
	if !cond() {
		return
	}
	step(func() { While(cond, step) })
}
