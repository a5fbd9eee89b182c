package async

// Evaluator runs exactly one background goroutine that executes
// submitted work serially and posts each result onto a main Queue as
// a callback — the only point where this package crosses a goroutine
// boundary. Everything downstream of that callback (buffer mutation,
// widget invalidation) runs on the main loop that owns the Queue.
type Evaluator struct {
	main  *Queue
	tasks chan func()
	done  chan struct{}
}

// NewEvaluator starts an Evaluator whose results are delivered to
// main. Callers must call Shutdown when the evaluator is no longer
// needed, or its worker goroutine leaks.
func NewEvaluator(main *Queue) *Evaluator {
	e := &Evaluator{main: main, tasks: make(chan func(), 64), done: make(chan struct{})}
	go e.run()
	return e
}

func (e *Evaluator) run() {
	defer close(e.done)
	for fn := range e.tasks {
		fn()
	}
}

// Submit runs work on the background goroutine and, once it returns,
// pushes a callback onto the main Queue that calls onResult with the
// return value. onResult therefore always runs on the main loop.
func (e *Evaluator) Submit(work func() any, onResult func(any)) {
	e.tasks <- func() {
		result := work()
		e.main.Push(func() { onResult(result) })
	}
}

// SubmitValue is Submit specialized to complete a Value[T], the common
// case: async work produces a value.T and nothing else needs to run
// on the background goroutine.
func SubmitValue[T any](e *Evaluator, work func() T, v *Value[T]) {
	e.Submit(func() any { return work() }, func(res any) { v.Produce(res.(T)) })
}

// Shutdown stops accepting new work and blocks until the background
// goroutine drains its queue and exits.
func (e *Evaluator) Shutdown() {
	close(e.tasks)
	<-e.done
}
