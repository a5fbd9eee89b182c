// Package predictor implements the async completion-source framework
// consumed by interactive prompts (§2 "Predictor framework", §4.6, §8
// P7): a Source produces candidate completions for a prefix, a
// Registry fans a query out to every registered source on the shared
// async.Evaluator, and the merged Completion is delivered through an
// async.Value so the caller's future resolves exactly once — with
// cancelled=true and no further work if the query's Notification is
// cancelled before every source finishes.
//
// Grounded on internal/integration/task/sources' Source shape
// (Name/Priority/Discover, cancellation checked inside the discovery
// loop) and internal/project/search's FuzzySearcher (a cancellable
// walk that still returns partial, ranked results). Individual
// predictors are peripheral per the framework's own scope note (5%);
// the four sources here are grounded, workable defaults, not the
// full editor's real completion catalog.
package predictor

import (
	"sort"
	"sync"

	"github.com/dshills/keystorm/internal/async"
)

// Query describes one completion request.
type Query struct {
	// Prefix is the text already typed that candidates must extend.
	Prefix string
	// Path is the buffer's file path, used by sources that care about
	// location (filesystem, syntax). Empty for an unsaved buffer.
	Path string
	// Limit caps the number of results returned across all sources.
	// Zero means unlimited.
	Limit int
}

// Result is one candidate completion.
type Result struct {
	Text   string
	Score  float64
	Source string
}

// Completion is what a Registry delivers: either a merged, ranked
// result set, or Cancelled=true if the query's Notification fired
// before every source finished (§8 P7).
type Completion struct {
	Results   []Result
	Cancelled bool
}

// Source is one async completion provider. Complete runs on a
// background goroutine (an Evaluator's worker) and must check n
// periodically during any unbounded work (a directory walk, a large
// word list) and return whatever it has so far once n is cancelled.
type Source interface {
	Name() string
	Priority() int
	Complete(n *async.Notification, q Query) []Result
}

// Registry fans a Query out to every registered Source.
type Registry struct {
	sources []Source
}

// NewRegistry builds a Registry from an initial source set.
func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: append([]Source(nil), sources...)}
}

// Add registers an additional source.
func (r *Registry) Add(s Source) {
	r.sources = append(r.sources, s)
}

// Complete submits q to every registered source on e and returns a
// Value that resolves once all sources have reported or n is
// cancelled, whichever comes first. Cancellation always resolves the
// Value on the goroutine that calls n.Cancel, satisfying P7's "within
// the next main-loop iteration" requirement as long as the caller's
// main loop drains its Queue promptly.
func (r *Registry) Complete(e *async.Evaluator, n *async.Notification, q Query) *async.Value[Completion] {
	out := async.NewValue[Completion]()
	var once sync.Once
	finish := func(c Completion) {
		once.Do(func() { out.Produce(c) })
	}

	n.OnCancel(func() { finish(Completion{Cancelled: true}) })

	if len(r.sources) == 0 {
		finish(Completion{})
		return out
	}

	var mu sync.Mutex
	remaining := len(r.sources)
	var merged []Result

	for _, src := range r.sources {
		src := src
		e.Submit(func() any {
			if n.IsCancelled() {
				return nil
			}
			return src.Complete(n, q)
		}, func(res any) {
			mu.Lock()
			if results, ok := res.([]Result); ok {
				merged = append(merged, results...)
			}
			remaining--
			done := remaining == 0
			snapshot := append([]Result(nil), merged...)
			mu.Unlock()
			if done {
				finish(Completion{Results: rank(snapshot, q.Limit)})
			}
		})
	}
	return out
}

// rank sorts by descending score (ties broken by shorter text, then
// name) and applies limit if positive.
func rank(results []Result, limit int) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return len(results[i].Text) < len(results[j].Text)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
