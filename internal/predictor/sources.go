package predictor

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/keystorm/internal/async"
)

// FilesystemSource completes file paths under Root, grounded on
// FuzzySearcher's cancellable directory walk: it checks n on every
// visited entry so a large tree doesn't block the evaluator goroutine
// past the point the query was cancelled.
type FilesystemSource struct {
	Root string
}

func (s FilesystemSource) Name() string  { return "filesystem" }
func (s FilesystemSource) Priority() int { return 10 }

func (s FilesystemSource) Complete(n *async.Notification, q Query) []Result {
	root := s.Root
	if root == "" {
		root = "."
	}
	var out []Result
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if n.IsCancelled() {
			return filepath.SkipAll
		}
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if !hasPrefixFold(d.Name(), q.Prefix) {
			return nil
		}
		out = append(out, Result{
			Text:   rel,
			Score:  1.0 / float64(1+strings.Count(rel, string(filepath.Separator))),
			Source: s.Name(),
		})
		return nil
	})
	return out
}

// DictionarySource completes against a fixed, sorted word list —
// grounded on the same prefix-narrowing shape FuzzySearcher applies to
// its in-memory index, minus the index: a dictionary is small enough
// to scan directly.
type DictionarySource struct {
	Words []string
}

func (s DictionarySource) Name() string  { return "dictionary" }
func (s DictionarySource) Priority() int { return 5 }

func (s DictionarySource) Complete(n *async.Notification, q Query) []Result {
	if q.Prefix == "" {
		return nil
	}
	var out []Result
	for i, w := range s.Words {
		if i%256 == 0 && n.IsCancelled() {
			break
		}
		if hasPrefixFold(w, q.Prefix) {
			out = append(out, Result{Text: w, Score: scoreByLength(w, q.Prefix), Source: s.Name()})
		}
	}
	return out
}

// SyntaxSource completes against a language's reserved words and
// declared identifiers, treated as a static keyword table for the
// purposes of this framework (a real syntax predictor would draw the
// identifier half from the incremental parse-tree cache).
type SyntaxSource struct {
	Keywords []string
}

func (s SyntaxSource) Name() string  { return "syntax" }
func (s SyntaxSource) Priority() int { return 8 }

func (s SyntaxSource) Complete(n *async.Notification, q Query) []Result {
	var out []Result
	for _, kw := range s.Keywords {
		if n.IsCancelled() {
			break
		}
		if hasPrefixFold(kw, q.Prefix) {
			out = append(out, Result{Text: kw, Score: scoreByLength(kw, q.Prefix) + 0.1, Source: s.Name()})
		}
	}
	return out
}

// PrecomputedSource completes against a caller-supplied, already
// scored candidate list — the "precomputed" source named in §2, used
// for things like a recent-files or recent-commands history where
// ranking was decided at insertion time rather than at query time.
type PrecomputedSource struct {
	Candidates []Result
}

func (s PrecomputedSource) Name() string  { return "precomputed" }
func (s PrecomputedSource) Priority() int { return 15 }

func (s PrecomputedSource) Complete(n *async.Notification, q Query) []Result {
	var out []Result
	for _, c := range s.Candidates {
		if n.IsCancelled() {
			break
		}
		if hasPrefixFold(c.Text, q.Prefix) {
			r := c
			r.Source = s.Name()
			out = append(out, r)
		}
	}
	return out
}

func hasPrefixFold(s, prefix string) bool {
	if prefix == "" {
		return true
	}
	if len(prefix) > len(s) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

func scoreByLength(candidate, prefix string) float64 {
	if len(candidate) == 0 {
		return 0
	}
	return float64(len(prefix)) / float64(len(candidate))
}

// SortedDictionary is a helper for building a DictionarySource from an
// unsorted word list, keeping Words in the sorted order a real
// dictionary file would already be in.
func SortedDictionary(words []string) DictionarySource {
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	return DictionarySource{Words: sorted}
}
