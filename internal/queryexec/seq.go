package queryexec

import (
	"iter"

	"github.com/regulumdb/regulumdb/internal/graph"
)

func empty(func(graph.ID) bool) {}

func single(id graph.ID) iter.Seq[graph.ID] {
	return func(yield func(graph.ID) bool) {
		yield(id)
	}
}

func filter(in iter.Seq[graph.ID], keep func(graph.ID) bool) iter.Seq[graph.ID] {
	return func(yield func(graph.ID) bool) {
		for id := range in {
			if keep(id) && !yield(id) {
				return
			}
		}
	}
}

func nonEmpty(in iter.Seq[graph.ID]) bool {
	for range in {
		return true
	}
	return false
}

// unique drops repeats, keeping first occurrences in order.
func unique(in iter.Seq[graph.ID]) iter.Seq[graph.ID] {
	return func(yield func(graph.ID) bool) {
		seen := make(map[graph.ID]struct{})
		for id := range in {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if !yield(id) {
				return
			}
		}
	}
}

func skip(in iter.Seq[graph.ID], n int) iter.Seq[graph.ID] {
	if n <= 0 {
		return in
	}
	return func(yield func(graph.ID) bool) {
		i := 0
		for id := range in {
			if i < n {
				i++
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}

func take(in iter.Seq[graph.ID], n int) iter.Seq[graph.ID] {
	return func(yield func(graph.ID) bool) {
		if n <= 0 {
			return
		}
		i := 0
		for id := range in {
			if !yield(id) {
				return
			}
			i++
			if i == n {
				return
			}
		}
	}
}
