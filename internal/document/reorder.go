package document

import (
	"container/heap"
	"fmt"

	"github.com/regulumdb/regulumdb/internal/ir"
)

// indexed is one worker result tagged with its position in the work list.
type indexed struct {
	index int
	doc   *ir.IRObject
}

type indexHeap []indexed

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i].index < h[j].index }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *indexHeap) Push(x any) { *h = append(*h, x.(indexed)) }

func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// reorderBuffer restores work-list order over results that arrive in any
// order. It is owned by the single collector goroutine.
type reorderBuffer struct {
	pending indexHeap
	next    int
	peak    int
}

// add buffers r and returns every result that is now contiguous with the
// next expected index, in order.
func (b *reorderBuffer) add(r indexed) []indexed {
	if r.index < b.next {
		panic(fmt.Sprintf("document: result %d delivered twice", r.index))
	}
	heap.Push(&b.pending, r)
	b.peak = max(b.peak, b.pending.Len())

	var ready []indexed
	for b.pending.Len() > 0 && b.pending[0].index == b.next {
		ready = append(ready, heap.Pop(&b.pending).(indexed))
		b.next++
	}
	return ready
}

// finish asserts that nothing is left buffered once every worker is done.
func (b *reorderBuffer) finish() {
	if b.pending.Len() != 0 {
		panic(fmt.Sprintf("document: %d results left in reorder buffer, next expected %d, lowest buffered %d",
			b.pending.Len(), b.next, b.pending[0].index))
	}
}
