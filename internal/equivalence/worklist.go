package equivalence

import (
	"container/heap"

	"github.com/jacoelho/afa/internal/boolexpr"
)

type pending[S any] struct {
	left, right boolexpr.Expr
	witness     []S
	seq         int
}

// worklist pops smaller configuration pairs first, then shorter witnesses,
// then older entries.
type worklist[S any] struct {
	items []pending[S]
	seq   int
}

func (w *worklist[S]) Len() int { return len(w.items) }

func (w *worklist[S]) Less(i, j int) bool {
	a, b := w.items[i], w.items[j]
	if sa, sb := a.left.Size()+a.right.Size(), b.left.Size()+b.right.Size(); sa != sb {
		return sa < sb
	}
	if len(a.witness) != len(b.witness) {
		return len(a.witness) < len(b.witness)
	}
	return a.seq < b.seq
}

func (w *worklist[S]) Swap(i, j int) { w.items[i], w.items[j] = w.items[j], w.items[i] }

func (w *worklist[S]) Push(x any) { w.items = append(w.items, x.(pending[S])) }

func (w *worklist[S]) Pop() any {
	n := len(w.items)
	it := w.items[n-1]
	w.items = w.items[:n-1]
	return it
}

func (w *worklist[S]) push(left, right boolexpr.Expr, witness []S) {
	heap.Push(w, pending[S]{left: left, right: right, witness: witness, seq: w.seq})
	w.seq++
}

func (w *worklist[S]) pop() pending[S] {
	return heap.Pop(w).(pending[S])
}
