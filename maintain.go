package maxima

import (
	"github.com/hupe1980/maxima/internal/arena"
	"github.com/hupe1980/maxima/internal/treap"
)

// A single-point mutation can change local-maximum status only for the
// mutated point and its two immediate neighbors, so each transaction performs
// O(1) amortized MaximaIndex edits plus the O(log) lookups below.
//
// Transactions follow one discipline throughout this file: all fallible work
// (comparisons, index lookups, index insertions) happens first, with every
// MaximaIndex insertion recorded in an undo log; handle-based removals, which
// cannot fail, are applied last. A failure therefore only ever has insertions
// to unwind.

// setValue runs the insert-or-replace transaction for SetValue.
func (f *FunctionMaxima[A, V]) setValue(a A, v V) (rolledBack bool, err error) {
	// Locate any point currently at a and, if registered, its place in
	// the maxima index. Both lookups are read-only.
	prev, err := f.fn.Find(f.byArg(a))
	if err != nil {
		return false, err
	}
	var prevMax *treap.Node[arena.Handle]
	if prev != nil {
		prevMax, err = f.mx.Find(f.byRank(prev.Item()))
		if err != nil {
			return false, err
		}
	}

	// Insert the replacement point. Ties descend left, so it lands
	// immediately before the point it replaces, which stays physically
	// present until the housekeeping step and is treated as absent (the
	// omission) by every neighbor computation in between.
	h := f.points.Alloc(Point[A, V]{arg: a, value: v})
	it, err := f.fn.Insert(h, f.byArg(a))
	if err != nil {
		f.points.Release(h)
		return false, err
	}

	var undo []*treap.Node[arena.Handle]
	if err := f.updateMaxima(it, prev, &undo); err != nil {
		f.unwind(undo)
		f.fn.Remove(it)
		f.points.Release(h)
		return true, err
	}

	// Housekeeping: the replaced point leaves both indexes. Handle-based
	// removals only; nothing here can fail.
	if prev != nil {
		old := prev.Item()
		if prevMax != nil {
			f.mx.Remove(prevMax)
			f.points.Release(old)
		}
		f.fn.Remove(prev)
		f.points.Release(old)
	}
	return false, nil
}

// eraseValue runs the removal transaction for Erase.
func (f *FunctionMaxima[A, V]) eraseValue(a A) (rolledBack bool, err error) {
	it, err := f.fn.Find(f.byArg(a))
	if err != nil {
		return false, err
	}
	if it == nil {
		return false, nil
	}
	maxIt, err := f.mx.Find(f.byRank(it.Item()))
	if err != nil {
		return false, err
	}

	// The erased point is its own omission: it can never re-register
	// itself, and its neighbors are evaluated as if it were already gone.
	var undo []*treap.Node[arena.Handle]
	if err := f.updateMaxima(it, it, &undo); err != nil {
		f.unwind(undo)
		return true, err
	}

	// The primary index was untouched up to here, so success needs no
	// rollback window: just drop the point from both indexes.
	h := it.Item()
	f.fn.Remove(it)
	f.points.Release(h)
	if maxIt != nil {
		f.mx.Remove(maxIt)
		f.points.Release(h)
	}
	return false, nil
}

// updateMaxima recomputes local-maximum status around it, treating omit as
// already absent. Insertions into the maxima index are appended to undo;
// demotions are collected while fallible work remains and applied at the
// very end.
func (f *FunctionMaxima[A, V]) updateMaxima(it, omit *treap.Node[arena.Handle], undo *[]*treap.Node[arena.Handle]) error {
	ok, err := f.isLocalMaximum(it, omit)
	if err != nil {
		return err
	}
	if ok {
		if err := f.promote(it.Item(), undo); err != nil {
			return err
		}
	}

	var left, right *treap.Node[arena.Handle]
	if ln := neighbor(it, omit, false); ln != nil {
		left, err = f.demotion(ln, omit, undo)
		if err != nil {
			return err
		}
	}
	if rn := neighbor(it, omit, true); rn != nil {
		right, err = f.demotion(rn, omit, undo)
		if err != nil {
			return err
		}
	}

	if left != nil {
		f.dropMaximum(left)
	}
	if right != nil {
		f.dropMaximum(right)
	}
	return nil
}

// demotion reports whether the point at n must leave the maxima index.
// When n is still, or newly, a local maximum it is registered if missing;
// this covers a neighbor taking over the role of an erased point. The
// returned node, if any, is removed by the caller once no fallible work
// remains.
func (f *FunctionMaxima[A, V]) demotion(n, omit *treap.Node[arena.Handle], undo *[]*treap.Node[arena.Handle]) (*treap.Node[arena.Handle], error) {
	reg, err := f.mx.Find(f.byRank(n.Item()))
	if err != nil {
		return nil, err
	}
	ok, err := f.isLocalMaximum(n, omit)
	if err != nil {
		return nil, err
	}
	if ok {
		if reg == nil {
			if err := f.promote(n.Item(), undo); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	return reg, nil
}

// isLocalMaximum reports whether the point at it is a local maximum of the
// sequence with omit treated as absent. The omitted point itself is never a
// local maximum.
func (f *FunctionMaxima[A, V]) isLocalMaximum(it, omit *treap.Node[arena.Handle]) (bool, error) {
	if it == omit {
		return false, nil
	}
	p := f.points.Get(it.Item())

	if ln := neighbor(it, omit, false); ln != nil {
		c, err := f.cmpVal(p.value, f.points.Get(ln.Item()).value)
		if err != nil {
			return false, err
		}
		if c < 0 {
			return false, nil
		}
	}
	if rn := neighbor(it, omit, true); rn != nil {
		c, err := f.cmpVal(p.value, f.points.Get(rn.Item()).value)
		if err != nil {
			return false, err
		}
		if c < 0 {
			return false, nil
		}
	}
	return true, nil
}

// promote inserts the point at h into the maxima index and records the
// insertion for undo.
func (f *FunctionMaxima[A, V]) promote(h arena.Handle, undo *[]*treap.Node[arena.Handle]) error {
	n, err := f.mx.Insert(h, f.byRank(h))
	if err != nil {
		return err
	}
	f.points.Retain(h)
	*undo = append(*undo, n)
	return nil
}

// dropMaximum removes a registered maximum by its node handle.
func (f *FunctionMaxima[A, V]) dropMaximum(n *treap.Node[arena.Handle]) {
	h := n.Item()
	f.mx.Remove(n)
	f.points.Release(h)
}

// unwind reverses the recorded maxima insertions of a failed transaction,
// newest first.
func (f *FunctionMaxima[A, V]) unwind(undo []*treap.Node[arena.Handle]) {
	for i := len(undo) - 1; i >= 0; i-- {
		f.dropMaximum(undo[i])
	}
	f.metrics.RecordRollback()
}

// neighbor returns the effective neighbor of n on one side (right selects
// the successor direction), skipping omit: when the immediate neighbor is
// the omitted point the next one over is used, including when the omitted
// point sits at the sequence boundary. nil means that side imposes no
// constraint.
func neighbor[T any](n, omit *treap.Node[T], right bool) *treap.Node[T] {
	m := step(n, right)
	if m != nil && m == omit {
		m = step(m, right)
	}
	return m
}

func step[T any](n *treap.Node[T], right bool) *treap.Node[T] {
	if right {
		return n.Next()
	}
	return n.Prev()
}
