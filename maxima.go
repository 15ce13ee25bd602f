package maxima

import (
	"cmp"
	"iter"
	"time"

	"github.com/hupe1980/maxima/internal/arena"
	"github.com/hupe1980/maxima/internal/treap"
)

// CompareFunc orders two values of type T. It returns a negative number when
// a sorts before b, zero when they are equal and a positive number when a
// sorts after b.
//
// A CompareFunc may fail. When a comparison fails inside SetValue or Erase,
// the transaction unwinds every edit it has performed and the comparison
// error is returned to the caller unchanged.
type CompareFunc[T any] func(a, b T) (int, error)

// Ordered returns an infallible CompareFunc for naturally ordered types.
func Ordered[T cmp.Ordered]() CompareFunc[T] {
	return func(a, b T) (int, error) {
		return cmp.Compare(a, b), nil
	}
}

// Point is one (argument, value) record of the function. Points are
// immutable: updating the value at an argument replaces the whole record.
// Both internal indexes refer to the same record, never to copies.
type Point[A, V any] struct {
	arg   A
	value V
}

// Arg returns the point's argument.
func (p Point[A, V]) Arg() A { return p.arg }

// Value returns the point's value.
func (p Point[A, V]) Value() V { return p.value }

// FunctionMaxima is a dynamic partial function from arguments of type A to
// values of type V that additionally maintains an always-current index of
// the function's local maxima.
//
// A point is a local maximum when its value is not exceeded by the value of
// either argument-adjacent neighbor; boundary points are constrained only on
// their single existing side, and points of an equal-valued plateau are all
// local maxima at once.
//
// Every mutating call is a transaction: if a user-supplied comparison fails
// partway through, all edits performed so far are rolled back and the
// observable state is exactly as it was before the call.
//
// FunctionMaxima is not safe for concurrent use. Each instance owns its
// indexes exclusively; see the package documentation for the full model.
type FunctionMaxima[A, V any] struct {
	cmpArg CompareFunc[A]
	cmpVal CompareFunc[V]

	points *arena.Arena[Point[A, V]]
	fn     *treap.Tree[arena.Handle] // by argument
	mx     *treap.Tree[arena.Handle] // by (value desc, argument asc)

	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty FunctionMaxima for naturally ordered argument and
// value types.
func New[A, V cmp.Ordered](opts ...Option) *FunctionMaxima[A, V] {
	return NewFunc[A, V](Ordered[A](), Ordered[V](), opts...)
}

// NewFunc creates an empty FunctionMaxima ordered by the given comparison
// functions. cmpArg orders arguments, cmpVal orders values.
func NewFunc[A, V any](cmpArg CompareFunc[A], cmpVal CompareFunc[V], opts ...Option) *FunctionMaxima[A, V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &FunctionMaxima[A, V]{
		cmpArg:  cmpArg,
		cmpVal:  cmpVal,
		points:  arena.New[Point[A, V]](),
		fn:      treap.New[arena.Handle](),
		mx:      treap.New[arena.Handle](),
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// ValueAt returns the value at argument a. It returns ErrNotFound when a is
// not part of the function's current domain. O(log n).
func (f *FunctionMaxima[A, V]) ValueAt(a A) (V, error) {
	start := time.Now()

	var zero V
	it, err := f.fn.Find(f.byArg(a))
	if err == nil && it == nil {
		err = ErrNotFound
	}
	f.metrics.RecordLookup(time.Since(start), err)
	if err != nil {
		return zero, err
	}
	return f.points.Get(it.Item()).value, nil
}

// SetValue inserts or replaces the value at argument a. O(log n).
//
// On a comparison failure the call returns that error unchanged and the
// function is exactly as it was before the call.
func (f *FunctionMaxima[A, V]) SetValue(a A, v V) error {
	start := time.Now()

	rolledBack, err := f.setValue(a, v)
	f.metrics.RecordSet(time.Since(start), err)
	f.logger.LogSet(f.fn.Len(), rolledBack, err)
	return err
}

// Erase removes argument a from the function's domain. Erasing an absent
// argument is a no-op. O(log n).
//
// On a comparison failure the call returns that error unchanged and the
// function is exactly as it was before the call.
func (f *FunctionMaxima[A, V]) Erase(a A) error {
	start := time.Now()

	rolledBack, err := f.eraseValue(a)
	f.metrics.RecordErase(time.Since(start), err)
	f.logger.LogErase(f.fn.Len(), rolledBack, err)
	return err
}

// Size returns the number of points in the function's domain. O(1).
func (f *FunctionMaxima[A, V]) Size() int {
	return f.fn.Len()
}

// Find returns a cursor positioned at argument a in argument order, or an
// invalid cursor when a is absent. O(log n).
func (f *FunctionMaxima[A, V]) Find(a A) (Cursor[A, V], error) {
	it, err := f.fn.Find(f.byArg(a))
	if err != nil {
		return Cursor[A, V]{}, err
	}
	return Cursor[A, V]{f: f, n: it}, nil
}

// Points returns an iterator over all points in ascending-argument order.
// The function must not be mutated between starting the sequence and
// finishing the traversal; restarting the sequence begins a fresh pass.
func (f *FunctionMaxima[A, V]) Points() iter.Seq[Point[A, V]] {
	return func(yield func(Point[A, V]) bool) {
		for h := range f.fn.All() {
			if !yield(*f.points.Get(h)) {
				return
			}
		}
	}
}

// Maxima returns an iterator over the current local maxima in (value
// descending, argument ascending) order, under the same stability contract
// as Points.
func (f *FunctionMaxima[A, V]) Maxima() iter.Seq[Point[A, V]] {
	return func(yield func(Point[A, V]) bool) {
		for h := range f.mx.All() {
			if !yield(*f.points.Get(h)) {
				return
			}
		}
	}
}

// Clone returns an independent copy of the function. The copy is built in
// full from the source's already-sorted sequences, without invoking any
// comparison function, and only then returned: cloning cannot leave a
// partially constructed result behind.
func (f *FunctionMaxima[A, V]) Clone() *FunctionMaxima[A, V] {
	c := &FunctionMaxima[A, V]{
		cmpArg:  f.cmpArg,
		cmpVal:  f.cmpVal,
		points:  arena.New[Point[A, V]](),
		logger:  f.logger,
		metrics: f.metrics,
	}

	remap := make(map[arena.Handle]arena.Handle, f.fn.Len())
	byArg := make([]arena.Handle, 0, f.fn.Len())
	for h := range f.fn.All() {
		nh := c.points.Alloc(*f.points.Get(h))
		remap[h] = nh
		byArg = append(byArg, nh)
	}
	c.fn = treap.FromSorted(byArg)

	byRank := make([]arena.Handle, 0, f.mx.Len())
	for h := range f.mx.All() {
		nh := remap[h]
		c.points.Retain(nh)
		byRank = append(byRank, nh)
	}
	c.mx = treap.FromSorted(byRank)

	return c
}

// Cursor is a position in the function's ascending-argument order.
// The zero Cursor is invalid. A cursor is valid only as long as the point it
// refers to stays in the function.
type Cursor[A, V any] struct {
	f *FunctionMaxima[A, V]
	n *treap.Node[arena.Handle]
}

// Valid reports whether the cursor refers to a point.
func (c Cursor[A, V]) Valid() bool {
	return c.n != nil
}

// Point returns the point at the cursor. The cursor must be valid.
func (c Cursor[A, V]) Point() Point[A, V] {
	return *c.f.points.Get(c.n.Item())
}

// Next returns a cursor at the next point in argument order, invalid past
// the last point.
func (c Cursor[A, V]) Next() Cursor[A, V] {
	return Cursor[A, V]{f: c.f, n: c.n.Next()}
}

// Prev returns a cursor at the previous point in argument order, invalid
// before the first point.
func (c Cursor[A, V]) Prev() Cursor[A, V] {
	return Cursor[A, V]{f: c.f, n: c.n.Prev()}
}

// byArg returns a tree comparison closure locating the point whose argument
// matches a.
func (f *FunctionMaxima[A, V]) byArg(a A) func(arena.Handle) (int, error) {
	return func(h arena.Handle) (int, error) {
		return f.cmpArg(a, f.points.Get(h).arg)
	}
}

// byRank returns a tree comparison closure ordering the point at h against
// stored points by (value descending, argument ascending). The argument
// tie-break makes the closure match a specific logical point, not merely an
// equal value.
func (f *FunctionMaxima[A, V]) byRank(h arena.Handle) func(arena.Handle) (int, error) {
	return func(other arena.Handle) (int, error) {
		p, q := f.points.Get(h), f.points.Get(other)
		c, err := f.cmpVal(p.value, q.value)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return -c, nil
		}
		return f.cmpArg(p.arg, q.arg)
	}
}
