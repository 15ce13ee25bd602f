// Package maxima provides a generic ordered function-like container that
// incrementally maintains the set of its local maxima.
//
// A FunctionMaxima[A, V] stores at most one value of type V per argument of
// type A, ordered by the argument comparison. Alongside the primary store it
// keeps a secondary index holding exactly the points whose value is not
// exceeded by either argument-adjacent neighbor, ordered by (value
// descending, argument ascending). The secondary index is updated inside the
// same call as the primary store, so between calls the two can never
// diverge.
//
// # Quick Start
//
//	fn := maxima.New[int, int]()
//	_ = fn.SetValue(1, 1)
//	_ = fn.SetValue(2, 2)
//	_ = fn.SetValue(3, 1)
//
//	for p := range fn.Maxima() {
//	    fmt.Println(p.Arg(), p.Value()) // 2 2
//	}
//
// Arbitrary argument and value types are supported through comparison
// functions:
//
//	fn := maxima.NewFunc[string, []byte](cmpName, cmpBlob)
//
// # Transactional Mutations
//
// Comparison functions are fallible. When a comparison fails during SetValue
// or Erase, the call rolls back every edit it has performed on either index
// and returns the comparison error unchanged; the observable state (Size,
// ValueAt, both iteration orders) is then indistinguishable from the state
// before the call. Nothing is retried internally.
//
// # Concurrency Model
//
// FunctionMaxima performs no internal synchronization. Every operation runs
// synchronously to completion. Mutating calls must not run concurrently on
// the same instance; concurrent read-only iteration is safe only while no
// mutation is interleaved. Distinct instances are fully independent.
package maxima
