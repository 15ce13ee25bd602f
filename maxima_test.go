package maxima

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectPoints(f *FunctionMaxima[int, int]) [][2]int {
	out := [][2]int{}
	for p := range f.Points() {
		out = append(out, [2]int{p.Arg(), p.Value()})
	}
	return out
}

func collectMaxima(f *FunctionMaxima[int, int]) [][2]int {
	out := [][2]int{}
	for p := range f.Maxima() {
		out = append(out, [2]int{p.Arg(), p.Value()})
	}
	return out
}

// checkInvariant recomputes the local maxima from scratch out of the primary
// sequence and compares them against the maintained index, including its
// (value desc, arg asc) order.
func checkInvariant(t *testing.T, f *FunctionMaxima[int, int]) {
	t.Helper()

	points := collectPoints(f)
	want := [][2]int{}
	for i, p := range points {
		if i > 0 && points[i-1][1] > p[1] {
			continue
		}
		if i < len(points)-1 && points[i+1][1] > p[1] {
			continue
		}
		want = append(want, p)
	}
	slices.SortFunc(want, func(a, b [2]int) int {
		if a[1] != b[1] {
			return b[1] - a[1]
		}
		return a[0] - b[0]
	})

	require.Equal(t, want, collectMaxima(f))
}

func TestFunctionMaxima_SetAndValueAt(t *testing.T) {
	f := New[int, int]()

	require.NoError(t, f.SetValue(1, 10))
	v, err := f.ValueAt(1)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	// Replace
	require.NoError(t, f.SetValue(1, 20))
	v, err = f.ValueAt(1)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
	assert.Equal(t, 1, f.Size())
}

func TestFunctionMaxima_ValueAtMissing(t *testing.T) {
	f := New[int, int]()

	_, err := f.ValueAt(7)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.SetValue(1, 1))
	_, err = f.ValueAt(7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFunctionMaxima_Erase(t *testing.T) {
	f := New[int, int]()
	require.NoError(t, f.SetValue(1, 10))
	require.NoError(t, f.SetValue(2, 20))

	require.NoError(t, f.Erase(1))
	assert.Equal(t, 1, f.Size())
	_, err := f.ValueAt(1)
	assert.ErrorIs(t, err, ErrNotFound)
	checkInvariant(t, f)

	// Erasing an absent argument is a no-op.
	require.NoError(t, f.Erase(99))
	assert.Equal(t, 1, f.Size())
	checkInvariant(t, f)
}

func TestFunctionMaxima_ScenarioRising(t *testing.T) {
	f := New[int, int]()
	require.NoError(t, f.SetValue(1, 1))
	require.NoError(t, f.SetValue(2, 2))
	require.NoError(t, f.SetValue(3, 1))

	assert.Equal(t, [][2]int{{2, 2}}, collectMaxima(f))

	// Raising the left boundary above its neighbor moves the maximum.
	require.NoError(t, f.SetValue(1, 3))
	assert.Equal(t, [][2]int{{1, 3}}, collectMaxima(f))
	checkInvariant(t, f)
}

func TestFunctionMaxima_SinglePoint(t *testing.T) {
	f := New[int, int]()
	require.NoError(t, f.SetValue(5, 10))

	assert.Equal(t, [][2]int{{5, 10}}, collectMaxima(f))

	require.NoError(t, f.Erase(5))
	assert.Equal(t, 0, f.Size())
	assert.Empty(t, collectPoints(f))
	assert.Empty(t, collectMaxima(f))
}

func TestFunctionMaxima_Plateau(t *testing.T) {
	f := New[int, int]()
	require.NoError(t, f.SetValue(1, 5))
	require.NoError(t, f.SetValue(2, 5))
	require.NoError(t, f.SetValue(3, 5))

	// All points of an equal-valued plateau are maxima at once.
	assert.Equal(t, [][2]int{{1, 5}, {2, 5}, {3, 5}}, collectMaxima(f))
	checkInvariant(t, f)
}

func TestFunctionMaxima_PlateauShadowed(t *testing.T) {
	f := New[int, int]()
	require.NoError(t, f.SetValue(1, 5))
	require.NoError(t, f.SetValue(2, 5))
	assert.Equal(t, [][2]int{{1, 5}, {2, 5}}, collectMaxima(f))

	// A higher right neighbor demotes only the adjacent plateau point.
	require.NoError(t, f.SetValue(3, 10))
	assert.Equal(t, [][2]int{{3, 10}, {1, 5}}, collectMaxima(f))
	checkInvariant(t, f)
}

func TestFunctionMaxima_MaximaOrder(t *testing.T) {
	f := New[int, int]()
	for _, p := range [][2]int{{1, 3}, {2, 1}, {3, 7}, {4, 1}, {5, 3}, {6, 1}, {7, 7}} {
		require.NoError(t, f.SetValue(p[0], p[1]))
	}

	// Value descending, argument ascending on ties.
	assert.Equal(t, [][2]int{{3, 7}, {7, 7}, {1, 3}, {5, 3}}, collectMaxima(f))
	checkInvariant(t, f)
}

func TestFunctionMaxima_PointsOrder(t *testing.T) {
	f := New[int, int]()
	for _, a := range []int{5, 1, 4, 2, 3} {
		require.NoError(t, f.SetValue(a, a*10))
	}

	assert.Equal(t, [][2]int{{1, 10}, {2, 20}, {3, 30}, {4, 40}, {5, 50}}, collectPoints(f))
}

func TestFunctionMaxima_FindCursor(t *testing.T) {
	f := New[int, int]()
	for _, a := range []int{1, 2, 3} {
		require.NoError(t, f.SetValue(a, a))
	}

	c, err := f.Find(2)
	require.NoError(t, err)
	require.True(t, c.Valid())
	assert.Equal(t, 2, c.Point().Arg())

	assert.Equal(t, 3, c.Next().Point().Arg())
	assert.Equal(t, 1, c.Prev().Point().Arg())
	assert.False(t, c.Prev().Prev().Valid())
	assert.False(t, c.Next().Next().Valid())

	missing, err := f.Find(9)
	require.NoError(t, err)
	assert.False(t, missing.Valid())
}

func TestFunctionMaxima_Clone(t *testing.T) {
	f := New[int, int]()
	for _, p := range [][2]int{{1, 1}, {2, 2}, {3, 1}, {4, 4}} {
		require.NoError(t, f.SetValue(p[0], p[1]))
	}

	c := f.Clone()
	assert.Equal(t, collectPoints(f), collectPoints(c))
	assert.Equal(t, collectMaxima(f), collectMaxima(c))

	// Mutating the copy must not touch the source.
	require.NoError(t, c.SetValue(2, 99))
	require.NoError(t, c.Erase(4))

	assert.Equal(t, [][2]int{{1, 1}, {2, 2}, {3, 1}, {4, 4}}, collectPoints(f))
	assert.Equal(t, [][2]int{{4, 4}, {2, 2}}, collectMaxima(f))
	checkInvariant(t, f)
	checkInvariant(t, c)
}

func TestFunctionMaxima_CloneEmpty(t *testing.T) {
	f := New[int, int]()
	c := f.Clone()

	assert.Equal(t, 0, c.Size())
	require.NoError(t, c.SetValue(1, 1))
	assert.Equal(t, 0, f.Size())
}

func TestFunctionMaxima_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	f := New[int, int](WithMetricsCollector(mc))

	require.NoError(t, f.SetValue(1, 1))
	require.NoError(t, f.SetValue(2, 2))
	require.NoError(t, f.Erase(1))
	_, _ = f.ValueAt(2)
	_, _ = f.ValueAt(9)

	assert.Equal(t, int64(2), mc.SetCount.Load())
	assert.Equal(t, int64(1), mc.EraseCount.Load())
	assert.Equal(t, int64(2), mc.LookupCount.Load())
	assert.Equal(t, int64(1), mc.LookupErrors.Load())
	assert.Equal(t, int64(0), mc.RollbackCount.Load())
}

func TestFunctionMaxima_Randomized(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	f := New[int, int]()
	shadow := map[int]int{}

	for i := 0; i < 1000; i++ {
		a := int(rng.Int64N(30))
		switch rng.Int64N(4) {
		case 0:
			require.NoError(t, f.Erase(a))
			delete(shadow, a)
		default:
			v := int(rng.Int64N(10))
			require.NoError(t, f.SetValue(a, v))
			shadow[a] = v
		}

		require.Equal(t, len(shadow), f.Size())
		checkInvariant(t, f)
	}

	for a, v := range shadow {
		got, err := f.ValueAt(a)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func BenchmarkSetValue(b *testing.B) {
	f := New[int, int]()
	rng := rand.New(rand.NewPCG(3, 5))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.SetValue(int(rng.Int64N(1<<16)), int(rng.Int64N(1<<16)))
	}
}

func BenchmarkErase(b *testing.B) {
	f := New[int, int]()
	for i := 0; i < 1<<16; i++ {
		_ = f.SetValue(i, i%17)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Erase(i % (1 << 16))
	}
}
