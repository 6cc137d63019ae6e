// Copyright © 2024 The ELPS authors

package packed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type span struct {
	Start uint32
	End   uint32
}

type mixed struct {
	A uint8
	B float64
	C [3]int16
}

type testTable struct {
	t     Table
	spans Column[span]
	flags Column[uint8]
	score Column[float64]
	blob  Column[mixed]
}

func newTestTable() *testTable {
	tt := &testTable{}
	tt.flags = AddColumn[uint8](&tt.t)
	tt.spans = AddColumn[span](&tt.t)
	tt.score = AddColumn[float64](&tt.t)
	tt.blob = AddColumn[mixed](&tt.t)
	return tt
}

func (tt *testTable) push(i int) int {
	id := tt.t.Push()
	tt.flags.Set(&tt.t, id, uint8(i))
	tt.spans.Set(&tt.t, id, span{uint32(i), uint32(i * 2)})
	tt.score.Set(&tt.t, id, float64(i)/3)
	tt.blob.Set(&tt.t, id, mixed{A: uint8(i * 7), B: -float64(i), C: [3]int16{int16(i), int16(-i), 3}})
	return id
}

func (tt *testTable) check(t *testing.T, id, i int) {
	t.Helper()
	require.Equal(t, uint8(i), tt.flags.Get(&tt.t, id))
	require.Equal(t, span{uint32(i), uint32(i * 2)}, tt.spans.Get(&tt.t, id))
	require.Equal(t, float64(i)/3, tt.score.Get(&tt.t, id))
	require.Equal(t, mixed{A: uint8(i * 7), B: -float64(i), C: [3]int16{int16(i), int16(-i), 3}}, tt.blob.Get(&tt.t, id))
}

func TestPush_RoundTripAcrossGrowth(t *testing.T) {
	tt := newTestTable()
	assert.True(t, tt.t.IsEmpty())
	assert.Equal(t, 0, tt.t.Cap())

	const n = 1000
	caps := map[int]bool{}
	for i := 0; i < n; i++ {
		id := tt.push(i)
		require.Equal(t, i, id)
		caps[tt.t.Cap()] = true
		// Earlier rows survive every reallocation.
		tt.check(t, 0, 0)
		tt.check(t, id, i)
	}
	for i := 0; i < n; i++ {
		tt.check(t, i, i)
	}
	assert.Equal(t, n, tt.t.Len())
	assert.False(t, tt.t.IsEmpty())
	assert.True(t, caps[MinCapacity])
	assert.True(t, caps[2*MinCapacity])
	assert.Greater(t, len(caps), 5, "table should have grown several times")
}

func TestPush_ZeroesRow(t *testing.T) {
	tt := newTestTable()
	id := tt.t.Push()
	assert.Equal(t, uint8(0), tt.flags.Get(&tt.t, id))
	assert.Equal(t, span{}, tt.spans.Get(&tt.t, id))
	assert.Equal(t, mixed{}, tt.blob.Get(&tt.t, id))
}

func TestPtr_Mutation(t *testing.T) {
	tt := newTestTable()
	id := tt.push(5)
	p := tt.spans.Ptr(&tt.t, id)
	p.End = 99
	assert.Equal(t, span{5, 99}, tt.spans.Get(&tt.t, id))
}

func TestSlice(t *testing.T) {
	tt := newTestTable()
	assert.Nil(t, tt.flags.Slice(&tt.t))
	for i := 0; i < 6; i++ {
		tt.push(i)
	}
	assert.Equal(t, []uint8{0, 1, 2, 3, 4, 5}, tt.flags.Slice(&tt.t))
}

func TestReserve(t *testing.T) {
	tt := newTestTable()
	tt.push(1)
	tt.t.Reserve(100)
	assert.GreaterOrEqual(t, tt.t.Cap(), 101)
	c := tt.t.Cap()
	for i := 0; i < 100; i++ {
		tt.push(i + 2)
	}
	assert.Equal(t, c, tt.t.Cap(), "no reallocation within reserved capacity")
	tt.check(t, 0, 1)
	tt.check(t, 100, 101)

	tt.t.Reserve(0)
	assert.Equal(t, c, tt.t.Cap())
}

func TestClone_ExactCapacity(t *testing.T) {
	tt := newTestTable()
	for i := 0; i < 13; i++ {
		tt.push(i)
	}
	require.Greater(t, tt.t.Cap(), 13)

	c := &testTable{t: *tt.t.Clone(), spans: tt.spans, flags: tt.flags, score: tt.score, blob: tt.blob}
	assert.Equal(t, 13, c.t.Len())
	assert.Equal(t, 13, c.t.Cap())
	for i := 0; i < 13; i++ {
		c.check(t, i, i)
	}

	// The clone is independent of the original.
	c.flags.Set(&c.t, 0, 200)
	assert.Equal(t, uint8(0), tt.flags.Get(&tt.t, 0))

	// A clone can keep growing.
	c.push(13)
	c.check(t, 13, 13)
	c.check(t, 12, 12)
}

func TestClone_Empty(t *testing.T) {
	tt := newTestTable()
	c := tt.t.Clone()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Cap())
	assert.Equal(t, 4, c.NumColumns())
}

func TestContractViolations(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"pointer column", func() {
			var tab Table
			AddColumn[*int](&tab)
		}},
		{"string column", func() {
			var tab Table
			AddColumn[string](&tab)
		}},
		{"struct with slice", func() {
			var tab Table
			AddColumn[struct{ X []byte }](&tab)
		}},
		{"zero size column", func() {
			var tab Table
			AddColumn[struct{}](&tab)
		}},
		{"column after push", func() {
			var tab Table
			AddColumn[uint32](&tab)
			tab.Push()
			AddColumn[uint32](&tab)
		}},
		{"push without columns", func() {
			var tab Table
			tab.Push()
		}},
		{"index out of range", func() {
			var tab Table
			c := AddColumn[uint32](&tab)
			tab.Push()
			c.Get(&tab, 1)
		}},
		{"negative index", func() {
			var tab Table
			c := AddColumn[uint32](&tab)
			tab.Push()
			c.Get(&tab, -1)
		}},
		{"reserve overflow", func() {
			var tab Table
			AddColumn[uint64](&tab)
			tab.Reserve(math.MaxInt / 2)
		}},
		{"reserve length overflow", func() {
			var tab Table
			AddColumn[uint64](&tab)
			tab.Push()
			tab.Reserve(math.MaxInt)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
}
