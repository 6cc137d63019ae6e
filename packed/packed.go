// Copyright © 2024 The ELPS authors

// Package packed implements a struct-of-arrays table whose columns share a
// single backing allocation and a single length/capacity pair.
//
// A Table is declared by registering typed columns with AddColumn before the
// first row is pushed. Rows are appended with Push and their fields read and
// written through the returned Column handles:
//
//	var t packed.Table
//	spans := packed.AddColumn[ast.Span](&t)
//	flags := packed.AddColumn[uint32](&t)
//	id := t.Push()
//	spans.Set(&t, id, span)
//	flags.Set(&t, id, 0)
//
// Column element types must be pointer-free. The backing store is a []uint64
// slab that the garbage collector does not scan, which is what makes the
// single allocation sound.
//
// All of the unsafe layout arithmetic lives in this file.
package packed

import (
	"fmt"
	"math"
	"math/bits"
	"reflect"
	"unsafe"
)

// MinCapacity is the capacity of a table's first allocation.
const MinCapacity = 4

// maxBytes bounds a single backing allocation. Layouts above it are treated
// as capacity overflow.
const maxBytes = 1 << 48

type column struct {
	typ   reflect.Type
	size  uintptr
	align uintptr
}

// Table is a packed multi-field store. The zero value is an empty table
// with no columns.
type Table struct {
	cols   []column
	offs   []uintptr // byte offset of each column in data for the current cap
	data   []uint64
	len    int
	cap    int
	sealed bool
}

// Column is a typed handle to one field of a Table.
type Column[T any] struct {
	idx int
}

// AddColumn registers a column of element type T. It panics when rows have
// already been pushed or when T may contain pointers or has zero size.
func AddColumn[T any](t *Table) Column[T] {
	if t.sealed {
		panic("packed: AddColumn after first Push")
	}
	typ := reflect.TypeFor[T]()
	if typ.Size() == 0 {
		panic(fmt.Sprintf("packed: column type %v has zero size", typ))
	}
	if !pointerFree(typ) {
		panic(fmt.Sprintf("packed: column type %v contains pointers", typ))
	}
	t.cols = append(t.cols, column{typ: typ, size: typ.Size(), align: uintptr(typ.Align())})
	return Column[T]{idx: len(t.cols) - 1}
}

func pointerFree(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return typ.Len() == 0 || pointerFree(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if !pointerFree(typ.Field(i).Type) {
				return false
			}
		}
		return true
	}
	return false
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.len }

// Cap returns the number of rows the current allocation holds.
func (t *Table) Cap() int { return t.cap }

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return t.len == 0 }

// NumColumns returns the number of registered columns.
func (t *Table) NumColumns() int { return len(t.cols) }

// Push appends a zeroed row and returns its index. The table grows by
// doubling when full.
func (t *Table) Push() int {
	if len(t.cols) == 0 {
		panic("packed: Push on table without columns")
	}
	t.sealed = true
	if t.len == t.cap {
		next := MinCapacity
		if t.cap > 0 {
			if t.cap > math.MaxInt/2 {
				panic("packed: capacity overflow")
			}
			next = 2 * t.cap
		}
		t.grow(next)
	}
	i := t.len
	t.len++
	t.zeroRow(i)
	return i
}

// Reserve makes room for at least additional more rows without further
// allocation.
func (t *Table) Reserve(additional int) {
	if additional < 0 {
		panic("packed: negative reserve")
	}
	if additional > math.MaxInt-t.len {
		panic("packed: capacity overflow")
	}
	need := t.len + additional
	if need <= t.cap {
		return
	}
	next := max(need, MinCapacity)
	if t.cap <= math.MaxInt/2 {
		next = max(next, 2*t.cap)
	}
	t.grow(next)
}

// Clone returns a copy of the table whose allocation is sized exactly to
// the current length.
func (t *Table) Clone() *Table {
	c := &Table{
		cols:   append([]column(nil), t.cols...),
		sealed: t.sealed,
	}
	if t.len == 0 {
		return c
	}
	c.len = t.len
	c.relayout(t.len)
	for k := range t.cols {
		copy(c.colBytes(k, t.len), t.colBytes(k, t.len))
	}
	return c
}

// grow reallocates to newCap rows, copying every column's live prefix to
// its offset in the new layout.
func (t *Table) grow(newCap int) {
	old := *t
	t.relayout(newCap)
	for k := range t.cols {
		copy(t.colBytes(k, t.len), old.colBytes(k, old.len))
	}
}

// relayout allocates a zeroed slab for capacity rows and recomputes column
// offsets. It does not copy existing data.
func (t *Table) relayout(capacity int) {
	offs := make([]uintptr, len(t.cols))
	var total uint64
	for k, col := range t.cols {
		total = alignUp(total, uint64(col.align))
		offs[k] = uintptr(total)
		hi, n := bits.Mul64(uint64(col.size), uint64(capacity))
		if hi != 0 {
			panic("packed: capacity overflow")
		}
		var carry uint64
		total, carry = bits.Add64(total, n, 0)
		if carry != 0 || total > maxBytes {
			panic("packed: capacity overflow")
		}
	}
	words := (total + 7) / 8
	t.data = make([]uint64, words)
	t.offs = offs
	t.cap = capacity
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// colBytes views the first rows elements of column k as bytes.
func (t *Table) colBytes(k, rows int) []byte {
	if rows == 0 || len(t.data) == 0 {
		return nil
	}
	base := unsafe.Add(unsafe.Pointer(unsafe.SliceData(t.data)), t.offs[k])
	return unsafe.Slice((*byte)(base), uintptr(rows)*t.cols[k].size)
}

func (t *Table) zeroRow(i int) {
	for k, col := range t.cols {
		base := unsafe.Add(unsafe.Pointer(unsafe.SliceData(t.data)), t.offs[k]+uintptr(i)*col.size)
		clear(unsafe.Slice((*byte)(base), col.size))
	}
}

// Ptr returns a pointer to row i of the column. The pointer is invalidated
// by the next Push, Reserve or Clone that reallocates.
func (c Column[T]) Ptr(t *Table, i int) *T {
	if uint(i) >= uint(t.len) {
		panic(fmt.Sprintf("packed: index %d out of range [0:%d]", i, t.len))
	}
	base := unsafe.Add(unsafe.Pointer(unsafe.SliceData(t.data)), t.offs[c.idx])
	return (*T)(unsafe.Add(base, uintptr(i)*t.cols[c.idx].size))
}

// Get returns row i of the column.
func (c Column[T]) Get(t *Table, i int) T { return *c.Ptr(t, i) }

// Set stores v at row i of the column.
func (c Column[T]) Set(t *Table, i int, v T) { *c.Ptr(t, i) = v }

// Slice returns the live prefix of the column as a slice aliasing the
// table. Like Ptr, it is invalidated by reallocation.
func (c Column[T]) Slice(t *Table) []T {
	if t.len == 0 {
		return nil
	}
	return unsafe.Slice(c.Ptr(t, 0), t.len)
}
