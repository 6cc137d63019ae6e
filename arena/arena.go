// Copyright © 2024 The ELPS authors

// Package arena provides an append-only string arena with index handles.
//
// Tables store Atom handles instead of strings so rows stay pointer-free;
// the string is materialized only where it is used.
package arena

import (
	"fmt"
	"math"
	"unsafe"
)

// Atom is a handle to a string stored in an Arena. The zero Atom is the
// empty string in every arena.
type Atom struct {
	Off uint32
	Len uint32
}

// IsEmpty reports whether the atom refers to the empty string.
func (a Atom) IsEmpty() bool { return a.Len == 0 }

// Arena is an append-only byte buffer owned by one analysis session. It is
// not safe for concurrent writes; concurrent reads after the last Alloc are
// fine.
type Arena struct {
	chunks [][]byte
	// starts[i] is the global offset of chunks[i].
	starts []uint32
	size   uint32
	intern map[string]Atom
}

const minChunk = 4 << 10

// New returns an empty arena.
func New() *Arena {
	return &Arena{intern: make(map[string]Atom)}
}

// Alloc copies s into the arena and returns its handle. Identical strings
// share one copy.
func (a *Arena) Alloc(s string) Atom {
	if s == "" {
		return Atom{}
	}
	if at, ok := a.intern[s]; ok {
		return at
	}
	if uint64(a.size)+uint64(len(s)) > math.MaxUint32 {
		panic(fmt.Sprintf("arena: capacity exceeded allocating %d bytes", len(s)))
	}
	chunk := a.current(len(s))
	off := a.size
	*chunk = append(*chunk, s...)
	a.size += uint32(len(s))
	at := Atom{Off: off, Len: uint32(len(s))}
	a.intern[a.String(at)] = at
	return at
}

// current returns the chunk that can hold n more bytes without
// reallocating, starting a new one when needed. Chunks never move once
// written so strings handed out by String stay valid.
func (a *Arena) current(n int) *[]byte {
	if k := len(a.chunks); k > 0 {
		last := &a.chunks[k-1]
		if cap(*last)-len(*last) >= n {
			return last
		}
	}
	size := minChunk
	if k := len(a.chunks); k > 0 {
		size = 2 * cap(a.chunks[k-1])
	}
	for size < n {
		size *= 2
	}
	a.chunks = append(a.chunks, make([]byte, 0, size))
	a.starts = append(a.starts, a.size)
	return &a.chunks[len(a.chunks)-1]
}

// String resolves an atom. Out-of-range atoms panic.
func (a *Arena) String(at Atom) string {
	if at.Len == 0 {
		return ""
	}
	ci := a.chunkFor(at.Off)
	local := at.Off - a.starts[ci]
	chunk := a.chunks[ci]
	if uint64(local)+uint64(at.Len) > uint64(len(chunk)) {
		panic(fmt.Sprintf("arena: atom %d+%d out of range", at.Off, at.Len))
	}
	b := chunk[local : local+at.Len]
	return unsafe.String(&b[0], len(b))
}

func (a *Arena) chunkFor(off uint32) int {
	lo, hi := 0, len(a.starts)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if a.starts[mid] <= off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		panic(fmt.Sprintf("arena: atom offset %d out of range", off))
	}
	return lo - 1
}

// Lookup returns the atom for s if it was allocated.
func (a *Arena) Lookup(s string) (Atom, bool) {
	if s == "" {
		return Atom{}, true
	}
	at, ok := a.intern[s]
	return at, ok
}

// Size returns the number of bytes stored.
func (a *Arena) Size() int { return int(a.size) }
