// Copyright © 2024 The ELPS authors

// Package cfg builds register-based control-flow graphs.
//
// A Graph is a plain adjacency list: a slice of basic blocks, each holding a
// short list of instructions, and a slice of typed edges. Blocks and edges
// are only ever appended.
package cfg

import (
	"iter"

	"github.com/luthersystems/jsem/ast"
)

// BlockID identifies a basic block.
type BlockID uint32

// NoBlock is used where a jump target is absent.
const NoBlock BlockID = ^BlockID(0)

// Register is a virtual register. Registers are numbered per function and
// never reused.
type Register uint32

// EdgeKind classifies an edge.
type EdgeKind uint8

const (
	// EdgeNormal is fallthrough or a forward jump.
	EdgeNormal EdgeKind = iota
	// EdgeBackedge continues a loop.
	EdgeBackedge
	// EdgeNewFunction enters a function body from its definition point.
	EdgeNewFunction
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeNormal:
		return "normal"
	case EdgeBackedge:
		return "backedge"
	case EdgeNewFunction:
		return "new-function"
	default:
		return "unknown"
	}
}

// AssignmentValue distinguishes values that are known to be an implicit
// undefined from everything else.
type AssignmentValue uint8

const (
	NotImplicitUndefined AssignmentValue = iota
	ImplicitUndefined
)

func (v AssignmentValue) String() string {
	if v == ImplicitUndefined {
		return "implicit-undefined"
	}
	return "value"
}

// InstructionKind is the opcode of an Instruction.
type InstructionKind uint8

const (
	InstrAssignment InstructionKind = iota
	InstrThrow
	InstrUnreachable
)

func (k InstructionKind) String() string {
	switch k {
	case InstrAssignment:
		return "assign"
	case InstrThrow:
		return "throw"
	case InstrUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Instruction is one entry of a basic block.
type Instruction struct {
	Kind     InstructionKind
	Register Register
	Value    AssignmentValue // assignments only
	Node     ast.NodeID      // the node that produced the instruction
}

// BasicBlock is a straight-line instruction sequence.
type BasicBlock struct {
	Instructions []Instruction
}

// IsUnreachable reports whether the block was created past an unconditional
// exit and is never entered.
func (b *BasicBlock) IsUnreachable() bool {
	return len(b.Instructions) > 0 && b.Instructions[0].Kind == InstrUnreachable
}

// Edge is a directed, typed edge between two blocks.
type Edge struct {
	From BlockID
	To   BlockID
	Kind EdgeKind
}

// Graph is a control-flow graph for a whole program. Each function body
// has its own entry block, reached from its definition point by an
// EdgeNewFunction edge.
type Graph struct {
	Blocks []BasicBlock
	Edges  []Edge
	// Functions maps a function (or program) node to its entry block.
	Functions map[ast.NodeID]BlockID
	// Registers maps a function (or program) node to the number of registers
	// it allocated.
	Registers map[ast.NodeID]uint32

	out    [][]int
	in     [][]int
	owners []ast.NodeID
}

func newGraph() *Graph {
	return &Graph{
		Functions: make(map[ast.NodeID]BlockID),
		Registers: make(map[ast.NodeID]uint32),
	}
}

// Len returns the number of blocks.
func (g *Graph) Len() int { return len(g.Blocks) }

// Block returns a block by id.
func (g *Graph) Block(id BlockID) *BasicBlock { return &g.Blocks[id] }

func (g *Graph) addBlock(owner ast.NodeID) BlockID {
	g.Blocks = append(g.Blocks, BasicBlock{})
	g.owners = append(g.owners, owner)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return BlockID(len(g.Blocks) - 1)
}

func (g *Graph) addEdge(from, to BlockID, kind EdgeKind) {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Kind: kind})
	i := len(g.Edges) - 1
	g.out[from] = append(g.out[from], i)
	g.in[to] = append(g.in[to], i)
}

// Outgoing yields the edges leaving a block.
func (g *Graph) Outgoing(id BlockID) iter.Seq[Edge] {
	return g.edges(g.out[id])
}

// Incoming yields the edges entering a block.
func (g *Graph) Incoming(id BlockID) iter.Seq[Edge] {
	return g.edges(g.in[id])
}

func (g *Graph) edges(idx []int) iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, i := range idx {
			if !yield(g.Edges[i]) {
				return
			}
		}
	}
}

// InDegree returns the number of edges entering a block.
func (g *Graph) InDegree(id BlockID) int { return len(g.in[id]) }

// OutDegree returns the number of edges leaving a block.
func (g *Graph) OutDegree(id BlockID) int { return len(g.out[id]) }

// HasEdge reports whether an edge of the given kind joins from and to.
func (g *Graph) HasEdge(from, to BlockID, kind EdgeKind) bool {
	for e := range g.Outgoing(from) {
		if e.To == to && e.Kind == kind {
			return true
		}
	}
	return false
}

// Reachable returns, for every block, whether it can be reached from the
// program entry block along any edge.
func (g *Graph) Reachable() []bool {
	seen := make([]bool, len(g.Blocks))
	if len(g.Blocks) == 0 {
		return seen
	}
	stack := []BlockID{0}
	seen[0] = true
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, i := range g.out[b] {
			to := g.Edges[i].To
			if !seen[to] {
				seen[to] = true
				stack = append(stack, to)
			}
		}
	}
	return seen
}

// Owner returns the function (or program) node whose body contains the
// block.
func (g *Graph) Owner(id BlockID) ast.NodeID { return g.owners[id] }

// FunctionBlocks returns the blocks of one function body, including blocks
// that are never entered, in creation order. Blocks of nested functions are
// not included.
func (g *Graph) FunctionBlocks(fn ast.NodeID) []BlockID {
	var out []BlockID
	for i, owner := range g.owners {
		if owner == fn {
			out = append(out, BlockID(i))
		}
	}
	return out
}

// IsReachable reports whether a block can be reached from the program entry
// block.
func (g *Graph) IsReachable(id BlockID) bool { return g.Reachable()[id] }
