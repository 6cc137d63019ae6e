// Copyright © 2024 The ELPS authors

package cfg

import (
	"fmt"
	"slices"

	"github.com/luthersystems/jsem/ast"
)

// FrameKind selects which jumps a statement frame accepts.
type FrameKind uint8

const (
	// FrameLoop accepts break and continue.
	FrameLoop FrameKind = iota
	// FrameSwitch accepts unlabeled and labeled break.
	FrameSwitch
	// FrameLabel accepts only a break naming one of its labels.
	FrameLabel
)

type frame struct {
	node      ast.NodeID
	labels    []string
	kind      FrameKind
	breaks    []BlockID
	continues []BlockID
}

func (f *frame) hasLabel(label string) bool { return slices.Contains(f.labels, label) }

// funcState is the part of the builder that is saved and restored around
// each nested function body.
type funcState struct {
	node      ast.NodeID
	registers uint32
	breaks    []*frame
	continues []*frame
	handlers  []BlockID
	cur       BlockID
	dead      bool
}

// Builder constructs a Graph during a single forward traversal.
//
// The builder tracks a current block. After an unconditional exit (throw,
// return, break, continue) the builder is dead: no block is created until
// something needs one, at which point a fresh block tagged unreachable is
// materialized. Nothing is created when the statement list simply ends.
//
// Misuse, such as an unknown jump label or unbalanced statement frames,
// panics: it indicates a bug in the traversal driving the builder.
type Builder struct {
	g      *Graph
	fn     *funcState
	saved  []*funcState
	origin map[BlockID]BlockID // materialized unreachable block -> exiting block
}

// NewBuilder starts a graph whose entry block belongs to the program node.
func NewBuilder(program ast.NodeID) *Builder {
	b := &Builder{
		g:      newGraph(),
		fn:     &funcState{node: program},
		origin: make(map[BlockID]BlockID),
	}
	entry := b.g.addBlock(program)
	b.g.Functions[program] = entry
	b.fn.cur = entry
	return b
}

// Build finishes construction and returns the graph.
func (b *Builder) Build() *Graph {
	if len(b.saved) > 0 {
		panic("cfg: Build inside a function body")
	}
	if len(b.fn.breaks) > 0 {
		panic("cfg: Build with open statement frames")
	}
	b.g.Registers[b.fn.node] = b.fn.registers
	return b.g
}

// Graph returns the graph under construction.
func (b *Builder) Graph() *Graph { return b.g }

// Current returns the block that receives the next instruction,
// materializing an unreachable block if the builder is dead.
func (b *Builder) Current() BlockID {
	if b.fn.dead {
		id := b.g.addBlock(b.fn.node)
		b.g.Blocks[id].Instructions = append(b.g.Blocks[id].Instructions, Instruction{Kind: InstrUnreachable})
		b.origin[id] = b.exitSource(b.fn.cur)
		b.fn.cur = id
		b.fn.dead = false
	}
	return b.fn.cur
}

// Tail returns the current block and whether control can fall through its
// end. Structured statements use it to pick the sources of join edges.
func (b *Builder) Tail() (BlockID, bool) { return b.fn.cur, !b.fn.dead }

// IsDead reports whether control cannot reach the current position.
func (b *Builder) IsDead() bool { return b.fn.dead }

func (b *Builder) exitSource(id BlockID) BlockID {
	if o, ok := b.origin[id]; ok {
		return o
	}
	return id
}

// NewBlock appends an empty block to the current function without making it
// current.
func (b *Builder) NewBlock() BlockID { return b.g.addBlock(b.fn.node) }

// NewBasicBlock appends an empty block and makes it current.
func (b *Builder) NewBasicBlock() BlockID {
	id := b.NewBlock()
	b.SetCurrent(id)
	return id
}

// SetCurrent makes id the current block. The builder is live afterwards.
func (b *Builder) SetCurrent(id BlockID) {
	b.checkBlock(id)
	b.fn.cur = id
	b.fn.dead = false
}

// AddEdge adds an edge between two existing blocks.
func (b *Builder) AddEdge(from, to BlockID, kind EdgeKind) {
	b.checkBlock(from)
	b.checkBlock(to)
	b.g.addEdge(from, to, kind)
}

// Join continues in a new block entered from every source. With no sources
// nothing flows past this point and the builder becomes dead.
func (b *Builder) Join(sources ...BlockID) {
	if len(sources) == 0 {
		b.fn.dead = true
		return
	}
	id := b.NewBlock()
	for _, s := range sources {
		b.AddEdge(s, id, EdgeNormal)
	}
	b.SetCurrent(id)
}

// Resume makes a previously created join block current. A block nothing
// jumps to is tagged unreachable.
func (b *Builder) Resume(id BlockID) {
	b.SetCurrent(id)
	b.Seal(id)
}

// Seal tags a block unreachable if nothing jumps to it. Call it once every
// edge into the block has been added.
func (b *Builder) Seal(id BlockID) {
	b.checkBlock(id)
	blk := &b.g.Blocks[id]
	if b.g.InDegree(id) == 0 && !blk.IsUnreachable() {
		blk.Instructions = append([]Instruction{{Kind: InstrUnreachable}}, blk.Instructions...)
	}
}

func (b *Builder) checkBlock(id BlockID) {
	if int(id) >= len(b.g.Blocks) {
		panic(fmt.Sprintf("cfg: block %d out of range [0:%d]", id, len(b.g.Blocks)))
	}
}

// ---- instructions ----

// NewRegister allocates the next register of the current function.
func (b *Builder) NewRegister() Register {
	r := Register(b.fn.registers)
	b.fn.registers++
	return r
}

func (b *Builder) put(in Instruction) {
	id := b.Current()
	b.g.Blocks[id].Instructions = append(b.g.Blocks[id].Instructions, in)
}

// PutAssignment assigns a value to a fresh register.
func (b *Builder) PutAssignment(value AssignmentValue, node ast.NodeID) Register {
	r := b.NewRegister()
	b.put(Instruction{Kind: InstrAssignment, Register: r, Value: value, Node: node})
	return r
}

// PutThrow throws the value in reg. Control moves to the innermost catch
// handler, if any, and the builder becomes dead.
func (b *Builder) PutThrow(reg Register, node ast.NodeID) {
	b.put(Instruction{Kind: InstrThrow, Register: reg, Node: node})
	if n := len(b.fn.handlers); n > 0 {
		b.AddEdge(b.fn.cur, b.fn.handlers[n-1], EdgeNormal)
	}
	b.fn.dead = true
}

// PutReturn assigns the return value and leaves the function.
func (b *Builder) PutReturn(value AssignmentValue, node ast.NodeID) Register {
	r := b.PutAssignment(value, node)
	b.fn.dead = true
	return r
}

// PutUnreachable marks the current position as never reached. The builder
// becomes dead.
func (b *Builder) PutUnreachable(node ast.NodeID) {
	b.put(Instruction{Kind: InstrUnreachable, Node: node})
	b.fn.dead = true
}

// ---- statements and jumps ----

// BeforeStatement opens a jump frame for a breakable statement. labels are
// the statement labels directly attached to it.
func (b *Builder) BeforeStatement(node ast.NodeID, labels []string, kind FrameKind) {
	f := &frame{node: node, labels: labels, kind: kind}
	b.fn.breaks = append(b.fn.breaks, f)
	if kind == FrameLoop {
		b.fn.continues = append(b.fn.continues, f)
	}
}

// AfterStatement closes the frame opened for node and wires every pending
// break to breakTo and every pending continue to continueTo. A continue
// that jumps to an earlier block is a back edge.
func (b *Builder) AfterStatement(node ast.NodeID, breakTo, continueTo BlockID) {
	n := len(b.fn.breaks)
	if n == 0 || b.fn.breaks[n-1].node != node {
		panic(fmt.Sprintf("cfg: AfterStatement for node %d without matching BeforeStatement", node))
	}
	f := b.fn.breaks[n-1]
	b.fn.breaks = b.fn.breaks[:n-1]
	if f.kind == FrameLoop {
		b.fn.continues = b.fn.continues[:len(b.fn.continues)-1]
	}
	for _, src := range f.breaks {
		if breakTo == NoBlock {
			panic("cfg: pending break without a target")
		}
		b.AddEdge(src, breakTo, EdgeNormal)
	}
	for _, src := range f.continues {
		if continueTo == NoBlock {
			panic("cfg: pending continue without a target")
		}
		kind := EdgeNormal
		if continueTo <= src {
			kind = EdgeBackedge
		}
		b.AddEdge(src, continueTo, kind)
	}
}

func (b *Builder) breakFrame(label string) *frame {
	for i := len(b.fn.breaks) - 1; i >= 0; i-- {
		f := b.fn.breaks[i]
		if label == "" && f.kind != FrameLabel {
			return f
		}
		if label != "" && f.hasLabel(label) {
			return f
		}
	}
	return nil
}

func (b *Builder) continueFrame(label string) *frame {
	for i := len(b.fn.continues) - 1; i >= 0; i-- {
		f := b.fn.continues[i]
		if label == "" || f.hasLabel(label) {
			return f
		}
	}
	return nil
}

// HasBreakTarget reports whether a break with the label is valid here.
func (b *Builder) HasBreakTarget(label string) bool { return b.breakFrame(label) != nil }

// HasContinueTarget reports whether a continue with the label is valid here.
func (b *Builder) HasContinueTarget(label string) bool { return b.continueFrame(label) != nil }

// Break records a jump to the end of the innermost breakable statement, or
// of the statement carrying label.
func (b *Builder) Break(label string) {
	f := b.breakFrame(label)
	if f == nil {
		panic(fmt.Sprintf("cfg: break to unknown label %q", label))
	}
	f.breaks = append(f.breaks, b.Current())
	b.fn.dead = true
}

// Continue records a jump to the continue target of the innermost loop, or
// of the loop carrying label.
func (b *Builder) Continue(label string) {
	f := b.continueFrame(label)
	if f == nil {
		panic(fmt.Sprintf("cfg: continue to unknown label %q", label))
	}
	f.continues = append(f.continues, b.Current())
	b.fn.dead = true
}

// PushHandler makes block the target of throws until PopHandler.
func (b *Builder) PushHandler(block BlockID) {
	b.checkBlock(block)
	b.fn.handlers = append(b.fn.handlers, block)
}

// PopHandler removes the innermost catch handler.
func (b *Builder) PopHandler() {
	if len(b.fn.handlers) == 0 {
		panic("cfg: PopHandler without handler")
	}
	b.fn.handlers = b.fn.handlers[:len(b.fn.handlers)-1]
}

// ---- functions ----

// EnterFunction starts the body of a nested function and returns its entry
// block. The entry is reached by an EdgeNewFunction edge from the definition
// point; when the definition point lies past an unconditional exit, the
// edge leaves the exiting block instead, so the closure observes the
// surrounding exception state at definition time.
func (b *Builder) EnterFunction(node ast.NodeID) BlockID {
	src := b.exitSource(b.fn.cur)
	b.saved = append(b.saved, b.fn)
	b.fn = &funcState{node: node}
	entry := b.g.addBlock(node)
	b.g.addEdge(src, entry, EdgeNewFunction)
	b.g.Functions[node] = entry
	b.fn.cur = entry
	return entry
}

// LeaveFunction ends the current function body and restores the state of
// the enclosing one.
func (b *Builder) LeaveFunction() {
	if len(b.saved) == 0 {
		panic("cfg: LeaveFunction at program level")
	}
	if len(b.fn.breaks) > 0 || len(b.fn.handlers) > 0 {
		panic("cfg: LeaveFunction with open statement frames")
	}
	b.g.Registers[b.fn.node] = b.fn.registers
	b.fn = b.saved[len(b.saved)-1]
	b.saved = b.saved[:len(b.saved)-1]
}
