// Copyright © 2024 The ELPS authors

package report

import (
	"encoding/json"
	"io"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/cfg"
	"github.com/luthersystems/jsem/constenum"
	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/semantic"
)

// File is the JSON shape of an analyzed file. Ids index the sibling
// arrays; spans are byte offsets into the source.
type File struct {
	Path         string              `json:"path"`
	Language     string              `json:"language"`
	Module       bool                `json:"module"`
	Scopes       []Scope             `json:"scopes"`
	Symbols      []Symbol            `json:"symbols"`
	References   []Reference         `json:"references"`
	Unresolved   map[string][]uint32 `json:"unresolved"`
	Enums        []Enum              `json:"enums"`
	CFG          *Graph              `json:"cfg,omitempty"`
	Errors       []Error             `json:"errors,omitempty"`
	SyntaxErrors []ast.Span          `json:"syntaxErrors,omitempty"`
}

type Scope struct {
	ID       uint32            `json:"id"`
	Parent   *uint32           `json:"parent"`
	Flags    string            `json:"flags"`
	Node     uint32            `json:"node"`
	Bindings map[string]uint32 `json:"bindings"`
}

type Symbol struct {
	ID             uint32     `json:"id"`
	Name           string     `json:"name"`
	Flags          string     `json:"flags"`
	Span           ast.Span   `json:"span"`
	Scope          uint32     `json:"scope"`
	Declaration    uint32     `json:"declaration"`
	Redeclarations []ast.Span `json:"redeclarations,omitempty"`
	References     []uint32   `json:"references"`
	Mutated        bool       `json:"mutated"`
}

type Reference struct {
	ID     uint32  `json:"id"`
	Name   string  `json:"name"`
	Node   uint32  `json:"node"`
	Flags  string  `json:"flags"`
	Symbol *uint32 `json:"symbol"`
}

type Enum struct {
	Symbol  uint32   `json:"symbol"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

type Member struct {
	Name  string          `json:"name"`
	Value constenum.Value `json:"value"`
}

type Graph struct {
	Blocks    []Block           `json:"blocks"`
	Edges     []Edge            `json:"edges"`
	Functions map[uint32]uint32 `json:"functions"`
}

type Block struct {
	ID           uint32        `json:"id"`
	Owner        uint32        `json:"owner"`
	Reachable    bool          `json:"reachable"`
	Instructions []Instruction `json:"instructions"`
}

type Instruction struct {
	Kind     string `json:"kind"`
	Register uint32 `json:"register"`
	Value    string `json:"value,omitempty"`
	Node     uint32 `json:"node"`
}

type Edge struct {
	From uint32 `json:"from"`
	To   uint32 `json:"to"`
	Kind string `json:"kind"`
}

type Error struct {
	Span    ast.Span `json:"span"`
	Message string   `json:"message"`
}

// Build converts an analyzed file to its JSON shape.
func Build(f *driver.File) *File {
	sem := f.Semantic
	out := &File{
		Path:       f.Path,
		Language:   f.Language.String(),
		Module:     f.Program.Module,
		Scopes:     []Scope{},
		Symbols:    []Symbol{},
		References: []Reference{},
		Unresolved: make(map[string][]uint32),
		Enums:      []Enum{},
	}
	if f.SyntaxError != nil {
		out.SyntaxErrors = f.SyntaxError.Spans
	}
	for i := 0; i < sem.Scopes.Len(); i++ {
		id := semantic.ScopeID(i)
		s := Scope{
			ID:       uint32(id),
			Flags:    sem.Scopes.Flags(id).String(),
			Node:     uint32(sem.Scopes.Node(id)),
			Bindings: make(map[string]uint32),
		}
		if p := sem.Scopes.Parent(id); p != semantic.NoScope {
			s.Parent = ptr(uint32(p))
		}
		for name, sym := range sem.Scopes.Bindings(id).All() {
			s.Bindings[name] = uint32(sym)
		}
		out.Scopes = append(out.Scopes, s)
	}
	st := sem.Symbols
	for sym := range st.All() {
		s := Symbol{
			ID:             uint32(sym),
			Name:           st.Name(sym),
			Flags:          st.Flags(sym).String(),
			Span:           st.Span(sym),
			Scope:          uint32(st.Scope(sym)),
			Declaration:    uint32(st.Declaration(sym)),
			Redeclarations: st.Redeclarations(sym),
			References:     []uint32{},
			Mutated:        st.SymbolIsMutated(sym),
		}
		for _, ref := range st.ResolvedReferenceIDs(sym) {
			s.References = append(s.References, uint32(ref))
		}
		out.Symbols = append(out.Symbols, s)
	}
	for i := 0; i < st.NumReferences(); i++ {
		ref := st.Reference(semantic.ReferenceID(i))
		r := Reference{
			ID:    uint32(i),
			Name:  ref.Name,
			Node:  uint32(ref.Node),
			Flags: ref.Flags.String(),
		}
		if ref.IsResolved() {
			r.Symbol = ptr(uint32(ref.Symbol))
		}
		out.References = append(out.References, r)
	}
	for name, refs := range sem.Unresolved {
		ids := make([]uint32, len(refs))
		for i, ref := range refs {
			ids[i] = uint32(ref)
		}
		out.Unresolved[name] = ids
	}
	for _, sym := range f.Enums.Enums() {
		members, _ := f.Enums.Enum(sym)
		e := Enum{Symbol: uint32(sym), Name: sem.SymbolName(sym), Members: []Member{}}
		for name, v := range members.All() {
			e.Members = append(e.Members, Member{Name: name, Value: v})
		}
		out.Enums = append(out.Enums, e)
	}
	if sem.CFG != nil {
		out.CFG = buildGraph(sem.CFG)
	}
	for _, e := range sem.Errors {
		out.Errors = append(out.Errors, Error{Span: e.Span, Message: e.Msg})
	}
	return out
}

func buildGraph(g *cfg.Graph) *Graph {
	reachable := g.Reachable()
	out := &Graph{
		Blocks:    make([]Block, 0, g.Len()),
		Edges:     make([]Edge, 0, len(g.Edges)),
		Functions: make(map[uint32]uint32, len(g.Functions)),
	}
	for i := range g.Blocks {
		id := cfg.BlockID(i)
		b := Block{
			ID:           uint32(id),
			Owner:        uint32(g.Owner(id)),
			Reachable:    reachable[id],
			Instructions: []Instruction{},
		}
		for _, in := range g.Block(id).Instructions {
			instr := Instruction{Kind: in.Kind.String(), Register: uint32(in.Register), Node: uint32(in.Node)}
			if in.Kind == cfg.InstrAssignment {
				instr.Value = in.Value.String()
			}
			b.Instructions = append(b.Instructions, instr)
		}
		out.Blocks = append(out.Blocks, b)
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, Edge{From: uint32(e.From), To: uint32(e.To), Kind: e.Kind.String()})
	}
	for node, block := range g.Functions {
		out.Functions[uint32(node)] = uint32(block)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// WriteJSON writes the JSON shape of f to w, indented.
func WriteJSON(w io.Writer, f *driver.File) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Build(f))
}

// WriteJSONFiles writes a JSON array holding every file.
func WriteJSONFiles(w io.Writer, files []*driver.File) error {
	out := make([]*File, len(files))
	for i, f := range files {
		out[i] = Build(f)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
