// Copyright © 2024 The ELPS authors

// Package report renders the semantic model of analyzed files for people
// (WriteText) and for tools (WriteJSON).
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/luthersystems/jsem/cfg"
	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/semantic"
)

// Section selects the parts of a report.
type Section uint8

const (
	Scopes Section = 1 << iota
	Symbols
	References
	Enums
	CFG
	Errors

	All = Scopes | Symbols | References | Enums | CFG | Errors
)

var sectionNames = map[string]Section{
	"scopes":     Scopes,
	"symbols":    Symbols,
	"references": References,
	"enums":      Enums,
	"cfg":        CFG,
	"errors":     Errors,
	"all":        All,
}

// ParseSections combines section names such as "scopes" or "cfg". No
// names selects every section.
func ParseSections(names []string) (Section, error) {
	if len(names) == 0 {
		return All, nil
	}
	var s Section
	for _, name := range names {
		sec, ok := sectionNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown section %q", name)
		}
		s |= sec
	}
	return s, nil
}

// wrapWidth is the column at which long messages are wrapped.
const wrapWidth = 76

// WriteText writes every section of the report of f to w.
func WriteText(w io.Writer, f *driver.File) error {
	return WriteTextSections(w, f, All)
}

// WriteTextSections writes the selected sections of the report of f. The
// CFG section is empty unless the file was analyzed with a CFG.
func WriteTextSections(w io.Writer, f *driver.File, sections Section) error {
	t := &textWriter{f: f, sem: f.Semantic, lines: diagnostic.NewLines(f.Source)}
	t.header()
	if sections&Scopes != 0 {
		t.section("scopes", t.scopes)
	}
	if sections&Symbols != 0 {
		t.section("symbols", t.symbols)
	}
	if sections&References != 0 {
		t.section("references", t.references)
	}
	if sections&Enums != 0 {
		t.section("enums", t.enums)
	}
	if sections&CFG != 0 && t.sem.CFG != nil {
		t.section("cfg", t.cfg)
	}
	if sections&Errors != 0 {
		t.section("errors", t.errors)
	}
	_, err := w.Write(t.buf.Bytes())
	return err
}

type textWriter struct {
	f     *driver.File
	sem   *semantic.Semantic
	lines *diagnostic.Lines
	buf   bytes.Buffer
}

func (t *textWriter) printf(format string, args ...any) {
	fmt.Fprintf(&t.buf, format, args...)
}

func (t *textWriter) pos(off uint32) string {
	line, col := t.lines.Position(off)
	return fmt.Sprintf("%d:%d", line, col)
}

func (t *textWriter) header() {
	var mode []string
	if t.f.Program.Module {
		mode = append(mode, "module")
	} else {
		mode = append(mode, "script")
	}
	if t.f.Program.TypeScript {
		mode = append(mode, "typescript")
	}
	t.printf("%s (%s)\n", t.f.Path, strings.Join(mode, ", "))
}

// section writes a titled block whose body is indented by two spaces.
// Empty bodies are omitted.
func (t *textWriter) section(title string, body func(*bytes.Buffer)) {
	var b bytes.Buffer
	body(&b)
	if b.Len() == 0 {
		return
	}
	t.printf("%s:\n%s", title, indent.String(b.String(), 2))
}

func (t *textWriter) scopes(b *bytes.Buffer) {
	b.WriteString(t.scope(t.sem.Scopes.Root()))
}

// scope renders a scope, its bindings and its nested scopes.
func (t *textWriter) scope(id semantic.ScopeID) string {
	var b strings.Builder
	node := t.sem.Scopes.Node(id)
	fmt.Fprintf(&b, "scope %d [%s] node %d\n", id, t.sem.Scopes.Flags(id), node)
	var inner strings.Builder
	for name, sym := range t.sem.Scopes.Bindings(id).All() {
		fmt.Fprintf(&inner, "%s -> symbol %d\n", name, sym)
	}
	for _, child := range t.sem.Scopes.Children(id) {
		inner.WriteString(t.scope(child))
	}
	b.WriteString(indent.String(inner.String(), 2))
	return b.String()
}

func (t *textWriter) symbols(b *bytes.Buffer) {
	st := t.sem.Symbols
	for sym := range st.All() {
		span := st.Span(sym)
		fmt.Fprintf(b, "%d %s [%s] at %s scope %d", sym, st.Name(sym), st.Flags(sym), t.pos(span.Start), st.Scope(sym))
		if n := len(st.ResolvedReferenceIDs(sym)); n > 0 {
			fmt.Fprintf(b, " refs %d", n)
		}
		if st.SymbolIsMutated(sym) {
			b.WriteString(" mutated")
		}
		b.WriteByte('\n')
		for _, re := range st.Redeclarations(sym) {
			fmt.Fprintf(b, "  redeclared at %s\n", t.pos(re.Start))
		}
	}
}

func (t *textWriter) references(b *bytes.Buffer) {
	st := t.sem.Symbols
	for i := 0; i < st.NumReferences(); i++ {
		ref := st.Reference(semantic.ReferenceID(i))
		fmt.Fprintf(b, "%d %s [%s] node %d -> ", i, ref.Name, ref.Flags, ref.Node)
		if ref.IsResolved() {
			fmt.Fprintf(b, "symbol %d\n", ref.Symbol)
		} else {
			b.WriteString("unresolved\n")
		}
	}
	for _, name := range t.sem.UnresolvedNames() {
		fmt.Fprintf(b, "unresolved %s x%d\n", name, len(t.sem.Unresolved[name]))
	}
}

func (t *textWriter) enums(b *bytes.Buffer) {
	for _, sym := range t.f.Enums.Enums() {
		members, _ := t.f.Enums.Enum(sym)
		fmt.Fprintf(b, "enum %s (symbol %d)\n", t.sem.SymbolName(sym), sym)
		for name, v := range members.All() {
			fmt.Fprintf(b, "  %s = %s\n", name, v.Text())
		}
	}
}

func (t *textWriter) cfg(b *bytes.Buffer) {
	g := t.sem.CFG
	reachable := g.Reachable()
	for i := range g.Blocks {
		id := cfg.BlockID(i)
		fmt.Fprintf(b, "block %d owner %d", id, g.Owner(id))
		if !reachable[id] {
			b.WriteString(" unreachable")
		}
		b.WriteByte('\n')
		for _, in := range g.Block(id).Instructions {
			fmt.Fprintf(b, "  %s", in.Kind)
			if in.Kind != cfg.InstrUnreachable {
				fmt.Fprintf(b, " r%d", in.Register)
			}
			if in.Kind == cfg.InstrAssignment {
				fmt.Fprintf(b, " %s", in.Value)
			}
			fmt.Fprintf(b, " node %d\n", in.Node)
		}
		for e := range g.Outgoing(id) {
			fmt.Fprintf(b, "  -> %d %s\n", e.To, e.Kind)
		}
	}
}

func (t *textWriter) errors(b *bytes.Buffer) {
	if t.f.SyntaxError != nil {
		for _, span := range t.f.SyntaxError.Spans {
			fmt.Fprintf(b, "%s: syntax error\n", t.pos(span.Start))
		}
	}
	for _, e := range t.sem.Errors {
		msg := wordwrap.String(e.Msg, wrapWidth)
		fmt.Fprintf(b, "%s: %s\n", t.pos(e.Span.Start), strings.ReplaceAll(msg, "\n", "\n  "))
	}
}
