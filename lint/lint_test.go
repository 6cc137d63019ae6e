// Copyright © 2024 The ELPS authors

package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/driver"
)

// lintSource runs all default analyzers on the given source and returns diagnostics.
func lintSource(t *testing.T, filename, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: DefaultAnalyzers()}
	diags, err := l.LintFile(context.Background(), []byte(source), filename)
	require.NoError(t, err)
	return diags
}

// lintCheck runs a single analyzer on the given source.
func lintCheck(t *testing.T, analyzer *Analyzer, filename, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: []*Analyzer{analyzer}}
	diags, err := l.LintFile(context.Background(), []byte(source), filename)
	require.NoError(t, err)
	return diags
}

func messages(diags []Diagnostic) []string {
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, fmt.Sprintf("line %d: %s", d.Pos.Line, d.Message))
	}
	return msgs
}

// assertHasDiag checks that at least one diagnostic contains the given substring.
func assertHasDiag(t *testing.T, diags []Diagnostic, substr string) {
	t.Helper()
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("expected diagnostic containing %q, got: %v", substr, messages(diags))
}

// assertNoDiags checks that there are no diagnostics.
func assertNoDiags(t *testing.T, diags []Diagnostic) {
	t.Helper()
	if len(diags) > 0 {
		t.Errorf("expected no diagnostics, got %d: %v", len(diags), messages(diags))
	}
}

// assertDiagOnLine checks that a diagnostic exists on the given line with the given substring.
func assertDiagOnLine(t *testing.T, diags []Diagnostic, line int, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Pos.Line == line && strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("expected diagnostic on line %d containing %q, got: %v", line, substr, messages(diags))
}

func TestPosition_String(t *testing.T) {
	tests := []struct {
		pos  Position
		want string
	}{
		{Position{File: "a.js"}, "a.js"},
		{Position{File: "a.js", Line: 3}, "a.js:3"},
		{Position{File: "a.js", Line: 3, Col: 7}, "a.js:3:7"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.String())
		})
	}
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Pos:      Position{File: "a.js", Line: 2, Col: 5},
		Message:  "'a' is already defined",
		Analyzer: "no-redeclare",
		Notes:    []string{"first declared at 1:5"},
	}
	assert.Equal(t, "a.js:2:5: 'a' is already defined (no-redeclare)\n  = note: first declared at 1:5", d.String())
}

func TestSeverity_JSON(t *testing.T) {
	for _, sev := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		t.Run(sev.String(), func(t *testing.T) {
			data, err := json.Marshal(sev)
			require.NoError(t, err)
			var got Severity
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, sev, got)
		})
	}
	data, err := json.Marshal(severityUnset)
	require.NoError(t, err)
	assert.Equal(t, `"warning"`, string(data))

	var s Severity
	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &s))
}

func TestLintFile_AnalyzerError(t *testing.T) {
	failing := &Analyzer{
		Name: "failing",
		Run:  func(*Pass) error { return errors.New("boom") },
	}
	l := &Linter{Analyzers: []*Analyzer{failing}}
	_, err := l.LintFile(context.Background(), []byte("x;"), "a.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.js: analyzer failing: boom")
}

func TestLintFile_Unsupported(t *testing.T) {
	l := &Linter{Analyzers: DefaultAnalyzers()}
	_, err := l.LintFile(context.Background(), []byte("x"), "a.py")
	assert.Error(t, err)
}

func TestLintFile_Sorted(t *testing.T) {
	diags := lintSource(t, "a.js", "b = 1;\nconst c = 1;\nc = 2;\nx;\n")
	require.NotEmpty(t, diags)
	for i := 1; i < len(diags); i++ {
		prev, cur := diags[i-1].Pos, diags[i].Pos
		assert.True(t, prev.Line < cur.Line || (prev.Line == cur.Line && prev.Col <= cur.Col), "%v before %v", prev, cur)
	}
	for _, d := range diags {
		assert.Equal(t, "a.js", d.Pos.File)
		assert.NotEmpty(t, d.Analyzer)
	}
}

func TestSyntax_Positive_ParseError(t *testing.T) {
	diags := lintCheck(t, AnalyzerSyntax, "a.js", "let x = 1;\nlet = ;\n")
	assertDiagOnLine(t, diags, 2, "syntax error")
	for _, d := range diags {
		assert.Equal(t, SeverityError, d.Severity)
	}
}

func TestSyntax_Positive_IllegalBreak(t *testing.T) {
	diags := lintCheck(t, AnalyzerSyntax, "a.js", "while (a) {}\nbreak;\n")
	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Pos.Line)
	assert.Equal(t, 1, diags[0].Pos.Col)
	assert.Equal(t, "illegal break statement", diags[0].Message)
}

func TestSyntax_Positive_UndefinedLabel(t *testing.T) {
	diags := lintCheck(t, AnalyzerSyntax, "a.js", "for (;;) {\n  continue outer;\n}\n")
	assertDiagOnLine(t, diags, 2, "undefined label 'outer'")
}

func TestSyntax_Negative(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerSyntax, "a.js", "outer: for (;;) {\n  for (;;) { break outer; }\n}\n"))
}

func TestUndefined_Positive(t *testing.T) {
	diags := lintCheck(t, AnalyzerUndefined, "a.js", "let a = 1;\nfoo(a);\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "'foo' is not defined", diags[0].Message)
	assert.Equal(t, 2, diags[0].Pos.Line)
	assert.Equal(t, 1, diags[0].Pos.Col)
	assert.Equal(t, uint32(14), diags[0].Span.End)
}

func TestUndefined_Positive_EachReference(t *testing.T) {
	diags := lintCheck(t, AnalyzerUndefined, "a.js", "missing();\nmissing = 2;\n")
	assert.Len(t, diags, 2)
}

func TestUndefined_Negative(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"globals", "console.log(Math.max(1, 2), JSON, Promise);\n"},
		{"node", "module.exports = require('x');\nprocess.exit(0);\n"},
		{"typeof", "if (typeof window2 === 'undefined') {}\n"},
		{"typeof parens", "typeof (window2);\n"},
		{"hoisted", "f();\nfunction f() {}\n"},
		{"closure", "function f() { return v; }\nvar v = 1;\nf();\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNoDiags(t, lintCheck(t, AnalyzerUndefined, "a.js", tt.src))
		})
	}
}

func TestUndefined_MergedEnum(t *testing.T) {
	src := "export enum E { A = 1 }\nexport enum E { B = A + 1 }\n"
	assertNoDiags(t, lintCheck(t, AnalyzerUndefined, "a.ts", src))

	diags := lintCheck(t, AnalyzerUndefined, "a.ts", "enum E { A = B }\nenum E { B = 1 }\n")
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 1, "'B' is not defined")
}

func TestUnused_Positive(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		want string
	}{
		{"initialized", "let a = 1;\n", 1, "'a' is assigned a value but never used"},
		{"assigned later", "let b;\nb = 2;\n", 1, "'b' is assigned a value but never used"},
		{"declared only", "let c;\n", 1, "'c' is defined but never used"},
		{"function", "function f() {}\n", 1, "'f' is defined but never used"},
		{"class", "class K {}\n", 1, "'K' is defined but never used"},
		{"nested", "function f() {\n  const inner = 1;\n}\nf();\n", 2, "'inner' is assigned a value but never used"},
		{"destructured", "const { p, q } = o;\nuse(p);\n", 1, "'q' is assigned a value but never used"},
		{"import", "import d from 'd';\n", 1, "'d' is defined but never used"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := "a.js"
			if strings.HasPrefix(tt.src, "import") {
				filename = "a.mjs"
			}
			diags := lintCheck(t, AnalyzerUnused, filename, tt.src)
			require.Len(t, diags, 1, "%v", messages(diags))
			assertDiagOnLine(t, diags, tt.line, tt.want)
			assert.Equal(t, SeverityWarning, diags[0].Severity)
		})
	}
}

func TestUnused_Params_AfterUsed(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnused, "a.js", "function f(x, y, z) {\n  return y;\n}\nf();\n")
	require.Len(t, diags, 1, "%v", messages(diags))
	assert.Equal(t, "'z' is defined but never used", diags[0].Message)
	assert.Equal(t, 18, diags[0].Pos.Col)
}

func TestUnused_Params_AllUnused(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnused, "a.js", "[1].map((a, b) => 0);\n")
	assert.Len(t, diags, 2)
	assertHasDiag(t, diags, "'a' is defined")
	assertHasDiag(t, diags, "'b' is defined")
}

func TestUnused_Negative(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		src      string
	}{
		{"read", "a.js", "let a = 1;\nuse(a);\n"},
		{"compound", "a.js", "let n = 0;\nn += 1;\n"},
		{"underscore", "a.js", "const _unused = 1;\n"},
		{"catch", "a.js", "try {} catch (e) {}\n"},
		{"function expression name", "a.js", "const g = function h() {};\ng();\n"},
		{"class expression name", "a.js", "const k = class K {};\nk;\n"},
		{"export", "a.mjs", "export const x = 1;\nexport function f() {}\n"},
		{"export specifier", "a.mjs", "const y = 1;\nexport { y };\n"},
		{"ts types", "a.ts", "import { T } from 'x';\ninterface I {}\ntype A = number;\nenum E { X }\nclass C {}\n"},
		{"ambient", "a.ts", "declare const env: string;\n"},
		{"recursive read", "a.js", "function f(n) { return n && f(n - 1); }\nf(1);\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNoDiags(t, lintCheck(t, AnalyzerUnused, tt.filename, tt.src))
		})
	}
}

func TestRedeclare_Positive(t *testing.T) {
	diags := lintCheck(t, AnalyzerRedeclare, "a.js", "var a = 1;\nvar a = 2;\nuse(a);\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "'a' is already defined", diags[0].Message)
	assert.Equal(t, Position{File: "a.js", Line: 2, Col: 5}, diags[0].Pos)
	assert.Equal(t, []string{"first declared at 1:5"}, diags[0].Notes)
}

func TestRedeclare_Positive_FunctionJS(t *testing.T) {
	diags := lintCheck(t, AnalyzerRedeclare, "a.js", "function f() {}\nfunction f() {}\n")
	assertDiagOnLine(t, diags, 2, "'f' is already defined")
}

func TestRedeclare_Negative(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		src      string
	}{
		{"distinct scopes", "a.js", "let a = 1;\n{ let a = 2; }\n"},
		{"interface merge", "a.ts", "interface I { a: string }\ninterface I { b: string }\n"},
		{"enum merge", "a.ts", "enum E { A }\nenum E { B = 1 }\n"},
		{"namespace merge", "a.ts", "namespace N { }\nnamespace N { }\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNoDiags(t, lintCheck(t, AnalyzerRedeclare, tt.filename, tt.src))
		})
	}
}

func TestConstAssign_Positive(t *testing.T) {
	diags := lintCheck(t, AnalyzerConstAssign, "a.js", "const c = 1;\nc = 2;\nc++;\n")
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 2, "'c' is constant")
	assertDiagOnLine(t, diags, 3, "'c' is constant")
	assert.Equal(t, SeverityError, diags[0].Severity)
}

func TestConstAssign_Positive_Import(t *testing.T) {
	diags := lintCheck(t, AnalyzerConstAssign, "a.mjs", "import x from 'y';\nx = 1;\n")
	assertDiagOnLine(t, diags, 2, "'x' is constant")
}

func TestConstAssign_Positive_Destructuring(t *testing.T) {
	diags := lintCheck(t, AnalyzerConstAssign, "a.js", "const c = 1;\n[c] = [2];\n")
	assertDiagOnLine(t, diags, 2, "'c' is constant")
}

func TestConstAssign_Negative(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerConstAssign, "a.js", "const c = {};\nc.x = 1;\nlet d = 1;\nd = 2;\n{ const c = 3; }\n"))
}

func TestUnreachable_Positive_AfterReturn(t *testing.T) {
	src := "function f() {\n  return 1;\n  foo();\n  bar();\n}\nf();\n"
	diags := lintCheck(t, AnalyzerUnreachable, "a.js", src)
	require.Len(t, diags, 1, "%v", messages(diags))
	assert.Equal(t, "unreachable code", diags[0].Message)
	assert.Equal(t, 3, diags[0].Pos.Line)
	assert.Equal(t, "foo();\n  bar();", src[diags[0].Span.Start:diags[0].Span.End])
}

func TestUnreachable_Positive_Nested(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnreachable, "a.js", "function f() {\n  throw e;\n  if (a) {\n    b();\n  }\n}\n")
	require.Len(t, diags, 1, "%v", messages(diags))
	assert.Equal(t, 3, diags[0].Pos.Line)
}

func TestUnreachable_Positive_AfterBreak(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnreachable, "a.js", "while (a) {\n  break;\n  b();\n}\n")
	assertDiagOnLine(t, diags, 3, "unreachable code")
}

func TestUnreachable_Positive_InfiniteLoop(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnreachable, "a.js", "while (true) {}\nb();\n")
	assertDiagOnLine(t, diags, 2, "unreachable code")
}

func TestUnreachable_Negative(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"hoisted", "function f() {\n  return g();\n  function g() { return 1; }\n  var v;\n}\nf();\n"},
		{"conditional return", "function f() {\n  if (a) return 1;\n  b();\n}\n"},
		{"loop with break", "while (true) { if (a) break; }\nb();\n"},
		{"try finally", "try { a(); } finally { b(); }\nc();\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNoDiags(t, lintCheck(t, AnalyzerUnreachable, "a.js", tt.src))
		})
	}
}

func TestUnreachable_NoCFG(t *testing.T) {
	f, err := driver.AnalyzeFile(context.Background(), []byte("function f() {\n  return;\n  g();\n}\n"), "a.js", driver.Options{})
	require.NoError(t, err)
	l := &Linter{Analyzers: []*Analyzer{AnalyzerUnreachable}}
	diags, err := l.Lint(f)
	require.NoError(t, err)
	assertNoDiags(t, diags)
}

func TestNolint(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"all", "foo(); // nolint\n", 0},
		{"named", "foo(); // nolint:no-undef\n", 0},
		{"other analyzer", "foo(); // nolint:no-unused-vars\n", 1},
		{"list", "foo(); // nolint:syntax,no-undef\n", 0},
		{"block comment", "foo(); /* nolint */\n", 0},
		{"other line", "// nolint\nfoo();\n", 1},
		{"not a directive", "foo(); // nolintish\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := lintCheck(t, AnalyzerUndefined, "a.js", tt.src)
			assert.Len(t, diags, tt.want, "%v", messages(diags))
		})
	}
}

func TestFormatText(t *testing.T) {
	diags := lintSource(t, "a.js", "const c = 1;\nc = 2;\n")
	var buf bytes.Buffer
	FormatText(&buf, diags)
	assert.Equal(t, "a.js:2:1: 'c' is constant (no-const-assign)\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	diags := lintSource(t, "a.js", "undefinedThing;\n")
	require.NoError(t, FormatJSON(&buf, diags))
	var got []Diagnostic
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "no-undef", got[0].Analyzer)
	assert.Equal(t, SeverityError, got[0].Severity)
	assert.Contains(t, buf.String(), `"severity": "error"`)
}

func TestToDiagnostic(t *testing.T) {
	src := []byte("const c = 1;\nc = 2;\n")
	diags := lintSource(t, "a.js", string(src))
	require.Len(t, diags, 1)
	d := ToDiagnostic(diags[0], src)
	assert.Equal(t, diagnostic.SeverityError, d.Severity)
	assert.Equal(t, "no-const-assign", d.Code)
	require.Len(t, d.Spans, 1)
	assert.Equal(t, 2, d.Spans[0].Line)
	assert.Equal(t, 1, d.Spans[0].Col)
	assert.Equal(t, 1, d.Spans[0].EndCol)

	r := &diagnostic.Renderer{Color: diagnostic.ColorNever, Sources: map[string][]byte{"a.js": src}}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	assert.Contains(t, buf.String(), "error[no-const-assign]: 'c' is constant")
	assert.Contains(t, buf.String(), "c = 2;")
}

func TestSelectAnalyzers(t *testing.T) {
	all, err := SelectAnalyzers(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultAnalyzers()))

	got, err := SelectAnalyzers([]string{"no-unreachable", "syntax"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "syntax", got[0].Name)
	assert.Equal(t, "no-unreachable", got[1].Name)

	_, err = SelectAnalyzers([]string{"syntax", "bogus", "also-bogus"})
	assert.EqualError(t, err, "unknown analyzer: also-bogus, bogus")
}

func TestAnalyzerNamesAndDoc(t *testing.T) {
	assert.Equal(t, []string{"no-const-assign", "no-redeclare", "no-undef", "no-unreachable", "no-unused-vars", "syntax"}, AnalyzerNames())
	doc := AnalyzerDoc()
	for _, a := range DefaultAnalyzers() {
		assert.Contains(t, doc, "  "+a.Name+"\n")
		assert.NotEmpty(t, a.Doc)
	}
}
