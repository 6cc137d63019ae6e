// Copyright © 2024 The ELPS authors

// Package semtest holds helpers shared by the tests of the analysis
// packages.
package semtest

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/parser"
	"github.com/luthersystems/jsem/semantic"
)

// Parse parses src and fails the test on any error, syntax errors
// included.
func Parse(t testing.TB, filename, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(context.Background(), []byte(src), filename)
	require.NoError(t, err, "parse %s", filename)
	return prog
}

// Analyze parses and analyzes src with the control-flow graph retained.
func Analyze(t testing.TB, filename, src string) *semantic.Semantic {
	t.Helper()
	return semantic.Analyze(Parse(t, filename, src), &semantic.Config{CFG: true, Filename: filename})
}

// Tracer installs a synchronous in-memory tracer provider as the global
// provider for the duration of the test and returns its exporter.
func Tracer(t testing.TB) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prev := otel.GetTracerProvider()
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
		otel.SetTracerProvider(prev)
	})
	otel.SetTracerProvider(tp)
	return exporter
}

// BenchmarkParse returns a benchmark parsing the file at path.
func BenchmarkParse(path string) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			_, err := parser.Parse(context.Background(), buf, path)
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}
