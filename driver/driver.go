// Copyright © 2024 The ELPS authors

// Package driver runs the analysis pipeline over source files: parsing,
// semantic analysis and constant enum evaluation. Each phase is traced with
// OpenTelemetry and timed in the debug log.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/constenum"
	"github.com/luthersystems/jsem/parser"
	"github.com/luthersystems/jsem/semantic"
)

// TracerName is the instrumentation name of the spans a Session starts.
const TracerName = "jsem"

// Options configures a Session.
type Options struct {
	// CFG keeps the control-flow graph in each analyzed file.
	CFG bool
	// Jobs bounds the number of files analyzed concurrently by
	// ScanWorkspace. Values below one mean one job.
	Jobs int
	// Exclude holds glob patterns. A file is skipped by ScanWorkspace when
	// a pattern matches its slash-separated path relative to the scan root
	// or its base name.
	Exclude []string
	// Logger receives phase timings at debug level. The standard logrus
	// logger is used when nil.
	Logger logrus.FieldLogger
}

// File is the analysis of one source file. A File is never modified after
// it is returned, so it may be shared between goroutines.
type File struct {
	Path     string
	Source   []byte
	Language parser.Language
	Program  *ast.Program
	Semantic *semantic.Semantic
	Enums    *constenum.Result
	// SyntaxError is set when the file did not parse cleanly. The remaining
	// fields then describe the best-effort program.
	SyntaxError *parser.SyntaxError
}

// Session analyzes files with a fixed set of options.
type Session struct {
	opts     Options
	log      logrus.FieldLogger
	tracer   trace.Tracer
	excludes []glob.Glob
}

// NewSession validates opts and returns a session using them.
func NewSession(opts Options) (*Session, error) {
	s := &Session{
		opts:   opts,
		log:    opts.Logger,
		tracer: otel.GetTracerProvider().Tracer(TracerName),
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.opts.Jobs < 1 {
		s.opts.Jobs = 1
	}
	for _, p := range opts.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		s.excludes = append(s.excludes, g)
	}
	return s, nil
}

// AnalyzeFile analyzes src with a one-off session.
func AnalyzeFile(ctx context.Context, src []byte, filename string, opts Options) (*File, error) {
	s, err := NewSession(opts)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeFile(ctx, src, filename)
}

// ReadFile reads and analyzes the file at path.
func (s *Session) ReadFile(ctx context.Context, path string) (*File, error) {
	src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return nil, err
	}
	return s.AnalyzeFile(ctx, src, path)
}

// AnalyzeFile parses src, analyzes the program and evaluates its enums.
// Syntax errors do not fail the analysis; they are recorded in the
// returned File. Files of an unknown language yield parser.ErrUnsupported.
func (s *Session) AnalyzeFile(ctx context.Context, src []byte, filename string) (*File, error) {
	ctx, span := s.tracer.Start(ctx, "AnalyzeFile", trace.WithAttributes(
		semconv.CodeFilepath(filename),
		attribute.Int("jsem.file.size", len(src)),
	))
	defer span.End()

	f := &File{
		Path:     filename,
		Source:   src,
		Language: parser.LanguageOf(filename),
	}
	log := s.log.WithField("file", filename)

	err := s.phase(ctx, log, "parse", func() error {
		prog, err := parser.Parse(ctx, src, filename)
		var syn *parser.SyntaxError
		if errors.As(err, &syn) {
			f.SyntaxError = syn
			err = nil
		}
		f.Program = prog
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if f.SyntaxError != nil {
		span.AddEvent("syntax error", trace.WithAttributes(
			attribute.Int("jsem.syntax.errors", len(f.SyntaxError.Spans)),
		))
	}

	s.step(ctx, log, "analyze", func(span trace.Span) {
		f.Semantic = semantic.Analyze(f.Program, &semantic.Config{
			CFG:      s.opts.CFG,
			Filename: filename,
		})
		span.SetAttributes(attribute.Int("jsem.semantic.errors", len(f.Semantic.Errors)))
	})
	s.step(ctx, log, "enums", func(span trace.Span) {
		f.Enums = constenum.Evaluate(f.Semantic)
		span.SetAttributes(attribute.Int("jsem.enums", len(f.Enums.Enums())))
	})

	span.SetAttributes(
		attribute.String("jsem.language", f.Language.String()),
		attribute.Int("jsem.scopes", f.Semantic.Scopes.Len()),
		attribute.Int("jsem.symbols", f.Semantic.Symbols.Len()),
		attribute.Int("jsem.references", f.Semantic.Symbols.NumReferences()),
	)
	return f, nil
}

// phase runs fn inside a child span and logs its duration.
func (s *Session) phase(ctx context.Context, log logrus.FieldLogger, name string, fn func() error) error {
	_, span := s.tracer.Start(ctx, name)
	defer span.End()
	start := time.Now()
	err := fn()
	entry := phaseEntry(log, name, start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		entry.WithError(err).Debug("phase failed")
		return err
	}
	entry.Debug("phase done")
	return nil
}

// step is phase for work that cannot fail. fn may annotate the span.
func (s *Session) step(ctx context.Context, log logrus.FieldLogger, name string, fn func(trace.Span)) {
	_, span := s.tracer.Start(ctx, name)
	defer span.End()
	start := time.Now()
	fn(span)
	phaseEntry(log, name, start).Debug("phase done")
}

func phaseEntry(log logrus.FieldLogger, name string, start time.Time) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"phase":   name,
		"elapsed": time.Since(start),
	})
}
