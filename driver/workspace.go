// Copyright © 2024 The ELPS authors

package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/luthersystems/jsem/parser"
)

// ScanWorkspace analyzes every source file under root with a one-off
// session.
func ScanWorkspace(ctx context.Context, root string, opts Options) ([]*File, error) {
	s, err := NewSession(opts)
	if err != nil {
		return nil, err
	}
	return s.ScanWorkspace(ctx, root)
}

// ScanWorkspace walks root and analyzes every file with a recognized
// extension, at most Options.Jobs at a time. It skips hidden directories,
// node_modules and excluded files. Files that cannot be read are skipped
// with a warning. The result is sorted by path.
//
// When root names a file it is analyzed alone, regardless of excludes.
func (s *Session) ScanWorkspace(ctx context.Context, root string) ([]*File, error) {
	ctx, span := s.tracer.Start(ctx, "ScanWorkspace", trace.WithAttributes(
		attribute.String("jsem.root", root),
		attribute.Int("jsem.jobs", s.opts.Jobs),
	))
	defer span.End()

	paths, err := s.Files(root)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("jsem.files", len(paths)))

	files := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := s.ReadFile(ctx, path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.log.WithField("file", path).WithError(err).Warn("skipping file")
				return nil
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := files[:0]
	for _, f := range files {
		if f != nil {
			out = append(out, f)
		}
	}
	return out, nil
}

// Files returns the sorted paths ScanWorkspace would analyze.
func (s *Session) Files(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if parser.LanguageOf(path) == parser.Unknown {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if s.excluded(filepath.ToSlash(rel), d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Session) excluded(rel, base string) bool {
	for _, g := range s.excludes {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// shouldSkipDir returns true for hidden directories (e.g. .git, .vscode)
// and node_modules, but not "." or "..".
func shouldSkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	if len(name) > 0 && name[0] == '.' {
		return true
	}
	return name == "node_modules"
}
