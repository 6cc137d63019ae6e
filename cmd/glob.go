// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/parser"
)

// expandArgs expands command line arguments into source file paths.
// Directories and patterns ending with "/..." expand to every source file
// found recursively beneath them, honoring the session's excludes.
// Arguments holding glob metacharacters are matched against the files
// under their static prefix. Other arguments pass through unchanged.
func expandArgs(s *driver.Session, args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(paths ...string) {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	for _, arg := range args {
		switch {
		case strings.HasSuffix(arg, "/..."):
			dir := strings.TrimSuffix(arg, "/...")
			if dir == "" {
				dir = "."
			}
			files, err := s.Files(dir)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			add(files...)
		case hasMeta(arg):
			files, err := globFiles(s, arg)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			add(files...)
		default:
			files, err := s.Files(arg)
			if err != nil {
				return nil, err
			}
			add(files...)
		}
	}
	return out, nil
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// globFiles returns the source files matching pattern. Only the directory
// before the first metacharacter is walked, skipping hidden directories and
// node_modules the way a workspace scan does.
func globFiles(s *driver.Session, pattern string) ([]string, error) {
	pattern = filepath.ToSlash(pattern)
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}
	root := "."
	if i := strings.LastIndex(pattern[:strings.IndexAny(pattern, "*?[{")], "/"); i >= 0 {
		root = pattern[:i]
		if root == "" {
			root = "/"
		}
	}
	var out []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if parser.LanguageOf(path) == parser.Unknown {
			return nil
		}
		p := filepath.ToSlash(path)
		if root == "." {
			p = strings.TrimPrefix(p, "./")
		}
		if g.Match(p) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// loadFiles analyzes the files named by args. With no arguments the source
// is read from stdin and analyzed under stdinName. A file that cannot be
// read or has an unsupported extension is a usage error.
func (c *cmdConfig) loadFiles(ctx context.Context, stdin io.Reader, args []string, stdinName string) ([]*driver.File, error) {
	s, err := driver.NewSession(c.driverOptions())
	if err != nil {
		return nil, usageError(err)
	}
	if len(args) == 0 {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return nil, usageError(fmt.Errorf("reading stdin: %w", err))
		}
		f, err := s.AnalyzeFile(ctx, src, stdinName)
		if err != nil {
			return nil, usageError(err)
		}
		return []*driver.File{f}, nil
	}

	paths, err := expandArgs(s, args)
	if err != nil {
		return nil, usageError(err)
	}
	files := make([]*driver.File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.v.GetInt("jobs"), 1))
	for i, path := range paths {
		g.Go(func() error {
			f, err := s.ReadFile(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, usageError(err)
	}
	c.log.WithField("files", len(files)).Debug("analyzed")
	return files, nil
}
