// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/lint"
)

// LintCommand creates the "lint" command. Embedders can pass WithAnalyzers
// to run their own checks.
func LintCommand(opts ...Option) *cobra.Command {
	return lintCommand(newConfig(opts))
}

func lintCommand(cfg *cmdConfig) *cobra.Command {
	var (
		checks    []string
		list      bool
		stdinName string
	)
	cmd := &cobra.Command{
		Use:   "lint [flags] [files...]",
		Short: "Report likely mistakes in JavaScript and TypeScript files",
		Long: `Run static analysis checks on JavaScript and TypeScript files.

The linter reports likely mistakes, similar to "go vet" for Go. Each check
is an independent analyzer over the semantic model of a file. Style issues
are out of scope.

Arguments are expanded as for "jsem analyze". With no arguments, source is
read from stdin and named by --stdin-name.

Output formats (--format):
  text   Annotated source snippets (default)
  short  One line per finding: file:line:col: message (check)
  json   A JSON array of findings

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a specific diagnostic, add a comment at the end of the line:
  x = 42; // nolint:no-undef

To suppress all checks on a line:
  x = 42; // nolint

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `Examples:
  jsem lint file.ts
  jsem lint src/...
  jsem lint --format=json file.js
  jsem lint --checks=no-undef,no-unused-vars src/...
  jsem lint --exclude='*.generated.ts' src/...
  cat file.js | jsem lint --stdin-name=file.js`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				writeAnalyzerList(cmd.OutOrStdout(), cfg.analyzers)
				return nil
			}
			analyzers, err := cfg.selectAnalyzers(checks)
			if err != nil {
				return usageError(err)
			}
			format := cfg.v.GetString("format")
			switch format {
			case "text", "short", "json":
			default:
				return usageError(fmt.Errorf("unknown format %q for lint: want text, short or json", format))
			}
			// no-unreachable needs the control-flow graph.
			cfg.v.Set("cfg", true)

			files, err := cfg.loadFiles(cmd.Context(), cmd.InOrStdin(), args, stdinName)
			if err != nil {
				return err
			}
			l := &lint.Linter{Analyzers: analyzers, Options: cfg.driverOptions()}
			var all []lint.Diagnostic
			sources := make(map[string][]byte, len(files))
			for _, f := range files {
				diags, err := l.Lint(f)
				if err != nil {
					return err
				}
				sources[f.Path] = f.Source
				all = append(all, diags...)
			}

			switch format {
			case "json":
				if err := lint.FormatJSON(cmd.OutOrStdout(), all); err != nil {
					return err
				}
			case "short":
				lint.FormatText(cmd.OutOrStdout(), all)
			default:
				if err := cfg.renderLint(cmd.ErrOrStderr(), files, all, sources); err != nil {
					return err
				}
			}
			if len(all) > 0 {
				return errFindings
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&checks, "checks", nil,
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().BoolVar(&list, "list", false,
		"List available checks and exit.")
	cmd.Flags().StringVar(&stdinName, "stdin-name", "stdin.ts",
		"File name used for source read from stdin.")
	return cmd
}

func (c *cmdConfig) renderLint(w io.Writer, files []*driver.File, diags []lint.Diagnostic, sources map[string][]byte) error {
	if len(diags) == 0 {
		return nil
	}
	r, err := c.newRenderer(files)
	if err != nil {
		return usageError(err)
	}
	ds := make([]diagnostic.Diagnostic, len(diags))
	for i, d := range diags {
		ds[i] = lintDiagToDiagnostic(d, sources[d.Pos.File])
	}
	return r.RenderAll(w, ds)
}

// writeAnalyzerList prints each analyzer name followed by its wrapped
// documentation.
func writeAnalyzerList(w io.Writer, analyzers []*lint.Analyzer) {
	for _, a := range analyzers {
		fmt.Fprintf(w, "%s (%s)\n", a.Name, a.Severity)
		doc := wordwrap.String(strings.TrimSpace(a.Doc), 72)
		fmt.Fprintln(w, indent.String(doc, 4))
	}
}
