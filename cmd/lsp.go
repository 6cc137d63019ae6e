// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luthersystems/jsem/lsp"
)

// LSPCommand creates the "lsp" command. Embedders can pass WithAnalyzers
// to publish diagnostics from their own checks.
func LSPCommand(opts ...Option) *cobra.Command {
	return lspCommand(newConfig(opts))
}

func lspCommand(cfg *cmdConfig) *cobra.Command {
	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the JavaScript and TypeScript language server",
		Long: `Start a Language Server Protocol server for JavaScript and TypeScript.

The language server provides diagnostics from the lint checks, hover,
go-to-definition, find references, document highlights, completion,
document and workspace symbols, folding ranges, semantic tokens and rename.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Logs are written to stderr, so stdio transport is not disturbed.

Examples:
  jsem lsp                           Start with stdio transport
  jsem lsp --stdio                   Same as above (explicit)
  jsem lsp --port 7998               Start with TCP on port 7998
  jsem lsp --log-level=debug         Log analysis timings

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "jsem lsp --stdio" for .js, .jsx, .ts and .tsx files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.log.SetOutput(cmd.ErrOrStderr())
			srv := lsp.New(
				lsp.WithOptions(cfg.driverOptions()),
				lsp.WithAnalyzers(cfg.analyzers),
				lsp.WithLogger(cfg.log),
			)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				cfg.log.WithField("addr", addr).Info("jsem language server listening")
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}
