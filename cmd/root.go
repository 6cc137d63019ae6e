// Copyright © 2018 The ELPS authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exitError carries a process exit code out of a command. A nil err means
// the command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// errFindings is returned when a command reported problems in its input.
var errFindings = &exitError{code: 1}

// usageError marks a bad invocation, such as an unreadable file.
func usageError(err error) error {
	return &exitError{code: 2, err: err}
}

// NewRootCommand builds the jsem command tree. Each call has its own
// configuration so commands can be run side by side in one process.
func NewRootCommand(opts ...Option) *cobra.Command {
	cfg := newConfig(opts)
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "jsem",
		Short: "Semantic analysis for JavaScript and TypeScript",
		Long: `jsem parses JavaScript and TypeScript and builds a semantic model of each
file: the scope tree, the symbol table, the resolved and unresolved
references, a control-flow graph and the folded values of enum members.

Getting started:
  jsem analyze file.ts          Print the scopes, symbols and references of a file
  jsem analyze --format=json src/...
                                Dump the semantic model of a tree as JSON
  jsem lint src/...             Report likely mistakes
  jsem enums file.ts            Print folded enum member values
  jsem lsp                      Start the language server on stdio

Configuration:
  Every persistent flag may also be set in .jsem.yaml (in the working
  directory or the home directory, or named with --config) or through a
  JSEM_ environment variable, for example JSEM_JOBS=8 or JSEM_LOG_LEVEL=debug.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.initConfig(cfgFile); err != nil {
				return usageError(err)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .jsem.yaml in the working or home directory)")
	flags.String("color", "auto", `Control colored output: "auto", "always", or "never".`)
	flags.String("columns", "utf16", `Unit of reported columns: "utf16" or "byte".`)
	flags.String("log-level", "warning", "Log level: panic, fatal, error, warning, info, debug or trace.")
	flags.Bool("cfg", false, "Build control-flow graphs.")
	flags.IntP("jobs", "j", runtime.NumCPU(), "Number of files analyzed concurrently.")
	flags.StringArray("exclude", nil, "Glob pattern for files to exclude (may be repeated).")
	flags.String("format", "text", `Output format: "text" or "json"; lint also accepts "short".`)
	for _, name := range []string{"color", "columns", "log-level", "cfg", "jobs", "exclude", "format"} {
		_ = cfg.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		AnalyzeCommand(cfg),
		lintCommand(cfg),
		EnumsCommand(cfg),
		lspCommand(cfg),
	)
	return rootCmd
}

// initConfig reads in the config file and environment variables and
// applies the log level.
func (c *cmdConfig) initConfig(cfgFile string) error {
	if cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
	} else {
		c.v.SetConfigName(".jsem")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(home)
		}
	}
	c.v.SetEnvPrefix("JSEM")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	level, err := logrus.ParseLevel(c.v.GetString("log-level"))
	if err != nil {
		return err
	}
	c.log.SetLevel(level)
	if used := c.v.ConfigFileUsed(); used != "" {
		c.log.WithField("file", used).Debug("using config file")
	}
	return nil
}

// Execute runs the jsem command and exits with its status. This is called
// by main.main().
func Execute() {
	os.Exit(run(NewRootCommand(), os.Args[1:]))
}

// run executes root with args and returns the process exit code.
func run(root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(root.ErrOrStderr(), "jsem: %v\n", ee.err)
		}
		return ee.code
	}
	// Flag parsing and unknown commands.
	fmt.Fprintf(root.ErrOrStderr(), "jsem: %v\n", err)
	return 2
}
