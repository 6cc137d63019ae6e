// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/lint"
)

// Option configures an exported command factory (NewRootCommand,
// LintCommand, LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	v         *viper.Viper
	log       *logrus.Logger
	analyzers []*lint.Analyzer
}

// WithAnalyzers replaces the default lint analyzers. Embedders use it to
// add their own checks to the lint and lsp commands.
func WithAnalyzers(analyzers []*lint.Analyzer) Option {
	return func(c *cmdConfig) { c.analyzers = analyzers }
}

// WithLogger sets the logger the commands and the driver write to. Its
// level is still set from the log-level setting.
func WithLogger(log *logrus.Logger) Option {
	return func(c *cmdConfig) { c.log = log }
}

func newConfig(opts []Option) *cmdConfig {
	c := &cmdConfig{v: viper.New()}
	c.v.SetDefault("color", "auto")
	c.v.SetDefault("columns", "utf16")
	c.v.SetDefault("log-level", "warning")
	c.v.SetDefault("jobs", runtime.NumCPU())
	c.v.SetDefault("format", "text")
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if c.analyzers == nil {
		c.analyzers = lint.DefaultAnalyzers()
	}
	return c
}

// driverOptions builds analysis options from the merged flags, config file
// and environment.
func (c *cmdConfig) driverOptions() driver.Options {
	return driver.Options{
		CFG:     c.v.GetBool("cfg"),
		Jobs:    c.v.GetInt("jobs"),
		Exclude: c.v.GetStringSlice("exclude"),
		Logger:  c.log,
	}
}

// selectAnalyzers narrows the configured analyzers to a comma-separated
// list of names. An empty list selects all of them.
func (c *cmdConfig) selectAnalyzers(checks []string) ([]*lint.Analyzer, error) {
	if len(checks) == 0 {
		return c.analyzers, nil
	}
	byName := make(map[string]*lint.Analyzer, len(c.analyzers))
	for _, a := range c.analyzers {
		byName[a.Name] = a
	}
	var out []*lint.Analyzer
	var unknown []string
	for _, name := range checks {
		if a, ok := byName[name]; ok {
			out = append(out, a)
		} else {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown analyzer: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
