// Copyright © 2024 The ELPS authors

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/report"
)

// EnumsCommand creates the "enums" command, which prints the folded values
// of enum members.
func EnumsCommand(cfg *cmdConfig) *cobra.Command {
	var stdinName string
	cmd := &cobra.Command{
		Use:   "enums [flags] [files...]",
		Short: "Print the constant values of TypeScript enum members",
		Long: `Evaluate the members of every enum declaration and print their values.

Members without an initializer count up from the previous numeric member.
Initializers may refer to earlier members of the same enum, including
members of earlier declarations merged into it. Members whose value cannot
be computed at compile time are omitted.

Examples:
  jsem enums file.ts
  jsem enums --format=json src/...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := cfg.v.GetString("format")
			if format != "text" && format != "json" {
				return usageError(fmt.Errorf("unknown format %q for enums: want text or json", format))
			}
			files, err := cfg.loadFiles(cmd.Context(), cmd.InOrStdin(), args, stdinName)
			if err != nil {
				return err
			}
			if format == "json" {
				return writeEnumsJSON(cmd.OutOrStdout(), files)
			}
			writeEnumsText(cmd.OutOrStdout(), files)
			return nil
		},
	}
	cmd.Flags().StringVar(&stdinName, "stdin-name", "stdin.ts",
		"File name used for source read from stdin.")
	return cmd
}

// writeEnumsText prints one block per enum. The file name is printed
// before the enums of each file when there is more than one file.
func writeEnumsText(w io.Writer, files []*driver.File) {
	for _, f := range files {
		if f.Enums == nil || len(f.Enums.Enums()) == 0 {
			continue
		}
		if len(files) > 1 {
			fmt.Fprintf(w, "%s:\n", f.Path)
		}
		for _, sym := range f.Enums.Enums() {
			fmt.Fprintf(w, "enum %s\n", f.Semantic.SymbolName(sym))
			members, _ := f.Enums.Enum(sym)
			for name, v := range members.All() {
				fmt.Fprintf(w, "  %s = %s\n", name, v.Text())
			}
		}
	}
}

type fileEnums struct {
	Path  string        `json:"path"`
	Enums []report.Enum `json:"enums"`
}

func writeEnumsJSON(w io.Writer, files []*driver.File) error {
	out := make([]fileEnums, 0, len(files))
	for _, f := range files {
		e := report.Build(f).Enums
		if e == nil {
			e = []report.Enum{}
		}
		out = append(out, fileEnums{Path: f.Path, Enums: e})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
