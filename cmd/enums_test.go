// Copyright © 2024 The ELPS authors

package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const enumsSource = `enum Color { Red, Green = 4, Blue }
const enum S { A = "a", B = A + "b" }
enum Mixed { X = Math.random(), Y = 1 }
`

func TestEnums_Text(t *testing.T) {
	path := writeFile(t, "colors.ts", enumsSource)
	res := runCLI(t, "", []string{"enums", path})
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, `enum Color
  Red = 0
  Green = 4
  Blue = 5
enum S
  A = "a"
  B = "ab"
enum Mixed
  Y = 1
`, res.stdout)
}

func TestEnums_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.ts": "enum A { One = 1 }",
		"b.js": "let noEnums;",
		"c.ts": "enum C { Z }",
	})
	res := runCLI(t, "", []string{"enums", dir})
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, dir+"/a.ts:\nenum A\n  One = 1\n"+dir+"/c.ts:\nenum C\n  Z = 0\n", res.stdout)
}

func TestEnums_JSON(t *testing.T) {
	res := runCLI(t, enumsSource, []string{"enums", "--format=json"})
	assert.Equal(t, 0, res.code, res.stderr)

	var got []struct {
		Path  string `json:"path"`
		Enums []struct {
			Name    string `json:"name"`
			Members []struct {
				Name  string          `json:"name"`
				Value json.RawMessage `json:"value"`
			} `json:"members"`
		} `json:"enums"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "stdin.ts", got[0].Path)
	require.Len(t, got[0].Enums, 3)
	assert.Equal(t, "Color", got[0].Enums[0].Name)
	assert.Equal(t, "Blue", got[0].Enums[0].Members[2].Name)
	assert.JSONEq(t, `5`, string(got[0].Enums[0].Members[2].Value))
	assert.JSONEq(t, `"ab"`, string(got[0].Enums[1].Members[1].Value))
}

func TestLSPCommand_Flags(t *testing.T) {
	cmd := LSPCommand()
	assert.NotNil(t, cmd.Flags().Lookup("stdio"))
	assert.NotNil(t, cmd.Flags().Lookup("port"))

	res := runCLI(t, "", []string{"lsp", "extra"})
	assert.Equal(t, 2, res.code)
}
