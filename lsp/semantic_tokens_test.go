// Copyright © 2024 The ELPS authors

package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func semanticTokens(t *testing.T, s *Server, uri, src string) []rawToken {
	t.Helper()
	doc := openDoc(s, uri, src)
	result, err := s.textDocumentSemanticTokensFull(mockContext(), &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return decodeTokens(result.Data)
}

func TestSemanticTokensFull(t *testing.T) {
	s := testServer()

	t.Run("const declaration and use", func(t *testing.T) {
		doc := openDoc(s, "file:///test/const.js", "const x = 1;\nx;\n")
		result, err := s.textDocumentSemanticTokensFull(mockContext(), &protocol.SemanticTokensParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, []protocol.UInteger{
			0, 6, 1, semTokenVariable, semModDeclaration | semModReadonly,
			1, 0, 1, semTokenVariable, semModReadonly,
		}, result.Data)
	})

	t.Run("function and parameters", func(t *testing.T) {
		tokens := semanticTokens(t, s, "file:///test/fn.js", "function add(a, b) { return a + b; }")
		require.Len(t, tokens, 5)
		assert.Equal(t, rawToken{line: 0, startChar: 9, length: 3, tokenType: semTokenFunction, modifiers: semModDeclaration}, tokens[0])
		assert.Equal(t, semTokenParameter, tokens[1].tokenType)
		assert.Equal(t, semModDeclaration, tokens[1].modifiers)
		assert.Equal(t, semTokenParameter, tokens[3].tokenType)
		assert.Equal(t, 0, tokens[3].modifiers)
	})

	t.Run("typescript kinds", func(t *testing.T) {
		src := "enum E { A }\nclass C {}\ninterface I {}\nnamespace N {}\n"
		byLine := make(map[int][]int)
		for _, tok := range semanticTokens(t, s, "file:///test/kinds.ts", src) {
			byLine[tok.line] = append(byLine[tok.line], tok.tokenType)
		}
		assert.Equal(t, []int{semTokenEnum, semTokenEnumMember}, byLine[0])
		assert.Equal(t, []int{semTokenClass}, byLine[1])
		assert.Equal(t, []int{semTokenInterface}, byLine[2])
		assert.Equal(t, []int{semTokenNamespace}, byLine[3])
	})

	t.Run("known globals are default library", func(t *testing.T) {
		tokens := semanticTokens(t, s, "file:///test/global.js", "console.log(mystery);")
		require.Len(t, tokens, 1, "unknown unresolved names produce no token")
		assert.Equal(t, semModDefaultLibrary, tokens[0].modifiers)
		assert.Equal(t, 7, tokens[0].length)
	})

	t.Run("utf16 columns", func(t *testing.T) {
		tokens := semanticTokens(t, s, "file:///test/utf16.js", "const s = '\U0001F600'; let v = s;")
		require.Len(t, tokens, 3)
		assert.Equal(t, 20, tokens[1].startChar)
	})

	t.Run("nil doc returns nil", func(t *testing.T) {
		result, err := s.textDocumentSemanticTokensFull(mockContext(), &protocol.SemanticTokensParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.js"},
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestDeltaEncode(t *testing.T) {
	tokens := []rawToken{
		{line: 0, startChar: 0, length: 3, tokenType: semTokenClass, modifiers: 0},
		{line: 0, startChar: 5, length: 4, tokenType: semTokenFunction, modifiers: semModDeclaration},
		{line: 1, startChar: 2, length: 1, tokenType: semTokenVariable, modifiers: 0},
	}
	data := deltaEncode(tokens)
	require.Len(t, data, 15) // 3 tokens * 5

	// Token 1: deltaLine=0, deltaChar=0, len=3, class(2), mods=0
	assert.Equal(t, protocol.UInteger(0), data[0])
	assert.Equal(t, protocol.UInteger(0), data[1])
	assert.Equal(t, protocol.UInteger(3), data[2])
	assert.Equal(t, protocol.UInteger(semTokenClass), data[3])

	// Token 2: same line, deltaChar=5, len=4, function(8), mods=declaration(1)
	assert.Equal(t, protocol.UInteger(0), data[5])
	assert.Equal(t, protocol.UInteger(5), data[6])
	assert.Equal(t, protocol.UInteger(4), data[7])
	assert.Equal(t, protocol.UInteger(semTokenFunction), data[8])
	assert.Equal(t, protocol.UInteger(semModDeclaration), data[9])

	// Token 3: new line, deltaLine=1, deltaChar=2, len=1, variable(6), mods=0
	assert.Equal(t, protocol.UInteger(1), data[10])
	assert.Equal(t, protocol.UInteger(2), data[11])
	assert.Equal(t, protocol.UInteger(1), data[12])
	assert.Equal(t, protocol.UInteger(semTokenVariable), data[13])
}

func TestSemanticTokenLegend(t *testing.T) {
	legend := semanticTokenLegend()
	// Verify legend indices match our constants.
	assert.Equal(t, "namespace", legend.TokenTypes[semTokenNamespace])
	assert.Equal(t, "type", legend.TokenTypes[semTokenType])
	assert.Equal(t, "class", legend.TokenTypes[semTokenClass])
	assert.Equal(t, "enum", legend.TokenTypes[semTokenEnum])
	assert.Equal(t, "interface", legend.TokenTypes[semTokenInterface])
	assert.Equal(t, "parameter", legend.TokenTypes[semTokenParameter])
	assert.Equal(t, "variable", legend.TokenTypes[semTokenVariable])
	assert.Equal(t, "enumMember", legend.TokenTypes[semTokenEnumMember])
	assert.Equal(t, "function", legend.TokenTypes[semTokenFunction])
	assert.Equal(t, []string{"declaration", "readonly", "defaultLibrary"}, legend.TokenModifiers)
}

// decodeTokens converts delta-encoded data back to raw tokens for testing.
func decodeTokens(data []protocol.UInteger) []rawToken {
	var tokens []rawToken
	prevLine := 0
	prevChar := 0
	for i := 0; i+4 < len(data); i += 5 {
		line := prevLine + int(data[i])
		char := int(data[i+1])
		if data[i] == 0 {
			char = prevChar + int(data[i+1])
		}
		tokens = append(tokens, rawToken{
			line:      line,
			startChar: char,
			length:    int(data[i+2]),
			tokenType: int(data[i+3]),
			modifiers: int(data[i+4]),
		})
		prevLine = line
		prevChar = char
	}
	return tokens
}
