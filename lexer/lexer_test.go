package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/source"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	u := source.New("t", "t.helios", []byte(src))
	toks, err := Tokenize(u)
	require.NoError(t, err)
	return toks
}

func TestTokenizeWordAndSymbol(t *testing.T) {
	toks := tokenize(t, "const x = 1;")
	require.Equal(t, Word, toks[0].Kind)
	require.Equal(t, "const", toks[0].Text)
	require.Equal(t, Word, toks[1].Kind)
	require.Equal(t, "x", toks[1].Text)
	require.Equal(t, Symbol, toks[2].Kind)
	require.Equal(t, "=", toks[2].Text)
}

func TestTokenizeIntLiteral(t *testing.T) {
	toks := tokenize(t, "42")
	require.Equal(t, IntLiteral, toks[0].Kind)
	require.Equal(t, int64(42), toks[0].Int.Int64())
}

func TestTokenizeStringLiteral(t *testing.T) {
	toks := tokenize(t, `"hello"`)
	require.Equal(t, StringLiteral, toks[0].Kind)
	require.Equal(t, "hello", toks[0].Str)
}

func TestTokenizeBoolLiterals(t *testing.T) {
	toks := tokenize(t, "true false")
	require.Equal(t, BoolLiteral, toks[0].Kind)
	require.True(t, toks[0].Bool)
	require.Equal(t, BoolLiteral, toks[1].Kind)
	require.False(t, toks[1].Bool)
}

func TestTokenizeLineCommentIsSkipped(t *testing.T) {
	toks := tokenize(t, "1 // this is a comment\n2")
	require.Len(t, toks, 2)
	require.Equal(t, int64(1), toks[0].Int.Int64())
	require.Equal(t, int64(2), toks[1].Int.Int64())
}

func TestTokenizeBlockCommentIsSkipped(t *testing.T) {
	toks := tokenize(t, "1 /* skip\nthis */ 2")
	require.Len(t, toks, 2)
}

func TestTokenizeUnterminatedBlockCommentIsSyntaxError(t *testing.T) {
	u := source.New("t", "t.helios", []byte("1 /* never closed"))
	_, err := Tokenize(u)
	require.Error(t, err)
}

func TestTokenizeGroupsParenWithCommaFields(t *testing.T) {
	toks := tokenize(t, "f(1, 2, 3)")
	require.Equal(t, Word, toks[0].Kind)
	require.Equal(t, Group, toks[1].Kind)
	require.Equal(t, Paren, toks[1].Bracket)
	require.Len(t, toks[1].Fields, 3)
	require.Equal(t, int64(1), toks[1].Fields[0][0].Int.Int64())
	require.Equal(t, int64(3), toks[1].Fields[2][0].Int.Int64())
}

func TestTokenizeNestedGroups(t *testing.T) {
	toks := tokenize(t, "f([1, 2])")
	require.Equal(t, Group, toks[1].Kind)
	require.Len(t, toks[1].Fields, 1)
	inner := toks[1].Fields[0]
	require.Equal(t, Group, inner[0].Kind)
	require.Equal(t, Square, inner[0].Bracket)
	require.Len(t, inner[0].Fields, 2)
}

func TestTokenizeUnclosedBracketIsSyntaxError(t *testing.T) {
	u := source.New("t", "t.helios", []byte("f(1, 2"))
	_, err := Tokenize(u)
	require.Error(t, err)
}

func TestTokenizeMultiCharSymbolsPreferLongestMatch(t *testing.T) {
	toks := tokenize(t, "a -> b == c")
	require.Equal(t, "->", toks[1].Text)
	require.Equal(t, "==", toks[3].Text)
}
