package rank

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnippetHighlightsQueryTerms(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog near the river bank today"
	s := Snippet(text, []string{"fox", "dog"}, 80)
	require.Contains(t, s, "**fox**")
	require.Contains(t, s, "**dog**")
}

func TestSnippetRespectsMaxChars(t *testing.T) {
	text := strings.Repeat("word ", 100)
	s := Snippet(text, []string{"word"}, 20)
	require.LessOrEqual(t, len([]rune(s)), 20)
}

func TestSnippetEmptyInputs(t *testing.T) {
	require.Equal(t, "", Snippet("", []string{"a"}, 10))
	require.Equal(t, "", Snippet("text", []string{"a"}, 0))
}
