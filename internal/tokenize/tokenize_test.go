package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokensMinLengthAndCase(t *testing.T) {
	got := Tokens("Hello, World! Hello -- a an ok123 X", 3)
	assert.Equal(t, []string{"hello", "world", "hello", "ok123"}, got)
}

func TestFrequenciesDocLength(t *testing.T) {
	toks := Tokens("hello world hello", 3)
	freq, n := Frequencies(toks)
	assert.Equal(t, 3, n)
	assert.Equal(t, uint64(2), freq["hello"])
	assert.Equal(t, uint64(1), freq["world"])
}
