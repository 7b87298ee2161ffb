package rank

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeQueryFiltersStopWordsAndShortTokens(t *testing.T) {
	terms := NormalizeQuery("The Quick Brown Fox is at home", 3)
	require.Equal(t, []string{"quick", "brown", "fox", "home"}, terms)
}

func TestNormalizeQueryEmpty(t *testing.T) {
	require.Empty(t, NormalizeQuery("the a an", 3))
}
