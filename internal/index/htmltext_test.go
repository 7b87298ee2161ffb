package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVisibleTextSkipsScriptAndStyle(t *testing.T) {
	src := `<html><head><title>T</title><style>.x{color:red}</style></head>
<body>hello <script>var x = 1;</script>world</body></html>`

	title, text, err := ExtractVisibleText(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "T", title)
	assert.Equal(t, "hello world", text)
}

func TestExtractVisibleTextSiblingSpacing(t *testing.T) {
	src := `<html><body><p>hello</p><p>world</p></body></html>`
	_, text, err := ExtractVisibleText(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}
