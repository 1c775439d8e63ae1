package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerialize_SortsKeysDeterministically(t *testing.T) {
	fields := map[string]any{
		"title":  "Hello",
		"author": "jane",
		"layout": "post",
	}

	out, err := Serialize(fields, Style{})
	require.NoError(t, err)
	require.Equal(t, "author: jane\nlayout: post\ntitle: Hello\n", string(out))
}

func TestSerialize_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := Serialize(map[string]any{}, Style{})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSerialize_NestedAndSequences(t *testing.T) {
	fields := map[string]any{
		"categories": []string{"Go", "CI"},
		"meta":       map[string]any{"b": 2, "a": 1},
	}

	out, err := Serialize(fields, Style{})
	require.NoError(t, err)
	require.Equal(t, "categories:\n  - Go\n  - CI\nmeta:\n  a: 1\n  b: 2\n", string(out))
}

func TestSerialize_CRLFStyle_RewritesNewlines(t *testing.T) {
	out, err := Serialize(map[string]any{"layout": "post"}, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "layout: post\r\n", string(out))
}

func TestSerialize_RoundTripThroughParseMap(t *testing.T) {
	fields := map[string]any{
		"layout": "post",
		"draft":  false,
		"weight": 3,
	}

	out, err := Serialize(fields, Style{})
	require.NoError(t, err)

	parsed, err := ParseMap(out)
	require.NoError(t, err)
	require.Equal(t, "post", parsed["layout"])
	require.Equal(t, false, parsed["draft"])
	require.Equal(t, 3, parsed["weight"])
}
