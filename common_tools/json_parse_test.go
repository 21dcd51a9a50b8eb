package common_tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonParseTool_RoundTrip(t *testing.T) {
	tool := NewJsonParseTool()
	s, err := tool.ToJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, s)

	var m map[string]int
	require.NoError(t, tool.FromJSON([]byte(s), &m))
	assert.Equal(t, 1, m["a"])

	assert.Error(t, tool.FromJSON([]byte("{"), &m))

	indented, err := NewIndentedJsonParseTool().ToJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Contains(t, indented, "\n  \"a\": 1")
}

func TestJsonParseTool_FieldValue(t *testing.T) {
	tool := NewJsonParseTool()
	data := []byte(`{"results":[{"repo_name":"nginx","star_count":3}],"count":1}`)

	v, err := tool.FieldValue(data, "results", "0", "repo_name")
	require.NoError(t, err)
	assert.Equal(t, "nginx", v)

	v, err = tool.FieldValue(data, "count")
	require.NoError(t, err)
	assert.Equal(t, float64(1), v)

	_, err = tool.FieldValue(data, "results", "5")
	assert.ErrorIs(t, err, ErrFieldNotFound)

	_, err = tool.FieldValue(data, "count", "deeper")
	assert.ErrorIs(t, err, ErrFieldNotFound)
	assert.Contains(t, err.Error(), "count.deeper")
}
