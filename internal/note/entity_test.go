package note

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTags_Value(t *testing.T) {
	v, err := Tags{"a", "b"}.Value()
	require.NoError(t, err)
	require.JSONEq(t, `["a","b"]`, string(v.([]byte)))

	// nil serializes as an empty array, never SQL NULL.
	v, err = Tags(nil).Value()
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(v.([]byte)))
}

func TestTags_Scan(t *testing.T) {
	var tags Tags
	require.NoError(t, tags.Scan([]byte(`["x","y"]`)))
	require.Equal(t, Tags{"x", "y"}, tags)

	require.NoError(t, tags.Scan(`["z"]`))
	require.Equal(t, Tags{"z"}, tags)

	require.NoError(t, tags.Scan(nil))
	require.NotNil(t, tags)
	require.Empty(t, tags)

	require.Error(t, tags.Scan(42))
	require.Error(t, tags.Scan([]byte(`{bad json`)))
}
