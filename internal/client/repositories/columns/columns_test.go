package columns

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	s, err := Tags(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	s, err = Tags([]string{"a", "b"})
	require.NoError(t, err)
	got, err := ParseTags(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = ParseTags("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseTags("{")
	require.ErrorContains(t, err, "failed to decode tags")
}

func TestNullable(t *testing.T) {
	assert.False(t, NullString(nil).Valid)
	assert.Nil(t, StringPtr(sql.NullString{}))
	assert.Equal(t, "x", *StringPtr(NullString(new(string)))+"x")

	v := int64(7)
	assert.Equal(t, int64(7), *Int64Ptr(NullInt64(&v)))
	assert.Nil(t, Int64Ptr(NullInt64(nil)))
}
