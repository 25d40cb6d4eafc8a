package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagsArray_NilEncodesAsEmptyArray(t *testing.T) {
	// The tags column is NOT NULL; a nil slice must not reach the driver
	// as SQL NULL.
	value, err := tagsArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", value)

	value, err = tagsArray([]string{}).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", value)

	value, err = tagsArray([]string{"go", "sql"}).Value()
	require.NoError(t, err)
	assert.Equal(t, `{"go","sql"}`, value)
}
