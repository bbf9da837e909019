package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
)

func TestParseRowID(t *testing.T) {
	id, err := ParseRowID("42")
	assert.NoError(t, err)
	assert.False(t, id.IsTemp())
	assert.Equal(t, 42, id.Persisted())
	assert.Equal(t, "42", id.String())

	id, err = ParseRowID("tmp_a1b2c3d4")
	assert.NoError(t, err)
	assert.True(t, id.IsTemp())
	assert.Equal(t, 0, id.Persisted())
	assert.Equal(t, "tmp_a1b2c3d4", id.String())

	for _, bad := range []string{"", "0", "-3", "abc", "tmp_", "12abc"} {
		_, err = ParseRowID(bad)
		assert.ErrorIs(t, err, apperror.ErrInvalidIdentifier, "значение %q", bad)
	}
}

func TestNewTempID(t *testing.T) {
	a := NewTempID()
	b := NewTempID()

	assert.True(t, a.IsTemp())
	assert.True(t, strings.HasPrefix(a.String(), "tmp_"))
	assert.NotEqual(t, a.String(), b.String())
}
