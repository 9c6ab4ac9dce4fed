package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModule(t *testing.T) {
	t.Parallel()

	for _, m := range ToggleableModules() {
		parsed, err := ParseModule(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	_, err := ParseModule("none")
	require.ErrorIs(t, err, ErrUnknownModule)

	_, err = ParseModule("music")
	require.ErrorIs(t, err, ErrUnknownModule)

	assert.Equal(t, "Module(42)", Module(42).String())
}
