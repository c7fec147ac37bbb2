package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeE164(t *testing.T) {
	t.Run("national format gains the region prefix", func(t *testing.T) {
		got, err := NormalizeE164("(650) 253-0000", "US")
		require.NoError(t, err)
		assert.Equal(t, "+16502530000", got)
	})

	t.Run("e164 input passes through", func(t *testing.T) {
		got, err := NormalizeE164("+16502530000", "US")
		require.NoError(t, err)
		assert.Equal(t, "+16502530000", got)
	})

	t.Run("country prefix wins over the default region", func(t *testing.T) {
		got, err := NormalizeE164("+44 20 7031 3000", "US")
		require.NoError(t, err)
		assert.Equal(t, "+442070313000", got)
	})

	t.Run("empty input is an error", func(t *testing.T) {
		_, err := NormalizeE164("   ", "US")
		assert.Error(t, err)
	})

	t.Run("garbage input is an error", func(t *testing.T) {
		_, err := NormalizeE164("not a number", "US")
		assert.Error(t, err)
	})
}
