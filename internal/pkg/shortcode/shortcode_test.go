package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	code, err := New(8)
	require.NoError(t, err)
	require.Len(t, code, 8)

	for _, r := range code {
		require.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q", r)
	}
}

func TestNewDefaultsLength(t *testing.T) {
	code, err := New(0)
	require.NoError(t, err)
	require.Len(t, code, DefaultLength)

	code, err = New(-3)
	require.NoError(t, err)
	require.Len(t, code, DefaultLength)
}

func TestNewAvoidsAmbiguousCharacters(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := New(16)
		require.NoError(t, err)
		require.NotContains(t, code, "0")
		require.NotContains(t, code, "O")
		require.NotContains(t, code, "1")
		require.NotContains(t, code, "I")
		require.NotContains(t, code, "L")
	}
}
