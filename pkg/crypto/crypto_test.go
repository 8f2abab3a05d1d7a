package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Fingerprint(t *testing.T) {
	require.Len(t, Fingerprint("T1"), 16)
	require.Equal(t, Fingerprint("T1"), Fingerprint("T1"))
	require.NotEqual(t, Fingerprint("T1"), Fingerprint("T2"))
	require.Empty(t, Fingerprint(""))
}

func Test_Equal(t *testing.T) {
	require.True(t, Equal("key", "key"))
	require.False(t, Equal("key", "other"))
	require.False(t, Equal("", ""))
	require.False(t, Equal("key", ""))
}

func Test_GenerateRandomString(t *testing.T) {
	a, err := GenerateRandomString()
	require.NoError(t, err)
	b, err := GenerateRandomString()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
