package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBcrypt_HashAndCompare(t *testing.T) {
	h := NewBcrypt(4)

	digest, err := h.Hash("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", digest)

	require.NoError(t, h.Compare(digest, "secret1"))
	require.Error(t, h.Compare(digest, "wrong"))
}

func TestNewBcrypt_CostClamped(t *testing.T) {
	require.NotNil(t, NewBcrypt(0))
	require.NotNil(t, NewBcrypt(-1))
	require.NotNil(t, NewBcrypt(100))
}
