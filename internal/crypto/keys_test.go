package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveCookieKeys(t *testing.T) {
	master := bytes.Repeat([]byte{7}, MasterKeySize)

	k1, err := DeriveCookieKeys(master)
	require.NoError(t, err)
	k2, err := DeriveCookieKeys(master)
	require.NoError(t, err)

	assert.Len(t, k1.Hash, 64)
	assert.Len(t, k1.Block, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1.Hash[:32], k1.Block)
}

func TestDeriveCookieKeysRejectsShortKey(t *testing.T) {
	_, err := DeriveCookieKeys([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestMustRandom(t *testing.T) {
	a := MustRandom(16)
	b := MustRandom(16)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
