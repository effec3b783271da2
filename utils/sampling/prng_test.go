package sampling

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedPRNG(t *testing.T) {

	key := []byte{0x49, 0x0a, 0x42, 0x3d, 0x97, 0x9d, 0xc1, 0x07}

	prngA, err := NewKeyedPRNG(key)
	require.NoError(t, err)

	prngB, err := NewKeyedPRNG(key)
	require.NoError(t, err)

	sumA := make([]byte, 512)
	sumB := make([]byte, 512)

	_, err = prngA.Read(sumA)
	require.NoError(t, err)
	_, err = prngB.Read(sumB)
	require.NoError(t, err)

	require.True(t, bytes.Equal(sumA, sumB))

	prngA.Reset()

	sumC := make([]byte, 512)
	_, err = prngA.Read(sumC)
	require.NoError(t, err)
	require.True(t, bytes.Equal(sumA, sumC))

	require.Equal(t, key, prngA.Key())
}

func TestDeriveKey(t *testing.T) {

	seed := []byte{0x01, 0x02, 0x03}

	skA := DeriveKey(seed, "sk")
	skB := DeriveKey(seed, "sk")
	pk := DeriveKey(seed, "pk")

	require.Equal(t, skA, skB)
	require.NotEqual(t, skA, pk)
}
