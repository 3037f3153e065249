package script

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	hash := bytes.Repeat([]byte{0x01}, 20)
	addr, err := NewAddress(hash, 0x00, nil)
	require.NoError(t, err)
	assert.Equal(t, [20]byte(bytesToArr20(hash)), addr.Hash)

	_, err = NewAddress(hash[:10], 0x00, nil)
	require.Error(t, err)
}

func bytesToArr20(b []byte) [20]byte {
	var a [20]byte
	copy(a[:], b)
	return a
}

func TestScriptHashIsReversedSHA256(t *testing.T) {
	pkScript := []byte{0x76, 0xa9, 0x14}
	pkScript = append(pkScript, bytes.Repeat([]byte{0xCC}, 20)...)
	pkScript = append(pkScript, 0x88, 0xac)

	sum := sha256.Sum256(pkScript)
	want := make([]byte, 32)
	for i := range sum {
		want[i] = sum[31-i]
	}

	got := ScriptHash(pkScript)
	assert.Equal(t, want, got)

	again := ScriptHash(pkScript)
	assert.Equal(t, got, again, "script hash must be deterministic")
}
