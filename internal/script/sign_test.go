package script

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignHashRoundTripsWithVerify(t *testing.T) {
	kp, err := KeyPairFromSeed([]byte("sign test seed"))
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("message to sign"))
	sigWithHashType, err := SignHash(kp.Private, digest[:])
	require.NoError(t, err)
	require.Equal(t, SigHashAll, sigWithHashType[len(sigWithHashType)-1])

	der := sigWithHashType[:len(sigWithHashType)-1]
	assert.True(t, VerifySignature(kp.PubKey, digest[:], der))
}

func TestSignHashRejectsWrongLength(t *testing.T) {
	kp, err := KeyPairFromSeed([]byte("another sign seed"))
	require.NoError(t, err)
	_, err = SignHash(kp.Private, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestVerifySignatureRejectsTamperedHash(t *testing.T) {
	kp, err := KeyPairFromSeed([]byte("tamper test seed"))
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("original message"))
	sigWithHashType, err := SignHash(kp.Private, digest[:])
	require.NoError(t, err)
	der := sigWithHashType[:len(sigWithHashType)-1]

	tampered := sha256.Sum256([]byte("different message"))
	assert.False(t, VerifySignature(kp.PubKey, tampered[:], der))
}

func TestScriptSigAssembly(t *testing.T) {
	sig := bytes.Repeat([]byte{0x30}, 70)
	pub := testPubKey(9)
	redeem := []byte{0x51, 0x52}

	p2pkh, err := P2PKHScriptSig(sig, pub)
	require.NoError(t, err)
	assert.Contains(t, string(p2pkh), string(pub))

	secret := bytes.Repeat([]byte{0x07}, 32)
	claim, err := HTLCClaimScriptSig(sig, secret, redeem)
	require.NoError(t, err)
	assert.Contains(t, string(claim), string(secret))

	_, err = HTLCClaimScriptSig(sig, secret[:31], redeem)
	require.Error(t, err)

	refund, err := HTLCRefundScriptSig(sig, redeem)
	require.NoError(t, err)
	assert.Contains(t, string(refund), string(redeem))
}
