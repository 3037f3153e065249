package swap

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/txbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractSecretMatchesOriginalFixture is the literal claim transaction
// and secret from original_source's test_extract_secret, byte-for-byte: a
// real spend of an HTLC claim branch, not a synthetic script.
func TestExtractSecretMatchesOriginalFixture(t *testing.T) {
	rawTx := "0100000001de7aa8d29524906b2b54ee2e0281f3607f75662cbc9080df81d1047b78e21dbc00000000d7473044022079b6c50820040b1fbbe9251ced32ab334d33830f6f8d0bf0a40c7f1336b67d5b0220142ccf723ddabb34e542ed65c395abc1fbf5b6c3e730396f15d25c49b668a1a401209da937e5609680cb30bff4a7661364ca1d1851c2506fa80c443f00a3d3bf7365004c6b6304f62b0e5cb175210270e75970bb20029b3879ec76c4acd320a8d0589e003636264d01a7d566504bfbac6782012088a9142fb610d856c19fd57f2d0cffe8dff689074b3d8a882103f368228456c940ac113e53dad5c104cf209f2f102a409207269383b6ab9b03deac68ffffffff01d0dc9800000000001976a9146d9d2b554d768232320587df75c4338ecc8bf37d88ac40280e5c"
	expectedSecretHex := "9da937e5609680cb30bff4a7661364ca1d1851c2506fa80c443f00a3d3bf7365"

	raw, err := hex.DecodeString(rawTx)
	require.NoError(t, err)
	tx, err := txbuilder.DeserializeSignedTransaction(raw)
	require.NoError(t, err)

	secret, err := ExtractSecret(tx)
	require.NoError(t, err)

	expected, err := hex.DecodeString(expectedSecretHex)
	require.NoError(t, err)
	assert.Equal(t, expected, secret)
}

func TestExtractSecretFindsThirtyTwoByteData(t *testing.T) {
	secret := bytes.Repeat([]byte{0x77}, 32)
	sig := bytes.Repeat([]byte{0x30}, 70)
	redeem := []byte{0x63, 0x64}

	builder := txscript.NewScriptBuilder()
	builder.AddData(sig)
	builder.AddData(secret)
	builder.AddOp(txscript.OP_0)
	builder.AddData(redeem)
	scriptSig, err := builder.Script()
	require.NoError(t, err)

	tx := &txbuilder.SignedTransaction{
		Inputs: []txbuilder.SignedInput{{ScriptSig: scriptSig}},
	}
	got, err := ExtractSecret(tx)
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestExtractSecretRejectsWrongLengthPush(t *testing.T) {
	sig := bytes.Repeat([]byte{0x30}, 70)
	notASecret := []byte{0x01, 0x02, 0x03}

	builder := txscript.NewScriptBuilder()
	builder.AddData(sig)
	builder.AddData(notASecret)
	scriptSig, err := builder.Script()
	require.NoError(t, err)

	tx := &txbuilder.SignedTransaction{Inputs: []txbuilder.SignedInput{{ScriptSig: scriptSig}}}
	_, err = ExtractSecret(tx)
	require.Error(t, err)
	assert.True(t, chainerror.Is(err, chainerror.SecretUnavailable))
}

func TestExtractSecretRejectsNoInputs(t *testing.T) {
	tx := &txbuilder.SignedTransaction{}
	_, err := ExtractSecret(tx)
	require.Error(t, err)
	assert.True(t, chainerror.Is(err, chainerror.SecretUnavailable))
}

func TestExtractSecretFailsOnOrdinaryP2PKHSpend(t *testing.T) {
	// A P2PKH spend's script_sig (sig, 33-byte pubkey) has no 32-byte push
	// at index 1, so extraction must fail on an ordinary spend — the
	// negative side of the extraction contract.
	sig := bytes.Repeat([]byte{0x30}, 70)
	pubKey := bytes.Repeat([]byte{0x02}, 33)

	builder := txscript.NewScriptBuilder()
	builder.AddData(sig)
	builder.AddData(pubKey)
	scriptSig, err := builder.Script()
	require.NoError(t, err)

	tx := &txbuilder.SignedTransaction{Inputs: []txbuilder.SignedInput{{ScriptSig: scriptSig}}}
	_, err = ExtractSecret(tx)
	require.Error(t, err)
}
