package script

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
)

// SigHashAll is the only signature hash type this core uses: it commits to
// every input and every output of the transaction.
const SigHashAll = byte(txscript.SigHashAll)

// SignHash signs a 32-byte signature hash with priv and appends the
// SIGHASH_ALL byte, producing the <sig||01> form every script_sig in this
// module embeds.
func SignHash(priv *btcec.PrivateKey, sigHash []byte) ([]byte, error) {
	if len(sigHash) != 32 {
		return nil, chainerror.New(chainerror.BadInput, "signature hash must be 32 bytes")
	}
	sig := ecdsa.Sign(priv, sigHash)
	der := sig.Serialize()
	return append(der, SigHashAll), nil
}

// VerifySignature checks a DER signature (without the trailing sighash
// byte) against a 32-byte hash and a compressed public key.
func VerifySignature(pubKey, sigHash, derSig []byte) bool {
	pub, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(derSig)
	if err != nil {
		return false
	}
	return sig.Verify(sigHash, pub)
}

// P2PKHScriptSig assembles the script_sig for a plain P2PKH spend:
// <sig||01> <pubkey>.
func P2PKHScriptSig(sigWithHashType, pubKey []byte) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddData(sigWithHashType)
	builder.AddData(pubKey)
	return builder.Script()
}

// HTLCClaimScriptSig assembles the script_sig for the claim branch of an
// HTLC spend: <sig||01> <secret> OP_0 <redeemScript>. Revealing the secret
// here is what lets the counterparty's watcher extract it.
func HTLCClaimScriptSig(sigWithHashType, secret, redeemScript []byte) ([]byte, error) {
	if len(secret) != 32 {
		return nil, chainerror.New(chainerror.BadInput, "secret must be 32 bytes")
	}
	builder := txscript.NewScriptBuilder()
	builder.AddData(sigWithHashType)
	builder.AddData(secret)
	builder.AddOp(txscript.OP_0)
	builder.AddData(redeemScript)
	return builder.Script()
}

// HTLCRefundScriptSig assembles the script_sig for the refund branch of an
// HTLC spend: <sig||01> OP_1 <redeemScript>.
func HTLCRefundScriptSig(sigWithHashType, redeemScript []byte) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddData(sigWithHashType)
	builder.AddOp(txscript.OP_1)
	builder.AddData(redeemScript)
	return builder.Script()
}
