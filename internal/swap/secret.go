package swap

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/txbuilder"
)

// ExtractSecret recovers the 32-byte secret a claim transaction reveals:
// the data push at instruction index 1 of its first input's script_sig,
// iff that push is exactly 32 bytes. Grounded bit-for-bit in
// original_source's Transaction::extract_secret, which walks the script's
// instructions by index and checks for OP_PUSHBYTES_32 at index 1 — the
// <secret> push in HTLCClaimScriptSig's <sig||01> <secret> OP_0
// <redeemScript> layout.
func ExtractSecret(tx *txbuilder.SignedTransaction) ([]byte, error) {
	if len(tx.Inputs) == 0 {
		return nil, chainerror.New(chainerror.SecretUnavailable, "transaction has no inputs")
	}

	scriptSig := tx.Inputs[0].ScriptSig
	tokenizer := txscript.MakeScriptTokenizer(0, scriptSig)

	for i := 0; tokenizer.Next(); i++ {
		if i == 1 {
			if len(tokenizer.Data()) == 32 {
				return append([]byte(nil), tokenizer.Data()...), nil
			}
			break
		}
	}
	if err := tokenizer.Err(); err != nil {
		return nil, chainerror.Wrap(chainerror.SecretUnavailable, "parse script_sig", err)
	}
	return nil, chainerror.New(chainerror.SecretUnavailable, "could not extract secret from script_sig")
}
