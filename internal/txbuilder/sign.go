package txbuilder

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/script"
)

// SpendMode tells SignTransaction which script_sig shape an input needs.
type SpendMode int

const (
	// SpendP2PKH is a plain pay-to-public-key-hash spend.
	SpendP2PKH SpendMode = iota
	// SpendHTLCClaim reveals Secret and spends the HTLC's claim branch.
	SpendHTLCClaim
	// SpendHTLCRefund spends the HTLC's refund branch after its time lock.
	SpendHTLCRefund
)

// InputSigningSpec carries everything SignTransaction needs for one input
// beyond what's already in UnsignedTransaction.
type InputSigningSpec struct {
	// PrevScript is the previous output's script_pubkey. For P2PKH inputs
	// it is also the subscript committed to by the signature hash; for
	// HTLC inputs the subscript is RedeemScript instead.
	PrevScript []byte
	Mode       SpendMode
	// RedeemScript is required when Mode is not SpendP2PKH.
	RedeemScript []byte
	// Secret is required when Mode is SpendHTLCClaim.
	Secret []byte
	// PubKey is the compressed public key backing the signature.
	PubKey []byte
}

// SignTransaction signs every input of unsigned with priv according to
// specs (one entry per input, same order) and returns the fully signed
// transaction. A P2PKH input whose PubKey does not hash to the address
// embedded in PrevScript is rejected as a SignatureMismatch rather than
// producing a transaction that would fail script verification on-chain.
func SignTransaction(unsigned *UnsignedTransaction, specs []InputSigningSpec, priv *btcec.PrivateKey) (*SignedTransaction, error) {
	if len(specs) != len(unsigned.Inputs) {
		return nil, chainerror.New(chainerror.BadInput, "one signing spec is required per input")
	}

	msgTx := toWireMsgTx(unsigned)
	signedInputs := make([]SignedInput, len(unsigned.Inputs))

	for i, in := range unsigned.Inputs {
		spec := specs[i]

		subscript := spec.PrevScript
		if spec.Mode != SpendP2PKH {
			if len(spec.RedeemScript) == 0 {
				return nil, chainerror.New(chainerror.BadInput, "redeem script required for HTLC spend")
			}
			subscript = spec.RedeemScript
		}

		sigHash, err := txscript.CalcSignatureHash(subscript, txscript.SigHashAll, msgTx, i)
		if err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "compute signature hash", err)
		}

		sigWithHashType, err := script.SignHash(priv, sigHash)
		if err != nil {
			return nil, err
		}

		scriptSig, err := assembleScriptSig(spec, sigWithHashType)
		if err != nil {
			return nil, err
		}

		signedInputs[i] = SignedInput{UnsignedInput: in, ScriptSig: scriptSig}
	}

	return &SignedTransaction{
		Version:        unsigned.Version,
		LockTime:       unsigned.LockTime,
		Inputs:         signedInputs,
		Outputs:        unsigned.Outputs,
		Overwintered:   unsigned.Overwintered,
		VersionGroupID: unsigned.VersionGroupID,
		ExpiryHeight:   unsigned.ExpiryHeight,
	}, nil
}

func assembleScriptSig(spec InputSigningSpec, sigWithHashType []byte) ([]byte, error) {
	switch spec.Mode {
	case SpendP2PKH:
		derived := btcutil.Hash160(spec.PubKey)
		expected, err := p2pkhHashFromScript(spec.PrevScript)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(derived, expected) {
			return nil, chainerror.New(chainerror.SignatureMismatch, "public key does not match previous output script")
		}
		return script.P2PKHScriptSig(sigWithHashType, spec.PubKey)
	case SpendHTLCClaim:
		return script.HTLCClaimScriptSig(sigWithHashType, spec.Secret, spec.RedeemScript)
	case SpendHTLCRefund:
		return script.HTLCRefundScriptSig(sigWithHashType, spec.RedeemScript)
	default:
		return nil, chainerror.New(chainerror.BadInput, "unknown spend mode")
	}
}

// p2pkhHashFromScript extracts the 20-byte hash from a standard
// OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG script.
func p2pkhHashFromScript(pkScript []byte) ([]byte, error) {
	if len(pkScript) != 25 || pkScript[0] != txscript.OP_DUP || pkScript[1] != txscript.OP_HASH160 ||
		pkScript[2] != txscript.OP_DATA_20 || pkScript[23] != txscript.OP_EQUALVERIFY || pkScript[24] != txscript.OP_CHECKSIG {
		return nil, chainerror.New(chainerror.BadInput, "previous output is not a standard P2PKH script")
	}
	return pkScript[3:23], nil
}
