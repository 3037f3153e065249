// Package txbuilder assembles, signs, and serializes UTXO transactions:
// smallest-first coin selection, a flat per-action fee, the Overwinter
// transaction header for Zcash-family coins, and per-input SIGHASH_ALL
// signing validated against the previous output's script. Grounded in the
// teacher's src/chainadapter/bitcoin/builder.go and signer.go shape
// (TransactionBuilder with a coin-selection helper and a signing-payload
// helper), corrected against original_source/mm2src/coins/utxo.rs for
// selection order and fee accounting.
package txbuilder

// UnsignedInput references a previous output this transaction spends, the
// declared amount of that output (some signing schemes commit to it), and
// the sequence number the spending input will carry.
type UnsignedInput struct {
	PrevTxHash [32]byte
	PrevVout   uint32
	Amount     int64
	Sequence   uint32
}

// Output is one transaction output: a value in smallest units and its
// locking script.
type Output struct {
	Value        int64
	ScriptPubKey []byte
}

// UnsignedTransaction is a transaction skeleton awaiting per-input
// signatures. Overwintered transactions carry VersionGroupID and
// ExpiryHeight in addition to the common fields.
type UnsignedTransaction struct {
	Version  int32
	LockTime uint32
	Inputs   []UnsignedInput
	Outputs  []Output

	Overwintered   bool
	VersionGroupID uint32
	ExpiryHeight   uint32
}

// SignedInput is an UnsignedInput plus its assembled script_sig. This
// module never populates a witness stack: every build targets the
// non-SegWit P2PKH/P2SH path.
type SignedInput struct {
	UnsignedInput
	ScriptSig []byte
}

// SignedTransaction is a fully signed transaction ready for broadcast or
// for wrapping in an ExtendedTx.
type SignedTransaction struct {
	Version  int32
	LockTime uint32
	Inputs   []SignedInput
	Outputs  []Output

	Overwintered   bool
	VersionGroupID uint32
	ExpiryHeight   uint32
}

// ExtendedTx pairs a SignedTransaction with the redeem script the
// counterparty needs to reconstruct an HTLC spend without out-of-band
// communication. RedeemScript is empty for ordinary P2PKH spends.
type ExtendedTx struct {
	Tx           SignedTransaction
	RedeemScript []byte
}
