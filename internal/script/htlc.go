package script

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
)

// HTLCScript builds the redeem script for a Hash-Time-Locked-Contract:
//
//	OP_IF
//	  <time_lock LE32> OP_CHECKLOCKTIMEVERIFY OP_DROP
//	  <refundPubKey> OP_CHECKSIG
//	OP_ELSE
//	  OP_SIZE <32> OP_EQUALVERIFY
//	  OP_HASH160 <secretHash> OP_EQUALVERIFY
//	  <claimPubKey> OP_CHECKSIG
//	OP_ENDIF
//
// timeLock is seconds since epoch; secretHash is the 20-byte HASH160 of the
// 32-byte secret; refundPubKey/claimPubKey are compressed public keys. The
// script must be bit-identical across calls with identical parameters —
// the counterparty reconstructs it independently and any divergence breaks
// the trade.
func HTLCScript(timeLock uint32, secretHash, refundPubKey, claimPubKey []byte) ([]byte, error) {
	if len(secretHash) != 20 {
		return nil, chainerror.New(chainerror.BadInput, "secret hash must be 20 bytes")
	}
	if len(refundPubKey) != 33 || len(claimPubKey) != 33 {
		return nil, chainerror.New(chainerror.BadInput, "public keys must be 33-byte compressed form")
	}

	var timeLockLE [4]byte
	binary.LittleEndian.PutUint32(timeLockLE[:], timeLock)

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_IF)
	builder.AddData(timeLockLE[:])
	builder.AddOp(txscript.OP_CHECKLOCKTIMEVERIFY)
	builder.AddOp(txscript.OP_DROP)
	builder.AddData(refundPubKey)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ELSE)
	builder.AddOp(txscript.OP_SIZE)
	builder.AddInt64(32)
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddOp(txscript.OP_HASH160)
	builder.AddData(secretHash)
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddData(claimPubKey)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ENDIF)

	return builder.Script()
}

// P2PKHScript builds a Pay-to-Public-Key-Hash script pubkey:
// OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG.
func P2PKHScript(addrHash []byte) ([]byte, error) {
	if len(addrHash) != 20 {
		return nil, chainerror.New(chainerror.BadInput, "address hash must be 20 bytes")
	}
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_DUP)
	builder.AddOp(txscript.OP_HASH160)
	builder.AddData(addrHash)
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddOp(txscript.OP_CHECKSIG)
	return builder.Script()
}

// P2SHScript builds a Pay-to-Script-Hash script pubkey for the given redeem
// script: OP_HASH160 <HASH160(redeemScript)> OP_EQUAL.
func P2SHScript(redeemScript []byte) ([]byte, error) {
	if len(redeemScript) == 0 {
		return nil, chainerror.New(chainerror.BadInput, "redeem script must not be empty")
	}
	hash := btcutil.Hash160(redeemScript)
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_HASH160)
	builder.AddData(hash)
	builder.AddOp(txscript.OP_EQUAL)
	return builder.Script()
}
