package electrum

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
)

func deserializeTx(raw []byte) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, chainerror.Wrap(chainerror.Protocol, "deserialize transaction", err)
	}
	return tx, nil
}

// chainhashFromHex decodes a display-order (big-endian) hex transaction id
// into the little-endian [32]byte form used internally and by wire.OutPoint.
func chainhashFromHex(s string) ([32]byte, error) {
	var out [32]byte
	decoded, err := hex.DecodeString(s)
	if err != nil || len(decoded) != 32 {
		return out, chainerror.New(chainerror.Protocol, "malformed transaction hash")
	}
	copy(out[:], reverseBytes(decoded))
	return out, nil
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func toChainHash(txid [32]byte) chainhash.Hash {
	return chainhash.Hash(txid)
}
