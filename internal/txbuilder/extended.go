package txbuilder

import (
	"encoding/binary"

	"github.com/kgcdream2019/utxoswap/internal/chainerror"
)

// Encode serializes an ExtendedTx as u32 LE tx_len | tx_bytes | u32 LE
// redeem_len | redeem_bytes — the on-the-wire form the two swap
// participants exchange. Every length prefix is written with
// encoding/binary explicitly; nothing here relies on struct layout or
// unsafe casts.
func (e *ExtendedTx) Encode() []byte {
	txBytes := e.Tx.Serialize()

	out := make([]byte, 0, 4+len(txBytes)+4+len(e.RedeemScript))
	out = appendUint32LE(out, uint32(len(txBytes)))
	out = append(out, txBytes...)
	out = appendUint32LE(out, uint32(len(e.RedeemScript)))
	out = append(out, e.RedeemScript...)
	return out
}

// DecodeExtendedTx parses the inverse of Encode. Whether the embedded
// transaction carries the Overwinter header and suffix fields is read back
// from the version field's high bit, the same signal Serialize writes.
func DecodeExtendedTx(data []byte) (*ExtendedTx, error) {
	if len(data) < 4 {
		return nil, chainerror.New(chainerror.Protocol, "extended transaction truncated before tx length")
	}
	txLen := binary.LittleEndian.Uint32(data[0:4])
	offset := 4
	if uint64(offset)+uint64(txLen) > uint64(len(data)) {
		return nil, chainerror.New(chainerror.Protocol, "extended transaction truncated tx body")
	}
	txBytes := data[offset : offset+int(txLen)]
	offset += int(txLen)

	if len(data) < offset+4 {
		return nil, chainerror.New(chainerror.Protocol, "extended transaction truncated before redeem length")
	}
	redeemLen := binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4
	if uint64(offset)+uint64(redeemLen) > uint64(len(data)) {
		return nil, chainerror.New(chainerror.Protocol, "extended transaction truncated redeem script")
	}
	redeemScript := data[offset : offset+int(redeemLen)]

	tx, err := DeserializeSignedTransaction(txBytes)
	if err != nil {
		return nil, err
	}

	return &ExtendedTx{Tx: *tx, RedeemScript: append([]byte(nil), redeemScript...)}, nil
}

func appendUint32LE(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}
