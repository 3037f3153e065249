package txbuilder

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
)

const overwinteredVersionMask = uint32(1) << 31

// Serialize produces tx_bytes exactly as specified: version (with the
// Overwinter high bit and version_group_id when applicable), var-int input
// count, inputs (outpoint, var-int script_sig length, script_sig,
// sequence), var-int output count, outputs (value, var-int script length,
// script), lock_time, and — only when overwintered — the expiry height
// suffix. Every multi-byte field is written with encoding/binary
// explicitly; there is no raw memory reinterpretation anywhere in this
// path.
func (tx *SignedTransaction) Serialize() []byte {
	var buf bytes.Buffer

	if tx.Overwintered {
		writeUint32LE(&buf, uint32(tx.Version)|overwinteredVersionMask)
		writeUint32LE(&buf, tx.VersionGroupID)
	} else {
		writeUint32LE(&buf, uint32(tx.Version))
	}

	writeVarInt(&buf, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf.Write(in.PrevTxHash[:])
		writeUint32LE(&buf, in.PrevVout)
		writeVarInt(&buf, uint64(len(in.ScriptSig)))
		buf.Write(in.ScriptSig)
		writeUint32LE(&buf, in.Sequence)
	}

	writeVarInt(&buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		writeInt64LE(&buf, out.Value)
		writeVarInt(&buf, uint64(len(out.ScriptPubKey)))
		buf.Write(out.ScriptPubKey)
	}

	writeUint32LE(&buf, tx.LockTime)

	if tx.Overwintered {
		writeUint32LE(&buf, tx.ExpiryHeight)
	}

	return buf.Bytes()
}

// DeserializeSignedTransaction parses the inverse of Serialize, detecting
// Overwinter framing from the version field's high bit.
func DeserializeSignedTransaction(data []byte) (*SignedTransaction, error) {
	r := bytes.NewReader(data)
	tx := &SignedTransaction{}

	rawVersion, err := readUint32LE(r)
	if err != nil {
		return nil, chainerror.Wrap(chainerror.Protocol, "read transaction version", err)
	}
	if rawVersion&overwinteredVersionMask != 0 {
		tx.Overwintered = true
		tx.Version = int32(rawVersion &^ overwinteredVersionMask)
		tx.VersionGroupID, err = readUint32LE(r)
		if err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "read version group id", err)
		}
	} else {
		tx.Version = int32(rawVersion)
	}

	inCount, err := readVarInt(r)
	if err != nil {
		return nil, chainerror.Wrap(chainerror.Protocol, "read input count", err)
	}
	tx.Inputs = make([]SignedInput, inCount)
	for i := range tx.Inputs {
		var hash [32]byte
		if _, err := readFull(r, hash[:]); err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "read input outpoint hash", err)
		}
		vout, err := readUint32LE(r)
		if err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "read input outpoint index", err)
		}
		sigLen, err := readVarInt(r)
		if err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "read script_sig length", err)
		}
		sig := make([]byte, sigLen)
		if _, err := readFull(r, sig); err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "read script_sig", err)
		}
		seq, err := readUint32LE(r)
		if err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "read input sequence", err)
		}
		tx.Inputs[i] = SignedInput{
			UnsignedInput: UnsignedInput{PrevTxHash: hash, PrevVout: vout, Sequence: seq},
			ScriptSig:     sig,
		}
	}

	outCount, err := readVarInt(r)
	if err != nil {
		return nil, chainerror.Wrap(chainerror.Protocol, "read output count", err)
	}
	tx.Outputs = make([]Output, outCount)
	for i := range tx.Outputs {
		value, err := readInt64LE(r)
		if err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "read output value", err)
		}
		scriptLen, err := readVarInt(r)
		if err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "read script_pubkey length", err)
		}
		script := make([]byte, scriptLen)
		if _, err := readFull(r, script); err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "read script_pubkey", err)
		}
		tx.Outputs[i] = Output{Value: value, ScriptPubKey: script}
	}

	tx.LockTime, err = readUint32LE(r)
	if err != nil {
		return nil, chainerror.Wrap(chainerror.Protocol, "read lock_time", err)
	}

	if tx.Overwintered {
		tx.ExpiryHeight, err = readUint32LE(r)
		if err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "read expiry_height", err)
		}
	}

	return tx, nil
}

// Hash returns the double-SHA256 of the serialized transaction in internal
// (wire) byte order.
func (tx *SignedTransaction) Hash() [32]byte {
	first := sha256.Sum256(tx.Serialize())
	return sha256.Sum256(first[:])
}

// TxIDHex returns the transaction id as reversed (display-order) hex.
func (tx *SignedTransaction) TxIDHex() string {
	h := tx.Hash()
	reversed := make([]byte, 32)
	for i, b := range h {
		reversed[31-i] = b
	}
	return hex.EncodeToString(reversed)
}

// toWireMsgTx builds a btcd wire.MsgTx mirroring unsigned so
// txscript.CalcSignatureHash can compute the legacy SIGHASH_ALL digest for
// each input. Other inputs' scripts are irrelevant to that computation —
// CalcSignatureHash blanks them internally per BIP — so they are left nil.
func toWireMsgTx(unsigned *UnsignedTransaction) *wire.MsgTx {
	msgTx := wire.NewMsgTx(unsigned.Version)
	msgTx.LockTime = unsigned.LockTime
	for _, in := range unsigned.Inputs {
		prevHash := chainhash.Hash(in.PrevTxHash)
		outPoint := wire.NewOutPoint(&prevHash, in.PrevVout)
		txIn := wire.NewTxIn(outPoint, nil, nil)
		txIn.Sequence = in.Sequence
		msgTx.AddTxIn(txIn)
	}
	for _, out := range unsigned.Outputs {
		msgTx.AddTxOut(wire.NewTxOut(out.Value, out.ScriptPubKey))
	}
	return msgTx
}

func writeUint32LE(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeInt64LE(buf *bytes.Buffer, v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	buf.Write(tmp[:])
}

// writeVarInt writes a Bitcoin-style compact size integer.
func writeVarInt(buf *bytes.Buffer, v uint64) {
	switch {
	case v < 0xfd:
		buf.WriteByte(byte(v))
	case v <= 0xffff:
		buf.WriteByte(0xfd)
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(v))
		buf.Write(tmp[:])
	case v <= 0xffffffff:
		buf.WriteByte(0xfe)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(v))
		buf.Write(tmp[:])
	default:
		buf.WriteByte(0xff)
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], v)
		buf.Write(tmp[:])
	}
}

func readUint32LE(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := readFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

func readInt64LE(r *bytes.Reader) (int64, error) {
	var tmp [8]byte
	if _, err := readFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(tmp[:])), nil
}

func readVarInt(r *bytes.Reader) (uint64, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch prefix {
	case 0xfd:
		var tmp [2]byte
		if _, err := readFull(r, tmp[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(tmp[:])), nil
	case 0xfe:
		var tmp [4]byte
		if _, err := readFull(r, tmp[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(tmp[:])), nil
	case 0xff:
		var tmp [8]byte
		if _, err := readFull(r, tmp[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(tmp[:]), nil
	default:
		return uint64(prefix), nil
	}
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
