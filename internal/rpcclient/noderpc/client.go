package noderpc

import (
	"bytes"
	"context"
	"encoding/hex"
	"sort"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
)

// interOutputDelay mitigates "work queue depth exceeded" errors some full
// nodes raise when output-amount lookups are issued back to back; it
// matches original_source's list_unspent_ordered, which inserts a 10ms
// Delay between each sequential output_amount call.
const interOutputDelay = 10 * time.Millisecond

type listUnspentItem struct {
	TxID    string `json:"txid"`
	Vout    uint32 `json:"vout"`
	Address string `json:"address"`
}

// ListUnspentOrdered implements rpcclient.Client. It fetches the raw
// unspent list for addrHash's address, then issues sequential per-output
// amount queries with interOutputDelay between them, and returns the
// result sorted ascending by value.
func (c *Client) ListUnspentOrdered(ctx context.Context, addrHash []byte) ([]rpcclient.Unspent, error) {
	address := hex.EncodeToString(addrHash)

	var items []listUnspentItem
	params := []interface{}{0, 9999999, []string{address}}
	if err := c.call(ctx, "listunspent", params, &items); err != nil {
		return nil, err
	}

	result := make([]rpcclient.Unspent, 0, len(items))
	for i, item := range items {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, chainerror.Wrap(chainerror.Timeout, "list_unspent_ordered cancelled", ctx.Err())
			case <-time.After(interOutputDelay):
			}
		}

		txHash, err := chainhashFromHex(item.TxID)
		if err != nil {
			return nil, chainerror.Wrap(chainerror.Protocol, "decode unspent txid", err)
		}

		value, err := c.outputAmount(ctx, item.TxID, item.Vout)
		if err != nil {
			return nil, err
		}

		result = append(result, rpcclient.Unspent{TxHash: txHash, Vout: item.Vout, Value: value})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Value < result[j].Value })
	return result, nil
}

// outputAmount fetches txid's raw bytes and returns the value of output
// vout, in smallest units.
func (c *Client) outputAmount(ctx context.Context, txid string, vout uint32) (int64, error) {
	raw, err := c.rawTransactionBytes(ctx, txid)
	if err != nil {
		return 0, err
	}
	tx, err := deserializeTx(raw)
	if err != nil {
		return 0, err
	}
	if int(vout) >= len(tx.TxOut) {
		return 0, chainerror.New(chainerror.Protocol, "output index out of range")
	}
	return tx.TxOut[vout].Value, nil
}

func (c *Client) rawTransactionBytes(ctx context.Context, txid string) ([]byte, error) {
	var hexResult string
	if err := c.call(ctx, "getrawtransaction", []interface{}{txid, 0}, &hexResult); err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(hexResult)
	if err != nil {
		return nil, chainerror.Wrap(chainerror.Protocol, "decode raw transaction hex", err)
	}
	return raw, nil
}

// SendRawTransaction implements rpcclient.Client.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) ([32]byte, error) {
	var txidHex string
	err := c.call(ctx, "sendrawtransaction", []interface{}{hex.EncodeToString(raw)}, &txidHex)
	if err != nil {
		return [32]byte{}, err
	}
	return chainhashFromHex(txidHex)
}

// GetTransactionBytes implements rpcclient.Client.
func (c *Client) GetTransactionBytes(ctx context.Context, txid [32]byte) ([]byte, error) {
	return c.rawTransactionBytes(ctx, hex.EncodeToString(reverseBytes(txid[:])))
}

type verboseTxResult struct {
	Hex           string `json:"hex"`
	Confirmations int64  `json:"confirmations"`
	BlockHash     string `json:"blockhash"`
}

// GetVerboseTransaction implements rpcclient.Client.
func (c *Client) GetVerboseTransaction(ctx context.Context, txid [32]byte) (*rpcclient.VerboseTx, error) {
	var result verboseTxResult
	txidHex := hex.EncodeToString(reverseBytes(txid[:]))
	if err := c.call(ctx, "getrawtransaction", []interface{}{txidHex, 1}, &result); err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(result.Hex)
	if err != nil {
		return nil, chainerror.Wrap(chainerror.Protocol, "decode verbose transaction hex", err)
	}

	v := &rpcclient.VerboseTx{Bytes: raw, Confirmations: result.Confirmations}
	if result.BlockHash != "" {
		blockHash, err := chainhashFromHex(result.BlockHash)
		if err == nil {
			v.BlockHash = blockHash
		}
	}
	return v, nil
}

// GetBlockCount implements rpcclient.Client.
func (c *Client) GetBlockCount(ctx context.Context) (int64, error) {
	var height int64
	if err := c.call(ctx, "getblockcount", nil, &height); err != nil {
		return 0, err
	}
	return height, nil
}

// DisplayBalance implements rpcclient.Client by summing the unspent set
// for addrHash's address.
func (c *Client) DisplayBalance(ctx context.Context, addrHash []byte, decimals uint8) (float64, error) {
	unspents, err := c.ListUnspentOrdered(ctx, addrHash)
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, u := range unspents {
		sum += u.Value
	}
	scale := 1.0
	for i := uint8(0); i < decimals; i++ {
		scale *= 10
	}
	return float64(sum) / scale, nil
}

type smartFeeResult struct {
	FeeRate float64 `json:"feerate"`
	Blocks  int64   `json:"blocks"`
}

// EstimateFeeSat implements rpcclient.Client. If the node reports a rate at
// or below 0.00001 base units, it returns the floor of 1000 smallest units.
func (c *Client) EstimateFeeSat(ctx context.Context, decimals uint8, method rpcclient.FeeMethod) (int64, error) {
	scale := 1.0
	for i := uint8(0); i < decimals; i++ {
		scale *= 10
	}

	var rate float64
	switch method {
	case rpcclient.FeeMethodSmart:
		var result smartFeeResult
		if err := c.call(ctx, "estimatesmartfee", []interface{}{1}, &result); err != nil {
			return 0, err
		}
		rate = result.FeeRate
	default:
		if err := c.call(ctx, "estimatefee", []interface{}{1}, &rate); err != nil {
			return 0, err
		}
	}

	if rate > 0.00001 {
		return int64(rate * scale), nil
	}
	return 1000, nil
}

type listTransactionsItem struct {
	TxID string `json:"txid"`
	Vout uint64 `json:"vout"`
}

type listSinceBlockResult struct {
	Transactions []listTransactionsItem `json:"transactions"`
}

// FindOutputSpend implements rpcclient.Client. It walks every transaction
// reported since fromBlock's block hash and matches on (txid, vout).
func (c *Client) FindOutputSpend(ctx context.Context, txid [32]byte, vout uint32, fromBlock int64) (*rpcclient.VerboseTx, error) {
	var blockHash string
	if err := c.call(ctx, "getblockhash", []interface{}{fromBlock}, &blockHash); err != nil {
		return nil, err
	}

	var since listSinceBlockResult
	if err := c.call(ctx, "listsinceblock", []interface{}{blockHash, 1, true}, &since); err != nil {
		return nil, err
	}

	for _, item := range since.Transactions {
		raw, err := c.rawTransactionBytes(ctx, item.TxID)
		if err != nil {
			continue
		}
		tx, err := deserializeTx(raw)
		if err != nil {
			continue
		}
		for _, in := range tx.TxIn {
			if chainhashEquals(in.PreviousOutPoint.Hash[:], txid[:]) && in.PreviousOutPoint.Index == vout {
				return &rpcclient.VerboseTx{Bytes: raw}, nil
			}
		}
	}
	return nil, nil
}

func deserializeTx(raw []byte) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, chainerror.Wrap(chainerror.Protocol, "deserialize transaction", err)
	}
	return tx, nil
}

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

func chainhashEquals(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
