package electrum

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/logging"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
	"github.com/kgcdream2019/utxoswap/internal/script"

	"golang.org/x/sync/errgroup"
)

// Client fronts a set of Electrum servers as a single rpcclient.Client.
// Every method except server.ping tries connections in configured order
// and returns the first success; server.ping fans out to every connected
// server at once to keep them all alive, matching original_source's
// electrum_request_multi (select_ok_sequential vs select_ok).
type Client struct {
	conns  []*connection
	ids    idGen
	logger logging.Logger
}

// New starts a supervised connection for every server in servers and
// returns a Client ready for use; connections are established in the
// background and calls naturally fail over while any are still connecting.
func New(ctx context.Context, servers []ServerConfig, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.Noop()
	}
	c := &Client{logger: logger}
	for _, s := range servers {
		conn := newConnection(s, logger)
		c.conns = append(c.conns, conn)
		go conn.run(ctx)
	}
	return c
}

// Stop tears down every managed connection.
func (c *Client) Stop() {
	for _, conn := range c.conns {
		conn.stop()
	}
}

// call applies the sequential-except-ping multi-server policy described in
// SPEC_FULL.md's rpc backends section.
func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	if method == "server.ping" {
		return c.callAllConnected(ctx, method, params)
	}
	return c.callSequential(ctx, method, params, out)
}

func (c *Client) callSequential(ctx context.Context, method string, params []interface{}, out interface{}) error {
	var lastErr error
	tried := false
	for _, conn := range c.conns {
		if conn.State() != stateConnected {
			continue
		}
		tried = true
		id := c.ids.nextID()
		err := callOnce(ctx, conn, id, method, params, out)
		if err == nil {
			return nil
		}
		lastErr = err
		c.logger.Warnf("electrum %s: %s failed: %v", conn.cfg.Addr, method, err)
	}
	if !tried {
		return chainerror.New(chainerror.Network, "no electrum server currently connected")
	}
	return lastErr
}

func (c *Client) callAllConnected(ctx context.Context, method string, params []interface{}) error {
	group, gctx := errgroup.WithContext(ctx)
	any := false
	for _, conn := range c.conns {
		if conn.State() != stateConnected {
			continue
		}
		any = true
		conn := conn
		group.Go(func() error {
			id := c.ids.nextID()
			return callOnce(gctx, conn, id, method, params, nil)
		})
	}
	if !any {
		return chainerror.New(chainerror.Network, "no electrum server currently connected")
	}
	return group.Wait()
}

type unspentEntry struct {
	TxHash string `json:"tx_hash"`
	TxPos  uint32 `json:"tx_pos"`
	Value  int64  `json:"value"`
	Height int64  `json:"height"`
}

// ListUnspentOrdered implements rpcclient.Client via
// blockchain.scripthash.listunspent, deduplicated by (tx_hash, tx_pos) and
// sorted ascending by value.
func (c *Client) ListUnspentOrdered(ctx context.Context, addrHash []byte) ([]rpcclient.Unspent, error) {
	pkScript, err := script.P2PKHScript(addrHash)
	if err != nil {
		return nil, err
	}
	scriptHash := hex.EncodeToString(script.ScriptHash(pkScript))

	var entries []unspentEntry
	if err := c.call(ctx, "blockchain.scripthash.listunspent", []interface{}{scriptHash}, &entries); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	result := make([]rpcclient.Unspent, 0, len(entries))
	for _, e := range entries {
		key := fmt.Sprintf("%s:%d", e.TxHash, e.TxPos)
		if seen[key] {
			continue
		}
		seen[key] = true

		txHash, err := chainhashFromHex(e.TxHash)
		if err != nil {
			return nil, err
		}
		result = append(result, rpcclient.Unspent{TxHash: txHash, Vout: e.TxPos, Value: e.Value})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Value < result[j].Value })
	return result, nil
}

// SendRawTransaction implements rpcclient.Client via
// blockchain.transaction.broadcast, then blocks polling
// blockchain.scripthash.listunspent once a second until none of raw's
// inputs remain in the unspent set, matching original_source's
// ElectrumClient::send_transaction confirmation loop.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) ([32]byte, error) {
	var txidHex string
	if err := c.call(ctx, "blockchain.transaction.broadcast", []interface{}{hex.EncodeToString(raw)}, &txidHex); err != nil {
		return [32]byte{}, err
	}
	txHash, err := chainhashFromHex(txidHex)
	if err != nil {
		return [32]byte{}, err
	}

	tx, err := deserializeTx(raw)
	if err != nil {
		return txHash, nil
	}
	if err := c.awaitSpentInputs(ctx, tx); err != nil {
		c.logger.Warnf("electrum: broadcast confirmation wait failed: %v", err)
	}
	return txHash, nil
}

type spentOutpoint struct {
	scriptHash string
	txHash     [32]byte
	vout       uint32
}

// spentOutpoints resolves the script-hash each of tx's inputs spends from,
// by fetching and decoding the funding transaction of each input.
func (c *Client) spentOutpoints(ctx context.Context, tx *wire.MsgTx) []spentOutpoint {
	var out []spentOutpoint
	for _, in := range tx.TxIn {
		prevTxHash := [32]byte(in.PreviousOutPoint.Hash)
		idx := in.PreviousOutPoint.Index
		pkScript, err := c.findFundingScript(ctx, prevTxHash, idx)
		if err != nil || pkScript == nil {
			continue
		}
		out = append(out, spentOutpoint{
			scriptHash: hex.EncodeToString(script.ScriptHash(pkScript)),
			txHash:     prevTxHash,
			vout:       idx,
		})
	}
	return out
}

// awaitSpentInputs polls blockchain.scripthash.listunspent once a second
// for every input tx spends, until none of them still appear unspent,
// matching original_source's ElectrumClient::send_transaction loop_fn.
func (c *Client) awaitSpentInputs(ctx context.Context, tx *wire.MsgTx) error {
	outpoints := c.spentOutpoints(ctx, tx)
	if len(outpoints) == 0 {
		return nil
	}
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		stillUnspent := false
		for _, op := range outpoints {
			var entries []unspentEntry
			if err := c.call(ctx, "blockchain.scripthash.listunspent", []interface{}{op.scriptHash}, &entries); err != nil {
				return err
			}
			for _, e := range entries {
				candidate, err := chainhashFromHex(e.TxHash)
				if err == nil && candidate == op.txHash && e.TxPos == op.vout {
					stillUnspent = true
				}
			}
		}
		if !stillUnspent {
			return nil
		}
	}
}

// GetTransactionBytes implements rpcclient.Client via
// blockchain.transaction.get.
func (c *Client) GetTransactionBytes(ctx context.Context, txid [32]byte) ([]byte, error) {
	var hexResult string
	txidHex := hex.EncodeToString(reverseBytes(txid[:]))
	if err := c.call(ctx, "blockchain.transaction.get", []interface{}{txidHex}, &hexResult); err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(hexResult)
	if err != nil {
		return nil, chainerror.Wrap(chainerror.Protocol, "decode electrum transaction hex", err)
	}
	return raw, nil
}

// GetVerboseTransaction implements rpcclient.Client via the non-verbose
// blockchain.transaction.get. Only Bytes is filled in: Confirmations,
// BlockHeight and BlockHash are left at their zero values.
func (c *Client) GetVerboseTransaction(ctx context.Context, txid [32]byte) (*rpcclient.VerboseTx, error) {
	raw, err := c.GetTransactionBytes(ctx, txid)
	if err != nil {
		return nil, err
	}
	return &rpcclient.VerboseTx{Bytes: raw}, nil
}

// GetBlockCount implements rpcclient.Client by sending a
// blockchain.headers.subscribe request and returning the height of the
// header in its reply.
func (c *Client) GetBlockCount(ctx context.Context) (int64, error) {
	var result struct {
		Height int64 `json:"height"`
	}
	if err := c.call(ctx, "blockchain.headers.subscribe", nil, &result); err != nil {
		return 0, err
	}
	return result.Height, nil
}

// DisplayBalance implements rpcclient.Client via
// blockchain.scripthash.get_balance.
func (c *Client) DisplayBalance(ctx context.Context, addrHash []byte, decimals uint8) (float64, error) {
	pkScript, err := script.P2PKHScript(addrHash)
	if err != nil {
		return 0, err
	}
	scriptHash := hex.EncodeToString(script.ScriptHash(pkScript))

	var balance struct {
		Confirmed   int64 `json:"confirmed"`
		Unconfirmed int64 `json:"unconfirmed"`
	}
	if err := c.call(ctx, "blockchain.scripthash.get_balance", []interface{}{scriptHash}, &balance); err != nil {
		return 0, err
	}
	scale := 1.0
	for i := uint8(0); i < decimals; i++ {
		scale *= 10
	}
	return float64(balance.Confirmed+balance.Unconfirmed) / scale, nil
}

// EstimateFeeSat implements rpcclient.Client via blockchain.estimatefee,
// flooring to 1000 smallest units at or below a rate of 0.00001.
func (c *Client) EstimateFeeSat(ctx context.Context, decimals uint8, _ rpcclient.FeeMethod) (int64, error) {
	var rate float64
	if err := c.call(ctx, "blockchain.estimatefee", []interface{}{1}, &rate); err != nil {
		return 0, err
	}
	if rate <= 0.00001 {
		return 1000, nil
	}
	scale := 1.0
	for i := uint8(0); i < decimals; i++ {
		scale *= 10
	}
	return int64(rate * scale), nil
}

type historyEntry struct {
	TxHash string `json:"tx_hash"`
	Height int64  `json:"height"`
}

// FindOutputSpend implements rpcclient.Client via
// blockchain.scripthash.get_history: a script-hash with fewer than two
// history entries cannot yet contain a spend of its own funding output.
// fromBlock is unused; Electrum indexes by script, not by height.
func (c *Client) FindOutputSpend(ctx context.Context, txid [32]byte, vout uint32, _ int64) (*rpcclient.VerboseTx, error) {
	pkScript, err := c.findFundingScript(ctx, txid, vout)
	if err != nil || pkScript == nil {
		return nil, err
	}
	scriptHash := hex.EncodeToString(script.ScriptHash(pkScript))

	var history []historyEntry
	if err := c.call(ctx, "blockchain.scripthash.get_history", []interface{}{scriptHash}, &history); err != nil {
		return nil, err
	}
	if len(history) < 2 {
		return nil, nil
	}

	for _, h := range history {
		candidateHash, err := chainhashFromHex(h.TxHash)
		if err != nil {
			continue
		}
		if candidateHash == txid {
			continue
		}
		raw, err := c.GetTransactionBytes(ctx, candidateHash)
		if err != nil {
			continue
		}
		tx, err := deserializeTx(raw)
		if err != nil {
			continue
		}
		for _, in := range tx.TxIn {
			if in.PreviousOutPoint.Hash == toChainHash(txid) && in.PreviousOutPoint.Index == vout {
				return &rpcclient.VerboseTx{Bytes: raw}, nil
			}
		}
	}
	return nil, nil
}

// findFundingScript recovers the output script paid by (txid, vout) so its
// electrum script-hash can be queried; the funding transaction itself must
// already be visible to the backend.
func (c *Client) findFundingScript(ctx context.Context, txid [32]byte, vout uint32) ([]byte, error) {
	raw, err := c.GetTransactionBytes(ctx, txid)
	if err != nil {
		return nil, err
	}
	tx, err := deserializeTx(raw)
	if err != nil {
		return nil, err
	}
	if int(vout) >= len(tx.TxOut) {
		return nil, chainerror.New(chainerror.Protocol, "output index out of range")
	}
	return tx.TxOut[vout].PkScript, nil
}
