package swap

import (
	"context"

	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
)

// mockClient is a scripted rpcclient.Client for exercising the watchers and
// engine actions without a network. Each field is a queue of canned
// responses consumed one call at a time; tests set only the fields their
// scenario needs.
type mockClient struct {
	listUnspentFn     func(ctx context.Context, addrHash []byte) ([]rpcclient.Unspent, error)
	sendRawFn         func(ctx context.Context, raw []byte) ([32]byte, error)
	getTxBytesFn      func(ctx context.Context, txid [32]byte) ([]byte, error)
	getVerboseTxCalls []func() (*rpcclient.VerboseTx, error)
	getVerboseTxCall  int
	getBlockCountFn   func(ctx context.Context) (int64, error)
	displayBalanceFn  func(ctx context.Context, addrHash []byte, decimals uint8) (float64, error)
	estimateFeeFn     func(ctx context.Context, decimals uint8, method rpcclient.FeeMethod) (int64, error)
	findSpendCalls    []func() (*rpcclient.VerboseTx, error)
	findSpendCall     int
}

func (m *mockClient) ListUnspentOrdered(ctx context.Context, addrHash []byte) ([]rpcclient.Unspent, error) {
	return m.listUnspentFn(ctx, addrHash)
}

func (m *mockClient) SendRawTransaction(ctx context.Context, raw []byte) ([32]byte, error) {
	return m.sendRawFn(ctx, raw)
}

func (m *mockClient) GetTransactionBytes(ctx context.Context, txid [32]byte) ([]byte, error) {
	return m.getTxBytesFn(ctx, txid)
}

func (m *mockClient) GetVerboseTransaction(ctx context.Context, txid [32]byte) (*rpcclient.VerboseTx, error) {
	call := m.getVerboseTxCalls[m.getVerboseTxCall]
	if m.getVerboseTxCall < len(m.getVerboseTxCalls)-1 {
		m.getVerboseTxCall++
	}
	return call()
}

func (m *mockClient) GetBlockCount(ctx context.Context) (int64, error) {
	return m.getBlockCountFn(ctx)
}

func (m *mockClient) DisplayBalance(ctx context.Context, addrHash []byte, decimals uint8) (float64, error) {
	return m.displayBalanceFn(ctx, addrHash, decimals)
}

func (m *mockClient) EstimateFeeSat(ctx context.Context, decimals uint8, method rpcclient.FeeMethod) (int64, error) {
	return m.estimateFeeFn(ctx, decimals, method)
}

func (m *mockClient) FindOutputSpend(ctx context.Context, txid [32]byte, vout uint32, fromBlock int64) (*rpcclient.VerboseTx, error) {
	call := m.findSpendCalls[m.findSpendCall]
	if m.findSpendCall < len(m.findSpendCalls)-1 {
		m.findSpendCall++
	}
	return call()
}

var _ rpcclient.Client = (*mockClient)(nil)
