// Package swap implements the high-level HTLC actions two swap
// participants drive against a UTXO chain (fund, spend, refund) and the
// two polling watchers that observe confirmations and counterparty spends.
// Grounded in original_source/mm2src/coins/utxo.rs's MarketCoinOps impl
// (send_buyer_fee, send_buyer_payment, send_seller_payment,
// send_seller_spends_buyer_payment, send_buyer_spends_seller_payment,
// send_buyer_refunds_payment, send_seller_refunds_payment) and its
// WaitForUtxoTxConfirmations/WaitForTxSpend state machines, restructured
// around the teacher's services-layer shape (a struct wrapping a backend
// client and a keypair, methods instead of free functions).
package swap

import (
	"sync"

	"github.com/kgcdream2019/utxoswap/internal/coinconfig"
	"github.com/kgcdream2019/utxoswap/internal/logging"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
	"github.com/kgcdream2019/utxoswap/internal/script"
)

// Engine drives every HTLC action for one wallet against one backend.
// walletMu is the per-wallet UTXO mutex §5 requires: it is held across
// "select unspents, build, broadcast" so two overlapping actions on the
// same wallet never select the same unspent output twice.
type Engine struct {
	client  rpcclient.Client
	params  *coinconfig.Params
	keyPair *script.KeyPair
	logger  logging.Logger

	walletMu sync.Mutex
}

// New constructs an Engine. logger may be nil, in which case a no-op
// logger is used.
func New(client rpcclient.Client, params *coinconfig.Params, keyPair *script.KeyPair, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Engine{client: client, params: params, keyPair: keyPair, logger: logger}
}
