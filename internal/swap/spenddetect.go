package swap

import (
	"context"
	"time"

	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
)

// WaitForTxSpend polls until (txid, vout) is spent, returning the spending
// transaction. The scan strategy — list_since_block for Node-RPC,
// scripthash_get_history for Electrum — lives inside each backend's
// FindOutputSpend; this watcher is backend-agnostic and just re-polls
// whichever rpcclient.Client it was given on a timer. Every poll passes
// the same fromBlock; the starting block is not advanced between polls.
func WaitForTxSpend(ctx context.Context, client rpcclient.Client, txid [32]byte, vout uint32, fromBlock int64, pollInterval time.Duration, deadline time.Time, maxRetries int) (*rpcclient.VerboseTx, error) {
	retries := 0
	for {
		if time.Now().After(deadline) {
			return nil, chainerror.New(chainerror.Timeout, "waited too long for tx spend")
		}

		spend, err := client.FindOutputSpend(ctx, txid, vout, fromBlock)
		if err != nil {
			retries++
			if retries >= maxRetries {
				return nil, chainerror.Wrap(chainerror.Network, "reached max retries waiting for tx spend", err)
			}
		} else if spend != nil {
			return spend, nil
		}

		select {
		case <-ctx.Done():
			return nil, chainerror.Wrap(chainerror.Timeout, "tx spend wait cancelled", ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}
