package swap

import (
	"context"
	"time"

	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
)

// confirmState is the confirmation poller's two-state machine, grounded in
// original_source's WaitForConfirmationState (WaitingForInterval,
// CheckingConfirmations).
type confirmState int

const (
	stateWaitingInterval confirmState = iota
	stateCheckingConfirmations
)

// WaitForConfirmations blocks until txid has at least wantConfirmations
// confirmations, polling every pollInterval. It gives up once maxRetries
// RPC errors have occurred in total (a successful poll does not reset the
// count) or once deadline passes, matching
// WaitForUtxoTxConfirmations's retries/max_retries and wait_until fields.
// A backend that reports a negative confirmation count (unconfirmed, or
// conflicted) is treated the same as zero: not yet satisfied.
func WaitForConfirmations(ctx context.Context, client rpcclient.Client, txid [32]byte, wantConfirmations int64, pollInterval time.Duration, deadline time.Time, maxRetries int) error {
	state := stateWaitingInterval
	retries := 0

	for {
		switch state {
		case stateWaitingInterval:
			if time.Now().After(deadline) {
				return chainerror.New(chainerror.Timeout, "waited too long for confirmations")
			}
			select {
			case <-ctx.Done():
				return chainerror.Wrap(chainerror.Timeout, "confirmation wait cancelled", ctx.Err())
			case <-time.After(pollInterval):
			}
			state = stateCheckingConfirmations

		case stateCheckingConfirmations:
			verbose, err := client.GetVerboseTransaction(ctx, txid)
			if err != nil {
				retries++
				if retries >= maxRetries {
					return chainerror.Wrap(chainerror.Network, "reached max retries waiting for confirmations", err)
				}
				state = stateWaitingInterval
				continue
			}
			confirmations := verbose.Confirmations
			if confirmations < 0 {
				confirmations = 0
			}
			if confirmations >= wantConfirmations {
				return nil
			}
			state = stateWaitingInterval
		}
	}
}
