package swap

import (
	"context"
	"testing"
	"time"

	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForConfirmationsSucceedsImmediately(t *testing.T) {
	client := &mockClient{
		getVerboseTxCalls: []func() (*rpcclient.VerboseTx, error){
			func() (*rpcclient.VerboseTx, error) { return &rpcclient.VerboseTx{Confirmations: 3}, nil },
		},
	}
	err := WaitForConfirmations(context.Background(), client, [32]byte{1}, 1, time.Millisecond, time.Now().Add(time.Second), 5)
	require.NoError(t, err)
}

func TestWaitForConfirmationsRetriesThenSucceeds(t *testing.T) {
	calls := 0
	client := &mockClient{
		getVerboseTxCalls: []func() (*rpcclient.VerboseTx, error){
			func() (*rpcclient.VerboseTx, error) { calls++; return &rpcclient.VerboseTx{Confirmations: 0}, nil },
			func() (*rpcclient.VerboseTx, error) { calls++; return &rpcclient.VerboseTx{Confirmations: 2}, nil },
		},
	}
	err := WaitForConfirmations(context.Background(), client, [32]byte{2}, 2, time.Millisecond, time.Now().Add(time.Second), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWaitForConfirmationsTreatsNegativeAsZero(t *testing.T) {
	calls := 0
	client := &mockClient{
		getVerboseTxCalls: []func() (*rpcclient.VerboseTx, error){
			func() (*rpcclient.VerboseTx, error) { calls++; return &rpcclient.VerboseTx{Confirmations: -1}, nil },
		},
	}
	deadline := time.Now().Add(5 * time.Millisecond)
	err := WaitForConfirmations(context.Background(), client, [32]byte{3}, 1, time.Millisecond, deadline, 5)
	require.Error(t, err)
	assert.True(t, chainerror.Is(err, chainerror.Timeout))
}

func TestWaitForConfirmationsGivesUpAfterMaxRetries(t *testing.T) {
	client := &mockClient{
		getVerboseTxCalls: []func() (*rpcclient.VerboseTx, error){
			func() (*rpcclient.VerboseTx, error) { return nil, assertErr },
		},
	}
	err := WaitForConfirmations(context.Background(), client, [32]byte{4}, 1, time.Millisecond, time.Now().Add(time.Second), 2)
	require.Error(t, err)
	assert.True(t, chainerror.Is(err, chainerror.Network))
}

var assertErr = chainerror.New(chainerror.Network, "rpc unreachable")
