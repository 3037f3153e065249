package swap

import (
	"context"
	"testing"

	"github.com/kgcdream2019/utxoswap/internal/coinconfig"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
	"github.com/kgcdream2019/utxoswap/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngineParams() *coinconfig.Params {
	return &coinconfig.Params{Decimals: 8, TxVersion: 1, FeeSat: 1000}
}

func TestSendFeeBroadcastsSignedTransaction(t *testing.T) {
	owner, err := script.KeyPairFromSeed([]byte("fee owner seed"))
	require.NoError(t, err)
	feeRecipient, err := script.KeyPairFromSeed([]byte("fee recipient seed"))
	require.NoError(t, err)

	var broadcastRaw []byte
	client := &mockClient{
		listUnspentFn: func(ctx context.Context, addrHash []byte) ([]rpcclient.Unspent, error) {
			return []rpcclient.Unspent{{TxHash: [32]byte{1}, Vout: 0, Value: 100000}}, nil
		},
		sendRawFn: func(ctx context.Context, raw []byte) ([32]byte, error) {
			broadcastRaw = raw
			return [32]byte{9}, nil
		},
	}

	engine := New(client, testEngineParams(), owner, nil)
	ext, err := engine.SendFee(context.Background(), feeRecipient.PubKey, 0.0005)
	require.NoError(t, err)
	assert.NotEmpty(t, broadcastRaw)
	assert.Len(t, ext.Tx.Outputs, 2) // payment + change
	assert.Equal(t, int64(50000), ext.Tx.Outputs[0].Value)
}

func TestSendBuyerPaymentFundsHTLCWithRedeemScript(t *testing.T) {
	buyer, err := script.KeyPairFromSeed([]byte("buyer htlc seed"))
	require.NoError(t, err)
	seller, err := script.KeyPairFromSeed([]byte("seller htlc seed"))
	require.NoError(t, err)

	client := &mockClient{
		listUnspentFn: func(ctx context.Context, addrHash []byte) ([]rpcclient.Unspent, error) {
			return []rpcclient.Unspent{{TxHash: [32]byte{2}, Vout: 1, Value: 200000}}, nil
		},
		sendRawFn: func(ctx context.Context, raw []byte) ([32]byte, error) {
			return [32]byte{}, nil
		},
	}

	engine := New(client, testEngineParams(), buyer, nil)
	secretHash := script.Hash160([]byte("a secret"))
	ext, err := engine.SendBuyerPayment(context.Background(), 123456, buyer.PubKey, seller.PubKey, secretHash, 0.001)
	require.NoError(t, err)
	assert.NotEmpty(t, ext.RedeemScript)

	p2sh, err := script.P2SHScript(ext.RedeemScript)
	require.NoError(t, err)
	assert.Equal(t, p2sh, ext.Tx.Outputs[0].ScriptPubKey)
}

func TestSendFeeRejectsInvalidPubKey(t *testing.T) {
	owner, err := script.KeyPairFromSeed([]byte("invalid pub key seed"))
	require.NoError(t, err)
	client := &mockClient{}
	engine := New(client, testEngineParams(), owner, nil)

	_, err = engine.SendFee(context.Background(), []byte{0x01, 0x02}, 0.001)
	require.Error(t, err)
}
