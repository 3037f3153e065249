package noderpc

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/rpcclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawTxHex(t *testing.T, value int64) string {
	t.Helper()
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(value, []byte{0x76, 0xa9, 0x14}))
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return hex.EncodeToString(buf.Bytes())
}

type rpcHandlerFunc func(method string, params []interface{}) (interface{}, string)

func newTestServer(t *testing.T, handler rpcHandlerFunc) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, errMsg := handler(req.Method, req.Params)
		resp := response{ID: req.ID}
		if errMsg != "" {
			resp.Error = json.RawMessage(`"` + errMsg + `"`)
		} else {
			encoded, err := json.Marshal(result)
			require.NoError(t, err)
			resp.Result = encoded
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestListUnspentOrderedSortsAscending(t *testing.T) {
	txidA := hex.EncodeToString(bytes.Repeat([]byte{0x01}, 32))
	txidB := hex.EncodeToString(bytes.Repeat([]byte{0x02}, 32))

	server := newTestServer(t, func(method string, params []interface{}) (interface{}, string) {
		switch method {
		case "listunspent":
			return []listUnspentItem{
				{TxID: txidA, Vout: 0},
				{TxID: txidB, Vout: 1},
			}, ""
		case "getrawtransaction":
			txid := params[0].(string)
			if txid == txidA {
				return rawTxHex(t, 5000), ""
			}
			return rawTxHex(t, 1000), ""
		}
		return nil, "unexpected method " + method
	})
	defer server.Close()

	client := New(Config{URL: server.URL})
	unspents, err := client.ListUnspentOrdered(context.Background(), []byte{0x01, 0x02})
	require.NoError(t, err)
	require.Len(t, unspents, 2)
	assert.Equal(t, int64(1000), unspents[0].Value)
	assert.Equal(t, int64(5000), unspents[1].Value)
}

func TestSendRawTransactionReturnsTxID(t *testing.T) {
	txidHex := hex.EncodeToString(bytes.Repeat([]byte{0xAB}, 32))
	server := newTestServer(t, func(method string, params []interface{}) (interface{}, string) {
		if method == "sendrawtransaction" {
			return txidHex, ""
		}
		return nil, "unexpected method"
	})
	defer server.Close()

	client := New(Config{URL: server.URL})
	txid, err := client.SendRawTransaction(context.Background(), []byte{0x01})
	require.NoError(t, err)
	assert.Len(t, txid, 32)
}

func TestCallSurfacesProtocolErrorOnRPCErrorField(t *testing.T) {
	server := newTestServer(t, func(method string, params []interface{}) (interface{}, string) {
		return nil, "bad request"
	})
	defer server.Close()

	client := New(Config{URL: server.URL})
	_, err := client.GetBlockCount(context.Background())
	require.Error(t, err)
	assert.True(t, chainerror.Is(err, chainerror.Protocol))
}

func TestCallSurfacesProtocolErrorOnNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(Config{URL: server.URL})
	_, err := client.GetBlockCount(context.Background())
	require.Error(t, err)
	assert.True(t, chainerror.Is(err, chainerror.Protocol))
}

func TestEstimateFeeSatFloorsSmallRates(t *testing.T) {
	server := newTestServer(t, func(method string, params []interface{}) (interface{}, string) {
		return 0.000001, ""
	})
	defer server.Close()

	client := New(Config{URL: server.URL})
	sat, err := client.EstimateFeeSat(context.Background(), 8, rpcclient.FeeMethodStandard)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), sat)
}

func TestEstimateFeeSatScalesLargeRates(t *testing.T) {
	server := newTestServer(t, func(method string, params []interface{}) (interface{}, string) {
		return 0.0001, ""
	})
	defer server.Close()

	client := New(Config{URL: server.URL})
	sat, err := client.EstimateFeeSat(context.Background(), 8, rpcclient.FeeMethodStandard)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), sat)
}
