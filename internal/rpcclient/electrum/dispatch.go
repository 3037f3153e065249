package electrum

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/kgcdream2019/utxoswap/internal/chainerror"
)

type request struct {
	ID     string        `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rawResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// idGen hands out monotonically increasing request ids shared across every
// connection of a client, matching original_source's single next_id
// counter per ElectrumClientImpl.
type idGen struct {
	next atomic.Uint64
}

func (g *idGen) nextID() string {
	return fmt.Sprintf("%d", g.next.Add(1))
}

// callOnce sends one request over conn and decodes its matching response
// into out. It does not retry or fail over; that policy lives in client.go.
func callOnce(ctx context.Context, conn *connection, id, method string, params []interface{}, out interface{}) error {
	req := request{ID: id, Method: method, Params: params}
	encoded, err := json.Marshal(req)
	if err != nil {
		return chainerror.Wrap(chainerror.BadInput, "encode electrum request", err)
	}

	if err := conn.send(encoded); err != nil {
		return err
	}

	raw, err := conn.awaitResponse(ctx, fmt.Sprintf("%q", id))
	if err != nil {
		return err
	}

	var resp rawResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return chainerror.Wrap(chainerror.Protocol, "decode electrum response", err)
	}
	if resp.Error != nil {
		return chainerror.New(chainerror.Protocol, fmt.Sprintf("electrum %s returned error %d: %s", method, resp.Error.Code, resp.Error.Message))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return chainerror.Wrap(chainerror.Protocol, fmt.Sprintf("decode electrum %s result", method), err)
	}
	return nil
}
