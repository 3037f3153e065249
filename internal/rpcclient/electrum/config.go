// Package electrum implements the Electrum backend: JSON-RPC 2.0 over
// newline-delimited TCP or TLS, one persistent connection per configured
// server, each held inside its own supervised reconnect loop. Grounded
// directly in original_source/mm2src/coins/utxo/rpc_clients.rs's
// connect_loop/electrum_connect/ElectrumConnection state machine, with the
// response-map/backoff/reconnect shape restructured after the teacher's
// rpc/websocket.go (that file's transport — gorilla/websocket — has no
// home here; the connection shape it uses does).
package electrum

import "time"

// ServerConfig addresses one Electrum server.
type ServerConfig struct {
	Addr              string // host:port
	TLS               bool
	DisableCertVerify bool
}

const (
	// idleTimeout tears a connection down and reconnects it if no chunk
	// has arrived for this long.
	idleTimeout = 60 * time.Second
	// requestTimeout is the per-request deadline once a request has been
	// written to a connected socket.
	requestTimeout = 60 * time.Second
	// pollInterval is how often a pending request re-checks the response
	// map for its answer.
	pollInterval = 200 * time.Millisecond
	// backoffStep is how much the reconnect delay grows per failed
	// attempt.
	backoffStep = 5 * time.Second
	// backoffCap is the maximum reconnect delay.
	backoffCap = 30 * time.Second
)

// headersSubscribeMethod is the only subscription notification this
// backend understands; incoming notifications for it are stored under a
// well-known pseudo-id so a caller can poll the latest header.
const headersSubscribeMethod = "blockchain.headers.subscribe"
