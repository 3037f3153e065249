package electrum

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kgcdream2019/utxoswap/internal/chainerror"
	"github.com/kgcdream2019/utxoswap/internal/logging"
)

// connState is the lifecycle of one server connection.
type connState int32

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

// connection owns one TCP or TLS socket to a single Electrum server and the
// supervisor goroutine that keeps it alive. Grounded in
// original_source's ElectrumConnection + connect_loop: the outgoing writer
// is Some only while connected, reconnects back off by backoffStep per
// failed attempt up to backoffCap, and a read that goes idleTimeout without
// a chunk is treated as a dead connection.
type connection struct {
	cfg    ServerConfig
	logger logging.Logger

	writeMu sync.Mutex
	writer  *bufio.Writer // nil while disconnected

	state atomic.Int32

	responses struct {
		sync.Mutex
		m map[string]json.RawMessage
	}

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

func newConnection(cfg ServerConfig, logger logging.Logger) *connection {
	c := &connection{cfg: cfg, logger: logger, shutdown: make(chan struct{})}
	c.responses.m = make(map[string]json.RawMessage)
	return c
}

func (c *connection) State() connState {
	return connState(c.state.Load())
}

func (c *connection) setState(s connState) {
	c.state.Store(int32(s))
}

// run is the reconnect supervisor: dial, read until error or idle timeout,
// tear down, back off, repeat. It returns when stop is called.
func (c *connection) run(ctx context.Context) {
	delay := time.Duration(0)
	for {
		select {
		case <-c.shutdown:
			return
		case <-ctx.Done():
			return
		default:
		}

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.shutdown:
				return
			case <-ctx.Done():
				return
			}
		}

		c.setState(stateConnecting)
		conn, err := c.dial()
		if err != nil {
			c.logger.Warnf("electrum %s: dial failed: %v", c.cfg.Addr, err)
			c.setState(stateDisconnected)
			delay = nextBackoff(delay)
			continue
		}

		c.logger.Infof("electrum %s: connected", c.cfg.Addr)
		c.attach(conn)
		delay = 0

		err = c.readLoop(conn)
		c.detach()
		if err != nil {
			c.logger.Warnf("electrum %s: connection lost: %v", c.cfg.Addr, err)
		}
		c.setState(stateDisconnected)
	}
}

func (c *connection) dial() (net.Conn, error) {
	dialer := net.Dialer{Timeout: 10 * time.Second}
	if c.cfg.TLS {
		tlsConf := &tls.Config{InsecureSkipVerify: c.cfg.DisableCertVerify}
		return tls.DialWithDialer(&dialer, "tcp", c.cfg.Addr, tlsConf)
	}
	return dialer.Dial("tcp", c.cfg.Addr)
}

func (c *connection) attach(conn net.Conn) {
	c.writeMu.Lock()
	c.writer = bufio.NewWriter(conn)
	c.writeMu.Unlock()
	c.setState(stateConnected)
}

func (c *connection) detach() {
	c.writeMu.Lock()
	c.writer = nil
	c.writeMu.Unlock()
}

// readLoop blocks reading newline-delimited JSON frames from conn until an
// error, EOF, or idleTimeout with no chunk received. A single Read may
// return several frames at once or a frame split across Reads; bufio's
// ReadBytes absorbs both.
func (c *connection) readLoop(conn net.Conn) error {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return err
		}
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return err
		}
		c.processLine(line)
	}
}

func (c *connection) processLine(line []byte) {
	var frame struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
	}
	if err := json.Unmarshal(line, &frame); err != nil {
		c.logger.Warnf("electrum %s: malformed frame: %v", c.cfg.Addr, err)
		return
	}

	key := string(frame.ID)
	if frame.Method != "" {
		// Notification, e.g. blockchain.headers.subscribe pushes. Stored
		// under the method name so a caller can poll the latest value.
		key = frame.Method
	}
	if key == "" {
		return
	}

	c.responses.Lock()
	c.responses.m[key] = append([]byte(nil), line...)
	c.responses.Unlock()
}

// send writes req, newline-terminated, to the current socket. It fails
// fast if the connection is not currently connected.
func (c *connection) send(req []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writer == nil {
		return chainerror.New(chainerror.Network, "electrum connection not established")
	}
	if _, err := c.writer.Write(req); err != nil {
		return chainerror.Wrap(chainerror.Network, "write electrum request", err)
	}
	if _, err := c.writer.Write([]byte("\n")); err != nil {
		return chainerror.Wrap(chainerror.Network, "write electrum request", err)
	}
	if err := c.writer.Flush(); err != nil {
		return chainerror.Wrap(chainerror.Network, "flush electrum request", err)
	}
	return nil
}

// awaitResponse polls the response map every pollInterval for id, up to
// requestTimeout.
func (c *connection) awaitResponse(ctx context.Context, id string) (json.RawMessage, error) {
	deadline := time.Now().Add(requestTimeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		c.responses.Lock()
		raw, ok := c.responses.m[id]
		if ok {
			delete(c.responses.m, id)
		}
		c.responses.Unlock()
		if ok {
			return raw, nil
		}

		if time.Now().After(deadline) {
			return nil, chainerror.New(chainerror.Timeout, "electrum request timed out")
		}
		select {
		case <-ctx.Done():
			return nil, chainerror.Wrap(chainerror.Timeout, "electrum request cancelled", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *connection) stop() {
	c.shutdownOnce.Do(func() { close(c.shutdown) })
}

func nextBackoff(d time.Duration) time.Duration {
	d += backoffStep
	if d > backoffCap {
		return backoffCap
	}
	return d
}
