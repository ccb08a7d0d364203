package ripple

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Time allowed to connect to server.
	dialTimeout = 5 * time.Second

	// Backoff between failed redials.
	redialInterval    = 500 * time.Millisecond
	maxRedialInterval = 30 * time.Second
)

// WSNode rippled websocket node, redials a broken connection on the next call
type WSNode struct {
	endpoint string
	header   http.Header
	dialer   *websocket.Dialer
	counter  uint64

	mu       sync.Mutex
	conn     *wsConn
	redial   backoff.BackOff
	nextDial time.Time
	closed   bool
}

// wsConn one websocket connection with its pumps
type wsConn struct {
	endpoint  string
	ws        *websocket.Conn
	outgoing  chan *wsCall
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type wsCall struct {
	id      uint64
	command string
	params  interface{}
	ready   chan wsReply
}

type wsReply struct {
	resp *wsResponse
	err  error
}

type wsResponse struct {
	ID     uint64          `json:"id"`
	Type   string          `json:"type"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Error
}

func (c *wsCall) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{})
	if c.params != nil {
		b, err := json.Marshal(c.params)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(b, &fields); err != nil {
			return nil, err
		}
	}
	fields["id"] = c.id
	fields["command"] = c.command
	return json.Marshal(fields)
}

func (c *wsCall) reply(resp *wsResponse, err error) {
	select {
	case c.ready <- wsReply{resp: resp, err: err}:
	default:
	}
}

// DialWebsocket connects to a rippled websocket endpoint.
// Empty username and password disable basic auth.
func DialWebsocket(ctx context.Context, endpoint, username, password string) (*WSNode, error) {
	header := make(http.Header)
	if username != "" || password != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		header.Set("Authorization", "Basic "+auth)
	}
	redial := backoff.NewExponentialBackOff()
	redial.InitialInterval = redialInterval
	redial.MaxInterval = maxRedialInterval
	redial.MaxElapsedTime = 0

	n := &WSNode{
		endpoint: endpoint,
		header:   header,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: dialTimeout,
		},
		redial: redial,
	}
	conn, err := n.dial(ctx)
	if err != nil {
		return nil, err
	}
	n.conn = conn
	return n, nil
}

func (n *WSNode) dial(ctx context.Context) (*wsConn, error) {
	ws, _, err := n.dialer.DialContext(ctx, n.endpoint, n.header)
	if err != nil {
		return nil, err
	}
	conn := &wsConn{
		endpoint: n.endpoint,
		ws:       ws,
		outgoing: make(chan *wsCall),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go conn.run()
	log.Info("[ripple] websocket connected", "endpoint", n.endpoint)
	return conn, nil
}

// connection returns the live connection, redialing a broken one.
// Failed redials are spaced out by the redial backoff.
func (n *WSNode) connection(ctx context.Context) (*wsConn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, ErrConnectionClosed
	}
	if n.conn != nil && !n.conn.isDone() {
		return n.conn, nil
	}
	if wait := time.Until(n.nextDial); wait > 0 {
		return nil, fmt.Errorf("%w, redial in %v", ErrConnectionClosed, wait)
	}
	conn, err := n.dial(ctx)
	if err != nil {
		n.nextDial = time.Now().Add(n.redial.NextBackOff())
		log.Warn("[ripple] websocket redial failed", "endpoint", n.endpoint, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}
	n.redial.Reset()
	n.nextDial = time.Time{}
	n.conn = conn
	return conn, nil
}

// BinaryLedger get binary ledger with expanded transactions
func (n *WSNode) BinaryLedger(ctx context.Context, seq uint32) (*BinaryLedgerResult, error) {
	var result BinaryLedgerResult
	err := n.call(ctx, CommandLedger, NewBinaryLedgerRequest(seq), &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ServerState get server state
func (n *WSNode) ServerState(ctx context.Context) (*ServerStateResult, error) {
	var result ServerStateResult
	err := n.call(ctx, CommandServerState, nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Close shuts down the connection and blocks until all internal goroutines
// have been cleaned up. Pending and later calls return ErrConnectionClosed.
func (n *WSNode) Close() error {
	n.mu.Lock()
	n.closed = true
	conn := n.conn
	n.mu.Unlock()
	if conn != nil {
		conn.close()
	}
	return nil
}

func (n *WSNode) call(ctx context.Context, command string, params, result interface{}) error {
	conn, err := n.connection(ctx)
	if err != nil {
		return err
	}
	c := &wsCall{
		id:      atomic.AddUint64(&n.counter, 1),
		command: command,
		params:  params,
		ready:   make(chan wsReply, 1),
	}
	select {
	case conn.outgoing <- c:
	case <-conn.done:
		return ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case reply := <-c.ready:
		if reply.err != nil {
			return reply.err
		}
		resp := reply.resp
		if resp.Status == "error" || resp.Name != "" {
			e := resp.Error
			return &e
		}
		return decodeResult(resp.Result, result)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (conn *wsConn) close() {
	conn.closeOnce.Do(func() { close(conn.closing) })
	<-conn.done
}

func (conn *wsConn) isDone() bool {
	select {
	case <-conn.done:
		return true
	default:
		return false
	}
}

// run spawns the read/write pumps and then runs until Close() is called
// or the connection is broken.
func (conn *wsConn) run() {
	outbound := make(chan *wsCall)
	inbound := make(chan []byte)
	writerDone := make(chan struct{})
	pending := make(map[uint64]*wsCall)

	defer func() {
		close(outbound)
		<-writerDone
		_ = conn.ws.Close()
		// drain until the read pump returns
		for range inbound {
		}
		// done is closed before pending calls return, so their next call redials
		close(conn.done)
		for _, c := range pending {
			c.reply(nil, ErrConnectionClosed)
		}
	}()

	go func() {
		defer close(writerDone)
		conn.writePump(outbound)
	}()
	go func() {
		defer close(inbound)
		conn.readPump(inbound)
	}()

	for {
		select {
		case <-conn.closing:
			return
		case <-writerDone:
			return
		case c := <-conn.outgoing:
			pending[c.id] = c
			select {
			case outbound <- c:
			case <-writerDone:
				return
			}
		case in, ok := <-inbound:
			if !ok {
				log.Warn("[ripple] websocket closed by server", "endpoint", conn.endpoint)
				return
			}
			var resp wsResponse
			if err := json.Unmarshal(in, &resp); err != nil {
				log.Warn("[ripple] unmarshal websocket message failed", "err", err)
				continue
			}
			if resp.Type != "" && resp.Type != "response" {
				continue
			}
			c, exist := pending[resp.ID]
			if !exist {
				log.Warn("[ripple] unexpected websocket message", "id", resp.ID, "type", resp.Type)
				continue
			}
			delete(pending, resp.ID)
			c.reply(&resp, nil)
		}
	}
}

func (conn *wsConn) readPump(inbound chan<- []byte) {
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error { return conn.ws.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		_, message, err := conn.ws.ReadMessage()
		if err != nil {
			log.Debug("[ripple] websocket read failed", "endpoint", conn.endpoint, "err", err)
			return
		}
		_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		inbound <- message
	}
}

// writePump consumes from the outbound channel and sends them over the websocket.
// Also sends PING messages at the specified interval.
// Returns when outbound channel is closed, or an error is encountered.
func (conn *wsConn) writePump(outbound <-chan *wsCall) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case c, ok := <-outbound:
			if !ok {
				_ = conn.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			b, err := json.Marshal(c)
			if err != nil {
				c.reply(nil, err)
				continue
			}
			_ = conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				log.Debug("[ripple] websocket write failed", "endpoint", conn.endpoint, "err", err)
				c.reply(nil, err)
				return
			}
		case <-ticker.C:
			if err := conn.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug("[ripple] websocket ping failed", "endpoint", conn.endpoint, "err", err)
				return
			}
		}
	}
}
