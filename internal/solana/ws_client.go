package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// SubscribeTimeout bounds the wait for a subscription confirmation.
	SubscribeTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		PingInterval:     30 * time.Second,
		ReadTimeout:      120 * time.Second,
		WriteTimeout:     10 * time.Second,
		SubscribeTimeout: 30 * time.Second,
	}
}

// WSClientImpl implements WSClient using gorilla/websocket.
//
// Signature subscriptions are one-shot on the node side: a single
// notification fires once the signature reaches the requested commitment and
// the node cancels the subscription itself. A missed notification cannot be
// replayed, so this client does not reconnect; when the connection drops all
// open subscription channels are closed and callers fall back to their own
// timeout.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subsMu guards both maps. The delivery channel moves from pending
	// (keyed by request ID) to subs (keyed by subscription ID) inside the
	// confirmation handler, under this lock, so a notification arriving
	// right after the confirmation always finds it registered.
	subsMu  sync.Mutex
	subs    map[int64]*signatureSub
	pending map[uint64]*signatureSub

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup
}

// signatureSub is one one-shot subscription. confirm is buffered and
// receives the server's subscription ID; delivery is handed to the caller.
type signatureSub struct {
	signature string
	confirm   chan int64
	delivery  chan SignatureNotification
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClientImpl{
		endpoint: endpoint,
		config:   cfg,
		subs:     make(map[int64]*signatureSub),
		pending:  make(map[uint64]*signatureSub),
		done:     make(chan struct{}),
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	c.conn = conn

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Compile-time interface check.
var _ WSClient = (*WSClientImpl)(nil)

// SubscribeSignature subscribes to the confirmation of one signature.
func (c *WSClientImpl) SubscribeSignature(ctx context.Context, signature string, commitment Commitment) (<-chan SignatureNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	reqID := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]string{"commitment": string(commitment)},
		},
	}

	sub := &signatureSub{
		signature: signature,
		confirm:   make(chan int64, 1),
		delivery:  make(chan SignatureNotification, 1),
	}
	c.subsMu.Lock()
	c.pending[reqID] = sub
	c.subsMu.Unlock()

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		c.abandonPending(reqID)
		return nil, fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()

	if err != nil {
		c.abandonPending(reqID)
		return nil, fmt.Errorf("write subscribe: %w", err)
	}

	select {
	case _, ok := <-sub.confirm:
		if !ok {
			return nil, fmt.Errorf("connection closed before subscription confirmed")
		}
		return sub.delivery, nil
	case <-time.After(c.config.SubscribeTimeout):
		if c.abandonPending(reqID) {
			return nil, fmt.Errorf("subscription timeout after %v", c.config.SubscribeTimeout)
		}
	case <-ctx.Done():
		if c.abandonPending(reqID) {
			return nil, ctx.Err()
		}
	case <-c.done:
		return nil, fmt.Errorf("client closed")
	}

	// The confirmation raced the deadline; the subscription is live and
	// confirm is already resolved under the lock.
	if _, ok := <-sub.confirm; ok {
		return sub.delivery, nil
	}
	return nil, fmt.Errorf("connection closed before subscription confirmed")
}

// abandonPending drops a still-unconfirmed subscription and reports whether
// it was in fact still pending.
func (c *WSClientImpl) abandonPending(reqID uint64) bool {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if _, ok := c.pending[reqID]; !ok {
		return false
	}
	delete(c.pending, reqID)
	return true
}

// Close closes the WebSocket connection.
func (c *WSClientImpl) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.closeAllSubs()

	c.wg.Wait()
	return nil
}

// closeAllSubs closes every live subscription channel and unblocks callers
// still waiting for a confirmation.
func (c *WSClientImpl) closeAllSubs() {
	c.subsMu.Lock()
	for id, sub := range c.subs {
		close(sub.delivery)
		delete(c.subs, id)
	}
	for id, sub := range c.pending {
		close(sub.confirm)
		delete(c.pending, id)
	}
	c.subsMu.Unlock()
}

// readLoop reads messages from WebSocket and dispatches to subscribers.
func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() {
				// Connection dropped; pending confirmations cannot arrive.
				c.closeAllSubs()
			}
			return
		}

		c.handleMessage(message)
	}
}

// handleMessage processes an incoming WebSocket message.
func (c *WSClientImpl) handleMessage(message []byte) {
	// Subscription confirmation first
	var resp wsSubscribeResponse
	if err := json.Unmarshal(message, &resp); err == nil && resp.Result > 0 {
		c.handleSubscribeResponse(&resp)
		return
	}

	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err == nil && notif.Method == "signatureNotification" {
		c.handleSignatureNotification(&notif)
		return
	}
}

// handleSubscribeResponse registers the subscription under its server-side
// ID before releasing the waiting caller. Both steps happen under subsMu, so
// a notification processed next on this goroutine cannot miss it and a
// concurrent Close cannot leave the delivery channel unclosed.
func (c *WSClientImpl) handleSubscribeResponse(resp *wsSubscribeResponse) {
	c.subsMu.Lock()
	sub, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
		c.subs[resp.Result] = sub
		sub.confirm <- resp.Result // capacity 1, never blocks
	}
	c.subsMu.Unlock()
}

// handleSignatureNotification delivers the one-shot notification and
// retires the subscription.
func (c *WSClientImpl) handleSignatureNotification(notif *wsNotification) {
	if notif.Params == nil {
		return
	}

	subID := notif.Params.Subscription

	c.subsMu.Lock()
	sub, ok := c.subs[subID]
	if ok {
		delete(c.subs, subID)
	}
	c.subsMu.Unlock()

	if !ok {
		return
	}

	n := SignatureNotification{
		Signature: sub.signature,
		Err:       notif.Params.Result.Value.Err,
	}
	if notif.Params.Result.Context != nil {
		n.Slot = notif.Params.Result.Context.Slot
	}

	sub.delivery <- n // capacity 1, never blocks
	close(sub.delivery)
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  int64  `json:"result"`
}

type wsNotification struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  *wsParams `json:"params"`
}

type wsParams struct {
	Subscription int64    `json:"subscription"`
	Result       wsResult `json:"result"`
}

type wsResult struct {
	Context *wsContext `json:"context"`
	Value   wsValue    `json:"value"`
}

type wsContext struct {
	Slot int64 `json:"slot"`
}

type wsValue struct {
	Err interface{} `json:"err"`
}
