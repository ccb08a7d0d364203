package ripple

import (
	"context"
	"encoding/json"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/rpc/client"
)

const defaultRPCTimeout = 60 // seconds

// HTTPNode rippled json rpc node
type HTTPNode struct {
	url      string
	username string
	password string
	timeout  int
}

// NewHTTPNode new http node. Empty username and password disable basic auth.
func NewHTTPNode(url, username, password string, timeout int) *HTTPNode {
	if timeout <= 0 {
		timeout = defaultRPCTimeout
	}
	return &HTTPNode{
		url:      url,
		username: username,
		password: password,
		timeout:  timeout,
	}
}

// BinaryLedger get binary ledger with expanded transactions
func (n *HTTPNode) BinaryLedger(ctx context.Context, seq uint32) (*BinaryLedgerResult, error) {
	var result BinaryLedgerResult
	err := n.call(ctx, CommandLedger, NewBinaryLedgerRequest(seq), &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ServerState get server state
func (n *HTTPNode) ServerState(ctx context.Context) (*ServerStateResult, error) {
	var result ServerStateResult
	err := n.call(ctx, CommandServerState, struct{}{}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Close implements io.Closer
func (n *HTTPNode) Close() error {
	return nil
}

func (n *HTTPNode) call(ctx context.Context, method string, params, result interface{}) error {
	req := client.NewRequest(method, params)
	req.Timeout = n.timeout
	req.SetBasicAuth(n.username, n.password)

	var raw json.RawMessage
	if err := client.RPCPostRequest(ctx, n.url, req, &raw); err != nil {
		log.Trace("[ripple] call node failed", "method", method, "err", err)
		return err
	}
	return decodeResult(raw, result)
}
