package ripple

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Dial connects to the node at 'nodeURL', choosing the transport by url scheme
// (http/https for json rpc, ws/wss for websocket).
func Dial(ctx context.Context, nodeURL, username, password string, timeout int) (Connection, error) {
	u, err := url.Parse(nodeURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPNode(nodeURL, username, password, timeout), nil
	case "ws", "wss":
		node, err := DialWebsocket(ctx, nodeURL, username, password)
		if err != nil {
			return nil, err
		}
		return node, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURL, nodeURL)
	}
}
