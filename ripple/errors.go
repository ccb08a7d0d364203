package ripple

import (
	"encoding/json"
	"errors"
	"fmt"
)

// rippled error names
const (
	ErrNameLedgerNotFound = "lgrNotFound"
)

// errors
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrUnsupportedURL   = errors.New("unsupported node url")
)

// Error rippled error response
type Error struct {
	Name    string `json:"error"`
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %d %s", e.Name, e.Code, e.Message)
}

// IsLedgerNotFound is 'lgrNotFound' error
func IsLedgerNotFound(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Name == ErrNameLedgerNotFound
}

type responseStatus struct {
	Status string `json:"status"`
	Error
}

func (s *responseStatus) err() error {
	if s.Status == "error" || s.Name != "" {
		e := s.Error
		return &e
	}
	return nil
}

// decodeResult decodes a rippled result object which carries its own status
func decodeResult(raw json.RawMessage, result interface{}) error {
	var status responseStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return fmt.Errorf("unmarshal result status error: %w", err)
	}
	if err := status.err(); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("unmarshal result error: %w", err)
	}
	return nil
}
