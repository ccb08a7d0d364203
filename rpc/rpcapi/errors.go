package rpcapi

import (
	"errors"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	rpcjson "github.com/gorilla/rpc/v2/json2"
)

// rpc error codes
const (
	ErrCodeInvalidParams    rpcjson.ErrorCode = -32602
	ErrCodeIntegration      rpcjson.ErrorCode = -32010
	ErrCodeRetryRequired    rpcjson.ErrorCode = -32011
	ErrCodeUnknownDuplicate rpcjson.ErrorCode = -32012
	ErrCodeScanDisabled     rpcjson.ErrorCode = -32013
)

// ErrScanDisabled scan worker is not running
var ErrScanDisabled = &rpcjson.Error{Code: ErrCodeScanDisabled, Message: "blocks scan is disabled"}

func newRPCError(err error) error {
	code := rpcjson.E_SERVER
	switch {
	case blocks.IsValidationError(err):
		code = ErrCodeInvalidParams
	case blocks.IsRetryRequired(err):
		code = ErrCodeRetryRequired
	case errors.Is(err, blocks.ErrUnknownDuplicate):
		code = ErrCodeUnknownDuplicate
	case blocks.IsIntegrationError(err):
		code = ErrCodeIntegration
	}
	return &rpcjson.Error{Code: code, Message: err.Error()}
}
