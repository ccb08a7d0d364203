// Package ripple provides access to rippled nodes over json rpc and websocket.
package ripple

import (
	"context"
	"encoding/json"
	"io"
)

// rippled api commands
const (
	CommandLedger      = "ledger"
	CommandServerState = "server_state"
)

// Node rippled node capabilities used by the blocks reader
type Node interface {
	BinaryLedger(ctx context.Context, seq uint32) (*BinaryLedgerResult, error)
	ServerState(ctx context.Context) (*ServerStateResult, error)
}

// Connection node with an underlying connection to release
type Connection interface {
	Node
	io.Closer
}

// BinaryTransaction hex encoded transaction and metadata
type BinaryTransaction struct {
	TxBlob string `json:"tx_blob"`
	Meta   string `json:"meta"`
}

// BinaryLedger ledger with hex encoded header and transactions
type BinaryLedger struct {
	Closed       bool                `json:"closed"`
	LedgerData   string              `json:"ledger_data"`
	Transactions []BinaryTransaction `json:"transactions"`
}

// BinaryLedgerResult result of 'ledger' command with binary and expand options
type BinaryLedgerResult struct {
	Ledger      BinaryLedger `json:"ledger"`
	LedgerHash  string       `json:"ledger_hash"`
	LedgerIndex json.Number  `json:"ledger_index"`
	Validated   *bool        `json:"validated,omitempty"`
}

// IsValidated ledger is validated, false if absent
func (r *BinaryLedgerResult) IsValidated() bool {
	return r.Validated != nil && *r.Validated
}

// ValidatedLedger latest validated ledger info
type ValidatedLedger struct {
	Seq         uint32 `json:"seq"`
	Hash        string `json:"hash"`
	CloseTime   uint32 `json:"close_time,omitempty"`
	BaseFee     uint64 `json:"base_fee,omitempty"`
	ReserveBase uint64 `json:"reserve_base,omitempty"`
	ReserveInc  uint64 `json:"reserve_inc,omitempty"`
}

// ServerState server state
type ServerState struct {
	BuildVersion    string           `json:"build_version,omitempty"`
	CompleteLedgers string           `json:"complete_ledgers,omitempty"`
	ServerState     string           `json:"server_state"`
	ValidatedLedger *ValidatedLedger `json:"validated_ledger,omitempty"`
}

// ServerStateResult result of 'server_state' command
type ServerStateResult struct {
	State ServerState `json:"state"`
}

// LedgerRequest params of 'ledger' command
type LedgerRequest struct {
	LedgerIndex  uint32 `json:"ledger_index"`
	Binary       bool   `json:"binary"`
	Transactions bool   `json:"transactions"`
	Expand       bool   `json:"expand"`
}

// NewBinaryLedgerRequest request of binary ledger with expanded transactions
func NewBinaryLedgerRequest(seq uint32) *LedgerRequest {
	return &LedgerRequest{
		LedgerIndex:  seq,
		Binary:       true,
		Transactions: true,
		Expand:       true,
	}
}
