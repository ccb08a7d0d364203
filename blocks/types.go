// Package blocks normalizes ripple ledgers into block, transaction and
// balance change records, and reports the latest irreversible ledger.
package blocks

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// NativeAssetID asset id of the native currency
	NativeAssetID = "XRP"

	// NativeDecimals canonical decimal precision of the native currency
	NativeDecimals = 6
)

// BlockNumber ledger sequence number
type BlockNumber = int64

// TagType address tag type
type TagType string

// TagTypeNumber numeric destination tag
const TagTypeNumber TagType = "Number"

// Asset currency code and issuer (empty issuer for native asset)
type Asset struct {
	ID      string `json:"id"`
	Address string `json:"address,omitempty"`
}

// NativeAsset returns the native asset
func NativeAsset() Asset {
	return Asset{ID: NativeAssetID}
}

// BalanceChange balance change of one address caused by a transaction
type BalanceChange struct {
	TransferID string          `json:"transferId"`
	Asset      Asset           `json:"asset"`
	Value      decimal.Decimal `json:"value"`
	Address    string          `json:"address"`
	Tag        string          `json:"tag,omitempty"`
	TagType    *TagType        `json:"tagType,omitempty"`
	Nonce      *uint32         `json:"nonce,omitempty"`
}

// Fee transaction fee, always unsigned
type Fee struct {
	Asset  Asset           `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}

// BlockHeader block header
type BlockHeader struct {
	Number            BlockNumber `json:"number"`
	ID                string      `json:"id"`
	MiningTime        time.Time   `json:"miningTime"`
	Size              int         `json:"size"`
	TransactionsCount int         `json:"transactionsCount"`
	PreviousID        string      `json:"previousId"`
}

// RawTransaction raw transaction payload with its canonical id
type RawTransaction struct {
	Number int    `json:"number"`
	ID     string `json:"id"`
	Raw    string `json:"raw"`
}

// ExecutedTransaction successfully applied transaction
type ExecutedTransaction struct {
	Number         int             `json:"number"`
	ID             string          `json:"id"`
	BalanceChanges []BalanceChange `json:"balanceChanges"`
	Fees           []Fee           `json:"fees"`
	IsIrreversible bool            `json:"isIrreversible"`
}

// FailedTransaction transaction included in a ledger with a non success result
type FailedTransaction struct {
	Number       int         `json:"number"`
	ID           string      `json:"id"`
	ErrorCode    ResultClass `json:"errorCode"`
	ErrorMessage string      `json:"errorMessage"`
	Fees         []Fee       `json:"fees"`
}

// TransactionOutcome raw transaction and exactly one of executed or failed
type TransactionOutcome struct {
	Raw      RawTransaction       `json:"raw"`
	Executed *ExecutedTransaction `json:"executed,omitempty"`
	Failed   *FailedTransaction   `json:"failed,omitempty"`
}

// BlockResult result of reading one block
type BlockResult struct {
	Number       BlockNumber          `json:"number"`
	NotFound     bool                 `json:"notFound"`
	ID           string               `json:"id,omitempty"`
	Raw          string               `json:"raw,omitempty"`
	Header       *BlockHeader         `json:"header,omitempty"`
	Transactions []TransactionOutcome `json:"transactions,omitempty"`
}

// IrreversibleMarker latest validated ledger
type IrreversibleMarker struct {
	Number BlockNumber `json:"number"`
	ID     string      `json:"id"`
}
