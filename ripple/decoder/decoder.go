// Package decoder decodes ripple binary ledger headers and transactions.
package decoder

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rubblelabs/ripple/data"
)

// RippleEpochOffset seconds from unix epoch to ripple epoch (2000-01-01T00:00:00Z)
const RippleEpochOffset = 946684800

// errors
var (
	ErrEmptyLedgerData = errors.New("empty ledger data")
	ErrEmptyTxBlob     = errors.New("empty transaction blob")
	ErrEmptyMetadata   = errors.New("empty transaction metadata")
)

var transactionIDPrefix = func() []byte {
	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, uint32(data.HP_TRANSACTION_ID))
	return prefix
}()

// Header decoded ledger header
type Header struct {
	Sequence        uint32
	TotalCoins      uint64
	ParentHash      string
	TransactionHash string
	AccountHash     string
	ParentCloseTime uint32
	CloseTime       *uint32
	CloseResolution uint8
	CloseFlags      uint8
}

// Amount signed balance change of one currency
type Amount struct {
	Currency     string
	Counterparty string
	Value        string
}

// AccountBalanceChanges balance changes of one address
type AccountBalanceChanges struct {
	Address string
	Amounts []Amount
}

// Transaction decoded transaction with metadata
type Transaction struct {
	Hash             string
	Type             string
	Account          string
	Sequence         uint32
	FeeDrops         string
	Destination      string
	DestinationTag   *uint32
	TransactionIndex uint32
	Result           string
	BalanceChanges   []AccountBalanceChanges
}

// Decoder binary ledger decoder
type Decoder struct{}

// New new decoder
func New() *Decoder {
	return &Decoder{}
}

// DecodeHeader decodes the header part of binary ledger data
func (d *Decoder) DecodeHeader(ledgerData []byte) (*Header, error) {
	return DecodeHeader(ledgerData)
}

// DecodeTransaction decodes a binary transaction and its binary metadata
func (d *Decoder) DecodeTransaction(txBlob, meta []byte) (*Transaction, error) {
	return DecodeTransaction(txBlob, meta)
}

// DecodeHeader decodes the header part of binary ledger data.
// CloseTime is nil if the ledger carries no close time.
func DecodeHeader(ledgerData []byte) (*Header, error) {
	if len(ledgerData) == 0 {
		return nil, ErrEmptyLedgerData
	}
	ledger, err := data.ReadLedger(bytes.NewReader(ledgerData), data.Hash256{})
	if err != nil {
		return nil, fmt.Errorf("read ledger header error: %w", err)
	}
	header := &Header{
		Sequence:        ledger.LedgerSequence,
		TotalCoins:      ledger.TotalXRP,
		ParentHash:      ledger.PreviousLedger.String(),
		TransactionHash: ledger.TransactionHash.String(),
		AccountHash:     ledger.StateHash.String(),
		ParentCloseTime: ledger.ParentCloseTime.Uint32(),
		CloseResolution: ledger.CloseResolution,
		CloseFlags:      ledger.CloseFlags,
	}
	if closeTime := ledger.CloseTime.Uint32(); closeTime != 0 {
		header.CloseTime = &closeTime
	}
	return header, nil
}

// DecodeTransaction decodes a binary transaction and its binary metadata
func DecodeTransaction(txBlob, meta []byte) (*Transaction, error) {
	if len(txBlob) == 0 {
		return nil, ErrEmptyTxBlob
	}
	if len(meta) == 0 {
		return nil, ErrEmptyMetadata
	}
	hash := TransactionHash(txBlob)
	txm, err := data.ReadTransactionAndMetadata(bytes.NewReader(txBlob), bytes.NewReader(meta), hash, 0)
	if err != nil {
		return nil, fmt.Errorf("read transaction %v error: %w", hash, err)
	}
	base := txm.GetBase()
	fee := base.Fee.Rat()
	if !fee.IsInt() || fee.Sign() < 0 {
		return nil, fmt.Errorf("transaction %v has wrong fee %v", hash, base.Fee)
	}
	tx := &Transaction{
		Hash:             hash.String(),
		Type:             txm.GetType(),
		Account:          base.Account.String(),
		Sequence:         base.Sequence,
		FeeDrops:         fee.Num().String(),
		TransactionIndex: txm.MetaData.TransactionIndex,
		Result:           txm.MetaData.TransactionResult.String(),
	}
	tx.Destination, tx.DestinationTag = destination(txm.Transaction)
	tx.BalanceChanges, err = BalanceChanges(&txm.MetaData)
	if err != nil {
		return nil, fmt.Errorf("transaction %v balance changes error: %w", hash, err)
	}
	return tx, nil
}

// destination returns the receiver of the transaction types which have one
func destination(tx data.Transaction) (string, *uint32) {
	switch t := tx.(type) {
	case *data.Payment:
		return t.Destination.String(), t.DestinationTag
	case *data.EscrowCreate:
		return t.Destination.String(), t.DestinationTag
	case *data.PaymentChannelCreate:
		return t.Destination.String(), t.DestinationTag
	case *data.CheckCreate:
		return t.Destination.String(), t.DestinationTag
	}
	return "", nil
}

// TransactionHash SHA-512Half of the transaction id prefix and the binary transaction
func TransactionHash(txBlob []byte) data.Hash256 {
	hasher := sha512.New()
	_, _ = hasher.Write(transactionIDPrefix)
	_, _ = hasher.Write(txBlob)
	var hash data.Hash256
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// RippleEpochToTime converts ripple epoch seconds to UTC time
func RippleEpochToTime(seconds uint32) time.Time {
	return time.Unix(int64(seconds)+RippleEpochOffset, 0).UTC()
}

// IsNativeCurrency is native currency code
func IsNativeCurrency(currency string) bool {
	return strings.EqualFold(currency, "XRP")
}
