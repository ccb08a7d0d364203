package blocks

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple/decoder"
)

// Decoder binary ledger decoder
type Decoder interface {
	DecodeHeader(ledgerData []byte) (*decoder.Header, error)
	DecodeTransaction(txBlob, meta []byte) (*decoder.Transaction, error)
}

// Reader reads ledgers from node and normalizes them.
// It keeps no state between calls and is safe for concurrent use.
type Reader struct {
	node    ripple.Node
	decoder Decoder
	ids     *IdentityResolver
}

// NewReader new reader
func NewReader(node ripple.Node, dec Decoder, ids *IdentityResolver) *Reader {
	return &Reader{
		node:    node,
		decoder: dec,
		ids:     ids,
	}
}

// ReadBlock reads block 'number'.
// A missing or not yet closed ledger is reported by BlockResult.NotFound, not as error.
func (r *Reader) ReadBlock(ctx context.Context, number BlockNumber) (*BlockResult, error) {
	if number <= 0 || number > math.MaxUint32 {
		return nil, &ValidationError{Field: "blockNumber", Err: ErrInvalidBlockNumber}
	}

	ledger, err := r.node.BinaryLedger(ctx, uint32(number))
	if err != nil {
		if ripple.IsLedgerNotFound(err) {
			return notFoundBlock(number), nil
		}
		return nil, integrationError("get ledger", err)
	}
	if !ledger.Ledger.Closed {
		return notFoundBlock(number), nil
	}

	ledgerData, err := hex.DecodeString(ledger.Ledger.LedgerData)
	if err != nil {
		return nil, integrationError("decode ledger data", err)
	}
	header, err := r.decoder.DecodeHeader(ledgerData)
	if err != nil {
		return nil, integrationError("decode ledger header", err)
	}
	if header.CloseTime == nil {
		return nil, integrationError("decode ledger header", fmt.Errorf("%w. block %v", ErrMissingCloseTime, number))
	}

	blockID := ledger.LedgerHash
	result := &BlockResult{
		Number: number,
		ID:     blockID,
		Raw:    base64.StdEncoding.EncodeToString(ledgerData),
		Header: &BlockHeader{
			Number:            number,
			ID:                blockID,
			MiningTime:        decoder.RippleEpochToTime(*header.CloseTime),
			Size:              len(ledgerData),
			TransactionsCount: len(ledger.Ledger.Transactions),
			PreviousID:        header.ParentHash,
		},
		Transactions: make([]TransactionOutcome, 0, len(ledger.Ledger.Transactions)),
	}

	irreversible := ledger.IsValidated()
	for i := range ledger.Ledger.Transactions {
		outcome, err := r.readTransaction(i+1, blockID, &ledger.Ledger.Transactions[i], irreversible)
		if err != nil {
			return nil, err
		}
		result.Transactions = append(result.Transactions, *outcome)
	}
	return result, nil
}

func (r *Reader) readTransaction(number int, blockID string, binTx *ripple.BinaryTransaction, irreversible bool) (*TransactionOutcome, error) {
	txBlob, err := hex.DecodeString(binTx.TxBlob)
	if err != nil {
		return nil, integrationError("decode transaction blob", fmt.Errorf("transaction number %v: %w", number, err))
	}
	meta, err := hex.DecodeString(binTx.Meta)
	if err != nil {
		return nil, integrationError("decode transaction metadata", fmt.Errorf("transaction number %v: %w", number, err))
	}
	tx, err := r.decoder.DecodeTransaction(txBlob, meta)
	if err != nil {
		return nil, integrationError("decode transaction", fmt.Errorf("transaction number %v: %w", number, err))
	}
	id, err := r.ids.Resolve(tx.Hash, blockID)
	if err != nil {
		return nil, integrationError("resolve transaction id", err)
	}
	fees, err := nativeFees(tx.FeeDrops)
	if err != nil {
		return nil, integrationError("parse transaction fee", fmt.Errorf("transaction %v: %w", id, err))
	}

	outcome := &TransactionOutcome{
		Raw: RawTransaction{
			Number: number,
			ID:     id,
			Raw:    base64.StdEncoding.EncodeToString(txBlob),
		},
	}
	class := ClassifyResult(tx.Result)
	if class == ResultSuccess {
		changes, err := ExtractBalanceChanges(tx)
		if err != nil {
			return nil, integrationError("extract balance changes", fmt.Errorf("transaction %v: %w", id, err))
		}
		outcome.Executed = &ExecutedTransaction{
			Number:         number,
			ID:             id,
			BalanceChanges: changes,
			Fees:           fees,
			IsIrreversible: irreversible,
		}
	} else {
		outcome.Failed = &FailedTransaction{
			Number:       number,
			ID:           id,
			ErrorCode:    class,
			ErrorMessage: tx.Result,
			Fees:         fees,
		}
	}
	return outcome, nil
}

func notFoundBlock(number BlockNumber) *BlockResult {
	return &BlockResult{
		Number:   number,
		NotFound: true,
	}
}
