package mongodb

import (
	"fmt"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/shopspring/decimal"
)

// TxStatus transaction status
type TxStatus string

// transaction status
const (
	TxExecuted TxStatus = "executed"
	TxFailed   TxStatus = "failed"
)

// MgoBlock block table item, keyed by block number
type MgoBlock struct {
	Key        int64  `bson:"_id" json:"number"`
	BlockID    string `bson:"blockid" json:"id"`
	PreviousID string `bson:"previousid" json:"previousId"`
	MiningTime int64  `bson:"miningtime" json:"miningTime"`
	Size       int    `bson:"size" json:"size"`
	TxCount    int    `bson:"txcount" json:"transactionsCount"`
	Raw        string `bson:"raw" json:"raw"`
	Timestamp  int64  `bson:"timestamp" json:"timestamp"`
}

// MgoTransaction transaction table item, keyed by transaction id
type MgoTransaction struct {
	Key            string   `bson:"_id" json:"id"`
	BlockNumber    int64    `bson:"blocknumber" json:"blockNumber"`
	BlockID        string   `bson:"blockid" json:"blockId"`
	Number         int      `bson:"number" json:"number"`
	Status         TxStatus `bson:"status" json:"status"`
	ErrorCode      string   `bson:"errorcode,omitempty" json:"errorCode,omitempty"`
	ErrorMessage   string   `bson:"errormessage,omitempty" json:"errorMessage,omitempty"`
	Fee            string   `bson:"fee" json:"fee"`
	Raw            string   `bson:"raw" json:"raw"`
	IsIrreversible bool     `bson:"irreversible" json:"isIrreversible"`
	Timestamp      int64    `bson:"timestamp" json:"timestamp"`
}

// MgoBalanceChange balance change table item, keyed by transaction id and index
type MgoBalanceChange struct {
	Key          string  `bson:"_id" json:"-"`
	TxID         string  `bson:"txid" json:"txId"`
	Index        int     `bson:"index" json:"index"`
	BlockNumber  int64   `bson:"blocknumber" json:"blockNumber"`
	TransferID   string  `bson:"transferid" json:"transferId"`
	AssetID      string  `bson:"assetid" json:"assetId"`
	AssetAddress string  `bson:"assetaddress,omitempty" json:"assetAddress,omitempty"`
	Value        string  `bson:"value" json:"value"`
	Address      string  `bson:"address" json:"address"`
	Tag          string  `bson:"tag,omitempty" json:"tag,omitempty"`
	TagType      string  `bson:"tagtype,omitempty" json:"tagType,omitempty"`
	Nonce        *uint32 `bson:"nonce,omitempty" json:"nonce,omitempty"`
}

// MgoIrreversible irreversible marker table item
type MgoIrreversible struct {
	Key       string `bson:"_id" json:"-"`
	Number    int64  `bson:"number" json:"number"`
	BlockID   string `bson:"blockid" json:"id"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}

func balanceChangeKey(txid string, index int) string {
	return fmt.Sprintf("%v:%d", txid, index)
}

func totalFee(fees []blocks.Fee) string {
	total := decimal.Zero
	for _, fee := range fees {
		total = total.Add(fee.Amount)
	}
	return total.String()
}

// ConvertBlockResult converts a found block into table items
func ConvertBlockResult(result *blocks.BlockResult, timestamp int64) (*MgoBlock, []*MgoTransaction, []*MgoBalanceChange, error) {
	if result.NotFound || result.Header == nil {
		return nil, nil, nil, fmt.Errorf("block %v is not found", result.Number)
	}
	block := &MgoBlock{
		Key:        result.Number,
		BlockID:    result.ID,
		PreviousID: result.Header.PreviousID,
		MiningTime: result.Header.MiningTime.Unix(),
		Size:       result.Header.Size,
		TxCount:    result.Header.TransactionsCount,
		Raw:        result.Raw,
		Timestamp:  timestamp,
	}

	txs := make([]*MgoTransaction, 0, len(result.Transactions))
	var changes []*MgoBalanceChange
	for i := range result.Transactions {
		outcome := &result.Transactions[i]
		tx := &MgoTransaction{
			Key:         outcome.Raw.ID,
			BlockNumber: result.Number,
			BlockID:     result.ID,
			Number:      outcome.Raw.Number,
			Raw:         outcome.Raw.Raw,
			Timestamp:   timestamp,
		}
		switch {
		case outcome.Executed != nil:
			tx.Status = TxExecuted
			tx.Fee = totalFee(outcome.Executed.Fees)
			tx.IsIrreversible = outcome.Executed.IsIrreversible
			for j, change := range outcome.Executed.BalanceChanges {
				changes = append(changes, convertBalanceChange(result.Number, tx.Key, j, &change))
			}
		case outcome.Failed != nil:
			tx.Status = TxFailed
			tx.Fee = totalFee(outcome.Failed.Fees)
			tx.ErrorCode = outcome.Failed.ErrorCode.String()
			tx.ErrorMessage = outcome.Failed.ErrorMessage
		default:
			return nil, nil, nil, fmt.Errorf("transaction %v of block %v has no outcome", tx.Key, result.Number)
		}
		txs = append(txs, tx)
	}
	return block, txs, changes, nil
}

func convertBalanceChange(blockNumber int64, txid string, index int, change *blocks.BalanceChange) *MgoBalanceChange {
	item := &MgoBalanceChange{
		Key:          balanceChangeKey(txid, index),
		TxID:         txid,
		Index:        index,
		BlockNumber:  blockNumber,
		TransferID:   change.TransferID,
		AssetID:      change.Asset.ID,
		AssetAddress: change.Asset.Address,
		Value:        change.Value.String(),
		Address:      change.Address,
		Tag:          change.Tag,
		Nonce:        change.Nonce,
	}
	if change.TagType != nil {
		item.TagType = string(*change.TagType)
	}
	return item
}
