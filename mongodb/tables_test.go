package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	rpcjson "github.com/gorilla/rpc/v2/json2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func testBlockResult() *blocks.BlockResult {
	tagType := blocks.TagTypeNumber
	nonce := uint32(125)
	fee := []blocks.Fee{{Asset: blocks.NativeAsset(), Amount: decimal.RequireFromString("0.000012")}}
	return &blocks.BlockResult{
		Number: 45487825,
		ID:     "0C3261AB65F318BC1727F5EC1EE768EA08E11657C328D872C387FAF0CAF3870D",
		Raw:    "ArYW0Q==",
		Header: &blocks.BlockHeader{
			Number:            45487825,
			ID:                "0C3261AB65F318BC1727F5EC1EE768EA08E11657C328D872C387FAF0CAF3870D",
			MiningTime:        time.Unix(1551443440, 0).UTC(),
			Size:              118,
			TransactionsCount: 2,
			PreviousID:        "2444528DC116BCED649E7BC5274D0486893D4E34A1E1B401BB2BA4EC1D03FC45",
		},
		Transactions: []blocks.TransactionOutcome{
			{
				Raw: blocks.RawTransaction{Number: 1, ID: "AA01", Raw: "EgAA"},
				Executed: &blocks.ExecutedTransaction{
					Number: 1,
					ID:     "AA01",
					BalanceChanges: []blocks.BalanceChange{
						{
							TransferID: "0",
							Asset:      blocks.Asset{ID: "CNY", Address: "rIssuer"},
							Value:      decimal.NewFromInt(-47503),
							Address:    "rSender",
							Nonce:      &nonce,
						},
						{
							TransferID: "0",
							Asset:      blocks.Asset{ID: "CNY", Address: "rIssuer"},
							Value:      decimal.NewFromInt(47503),
							Address:    "rReceiver",
							Tag:        "7",
							TagType:    &tagType,
						},
					},
					Fees:           fee,
					IsIrreversible: true,
				},
			},
			{
				Raw: blocks.RawTransaction{Number: 2, ID: "AA02", Raw: "EgAB"},
				Failed: &blocks.FailedTransaction{
					Number:       2,
					ID:           "AA02",
					ErrorCode:    blocks.ResultInsufficientBalance,
					ErrorMessage: "tecUNFUNDED_PAYMENT",
					Fees:         fee,
				},
			},
		},
	}
}

func TestConvertBlockResult(t *testing.T) {
	block, txs, changes, err := ConvertBlockResult(testBlockResult(), 1600000000)
	require.NoError(t, err)

	assert.Equal(t, &MgoBlock{
		Key:        45487825,
		BlockID:    "0C3261AB65F318BC1727F5EC1EE768EA08E11657C328D872C387FAF0CAF3870D",
		PreviousID: "2444528DC116BCED649E7BC5274D0486893D4E34A1E1B401BB2BA4EC1D03FC45",
		MiningTime: 1551443440,
		Size:       118,
		TxCount:    2,
		Raw:        "ArYW0Q==",
		Timestamp:  1600000000,
	}, block)

	require.Len(t, txs, 2)
	assert.Equal(t, TxExecuted, txs[0].Status)
	assert.Equal(t, "0.000012", txs[0].Fee)
	assert.True(t, txs[0].IsIrreversible)
	assert.Empty(t, txs[0].ErrorCode)
	assert.Equal(t, TxFailed, txs[1].Status)
	assert.Equal(t, "NotEnoughBalance", txs[1].ErrorCode)
	assert.Equal(t, "tecUNFUNDED_PAYMENT", txs[1].ErrorMessage)
	assert.Equal(t, 2, txs[1].Number)
	assert.Equal(t, int64(45487825), txs[1].BlockNumber)

	require.Len(t, changes, 2)
	assert.Equal(t, "AA01:0", changes[0].Key)
	assert.Equal(t, "-47503", changes[0].Value)
	assert.Equal(t, uint32(125), *changes[0].Nonce)
	assert.Empty(t, changes[0].TagType)
	assert.Equal(t, "AA01:1", changes[1].Key)
	assert.Equal(t, 1, changes[1].Index)
	assert.Equal(t, "Number", changes[1].TagType)
	assert.Equal(t, "7", changes[1].Tag)
	assert.Equal(t, "rIssuer", changes[1].AssetAddress)
}

func TestConvertBlockResultNotFound(t *testing.T) {
	_, _, _, err := ConvertBlockResult(&blocks.BlockResult{Number: 1, NotFound: true}, 0)
	assert.Error(t, err)

	result := testBlockResult()
	result.Transactions[1].Failed = nil
	_, _, _, err = ConvertBlockResult(result, 0)
	assert.Error(t, err)
}

func TestMgoError(t *testing.T) {
	assert.NoError(t, mgoError(nil))
	assert.Equal(t, ErrItemNotFound, mgoError(mongo.ErrNoDocuments))

	err := mgoError(errors.New("server selection timeout"))
	var rpcErr *rpcjson.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, rpcjson.ErrorCode(-32001), rpcErr.Code)
}

func TestNotConnected(t *testing.T) {
	require.False(t, HasClient())
	assert.Equal(t, ErrNotConnected, SaveBlock(testBlockResult()))
	_, err := FindBlock(1)
	assert.Equal(t, ErrNotConnected, err)
	_, err = FindTransaction("AA01")
	assert.Equal(t, ErrNotConnected, err)
	_, err = FindIrreversible()
	assert.Equal(t, ErrNotConnected, err)
	assert.Equal(t, ErrNotConnected, UpdateIrreversible(&blocks.IrreversibleMarker{Number: 1, ID: "AA"}))
	assert.NoError(t, Close())
}
