package mongodb

import (
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SaveBlock upserts block with its transactions and balance changes.
// The block item is written last, so a stored block means stored transactions.
func SaveBlock(result *blocks.BlockResult) error {
	if !HasClient() {
		return ErrNotConnected
	}
	block, txs, changes, err := ConvertBlockResult(result, time.Now().Unix())
	if err != nil {
		return err
	}

	if len(changes) > 0 {
		models := make([]mongo.WriteModel, len(changes))
		for i, change := range changes {
			models[i] = replaceModel(change.Key, change)
		}
		if err = bulkWrite(collBalanceChange, models); err != nil {
			return err
		}
	}
	if len(txs) > 0 {
		models := make([]mongo.WriteModel, len(txs))
		for i, tx := range txs {
			models[i] = replaceModel(tx.Key, tx)
		}
		if err = bulkWrite(collTransaction, models); err != nil {
			return err
		}
	}
	opts := options.Replace().SetUpsert(true)
	_, err = collBlock.ReplaceOne(clientCtx, bson.M{"_id": block.Key}, block, opts)
	if err == nil {
		log.Debug("mongodb save block success", "number", block.Key, "id", block.BlockID, "txs", len(txs), "changes", len(changes))
	} else {
		log.Debug("mongodb save block failed", "number", block.Key, "id", block.BlockID, "err", err)
	}
	return mgoError(err)
}

func replaceModel(key, doc interface{}) mongo.WriteModel {
	return mongo.NewReplaceOneModel().
		SetFilter(bson.M{"_id": key}).
		SetReplacement(doc).
		SetUpsert(true)
}

func bulkWrite(coll *mongo.Collection, models []mongo.WriteModel) error {
	_, err := coll.BulkWrite(clientCtx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		log.Debug("mongodb bulk write failed", "collection", coll.Name(), "count", len(models), "err", err)
	}
	return mgoError(err)
}

// FindBlock find block by number
func FindBlock(number int64) (*MgoBlock, error) {
	if !HasClient() {
		return nil, ErrNotConnected
	}
	var result MgoBlock
	err := collBlock.FindOne(clientCtx, bson.M{"_id": number}).Decode(&result)
	if err != nil {
		return nil, mgoError(err)
	}
	return &result, nil
}

// FindLatestBlock find the stored block with the biggest number
func FindLatestBlock() (*MgoBlock, error) {
	if !HasClient() {
		return nil, ErrNotConnected
	}
	var result MgoBlock
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	err := collBlock.FindOne(clientCtx, bson.M{}, opts).Decode(&result)
	if err != nil {
		return nil, mgoError(err)
	}
	return &result, nil
}

// FindTransaction find transaction by id
func FindTransaction(txid string) (*MgoTransaction, error) {
	if !HasClient() {
		return nil, ErrNotConnected
	}
	var result MgoTransaction
	err := collTransaction.FindOne(clientCtx, bson.M{"_id": txid}).Decode(&result)
	if err != nil {
		return nil, mgoError(err)
	}
	return &result, nil
}

// FindBalanceChanges find balance changes of transaction in original order
func FindBalanceChanges(txid string) ([]*MgoBalanceChange, error) {
	if !HasClient() {
		return nil, ErrNotConnected
	}
	opts := options.Find().SetSort(bson.D{{Key: "index", Value: 1}})
	cur, err := collBalanceChange.Find(clientCtx, bson.M{"txid": txid}, opts)
	if err != nil {
		return nil, mgoError(err)
	}
	result := make([]*MgoBalanceChange, 0)
	if err = cur.All(clientCtx, &result); err != nil {
		return nil, mgoError(err)
	}
	return result, nil
}

// UpdateIrreversible update latest irreversible marker
func UpdateIrreversible(marker *blocks.IrreversibleMarker) error {
	if !HasClient() {
		return ErrNotConnected
	}
	item := &MgoIrreversible{
		Key:       keyOfLatestIrreversible,
		Number:    marker.Number,
		BlockID:   marker.ID,
		Timestamp: time.Now().Unix(),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := collIrreversible.ReplaceOne(clientCtx, bson.M{"_id": item.Key}, item, opts)
	if err == nil {
		log.Debug("mongodb update irreversible success", "number", marker.Number, "id", marker.ID)
	}
	return mgoError(err)
}

// FindIrreversible find latest irreversible marker
func FindIrreversible() (*MgoIrreversible, error) {
	if !HasClient() {
		return nil, ErrNotConnected
	}
	var result MgoIrreversible
	err := collIrreversible.FindOne(clientCtx, bson.M{"_id": keyOfLatestIrreversible}).Decode(&result)
	if err != nil {
		return nil, mgoError(err)
	}
	return &result, nil
}
