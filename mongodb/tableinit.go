package mongodb

import (
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	tbBlocks         string = "Blocks"
	tbTransactions   string = "Transactions"
	tbBalanceChanges string = "BalanceChanges"
	tbIrreversible   string = "Irreversible"

	keyOfLatestIrreversible string = "latest"
)

var (
	database *mongo.Database

	collBlock         *mongo.Collection
	collTransaction   *mongo.Collection
	collBalanceChange *mongo.Collection
	collIrreversible  *mongo.Collection
)

func initCollections() {
	database = client.Database(databaseName)

	initCollection(tbBlocks, &collBlock, "blockid")
	initCollection(tbTransactions, &collTransaction, "blocknumber", "number")
	initCollection(tbBalanceChanges, &collBalanceChange, "txid")
	initCollection(tbIrreversible, &collIrreversible)

	createOneIndex(collBalanceChange, "address", "blocknumber")
}

func initCollection(table string, collection **mongo.Collection, indexKey ...string) {
	*collection = database.Collection(table)
	if len(indexKey) != 0 {
		createOneIndex(*collection, indexKey...)
	}
}

func createOneIndex(coll *mongo.Collection, indexes ...string) {
	keys := make(bson.D, len(indexes))
	for i, index := range indexes {
		keys[i] = bson.E{Key: index, Value: 1}
	}
	model := mongo.IndexModel{Keys: keys}
	_, err := coll.Indexes().CreateOne(clientCtx, model)
	if err != nil {
		log.Error("[mongodb] create indexes failed", "collection", coll.Name(), "indexes", indexes, "err", err)
	}
}
