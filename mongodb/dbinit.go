// Package mongodb stores read blocks, transactions, balance changes and the
// irreversible marker in mongodb.
package mongodb

import (
	"context"
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

var (
	clientCtx = context.Background()

	client       *mongo.Client
	databaseName string
)

// HasClient has client connected
func HasClient() bool {
	return client != nil
}

// MongoServerInit connect mongodb and init collections
func MongoServerInit(appName string, hosts []string, dbName, user, pass string) error {
	clientOpts := &options.ClientOptions{
		AppName: &appName,
		Hosts:   hosts,
	}
	if user != "" || pass != "" {
		clientOpts.Auth = &options.Credential{
			AuthSource: dbName,
			Username:   user,
			Password:   pass,
		}
	}
	log.Info("[mongodb] connect database start.", "hosts", hosts, "dbName", dbName)
	if err := connect(clientOpts); err != nil {
		log.Error("[mongodb] connect database failed", "hosts", hosts, "dbName", dbName, "err", err)
		return err
	}
	databaseName = dbName
	initCollections()
	log.Info("[mongodb] connect database finished.", "dbName", dbName)
	return nil
}

func connect(opts *options.ClientOptions) (err error) {
	ctx, cancel := context.WithTimeout(clientCtx, connectTimeout)
	defer cancel()

	client, err = mongo.Connect(ctx, opts)
	if err != nil {
		return err
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(clientCtx)
		client = nil
		return err
	}
	return nil
}

// Close disconnect mongodb
func Close() error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(clientCtx, connectTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}
