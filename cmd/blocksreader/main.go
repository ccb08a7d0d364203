package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/cmd/utils"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/leveldb"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/mongodb"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/params"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/redisdb"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple/decoder"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/rpc/rpcapi"
	rpcserver "github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/rpc/server"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

const (
	defaultDataDir = "blocksreader-data"
	cursorDBName   = "cursor"
	cursorDBCache  = 16 // MiB
	cursorDBFiles  = 16
)

var (
	clientIdentifier = "blocksreader"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the ripple blocks reader command line interface")
)

func initApp() {
	// Initialize the CLI app and start action
	app.Action = blocksreader
	app.HideVersion = true // we have a command to print the version
	app.Commands = []*cli.Command{
		readBlockCommand,
		irreversibleCommand,
		utils.VersionCommand,
	}
	app.Flags = []cli.Flag{
		utils.ConfigFileFlag,
		utils.DataDirFlag,
		utils.LogFileFlag,
		utils.LogRotationFlag,
		utils.LogMaxAgeFlag,
		utils.VerbosityFlag,
		utils.JSONFormatFlag,
		utils.ColorFormatFlag,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func blocksreader(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}
	config := params.LoadConfig(utils.GetConfigFilePath(ctx))
	params.SetDataDir(utils.GetDataDir(ctx))

	sigCtx, cancel := utils.SignalContext()
	defer cancel()

	nodeConfig := config.Node
	node, err := ripple.Dial(sigCtx, nodeConfig.NodeURL, nodeConfig.NodeRPCUsername, nodeConfig.NodeRPCPassword, nodeConfig.RPCTimeout)
	if err != nil {
		return fmt.Errorf("connect to node failed: %w", err)
	}
	defer node.Close()
	log.Info("connect to node success", "url", nodeConfig.NodeURL)

	reader := blocks.NewReader(node, decoder.New(), blocks.NewDefaultIdentityResolver())
	tracker := blocks.NewIrreversibleTracker(node)

	cursorDB, err := openCursorDB()
	if err != nil {
		return err
	}
	defer cursorDB.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	scanConfig := config.Reader
	workerConfig := &worker.Config{
		Reader:               reader,
		Tracker:              tracker,
		Cursor:               cursorDB,
		Markers:              cursorDB,
		StartBlock:           scanConfig.StartBlock,
		ScanInterval:         seconds(scanConfig.ScanInterval),
		IrreversibleInterval: seconds(scanConfig.IrreversibleInterval),
		RetryCount:           scanConfig.RetryCount,
		RetryInterval:        seconds(scanConfig.RetryInterval),
		MaxRetryInterval:     seconds(scanConfig.MaxRetryInterval),
		Registerer:           registry,
	}
	workerConfig.MarkerSavers = append(workerConfig.MarkerSavers, func(ctx context.Context, marker *blocks.IrreversibleMarker) error {
		return cursorDB.SetIrreversible(marker)
	})

	if dbConfig := config.MongoDB; dbConfig != nil {
		err = mongodb.MongoServerInit(clientIdentifier, dbConfig.GetURLs(), dbConfig.DBName, dbConfig.UserName, dbConfig.Password)
		if err != nil {
			return fmt.Errorf("connect to mongodb failed: %w", err)
		}
		defer func() { _ = mongodb.Close() }()
		workerConfig.BlockSavers = append(workerConfig.BlockSavers, mongodb.SaveBlock)
		workerConfig.MarkerSavers = append(workerConfig.MarkerSavers, func(ctx context.Context, marker *blocks.IrreversibleMarker) error {
			return mongodb.UpdateIrreversible(marker)
		})
	} else {
		log.Warn("mongodb is not configured, read blocks are not stored")
	}

	if redisConfig := config.Redis; redisConfig != nil {
		rdb := redisdb.NewClient(redisConfig.Addr, redisConfig.Password, redisConfig.DB, redisConfig.Channel)
		if err = rdb.Ping(sigCtx); err != nil {
			return fmt.Errorf("connect to redis failed: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		log.Info("connect to redis success", "addr", redisConfig.Addr, "channel", rdb.Channel())
		workerConfig.MarkerSavers = append(workerConfig.MarkerSavers, rdb.PublishIrreversible)
	}

	enableScan := !scanConfig.DisableScan
	w := worker.NewWorker(workerConfig)
	var status rpcapi.StatusSource
	if enableScan {
		status = w
	}
	svr := rpcserver.StartAPIServer(rpcapi.NewRPCAPI(reader, tracker, status), registry)

	w.StartWork(sigCtx, enableScan)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err = svr.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown api server failed", "err", err)
	}
	log.Info("blocks reader exited")
	return nil
}

func openCursorDB() (*leveldb.Database, error) {
	dataDir := params.GetDataDir()
	if dataDir == "" {
		params.SetDataDir(defaultDataDir)
		dataDir = params.GetDataDir()
	}
	db, err := leveldb.New(filepath.Join(dataDir, cursorDBName), cursorDBCache, cursorDBFiles, false)
	if err != nil {
		return nil, fmt.Errorf("open cursor database failed: %w", err)
	}
	next, exist, err := db.GetScanCursor()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("open cursor database success", "path", db.Path(), "hasCursor", exist, "next", next)
	return db, nil
}

func seconds(value uint64) time.Duration {
	return time.Duration(value) * time.Second
}
