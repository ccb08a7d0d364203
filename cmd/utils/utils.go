// Package utils provides common command line utilities.
package utils

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/params"
	"github.com/urfave/cli/v2"
)

var (
	clientIdentifier string
	gitCommit        string
	gitDate          string
)

// NewApp creates an app with sane defaults.
func NewApp(identifier, gitcommit, gitdate, usage string) *cli.App {
	clientIdentifier = identifier
	gitCommit = gitcommit
	gitDate = gitdate
	params.SetGitInfo(gitCommit, gitDate)
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Version = params.VersionWithCommit(gitCommit, gitDate)
	app.Usage = usage
	return app
}

// SignalContext returns a context canceled on SIGINT or SIGTERM
func SignalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(signalCh)
		select {
		case sig := <-signalCh:
			log.Info("receive signal, exiting", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
