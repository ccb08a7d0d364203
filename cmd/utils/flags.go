package utils

import (
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/common"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
	"github.com/urfave/cli/v2"
)

var (
	// ConfigFileFlag --config
	ConfigFileFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Specify config file",
	}
	// DataDirFlag --datadir
	DataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory of the scan cursor database, overwrites config file",
	}
	// NodeURLFlag --node
	NodeURLFlag = &cli.StringFlag{
		Name:  "node",
		Usage: "Ripple node url (http, https, ws or wss), overwrites config file",
	}
	// LogFileFlag --log
	LogFileFlag = &cli.StringFlag{
		Name:  "log",
		Usage: "Specify log file, support rotate",
	}
	// LogRotationFlag --rotate
	LogRotationFlag = &cli.Uint64Flag{
		Name:  "rotate",
		Usage: "log rotation time (unit hour)",
		Value: 24,
	}
	// LogMaxAgeFlag --maxage
	LogMaxAgeFlag = &cli.Uint64Flag{
		Name:  "maxage",
		Usage: "log max age (unit hour)",
		Value: 720,
	}
	// VerbosityFlag --verbosity
	VerbosityFlag = &cli.Uint64Flag{
		Name:    "verbosity",
		Aliases: []string{"v"},
		Usage:   "log verbosity (0:panic, 1:fatal, 2:error, 3:warn, 4:info, 5:debug, 6:trace)",
		Value:   4,
	}
	// JSONFormatFlag --json
	JSONFormatFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "output log in json format",
	}
	// ColorFormatFlag --color
	ColorFormatFlag = &cli.BoolFlag{
		Name:  "color",
		Usage: "output log in color text format",
		Value: true,
	}
)

// SetLogger set log level, format and file from command flags
func SetLogger(ctx *cli.Context) {
	logLevel := ctx.Uint64(VerbosityFlag.Name)
	jsonFormat := ctx.Bool(JSONFormatFlag.Name)
	colorFormat := ctx.Bool(ColorFormatFlag.Name)
	log.SetLogger(uint32(logLevel), jsonFormat, colorFormat)

	logFile := ctx.String(LogFileFlag.Name)
	if logFile != "" {
		logRotation := ctx.Uint64(LogRotationFlag.Name)
		logMaxAge := ctx.Uint64(LogMaxAgeFlag.Name)
		if err := log.SetLogFile(logFile, logRotation, logMaxAge); err != nil {
			log.Fatal("set log file failed", "logFile", logFile, "err", err)
		}
	}
}

// GetConfigFilePath specified by `-c|--config`
func GetConfigFilePath(ctx *cli.Context) string {
	configFile := ctx.String(ConfigFileFlag.Name)
	if configFile == "" {
		return ""
	}
	return common.AbsPath("", configFile)
}

// GetDataDir specified by `--datadir`
func GetDataDir(ctx *cli.Context) string {
	return ctx.String(DataDirFlag.Name)
}

// GetNodeURL specified by `--node`
func GetNodeURL(ctx *cli.Context) string {
	return ctx.String(NodeURLFlag.Name)
}
