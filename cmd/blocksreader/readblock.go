package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/cmd/utils"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/common"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/params"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple/decoder"
	"github.com/urfave/cli/v2"
)

var (
	readBlockCommand = &cli.Command{
		Action:    readBlock,
		Name:      "readblock",
		Usage:     "read and print a normalized block",
		ArgsUsage: "<blockNumber>",
		Description: `
read block by number from the node and print it in json format.
the node is specified by '--node' or the config file.
`,
		Flags: []cli.Flag{
			utils.ConfigFileFlag,
			utils.NodeURLFlag,
			utils.VerbosityFlag,
		},
	}

	irreversibleCommand = &cli.Command{
		Action:    irreversible,
		Name:      "irreversible",
		Usage:     "print the latest irreversible block",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			utils.ConfigFileFlag,
			utils.NodeURLFlag,
			utils.VerbosityFlag,
		},
	}
)

func dialNode(ctx *cli.Context) (ripple.Connection, error) {
	nodeURL := utils.GetNodeURL(ctx)
	if nodeURL != "" {
		return ripple.Dial(ctx.Context, nodeURL, "", "", 0)
	}
	configFile := utils.GetConfigFilePath(ctx)
	if configFile == "" {
		return nil, errors.New("no node specified, use '--node' or '--config'")
	}
	config, err := params.DecodeConfigFile(configFile)
	if err != nil {
		return nil, err
	}
	params.SetConfig(config)
	nodeConfig := config.Node
	if nodeConfig == nil {
		return nil, errors.New("config file has no 'Node' section")
	}
	return ripple.Dial(ctx.Context, nodeConfig.NodeURL, nodeConfig.NodeRPCUsername, nodeConfig.NodeRPCPassword, nodeConfig.RPCTimeout)
}

func readBlock(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() != 1 {
		return fmt.Errorf("wrong number of arguments, want 1 but have %v", ctx.NArg())
	}
	number, err := common.GetInt64FromStr(ctx.Args().First())
	if err != nil {
		return err
	}
	node, err := dialNode(ctx)
	if err != nil {
		return err
	}
	defer node.Close()

	reader := blocks.NewReader(node, decoder.New(), blocks.NewDefaultIdentityResolver())
	result, err := reader.ReadBlock(ctx.Context, number)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func irreversible(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	node, err := dialNode(ctx)
	if err != nil {
		return err
	}
	defer node.Close()

	marker, err := blocks.NewIrreversibleTracker(node).Latest(ctx.Context)
	if err != nil {
		return err
	}
	return printJSON(marker)
}

func printJSON(v interface{}) error {
	bs, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(bs))
	return nil
}
