package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/joho/godotenv"
	"github.com/mnehpets/oneclient/provider"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var (
	nodeFlag = &cli.StringFlag{
		Name:    "node",
		Usage:   "JSON-RPC node URL",
		Value:   DefaultNode,
		EnvVars: []string{"ETH_RPC_URL"},
	}
	jwtFlag = &cli.StringFlag{
		Name:    "jwt-secret",
		Usage:   "hex encoded HS256 secret for authenticated endpoints",
		EnvVars: []string{"ETH_RPC_JWT_SECRET"},
	}
	chunkFlag = &cli.IntFlag{
		Name:  "chunk-size",
		Usage: "maximum calls per batch request",
		Value: 100,
	}
	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "per request timeout, 0 for none",
	}
	blockFlag = &cli.StringFlag{
		Name:  "block",
		Usage: "block number or tag",
		Value: "latest",
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log every request",
	}
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	app := &cli.App{
		Name:  "ethereum-rpc",
		Usage: "query an Ethereum node over JSON-RPC",
		Flags: []cli.Flag{nodeFlag, jwtFlag, chunkFlag, timeoutFlag, verboseFlag},
		Commands: []*cli.Command{
			{
				Name:  "chain-id",
				Usage: "print the chain id",
				Action: func(ctx *cli.Context) error {
					id, err := client(ctx).ChainID(ctx.Context)
					if err != nil {
						return err
					}
					fmt.Println(id)
					return nil
				},
			},
			{
				Name:  "block-number",
				Usage: "print the latest block number",
				Action: func(ctx *cli.Context) error {
					n, err := client(ctx).BlockNumber(ctx.Context)
					if err != nil {
						return err
					}
					fmt.Println(n)
					return nil
				},
			},
			{
				Name:  "gas-price",
				Usage: "print the gas price in wei",
				Action: func(ctx *cli.Context) error {
					price, err := client(ctx).GasPrice(ctx.Context)
					if err != nil {
						return err
					}
					fmt.Println(price)
					return nil
				},
			},
			{
				Name:      "balance",
				Usage:     "print the balance in wei of each address",
				ArgsUsage: "ADDRESS...",
				Flags:     []cli.Flag{blockFlag},
				Action: func(ctx *cli.Context) error {
					addrs, err := addresses(ctx.Args().Slice())
					if err != nil {
						return err
					}
					balances, err := client(ctx).Balances(ctx.Context, addrs, ctx.String(blockFlag.Name))
					if err != nil {
						return err
					}
					for i, b := range balances {
						fmt.Printf("%s %s\n", addrs[i].Hex(), b)
					}
					return nil
				},
			},
			{
				Name:      "nonce",
				Usage:     "print the transaction count of an address",
				ArgsUsage: "ADDRESS",
				Flags:     []cli.Flag{blockFlag},
				Action: func(ctx *cli.Context) error {
					addrs, err := addresses(ctx.Args().Slice())
					if err != nil {
						return err
					}
					if len(addrs) != 1 {
						return fmt.Errorf("expected one address, got %d", len(addrs))
					}
					n, err := client(ctx).Nonce(ctx.Context, addrs[0], ctx.String(blockFlag.Name))
					if err != nil {
						return err
					}
					fmt.Println(n)
					return nil
				},
			},
			{
				Name:      "send",
				Usage:     "broadcast a signed raw transaction",
				ArgsUsage: "HEX",
				Action: func(ctx *cli.Context) error {
					tx, err := hexutil.Decode(ctx.Args().First())
					if err != nil {
						return err
					}
					hash, err := client(ctx).SendRawTransaction(ctx.Context, tx)
					if err != nil {
						return err
					}
					fmt.Println(hash.Hex())
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func client(ctx *cli.Context) *Client {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: `2006-01-02 15:04:05`}).
		With().Timestamp().Logger()
	if !ctx.Bool(verboseFlag.Name) {
		log = log.Level(zerolog.WarnLevel)
	}
	transport := provider.Chain(http.DefaultClient,
		provider.UserAgent("oneclient-ethereum-rpc"),
		provider.Logging(log),
	)
	return NewClient(transport, Options{
		Node:      ctx.String(nodeFlag.Name),
		JWTSecret: common.FromHex(ctx.String(jwtFlag.Name)),
		ChunkSize: ctx.Int(chunkFlag.Name),
		Timeout:   ctx.Duration(timeoutFlag.Name),
	})
}

func addresses(args []string) ([]common.Address, error) {
	addrs := make([]common.Address, 0, len(args))
	for _, a := range args {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("invalid address %q", a)
		}
		addrs = append(addrs, common.HexToAddress(a))
	}
	return addrs, nil
}
