// Command mr01bank runs a standalone MR01 settlement bank: an optional
// pebble-backed ledger plus an optional REST surface over it, wired from a
// TOML config file in the style of the teacher's cmd/geth entrypoint.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mr01settle/paycheck/api"
	"github.com/mr01settle/paycheck/bank"
	"github.com/mr01settle/paycheck/config"
	"github.com/mr01settle/paycheck/internal/mlog"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to a TOML configuration file",
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug-level logging",
	}
)

func main() {
	app := &cli.App{
		Name:  "mr01bank",
		Usage: "MR01 probabilistic micropayment settlement bank",
		Flags: []cli.Flag{configFlag, verboseFlag},
		Before: func(c *cli.Context) error {
			if c.Bool(verboseFlag.Name) {
				mlog.SetRoot(mlog.NewLogger(mlog.NewTerminalHandler(os.Stderr, mlog.LevelDebug)))
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCommand,
			depositCommand,
			balanceCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mr01bank:", err)
		os.Exit(1)
	}
}

// loadConfig reads --config if given, else the reference default (M=10,
// in-memory store, API disabled).
func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.String(configFlag.Name)
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// openBank constructs the Bank described by cfg: a pebble store rooted at
// cfg.DataDir if set, otherwise an in-memory store.
func openBank(cfg config.Config, log *mlog.Logger) (*bank.Bank, error) {
	var store bank.Store
	if cfg.DataDir != "" {
		s, err := bank.NewPebbleStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open pebble store at %s: %w", cfg.DataDir, err)
		}
		store = s
	} else {
		store = bank.NewMemoryStore()
	}
	return bank.New(cfg.Macropayment, store, log)
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "run the bank with the configured REST API listening",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		log := mlog.Root()
		b, err := openBank(cfg, log)
		if err != nil {
			return err
		}
		defer b.Close()

		if !cfg.API.Enabled {
			return fmt.Errorf("api.enabled is false in the loaded config; nothing to serve")
		}
		srv := api.New(b, log)
		log.Info("listening", "addr", cfg.API.Addr)
		return http.ListenAndServe(cfg.API.Addr, srv)
	},
}

var depositCommand = &cli.Command{
	Name:      "deposit",
	Usage:     "credit a user's account",
	ArgsUsage: "<pubkey-hex> <amount>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return cli.Exit("usage: mr01bank deposit <pubkey-hex> <amount>", 1)
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		b, err := openBank(cfg, mlog.Root())
		if err != nil {
			return err
		}
		defer b.Close()

		pub, err := parsePubKeyArg(c.Args().Get(0))
		if err != nil {
			return err
		}
		var amount uint64
		if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &amount); err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		if err := b.Deposit(pub, amount); err != nil {
			return err
		}
		fmt.Printf("balance=%d total_received=%d\n", b.Balance(pub), b.TotalReceived(pub))
		return nil
	},
}

var balanceCommand = &cli.Command{
	Name:      "balance",
	Usage:     "print a user's balance and total received",
	ArgsUsage: "<pubkey-hex>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("usage: mr01bank balance <pubkey-hex>", 1)
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		b, err := openBank(cfg, mlog.Root())
		if err != nil {
			return err
		}
		defer b.Close()

		pub, err := parsePubKeyArg(c.Args().Get(0))
		if err != nil {
			return err
		}
		fmt.Printf("balance=%d total_received=%d history=%d\n", b.Balance(pub), b.TotalReceived(pub), b.HistoryLen(pub))
		return nil
	},
}
