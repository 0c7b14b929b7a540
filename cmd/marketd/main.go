// marketd runs the marketplace: an actor runtime hosting the orchestrator
// and the built-in collection template, a sqlite journal, and the read-only
// HTTP query surface.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/holiman/uint256"
	"github.com/inconshreveable/log15"

	"github.com/pflow-xyz/go-market/actor"
	"github.com/pflow-xyz/go-market/api"
	"github.com/pflow-xyz/go-market/collection"
	"github.com/pflow-xyz/go-market/journal"
	"github.com/pflow-xyz/go-market/market"
)

var log = log15.New("module", "marketd")

type config struct {
	Listen string `env:"MARKET_LISTEN" envDefault:":8080"`
	DB     string `env:"MARKET_DB" envDefault:"market.db"`
	Admin  string `env:"MARKET_ADMIN" envDefault:"admin"`

	GasForCreation         uint64 `env:"MARKET_GAS_CREATION" envDefault:"200000000000"`
	GasForMint             uint64 `env:"MARKET_GAS_MINT" envDefault:"100000000000"`
	GasForTransferToken    uint64 `env:"MARKET_GAS_TRANSFER" envDefault:"5000000000"`
	GasForCloseAuction     uint64 `env:"MARKET_GAS_CLOSE_AUCTION" envDefault:"10000000000"`
	GasForDeleteCollection uint64 `env:"MARKET_GAS_DELETE" envDefault:"5000000000"`
	GasForGetInfo          uint64 `env:"MARKET_GAS_GET_INFO" envDefault:"5000000000"`

	CreationCooldownMs uint64 `env:"MARKET_CREATION_COOLDOWN_MS" envDefault:"3600000"`
	TradeRoyaltyBps    uint16 `env:"MARKET_TRADE_ROYALTY_BPS" envDefault:"200"`
	MintRoyaltyBps     uint16 `env:"MARKET_MINT_ROYALTY_BPS" envDefault:"200"`
	MinimumTransfer    uint64 `env:"MARKET_MINIMUM_TRANSFER" envDefault:"10300000000000"`
	FeePerUploadedFile uint64 `env:"MARKET_FEE_PER_FILE" envDefault:"257142857100"`
	MsInBlock          uint32 `env:"MARKET_MS_IN_BLOCK" envDefault:"3000"`
}

func (c config) marketConfig() market.Config {
	cfg := market.DefaultConfig()
	cfg.GasForCreation = c.GasForCreation
	cfg.GasForMint = c.GasForMint
	cfg.GasForTransferToken = c.GasForTransferToken
	cfg.GasForCloseAuction = c.GasForCloseAuction
	cfg.GasForDeleteCollection = c.GasForDeleteCollection
	cfg.GasForGetInfo = c.GasForGetInfo
	cfg.TimeBetweenCreateCollections = c.CreationCooldownMs
	cfg.RoyaltyToMarketplaceForTrade = c.TradeRoyaltyBps
	cfg.RoyaltyToMarketplaceForMint = c.MintRoyaltyBps
	cfg.MinimumTransferValue = uint256.NewInt(c.MinimumTransfer)
	cfg.FeePerUploadedFile = uint256.NewInt(c.FeePerUploadedFile)
	cfg.MsInBlock = c.MsInBlock
	return cfg
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	store, err := journal.OpenSQLite(cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	rt := actor.NewRuntime()
	defer rt.Close()

	m := market.New(actor.Address(cfg.Admin), cfg.marketConfig(), market.WithJournal(store))
	marketAddr := actor.Address("market")
	if err := rt.Register(marketAddr, m); err != nil {
		return err
	}
	rt.RegisterCode("nft-basic", collection.Factory())

	srv := api.New(rt, marketAddr)
	errc := make(chan error, 1)
	go func() { errc <- srv.Run(cfg.Listen) }()

	log.Info("marketd started", "listen", cfg.Listen, "db", cfg.DB, "admin", cfg.Admin)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Info("shutting down", "signal", s)
		return nil
	case err := <-errc:
		return fmt.Errorf("api server: %w", err)
	}
}
