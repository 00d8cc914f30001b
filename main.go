package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/hcl"
	"github.com/sirupsen/logrus"

	"github.com/govland/land-trade/cstore"
	"github.com/govland/land-trade/land"
	"github.com/govland/land-trade/registry"
)

var (
	cfg *config
	db  *bolt.DB
)

type config struct {
	Port           int      `hcl:"port"`
	DataDir        string   `hcl:"datadir"`
	RPCEndpoint    string   `hcl:"rpc_endpoint"`
	Contract       string   `hcl:"contract"`
	UploadEndpoint string   `hcl:"upload_endpoint"`
	UploadAPIKey   string   `hcl:"upload_api_key"`
	Mirrors        []string `hcl:"mirrors"`
	FiatPerNative  int64    `hcl:"fiat_per_native"`
	FetchTimeout   int      `hcl:"fetch_timeout"`
}

func init() {
	var confpath string
	flag.StringVar(&confpath, "conf", "", "Specify configuration file")
	flag.Parse()

	cfg = readConfig(confpath)

	db = openDB(fmt.Sprintf("%s/land-trade.db", cfg.DataDir))
}

func readConfig(confpath string) *config {
	var cfg config

	dat, err := os.ReadFile(confpath)
	if err != nil {
		panic(fmt.Sprintf("unable to read the configuration: %v", err))
	}

	if err = hcl.Unmarshal(dat, &cfg); nil != err {
		panic(fmt.Sprintf("unable to parse the configuration: %v", err))
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10
	}

	return &cfg
}

func main() {
	contractAddr, err := land.ParseAddress(cfg.Contract)
	if err != nil {
		logrus.Fatalf("bad contract address: %v", err)
	}

	ledger, err := registry.Dial(context.Background(), cfg.RPCEndpoint, contractAddr)
	if err != nil {
		logrus.Fatalf("unable to reach the ledger: %v", err)
	}
	defer ledger.Close()

	store := cstore.New(cfg.UploadEndpoint, cfg.UploadAPIKey, cfg.Mirrors, time.Duration(cfg.FetchTimeout)*time.Second)

	conv, err := land.NewConverter(cfg.FiatPerNative)
	if err != nil {
		logrus.Fatalf("bad exchange rate: %v", err)
	}

	coordinator := land.NewCoordinator(ledger, store, conv)

	r := gin.Default()
	r.POST("/accounts", handleAccountCreation())
	r.POST("/accounts/:address/register", handleUserRegistration(coordinator))
	r.GET("/accounts/:address/profile", handleProfile(coordinator))
	r.GET("/accounts/:address/lands", handleOwnedLands(coordinator))
	r.POST("/lands", handleLandRegistration(coordinator))
	r.GET("/lands", handleAllLands(coordinator))
	r.GET("/lands/:id", handleGetLand(coordinator))
	r.GET("/lands/:id/sale", handleSaleInfo(coordinator))
	r.POST("/lands/:id/list", handleListForSale(coordinator))
	r.POST("/lands/:id/buy", handleBuyRequest(coordinator))
	r.POST("/lands/:id/approve", handleApproval(coordinator))
	r.Run(fmt.Sprintf(":%d", cfg.Port))
}
