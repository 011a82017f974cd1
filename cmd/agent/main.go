// Package main runs the custodial trading agent: wallet custody, pricing,
// swap execution, and the copy-trading registry, with status and Prometheus
// metrics over HTTP. Command dispatch (the chat frontend) is a separate
// process talking to the engine surface.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mr-tron/base58"

	"solana-trading-agent/internal/balance"
	"solana-trading-agent/internal/copytrade"
	"solana-trading-agent/internal/domain"
	"solana-trading-agent/internal/engine"
	"solana-trading-agent/internal/fees"
	"solana-trading-agent/internal/observability"
	"solana-trading-agent/internal/pricing"
	"solana-trading-agent/internal/solana"
	"solana-trading-agent/internal/storage"
	chstore "solana-trading-agent/internal/storage/clickhouse"
	"solana-trading-agent/internal/storage/memory"
	"solana-trading-agent/internal/storage/migrations"
	pgstore "solana-trading-agent/internal/storage/postgres"
	"solana-trading-agent/internal/submit"
	"solana-trading-agent/internal/swaproute"
	"solana-trading-agent/internal/wallet"
)

// Agent holds the wired engine and serving state.
type Agent struct {
	engine  *engine.Engine
	logger  *log.Logger
	started time.Time
}

// agentStores holds the storage implementations behind the engine.
type agentStores struct {
	wallets storage.WalletStore
	follows storage.FollowStore
	trades  storage.TradeLogStore
}

func main() {
	// Load .env file if exists; system env vars win.
	_ = godotenv.Load()

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (optional, enables confirmation watching)")
	priceURL := flag.String("price-url", envOr("PRICE_API_URL", "https://price.jup.ag/v4/price"), "Primary price endpoint")
	pairsURL := flag.String("pairs-url", envOr("PAIRS_API_URL", "https://api.raydium.io/v2/main/pairs"), "Fallback market-pairs endpoint")
	quoteURL := flag.String("quote-url", envOr("QUOTE_API_URL", "https://quote-api.jup.ag/v6/quote"), "Aggregator quote endpoint")
	swapURL := flag.String("swap-url", envOr("SWAP_API_URL", "https://quote-api.jup.ag/v6/swap"), "Aggregator swap-build endpoint")
	tokenMint := flag.String("token-mint", os.Getenv("TOKEN_MINT"), "Mint of the token the agent trades")
	tokenDecimals := flag.Int("token-decimals", 6, "Decimals of the traded token")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL and ClickHouse")
	custodyKey := flag.String("custody-key", os.Getenv("CUSTODY_KEY"), "Hex-encoded 32-byte key sealing wallet material at rest")
	funderKey := flag.String("funder-key", os.Getenv("FUNDER_PRIVATE_KEY"), "Base58 private key funding privileged wallets (optional)")
	privilegedIDs := flag.String("privileged-ids", os.Getenv("PRIVILEGED_IDS"), "Comma-separated identities that receive initial funding")
	fundingLamports := flag.Uint64("funding-lamports", 100_000_000, "Lamports sent to each newly created privileged wallet")
	heartbeatInterval := flag.Duration("heartbeat-interval", engine.DefaultHeartbeatInterval, "Liveness heartbeat interval")
	rankingInterval := flag.Duration("ranking-interval", engine.DefaultRankingInterval, "Trader ranking refresh interval")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	logger := log.New(os.Stdout, "[agent] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *tokenMint == "" {
		logger.Fatal("--token-mint is required")
	}
	if !*useMemory {
		if *postgresDSN == "" || *clickhouseDSN == "" {
			logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
		}
		if *custodyKey == "" {
			logger.Fatal("--custody-key is required for persistent storage")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *custodyKey, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	rpc := solana.NewHTTPClient(*rpcEndpoint, solana.WithCommitment(solana.CommitmentConfirmed))

	var funder *wallet.Funder
	if *funderKey != "" {
		key, err := base58.Decode(*funderKey)
		if err != nil {
			logger.Fatalf("Failed to decode funder key: %v", err)
		}
		funder, err = wallet.NewFunder(rpc, key, *fundingLamports, splitList(*privilegedIDs))
		if err != nil {
			logger.Fatalf("Invalid funder key: %v", err)
		}
	}

	custodian := wallet.NewCustodian(wallet.Options{
		Store:  stores.wallets,
		Funder: funder,
		Logger: log.New(os.Stdout, "[custody] ", log.LstdFlags),
	})

	oracle := pricing.NewOracle(pricing.Options{
		PrimaryURL: *priceURL,
		PairsURL:   *pairsURL,
		Logger:     log.New(os.Stdout, "[pricing] ", log.LstdFlags),
	})

	builder := swaproute.NewBuilder(swaproute.Options{
		QuoteURL:      *quoteURL,
		SwapURL:       *swapURL,
		TokenDecimals: *tokenDecimals,
		Logger:        log.New(os.Stdout, "[swap] ", log.LstdFlags),
	})

	var submitter engine.TxSubmitter = submit.NewSubmitter(submit.Options{
		RPC:    rpc,
		Logger: log.New(os.Stdout, "[submit] ", log.LstdFlags),
	})
	if *wsEndpoint != "" {
		ws, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Printf("WebSocket connection failed, confirmation watching disabled: %v", err)
		} else {
			defer ws.Close()
			watcher := submit.NewConfirmationWatcher(ws, 0, log.New(os.Stdout, "[confirm] ", log.LstdFlags))
			submitter = &watchedSubmitter{inner: submitter, watcher: watcher, ctx: ctx}
		}
	}

	registry := copytrade.NewRegistry(copytrade.Options{
		Store:  stores.follows,
		Logger: log.New(os.Stdout, "[copytrade] ", log.LstdFlags),
	})

	eng := engine.New(engine.Options{
		Custodian: custodian,
		RPC:       rpc,
		Prices:    oracle,
		Balances:  balance.NewResolver(rpc, log.New(os.Stdout, "[balance] ", log.LstdFlags)),
		Fees:      fees.NewCalculator(fees.DefaultPlatformFeeRate, fees.DefaultNetworkFee),
		Builder:   builder,
		Submitter: submitter,
		Registry:  registry,
		Trades:    stores.trades,
		TokenMint: *tokenMint,
		Logger:    logger,
	})

	agent := &Agent{engine: eng, logger: logger, started: time.Now().UTC()}

	// Shutdown on SIGINT/SIGTERM; a second signal forces exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	go agent.startHTTPServer(*metricsAddr)
	go eng.RunHeartbeat(ctx, *heartbeatInterval)
	go eng.RunRankingRefresh(ctx, *rankingInterval)

	logger.Printf("Agent running; trading %s", *tokenMint)
	<-ctx.Done()
	logger.Println("Shutdown complete")
}

// createStores creates the wallet, follow, and trade stores, applying
// migrations for the persistent backends.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN, custodyKey string, useMemory bool) (*agentStores, func(), error) {
	if useMemory {
		stores := &agentStores{
			wallets: memory.NewWalletStore(),
			follows: memory.NewFollowStore(),
			trades:  memory.NewTradeLogStore(),
		}
		return stores, func() {}, nil
	}

	cipher, err := pgstore.NewCipher(custodyKey)
	if err != nil {
		return nil, nil, fmt.Errorf("init custody cipher: %w", err)
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &agentStores{
		wallets: pgstore.NewWalletStore(pool, cipher),
		follows: pgstore.NewFollowStore(pool),
		trades:  chstore.NewTradeLogStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// startHTTPServer serves health, metrics, and status.
func (a *Agent) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/status", a.handleStatus)

	a.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		a.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status  string    `json:"status"`
	Started time.Time `json:"started"`
	Uptime  string    `json:"uptime"`
}

func (a *Agent) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:  "running",
		Started: a.started,
		Uptime:  time.Since(a.started).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// watchedSubmitter follows each accepted signature over the websocket
// subscription in the background; submission latency is unaffected.
type watchedSubmitter struct {
	inner   engine.TxSubmitter
	watcher *submit.ConfirmationWatcher
	ctx     context.Context
}

func (s *watchedSubmitter) SignAndSubmit(ctx context.Context, w *domain.UserWallet, rawTx []byte) (string, error) {
	sig, err := s.inner.SignAndSubmit(ctx, w, rawTx)
	if err != nil {
		return "", err
	}
	go s.watcher.Watch(s.ctx, sig)
	return sig, nil
}

// envOr returns the environment value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList splits a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
