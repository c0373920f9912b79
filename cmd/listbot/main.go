package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ayenisholah/nft-listing-bot/internal/bot"
	"github.com/ayenisholah/nft-listing-bot/internal/dotenv"
	"github.com/ayenisholah/nft-listing-bot/internal/jsonl"
	"github.com/ayenisholah/nft-listing-bot/internal/opensea"
	"github.com/ayenisholah/nft-listing-bot/internal/pricecache"
	"github.com/ayenisholah/nft-listing-bot/internal/retry"
	"github.com/ayenisholah/nft-listing-bot/internal/wallet"
)

type args struct {
	tokensFile    string
	outFile       string
	rateLimit     float64
	cycleDelay    time.Duration
	clearInterval time.Duration
	dryRun        bool

	privateKeyHex string
	apiKey        string
	rpcURL        string
	baseURL       string
	chainID       int64
}

const defaultEventsOutFile = "./out/decisions.jsonl"

func parseArgs() (args, error) {
	var parsed args
	flag.StringVar(&parsed.tokensFile, "tokens", "tokens.csv", "CSV token list (slug,contractAddress,tokenId,buyPrice,margin), re-read every cycle")
	flag.StringVar(&parsed.outFile, "out", defaultEventsOutFile, "Decision log file (JSONL); empty disables")
	flag.Float64Var(&parsed.rateLimit, "rate", opensea.DefaultRateLimit, "Outbound request budget in calls per second")
	flag.DurationVar(&parsed.cycleDelay, "cycle-delay", time.Second, "Pause between evaluation cycles")
	flag.DurationVar(&parsed.clearInterval, "cache-clear", pricecache.DefaultClearInterval, "Interval for the full listing-price cache reset")
	flag.BoolVar(&parsed.dryRun, "dry-run", false, "Log decisions without submitting listings or transactions")
	flag.Parse()

	parsed.privateKeyHex = strings.TrimSpace(os.Getenv("PRIVATE_KEY"))
	parsed.apiKey = strings.TrimSpace(os.Getenv("API_KEY"))
	parsed.rpcURL = strings.TrimSpace(os.Getenv("ALCHEMY_API_URL"))
	parsed.baseURL = strings.TrimSpace(os.Getenv("OPENSEA_BASE_URL"))
	parsed.chainID = 1

	if parsed.privateKeyHex == "" {
		return parsed, fmt.Errorf("PRIVATE_KEY required")
	}
	if parsed.apiKey == "" {
		return parsed, fmt.Errorf("API_KEY required")
	}
	if parsed.rpcURL == "" {
		return parsed, fmt.Errorf("ALCHEMY_API_URL required")
	}
	if parsed.rateLimit <= 0 {
		return parsed, fmt.Errorf("--rate must be positive")
	}
	return parsed, nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := dotenv.Load(); err != nil {
		log.Printf("[warn] %v", err)
	}

	parsed, err := parseArgs()
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	eth, err := ethclient.Dial(parsed.rpcURL)
	if err != nil {
		log.Fatalf("[fatal] rpc dial: %v", err)
	}
	defer eth.Close()

	w, err := wallet.New(parsed.privateKeyHex, parsed.chainID, eth)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	log.Printf("Wallet: %s", w.Address().Hex())

	gasRetry := retry.Policy{Attempts: 3, Backoff: retry.Exponential(time.Second)}
	client, err := opensea.NewClient(parsed.apiKey, w, opensea.Options{
		BaseURL:   parsed.baseURL,
		RateLimit: parsed.rateLimit,
		Retry:     gasRetry,
	})
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	events := jsonl.New(parsed.outFile)
	if events != nil {
		log.Printf("Decision log: %s (JSONL)", parsed.outFile)
		defer func() {
			if err := events.Close(); err != nil {
				log.Printf("[warn] decision log close: %v", err)
			}
		}()
	}

	cache := pricecache.New()
	b, err := bot.New(bot.Config{
		TokensFile: parsed.tokensFile,
		RateLimit:  parsed.rateLimit,
		CycleDelay: parsed.cycleDelay,
		GasRetry:   gasRetry,
		DryRun:     parsed.dryRun,
	}, client, client, w, cache, events)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}

	log.Printf("Token list: %s", parsed.tokensFile)
	log.Printf("Dry-run: %v", parsed.dryRun)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		log.Printf("Shutting down…")
		cancel()
	}()

	go cache.RunClearLoop(ctx, parsed.clearInterval)

	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("[fatal] %v", err)
	}
}
