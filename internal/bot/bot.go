// Package bot runs the listing loop: each cycle it re-reads the token list,
// evaluates every tracked token against the current floor and bid book, and
// either accepts the best bid or (re)lists the token just under the floor.
package bot

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"

	"github.com/ayenisholah/nft-listing-bot/internal/jsonl"
	"github.com/ayenisholah/nft-listing-bot/internal/opensea"
	"github.com/ayenisholah/nft-listing-bot/internal/pricecache"
	"github.com/ayenisholah/nft-listing-bot/internal/retry"
	"github.com/ayenisholah/nft-listing-bot/internal/seaport"
	"github.com/ayenisholah/nft-listing-bot/internal/tokenlist"
)

// Market is the read side of the exchange client. Failures degrade to safe
// defaults (zero floor, nil bids/fees) rather than errors.
type Market interface {
	FloorPrice(ctx context.Context, slug string) decimal.Decimal
	CollectionFees(ctx context.Context, slug string) *opensea.CreatorFeeSchedule
	Bids(ctx context.Context, slug string, contract common.Address, tokenID string) []opensea.Bid
}

// Exchange is the write side: order submission and bid fulfillment.
type Exchange interface {
	SubmitListing(ctx context.Context, payload *seaport.ListingPayload) error
	FulfillmentData(ctx context.Context, orderID string, contract common.Address, tokenID string) (*opensea.Fulfillment, error)
	CreateRequestedTransaction(ctx context.Context, f *opensea.Fulfillment) (string, error)
}

// Chain is the wallet subset the bot needs: signatures, gas queries,
// contract reads, and transaction broadcast.
type Chain interface {
	Address() common.Address
	ChainID() *big.Int
	SignTypedData(td apitypes.TypedData) (string, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	SendTransaction(ctx context.Context, to common.Address, value *big.Int, data []byte, gasLimit uint64) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

type Config struct {
	// TokensFile is re-read at the start of every cycle so edits take effect
	// without a restart.
	TokensFile string

	// RateLimit is the shared outbound request budget in calls per second;
	// per-cycle concurrency is capped at 1.5x this value.
	RateLimit float64

	// CycleDelay is the pause between cycles. Zero means one second.
	CycleDelay time.Duration

	// ListingDuration bounds how long a submitted listing stays valid.
	// Zero means sixteen minutes.
	ListingDuration time.Duration

	// Fee assumptions used when valuing a bid, in whole-number percent.
	// Zero values fall back to 0.5 (marketplace) and 5 (creator).
	MarketFeePct  decimal.Decimal
	CreatorFeePct decimal.Decimal

	// GasRetry governs fulfillment gas estimation. Zero runs the estimate
	// once with no retries.
	GasRetry retry.Policy

	// DryRun logs every decision without submitting listings or
	// transactions.
	DryRun bool
}

const (
	defaultCycleDelay      = time.Second
	defaultListingDuration = 960 * time.Second
)

var (
	defaultMarketFeePct  = decimal.RequireFromString("0.5")
	defaultCreatorFeePct = decimal.NewFromInt(5)
)

type Bot struct {
	cfg      Config
	market   Market
	exchange Exchange
	chain    Chain
	cache    *pricecache.Cache
	events   *jsonl.Writer

	// approved memoizes per-contract conduit approval so the chain is only
	// consulted once per NFT contract per process.
	mu       sync.Mutex
	approved map[common.Address]bool

	state     atomic.Int32
	startedAt time.Time
}

func New(cfg Config, market Market, exchange Exchange, chain Chain, cache *pricecache.Cache, events *jsonl.Writer) (*Bot, error) {
	if strings.TrimSpace(cfg.TokensFile) == "" {
		return nil, fmt.Errorf("tokens file required")
	}
	if market == nil || exchange == nil || chain == nil {
		return nil, fmt.Errorf("market, exchange and chain clients required")
	}
	if cache == nil {
		cache = pricecache.New()
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = opensea.DefaultRateLimit
	}
	if cfg.CycleDelay <= 0 {
		cfg.CycleDelay = defaultCycleDelay
	}
	if cfg.ListingDuration <= 0 {
		cfg.ListingDuration = defaultListingDuration
	}
	if cfg.MarketFeePct.IsZero() {
		cfg.MarketFeePct = defaultMarketFeePct
	}
	if cfg.CreatorFeePct.IsZero() {
		cfg.CreatorFeePct = defaultCreatorFeePct
	}

	return &Bot{
		cfg:       cfg,
		market:    market,
		exchange:  exchange,
		chain:     chain,
		cache:     cache,
		events:    events,
		approved:  make(map[common.Address]bool),
		startedAt: time.Now(),
	}, nil
}

// Cache exposes the last-applied price cache so the caller can run its
// periodic clear loop alongside the bot.
func (b *Bot) Cache() *pricecache.Cache { return b.cache }

func cacheKey(t tokenlist.Token) string {
	return strings.ToLower(t.ContractAddress.Hex()) + ":" + t.TokenID
}
