package bot

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/shopspring/decimal"

	"github.com/ayenisholah/nft-listing-bot/internal/opensea"
	"github.com/ayenisholah/nft-listing-bot/internal/pricing"
	"github.com/ayenisholah/nft-listing-bot/internal/tokenlist"
)

var weiPerEther = decimal.New(1, 18)

// errZeroGas marks the provider's "cannot estimate" sentinel; a zero
// estimate never proceeds to broadcast.
var errZeroGas = errors.New("zero gas estimate")

// evaluate runs the full decision path for one token in one cycle. Failures
// are contained here: a token that cannot be evaluated or acted on is logged
// and skipped, never failing the cycle.
func (b *Bot) evaluate(ctx context.Context, t tokenlist.Token) {
	key := cacheKey(t)
	priceMin := pricing.MinAcceptPrice(t.BuyPrice, t.Margin)

	in := pricing.Inputs{
		Floor:    b.market.FloorPrice(ctx, t.Slug),
		PriceMin: priceMin,
	}
	if last, ok := b.cache.Get(key); ok {
		in.HasLastApplied = true
		in.LastApplied = last
	}

	var (
		bestBid     opensea.Bid
		fulfillment *opensea.Fulfillment
		gasCost     decimal.Decimal
	)
	if in.Floor.Sign() > 0 {
		if bids := b.market.Bids(ctx, t.Slug, t.ContractAddress, t.TokenID); len(bids) > 0 {
			bestBid = bids[0]
			in.HasBid = true
			in.BestBid = bestBid.Price

			f, gas, err := b.fulfillmentWithGas(ctx, bestBid.OrderID, t)
			if err != nil {
				log.Printf("[warn] %s #%s: bid %s not actionable: %v", t.Slug, t.TokenID, bestBid.OrderID, err)
			} else {
				gasPrice, perr := b.chain.GasPrice(ctx)
				if perr != nil {
					log.Printf("[warn] %s #%s: gas price: %v", t.Slug, t.TokenID, perr)
				} else {
					gasCost = decimal.NewFromBigInt(gasPrice, 0).
						Mul(decimal.NewFromUint64(gas)).
						Div(weiPerEther)
					in.GasKnown = true
					in.NetProceeds = pricing.OfferAcceptPrice(bestBid.Price, b.cfg.MarketFeePct, b.cfg.CreatorFeePct, gasCost)
					fulfillment = f
					log.Printf("[info] %s #%s: bid %s, gas %d units @ %s wei = %s ETH, net %s",
						t.Slug, t.TokenID, bestBid.Price, gas, gasPrice, gasCost, in.NetProceeds)
				}
			}
		}
	}

	d := pricing.Decide(in)
	b.logDecision(t, in, d, gasCost)

	switch d.Action {
	case pricing.ActionAcceptBid:
		if b.cfg.DryRun {
			log.Printf("[info] dry-run: would accept bid %s on %s #%s (net %s > min %s)",
				bestBid.OrderID, t.Slug, t.TokenID, in.NetProceeds, priceMin)
			return
		}
		if err := b.acceptBid(ctx, t, bestBid, fulfillment); err != nil {
			log.Printf("[warn] %s #%s: accept bid: %v", t.Slug, t.TokenID, err)
		}
	case pricing.ActionList:
		if b.cfg.DryRun {
			log.Printf("[info] dry-run: would list %s #%s at %s", t.Slug, t.TokenID, d.ListingPrice)
			b.cache.Put(key, d.ListingPrice)
			return
		}
		if err := b.list(ctx, t, d.ListingPrice); err != nil {
			log.Printf("[warn] %s #%s: list at %s: %v", t.Slug, t.TokenID, d.ListingPrice, err)
			return
		}
		b.cache.Put(key, d.ListingPrice)
		log.Printf("[info] listed %s #%s at %s", t.Slug, t.TokenID, d.ListingPrice)
	default:
		log.Printf("[info] skip %s #%s: %s", t.Slug, t.TokenID, d.Reason)
	}
}

// fulfillmentWithGas fetches the fulfillment calldata for a bid and estimates
// its gas. The estimate is retried per the configured policy; a zero estimate
// is treated as a failure so acceptance is never attempted with unknown gas.
func (b *Bot) fulfillmentWithGas(ctx context.Context, orderID string, t tokenlist.Token) (*opensea.Fulfillment, uint64, error) {
	f, err := b.exchange.FulfillmentData(ctx, orderID, t.ContractAddress, t.TokenID)
	if err != nil {
		return nil, 0, err
	}

	gas, err := b.estimateFulfillGas(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return f, gas, nil
}

// estimateFulfillGas estimates gas for a fulfillment, retried per the
// configured policy. A zero estimate is a failure.
func (b *Bot) estimateFulfillGas(ctx context.Context, f *opensea.Fulfillment) (uint64, error) {
	var gas uint64
	err := b.cfg.GasRetry.Do(ctx, func() error {
		g, err := b.chain.EstimateGas(ctx, ethereum.CallMsg{
			From: f.From,
			To:   &f.To,
			Data: f.Calldata,
		})
		if err != nil {
			return err
		}
		if g == 0 {
			return errZeroGas
		}
		gas = g
		return nil
	})
	return gas, err
}

// acceptBid registers the fulfillment with the exchange, re-estimates gas
// after a short settle pause, and broadcasts the transaction. It does not
// wait for the transaction to be mined.
func (b *Bot) acceptBid(ctx context.Context, t tokenlist.Token, bid opensea.Bid, f *opensea.Fulfillment) error {
	relayID, err := b.exchange.CreateRequestedTransaction(ctx, f)
	if err != nil {
		return err
	}
	log.Printf("[info] accepting bid %s on %s #%s (request %s)", bid.OrderID, t.Slug, t.TokenID, relayID)

	// Let the exchange register the request before broadcasting.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
	}

	// Gas is re-estimated right before broadcast; the book may have moved
	// since evaluation.
	gas, err := b.estimateFulfillGas(ctx, f)
	if err != nil {
		// A failing estimate at this point usually means the bid filled or
		// was cancelled; broadcasting would revert.
		return err
	}

	tx, err := b.chain.SendTransaction(ctx, f.To, nil, f.Calldata, gas)
	if err != nil {
		return err
	}
	b.logAccept(t, bid, relayID, tx.Hash().Hex())
	log.Printf("[info] accepted bid %s on %s #%s: tx %s", bid.OrderID, t.Slug, t.TokenID, tx.Hash().Hex())
	return nil
}
