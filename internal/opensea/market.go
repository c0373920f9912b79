package opensea

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/ayenisholah/nft-listing-bot/internal/seaport"
)

var weiPerEther = decimal.New(1, 18)

type bestListingsResp struct {
	Listings []struct {
		Price struct {
			Current struct {
				Value string `json:"value"`
			} `json:"current"`
		} `json:"price"`
	} `json:"listings"`
}

// FloorPrice returns the lowest current listing price for the collection in
// ETH. Any provider failure, or an empty book, yields zero; callers treat
// zero as "no floor available" and skip the token for the cycle.
func (c *Client) FloorPrice(ctx context.Context, slug string) decimal.Decimal {
	var resp bestListingsResp
	path := fmt.Sprintf("/api/v2/listings/collection/%s/best", slug)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		log.Printf("[warn] floor price %s: %v", slug, err)
		return decimal.Zero
	}

	prices := make([]decimal.Decimal, 0, len(resp.Listings))
	for _, l := range resp.Listings {
		wei, err := decimal.NewFromString(l.Price.Current.Value)
		if err != nil || wei.Sign() <= 0 {
			continue
		}
		prices = append(prices, wei.Div(weiPerEther))
	}
	if len(prices) == 0 {
		return decimal.Zero
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })
	return prices[0]
}

// CreatorFeeSchedule is a collection's royalty configuration.
type CreatorFeeSchedule struct {
	Fees []seaport.CreatorFee
	// Enforced reports whether the marketplace requires the royalty to be
	// paid; unenforced fees are left out of listings entirely.
	Enforced bool
}

type collectionResp struct {
	Fees []struct {
		// Fee is a whole-number percentage (2.5 means 2.5%).
		Fee       float64 `json:"fee"`
		Recipient string  `json:"recipient"`
		Required  bool    `json:"required"`
	} `json:"fees"`
}

// CollectionFees fetches the collection's royalty schedule. The provider's
// first fee entry is the platform fee; the second, when present, is the
// creator fee. Errors yield nil, which callers must treat as "no fee data
// available" rather than zero royalty.
func (c *Client) CollectionFees(ctx context.Context, slug string) *CreatorFeeSchedule {
	var resp collectionResp
	path := fmt.Sprintf("/api/v2/collections/%s", slug)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		log.Printf("[warn] collection fees %s: %v", slug, err)
		return nil
	}

	if len(resp.Fees) < 2 {
		return &CreatorFeeSchedule{}
	}

	creator := resp.Fees[1]
	if !common.IsHexAddress(creator.Recipient) {
		log.Printf("[warn] collection fees %s: invalid recipient %q", slug, creator.Recipient)
		return &CreatorFeeSchedule{}
	}
	return &CreatorFeeSchedule{
		Fees: []seaport.CreatorFee{{
			Recipient: common.HexToAddress(creator.Recipient),
			Bps:       int64(creator.Fee * 100),
		}},
		Enforced: creator.Required,
	}
}
