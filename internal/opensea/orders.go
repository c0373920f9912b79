package opensea

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/ayenisholah/nft-listing-bot/internal/seaport"
)

// Bid is one outstanding offer on a tracked token.
type Bid struct {
	Maker   common.Address
	Price   decimal.Decimal
	OrderID string
	// Payment is the currency symbol; only WETH bids are eligible.
	Payment string
}

type ordersResp struct {
	Orders struct {
		Edges []struct {
			Node struct {
				RelayID string `json:"relayId"`
				Maker   struct {
					Address string `json:"address"`
				} `json:"maker"`
				PerUnitPriceType struct {
					Eth string `json:"eth"`
				} `json:"perUnitPriceType"`
				Payment struct {
					Symbol string `json:"symbol"`
				} `json:"payment"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"orders"`
}

// Bids returns the WETH-denominated bids outstanding for the token, sorted
// best-first (highest price). The server is asked to sort by PRICE, but its
// direction is not documented, so the ordering is re-established here
// instead of trusting response order. Provider failures yield an empty
// slice (logged), never an error.
func (c *Client) Bids(ctx context.Context, slug string, contract common.Address, tokenID string) []Bid {
	variables := map[string]any{
		"cursor":              nil,
		"count":               32,
		"excludeMaker":        nil,
		"isExpired":           false,
		"isValid":             true,
		"maker":               nil,
		"makerAssetIsPayment": true,
		"takerArchetype": map[string]any{
			"assetContractAddress": contract.Hex(),
			"tokenId":              tokenID,
			"chain":                "ETHEREUM",
		},
		"takerAssetIsPayment":       nil,
		"sortAscending":             nil,
		"sortBy":                    "PRICE",
		"isBid":                     true,
		"filterByOrderRules":        true,
		"includeCriteriaOrders":     true,
		"criteriaTakerAssetId":      nil,
		"includeCriteriaTakerAsset": false,
		"isSingleAsset":             true,
	}

	var resp ordersResp
	if _, err := c.postGraphQL(ctx, ordersQueryID, ordersQuery, ordersQuerySignature, variables, "", &resp); err != nil {
		log.Printf("[warn] bids %s #%s: %v", slug, tokenID, err)
		return nil
	}

	bids := make([]Bid, 0, len(resp.Orders.Edges))
	for _, edge := range resp.Orders.Edges {
		node := edge.Node
		if !strings.EqualFold(node.Payment.Symbol, "WETH") {
			continue
		}
		price, err := decimal.NewFromString(node.PerUnitPriceType.Eth)
		if err != nil || price.Sign() <= 0 {
			log.Printf("[warn] bids %s #%s: bad price %q", slug, tokenID, node.PerUnitPriceType.Eth)
			continue
		}
		if !common.IsHexAddress(node.Maker.Address) {
			continue
		}
		bids = append(bids, Bid{
			Maker:   common.HexToAddress(node.Maker.Address),
			Price:   price,
			OrderID: node.RelayID,
			Payment: node.Payment.Symbol,
		})
	}

	// Best bid first; ties broken by order id for a stable pick.
	sort.Slice(bids, func(i, j int) bool {
		if !bids[i].Price.Equal(bids[j].Price) {
			return bids[i].Price.GreaterThan(bids[j].Price)
		}
		return bids[i].OrderID < bids[j].OrderID
	})
	return bids
}

const listingsPath = "/api/v2/orders/ethereum/seaport/listings"

// SubmitListing POSTs a signed Seaport order to the exchange's listing
// endpoint.
func (c *Client) SubmitListing(ctx context.Context, payload *seaport.ListingPayload) error {
	if payload == nil || payload.Parameters == nil || payload.Signature == "" {
		return fmt.Errorf("signed listing payload required")
	}
	var resp struct {
		Errors any `json:"errors"`
	}
	if err := c.postJSON(ctx, listingsPath, payload, &resp); err != nil {
		return err
	}
	if resp.Errors != nil {
		return fmt.Errorf("listing rejected: %v", resp.Errors)
	}
	return nil
}
