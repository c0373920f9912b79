// Package seaport builds and signs Seaport 1.6 listing orders in the exact
// protocol shape the exchange expects.
package seaport

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	DomainName    = "Seaport"
	DomainVersion = "1.6"

	// Basis-point denominator for fee shares.
	bpsDivider = 10000
	// Marketplace fee, in basis points, paid on every listing.
	MarketplaceFeeBps = 50

	// ERC20/ERC721 item types per the Seaport enum. Native ether is 0.
	itemTypeNative = 0
	itemTypeERC721 = 2

	// orderTypeFullOpen allows any taker with no zone restrictions.
	orderTypeFullOpen = 0
)

var (
	// VerifyingContract is the Seaport 1.6 deployment the typed-data domain
	// is bound to; the counter is read from the same contract.
	VerifyingContract = common.HexToAddress("0x0000000000000068F116a894984e2DB1123eB395")

	// Conduit is the marketplace operator that must be approved on the NFT
	// contract before a listing can fill.
	Conduit = common.HexToAddress("0x1E0049783F008A0085193E00003D00cd54003c71")

	// ConduitKey routes fills through the marketplace conduit.
	ConduitKey = "0x0000007b02230091a7ed01230072f7006a004d60a8d4e71d599b8104250f0000"

	// MarketplaceFeeRecipient receives the fixed marketplace fee.
	MarketplaceFeeRecipient = common.HexToAddress("0x0000a26b00c1F0DF003000390027140000fAa719")

	zeroHash = "0x0000000000000000000000000000000000000000000000000000000000000000"
)

// CreatorFee is one royalty recipient and its share in basis points.
type CreatorFee struct {
	Recipient common.Address
	Bps       int64
}

// OfferItem is the asset being sold.
type OfferItem struct {
	ItemType             int    `json:"itemType"`
	Token                string `json:"token"`
	IdentifierOrCriteria string `json:"identifierOrCriteria"`
	StartAmount          string `json:"startAmount"`
	EndAmount            string `json:"endAmount"`
}

// ConsiderationItem is one payment recipient and amount.
type ConsiderationItem struct {
	ItemType             int    `json:"itemType"`
	Token                string `json:"token"`
	IdentifierOrCriteria string `json:"identifierOrCriteria"`
	StartAmount          string `json:"startAmount"`
	EndAmount            string `json:"endAmount"`
	Recipient            string `json:"recipient"`
}

// OrderComponents mirrors the Seaport OrderComponents struct, in the JSON
// shape the exchange's listing endpoint consumes.
type OrderComponents struct {
	Offerer                         string              `json:"offerer"`
	Zone                            string              `json:"zone"`
	Offer                           []OfferItem         `json:"offer"`
	Consideration                   []ConsiderationItem `json:"consideration"`
	OrderType                       int                 `json:"orderType"`
	StartTime                       string              `json:"startTime"`
	EndTime                         string              `json:"endTime"`
	ZoneHash                        string              `json:"zoneHash"`
	Salt                            string              `json:"salt"`
	ConduitKey                      string              `json:"conduitKey"`
	TotalOriginalConsiderationItems int                 `json:"totalOriginalConsiderationItems"`
	Counter                         string              `json:"counter"`
}

// ListingPayload is the signed order as POSTed to the listing endpoint.
type ListingPayload struct {
	Parameters      *OrderComponents `json:"parameters"`
	Signature       string           `json:"signature"`
	ProtocolAddress string           `json:"protocol_address"`
}

// ListingParams carries everything needed to construct an unsigned listing.
type ListingParams struct {
	Offerer  common.Address
	Token    common.Address
	TokenID  string
	PriceWei *big.Int

	StartTime int64
	EndTime   int64
	Salt      int64
	Counter   *big.Int

	EnforceCreatorFee bool
	CreatorFees       []CreatorFee
}

// EtherToWei converts an ETH-denominated decimal into wei, rejecting values
// with sub-wei precision.
func EtherToWei(eth decimal.Decimal) (*big.Int, error) {
	shifted := eth.Shift(18)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("price %s has sub-wei precision", eth)
	}
	return shifted.BigInt(), nil
}

// BuildListing constructs the order components for a fixed-price listing.
//
// The consideration items always reconcile exactly to the listed price:
// the seller receives (10000 - marketplace - enforced creator bps)/10000,
// the marketplace its fixed share, and each enforced creator-fee recipient
// its own item. When enforcement is off, creator items are omitted entirely
// and the creator share stays with the seller.
func BuildListing(p ListingParams) (*OrderComponents, error) {
	if (p.Offerer == common.Address{}) {
		return nil, fmt.Errorf("offerer required")
	}
	if (p.Token == common.Address{}) {
		return nil, fmt.Errorf("token contract required")
	}
	if p.TokenID == "" {
		return nil, fmt.Errorf("token id required")
	}
	if p.PriceWei == nil || p.PriceWei.Sign() <= 0 {
		return nil, fmt.Errorf("positive price required")
	}
	if p.Counter == nil {
		return nil, fmt.Errorf("counter required")
	}
	if p.EndTime <= p.StartTime {
		return nil, fmt.Errorf("end time %d not after start time %d", p.EndTime, p.StartTime)
	}

	divider := big.NewInt(bpsDivider)
	share := func(bps int64) *big.Int {
		out := new(big.Int).Mul(p.PriceWei, big.NewInt(bps))
		return out.Div(out, divider)
	}

	var totalCreatorBps int64
	var creatorItems []ConsiderationItem
	if p.EnforceCreatorFee {
		for _, fee := range p.CreatorFees {
			if fee.Bps <= 0 {
				continue
			}
			totalCreatorBps += fee.Bps
			amount := share(fee.Bps).String()
			creatorItems = append(creatorItems, ConsiderationItem{
				ItemType:             itemTypeNative,
				Token:                common.Address{}.Hex(),
				IdentifierOrCriteria: "0",
				StartAmount:          amount,
				EndAmount:            amount,
				Recipient:            fee.Recipient.Hex(),
			})
		}
	}
	if totalCreatorBps+MarketplaceFeeBps >= bpsDivider {
		return nil, fmt.Errorf("fees (%d bps creator + %d bps marketplace) consume the whole price", totalCreatorBps, MarketplaceFeeBps)
	}

	ownerAmount := share(bpsDivider - totalCreatorBps - MarketplaceFeeBps)
	marketAmount := share(MarketplaceFeeBps)

	consideration := make([]ConsiderationItem, 0, 2+len(creatorItems))
	consideration = append(consideration, ConsiderationItem{
		ItemType:             itemTypeNative,
		Token:                common.Address{}.Hex(),
		IdentifierOrCriteria: "0",
		StartAmount:          ownerAmount.String(),
		EndAmount:            ownerAmount.String(),
		Recipient:            p.Offerer.Hex(),
	}, ConsiderationItem{
		ItemType:             itemTypeNative,
		Token:                common.Address{}.Hex(),
		IdentifierOrCriteria: "0",
		StartAmount:          marketAmount.String(),
		EndAmount:            marketAmount.String(),
		Recipient:            MarketplaceFeeRecipient.Hex(),
	})
	consideration = append(consideration, creatorItems...)

	total := new(big.Int)
	for _, item := range consideration {
		amt, ok := new(big.Int).SetString(item.StartAmount, 10)
		if !ok {
			return nil, fmt.Errorf("bad consideration amount %q", item.StartAmount)
		}
		total.Add(total, amt)
	}
	if total.Cmp(p.PriceWei) != 0 {
		return nil, fmt.Errorf("consideration items sum to %s, want %s", total, p.PriceWei)
	}

	return &OrderComponents{
		Offerer: p.Offerer.Hex(),
		Zone:    common.Address{}.Hex(),
		Offer: []OfferItem{{
			ItemType:             itemTypeERC721,
			Token:                p.Token.Hex(),
			IdentifierOrCriteria: p.TokenID,
			StartAmount:          "1",
			EndAmount:            "1",
		}},
		Consideration:                   consideration,
		OrderType:                       orderTypeFullOpen,
		StartTime:                       fmt.Sprintf("%d", p.StartTime),
		EndTime:                         fmt.Sprintf("%d", p.EndTime),
		ZoneHash:                        zeroHash,
		Salt:                            fmt.Sprintf("%d", p.Salt),
		ConduitKey:                      ConduitKey,
		TotalOriginalConsiderationItems: len(consideration),
		Counter:                         p.Counter.String(),
	}, nil
}
