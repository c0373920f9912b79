package pricing

import (
	"github.com/shopspring/decimal"
)

// Prices are ETH-denominated decimals. Listing prices and debounce
// comparisons are fixed at 5 decimal places; comparing the rounded values
// avoids treating sub-precision float noise as a changed floor.
const PriceDecimals = 5

var (
	// DefaultMargin is added to the buy price when a token's configured
	// margin is zero/unset.
	DefaultMargin = decimal.RequireFromString("0.005")

	// ListingUndercut is subtracted from the floor to price a new listing
	// just below the current cheapest listing.
	ListingUndercut = decimal.RequireFromString("0.00001")
)

// OfferAcceptPrice returns the net proceeds of accepting a bid after the
// marketplace fee, creator royalty, and the gas cost of fulfillment.
// Fee percentages are whole-number percent (5 means 5%).
func OfferAcceptPrice(bestBid, marketFeePct, creatorFeePct, gasCost decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	keep := decimal.NewFromInt(1).Sub(marketFeePct.Add(creatorFeePct).Div(hundred))
	return bestBid.Mul(keep).Sub(gasCost)
}

// MinAcceptPrice returns the lowest price the operator is willing to realize
// for a token: buy price plus margin (DefaultMargin when margin is zero).
func MinAcceptPrice(buyPrice, margin decimal.Decimal) decimal.Decimal {
	if margin.IsZero() {
		margin = DefaultMargin
	}
	return buyPrice.Add(margin)
}

// ListingPrice undercuts the floor by ListingUndercut, rounded to
// PriceDecimals, and never returns a value below priceMin.
func ListingPrice(floor, priceMin decimal.Decimal) decimal.Decimal {
	p := floor.Sub(ListingUndercut).Round(PriceDecimals)
	if p.LessThan(priceMin) {
		return priceMin.Round(PriceDecimals)
	}
	return p
}

// Action is the outcome of evaluating one token for one cycle.
type Action int

const (
	ActionSkip Action = iota
	ActionAcceptBid
	ActionList
)

func (a Action) String() string {
	switch a {
	case ActionAcceptBid:
		return "accept_bid"
	case ActionList:
		return "list"
	default:
		return "skip"
	}
}

// Inputs carries everything Decide needs for one token in one cycle.
type Inputs struct {
	Floor    decimal.Decimal
	PriceMin decimal.Decimal

	// Best outstanding bid, if any.
	HasBid      bool
	BestBid     decimal.Decimal
	NetProceeds decimal.Decimal
	// GasKnown is false when gas estimation failed (sentinel zero), which
	// blocks bid acceptance regardless of the numbers.
	GasKnown bool

	// Last listing price applied for this token, if any.
	HasLastApplied bool
	LastApplied    decimal.Decimal
}

// Decision is what the executor should do for a token this cycle.
type Decision struct {
	Action       Action
	ListingPrice decimal.Decimal
	Reason       string
}

// Decide applies the per-token decision rule, in order:
//  1. no floor price -> skip
//  2. eligible bid whose net proceeds beat priceMin, with a positive gas
//     estimate -> accept the bid (and do not also list)
//  3. otherwise list at the undercut price unless debounced against the
//     last applied listing price.
func Decide(in Inputs) Decision {
	if in.Floor.IsZero() || in.Floor.IsNegative() {
		return Decision{Action: ActionSkip, Reason: "no floor price"}
	}

	if in.HasBid && in.GasKnown && in.NetProceeds.GreaterThan(in.PriceMin) {
		return Decision{Action: ActionAcceptBid, Reason: "net proceeds above minimum"}
	}

	listing := ListingPrice(in.Floor, in.PriceMin)
	if in.HasLastApplied {
		last := in.LastApplied.Round(PriceDecimals)
		if last.Equal(listing) {
			return Decision{Action: ActionSkip, ListingPrice: listing, Reason: "listing price unchanged"}
		}
		if last.Equal(in.PriceMin.Round(PriceDecimals)) {
			return Decision{Action: ActionSkip, ListingPrice: listing, Reason: "already listed at price floor"}
		}
	}
	return Decision{Action: ActionList, ListingPrice: listing}
}
