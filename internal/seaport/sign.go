package seaport

import (
	"strconv"

	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

func fmtInt(v int) string { return strconv.Itoa(v) }

// orderTypes is the canonical Seaport three-type schema. The exchange
// verifies signatures against exactly this structure; any drift invalidates
// every order produced.
var orderTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"OrderComponents": {
		{Name: "offerer", Type: "address"},
		{Name: "zone", Type: "address"},
		{Name: "offer", Type: "OfferItem[]"},
		{Name: "consideration", Type: "ConsiderationItem[]"},
		{Name: "orderType", Type: "uint8"},
		{Name: "startTime", Type: "uint256"},
		{Name: "endTime", Type: "uint256"},
		{Name: "zoneHash", Type: "bytes32"},
		{Name: "salt", Type: "uint256"},
		{Name: "conduitKey", Type: "bytes32"},
		{Name: "counter", Type: "uint256"},
	},
	"OfferItem": {
		{Name: "itemType", Type: "uint8"},
		{Name: "token", Type: "address"},
		{Name: "identifierOrCriteria", Type: "uint256"},
		{Name: "startAmount", Type: "uint256"},
		{Name: "endAmount", Type: "uint256"},
	},
	"ConsiderationItem": {
		{Name: "itemType", Type: "uint8"},
		{Name: "token", Type: "address"},
		{Name: "identifierOrCriteria", Type: "uint256"},
		{Name: "startAmount", Type: "uint256"},
		{Name: "endAmount", Type: "uint256"},
		{Name: "recipient", Type: "address"},
	},
}

// TypedData wraps order components in the fixed Seaport signing domain for
// the given chain.
func TypedData(order *OrderComponents, chainID int64) apitypes.TypedData {
	offer := make([]any, 0, len(order.Offer))
	for _, item := range order.Offer {
		offer = append(offer, map[string]any{
			"itemType":             fmtInt(item.ItemType),
			"token":                item.Token,
			"identifierOrCriteria": item.IdentifierOrCriteria,
			"startAmount":          item.StartAmount,
			"endAmount":            item.EndAmount,
		})
	}

	consideration := make([]any, 0, len(order.Consideration))
	for _, item := range order.Consideration {
		consideration = append(consideration, map[string]any{
			"itemType":             fmtInt(item.ItemType),
			"token":                item.Token,
			"identifierOrCriteria": item.IdentifierOrCriteria,
			"startAmount":          item.StartAmount,
			"endAmount":            item.EndAmount,
			"recipient":            item.Recipient,
		})
	}

	return apitypes.TypedData{
		Types:       orderTypes,
		PrimaryType: "OrderComponents",
		Domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			Version:           DomainVersion,
			ChainId:           ethmath.NewHexOrDecimal256(chainID),
			VerifyingContract: VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"offerer":       order.Offerer,
			"zone":          order.Zone,
			"offer":         offer,
			"consideration": consideration,
			"orderType":     fmtInt(order.OrderType),
			"startTime":     order.StartTime,
			"endTime":       order.EndTime,
			"zoneHash":      order.ZoneHash,
			"salt":          order.Salt,
			"conduitKey":    order.ConduitKey,
			"counter":       order.Counter,
		},
	}
}
