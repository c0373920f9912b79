package opensea

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Fulfillment is everything needed to submit the on-chain transaction that
// accepts a bid.
type Fulfillment struct {
	To       common.Address
	From     common.Address
	Calldata []byte
	Chain    string
	// Nonce is a client-chosen identifier echoed to the exchange's
	// requested-transaction endpoint; it is not the account's tx nonce.
	Nonce int
}

type fulfillResp struct {
	Order struct {
		Fulfill struct {
			Actions []struct {
				Method struct {
					Data        string `json:"data"`
					Destination struct {
						Value string `json:"value"`
					} `json:"destination"`
					Chain struct {
						Identifier string `json:"identifier"`
					} `json:"chain"`
				} `json:"method"`
			} `json:"actions"`
		} `json:"fulfill"`
	} `json:"order"`
}

// FulfillmentData authenticates and asks the exchange for the calldata that
// fulfills the given bid against (contract, tokenID).
func (c *Client) FulfillmentData(ctx context.Context, orderID string, contract common.Address, tokenID string) (*Fulfillment, error) {
	session, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	variables := map[string]any{
		"orderId":        orderID,
		"itemFillAmount": "1",
		"takerAssetsForCriteria": map[string]any{
			"assetContractAddress": contract.Hex(),
			"tokenId":              tokenID,
			"chain":                "ETHEREUM",
		},
		"giftRecipientAddress": nil,
	}

	var resp fulfillResp
	if _, err := c.postGraphQL(ctx, fulfillQueryID, fulfillQuery, fulfillQuerySig, variables, session, &resp); err != nil {
		return nil, fmt.Errorf("fulfillment data for %s: %w", orderID, err)
	}

	actions := resp.Order.Fulfill.Actions
	if len(actions) == 0 {
		return nil, fmt.Errorf("fulfillment data for %s: no actions", orderID)
	}
	method := actions[0].Method
	if method.Data == "" || !common.IsHexAddress(method.Destination.Value) {
		return nil, fmt.Errorf("fulfillment data for %s: incomplete method", orderID)
	}

	return &Fulfillment{
		To:       common.HexToAddress(method.Destination.Value),
		From:     c.signer.Address(),
		Calldata: common.FromHex(method.Data),
		Chain:    method.Chain.Identifier,
		Nonce:    rand.Intn(1_000_000) + 1,
	}, nil
}

type requestedTxResp struct {
	UserTransaction struct {
		Request struct {
			RelayID string `json:"relayId"`
		} `json:"request"`
	} `json:"userTransaction"`
}

// CreateRequestedTransaction registers the pending fulfillment with the
// exchange backend and returns the server-side request id.
func (c *Client) CreateRequestedTransaction(ctx context.Context, f *Fulfillment) (string, error) {
	if f == nil {
		return "", fmt.Errorf("fulfillment required")
	}
	session, err := c.session(ctx)
	if err != nil {
		return "", err
	}

	variables := map[string]any{
		"calldata":    "0x" + common.Bytes2Hex(f.Calldata),
		"chain":       f.Chain,
		"fromAddress": strings.ToLower(f.From.Hex()),
		"toAddress":   strings.ToLower(f.To.Hex()),
		"nonce":       f.Nonce,
		"value":       "0",
	}

	var resp requestedTxResp
	if _, err := c.postGraphQL(ctx, requestedTxMutationID, requestedTxMutation, requestedTxSig, variables, session, &resp); err != nil {
		return "", fmt.Errorf("requested transaction: %w", err)
	}
	relayID := resp.UserTransaction.Request.RelayID
	if relayID == "" {
		return "", fmt.Errorf("requested transaction: empty relay id")
	}
	return relayID, nil
}
