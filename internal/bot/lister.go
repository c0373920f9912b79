package bot

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/ayenisholah/nft-listing-bot/internal/seaport"
	"github.com/ayenisholah/nft-listing-bot/internal/tokenlist"
)

// list builds, signs and submits a fixed-price listing for the token.
func (b *Bot) list(ctx context.Context, t tokenlist.Token, price decimal.Decimal) error {
	fees := b.market.CollectionFees(ctx, t.Slug)
	if fees == nil {
		return fmt.Errorf("no fee data for collection %s", t.Slug)
	}

	// Approval failures are non-fatal: the listing is submitted regardless
	// and the approval is retried on a later cycle.
	if err := b.ensureApproval(ctx, t.ContractAddress); err != nil {
		log.Printf("[warn] %s: conduit approval: %v", t.Slug, err)
	}

	// The counter must be current at signing time.
	counter, err := seaport.Counter(ctx, b.chain, b.chain.Address())
	if err != nil {
		return err
	}

	priceWei, err := seaport.EtherToWei(price)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	order, err := seaport.BuildListing(seaport.ListingParams{
		Offerer:           b.chain.Address(),
		Token:             t.ContractAddress,
		TokenID:           t.TokenID,
		PriceWei:          priceWei,
		StartTime:         now,
		EndTime:           now + int64(b.cfg.ListingDuration.Seconds()),
		Salt:              rand.Int63(),
		Counter:           counter,
		EnforceCreatorFee: fees.Enforced,
		CreatorFees:       fees.Fees,
	})
	if err != nil {
		return err
	}

	signature, err := b.chain.SignTypedData(seaport.TypedData(order, b.chain.ChainID().Int64()))
	if err != nil {
		return fmt.Errorf("sign listing: %w", err)
	}

	return b.exchange.SubmitListing(ctx, &seaport.ListingPayload{
		Parameters:      order,
		Signature:       signature,
		ProtocolAddress: strings.ToLower(seaport.VerifyingContract.Hex()),
	})
}

// ensureApproval grants the marketplace conduit operator approval on the NFT
// contract if it does not have it yet. The result is memoized per contract;
// the approval transaction is waited on so the listing that follows can fill.
func (b *Bot) ensureApproval(ctx context.Context, nft common.Address) error {
	b.mu.Lock()
	done := b.approved[nft]
	b.mu.Unlock()
	if done {
		return nil
	}

	approved, err := seaport.IsApprovedForAll(ctx, b.chain, nft, b.chain.Address(), seaport.Conduit)
	if err != nil {
		return err
	}
	if !approved {
		log.Printf("[info] approving conduit on %s", nft.Hex())
		tx, err := b.chain.SendTransaction(ctx, nft, nil, seaport.SetApprovalForAllData(seaport.Conduit, true), 0)
		if err != nil {
			return err
		}
		if _, err := b.chain.WaitMined(ctx, tx); err != nil {
			return fmt.Errorf("approval tx %s: %w", tx.Hash().Hex(), err)
		}
		log.Printf("[info] conduit approved on %s (tx %s)", nft.Hex(), tx.Hash().Hex())
	}

	b.mu.Lock()
	b.approved[nft] = true
	b.mu.Unlock()
	return nil
}
