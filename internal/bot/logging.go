package bot

import (
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayenisholah/nft-listing-bot/internal/opensea"
	"github.com/ayenisholah/nft-listing-bot/internal/pricing"
	"github.com/ayenisholah/nft-listing-bot/internal/tokenlist"
)

// botEvent is one JSONL record in the decision log. Prices are ETH decimal
// strings.
type botEvent struct {
	TsMs  int64  `json:"ts_ms"`
	Event string `json:"event"` // start | decision | accept_bid | summary
	Mode  string `json:"mode,omitempty"`

	Slug     string `json:"slug,omitempty"`
	Contract string `json:"contract,omitempty"`
	TokenID  string `json:"token_id,omitempty"`

	Floor       string `json:"floor,omitempty"`
	PriceMin    string `json:"price_min,omitempty"`
	BestBid     string `json:"best_bid,omitempty"`
	NetProceeds string `json:"net_proceeds,omitempty"`
	GasCost     string `json:"gas_cost,omitempty"`

	Action       string `json:"action,omitempty"`
	ListingPrice string `json:"listing_price,omitempty"`
	Reason       string `json:"reason,omitempty"`

	OrderID string `json:"order_id,omitempty"`
	RelayID string `json:"relay_id,omitempty"`
	TxHash  string `json:"tx_hash,omitempty"`

	UptimeMs int64 `json:"uptime_ms,omitempty"`
}

func (b *Bot) mode() string {
	if b.cfg.DryRun {
		return "dry"
	}
	return "live"
}

func (b *Bot) writeEvent(ev botEvent) {
	if b.events == nil {
		return
	}
	if err := b.events.Write(ev); err != nil {
		log.Printf("[warn] decision log write failed: %v", err)
	}
}

func (b *Bot) logStart() {
	b.writeEvent(botEvent{
		TsMs:  time.Now().UnixMilli(),
		Event: "start",
		Mode:  b.mode(),
	})
}

func (b *Bot) logSummary() {
	b.writeEvent(botEvent{
		TsMs:     time.Now().UnixMilli(),
		Event:    "summary",
		Mode:     b.mode(),
		UptimeMs: time.Since(b.startedAt).Milliseconds(),
	})
}

func fmtPrice(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func (b *Bot) logDecision(t tokenlist.Token, in pricing.Inputs, d pricing.Decision, gasCost decimal.Decimal) {
	ev := botEvent{
		TsMs:         time.Now().UnixMilli(),
		Event:        "decision",
		Mode:         b.mode(),
		Slug:         t.Slug,
		Contract:     t.ContractAddress.Hex(),
		TokenID:      t.TokenID,
		Floor:        fmtPrice(in.Floor),
		PriceMin:     in.PriceMin.String(),
		GasCost:      fmtPrice(gasCost),
		Action:       d.Action.String(),
		ListingPrice: fmtPrice(d.ListingPrice),
		Reason:       d.Reason,
	}
	if in.HasBid {
		ev.BestBid = in.BestBid.String()
	}
	if in.GasKnown {
		ev.NetProceeds = in.NetProceeds.String()
	}
	b.writeEvent(ev)
}

func (b *Bot) logAccept(t tokenlist.Token, bid opensea.Bid, relayID, txHash string) {
	b.writeEvent(botEvent{
		TsMs:     time.Now().UnixMilli(),
		Event:    "accept_bid",
		Mode:     b.mode(),
		Slug:     t.Slug,
		Contract: t.ContractAddress.Hex(),
		TokenID:  t.TokenID,
		BestBid:  bid.Price.String(),
		OrderID:  bid.OrderID,
		RelayID:  relayID,
		TxHash:   txHash,
	})
}
