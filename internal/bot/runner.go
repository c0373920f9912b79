package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayenisholah/nft-listing-bot/internal/tokenlist"
)

// State is the scheduler's cycle phase.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateSettling
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSettling:
		return "settling"
	default:
		return "idle"
	}
}

// State reports the current cycle phase.
func (b *Bot) State() State { return State(b.state.Load()) }

func (b *Bot) setState(s State) { b.state.Store(int32(s)) }

// concurrency caps in-flight token evaluations at 1.5x the request budget;
// the client's rate limiter paces the actual calls underneath.
func (b *Bot) concurrency() int {
	n := int(b.cfg.RateLimit * 3 / 2)
	if n < 1 {
		n = 1
	}
	return n
}

// Run executes evaluation cycles until ctx is done. The token list is
// re-read at the start of every cycle; a list that cannot be loaded for the
// first cycle is an error, a mid-run load failure only skips that cycle.
// All tasks of a cycle settle before the next starts.
func (b *Bot) Run(ctx context.Context) error {
	b.logStart()
	defer b.logSummary()
	defer b.setState(StateIdle)

	limit := b.concurrency()
	log.Printf("[cfg] cycle delay %s, concurrency %d, rate %.1f req/s, dry-run %v",
		b.cfg.CycleDelay, limit, b.cfg.RateLimit, b.cfg.DryRun)

	for cycle := 1; ; cycle++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tokens, err := tokenlist.Load(b.cfg.TokensFile)
		if err != nil {
			// A list that never loaded is a config error; one that stops
			// loading mid-run is left to recover on a later cycle.
			if cycle == 1 {
				return fmt.Errorf("token list: %w", err)
			}
			log.Printf("[warn] cycle %d: token list: %v", cycle, err)
		} else {
			if cycle == 1 {
				logTokenSummary(tokens)
			}
			log.Printf("[info] cycle %d: evaluating %d tokens", cycle, len(tokens))

			b.setState(StateRunning)
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(limit)
			for _, t := range tokens {
				t := t
				g.Go(func() error {
					// One bad token must not take down its siblings or the
					// cycle.
					defer func() {
						if r := recover(); r != nil {
							log.Printf("[warn] %s #%s: task panic: %v", t.Slug, t.TokenID, r)
						}
					}()
					b.evaluate(gctx, t)
					return nil
				})
			}
			b.setState(StateSettling)
			// Tasks contain their own failures; Wait only observes ctx.
			_ = g.Wait()
			b.setState(StateIdle)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.cfg.CycleDelay):
		}
	}
}

func logTokenSummary(tokens []tokenlist.Token) {
	for _, t := range tokens {
		log.Printf("[cfg] token %s #%s (%s) buy=%s margin=%s",
			t.Slug, t.TokenID, t.ContractAddress.Hex(), t.BuyPrice, t.Margin)
	}
}
