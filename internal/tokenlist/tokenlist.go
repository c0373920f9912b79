// Package tokenlist reads the CSV of tracked tokens. The file is re-read at
// the start of every cycle so edits take effect without a restart.
package tokenlist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Token is one tracked (collection, token) entry with its price targets.
type Token struct {
	Slug            string
	ContractAddress common.Address
	TokenID         string
	// BuyPrice is the price below which the operator is unwilling to sell.
	BuyPrice decimal.Decimal
	// Margin is the minimum amount above BuyPrice required to accept a bid.
	Margin decimal.Decimal
}

var columns = []string{"slug", "contractAddress", "tokenId", "buyPrice", "margin"}

// Load reads and validates the token list at path.
func Load(path string) ([]Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token list: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the token list CSV from r. The first row must be the header
// slug,contractAddress,tokenId,buyPrice,margin.
func Parse(r io.Reader) ([]Token, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read token list header: %w", err)
	}
	if len(header) != len(columns) {
		return nil, fmt.Errorf("token list header has %d columns, want %d (%s)", len(header), len(columns), strings.Join(columns, ","))
	}
	for i, want := range columns {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("token list column %d is %q, want %q", i, header[i], want)
		}
	}

	var out []Token
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("token list line %d: %w", line, err)
		}

		tok, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("token list line %d: %w", line, err)
		}
		out = append(out, tok)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("token list is empty")
	}
	return out, nil
}

func parseRecord(rec []string) (Token, error) {
	slug := strings.TrimSpace(rec[0])
	if slug == "" {
		return Token{}, fmt.Errorf("slug required")
	}

	addr := strings.TrimSpace(rec[1])
	if !common.IsHexAddress(addr) {
		return Token{}, fmt.Errorf("invalid contract address %q", addr)
	}

	tokenID := strings.TrimSpace(rec[2])
	if tokenID == "" {
		return Token{}, fmt.Errorf("tokenId required")
	}

	buyPrice, err := decimal.NewFromString(strings.TrimSpace(rec[3]))
	if err != nil {
		return Token{}, fmt.Errorf("invalid buyPrice %q: %w", rec[3], err)
	}
	if buyPrice.IsNegative() {
		return Token{}, fmt.Errorf("negative buyPrice %q", rec[3])
	}

	margin := decimal.Zero
	if s := strings.TrimSpace(rec[4]); s != "" {
		margin, err = decimal.NewFromString(s)
		if err != nil {
			return Token{}, fmt.Errorf("invalid margin %q: %w", rec[4], err)
		}
		if margin.IsNegative() {
			return Token{}, fmt.Errorf("negative margin %q", rec[4])
		}
	}

	return Token{
		Slug:            slug,
		ContractAddress: common.HexToAddress(addr),
		TokenID:         tokenID,
		BuyPrice:        buyPrice,
		Margin:          margin,
	}, nil
}
