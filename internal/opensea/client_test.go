package opensea

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/ayenisholah/nft-listing-bot/internal/retry"
	"github.com/ayenisholah/nft-listing-bot/internal/seaport"
)

type stubSigner struct {
	addr   common.Address
	signed []string
}

func (s *stubSigner) Address() common.Address { return s.addr }

func (s *stubSigner) SignMessage(msg string) (string, error) {
	s.signed = append(s.signed, msg)
	return "0xsigned", nil
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *stubSigner) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	signer := &stubSigner{addr: common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")}
	c, err := NewClient("test-key", signer, Options{
		BaseURL:   srv.URL,
		RateLimit: 1000,
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, signer
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", nil, Options{}); err == nil {
		t.Fatal("expected error for empty api key")
	}
	if _, err := NewClient("k", nil, Options{BaseURL: "ftp://nope"}); err == nil {
		t.Fatal("expected error for non-http base url")
	}
}

func TestFloorPricePicksLowest(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/listings/collection/azuki/best") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-NFT-API-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		// Out of order on purpose; 1.5 ETH, 1.2 ETH, bad row.
		w.Write([]byte(`{"listings":[
			{"price":{"current":{"value":"1500000000000000000"}}},
			{"price":{"current":{"value":"1200000000000000000"}}},
			{"price":{"current":{"value":"garbage"}}}
		]}`))
	}))

	got := c.FloorPrice(context.Background(), "azuki")
	if want := decimal.RequireFromString("1.2"); !got.Equal(want) {
		t.Fatalf("floor = %s, want %s", got, want)
	}
}

func TestFloorPriceZeroOnFailure(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	if got := c.FloorPrice(context.Background(), "azuki"); !got.IsZero() {
		t.Fatalf("floor = %s, want zero on provider failure", got)
	}
}

func TestGetJSONRetriesTransientFailures(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "try again", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"listings":[{"price":{"current":{"value":"1000000000000000000"}}}]}`))
	}))
	c.retry = retry.Policy{Attempts: 3, Backoff: func(int) time.Duration { return 0 }}

	if got := c.FloorPrice(context.Background(), "azuki"); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("floor = %s after retries, want 1", got)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestCollectionFees(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fees":[
			{"fee":2.5,"recipient":"0x0000a26b00c1F0DF003000390027140000fAa719","required":true},
			{"fee":5,"recipient":"0x1111111111111111111111111111111111111111","required":true}
		]}`))
	}))

	fees := c.CollectionFees(context.Background(), "azuki")
	if fees == nil {
		t.Fatal("fees = nil")
	}
	if !fees.Enforced {
		t.Error("Enforced = false, want true")
	}
	if len(fees.Fees) != 1 {
		t.Fatalf("len(Fees) = %d, want 1", len(fees.Fees))
	}
	if fees.Fees[0].Bps != 500 {
		t.Errorf("Bps = %d, want 500", fees.Fees[0].Bps)
	}
	if fees.Fees[0].Recipient != common.HexToAddress("0x1111111111111111111111111111111111111111") {
		t.Errorf("unexpected recipient %s", fees.Fees[0].Recipient)
	}
}

func TestCollectionFeesNilOnError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	if fees := c.CollectionFees(context.Background(), "azuki"); fees != nil {
		t.Fatalf("fees = %+v, want nil on provider failure", fees)
	}
}

func TestCollectionFeesSingleEntry(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fees":[{"fee":2.5,"recipient":"0x0000a26b00c1F0DF003000390027140000fAa719","required":true}]}`))
	}))
	fees := c.CollectionFees(context.Background(), "azuki")
	if fees == nil {
		t.Fatal("fees = nil")
	}
	if len(fees.Fees) != 0 || fees.Enforced {
		t.Fatalf("fees = %+v, want empty schedule when only the platform fee is listed", fees)
	}
}

func TestBidsFiltersAndSorts(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != graphqlPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-signed-query") != ordersQuerySignature {
			t.Errorf("missing signed-query header")
		}
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ID != ordersQueryID {
			t.Errorf("query id = %s", req.ID)
		}
		w.Write([]byte(`{"data":{"orders":{"edges":[
			{"node":{"relayId":"b","maker":{"address":"0x2222222222222222222222222222222222222222"},"perUnitPriceType":{"eth":"1.4"},"payment":{"symbol":"WETH"}}},
			{"node":{"relayId":"a","maker":{"address":"0x3333333333333333333333333333333333333333"},"perUnitPriceType":{"eth":"1.4"},"payment":{"symbol":"WETH"}}},
			{"node":{"relayId":"c","maker":{"address":"0x4444444444444444444444444444444444444444"},"perUnitPriceType":{"eth":"2.0"},"payment":{"symbol":"USDC"}}},
			{"node":{"relayId":"d","maker":{"address":"0x5555555555555555555555555555555555555555"},"perUnitPriceType":{"eth":"1.6"},"payment":{"symbol":"WETH"}}}
		]}}}`))
	}))

	bids := c.Bids(context.Background(), "azuki", common.HexToAddress("0xED5AF388653567Af2F388E6224dC7C4b3241C544"), "42")
	if len(bids) != 3 {
		t.Fatalf("len(bids) = %d, want 3 (USDC bid dropped)", len(bids))
	}
	if !bids[0].Price.Equal(decimal.RequireFromString("1.6")) {
		t.Errorf("best bid = %s, want 1.6", bids[0].Price)
	}
	// Ties resolved by order id for a deterministic pick.
	if bids[1].OrderID != "a" || bids[2].OrderID != "b" {
		t.Errorf("tie order = %s, %s, want a, b", bids[1].OrderID, bids[2].OrderID)
	}
}

func TestBidsNilOnGraphQLError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null,"errors":[{"message":"rate limited"}]}`))
	}))
	if bids := c.Bids(context.Background(), "azuki", common.Address{}, "1"); bids != nil {
		t.Fatalf("bids = %v, want nil on provider failure", bids)
	}
}

func graphqlMux(t *testing.T, handlers map[string]func(w http.ResponseWriter, req graphqlRequest, r *http.Request)) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		h, ok := handlers[req.ID]
		if !ok {
			t.Errorf("unexpected query %s", req.ID)
			http.Error(w, "unknown query", http.StatusBadRequest)
			return
		}
		h(w, req, r)
	})
}

func TestSessionLoginFlow(t *testing.T) {
	const loginMsg = "Welcome to OpenSea!"
	c, signer := newTestClient(t, graphqlMux(t, map[string]func(http.ResponseWriter, graphqlRequest, *http.Request){
		challengeQueryID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			w.Write([]byte(`{"data":{"auth":{"loginMessage":"` + loginMsg + `"}}}`))
		},
		loginMutationID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			vars := req.Variables.(map[string]any)
			if vars["signature"] != "0xsigned" {
				t.Errorf("signature = %v", vars["signature"])
			}
			if vars["deviceId"] == "" {
				t.Error("deviceId not set")
			}
			w.Header().Add("Set-Cookie", "sessionId=abc123; Path=/; HttpOnly")
			w.Header().Add("Set-Cookie", "csrftoken=xyz; Path=/")
			w.Write([]byte(`{"data":{"auth":{"loginV2":{"address":"0xf39f","isEmployee":false}}}}`))
		},
	}))

	session, err := c.session(context.Background())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if session != "sessionId=abc123; csrftoken=xyz" {
		t.Fatalf("session = %q", session)
	}
	if len(signer.signed) != 1 || signer.signed[0] != loginMsg {
		t.Fatalf("signed messages = %v", signer.signed)
	}
}

func TestSessionFailsWithoutCookies(t *testing.T) {
	c, _ := newTestClient(t, graphqlMux(t, map[string]func(http.ResponseWriter, graphqlRequest, *http.Request){
		challengeQueryID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			w.Write([]byte(`{"data":{"auth":{"loginMessage":"msg"}}}`))
		},
		loginMutationID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			w.Write([]byte(`{"data":{"auth":{"loginV2":{"address":"0xf39f","isEmployee":false}}}}`))
		},
	}))
	if _, err := c.session(context.Background()); err == nil {
		t.Fatal("expected error when login returns no cookies")
	}
}

func TestFulfillmentData(t *testing.T) {
	var sawCookie bool
	c, _ := newTestClient(t, graphqlMux(t, map[string]func(http.ResponseWriter, graphqlRequest, *http.Request){
		challengeQueryID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			w.Write([]byte(`{"data":{"auth":{"loginMessage":"msg"}}}`))
		},
		loginMutationID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			w.Header().Add("Set-Cookie", "sessionId=s1; Path=/")
			w.Write([]byte(`{"data":{"auth":{"loginV2":{"address":"0xf39f","isEmployee":false}}}}`))
		},
		fulfillQueryID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			sawCookie = r.Header.Get("Cookie") == "sessionId=s1"
			if r.Header.Get("x-auth-address") == "" {
				t.Error("x-auth-address not set on privileged call")
			}
			w.Write([]byte(`{"data":{"order":{"fulfill":{"actions":[
				{"method":{"data":"0xdeadbeef","destination":{"value":"0x1E0049783F008A0085193E00003D00cd54003c71"},"chain":{"identifier":"ETHEREUM"}}}
			]}}}}`))
		},
	}))

	f, err := c.FulfillmentData(context.Background(), "order-1", common.HexToAddress("0xED5AF388653567Af2F388E6224dC7C4b3241C544"), "42")
	if err != nil {
		t.Fatalf("FulfillmentData: %v", err)
	}
	if !sawCookie {
		t.Error("session cookie not replayed on fulfill query")
	}
	if f.To != common.HexToAddress("0x1E0049783F008A0085193E00003D00cd54003c71") {
		t.Errorf("To = %s", f.To)
	}
	if common.Bytes2Hex(f.Calldata) != "deadbeef" {
		t.Errorf("Calldata = %x", f.Calldata)
	}
	if f.Chain != "ETHEREUM" {
		t.Errorf("Chain = %s", f.Chain)
	}
	if f.Nonce < 1 || f.Nonce > 1_000_000 {
		t.Errorf("Nonce = %d out of range", f.Nonce)
	}
}

func TestFulfillmentDataNoActions(t *testing.T) {
	c, _ := newTestClient(t, graphqlMux(t, map[string]func(http.ResponseWriter, graphqlRequest, *http.Request){
		challengeQueryID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			w.Write([]byte(`{"data":{"auth":{"loginMessage":"msg"}}}`))
		},
		loginMutationID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			w.Header().Add("Set-Cookie", "sessionId=s1")
			w.Write([]byte(`{"data":{"auth":{"loginV2":{"address":"0xf39f","isEmployee":false}}}}`))
		},
		fulfillQueryID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			w.Write([]byte(`{"data":{"order":{"fulfill":{"actions":[]}}}}`))
		},
	}))
	if _, err := c.FulfillmentData(context.Background(), "order-1", common.Address{}, "1"); err == nil {
		t.Fatal("expected error when fulfill returns no actions")
	}
}

func TestCreateRequestedTransaction(t *testing.T) {
	c, _ := newTestClient(t, graphqlMux(t, map[string]func(http.ResponseWriter, graphqlRequest, *http.Request){
		challengeQueryID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			w.Write([]byte(`{"data":{"auth":{"loginMessage":"msg"}}}`))
		},
		loginMutationID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			w.Header().Add("Set-Cookie", "sessionId=s1")
			w.Write([]byte(`{"data":{"auth":{"loginV2":{"address":"0xf39f","isEmployee":false}}}}`))
		},
		requestedTxMutationID: func(w http.ResponseWriter, req graphqlRequest, r *http.Request) {
			vars := req.Variables.(map[string]any)
			if vars["calldata"] != "0xdeadbeef" {
				t.Errorf("calldata = %v", vars["calldata"])
			}
			if vars["value"] != "0" {
				t.Errorf("value = %v", vars["value"])
			}
			w.Write([]byte(`{"data":{"userTransaction":{"request":{"relayId":"relay-77"}}}}`))
		},
	}))

	relayID, err := c.CreateRequestedTransaction(context.Background(), &Fulfillment{
		To:       common.HexToAddress("0x1E0049783F008A0085193E00003D00cd54003c71"),
		From:     common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		Calldata: common.FromHex("0xdeadbeef"),
		Chain:    "ETHEREUM",
		Nonce:    12345,
	})
	if err != nil {
		t.Fatalf("CreateRequestedTransaction: %v", err)
	}
	if relayID != "relay-77" {
		t.Fatalf("relayId = %q", relayID)
	}
}

func TestSubmitListing(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var payload seaport.ListingPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.ProtocolAddress != strings.ToLower(seaport.VerifyingContract.Hex()) {
			t.Errorf("protocol_address = %s", payload.ProtocolAddress)
		}
		w.Write([]byte(`{}`))
	}))

	payload := &seaport.ListingPayload{
		Parameters:      &seaport.OrderComponents{Offerer: common.Address{}.Hex()},
		Signature:       "0xsig",
		ProtocolAddress: strings.ToLower(seaport.VerifyingContract.Hex()),
	}
	if err := c.SubmitListing(context.Background(), payload); err != nil {
		t.Fatalf("SubmitListing: %v", err)
	}
	if gotPath != listingsPath {
		t.Fatalf("path = %s, want %s", gotPath, listingsPath)
	}
}

func TestSubmitListingRejectsIncompletePayload(t *testing.T) {
	var hit bool
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.Write([]byte(`{}`))
	}))

	if err := c.SubmitListing(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil payload")
	}
	if err := c.SubmitListing(context.Background(), &seaport.ListingPayload{Parameters: &seaport.OrderComponents{}}); err == nil {
		t.Fatal("expected error for unsigned payload")
	}
	if hit {
		t.Fatal("incomplete payloads must not hit the network")
	}
}
