package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/polyarb/arb-monitor/pkg/types"
	"go.uber.org/zap"
)

func newTestClient(gammaURL, clobURL string) *Client {
	return NewClient(&Config{
		GammaURL: gammaURL,
		ClobURL:  clobURL,
		Logger:   zap.NewNop(),
	})
}

func marketJSON(id string, volume float64, closed bool) map[string]any {
	return map[string]any{
		"id":            id,
		"conditionId":   "cond-" + id,
		"question":      "Will market " + id + " resolve yes?",
		"outcomes":      `["Yes", "No"]`,
		"outcomePrices": `["0.5", "0.5"]`,
		"volume":        fmt.Sprintf("%f", volume),
		"closed":        closed,
	}
}

func TestFetchMarketsPagination(t *testing.T) {
	var requests []int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		requests = append(requests, offset)

		// Serve 250 markets total across pages.
		var page []map[string]any
		for i := offset; i < offset+limit && i < 250; i++ {
			page = append(page, marketJSON(fmt.Sprintf("m%d", i), 20000, false))
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	markets := client.FetchMarkets(context.Background(), 250, 0, true, 0)

	if len(markets) != 250 {
		t.Fatalf("markets = %d, want 250", len(markets))
	}
	if len(requests) != 3 {
		t.Fatalf("requests = %d (%v), want 3 pages", len(requests), requests)
	}
	if requests[0] != 0 || requests[1] != 100 || requests[2] != 200 {
		t.Errorf("page offsets = %v", requests)
	}
}

func TestFetchMarketsAdvancesPastFullyFilteredPages(t *testing.T) {
	var requests []int

	// 150 markets, every one below the volume floor. The listing is
	// volume-descending in production, so whole pages past the cutoff
	// failing the filter is the normal case, not a corner.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		requests = append(requests, offset)

		var page []map[string]any
		for i := offset; i < offset+limit && i < 150; i++ {
			page = append(page, marketJSON(fmt.Sprintf("m%d", i), 100, false))
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	markets := client.FetchMarkets(context.Background(), 500, 0, true, 10000)

	if len(markets) != 0 {
		t.Fatalf("markets = %d, want 0", len(markets))
	}
	// The offset must keep moving even though no market survived, ending
	// at the short page rather than refetching offset 0 forever.
	if len(requests) != 2 {
		t.Fatalf("requests = %d (%v), want 2 pages", len(requests), requests)
	}
	if requests[0] != 0 || requests[1] != 100 {
		t.Errorf("page offsets = %v, want [0 100]", requests)
	}
}

func TestFetchMarketsNoDuplicatesAcrossPartiallyFilteredPages(t *testing.T) {
	var requests []int

	// 200 markets, alternating above/below the volume floor, so every page
	// is half filtered.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		requests = append(requests, offset)

		var page []map[string]any
		for i := offset; i < offset+limit && i < 200; i++ {
			volume := 20000.0
			if i%2 == 1 {
				volume = 100
			}
			page = append(page, marketJSON(fmt.Sprintf("m%d", i), volume, false))
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	markets := client.FetchMarkets(context.Background(), 200, 0, true, 10000)

	if len(markets) != 100 {
		t.Fatalf("markets = %d, want 100 survivors", len(markets))
	}

	ids := make(map[string]bool, len(markets))
	for _, m := range markets {
		if ids[m.ID] {
			t.Fatalf("duplicate market %s in result", m.ID)
		}
		ids[m.ID] = true
	}

	if requests[0] != 0 || requests[1] != 100 {
		t.Errorf("page offsets = %v, want rows covered exactly once", requests)
	}
}

func TestFetchMarketsFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := []map[string]any{
			marketJSON("high-volume", 50000, false),
			marketJSON("low-volume", 100, false),
			marketJSON("closed", 80000, true),
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	markets := client.FetchMarkets(context.Background(), 100, 0, true, 10000)

	if len(markets) != 1 {
		t.Fatalf("markets = %d, want 1 after filtering", len(markets))
	}
	if markets[0].ID != "high-volume" {
		t.Errorf("surviving market = %s", markets[0].ID)
	}
}

func TestFetchMarketsSilentEmptyOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	markets := client.FetchMarkets(context.Background(), 100, 0, true, 0)

	if len(markets) != 0 {
		t.Fatalf("server error must yield empty result, got %d", len(markets))
	}
}

func TestFetchMarketsSilentEmptyOnUnreachableHost(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1", "http://127.0.0.1:1")
	markets := client.FetchMarkets(context.Background(), 100, 0, true, 0)

	if len(markets) != 0 {
		t.Fatalf("transport error must yield empty result, got %d", len(markets))
	}
}

func TestFetchTokenIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/m1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           "m1",
			"clobTokenIds": `["tok-yes", "tok-no"]`,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	tokens := client.FetchTokenIDs(context.Background(), types.Market{ID: "m1"})
	if len(tokens) != 2 || tokens[0] != "tok-yes" {
		t.Fatalf("tokens = %v", tokens)
	}

	// Missing markets degrade to nil, not an error.
	tokens = client.FetchTokenIDs(context.Background(), types.Market{ID: "missing"})
	if tokens != nil {
		t.Errorf("missing market must yield nil tokens, got %v", tokens)
	}
}

func TestFetchSpreadsAndMidpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["token_id"]
		var out []map[string]any
		switch r.URL.Path {
		case "/spreads":
			for i, id := range ids {
				out = append(out, map[string]any{"token_id": id, "spread": fmt.Sprintf("0.0%d", i+1)})
			}
		case "/midpoints":
			for _, id := range ids {
				out = append(out, map[string]any{"token_id": id, "price": "0.47"})
			}
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	spreads := client.FetchSpreads(context.Background(), []string{"a", "b"})
	if len(spreads) != 2 {
		t.Fatalf("spreads = %v", spreads)
	}
	if spreads["a"] != 0.01 || spreads["b"] != 0.02 {
		t.Errorf("spreads = %v", spreads)
	}

	mids := client.FetchMidpoints(context.Background(), []string{"a"})
	if mids["a"] != 0.47 {
		t.Errorf("midpoints = %v", mids)
	}

	// Empty input short-circuits without a request.
	if got := client.FetchSpreads(context.Background(), nil); len(got) != 0 {
		t.Errorf("empty input must yield empty map, got %v", got)
	}
}
