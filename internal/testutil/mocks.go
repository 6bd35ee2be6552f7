package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/polyarb/arb-monitor/pkg/types"
)

// MockGammaAPI simulates the Polymarket Gamma and CLOB APIs with one server.
// The Gamma side serves paginated market lists and per-market detail; the
// CLOB side serves batch spreads and midpoints.
type MockGammaAPI struct {
	*httptest.Server

	mu        sync.RWMutex
	markets   []types.GammaMarket
	spreads   map[string]float64
	midpoints map[string]float64

	// Request counters for assertions.
	MarketRequests int
	CLOBRequests   int
}

// NewMockGammaAPI creates a mock API serving the given markets.
func NewMockGammaAPI(markets []types.GammaMarket) *MockGammaAPI {
	mock := &MockGammaAPI{
		markets:   markets,
		spreads:   make(map[string]float64),
		midpoints: make(map[string]float64),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/markets", mock.handleMarkets)
	mux.HandleFunc("/markets/", mock.handleMarketDetail)
	mux.HandleFunc("/spreads", mock.handleTokenValues("spread"))
	mux.HandleFunc("/midpoints", mock.handleTokenValues("price"))

	mock.Server = httptest.NewServer(mux)
	return mock
}

// SetSpread sets the spread returned for a token id.
func (m *MockGammaAPI) SetSpread(tokenID string, spread float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spreads[tokenID] = spread
}

// SetMidpoint sets the midpoint price returned for a token id.
func (m *MockGammaAPI) SetMidpoint(tokenID string, mid float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.midpoints[tokenID] = mid
}

// SetMarkets replaces the served market list.
func (m *MockGammaAPI) SetMarkets(markets []types.GammaMarket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markets = markets
}

func (m *MockGammaAPI) handleMarkets(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.MarketRequests++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = len(m.markets)
	}

	page := []types.GammaMarket{}
	for i := offset; i < len(m.markets) && len(page) < limit; i++ {
		page = append(page, m.markets[i])
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func (m *MockGammaAPI) handleMarketDetail(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id := strings.TrimPrefix(r.URL.Path, "/markets/")
	for i := range m.markets {
		if m.markets[i].ID == id {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(m.markets[i])
			return
		}
	}

	http.NotFound(w, r)
}

func (m *MockGammaAPI) handleTokenValues(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.CLOBRequests++
		m.mu.Unlock()

		m.mu.RLock()
		defer m.mu.RUnlock()

		source := m.spreads
		if field == "price" {
			source = m.midpoints
		}

		values := []map[string]any{}
		for _, id := range r.URL.Query()["token_id"] {
			if v, ok := source[id]; ok {
				values = append(values, map[string]any{
					"token_id": id,
					field:      v,
				})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(values)
	}
}
