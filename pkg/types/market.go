package types

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Status is the lifecycle state of a market.
type Status string

const (
	StatusActive   Status = "active"
	StatusClosed   Status = "closed"
	StatusResolved Status = "resolved"
)

// Outcome is a single possible resolution of a market. Price is the current
// implied probability, always clamped to [0, 1] at parse time.
type Outcome struct {
	Name   string
	Price  float64
	Volume float64
}

// Market is an immutable snapshot of a Polymarket market for one scan cycle.
// ConditionID is the stable identity key shared by all listings of the same
// underlying contract: two Market values with equal ConditionID are the same
// contract and must never be paired as two legs of an arbitrage.
type Market struct {
	ID          string
	ConditionID string
	Question    string
	Outcomes    []Outcome
	Volume      float64
	Liquidity   float64
	Status      Status
}

// ProbSum returns the sum of all outcome prices. In an efficient market this
// is ~1.0 minus spread.
func (m *Market) ProbSum() float64 {
	sum := 0.0
	for _, o := range m.Outcomes {
		sum += o.Price
	}
	return sum
}

// ProbImbalance returns how far ProbSum deviates from 1.0.
func (m *Market) ProbImbalance() float64 {
	return math.Abs(m.ProbSum() - 1.0)
}

// DefaultOutcomePrice is the documented fallback used when an outcome price
// is missing or unparseable.
const DefaultOutcomePrice = 0.5

// ClampPrice forces a probability-like price into [0, 1]. NaN falls back to
// DefaultOutcomePrice.
func ClampPrice(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return DefaultOutcomePrice
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// FlexFloat decodes a float that the API serves as either a JSON number or
// a quoted string. Unparseable values normalize to zero instead of failing
// the whole payload.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}

	*f = FlexFloat(v)
	return nil
}

// GammaMarket mirrors the wire format of the Gamma API /markets endpoint.
// Outcome names and prices arrive as JSON-encoded string arrays, and numeric
// fields arrive as either numbers or strings depending on the endpoint.
type GammaMarket struct {
	ID            string    `json:"id"`
	ConditionID   string    `json:"conditionId"`
	Question      string    `json:"question"`
	Outcomes      string    `json:"outcomes"`      // JSON string: "[\"Yes\", \"No\"]"
	OutcomePrices string    `json:"outcomePrices"` // JSON string: "[\"0.52\", \"0.49\"]"
	ClobTokenIDs  string    `json:"clobTokenIds"`  // JSON string: "[\"token1\", \"token2\"]"
	Volume        FlexFloat `json:"volume"`
	Liquidity     FlexFloat `json:"liquidity"`
	Closed        bool      `json:"closed"`
	Archived      bool      `json:"archived"`
	Active        bool      `json:"active"`
}

// ToMarket converts the wire representation into a Market snapshot.
// Malformed fields are normalized rather than rejected: out-of-range prices
// are clamped, missing prices default to DefaultOutcomePrice, and a missing
// conditionId falls back to the market id so the snapshot still carries a
// usable identity key.
func (g *GammaMarket) ToMarket() Market {
	names := parseStringArray(g.Outcomes)
	prices := parseStringArray(g.OutcomePrices)

	outcomes := make([]Outcome, 0, len(names))
	for i, name := range names {
		price := DefaultOutcomePrice
		if i < len(prices) {
			if p, err := strconv.ParseFloat(prices[i], 64); err == nil {
				price = ClampPrice(p)
			}
		}
		outcomes = append(outcomes, Outcome{Name: name, Price: price})
	}

	conditionID := g.ConditionID
	if conditionID == "" {
		conditionID = g.ID
	}

	status := StatusActive
	if g.Archived {
		status = StatusResolved
	} else if g.Closed {
		status = StatusClosed
	}

	return Market{
		ID:          g.ID,
		ConditionID: conditionID,
		Question:    g.Question,
		Outcomes:    outcomes,
		Volume:      nonNegative(float64(g.Volume)),
		Liquidity:   nonNegative(float64(g.Liquidity)),
		Status:      status,
	}
}

// TokenIDs returns the CLOB token ids embedded in the market payload, one
// per outcome. May be empty: not every market carries a token mapping.
func (g *GammaMarket) TokenIDs() []string {
	return parseStringArray(g.ClobTokenIDs)
}

// parseStringArray decodes a JSON-encoded string array. The Gamma API
// sometimes sends a bare string instead of an array; that degrades to a
// single-element result rather than an error.
func parseStringArray(raw string) []string {
	if raw == "" {
		return nil
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{raw}
	}
	return values
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
