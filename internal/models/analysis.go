// Package models defines data structures for Stratview
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Defaults applied when an incoming parameter is absent. The metric defaults
// are textual because substitution happens before numeric conversion.
const (
	DefaultExpectedReturn = "12"
	DefaultSharpeRatio    = "1.4"
	DefaultStrategyLabel  = "Strategy Implementation"
)

// RootRoute is the route targeted by the root navigation action.
const RootRoute = "/"

// AllocationEntry is a single asset weight within a strategy allocation.
type AllocationEntry struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Allocation is an ordered mapping of asset label to allocation percentage.
// Order matters: chart colors are assigned by entry position, so JSON object
// key order is preserved through decode and encode.
type Allocation []AllocationEntry

// DefaultAllocation returns the fixed fallback strategy substituted when the
// incoming payload cannot be decoded.
func DefaultAllocation() Allocation {
	return Allocation{
		{Label: "ETH", Value: 33},
		{Label: "USDC", Value: 33},
		{Label: "LINK", Value: 34},
	}
}

// UnmarshalJSON decodes a JSON object into an ordered allocation. Values may
// be numbers or numeric strings; anything else coerces to 0.
func (a *Allocation) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("allocation: expected object, got %v", tok)
	}

	entries := make(Allocation, 0, 4)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("allocation: unexpected key token %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		entries = append(entries, AllocationEntry{Label: key, Value: coerceAllocationValue(raw)})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = entries
	return nil
}

// MarshalJSON re-emits the allocation as a JSON object in entry order.
func (a Allocation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val := e.Value
		if math.IsNaN(val) || math.IsInf(val, 0) {
			val = 0
		}
		buf.WriteString(strconv.FormatFloat(val, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Total returns the sum of all entry values. The component does not enforce
// that allocations sum to 100.
func (a Allocation) Total() float64 {
	var sum float64
	for _, e := range a {
		sum += e.Value
	}
	return sum
}

// coerceAllocationValue converts a raw JSON value to float64: numbers pass
// through, numeric strings are parsed, everything else is 0.
func coerceAllocationValue(raw json.RawMessage) float64 {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return 0
}

// Scalar is a float64 that tolerates number-or-string JSON input and keeps
// NaN representable on output (marshalled as the string "NaN"). Malformed
// metric inputs propagate as NaN rather than being masked.
type Scalar float64

// IsNaN reports whether the scalar is NaN.
func (s Scalar) IsNaN() bool {
	return math.IsNaN(float64(s))
}

// MarshalJSON encodes the scalar, representing NaN and infinities as "NaN".
func (s Scalar) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal("NaN")
	}
	return json.Marshal(f)
}

// UnmarshalJSON accepts a number or a string. A string that fails numeric
// parsing yields NaN, not an error.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*s = Scalar(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			*s = Scalar(math.NaN())
			return nil
		}
		*s = Scalar(v)
		return nil
	}
	*s = Scalar(math.NaN())
	return nil
}

// ChartRecord is a shaped (label, value, color) triple ready for
// visualization, one per allocation entry. Value is a Scalar: a weight
// supplied as the literal string "NaN" parses to NaN, and the view must
// still encode.
type ChartRecord struct {
	Label          string `json:"label"`
	Value          Scalar `json:"value"`
	Color          string `json:"color"`
	LegendColor    string `json:"legend_color"`
	LegendFontSize int    `json:"legend_font_size"`
}

// ProjectionPoint is one point of the compound-growth projection series.
type ProjectionPoint struct {
	Label string `json:"label"`
	Value Scalar `json:"value"`
}

// BreakdownRow is one textual row of the allocation panel: color swatch,
// asset label, and the percentage rendered to one decimal place.
type BreakdownRow struct {
	Swatch  string `json:"swatch"`
	Label   string `json:"label"`
	Percent string `json:"percent"`
}

// MetricCard displays a single performance metric at fixed precision.
type MetricCard struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// BarValue is one bar of the metrics bar chart.
type BarValue struct {
	Label string `json:"label"`
	Value Scalar `json:"value"`
}

// AllocationPanel holds the pie records plus the per-asset breakdown rows.
type AllocationPanel struct {
	Records   []ChartRecord  `json:"records"`
	Breakdown []BreakdownRow `json:"breakdown"`
}

// MetricsPanel holds the two-bar visualization and the metric cards.
type MetricsPanel struct {
	ExpectedReturn Scalar       `json:"expected_return"`
	SharpeRatio    Scalar       `json:"sharpe_ratio"`
	Bars           []BarValue   `json:"bars"`
	Cards          []MetricCard `json:"cards"`
}

// GrowthPanel holds the 5-point projection series with its caption.
type GrowthPanel struct {
	Points   []ProjectionPoint `json:"points"`
	Currency string            `json:"currency"`
	Caption  string            `json:"caption"`
}

// NavigationIntent is an instruction to the routing collaborator. Type is
// either "back" (return to previous screen) or "navigate" (go to Route).
type NavigationIntent struct {
	Type  string `json:"type"`
	Route string `json:"route,omitempty"`
}

// BackIntent returns the "return to previous screen" intent.
func BackIntent() NavigationIntent {
	return NavigationIntent{Type: "back"}
}

// RootIntent returns the "navigate to application root" intent.
func RootIntent() NavigationIntent {
	return NavigationIntent{Type: "navigate", Route: RootRoute}
}

// AnalysisView is the complete rendered state of the analysis screen for one
// input-parameter tuple. It is derived fresh on every request and never
// persisted.
type AnalysisView struct {
	Label      string             `json:"label"`
	Allocation AllocationPanel    `json:"allocation"`
	Metrics    MetricsPanel       `json:"metrics"`
	Growth     GrowthPanel        `json:"growth"`
	Actions    []NavigationIntent `json:"actions"`
}
