// Package params decodes the navigation parameters that drive the analysis
// view: a strategy allocation payload, two performance metrics, and a label.
// Decode failure is absorbed into a fixed fallback; nothing here panics or
// returns an error to the caller.
package params

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/quantfold/stratview/internal/common"
	"github.com/quantfold/stratview/internal/models"
)

// Request carries the raw parameter set as supplied by the caller. Fields
// are raw JSON so the strategy payload may arrive as a string-encoded object
// or as an object directly, and the metrics as numbers or strings.
type Request struct {
	AppliedStrategy json.RawMessage `json:"applied_strategy"`
	ExpectedReturn  json.RawMessage `json:"expected_return"`
	SharpeRatio     json.RawMessage `json:"sharpe_ratio"`
	StrategyLabel   string          `json:"strategy_label"`
}

// Parsed is the decoded parameter tuple handed to the data shaper. Metrics
// may be NaN; the allocation is always non-nil but may be empty.
type Parsed struct {
	Allocation     models.Allocation
	ExpectedReturn float64
	SharpeRatio    float64
	Label          string
}

// Parser decodes navigation parameters with fallback substitution.
type Parser struct {
	logger          *common.Logger
	validatePayload bool
}

// NewParser creates a parser. validatePayload enables the strict path for
// non-textual strategy payloads; leave it off to match upstream behavior.
func NewParser(logger *common.Logger, validatePayload bool) *Parser {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Parser{logger: logger, validatePayload: validatePayload}
}

// Parse decodes a full raw request.
func (p *Parser) Parse(req Request) Parsed {
	return Parsed{
		Allocation:     p.ParseStrategy(req.AppliedStrategy),
		ExpectedReturn: p.metric(req.ExpectedReturn, models.DefaultExpectedReturn),
		SharpeRatio:    p.metric(req.SharpeRatio, models.DefaultSharpeRatio),
		Label:          parseLabel(req.StrategyLabel),
	}
}

// ParseQuery decodes the flat query-parameter form, where every value is
// textual.
func (p *Parser) ParseQuery(q url.Values) Parsed {
	raw := q.Get("applied_strategy")

	var alloc models.Allocation
	if raw == "" {
		alloc = models.DefaultAllocation()
	} else {
		alloc = p.ParseStrategyText(raw)
	}

	return Parsed{
		Allocation:     alloc,
		ExpectedReturn: Coerce(q.Get("expected_return"), models.DefaultExpectedReturn).Value,
		SharpeRatio:    Coerce(q.Get("sharpe_ratio"), models.DefaultSharpeRatio).Value,
		Label:          parseLabel(q.Get("strategy_label")),
	}
}

// ParseStrategy decodes a strategy payload that may be a string-encoded JSON
// object, a JSON object directly, or something else entirely.
//
// The textual branch falls back to the default allocation on any decode
// failure. The non-textual branch passes the decoded value through without
// fallback; a non-object payload there yields an empty allocation unless
// strict validation is enabled.
func (p *Parser) ParseStrategy(raw json.RawMessage) models.Allocation {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.DefaultAllocation()
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to decode strategy payload string")
			return models.DefaultAllocation()
		}
		return p.ParseStrategyText(text)

	case '{':
		var alloc models.Allocation
		if err := json.Unmarshal(trimmed, &alloc); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to decode strategy payload object")
			if p.validatePayload {
				return models.DefaultAllocation()
			}
			return models.Allocation{}
		}
		if p.validatePayload && len(alloc) == 0 {
			p.logger.Warn().Msg("Strategy payload object is empty, substituting default")
			return models.DefaultAllocation()
		}
		return alloc

	default:
		// Non-textual, non-object payload. Upstream passes it through
		// unguarded, which surfaces as an empty allocation here.
		if p.validatePayload {
			p.logger.Warn().Str("payload", string(trimmed)).Msg("Strategy payload is not an object, substituting default")
			return models.DefaultAllocation()
		}
		p.logger.Debug().Str("payload", string(trimmed)).Msg("Strategy payload is not an object, passing through")
		return models.Allocation{}
	}
}

// ParseStrategyText decodes a textual strategy payload into an ordered
// allocation, substituting the default on decode failure or when the decoded
// value is not an object.
func (p *Parser) ParseStrategyText(s string) models.Allocation {
	if strings.TrimSpace(s) == "" {
		return models.DefaultAllocation()
	}

	var alloc models.Allocation
	if err := json.Unmarshal([]byte(s), &alloc); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to parse strategy payload")
		return models.DefaultAllocation()
	}
	return alloc
}

// metric converts a raw JSON metric to float64. Absent (nil or null) values
// take the textual default before conversion.
func (p *Parser) metric(raw json.RawMessage, def string) float64 {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Coerce("", def).Value
	}

	var s models.Scalar
	if err := s.UnmarshalJSON(trimmed); err != nil {
		return Coerce("", def).Value
	}
	return float64(s)
}

func parseLabel(s string) string {
	if s == "" {
		return models.DefaultStrategyLabel
	}
	return s
}
