// Package analysis shapes parsed strategy parameters into the analysis view:
// per-slice chart records, the compound-growth projection series, and the
// assembled screen model.
package analysis

import (
	"fmt"
	"math"

	"github.com/quantfold/stratview/internal/common"
	"github.com/quantfold/stratview/internal/models"
)

// Palette is the fixed 4-color cyclic palette. Chart record colors are
// assigned by entry position, wrapping after four entries.
var Palette = [4]string{"#2563EB", "#10B981", "#F59E0B", "#EC4899"}

// Fixed legend text styling applied to every chart record.
const (
	LegendColor    = "#7F7F7F"
	LegendFontSize = 12
)

// ProjectionHorizon is the number of projected years beyond "Now".
const ProjectionHorizon = 4

// projectionLabels are the fixed x-axis labels of the growth panel.
var projectionLabels = [ProjectionHorizon + 1]string{"Now", "1Y", "2Y", "3Y", "4Y"}

// Input is the parsed parameter tuple the view is built from. Metrics may be
// NaN; NaN flows through shaping and formatting unchanged.
type Input struct {
	Allocation     models.Allocation
	ExpectedReturn float64
	SharpeRatio    float64
	Label          string
}

// Service shapes allocations and metrics into renderable view data.
type Service struct {
	logger   *common.Logger
	currency string
}

// NewService creates an analysis service. currency is the marker prefixed to
// projected values.
func NewService(logger *common.Logger, currency string) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if currency == "" {
		currency = "$"
	}
	return &Service{logger: logger, currency: currency}
}

// Currency returns the configured currency marker.
func (s *Service) Currency() string {
	return s.currency
}

// ChartRecords produces one chart record per allocation entry, preserving
// entry order and cycling through the palette by position.
func (s *Service) ChartRecords(alloc models.Allocation) []models.ChartRecord {
	records := make([]models.ChartRecord, len(alloc))
	for i, entry := range alloc {
		records[i] = models.ChartRecord{
			Label:          entry.Label,
			Value:          models.Scalar(entry.Value),
			Color:          Palette[i%len(Palette)],
			LegendColor:    LegendColor,
			LegendFontSize: LegendFontSize,
		}
	}
	return records
}

// ProjectionSeries computes the 5-point compound-growth series for the given
// expected annual return percentage: index 0 is fixed at 100, index i is
// 100 × (1+r/100)^i. Total for all inputs, NaN included.
func (s *Service) ProjectionSeries(returnPct float64) []models.ProjectionPoint {
	points := make([]models.ProjectionPoint, ProjectionHorizon+1)
	points[0] = models.ProjectionPoint{Label: projectionLabels[0], Value: 100}
	for i := 1; i <= ProjectionHorizon; i++ {
		points[i] = models.ProjectionPoint{
			Label: projectionLabels[i],
			Value: models.Scalar(100 * math.Pow(1+returnPct/100, float64(i))),
		}
	}
	return points
}

// BuildView assembles the complete analysis view for one input tuple.
func (s *Service) BuildView(in Input) *models.AnalysisView {
	records := s.ChartRecords(in.Allocation)

	breakdown := make([]models.BreakdownRow, len(records))
	for i, rec := range records {
		breakdown[i] = models.BreakdownRow{
			Swatch:  rec.Color,
			Label:   rec.Label,
			Percent: common.FormatPct(float64(rec.Value)),
		}
	}

	view := &models.AnalysisView{
		Label: in.Label,
		Allocation: models.AllocationPanel{
			Records:   records,
			Breakdown: breakdown,
		},
		Metrics: models.MetricsPanel{
			ExpectedReturn: models.Scalar(in.ExpectedReturn),
			SharpeRatio:    models.Scalar(in.SharpeRatio),
			Bars: []models.BarValue{
				{Label: "Return %", Value: models.Scalar(in.ExpectedReturn)},
				{Label: "Sharpe", Value: models.Scalar(in.SharpeRatio)},
			},
			Cards: []models.MetricCard{
				{Title: "Expected Return", Value: common.FormatPct(in.ExpectedReturn)},
				{Title: "Sharpe Ratio", Value: common.FormatRatio(in.SharpeRatio)},
			},
		},
		Growth: models.GrowthPanel{
			Points:   s.ProjectionSeries(in.ExpectedReturn),
			Currency: s.currency,
			Caption:  fmt.Sprintf("Assumes %s annual return", common.FormatPct(in.ExpectedReturn)),
		},
		Actions: []models.NavigationIntent{
			models.BackIntent(),
			models.RootIntent(),
		},
	}

	s.logger.Debug().
		Int("assets", len(records)).
		Float64("expected_return", in.ExpectedReturn).
		Float64("sharpe_ratio", in.SharpeRatio).
		Msg("Built analysis view")

	return view
}
