package analysis

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/quantfold/stratview/internal/models"
)

// colorFromHex converts a "#RRGGBB" record color to a drawing color.
func colorFromHex(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// RenderAllocationPie renders a PNG pie chart from allocation chart records.
// Slice colors come from the records; labels carry the percentage to one
// decimal place. Returns raw PNG bytes.
func (s *Service) RenderAllocationPie(records []models.ChartRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("need at least 1 chart record, got 0")
	}

	values := make([]chart.Value, len(records))
	for i, rec := range records {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", rec.Label, float64(rec.Value)),
			Value: float64(rec.Value),
			Style: chart.Style{
				FillColor: colorFromHex(rec.Color),
				FontSize:  float64(rec.LegendFontSize),
				FontColor: colorFromHex(rec.LegendColor),
			},
		}
	}

	graph := chart.PieChart{
		Title:  "Asset Allocation",
		Width:  512,
		Height: 512,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("pie render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderMetricsBar renders a PNG bar chart with the two performance metrics:
// expected annual return and the Sharpe ratio.
func (s *Service) RenderMetricsBar(returnPct, ratio float64) ([]byte, error) {
	graph := chart.BarChart{
		Title:    "Performance Metrics",
		Width:    600,
		Height:   400,
		BarWidth: 80,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		Bars: []chart.Value{
			{
				Label: "Return %",
				Value: returnPct,
				Style: chart.Style{FillColor: colorFromHex(Palette[0])},
			},
			{
				Label: "Sharpe",
				Value: ratio,
				Style: chart.Style{FillColor: colorFromHex(Palette[1])},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("bar render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderGrowthLine renders a PNG line chart from the projection series.
// X-axis ticks carry the Now/1Y/../4Y labels; Y values are prefixed with the
// configured currency marker.
func (s *Service) RenderGrowthLine(points []models.ProjectionPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]float64, len(points))
	yValues := make([]float64, len(points))
	ticks := make([]chart.Tick, len(points))

	for i, p := range points {
		xValues[i] = float64(i)
		yValues[i] = float64(p.Value)
		ticks[i] = chart.Tick{Value: float64(i), Label: p.Label}
	}

	series := chart.ContinuousSeries{
		Name: "Projected Growth",
		Style: chart.Style{
			StrokeColor: colorFromHex(Palette[0]),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  "Projected Growth",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%s%.0f", s.currency, f)
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("line render failed: %w", err)
	}

	return buf.Bytes(), nil
}
