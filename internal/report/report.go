package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
	"github.com/shopspring/decimal"
)

var (
	TitleStyle  = lipgloss.NewStyle().Bold(true)
	HelpStyle   = lipgloss.NewStyle().Faint(true)
	ErrorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})
}

// number renders v with a fixed number of decimal places.
func number(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// signalText marks directional categories with an arrow.
func signalText(s types.SignalCategory) string {
	switch s {
	case types.SignalStrongBullish, types.SignalBullish, types.SignalBuy, types.SignalOversold:
		return string(s) + " ▲"
	case types.SignalStrongBearish, types.SignalBearish, types.SignalSell, types.SignalOverbought:
		return string(s) + " ▼"
	default:
		return string(s)
	}
}

// RenderResult renders one indicator reading with its current values.
func RenderResult(r types.IndicatorResult) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s  %s", r.Indicator, signalText(r.Signal))))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(r.Message))
	b.WriteString("\n")

	t := newTable("Value", "Reading")

	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		t.Row(k, number(r.Values[k], utils.RatioPlaces))
	}

	b.WriteString(t.String())

	return b.String()
}

// RenderReport renders every indicator outcome followed by the aggregate signal.
func RenderReport(rep types.Report) string {
	t := newTable("Indicator", "Signal", "Value", "Message")

	for _, o := range rep.Outcomes {
		if !o.OK() {
			t.Row(strings.ToUpper(string(o.Name)), ErrorStyle.Render("ERROR"), "-", o.Err.Error())

			continue
		}

		t.Row(o.Result.Indicator, signalText(o.Result.Signal), number(o.Result.Value, utils.RatioPlaces), o.Result.Message)
	}

	return t.String() + "\n" + RenderSummary(rep.Summary)
}

// RenderSummary renders the aggregate recommendation.
func RenderSummary(s types.AggregateSignal) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Overall: %s", signalText(s.OverallSignal))))
	b.WriteString("\n")
	b.WriteString(s.Recommendation)
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(fmt.Sprintf("score %s from %d indicators, confidence %s%%",
		number(s.AverageScore, utils.PricePlaces), s.ValidIndicators, number(s.Confidence, utils.PricePlaces))))

	return b.String()
}

// RenderForecast renders the predicted closes against the last observed close.
func RenderForecast(f types.Forecast) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Forecast %s", f.RunID)))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(fmt.Sprintf("last close %s at %s",
		number(f.LastClose, utils.PricePlaces), f.LastTime.Format("2006-01-02 15:04"))))
	b.WriteString("\n")

	t := newTable("Step", "Time", "Close", "Change %")

	for _, s := range f.Steps {
		change := 0.0
		if f.LastClose != 0 {
			change = (s.Close - f.LastClose) / f.LastClose * 100
		}

		t.Row(fmt.Sprint(s.Step), s.Time.Format("2006-01-02 15:04"), number(s.Close, utils.PricePlaces), number(change, utils.PricePlaces))
	}

	b.WriteString(t.String())

	return b.String()
}

// RenderMetrics renders one-step evaluation metrics.
func RenderMetrics(m types.EvaluationMetrics) string {
	t := newTable("Metric", "Value")

	t.Row("samples", fmt.Sprint(m.Samples))
	t.Row("mse", number(m.MSE, utils.RatioPlaces))
	t.Row("mae", number(m.MAE, utils.RatioPlaces))
	t.Row("rmse", number(m.RMSE, utils.RatioPlaces))
	t.Row("mape %", number(m.MAPE, utils.PricePlaces))
	t.Row("r2", number(m.R2, utils.RatioPlaces))
	t.Row("directional accuracy %", number(m.DirectionalAccuracy, utils.PricePlaces))

	return t.String()
}
