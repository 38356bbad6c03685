package charts

import (
	"bytes"
	"fmt"
	"math"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/ivanoskov/finance_intake_bot/internal/service"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartGenerator рисует PNG графики для отчетов. Пустые данные дают nil без ошибки.
type ChartGenerator struct {
	width  int
	height int
}

// NewChartGenerator создает новый генератор графиков
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{width: 1200, height: 600}
}

func (g *ChartGenerator) background() chart.Style {
	return chart.Style{
		Padding: chart.Box{
			Top:    50,
			Left:   50,
			Right:  50,
			Bottom: 50,
		},
		FillColor: chart.ColorWhite,
	}
}

func axisStyle() chart.Style {
	return chart.Style{
		FontSize:  12,
		FontColor: chart.ColorBlack,
	}
}

func brlFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("R$ %.0f", f)
	}
	return ""
}

// valueRange всегда включает ноль и никогда не бывает вырожденным
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.1
	if lo < 0 {
		lo -= pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + pad}
}

const (
	barWidth   = 60
	barSpacing = 40
)

func bar(label string, value float64, color drawing.Color) chart.Value {
	return chart.Value{
		Label: label,
		Value: value,
		Style: chart.Style{
			StrokeColor: color,
			FillColor:   color,
			FontSize:    12,
			FontColor:   chart.ColorBlack,
		},
	}
}

func (g *ChartGenerator) renderBars(title string, bars []chart.Value) ([]byte, error) {
	values := make([]float64, len(bars))
	for i, b := range bars {
		values[i] = b.Value
	}

	graph := chart.BarChart{
		Title:        title,
		TitleStyle:   chart.Style{FontSize: 14, FontColor: chart.ColorBlack},
		Width:        max(g.width, len(bars)*(barWidth+barSpacing)+200),
		Height:       g.height,
		BarWidth:     barWidth,
		BarSpacing:   barSpacing,
		Background:   g.background(),
		XAxis:        axisStyle(),
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			ValueFormatter: brlFormatter,
			Style:          axisStyle(),
			Range:          valueRange(values),
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", title, err)
	}
	return buffer.Bytes(), nil
}

// Balance рисует доходы, расходы и баланс по месяцам
func (g *ChartGenerator) Balance(months []service.MonthBalance) ([]byte, error) {
	if len(months) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(months)*3)
	for _, m := range months {
		label := m.Month.Format("01/2006")
		balance := m.Balance().InexactFloat64()
		balanceColor := chart.ColorBlue
		if balance < 0 {
			balanceColor = chart.ColorOrange
		}
		bars = append(bars,
			bar("Ganhos "+label, m.Income.InexactFloat64(), chart.ColorGreen),
			bar("Gastos "+label, m.Expenses.InexactFloat64(), chart.ColorRed),
			bar("Saldo "+label, balance, balanceColor),
		)
	}
	return g.renderBars("Balanço mensal", bars)
}

// CategorySpending рисует траты по категориям; превышение лимита выделяется красным
func (g *ChartGenerator) CategorySpending(items []service.CategorySpending) ([]byte, error) {
	if len(items) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(items))
	for _, it := range items {
		color := chart.ColorBlue
		if it.OverLimit() {
			color = chart.ColorRed
		}
		bars = append(bars, bar(it.Name, it.Total.InexactFloat64(), color))
	}
	return g.renderBars("Gastos por categoria", bars)
}

// PaymentSpending рисует круговую диаграмму по способам оплаты
func (g *ChartGenerator) PaymentSpending(items []service.PaymentSpending) ([]byte, error) {
	total := 0.0
	for _, it := range items {
		total += it.Total.InexactFloat64()
	}
	if total <= 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(items))
	for _, it := range items {
		amount := it.Total.InexactFloat64()
		if amount <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", it.Name, model.FormatBRL(it.Total), amount/total*100),
			Value: amount,
			Style: axisStyle(),
		})
	}

	pie := chart.PieChart{
		Title:      "Gastos por forma de pagamento",
		Width:      800,
		Height:     800,
		Values:     values,
		Background: g.background(),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render payment chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// Combined рисует по месяцам столбцы, разбитые на пары категория/способ оплаты
func (g *ChartGenerator) Combined(months []service.MonthCombined) ([]byte, error) {
	colors := make(map[string]drawing.Color)
	colorFor := func(key string) drawing.Color {
		c, ok := colors[key]
		if !ok {
			c = chart.GetDefaultColor(len(colors))
			colors[key] = c
		}
		return c
	}

	var stacks []chart.StackedBar
	for _, m := range months {
		var values []chart.Value
		for _, cell := range m.Cells {
			if !cell.Total.IsPositive() {
				continue
			}
			key := cell.Category + " / " + cell.PaymentMethod
			color := colorFor(key)
			values = append(values, chart.Value{
				Label: key,
				Value: cell.Total.InexactFloat64(),
				Style: chart.Style{
					StrokeColor: color,
					FillColor:   color,
					FontSize:    10,
					FontColor:   chart.ColorBlack,
				},
			})
		}
		if len(values) > 0 {
			stacks = append(stacks, chart.StackedBar{
				Name:   m.Month.Format("01/2006"),
				Width:  80,
				Values: values,
			})
		}
	}
	if len(stacks) == 0 {
		return nil, nil
	}

	graph := chart.StackedBarChart{
		Title:      "Gastos mensais por categoria e forma de pagamento",
		TitleStyle: chart.Style{FontSize: 14, FontColor: chart.ColorBlack},
		Width:      g.width,
		Height:     g.height,
		Background: g.background(),
		XAxis:      axisStyle(),
		YAxis:      axisStyle(),
		Bars:       stacks,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render combined chart: %w", err)
	}
	return buffer.Bytes(), nil
}
