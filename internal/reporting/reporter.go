package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/conversation"
	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/ivanoskov/finance_intake_bot/internal/service"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Ledger - чтение данных для отчетов
type Ledger interface {
	Categories(ctx context.Context) ([]model.Category, error)
	BalanceByMonth(ctx context.Context, period model.Period) ([]service.MonthBalance, error)
	SpendingByCategory(ctx context.Context, filter service.ReportFilter) ([]service.CategorySpending, error)
	SpendingByPaymentMethod(ctx context.Context, filter service.ReportFilter) ([]service.PaymentSpending, error)
	MonthlyCombined(ctx context.Context, period model.Period) ([]service.MonthCombined, error)
	ExpenseLines(ctx context.Context, filter service.ReportFilter) ([]service.ExpenseLine, decimal.Decimal, error)
	CategoryMonthTotal(ctx context.Context, categoryID string, day time.Time) (decimal.Decimal, decimal.Decimal, error)
}

// Charts рисует PNG; nil без ошибки означает, что рисовать нечего
type Charts interface {
	Balance(months []service.MonthBalance) ([]byte, error)
	CategorySpending(items []service.CategorySpending) ([]byte, error)
	PaymentSpending(items []service.PaymentSpending) ([]byte, error)
	Combined(months []service.MonthCombined) ([]byte, error)
}

type CategoryFinder interface {
	Exact(ctx context.Context, text string) (*model.Category, error)
}

type PaymentMethodFinder interface {
	Resolve(ctx context.Context, text string) (*model.PaymentMethod, error)
}

const (
	msgNoData       = "📭 Não encontrei transações para esse período."
	msgReportFailed = "❌ Não consegui gerar o relatório agora. Tente novamente em instantes."
)

// maxListedExpenses ограничивает длину списка расходов в одном сообщении
const maxListedExpenses = 30

// Reporter строит текстовые и графические отчеты
type Reporter struct {
	ledger     Ledger
	charts     Charts
	categories CategoryFinder
	payments   PaymentMethodFinder
	now        func() time.Time
	log        zerolog.Logger
}

func NewReporter(ledger Ledger, charts Charts, categories CategoryFinder, payments PaymentMethodFinder, log zerolog.Logger) *Reporter {
	return &Reporter{
		ledger:     ledger,
		charts:     charts,
		categories: categories,
		payments:   payments,
		now:        time.Now,
		log:        log.With().Str("component", "reporter").Logger(),
	}
}

// Report отвечает на запрос отчета, распознанный в свободном тексте
func (r *Reporter) Report(ctx context.Context, intent model.Intent) []conversation.Reply {
	switch in := intent.(type) {
	case model.ShowBalanceIntent:
		return r.Balance(ctx, in.Period)
	case model.ShowCategoryChartIntent:
		return r.SpendingByCategory(ctx, in.PaymentMethod, in.Period)
	case model.ShowPaymentChartIntent:
		return r.SpendingByPaymentMethod(ctx, in.Category, in.Period)
	case model.ShowCombinedChartIntent:
		return r.MonthlyCombined(ctx, in.Period)
	case model.ListExpensesIntent:
		return r.ListExpenses(ctx, in.Category, in.Period)
	default:
		r.log.Error().Type("intent", intent).Msg("not a report intent")
		return text(msgReportFailed)
	}
}

func (r *Reporter) failed(ctx context.Context, err error, report string) []conversation.Reply {
	r.log.Error().Err(err).Str("report", report).Msg("report failed")
	return text(msgReportFailed)
}

func text(s string) []conversation.Reply {
	return []conversation.Reply{{Text: s}}
}

func withImage(body string, img []byte, name string) []conversation.Reply {
	if img == nil {
		return text(body)
	}
	return []conversation.Reply{{Text: body, Image: img, ImageName: name}}
}

func periodLabel(p model.Period) string {
	switch {
	case p.Start != nil && p.End != nil:
		return fmt.Sprintf(" (%s a %s)", model.FormatDate(*p.Start), model.FormatDate(*p.End))
	case p.Start != nil:
		return fmt.Sprintf(" (desde %s)", model.FormatDate(*p.Start))
	case p.End != nil:
		return fmt.Sprintf(" (até %s)", model.FormatDate(*p.End))
	default:
		return ""
	}
}

// Balance - доходы, расходы и баланс по месяцам
func (r *Reporter) Balance(ctx context.Context, period model.Period) []conversation.Reply {
	months, err := r.ledger.BalanceByMonth(ctx, period)
	if err != nil {
		return r.failed(ctx, err, "balance")
	}
	if len(months) == 0 {
		return text(msgNoData)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Balanço mensal%s\n", periodLabel(period))
	total := decimal.Zero
	for _, m := range months {
		total = total.Add(m.Balance())
		fmt.Fprintf(&b, "\n%s\n💰 Ganhos: %s\n💸 Gastos: %s\n📈 Saldo: %s\n",
			m.Month.Format("01/2006"), model.FormatBRL(m.Income), model.FormatBRL(m.Expenses), model.FormatBRL(m.Balance()))
	}
	fmt.Fprintf(&b, "\nSaldo total: %s", model.FormatBRL(total))

	img, err := r.charts.Balance(months)
	if err != nil {
		r.log.Warn().Err(err).Msg("balance chart failed")
	}
	return withImage(b.String(), img, "balanco.png")
}

// SpendingByCategory - траты по категориям с отметкой превышения лимита
func (r *Reporter) SpendingByCategory(ctx context.Context, paymentMethod string, period model.Period) []conversation.Reply {
	filter := service.ReportFilter{Period: period}
	title := "📊 Gastos por categoria"
	if paymentMethod = strings.TrimSpace(paymentMethod); paymentMethod != "" {
		pm, err := r.payments.Resolve(ctx, paymentMethod)
		if err != nil {
			return r.failed(ctx, err, "category_spending")
		}
		if pm == nil {
			return text(fmt.Sprintf("Não encontrei a forma de pagamento '%s'.", paymentMethod))
		}
		filter.PaymentMethodID = pm.ID
		title += " no " + pm.Name
	}

	items, err := r.ledger.SpendingByCategory(ctx, filter)
	if err != nil {
		return r.failed(ctx, err, "category_spending")
	}
	if len(items) == 0 {
		return text(msgNoData)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n\n", title, periodLabel(period))
	for _, it := range items {
		fmt.Fprintf(&b, "%s %s: %s", model.CategoryEmoji(it.Name), it.Name, model.FormatBRL(it.Total))
		if it.Limit.Valid {
			fmt.Fprintf(&b, " / limite %s", model.FormatBRL(it.Limit.Decimal))
			if it.OverLimit() {
				b.WriteString(" ⚠️")
			}
		}
		b.WriteString("\n")
	}

	img, err := r.charts.CategorySpending(items)
	if err != nil {
		r.log.Warn().Err(err).Msg("category chart failed")
	}
	return withImage(strings.TrimRight(b.String(), "\n"), img, "categorias.png")
}

// SpendingByPaymentMethod - траты по способам оплаты, опционально в одной категории
func (r *Reporter) SpendingByPaymentMethod(ctx context.Context, category string, period model.Period) []conversation.Reply {
	filter := service.ReportFilter{Period: period}
	title := "💳 Gastos por forma de pagamento"
	if category = strings.TrimSpace(category); category != "" {
		c, err := r.categories.Exact(ctx, category)
		if err != nil {
			return r.failed(ctx, err, "payment_spending")
		}
		if c == nil {
			return text(fmt.Sprintf("Não encontrei a categoria '%s'.", category))
		}
		filter.CategoryID = c.ID
		title += " em " + c.Name
	}

	items, err := r.ledger.SpendingByPaymentMethod(ctx, filter)
	if err != nil {
		return r.failed(ctx, err, "payment_spending")
	}
	if len(items) == 0 {
		return text(msgNoData)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n\n", title, periodLabel(period))
	for _, it := range items {
		fmt.Fprintf(&b, "%s: %s\n", it.Name, model.FormatBRL(it.Total))
	}

	img, err := r.charts.PaymentSpending(items)
	if err != nil {
		r.log.Warn().Err(err).Msg("payment chart failed")
	}
	return withImage(strings.TrimRight(b.String(), "\n"), img, "pagamentos.png")
}

// MonthlyCombined - траты по месяцам в разрезе категория x способ оплаты
func (r *Reporter) MonthlyCombined(ctx context.Context, period model.Period) []conversation.Reply {
	months, err := r.ledger.MonthlyCombined(ctx, period)
	if err != nil {
		return r.failed(ctx, err, "monthly_combined")
	}
	if len(months) == 0 {
		return text(msgNoData)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Gastos mensais por categoria e forma de pagamento%s\n", periodLabel(period))
	for _, m := range months {
		fmt.Fprintf(&b, "\n%s\n", m.Month.Format("01/2006"))
		for _, c := range m.Cells {
			fmt.Fprintf(&b, "• %s / %s: %s\n", c.Category, c.PaymentMethod, model.FormatBRL(c.Total))
		}
	}

	img, err := r.charts.Combined(months)
	if err != nil {
		r.log.Warn().Err(err).Msg("combined chart failed")
	}
	return withImage(strings.TrimRight(b.String(), "\n"), img, "mensal.png")
}

// ListExpenses - список расходов, опционально по одной категории
func (r *Reporter) ListExpenses(ctx context.Context, category string, period model.Period) []conversation.Reply {
	filter := service.ReportFilter{Period: period}
	if category = strings.TrimSpace(category); category != "" {
		c, err := r.categories.Exact(ctx, category)
		if err != nil {
			return r.failed(ctx, err, "list_expenses")
		}
		if c == nil {
			return text(fmt.Sprintf("Não encontrei a categoria '%s'.", category))
		}
		filter.CategoryID = c.ID
	}

	lines, total, err := r.ledger.ExpenseLines(ctx, filter)
	if err != nil {
		return r.failed(ctx, err, "list_expenses")
	}
	if len(lines) == 0 {
		return text(msgNoData)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Gastos%s\n\n", periodLabel(period))
	for i, l := range lines {
		if i == maxListedExpenses {
			fmt.Fprintf(&b, "... e mais %d gastos\n", len(lines)-maxListedExpenses)
			break
		}
		fmt.Fprintf(&b, "%s %s %s (%s)", model.FormatDate(l.Date), model.FormatBRL(l.Amount), l.Category, l.PaymentMethod)
		if l.Description != "" {
			fmt.Fprintf(&b, " - %s", l.Description)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTotal: %s", model.FormatBRL(total))
	return text(b.String())
}

// CategoryTotal - траты категории в текущем месяце в сравнении с прошлым
func (r *Reporter) CategoryTotal(ctx context.Context, category string) []conversation.Reply {
	c, err := r.categories.Exact(ctx, category)
	if err != nil {
		return r.failed(ctx, err, "category_total")
	}
	if c == nil {
		return text(fmt.Sprintf("Não encontrei a categoria '%s'.", strings.TrimSpace(category)))
	}

	current, previous, err := r.ledger.CategoryMonthTotal(ctx, c.ID, r.now())
	if err != nil {
		return r.failed(ctx, err, "category_total")
	}

	msg := fmt.Sprintf("%s %s este mês: %s", model.CategoryEmoji(c.Name), c.Name, model.FormatBRL(current))
	if change := service.FormatChange(current, previous); change != "" {
		msg += fmt.Sprintf("\nMês anterior: %s (%s)", model.FormatBRL(previous), change)
	}
	if c.MonthlyLimit.Valid {
		left := c.MonthlyLimit.Decimal.Sub(current)
		if left.IsNegative() {
			msg += fmt.Sprintf("\n⚠️ Limite de %s ultrapassado em %s", model.FormatBRL(c.MonthlyLimit.Decimal), model.FormatBRL(left.Neg()))
		} else {
			msg += fmt.Sprintf("\nRestam %s do limite de %s", model.FormatBRL(left), model.FormatBRL(c.MonthlyLimit.Decimal))
		}
	}
	return text(msg)
}

// Categories - список категорий с лимитами и синонимами
func (r *Reporter) Categories(ctx context.Context) []conversation.Reply {
	categories, err := r.ledger.Categories(ctx)
	if err != nil {
		return r.failed(ctx, err, "categories")
	}
	if len(categories) == 0 {
		return text("Nenhuma categoria cadastrada. Use /adicionar_categoria <nome> [limite].")
	}

	var b strings.Builder
	b.WriteString("📋 Categorias:\n\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "%s %s", model.CategoryEmoji(c.Name), c.Name)
		if c.MonthlyLimit.Valid {
			fmt.Fprintf(&b, " (limite %s)", model.FormatBRL(c.MonthlyLimit.Decimal))
		}
		if len(c.Aliases) > 0 {
			fmt.Fprintf(&b, " - atalhos: %s", strings.Join(c.Aliases, ", "))
		}
		b.WriteString("\n")
	}
	return text(strings.TrimRight(b.String(), "\n"))
}
