package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/ivanoskov/finance_intake_bot/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// UnspecifiedPaymentLabel - подпись для расходов без способа оплаты
const UnspecifiedPaymentLabel = "NaoInformado"

// ReportFilter ограничивает данные отчета
type ReportFilter struct {
	Period          model.Period
	CategoryID      string
	PaymentMethodID string
}

func (f ReportFilter) transactionFilter() repository.TransactionFilter {
	return repository.TransactionFilter{
		StartDate:       f.Period.Start,
		EndDate:         f.Period.End,
		CategoryID:      f.CategoryID,
		PaymentMethodID: f.PaymentMethodID,
	}
}

// MonthBalance - доходы и расходы за месяц
type MonthBalance struct {
	Month    time.Time
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

func (m MonthBalance) Balance() decimal.Decimal {
	return m.Income.Sub(m.Expenses)
}

// CategorySpending - траты по категории относительно месячного лимита
type CategorySpending struct {
	CategoryID string
	Name       string
	Total      decimal.Decimal
	Limit      decimal.NullDecimal
}

func (c CategorySpending) OverLimit() bool {
	return c.Limit.Valid && c.Total.GreaterThan(c.Limit.Decimal)
}

// PaymentSpending - траты по способу оплаты
type PaymentSpending struct {
	Name  string
	Total decimal.Decimal
}

// CombinedCell - сумма трат для пары категория/способ оплаты
type CombinedCell struct {
	Category      string
	PaymentMethod string
	Total         decimal.Decimal
}

// MonthCombined - траты за месяц в разрезе категория x способ оплаты
type MonthCombined struct {
	Month time.Time
	Cells []CombinedCell
}

// ExpenseLine - расход с подставленными именами категории и способа оплаты
type ExpenseLine struct {
	model.Expense
	Category      string
	PaymentMethod string
}

type snapshot struct {
	expenses   []model.Expense
	incomes    []model.Income
	categories []model.Category
	methods    []model.PaymentMethod
}

func (s *snapshot) categoryName(id string) string {
	for _, c := range s.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return "?"
}

func (s *snapshot) methodName(id string) string {
	if id == "" {
		return UnspecifiedPaymentLabel
	}
	for _, m := range s.methods {
		if m.ID == id {
			return m.Name
		}
	}
	return UnspecifiedPaymentLabel
}

// load параллельно загружает данные, нужные отчету
func (s *ExpenseTracker) load(ctx context.Context, filter ReportFilter, withIncomes bool) (*snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		expenses, err := s.repo.GetExpenses(ctx, filter.transactionFilter())
		if err != nil {
			return fmt.Errorf("failed to get expenses: %w", err)
		}
		snap.expenses = expenses
		return nil
	})
	if withIncomes {
		g.Go(func() error {
			incomes, err := s.repo.GetIncomes(ctx, repository.FilterForPeriod(filter.Period))
			if err != nil {
				return fmt.Errorf("failed to get incomes: %w", err)
			}
			snap.incomes = incomes
			return nil
		})
	}
	g.Go(func() error {
		categories, err := s.repo.GetCategories(ctx)
		if err != nil {
			return fmt.Errorf("failed to get categories: %w", err)
		}
		snap.categories = categories
		return nil
	})
	g.Go(func() error {
		methods, err := s.repo.GetPaymentMethods(ctx)
		if err != nil {
			return fmt.Errorf("failed to get payment methods: %w", err)
		}
		snap.methods = methods
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func monthOf(t time.Time) time.Time {
	start, _ := model.MonthRange(t)
	return start
}

// BalanceByMonth возвращает доходы, расходы и баланс по месяцам в хронологическом порядке
func (s *ExpenseTracker) BalanceByMonth(ctx context.Context, period model.Period) ([]MonthBalance, error) {
	snap, err := s.load(ctx, ReportFilter{Period: period}, true)
	if err != nil {
		return nil, err
	}

	months := make(map[time.Time]*MonthBalance)
	get := func(t time.Time) *MonthBalance {
		m := monthOf(t)
		if months[m] == nil {
			months[m] = &MonthBalance{Month: m}
		}
		return months[m]
	}
	for _, e := range snap.expenses {
		mb := get(e.Date)
		mb.Expenses = mb.Expenses.Add(e.Amount)
	}
	for _, i := range snap.incomes {
		mb := get(i.Date)
		mb.Income = mb.Income.Add(i.Amount)
	}

	out := make([]MonthBalance, 0, len(months))
	for _, mb := range months {
		out = append(out, *mb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out, nil
}

// SpendingByCategory суммирует траты по категориям, по убыванию суммы
func (s *ExpenseTracker) SpendingByCategory(ctx context.Context, filter ReportFilter) ([]CategorySpending, error) {
	snap, err := s.load(ctx, filter, false)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, e := range snap.expenses {
		totals[e.CategoryID] = totals[e.CategoryID].Add(e.Amount)
	}

	var out []CategorySpending
	for _, c := range snap.categories {
		total, ok := totals[c.ID]
		if !ok {
			continue
		}
		out = append(out, CategorySpending{CategoryID: c.ID, Name: c.Name, Total: total, Limit: c.MonthlyLimit})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, nil
}

// SpendingByPaymentMethod суммирует траты по способам оплаты, по убыванию суммы
func (s *ExpenseTracker) SpendingByPaymentMethod(ctx context.Context, filter ReportFilter) ([]PaymentSpending, error) {
	snap, err := s.load(ctx, filter, false)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, e := range snap.expenses {
		name := snap.methodName(e.PaymentMethodID)
		if _, ok := totals[name]; !ok {
			order = append(order, name)
		}
		totals[name] = totals[name].Add(e.Amount)
	}

	out := make([]PaymentSpending, 0, len(order))
	for _, name := range order {
		out = append(out, PaymentSpending{Name: name, Total: totals[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, nil
}

// MonthlyCombined группирует траты по месяцам, а внутри месяца по паре категория/способ оплаты
func (s *ExpenseTracker) MonthlyCombined(ctx context.Context, period model.Period) ([]MonthCombined, error) {
	snap, err := s.load(ctx, ReportFilter{Period: period}, false)
	if err != nil {
		return nil, err
	}

	type key struct {
		month             time.Time
		category, payment string
	}
	totals := make(map[key]decimal.Decimal)
	for _, e := range snap.expenses {
		k := key{monthOf(e.Date), snap.categoryName(e.CategoryID), snap.methodName(e.PaymentMethodID)}
		totals[k] = totals[k].Add(e.Amount)
	}

	byMonth := make(map[time.Time][]CombinedCell)
	for k, total := range totals {
		byMonth[k.month] = append(byMonth[k.month], CombinedCell{Category: k.category, PaymentMethod: k.payment, Total: total})
	}

	out := make([]MonthCombined, 0, len(byMonth))
	for month, cells := range byMonth {
		sort.Slice(cells, func(i, j int) bool {
			if cells[i].Category != cells[j].Category {
				return cells[i].Category < cells[j].Category
			}
			return cells[i].PaymentMethod < cells[j].PaymentMethod
		})
		out = append(out, MonthCombined{Month: month, Cells: cells})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out, nil
}

// ExpenseLines возвращает расходы с именами категорий и способов оплаты и их общую сумму
func (s *ExpenseTracker) ExpenseLines(ctx context.Context, filter ReportFilter) ([]ExpenseLine, decimal.Decimal, error) {
	snap, err := s.load(ctx, filter, false)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	lines := make([]ExpenseLine, 0, len(snap.expenses))
	for _, e := range snap.expenses {
		total = total.Add(e.Amount)
		lines = append(lines, ExpenseLine{
			Expense:       e,
			Category:      snap.categoryName(e.CategoryID),
			PaymentMethod: snap.methodName(e.PaymentMethodID),
		})
	}
	return lines, total, nil
}

// CategoryMonthTotal возвращает траты по категории за месяц, содержащий day, и за предыдущий месяц
func (s *ExpenseTracker) CategoryMonthTotal(ctx context.Context, categoryID string, day time.Time) (decimal.Decimal, decimal.Decimal, error) {
	start, end := model.MonthRange(day)
	prevStart, prevEnd := model.MonthRange(start.AddDate(0, 0, -1))

	expenses, err := s.repo.GetExpenses(ctx, repository.TransactionFilter{
		StartDate:  &prevStart,
		EndDate:    &end,
		CategoryID: categoryID,
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to get expenses: %w", err)
	}

	current, previous := decimal.Zero, decimal.Zero
	for _, e := range expenses {
		switch {
		case !e.Date.Before(start):
			current = current.Add(e.Amount)
		case !e.Date.After(prevEnd):
			previous = previous.Add(e.Amount)
		}
	}
	return current, previous, nil
}

// calculateTrendPercent вычисляет изменение в процентах относительно предыдущего значения
func calculateTrendPercent(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100 // Рост с нуля
		}
		return 0
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// FormatChange форматирует изменение значения в процентах
func FormatChange(current, previous decimal.Decimal) string {
	if previous.IsZero() {
		return ""
	}

	change := calculateTrendPercent(current, previous)

	// Ограничиваем отображение процентов разумными пределами
	if change < -1000 {
		change = -1000
	} else if change > 1000 {
		change = 1000
	}

	if change > 0 {
		return fmt.Sprintf(" (+%.1f%%⬆️)", change)
	}
	return fmt.Sprintf(" (%.1f%%⬇️)", change)
}
