package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/shopspring/decimal"
)

// MemoryRepository хранит данные в памяти процесса. Используется в тестах
// и при storage.driver=memory. Все методы возвращают копии.
type MemoryRepository struct {
	mu         sync.RWMutex
	categories []model.Category
	methods    []model.PaymentMethod
	expenses   []model.Expense
	incomes    []model.Income
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) GetCategories(ctx context.Context) ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Category, len(r.categories))
	for i, c := range r.categories {
		out[i] = c.Clone()
	}
	return out, nil
}

func (r *MemoryRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return fmt.Errorf("%w: %s", ErrCategoryExists, category.Name)
		}
	}
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if category.Aliases == nil {
		category.Aliases = []string{}
	}
	r.categories = append(r.categories, category.Clone())
	return nil
}

func (r *MemoryRepository) UpdateCategoryLimit(ctx context.Context, id string, limit decimal.NullDecimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	r.categories[i].MonthlyLimit = limit
	return nil
}

func (r *MemoryRepository) UpdateCategoryAliases(ctx context.Context, id string, aliases []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	}
	r.categories[i].Aliases = append([]string{}, aliases...)
	return nil
}

func (r *MemoryRepository) categoryIndex(id string) int {
	for i, c := range r.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.PaymentMethod(nil), r.methods...), nil
}

func (r *MemoryRepository) CreatePaymentMethod(ctx context.Context, method *model.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.methods {
		if strings.EqualFold(m.Name, method.Name) {
			return fmt.Errorf("%w: %s", ErrPaymentMethodExists, method.Name)
		}
	}
	if method.ID == "" {
		method.ID = uuid.New().String()
	}
	r.methods = append(r.methods, *method)
	return nil
}

func (r *MemoryRepository) CreateExpense(ctx context.Context, expense *model.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.categoryIndex(expense.CategoryID) < 0 {
		return fmt.Errorf("%w: category %s", ErrNotFound, expense.CategoryID)
	}
	expense.GenerateID()
	expense.CreatedAt = r.now()
	r.expenses = append(r.expenses, *expense)
	return nil
}

func (r *MemoryRepository) CreateIncome(ctx context.Context, income *model.Income) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	income.GenerateID()
	income.CreatedAt = r.now()
	r.incomes = append(r.incomes, *income)
	return nil
}

func (r *MemoryRepository) GetExpenses(ctx context.Context, filter TransactionFilter) ([]model.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Expense
	for _, e := range r.expenses {
		if filter.matchesExpense(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *MemoryRepository) GetIncomes(ctx context.Context, filter TransactionFilter) ([]model.Income, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Income
	for _, i := range r.incomes {
		if filter.matchesDate(i.Date) {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
