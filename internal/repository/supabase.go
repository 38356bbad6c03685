package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

const (
	tableCategories     = "categories"
	tablePaymentMethods = "payment_methods"
	tableExpenses       = "expenses"
	tableIncomes        = "incomes"
)

type SupabaseRepository struct {
	client *supabase.Client
	log    zerolog.Logger
}

func NewSupabaseRepository(url, key string, log zerolog.Logger) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseRepository{
		client: client,
		log:    log.With().Str("component", "supabase").Logger(),
	}, nil
}

// Строки таблиц транзакций: даты хранятся как date, способ оплаты может быть NULL
type expenseRow struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	CategoryID      string          `json:"category_id"`
	PaymentMethodID *string         `json:"payment_method_id"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	CreatedAt       *time.Time      `json:"created_at,omitempty"`
}

type incomeRow struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

func (r *SupabaseRepository) GetCategories(ctx context.Context) ([]model.Category, error) {
	data, _, err := r.client.From(tableCategories).
		Select("*", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	var categories []model.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	return categories, nil
}

func (r *SupabaseRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	if category.Aliases == nil {
		category.Aliases = []string{}
	}
	data, _, err := r.client.From(tableCategories).Insert(category, false, "", "representation", "").Execute()
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrCategoryExists, category.Name)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	// Парсим ответ для получения ID
	var created []model.Category
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("failed to parse created category: %w", err)
	}
	if len(created) > 0 {
		category.ID = created[0].ID
	}
	r.log.Debug().Str("id", category.ID).Str("name", category.Name).Msg("category created")
	return nil
}

func (r *SupabaseRepository) UpdateCategoryLimit(ctx context.Context, id string, limit decimal.NullDecimal) error {
	update := map[string]any{"monthly_limit": limit}
	if _, _, err := r.client.From(tableCategories).Update(update, "", "").Eq("id", id).Execute(); err != nil {
		return fmt.Errorf("failed to update category limit: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) UpdateCategoryAliases(ctx context.Context, id string, aliases []string) error {
	if aliases == nil {
		aliases = []string{}
	}
	update := map[string]any{"aliases": aliases}
	if _, _, err := r.client.From(tableCategories).Update(update, "", "").Eq("id", id).Execute(); err != nil {
		return fmt.Errorf("failed to update category aliases: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	data, _, err := r.client.From(tablePaymentMethods).
		Select("*", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get payment methods: %w", err)
	}

	var methods []model.PaymentMethod
	if err := json.Unmarshal(data, &methods); err != nil {
		return nil, fmt.Errorf("failed to parse payment methods: %w", err)
	}
	return methods, nil
}

func (r *SupabaseRepository) CreatePaymentMethod(ctx context.Context, method *model.PaymentMethod) error {
	data, _, err := r.client.From(tablePaymentMethods).Insert(method, false, "", "representation", "").Execute()
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrPaymentMethodExists, method.Name)
		}
		return fmt.Errorf("failed to create payment method: %w", err)
	}

	var created []model.PaymentMethod
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("failed to parse created payment method: %w", err)
	}
	if len(created) > 0 {
		method.ID = created[0].ID
	}
	return nil
}

func (r *SupabaseRepository) CreateExpense(ctx context.Context, expense *model.Expense) error {
	expense.GenerateID()
	row := expenseRow{
		ID:          expense.ID,
		Amount:      expense.Amount,
		CategoryID:  expense.CategoryID,
		Date:        expense.Date.Format(model.DateLayout),
		Description: expense.Description,
	}
	if expense.PaymentMethodID != "" {
		row.PaymentMethodID = &expense.PaymentMethodID
	}

	data, _, err := r.client.From(tableExpenses).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	var created []expenseRow
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("failed to parse created expense: %w", err)
	}
	if len(created) > 0 && created[0].CreatedAt != nil {
		expense.CreatedAt = *created[0].CreatedAt
	}
	return nil
}

func (r *SupabaseRepository) CreateIncome(ctx context.Context, income *model.Income) error {
	income.GenerateID()
	row := incomeRow{
		ID:          income.ID,
		Amount:      income.Amount,
		Description: income.Description,
		Date:        income.Date.Format(model.DateLayout),
	}

	data, _, err := r.client.From(tableIncomes).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create income: %w", err)
	}

	var created []incomeRow
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("failed to parse created income: %w", err)
	}
	if len(created) > 0 && created[0].CreatedAt != nil {
		income.CreatedAt = *created[0].CreatedAt
	}
	return nil
}

func (r *SupabaseRepository) GetExpenses(ctx context.Context, filter TransactionFilter) ([]model.Expense, error) {
	query := r.client.From(tableExpenses).Select("*", "", false)
	if filter.StartDate != nil {
		query = query.Gte("date", filter.StartDate.Format(model.DateLayout))
	}
	if filter.EndDate != nil {
		query = query.Lte("date", filter.EndDate.Format(model.DateLayout))
	}
	if filter.CategoryID != "" {
		query = query.Eq("category_id", filter.CategoryID)
	}
	if filter.PaymentMethodID != "" {
		query = query.Eq("payment_method_id", filter.PaymentMethodID)
	}

	data, _, err := query.Order("date", &postgrest.OrderOpts{Ascending: false}).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}

	var rows []expenseRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse expenses: %w", err)
	}

	expenses := make([]model.Expense, 0, len(rows))
	for _, row := range rows {
		date, err := model.ParseDate(row.Date)
		if err != nil {
			r.log.Warn().Err(err).Str("id", row.ID).Msg("skipping expense with invalid date")
			continue
		}
		e := model.Expense{
			ID:          row.ID,
			Amount:      row.Amount,
			CategoryID:  row.CategoryID,
			Date:        date,
			Description: row.Description,
		}
		if row.PaymentMethodID != nil {
			e.PaymentMethodID = *row.PaymentMethodID
		}
		if row.CreatedAt != nil {
			e.CreatedAt = *row.CreatedAt
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func (r *SupabaseRepository) GetIncomes(ctx context.Context, filter TransactionFilter) ([]model.Income, error) {
	query := r.client.From(tableIncomes).Select("*", "", false)
	if filter.StartDate != nil {
		query = query.Gte("date", filter.StartDate.Format(model.DateLayout))
	}
	if filter.EndDate != nil {
		query = query.Lte("date", filter.EndDate.Format(model.DateLayout))
	}

	data, _, err := query.Order("date", &postgrest.OrderOpts{Ascending: false}).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get incomes: %w", err)
	}

	var rows []incomeRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse incomes: %w", err)
	}

	incomes := make([]model.Income, 0, len(rows))
	for _, row := range rows {
		date, err := model.ParseDate(row.Date)
		if err != nil {
			r.log.Warn().Err(err).Str("id", row.ID).Msg("skipping income with invalid date")
			continue
		}
		i := model.Income{ID: row.ID, Amount: row.Amount, Description: row.Description, Date: date}
		if row.CreatedAt != nil {
			i.CreatedAt = *row.CreatedAt
		}
		incomes = append(incomes, i)
	}
	return incomes, nil
}

// isUniqueViolation распознает ответ PostgREST о нарушении уникального индекса
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
