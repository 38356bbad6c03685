package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/ivanoskov/finance_intake_bot/internal/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ExpenseTracker регистрирует транзакции и управляет справочниками категорий и способов оплаты
type ExpenseTracker struct {
	repo Repository
	log  zerolog.Logger
}

// Repository определяет интерфейс для работы с хранилищем данных
type Repository interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategoryLimit(ctx context.Context, id string, limit decimal.NullDecimal) error
	UpdateCategoryAliases(ctx context.Context, id string, aliases []string) error
	GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, method *model.PaymentMethod) error
	CreateExpense(ctx context.Context, expense *model.Expense) error
	CreateIncome(ctx context.Context, income *model.Income) error
	GetExpenses(ctx context.Context, filter repository.TransactionFilter) ([]model.Expense, error)
	GetIncomes(ctx context.Context, filter repository.TransactionFilter) ([]model.Income, error)
}

// NewExpenseTracker создает новый экземпляр ExpenseTracker
func NewExpenseTracker(repo Repository, log zerolog.Logger) *ExpenseTracker {
	return &ExpenseTracker{
		repo: repo,
		log:  log.With().Str("component", "expense_tracker").Logger(),
	}
}

// CommitResult описывает результат регистрации черновика
type CommitResult struct {
	TransactionID string
	LearnedAlias  string // пусто, если синоним не добавлялся
	AliasErr      error  // ошибка обучения синониму не отменяет регистрацию
}

// Commit сохраняет черновик. Для расхода после сохранения запоминает исходное
// название категории как синоним, если оно отличается от канонического.
func (s *ExpenseTracker) Commit(ctx context.Context, draft *model.Draft) (CommitResult, error) {
	if err := draft.Validate(); err != nil {
		return CommitResult{}, err
	}

	switch draft.Kind {
	case model.KindIncome:
		income := draft.Income()
		if err := s.repo.CreateIncome(ctx, &income); err != nil {
			return CommitResult{}, fmt.Errorf("failed to register income: %w", err)
		}
		s.log.Info().Str("id", income.ID).Str("amount", income.Amount.String()).Msg("income registered")
		return CommitResult{TransactionID: income.ID}, nil

	default:
		expense := draft.Expense()
		if err := s.repo.CreateExpense(ctx, &expense); err != nil {
			return CommitResult{}, fmt.Errorf("failed to register expense: %w", err)
		}
		s.log.Info().
			Str("id", expense.ID).
			Str("amount", expense.Amount.String()).
			Str("category", draft.CategoryName).
			Msg("expense registered")

		result := CommitResult{TransactionID: expense.ID}
		result.LearnedAlias, result.AliasErr = s.learnAlias(ctx, draft)
		if result.AliasErr != nil {
			s.log.Warn().Err(result.AliasErr).Str("category", draft.CategoryName).Msg("alias learning failed")
		}
		return result, nil
	}
}

func (s *ExpenseTracker) learnAlias(ctx context.Context, draft *model.Draft) (string, error) {
	text := strings.TrimSpace(draft.CategoryText)
	if text == "" || strings.EqualFold(model.CanonicalName(text), draft.CategoryName) {
		return "", nil
	}

	category, err := s.categoryByID(ctx, draft.CategoryID)
	if err != nil {
		return "", err
	}
	aliases, added := category.WithAlias(text)
	if !added {
		return "", nil
	}
	if err := s.repo.UpdateCategoryAliases(ctx, category.ID, aliases); err != nil {
		return "", fmt.Errorf("failed to save alias %q: %w", text, err)
	}
	s.log.Info().Str("alias", text).Str("category", category.Name).Msg("alias learned")
	return strings.ToLower(text), nil
}

func (s *ExpenseTracker) categoryByID(ctx context.Context, id string) (*model.Category, error) {
	categories, err := s.repo.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}
	return nil, fmt.Errorf("%w: category %s", repository.ErrNotFound, id)
}

func (s *ExpenseTracker) Categories(ctx context.Context) ([]model.Category, error) {
	return s.repo.GetCategories(ctx)
}

func (s *ExpenseTracker) PaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	return s.repo.GetPaymentMethods(ctx)
}

// AddCategory создает категорию с нормализованным именем.
// Если такая категория уже есть, возвращает repository.ErrCategoryExists.
func (s *ExpenseTracker) AddCategory(ctx context.Context, name string, limit decimal.NullDecimal) (*model.Category, error) {
	canonical := model.CanonicalName(name)
	if canonical == "" {
		return nil, model.ErrEmptyName
	}
	if limit.Valid && limit.Decimal.IsNegative() {
		return nil, fmt.Errorf("%w: limit must not be negative", model.ErrInvalidAmount)
	}

	categories, err := s.repo.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	if existing := model.CategoryByName(categories, canonical); existing != nil {
		return nil, fmt.Errorf("%w: %s", repository.ErrCategoryExists, existing.Name)
	}

	category := &model.Category{Name: canonical, MonthlyLimit: limit, Aliases: []string{}}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.log.Info().Str("id", category.ID).Str("name", category.Name).Msg("category created")
	return category, nil
}

// EnsureCategory возвращает существующую категорию с таким именем или создает новую
func (s *ExpenseTracker) EnsureCategory(ctx context.Context, name string) (*model.Category, error) {
	category, err := s.AddCategory(ctx, name, decimal.NullDecimal{})
	if err == nil || !errors.Is(err, repository.ErrCategoryExists) {
		return category, err
	}

	// Категория уже есть или была создана параллельно в другом чате
	categories, err := s.repo.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	if existing := model.CategoryByName(categories, name); existing != nil {
		return existing, nil
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrCategoryExists, model.CanonicalName(name))
}

// EnsurePaymentMethod возвращает существующий способ оплаты или создает новый
func (s *ExpenseTracker) EnsurePaymentMethod(ctx context.Context, name string) (*model.PaymentMethod, error) {
	return s.ensurePaymentMethod(ctx, model.CanonicalName(name))
}

// EnsureNamedPaymentMethod работает как EnsurePaymentMethod, но сохраняет имя как есть.
// Так создается служебный способ оплаты из конфигурации.
func (s *ExpenseTracker) EnsureNamedPaymentMethod(ctx context.Context, name string) (*model.PaymentMethod, error) {
	return s.ensurePaymentMethod(ctx, strings.TrimSpace(name))
}

func (s *ExpenseTracker) ensurePaymentMethod(ctx context.Context, canonical string) (*model.PaymentMethod, error) {
	if canonical == "" {
		return nil, model.ErrEmptyName
	}

	find := func() (*model.PaymentMethod, error) {
		methods, err := s.repo.GetPaymentMethods(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get payment methods: %w", err)
		}
		for i := range methods {
			if strings.EqualFold(methods[i].Name, canonical) {
				return &methods[i], nil
			}
		}
		return nil, nil
	}

	if existing, err := find(); err != nil || existing != nil {
		return existing, err
	}

	method := &model.PaymentMethod{Name: canonical}
	err := s.repo.CreatePaymentMethod(ctx, method)
	if errors.Is(err, repository.ErrPaymentMethodExists) {
		if existing, findErr := find(); findErr == nil && existing != nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("id", method.ID).Str("name", method.Name).Msg("payment method created")
	return method, nil
}

// SetCategoryLimit задает месячный лимит; ноль убирает лимит
func (s *ExpenseTracker) SetCategoryLimit(ctx context.Context, categoryID string, limit decimal.Decimal) error {
	if limit.IsNegative() {
		return fmt.Errorf("%w: limit must not be negative", model.ErrInvalidAmount)
	}
	value := decimal.NullDecimal{}
	if limit.IsPositive() {
		value = decimal.NewNullDecimal(limit)
	}
	return s.repo.UpdateCategoryLimit(ctx, categoryID, value)
}

// AddAliases добавляет синонимы к категории и возвращает только новые
func (s *ExpenseTracker) AddAliases(ctx context.Context, categoryID string, aliases []string) ([]string, error) {
	category, err := s.categoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	current := *category
	var added []string
	for _, alias := range aliases {
		next, ok := current.WithAlias(alias)
		if !ok {
			continue
		}
		current.Aliases = next
		added = append(added, strings.ToLower(strings.TrimSpace(alias)))
	}
	if len(added) == 0 {
		return nil, nil
	}
	if err := s.repo.UpdateCategoryAliases(ctx, category.ID, current.Aliases); err != nil {
		return nil, fmt.Errorf("failed to save aliases: %w", err)
	}
	return added, nil
}
