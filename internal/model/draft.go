package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrCategoryRequired возвращается при попытке зарегистрировать расход без категории
var ErrCategoryRequired = errors.New("expense draft has no category")

// Draft - черновик транзакции, который собирается за несколько сообщений диалога
type Draft struct {
	Kind        Kind
	Amount      decimal.Decimal
	Date        time.Time
	Description string

	// Поля ниже используются только для расходов
	CategoryID        string
	CategoryName      string
	CategoryText      string // как пользователь назвал категорию, для обучения синонимам
	PaymentMethodID   string
	PaymentMethodName string
	PaymentMethodText string
	Candidates        []Category
}

// NewExpenseDraft создает черновик расхода из распознанного намерения
func NewExpenseDraft(intent ExpenseIntent) *Draft {
	return &Draft{
		Kind:              KindExpense,
		Amount:            intent.Amount,
		Date:              intent.Date,
		Description:       strings.TrimSpace(intent.Description),
		CategoryText:      strings.TrimSpace(intent.Category),
		PaymentMethodText: strings.TrimSpace(intent.PaymentMethod),
	}
}

// NewIncomeDraft создает черновик дохода из распознанного намерения
func NewIncomeDraft(intent IncomeIntent) *Draft {
	return &Draft{
		Kind:        KindIncome,
		Amount:      intent.Amount,
		Date:        intent.Date,
		Description: SourceLabel(intent.Description),
	}
}

// SetCategory привязывает черновик к категории и очищает список кандидатов
func (d *Draft) SetCategory(c Category) {
	d.CategoryID = c.ID
	d.CategoryName = c.Name
	d.Candidates = nil
}

// SetPaymentMethod привязывает способ оплаты; nil оставляет его пустым
func (d *Draft) SetPaymentMethod(pm *PaymentMethod) {
	if pm == nil {
		d.PaymentMethodID, d.PaymentMethodName = "", ""
		return
	}
	d.PaymentMethodID = pm.ID
	d.PaymentMethodName = pm.Name
}

// SetKind меняет вид транзакции. При переходе в доход поля расхода сбрасываются,
// при переходе в расход категория остается незаполненной.
func (d *Draft) SetKind(k Kind) {
	if d.Kind == k {
		return
	}
	d.Kind = k
	d.CategoryID, d.CategoryName, d.CategoryText = "", "", ""
	d.PaymentMethodID, d.PaymentMethodName, d.PaymentMethodText = "", "", ""
	d.Candidates = nil
}

// HasCategory сообщает, выбрана ли категория
func (d *Draft) HasCategory() bool {
	return d.CategoryID != ""
}

// Validate проверяет, можно ли регистрировать черновик
func (d *Draft) Validate() error {
	if !d.Amount.IsPositive() {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("%w: missing", ErrInvalidDate)
	}
	switch d.Kind {
	case KindExpense:
		if !d.HasCategory() {
			return ErrCategoryRequired
		}
	case KindIncome:
	default:
		return fmt.Errorf("unknown transaction kind %q", d.Kind)
	}
	return nil
}

// Expense собирает расход из черновика
func (d *Draft) Expense() Expense {
	return Expense{
		Amount:          d.Amount,
		CategoryID:      d.CategoryID,
		PaymentMethodID: d.PaymentMethodID,
		Date:            d.Date,
		Description:     d.Description,
	}
}

// Income собирает доход из черновика
func (d *Draft) Income() Income {
	return Income{
		Amount:      d.Amount,
		Description: d.Description,
		Date:        d.Date,
	}
}

// Clone возвращает независимую копию черновика
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.Candidates = make([]Category, len(d.Candidates))
	for i, cat := range d.Candidates {
		c.Candidates[i] = cat.Clone()
	}
	return &c
}
