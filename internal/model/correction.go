package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field - изменяемое поле черновика
type Field int

const (
	FieldAmount Field = iota + 1
	FieldDate
	FieldCategory
	FieldPaymentMethod
	FieldDescription
	FieldKind
)

func (f Field) String() string {
	switch f {
	case FieldAmount:
		return "amount"
	case FieldDate:
		return "date"
	case FieldCategory:
		return "category"
	case FieldPaymentMethod:
		return "payment_method"
	case FieldDescription:
		return "description"
	case FieldKind:
		return "kind"
	default:
		return "unknown"
	}
}

// Label возвращает название поля для сообщений пользователю
func (f Field) Label() string {
	switch f {
	case FieldAmount:
		return "Valor"
	case FieldDate:
		return "Data"
	case FieldCategory:
		return "Categoria"
	case FieldPaymentMethod:
		return "Forma de pagamento"
	case FieldDescription:
		return "Descrição"
	case FieldKind:
		return "Tipo"
	default:
		return f.String()
	}
}

// Correction - исправление одного поля черновика с уже приведенным значением.
// Заполнено только поле, соответствующее Field.
type Correction struct {
	Field  Field
	Amount decimal.Decimal
	Date   time.Time
	Kind   Kind
	Text   string
}

// Apply применяет исправление к полям черновика, не требующим обращения к хранилищу.
// Категория и способ оплаты разрешаются вызывающим кодом.
func (c Correction) Apply(d *Draft) bool {
	switch c.Field {
	case FieldAmount:
		d.Amount = c.Amount
	case FieldDate:
		d.Date = c.Date
	case FieldDescription:
		d.Description = c.Text
	case FieldKind:
		d.SetKind(c.Kind)
	default:
		return false
	}
	return true
}
