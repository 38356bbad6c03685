package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
)

type PaymentMethodSource interface {
	GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
}

// PaymentMethodResolver ищет способ оплаты только по точному имени без учета регистра
type PaymentMethodResolver struct {
	source PaymentMethodSource
}

func NewPaymentMethodResolver(source PaymentMethodSource) *PaymentMethodResolver {
	return &PaymentMethodResolver{source: source}
}

// Resolve возвращает nil без ошибки, если способ оплаты неизвестен
func (r *PaymentMethodResolver) Resolve(ctx context.Context, text string) (*model.PaymentMethod, error) {
	methods, err := r.source.GetPaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment methods: %w", err)
	}
	return MatchPaymentMethod(methods, text), nil
}

// MatchPaymentMethod сравнивает текст с именами способов оплаты
func MatchPaymentMethod(methods []model.PaymentMethod, text string) *model.PaymentMethod {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	canonical := model.CanonicalName(text)
	for i := range methods {
		if strings.EqualFold(methods[i].Name, text) || strings.EqualFold(methods[i].Name, canonical) {
			return &methods[i]
		}
	}
	return nil
}
