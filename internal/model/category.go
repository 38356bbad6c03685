package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category описывает категорию расходов с необязательным месячным лимитом
// и набором выученных синонимов.
type Category struct {
	ID           string              `json:"id,omitempty"`
	Name         string              `json:"name"`
	MonthlyLimit decimal.NullDecimal `json:"monthly_limit"`
	Aliases      []string            `json:"aliases"`
}

// HasAlias проверяет, есть ли у категории синоним без учета регистра
func (c Category) HasAlias(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, alias := range c.Aliases {
		if strings.EqualFold(strings.TrimSpace(alias), text) {
			return true
		}
	}
	return false
}

// WithAlias возвращает копию списка синонимов с добавленным значением.
// Второй результат false, если синоним уже есть.
func (c Category) WithAlias(alias string) ([]string, bool) {
	alias = strings.TrimSpace(alias)
	if alias == "" || c.HasAlias(alias) || strings.EqualFold(alias, c.Name) {
		return c.Aliases, false
	}
	aliases := make([]string, 0, len(c.Aliases)+1)
	aliases = append(aliases, c.Aliases...)
	return append(aliases, strings.ToLower(alias)), true
}

// Clone возвращает глубокую копию категории
func (c Category) Clone() Category {
	c.Aliases = append([]string(nil), c.Aliases...)
	return c
}

// PaymentMethod описывает способ оплаты
type PaymentMethod struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// CategoryNames возвращает канонические имена категорий в исходном порядке
func CategoryNames(categories []Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names
}

// CategoryByName ищет категорию по имени без учета регистра
func CategoryByName(categories []Category, name string) *Category {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	canonical := CanonicalName(name)
	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) || strings.EqualFold(categories[i].Name, canonical) {
			return &categories[i]
		}
	}
	return nil
}

// CategoryEmoji подбирает эмодзи для известных категорий
func CategoryEmoji(name string) string {
	switch strings.ToLower(name) {
	case "alimentacao", "food":
		return "🍔"
	case "transporte", "transport":
		return "🚌"
	case "moradia", "casa", "housing":
		return "🏠"
	case "lazer", "leisure":
		return "🎉"
	case "saude", "health":
		return "💊"
	case "educacao", "education":
		return "📚"
	case "compras", "shopping":
		return "🛍️"
	case "outros", "other":
		return "🤷‍♀️"
	default:
		return "💸"
	}
}
