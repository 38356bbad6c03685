package interpreter

import (
	"context"
	"strconv"
	"strings"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/rs/zerolog"
)

// CorrectionExtractor извлекает сырое исправление из текста
type CorrectionExtractor interface {
	ParseCorrection(ctx context.Context, text string) (RawCorrection, error)
}

// CorrectionParser приводит исправления к закрытому набору полей и нужным типам.
// Сначала спрашивает модель, затем пробует разбор вида "<поле> <значение>".
type CorrectionParser struct {
	extractor CorrectionExtractor
	log       zerolog.Logger
}

// NewCorrectionParser создает адаптер. extractor может быть nil, тогда работает только разбор по правилам.
func NewCorrectionParser(extractor CorrectionExtractor, log zerolog.Logger) *CorrectionParser {
	return &CorrectionParser{
		extractor: extractor,
		log:       log.With().Str("component", "correction_parser").Logger(),
	}
}

// Parse возвращает false, если поле или значение не удалось определить
func (p *CorrectionParser) Parse(ctx context.Context, text string) (model.Correction, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Correction{}, false
	}

	if p.extractor != nil {
		raw, err := p.extractor.ParseCorrection(ctx, text)
		if err == nil {
			if c, ok := coerceCorrection(raw); ok {
				return c, true
			}
		} else {
			p.log.Debug().Err(err).Str("text", text).Msg("model could not parse correction")
		}
	}

	raw, ok := splitCorrection(text)
	if !ok {
		return model.Correction{}, false
	}
	return coerceCorrection(raw)
}

var fieldAliases = map[string]model.Field{
	"valor":              model.FieldAmount,
	"value":              model.FieldAmount,
	"amount":             model.FieldAmount,
	"quantia":            model.FieldAmount,
	"preco":              model.FieldAmount,
	"preço":              model.FieldAmount,
	"data":               model.FieldDate,
	"date":               model.FieldDate,
	"dia":                model.FieldDate,
	"categoria":          model.FieldCategory,
	"category":           model.FieldCategory,
	"forma":              model.FieldPaymentMethod,
	"forma pagamento":    model.FieldPaymentMethod,
	"forma de pagamento": model.FieldPaymentMethod,
	"pagamento":          model.FieldPaymentMethod,
	"payment":            model.FieldPaymentMethod,
	"payment method":     model.FieldPaymentMethod,
	"descricao":          model.FieldDescription,
	"descrição":          model.FieldDescription,
	"descricao gasto":    model.FieldDescription,
	"description":        model.FieldDescription,
	"tipo":               model.FieldKind,
	"kind":               model.FieldKind,
	"type":               model.FieldKind,
}

// normalizeField - единственное место, где имя поля сравнивается как строка
func normalizeField(name string) (model.Field, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(name, "_", " "))), " ")
	key = strings.TrimSuffix(key, ":")
	f, ok := fieldAliases[key]
	return f, ok
}

func parseKind(s string) (model.Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gasto", "despesa", "saida", "saída", "expense":
		return model.KindExpense, true
	case "ganho", "receita", "entrada", "income":
		return model.KindIncome, true
	default:
		return "", false
	}
}

// splitCorrection разбирает "<поле> <значение>", поле может состоять из нескольких слов
func splitCorrection(text string) (RawCorrection, bool) {
	words := strings.Fields(text)
	for n := min(3, len(words)-1); n >= 1; n-- {
		if _, ok := normalizeField(strings.Join(words[:n], " ")); ok {
			return RawCorrection{
				Field: strings.Join(words[:n], " "),
				Value: strings.Join(words[n:], " "),
			}, true
		}
	}
	return RawCorrection{}, false
}

func coerceCorrection(raw RawCorrection) (model.Correction, bool) {
	field, ok := normalizeField(raw.Field)
	if !ok {
		return model.Correction{}, false
	}
	c := model.Correction{Field: field}

	switch field {
	case model.FieldAmount:
		amount, err := positiveAmount(raw.Value)
		if err != nil {
			return model.Correction{}, false
		}
		c.Amount = amount
	case model.FieldDate:
		s, ok := valueString(raw.Value)
		if !ok {
			return model.Correction{}, false
		}
		date, err := model.ParseDate(s)
		if err != nil {
			return model.Correction{}, false
		}
		c.Date = date
	case model.FieldKind:
		s, _ := valueString(raw.Value)
		kind, ok := parseKind(s)
		if !ok {
			return model.Correction{}, false
		}
		c.Kind = kind
	default:
		s, ok := valueString(raw.Value)
		if !ok {
			return model.Correction{}, false
		}
		c.Text = s
	}
	return c, true
}

func valueString(v any) (string, bool) {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
