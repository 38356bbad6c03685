package interpreter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultExpenseCategory = "Outros"
	defaultIncomeSource    = "Diversos"
	defaultTimeout         = 30 * time.Second
)

// Interpreter превращает сообщение пользователя в структурированное намерение с помощью LLM
type Interpreter struct {
	llm     Completer
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

type Option func(*Interpreter)

// WithTimeout ограничивает время одного запроса к модели
func WithTimeout(d time.Duration) Option {
	return func(i *Interpreter) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) { i.now = now }
}

func New(llm Completer, log zerolog.Logger, opts ...Option) *Interpreter {
	i := &Interpreter{
		llm:     llm,
		timeout: defaultTimeout,
		now:     time.Now,
		log:     log.With().Str("component", "interpreter").Logger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// intentPayload - JSON, который возвращает модель
type intentPayload struct {
	Intent             string `json:"intencao"`
	Amount             any    `json:"valor"`
	Category           string `json:"categoria"`
	Date               string `json:"data"`
	PaymentMethod      string `json:"forma_pagamento"`
	ExpenseDescription string `json:"descricao_gasto"`
	Description        string `json:"descricao"`
	CategoryName       string `json:"categoria_nome"`
	MonthlyLimit       any    `json:"limite_mensal"`
	StartDate          string `json:"data_inicio"`
	EndDate            string `json:"data_fim"`
}

// RawCorrection - исправление в том виде, в каком его вернула модель
type RawCorrection struct {
	Field string `json:"campo"`
	Value any    `json:"novo_valor"`
}

func (i *Interpreter) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	return i.llm.Complete(ctx, prompt)
}

// Interpret распознает намерение. Непонятный ответ модели дает UnknownIntent без ошибки;
// ошибка возвращается только при сбое обращения к модели.
func (i *Interpreter) Interpret(ctx context.Context, text string, known []string) (model.Intent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.UnknownIntent{}, nil
	}

	today := model.Day(i.now())
	raw, err := i.complete(ctx, buildIntentPrompt(text, known, today))
	if err != nil {
		return nil, fmt.Errorf("interpreter request failed: %w", err)
	}

	var p intentPayload
	if err := decodeJSON(raw, &p); err != nil {
		i.log.Warn().Err(err).Str("text", text).Msg("could not decode intent")
		return model.UnknownIntent{Raw: text}, nil
	}

	intent := i.toIntent(p, text, today)
	i.log.Debug().Str("intent", p.Intent).Type("type", intent).Msg("message interpreted")
	return intent, nil
}

func (i *Interpreter) toIntent(p intentPayload, text string, today time.Time) model.Intent {
	switch strings.ToLower(strings.TrimSpace(p.Intent)) {
	case "gasto":
		amount, err := positiveAmount(p.Amount)
		if err != nil {
			i.log.Debug().Err(err).Msg("expense without valid amount")
			return model.UnknownIntent{Raw: text}
		}
		return model.ExpenseIntent{
			Amount:        amount,
			Category:      orDefault(p.Category, defaultExpenseCategory),
			Date:          dateOrToday(p.Date, today),
			PaymentMethod: strings.TrimSpace(p.PaymentMethod),
			Description:   orDefault(p.ExpenseDescription, text),
		}
	case "ganho":
		amount, err := positiveAmount(p.Amount)
		if err != nil {
			i.log.Debug().Err(err).Msg("income without valid amount")
			return model.UnknownIntent{Raw: text}
		}
		return model.IncomeIntent{
			Amount:      amount,
			Description: orDefault(p.Description, defaultIncomeSource),
			Date:        dateOrToday(p.Date, today),
		}
	case "adicionar_categoria":
		intent := model.AddCategoryIntent{Name: strings.TrimSpace(p.CategoryName)}
		if p.MonthlyLimit != nil {
			if limit, err := model.AmountFromValue(p.MonthlyLimit); err == nil && !limit.IsNegative() {
				intent.MonthlyLimit = decimal.NewNullDecimal(limit)
			}
		}
		return intent
	case "mostrar_balanco":
		return model.ShowBalanceIntent{Period: period(p)}
	case "mostrar_grafico_gastos_categoria":
		return model.ShowCategoryChartIntent{PaymentMethod: strings.TrimSpace(p.PaymentMethod), Period: period(p)}
	case "mostrar_grafico_gastos_por_pagamento":
		return model.ShowPaymentChartIntent{Category: strings.TrimSpace(p.Category), Period: period(p)}
	case "mostrar_grafico_mensal_combinado":
		return model.ShowCombinedChartIntent{Period: period(p)}
	case "listar_gastos_detalhados":
		return model.ListExpensesIntent{Category: strings.TrimSpace(p.Category), Period: period(p)}
	case "editar_gasto":
		return model.EditExpenseIntent{Text: text}
	default:
		return model.UnknownIntent{Raw: text}
	}
}

// SuggestCategory просит модель выбрать одну из известных категорий.
// Пустая строка означает отсутствие подходящей.
func (i *Interpreter) SuggestCategory(ctx context.Context, text string, known []string) (string, error) {
	if len(known) == 0 {
		return "", nil
	}
	raw, err := i.complete(ctx, buildSuggestPrompt(text, known))
	if err != nil {
		return "", fmt.Errorf("category suggestion failed: %w", err)
	}

	answer := strings.Trim(strings.TrimSpace(raw), "\"'`.")
	if strings.EqualFold(answer, "NENHUMA") || strings.EqualFold(answer, "NONE") {
		return "", nil
	}
	return answer, nil
}

// ParseCorrection извлекает поле и новое значение из текста исправления
func (i *Interpreter) ParseCorrection(ctx context.Context, text string) (RawCorrection, error) {
	raw, err := i.complete(ctx, buildCorrectionPrompt(text))
	if err != nil {
		return RawCorrection{}, fmt.Errorf("correction request failed: %w", err)
	}

	var c RawCorrection
	if err := decodeJSON(raw, &c); err != nil {
		return RawCorrection{}, err
	}
	if strings.TrimSpace(c.Field) == "" || c.Value == nil {
		return RawCorrection{}, fmt.Errorf("%w: correction without field or value", ErrMalformed)
	}
	return c, nil
}

func positiveAmount(v any) (decimal.Decimal, error) {
	d, err := model.AmountFromValue(v)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be positive", model.ErrInvalidAmount)
	}
	return d, nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func dateOrToday(s string, today time.Time) time.Time {
	if t, err := model.ParseDate(strings.TrimSpace(s)); err == nil {
		return t
	}
	return today
}

func period(p intentPayload) model.Period {
	var out model.Period
	if t, err := model.ParseDate(strings.TrimSpace(p.StartDate)); err == nil {
		out.Start = &t
	}
	if t, err := model.ParseDate(strings.TrimSpace(p.EndDate)); err == nil {
		out.End = &t
	}
	return out
}
