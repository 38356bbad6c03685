package interpreter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedExtractor struct {
	raw RawCorrection
	err error
}

func (f fixedExtractor) ParseCorrection(context.Context, string) (RawCorrection, error) {
	return f.raw, f.err
}

func TestCorrectionParser_FromModel(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawCorrection
		check func(t *testing.T, c model.Correction)
	}{
		{"comma amount", RawCorrection{Field: "valor", Value: "60,50"}, func(t *testing.T, c model.Correction) {
			assert.Equal(t, model.FieldAmount, c.Field)
			assert.Equal(t, "60.5", c.Amount.String())
		}},
		{"numeric amount", RawCorrection{Field: "Valor", Value: 42.0}, func(t *testing.T, c model.Correction) {
			assert.Equal(t, "42", c.Amount.String())
		}},
		{"date", RawCorrection{Field: "data", Value: "2025-07-01"}, func(t *testing.T, c model.Correction) {
			assert.Equal(t, model.FieldDate, c.Field)
			assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), c.Date)
		}},
		{"category", RawCorrection{Field: "categoria", Value: "Lazer"}, func(t *testing.T, c model.Correction) {
			assert.Equal(t, model.FieldCategory, c.Field)
			assert.Equal(t, "Lazer", c.Text)
		}},
		{"payment underscore", RawCorrection{Field: "forma_pagamento", Value: "Pix"}, func(t *testing.T, c model.Correction) {
			assert.Equal(t, model.FieldPaymentMethod, c.Field)
		}},
		{"description accent", RawCorrection{Field: "Descrição", Value: "Jantar"}, func(t *testing.T, c model.Correction) {
			assert.Equal(t, model.FieldDescription, c.Field)
			assert.Equal(t, "Jantar", c.Text)
		}},
		{"kind", RawCorrection{Field: "tipo", Value: "ganho"}, func(t *testing.T, c model.Correction) {
			assert.Equal(t, model.FieldKind, c.Field)
			assert.Equal(t, model.KindIncome, c.Kind)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCorrectionParser(fixedExtractor{raw: tt.raw}, zerolog.Nop())
			c, ok := p.Parse(context.Background(), "qualquer coisa")
			require.True(t, ok)
			tt.check(t, c)
		})
	}
}

func TestCorrectionParser_RulesFallback(t *testing.T) {
	p := NewCorrectionParser(fixedExtractor{err: errors.New("model offline")}, zerolog.Nop())
	ctx := context.Background()

	c, ok := p.Parse(ctx, "Valor 60,50")
	require.True(t, ok)
	assert.Equal(t, "60.5", c.Amount.String())

	c, ok = p.Parse(ctx, "forma de pagamento Cartão de Crédito")
	require.True(t, ok)
	assert.Equal(t, model.FieldPaymentMethod, c.Field)
	assert.Equal(t, "Cartão de Crédito", c.Text)

	c, ok = p.Parse(ctx, "Categoria: Lazer")
	require.True(t, ok)
	assert.Equal(t, "Lazer", c.Text)

	c, ok = p.Parse(ctx, "Data 2025-07-01")
	require.True(t, ok)
	assert.Equal(t, 2025, c.Date.Year())
}

func TestCorrectionParser_Rejects(t *testing.T) {
	p := NewCorrectionParser(nil, zerolog.Nop())
	ctx := context.Background()

	for _, text := range []string{
		"",
		"Valor abc",
		"Valor 0",
		"Data 01/07/2025",
		"Data 2025-7-1",
		"Tipo talvez",
		"Cor azul",
		"Categoria",
	} {
		_, ok := p.Parse(ctx, text)
		assert.False(t, ok, text)
	}
}

func TestCorrectionParser_ModelUnknownFieldUsesRules(t *testing.T) {
	p := NewCorrectionParser(fixedExtractor{raw: RawCorrection{Field: "cor", Value: "azul"}}, zerolog.Nop())
	c, ok := p.Parse(context.Background(), "Descricao Jantar com amigos")
	require.True(t, ok)
	assert.Equal(t, model.FieldDescription, c.Field)
	assert.Equal(t, "Jantar com amigos", c.Text)
}
