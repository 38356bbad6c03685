package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lazer", "Lazer"},
		{"cartao de credito", "CartaoDeCredito"},
		{"cartão-de_crédito", "CartãoDeCrédito"},
		{"  IPHONE  ", "Iphone"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalName(tt.in))
		})
	}
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "Salário", SourceLabel("salário"))
	assert.Equal(t, "Freela de design", SourceLabel(" freela de design "))
	assert.Equal(t, "", SourceLabel(""))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"60,50", "60.5", false},
		{"60.50", "60.5", false},
		{"R$ 1.234,56", "1234.56", false},
		{"1,234.56", "1234.56", false},
		{"1000", "1000", false},
		{"abc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParsePositiveAmount(t *testing.T) {
	_, err := ParsePositiveAmount("0")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParsePositiveAmount("-5")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	got, err := ParsePositiveAmount("0,01")
	require.NoError(t, err)
	assert.Equal(t, "0.01", got.String())
}

func TestAmountFromValue(t *testing.T) {
	got, err := AmountFromValue(50.0)
	require.NoError(t, err)
	assert.Equal(t, "50", got.String())

	got, err = AmountFromValue("12,5")
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.String())

	_, err = AmountFromValue(nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = AmountFromValue(true)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", FormatBRL(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "R$ 50,00", FormatBRL(decimal.NewFromInt(50)))
	assert.Equal(t, "R$ 1.000.000,00", FormatBRL(decimal.NewFromInt(1000000)))
	assert.Equal(t, "-R$ 10,50", FormatBRL(decimal.RequireFromString("-10.5")))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-07-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"2025-7-1", "01/07/2025", "2025-13-01", "tomorrow", ""} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestCategoryWithAlias(t *testing.T) {
	c := Category{ID: "1", Name: "Alimentacao", Aliases: []string{"mercado"}}

	_, added := c.WithAlias("Mercado")
	assert.False(t, added)
	_, added = c.WithAlias("alimentacao")
	assert.False(t, added)

	aliases, added := c.WithAlias("Padaria")
	assert.True(t, added)
	assert.Equal(t, []string{"mercado", "padaria"}, aliases)
	assert.Equal(t, []string{"mercado"}, c.Aliases)
}

func TestCategoryByName(t *testing.T) {
	cats := []Category{{ID: "1", Name: "CartaoDeCredito"}, {ID: "2", Name: "Lazer"}}
	require.NotNil(t, CategoryByName(cats, "cartao de credito"))
	assert.Equal(t, "2", CategoryByName(cats, "LAZER").ID)
	assert.Nil(t, CategoryByName(cats, "Saude"))
	assert.Nil(t, CategoryByName(cats, " "))
}

func TestDraftValidate(t *testing.T) {
	today := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	d := NewExpenseDraft(ExpenseIntent{Amount: decimal.NewFromInt(50), Category: "mercado", Date: today})
	assert.ErrorIs(t, d.Validate(), ErrCategoryRequired)

	d.SetCategory(Category{ID: "c1", Name: "Alimentacao"})
	assert.NoError(t, d.Validate())

	d.Amount = decimal.Zero
	assert.ErrorIs(t, d.Validate(), ErrInvalidAmount)

	inc := NewIncomeDraft(IncomeIntent{Amount: decimal.NewFromInt(1000), Description: "salário", Date: today})
	assert.NoError(t, inc.Validate())
	assert.Equal(t, "Salário", inc.Description)
}

func TestDraftSetKind(t *testing.T) {
	d := &Draft{Kind: KindExpense, CategoryID: "c1", CategoryName: "Lazer", CategoryText: "cinema", PaymentMethodID: "p1"}

	d.SetKind(KindIncome)
	assert.Equal(t, KindIncome, d.Kind)
	assert.False(t, d.HasCategory())
	assert.Empty(t, d.PaymentMethodID)
	assert.Empty(t, d.CategoryText)

	d.SetKind(KindExpense)
	assert.ErrorIs(t, d.Validate(), ErrInvalidAmount)
}

func TestCorrectionApply(t *testing.T) {
	d := &Draft{Kind: KindExpense, Amount: decimal.NewFromInt(10)}
	ok := Correction{Field: FieldAmount, Amount: decimal.RequireFromString("60.50")}.Apply(d)
	assert.True(t, ok)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("60.5")))

	assert.False(t, Correction{Field: FieldCategory, Text: "Lazer"}.Apply(d))
}

func TestPeriodContains(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	p := Period{Start: &start, End: &end}

	assert.True(t, p.Contains(start))
	assert.True(t, p.Contains(end))
	assert.False(t, p.Contains(end.AddDate(0, 0, 1)))
	assert.True(t, Period{}.Contains(start))
	assert.True(t, Period{}.IsZero())
}
