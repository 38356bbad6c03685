package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCategories []model.Category

func (s staticCategories) GetCategories(context.Context) ([]model.Category, error) {
	out := make([]model.Category, len(s))
	for i, c := range s {
		out[i] = c.Clone()
	}
	return out, nil
}

type failingSource struct{}

func (failingSource) GetCategories(context.Context) ([]model.Category, error) {
	return nil, errors.New("store down")
}

func (failingSource) GetPaymentMethods(context.Context) ([]model.PaymentMethod, error) {
	return nil, errors.New("store down")
}

type fixedSuggester struct {
	answer string
	err    error
	calls  int
}

func (f *fixedSuggester) SuggestCategory(context.Context, string, []string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func names(cats []model.Category) []string {
	return model.CategoryNames(cats)
}

var taxonomy = staticCategories{
	{ID: "1", Name: "Alimentacao", Aliases: []string{"padaria"}},
	{ID: "2", Name: "Compras"},
	{ID: "3", Name: "Lazer", Aliases: []string{"cinema"}},
	{ID: "4", Name: "CartaoPresente"},
}

func TestCategoryResolver_Exact(t *testing.T) {
	r := NewCategoryResolver(taxonomy, nil, nil, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		text string
		want string
	}{
		{"lazer", "Lazer"},
		{"ALIMENTACAO", "Alimentacao"},
		{"cartao presente", "CartaoPresente"},
		{"Padaria", "Alimentacao"},
		{"cinema", "Lazer"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := r.Resolve(ctx, tt.text)
			require.NoError(t, err)
			require.True(t, res.Resolved())
			assert.Equal(t, tt.want, res.Category.Name)
		})
	}
}

func TestCategoryResolver_AmbiguousTermTable(t *testing.T) {
	cats := staticCategories{{ID: "f", Name: "Food"}, {ID: "s", Name: "Shopping"}, {ID: "x", Name: "Travel"}}
	r := NewCategoryResolver(cats, nil, nil, zerolog.Nop())

	res, err := r.Resolve(context.Background(), "mercado")
	require.NoError(t, err)
	assert.False(t, res.Resolved())
	assert.Equal(t, []string{"Food", "Shopping"}, names(res.Candidates))
}

func TestCategoryResolver_SuggestionIsSingleCandidate(t *testing.T) {
	s := &fixedSuggester{answer: "Lazer"}
	r := NewCategoryResolver(taxonomy, s, nil, zerolog.Nop())

	res, err := r.Resolve(context.Background(), "show do coldplay")
	require.NoError(t, err)
	assert.False(t, res.Resolved(), "a suggestion must still be confirmed by the user")
	assert.Equal(t, []string{"Lazer"}, names(res.Candidates))
	assert.Equal(t, 1, s.calls)
}

func TestCategoryResolver_InvalidSuggestionFallsThrough(t *testing.T) {
	for _, s := range []*fixedSuggester{{answer: "Inexistente"}, {answer: ""}, {err: errors.New("timeout")}} {
		r := NewCategoryResolver(taxonomy, s, nil, zerolog.Nop())
		res, err := r.Resolve(context.Background(), "mercado")
		require.NoError(t, err)
		assert.Equal(t, []string{"Alimentacao", "Compras"}, names(res.Candidates))
	}
}

func TestCategoryResolver_ExactMatchSkipsSuggester(t *testing.T) {
	s := &fixedSuggester{answer: "Compras"}
	r := NewCategoryResolver(taxonomy, s, nil, zerolog.Nop())

	res, err := r.Resolve(context.Background(), "lazer")
	require.NoError(t, err)
	assert.Equal(t, "Lazer", res.Category.Name)
	assert.Zero(t, s.calls)
}

func TestCategoryResolver_SubstringMatching(t *testing.T) {
	r := NewCategoryResolver(taxonomy, nil, AmbiguousTerms{}, zerolog.Nop())
	ctx := context.Background()

	res, err := r.Resolve(ctx, "compras do mês")
	require.NoError(t, err)
	assert.Equal(t, []string{"Compras"}, names(res.Candidates))

	res, err = r.Resolve(ctx, "ali")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alimentacao"}, names(res.Candidates))

	res, err = r.Resolve(ctx, "cinemark")
	require.NoError(t, err)
	assert.Equal(t, []string{"Lazer"}, names(res.Candidates), "alias contained in text")

	res, err = r.Resolve(ctx, "xyz")
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
}

func TestCategoryResolver_DedupePreservesOrder(t *testing.T) {
	terms := AmbiguousTerms{"feira": {"Compras", "Alimentacao", "compras"}}
	r := NewCategoryResolver(taxonomy, nil, terms, zerolog.Nop())

	res, err := r.Resolve(context.Background(), "Feira")
	require.NoError(t, err)
	assert.Equal(t, []string{"Compras", "Alimentacao"}, names(res.Candidates))
}

func TestCategoryResolver_Deterministic(t *testing.T) {
	r := NewCategoryResolver(taxonomy, &fixedSuggester{}, nil, zerolog.Nop())
	ctx := context.Background()

	for _, text := range []string{"mercado", "lazer", "ali", "nada", ""} {
		first, err := r.Resolve(ctx, text)
		require.NoError(t, err)
		second, err := r.Resolve(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, first, second, text)
	}
}

func TestCategoryResolver_SourceError(t *testing.T) {
	r := NewCategoryResolver(failingSource{}, nil, nil, zerolog.Nop())
	_, err := r.Resolve(context.Background(), "lazer")
	assert.Error(t, err)
}

type staticMethods []model.PaymentMethod

func (s staticMethods) GetPaymentMethods(context.Context) ([]model.PaymentMethod, error) {
	return append([]model.PaymentMethod(nil), s...), nil
}

func TestPaymentMethodResolver(t *testing.T) {
	r := NewPaymentMethodResolver(staticMethods{{ID: "1", Name: "Pix"}, {ID: "2", Name: "CartaoDeCredito"}})
	ctx := context.Background()

	pm, err := r.Resolve(ctx, "PIX")
	require.NoError(t, err)
	require.NotNil(t, pm)
	assert.Equal(t, "1", pm.ID)

	pm, err = r.Resolve(ctx, "cartao de credito")
	require.NoError(t, err)
	require.NotNil(t, pm)
	assert.Equal(t, "2", pm.ID)

	pm, err = r.Resolve(ctx, "cartao")
	require.NoError(t, err)
	assert.Nil(t, pm, "no fuzzy matching for payment methods")

	_, err = NewPaymentMethodResolver(failingSource{}).Resolve(ctx, "pix")
	assert.Error(t, err)
}

func TestLoadAmbiguousTerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Mercado: [Food, Shopping]\npadaria:\n  - Food\n"), 0o600))

	terms, err := LoadAmbiguousTerms(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Shopping"}, terms.Lookup(" MERCADO "))
	assert.Equal(t, []string{"Food"}, terms.Lookup("padaria"))

	_, err = LoadAmbiguousTerms(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
