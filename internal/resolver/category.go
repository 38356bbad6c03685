package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/rs/zerolog"
)

type CategorySource interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
}

// Suggester - внешний классификатор, выбирающий одну категорию из известных.
// Пустая строка означает, что подходящей категории нет.
type Suggester interface {
	SuggestCategory(ctx context.Context, text string, known []string) (string, error)
}

// Resolution - результат разрешения категории: либо одна категория,
// либо упорядоченный список кандидатов (возможно пустой).
type Resolution struct {
	Category   *model.Category
	Candidates []model.Category
}

func (r Resolution) Resolved() bool {
	return r.Category != nil
}

// CategoryResolver сопоставляет свободный текст с категорией
type CategoryResolver struct {
	source    CategorySource
	suggester Suggester
	terms     AmbiguousTerms
	log       zerolog.Logger
}

// NewCategoryResolver создает резолвер. suggester может быть nil.
func NewCategoryResolver(source CategorySource, suggester Suggester, terms AmbiguousTerms, log zerolog.Logger) *CategoryResolver {
	if terms == nil {
		terms = DefaultAmbiguousTerms()
	}
	return &CategoryResolver{
		source:    source,
		suggester: suggester,
		terms:     terms,
		log:       log.With().Str("component", "category_resolver").Logger(),
	}
}

// Resolve ищет категорию по точному имени и синонимам, а при неудаче
// собирает кандидатов: подсказка классификатора, таблица неоднозначных терминов, подстроки.
func (r *CategoryResolver) Resolve(ctx context.Context, text string) (Resolution, error) {
	categories, err := r.source.GetCategories(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to load categories: %w", err)
	}

	if c := MatchExact(categories, text); c != nil {
		return Resolution{Category: c}, nil
	}
	return Resolution{Candidates: r.candidates(ctx, categories, text)}, nil
}

// Exact ищет категорию только по точному имени или синониму
func (r *CategoryResolver) Exact(ctx context.Context, text string) (*model.Category, error) {
	categories, err := r.source.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return MatchExact(categories, text), nil
}

func (r *CategoryResolver) candidates(ctx context.Context, categories []model.Category, text string) []model.Category {
	text = strings.TrimSpace(text)
	if text == "" || len(categories) == 0 {
		return nil
	}

	if r.suggester != nil {
		suggestion, err := r.suggester.SuggestCategory(ctx, text, model.CategoryNames(categories))
		switch {
		case err != nil:
			r.log.Warn().Err(err).Str("text", text).Msg("category suggestion failed")
		case suggestion != "":
			if c := exactName(categories, suggestion); c != nil {
				return []model.Category{*c}
			}
			r.log.Debug().Str("suggestion", suggestion).Msg("suggested category does not exist")
		}
	}

	var found []model.Category
	for _, name := range r.terms.Lookup(text) {
		if c := exactName(categories, name); c != nil {
			found = append(found, *c)
		}
	}
	if len(found) > 0 {
		return dedupe(found)
	}

	return dedupe(substringMatches(categories, text))
}

// MatchExact сравнивает текст с каноническими именами (после нормализации),
// затем с синонимами. Возвращает первое совпадение.
func MatchExact(categories []model.Category, text string) *model.Category {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	canonical := model.CanonicalName(text)
	for i := range categories {
		name := categories[i].Name
		if strings.EqualFold(name, canonical) || strings.EqualFold(name, text) {
			return &categories[i]
		}
	}
	for i := range categories {
		if categories[i].HasAlias(text) {
			return &categories[i]
		}
	}
	return nil
}

func exactName(categories []model.Category, name string) *model.Category {
	name = strings.TrimSpace(name)
	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) {
			return &categories[i]
		}
	}
	return nil
}

func substringMatches(categories []model.Category, text string) []model.Category {
	lower := strings.ToLower(text)
	canonical := strings.ToLower(model.CanonicalName(text))

	var found []model.Category
	for _, c := range categories {
		name := strings.ToLower(c.Name)
		if overlaps(name, lower) || overlaps(name, canonical) {
			found = append(found, c)
			continue
		}
		for _, alias := range c.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias != "" && overlaps(alias, lower) {
				found = append(found, c)
				break
			}
		}
	}
	return found
}

func overlaps(a, b string) bool {
	return a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a))
}

func dedupe(categories []model.Category) []model.Category {
	seen := make(map[string]bool, len(categories))
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}
