package resolver

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AmbiguousTerms сопоставляет распространенные неоднозначные слова со списком
// подходящих категорий. Ключи хранятся в нижнем регистре.
type AmbiguousTerms map[string][]string

// DefaultAmbiguousTerms возвращает встроенную таблицу. В списках перечислены
// и португальские, и английские имена: кандидатами становятся только существующие категории.
func DefaultAmbiguousTerms() AmbiguousTerms {
	return AmbiguousTerms{
		"mercado":    {"Alimentacao", "Compras", "Food", "Shopping"},
		"farmacia":   {"Saude", "Compras", "Health", "Shopping"},
		"farmácia":   {"Saude", "Compras", "Health", "Shopping"},
		"transporte": {"Transporte", "Carro", "Viagem", "Transport", "Car", "Travel"},
		"lazer":      {"Lazer", "Entretenimento", "Leisure", "Entertainment"},
		"casa":       {"Casa", "Moradia", "Home", "Housing"},
		"contas":     {"Contas", "Moradia", "Bills", "Housing"},
	}
}

// LoadAmbiguousTerms читает таблицу из YAML-файла вида
//
//	mercado: [Alimentacao, Compras]
//	farmacia: [Saude, Compras]
func LoadAmbiguousTerms(path string) (AmbiguousTerms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ambiguous terms: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ambiguous terms %s: %w", path, err)
	}

	terms := make(AmbiguousTerms, len(raw))
	for term, names := range raw {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" {
			continue
		}
		terms[key] = append(terms[key], names...)
	}
	return terms, nil
}

// Lookup возвращает имена категорий для термина
func (t AmbiguousTerms) Lookup(text string) []string {
	return t[strings.ToLower(strings.TrimSpace(text))]
}
