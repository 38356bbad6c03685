package model

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrEmptyName = errors.New("name is empty")

var nameSeparators = strings.NewReplacer("-", " ", "_", " ")

// CanonicalName приводит имя категории или способа оплаты к каноническому виду:
// каждое слово с заглавной буквы, без разделителей ("cartao de credito" -> "CartaoDeCredito").
func CanonicalName(text string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, word := range strings.Fields(nameSeparators.Replace(text)) {
		b.WriteString(caser.String(word))
	}
	return b.String()
}

// SourceLabel делает первую букву описания заглавной, не трогая остальное
func SourceLabel(text string) string {
	text = strings.TrimSpace(text)
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError {
		return text
	}
	return string(unicode.ToUpper(r)) + text[size:]
}
