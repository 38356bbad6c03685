package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout - формат дат при обмене с интерпретатором и хранилищем
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// ParseDate строго разбирает дату в формате YYYY-MM-DD
func ParseDate(text string) (time.Time, error) {
	if len(text) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}
	t, err := time.Parse(DateLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}
	return t, nil
}

// FormatDate форматирует дату для пользователя (DD/MM/YYYY)
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// Day отбрасывает время суток, оставляя календарную дату
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthRange возвращает первый и последний день месяца, в который попадает t
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}
