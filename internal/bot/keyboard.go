package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const buttonsPerRow = 2

// keyboard строит клавиатуру из вариантов ответа; без вариантов клавиатура убирается
func keyboard(options []string) interface{} {
	if len(options) == 0 {
		return tgbotapi.NewRemoveKeyboard(false)
	}

	var rows [][]tgbotapi.KeyboardButton
	for start := 0; start < len(options); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(options))
		row := make([]tgbotapi.KeyboardButton, 0, end-start)
		for _, option := range options[start:end] {
			row = append(row, tgbotapi.NewKeyboardButton(option))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}

	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.OneTimeKeyboard = true
	markup.ResizeKeyboard = true
	return markup
}

// mainMenu - кнопки, которые показываются по /start
var mainMenu = []string{
	"/balanco", "/gastos_por_categoria",
	"/total_por_pagamento", "/gastos_mensal_combinado",
	"/categorias", "/help",
}
