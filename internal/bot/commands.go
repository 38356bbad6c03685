package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/conversation"
	"github.com/ivanoskov/finance_intake_bot/internal/logger"
	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/ivanoskov/finance_intake_bot/internal/repository"
	"github.com/shopspring/decimal"
)

const msgStart = "Olá! Sou seu bot de finanças 💰\n\n" +
	"Envie seus gastos (ex: 'gastei 50 no mercado') ou seus ganhos (ex: 'recebi 1000 de salário').\n\n" +
	"Use /help para ver todos os comandos."

const msgHelp = "Como usar:\n" +
	"• 'gastei 30 no almoço', 'paguei 15 de gasolina no pix'\n" +
	"• 'recebi 1000 de salário', 'ganhei 50 de freela'\n" +
	"• 'adicione a categoria Estudos com limite de 300'\n\n" +
	"Relatórios (aceitam AAAA-MM para um mês):\n" +
	"/balanco - ganhos vs. gastos por mês\n" +
	"/gastos_por_categoria [forma] - gastos por categoria e limites\n" +
	"/total_por_pagamento [categoria] - gastos por forma de pagamento\n" +
	"/gastos_mensal_combinado - gastos por mês, categoria e forma\n" +
	"/listar_gastos [AAAA-MM | categoria] - lista detalhada\n" +
	"/total_categoria <categoria> - total do mês na categoria\n\n" +
	"Categorias:\n" +
	"/categorias - lista as categorias\n" +
	"/adicionar_categoria <nome> [limite]\n" +
	"/definir_limite <categoria> <valor> - 0 remove o limite\n" +
	"/adicionar_alias <categoria> <alias1,alias2,...>\n\n" +
	"/cancel - descarta a transação em andamento"

var monthArg = regexp.MustCompile(`^\d{4}-\d{2}$`)

// splitMonth отделяет от аргументов месяц вида AAAA-MM, если он есть
func splitMonth(args string) (model.Period, string) {
	var rest []string
	var period model.Period
	for _, word := range strings.Fields(args) {
		if period.IsZero() && monthArg.MatchString(word) {
			if t, err := time.Parse("2006-01", word); err == nil {
				start, end := model.MonthRange(t)
				period = model.Period{Start: &start, End: &end}
				continue
			}
		}
		rest = append(rest, word)
	}
	return period, strings.Join(rest, " ")
}

// splitTrailingAmount отделяет последнее слово, если это число
func splitTrailingAmount(args string) (string, decimal.Decimal, bool) {
	words := strings.Fields(args)
	if len(words) < 2 {
		return strings.Join(words, " "), decimal.Zero, false
	}
	amount, err := model.ParseAmount(words[len(words)-1])
	if err != nil {
		return strings.Join(words, " "), decimal.Zero, false
	}
	return strings.Join(words[:len(words)-1], " "), amount, true
}

func reply(format string, args ...any) []conversation.Reply {
	return []conversation.Reply{{Text: fmt.Sprintf(format, args...)}}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) []conversation.Reply {
	args = strings.TrimSpace(args)

	switch command {
	case "start":
		return []conversation.Reply{{Text: msgStart, Options: mainMenu}}
	case "help":
		return reply(msgHelp)
	case "cancel":
		return b.engine.Cancel(ctx, chatID)
	case "categorias":
		return b.reports.Categories(ctx)
	case "adicionar_categoria":
		return b.addCategory(ctx, args)
	case "definir_limite":
		return b.setLimit(ctx, args)
	case "adicionar_alias":
		return b.addAliases(ctx, args)
	case "total_categoria":
		if args == "" {
			return reply("Uso: /total_categoria <categoria>\nEx: /total_categoria Alimentacao")
		}
		return b.reports.CategoryTotal(ctx, args)
	case "balanco":
		period, _ := splitMonth(args)
		return b.reports.Balance(ctx, period)
	case "gastos_por_categoria":
		period, payment := splitMonth(args)
		return b.reports.SpendingByCategory(ctx, payment, period)
	case "total_por_pagamento":
		period, category := splitMonth(args)
		return b.reports.SpendingByPaymentMethod(ctx, category, period)
	case "gastos_mensal_combinado":
		period, _ := splitMonth(args)
		return b.reports.MonthlyCombined(ctx, period)
	case "listar_gastos":
		if args == "" {
			return reply("Uso: /listar_gastos <AAAA-MM> ou /listar_gastos <categoria>\nEx: /listar_gastos 2025-07")
		}
		period, category := splitMonth(args)
		return b.reports.ListExpenses(ctx, category, period)
	default:
		return reply("Comando desconhecido. Use /help para ver os comandos disponíveis.")
	}
}

func (b *Bot) addCategory(ctx context.Context, args string) []conversation.Reply {
	if args == "" {
		return reply("Uso: /adicionar_categoria <nome> [limite]\nEx: /adicionar_categoria Lazer 500")
	}

	name, amount, hasLimit := splitTrailingAmount(args)
	limit := decimal.NullDecimal{}
	if hasLimit && amount.IsPositive() {
		limit = decimal.NewNullDecimal(amount)
	}

	category, err := b.catalog.AddCategory(ctx, name, limit)
	switch {
	case errors.Is(err, repository.ErrCategoryExists):
		return reply("⚠️ A categoria '%s' já existe.", model.CanonicalName(name))
	case errors.Is(err, model.ErrEmptyName):
		return reply("Por favor, forneça o nome da categoria.")
	case errors.Is(err, model.ErrInvalidAmount):
		return reply("O limite precisa ser um valor positivo.")
	case err != nil:
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("name", name).Msg("failed to add category")
		return reply("❌ Erro ao adicionar a categoria '%s'.", model.CanonicalName(name))
	}

	if category.MonthlyLimit.Valid {
		return reply("✅ Categoria '%s' adicionada com limite de %s!", category.Name, model.FormatBRL(category.MonthlyLimit.Decimal))
	}
	return reply("✅ Categoria '%s' adicionada!", category.Name)
}

func (b *Bot) findCategory(ctx context.Context, name string) (*model.Category, []conversation.Reply) {
	category, err := b.categories.Exact(ctx, name)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("category lookup failed")
		return nil, reply("❌ Não consegui acessar as categorias agora.")
	}
	if category == nil {
		return nil, reply("Categoria '%s' não encontrada. Use /categorias para ver as existentes.", model.CanonicalName(name))
	}
	return category, nil
}

func (b *Bot) setLimit(ctx context.Context, args string) []conversation.Reply {
	name, amount, ok := splitTrailingAmount(args)
	if !ok {
		return reply("Uso: /definir_limite <categoria> <valor>\nEx: /definir_limite Alimentacao 800 (0 remove o limite)")
	}

	category, fail := b.findCategory(ctx, name)
	if fail != nil {
		return fail
	}

	if err := b.catalog.SetCategoryLimit(ctx, category.ID, amount); err != nil {
		if errors.Is(err, model.ErrInvalidAmount) {
			return reply("O limite não pode ser negativo.")
		}
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("category", category.Name).Msg("failed to set limit")
		return reply("❌ Erro ao definir o limite da categoria '%s'.", category.Name)
	}

	if amount.IsPositive() {
		return reply("✅ Limite da categoria '%s' definido em %s.", category.Name, model.FormatBRL(amount))
	}
	return reply("✅ Limite da categoria '%s' removido.", category.Name)
}

func (b *Bot) addAliases(ctx context.Context, args string) []conversation.Reply {
	name, list, _ := strings.Cut(args, " ")
	var aliases []string
	for _, a := range strings.Split(list, ",") {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}
	if name == "" || len(aliases) == 0 {
		return reply("Uso: /adicionar_alias <categoria> <alias1,alias2,...>\nEx: /adicionar_alias Alimentacao mercado,padaria")
	}

	category, fail := b.findCategory(ctx, name)
	if fail != nil {
		return fail
	}

	added, err := b.catalog.AddAliases(ctx, category.ID, aliases)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("category", category.Name).Msg("failed to add aliases")
		return reply("❌ Erro ao adicionar atalhos para '%s'.", category.Name)
	}
	if len(added) == 0 {
		return reply("Esses atalhos já existem para '%s'.", category.Name)
	}
	return reply("✨ Atalhos adicionados para '%s': %s", category.Name, strings.Join(added, ", "))
}
