package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/finance_intake_bot/internal/bot"
	"github.com/ivanoskov/finance_intake_bot/internal/charts"
	"github.com/ivanoskov/finance_intake_bot/internal/config"
	"github.com/ivanoskov/finance_intake_bot/internal/conversation"
	"github.com/ivanoskov/finance_intake_bot/internal/interpreter"
	"github.com/ivanoskov/finance_intake_bot/internal/reporting"
	"github.com/ivanoskov/finance_intake_bot/internal/repository"
	"github.com/ivanoskov/finance_intake_bot/internal/resolver"
	"github.com/ivanoskov/finance_intake_bot/internal/service"
	"github.com/rs/zerolog"
)

// Components - собранный движок без Telegram
type Components struct {
	Engine     *conversation.Engine
	Reporter   *reporting.Reporter
	Tracker    *service.ExpenseTracker
	Categories *resolver.CategoryResolver
}

func newRepository(cfg *config.Config, log zerolog.Logger) (service.Repository, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return repository.NewMemoryRepository(), nil
	case config.DriverSupabase:
		return repository.NewSupabaseRepository(cfg.Supabase.URL, cfg.Supabase.Key, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func newCompleter(ctx context.Context, cfg *config.Config) (interpreter.Completer, error) {
	switch cfg.Interpreter.Provider {
	case config.ProviderGemini:
		return interpreter.NewGeminiCompleter(ctx, cfg.Interpreter.APIKey, cfg.Interpreter.Model)
	case config.ProviderOllama:
		return interpreter.NewOllamaCompleter(cfg.Interpreter.OllamaURL, cfg.Interpreter.Model), nil
	default:
		return nil, fmt.Errorf("unknown interpreter provider %q", cfg.Interpreter.Provider)
	}
}

// Build собирает хранилище, интерпретатор, резолверы, отчеты и диалог
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Components, error) {
	repo, err := newRepository(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	llm, err := newCompleter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("interpreter: %w", err)
	}
	interp := interpreter.New(llm, log, interpreter.WithTimeout(cfg.Interpreter.Timeout))

	var terms resolver.AmbiguousTerms
	if path := cfg.Engine.AmbiguousTermsFile; path != "" {
		if terms, err = resolver.LoadAmbiguousTerms(path); err != nil {
			return nil, err
		}
		log.Info().Str("file", path).Int("terms", len(terms)).Msg("ambiguous terms loaded")
	}

	tracker := service.NewExpenseTracker(repo, log)
	categories := resolver.NewCategoryResolver(repo, interp, terms, log)
	payments := resolver.NewPaymentMethodResolver(repo)
	reporter := reporting.NewReporter(tracker, charts.NewChartGenerator(), categories, payments, log)

	engine := conversation.NewEngine(conversation.Deps{
		Interpreter:    interp,
		Corrections:    interpreter.NewCorrectionParser(interp, log),
		Categories:     categories,
		PaymentMethods: payments,
		Ledger:         tracker,
		Reporter:       reporter,
	}, log, conversation.WithUnspecifiedPaymentMethod(cfg.Engine.UnspecifiedPaymentMethod))

	return &Components{
		Engine:     engine,
		Reporter:   reporter,
		Tracker:    tracker,
		Categories: categories,
	}, nil
}

// NewTelegramAPI подключается к Bot API
func NewTelegramAPI(cfg *config.Config, log zerolog.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	log.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")
	return api, nil
}

// NewBot собирает бота поверх готового API
func NewBot(c *Components, api bot.API, log zerolog.Logger) *bot.Bot {
	return bot.NewBot(api, c.Engine, c.Reporter, c.Tracker, c.Categories, log)
}
