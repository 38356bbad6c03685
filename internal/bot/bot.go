package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/finance_intake_bot/internal/conversation"
	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// API - часть Telegram Bot API, которой пользуется бот
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Engine ведет диалог регистрации транзакций
type Engine interface {
	HandleMessage(ctx context.Context, chatID int64, text string) []conversation.Reply
	Cancel(ctx context.Context, chatID int64) []conversation.Reply
}

// Reports - отчеты, доступные через команды
type Reports interface {
	Balance(ctx context.Context, period model.Period) []conversation.Reply
	SpendingByCategory(ctx context.Context, paymentMethod string, period model.Period) []conversation.Reply
	SpendingByPaymentMethod(ctx context.Context, category string, period model.Period) []conversation.Reply
	MonthlyCombined(ctx context.Context, period model.Period) []conversation.Reply
	ListExpenses(ctx context.Context, category string, period model.Period) []conversation.Reply
	CategoryTotal(ctx context.Context, category string) []conversation.Reply
	Categories(ctx context.Context) []conversation.Reply
}

// Catalog - управление категориями через команды
type Catalog interface {
	AddCategory(ctx context.Context, name string, limit decimal.NullDecimal) (*model.Category, error)
	SetCategoryLimit(ctx context.Context, categoryID string, limit decimal.Decimal) error
	AddAliases(ctx context.Context, categoryID string, aliases []string) ([]string, error)
}

type CategoryFinder interface {
	Exact(ctx context.Context, text string) (*model.Category, error)
}

// ErrInvalidUpdate - тело webhook не является обновлением Telegram
var ErrInvalidUpdate = errors.New("invalid update")

type Bot struct {
	api        API
	engine     Engine
	reports    Reports
	catalog    Catalog
	categories CategoryFinder
	dispatcher *conversation.Dispatcher
	log        zerolog.Logger
}

func NewBot(api API, engine Engine, reports Reports, catalog Catalog, categories CategoryFinder, log zerolog.Logger) *Bot {
	return &Bot{
		api:        api,
		engine:     engine,
		reports:    reports,
		catalog:    catalog,
		categories: categories,
		dispatcher: conversation.NewDispatcher(log),
		log:        log.With().Str("component", "bot").Logger(),
	}
}

// Start запускает бота в режиме long polling и блокируется до отмены ctx
func (b *Bot) Start(ctx context.Context, timeout int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.log.Info().Int("timeout", timeout).Msg("long polling started")
	for {
		select {
		case <-ctx.Done():
			b.log.Info().Msg("long polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if _, err := b.dispatch(ctx, update); err != nil {
				b.log.Error().Err(err).Int("update_id", update.UpdateID).Msg("error handling update")
			}
		}
	}
}

// HandleWebhook обрабатывает одно обновление и ждет, пока ответы будут отправлены.
// Ошибка ctx означает, что обновление принято, но ответы еще не отправлены.
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}

	done, err := b.dispatch(ctx, update)
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WebhookHandler - HTTP обработчик для POST запросов Telegram
func (b *Bot) WebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()
		w.WriteHeader(b.WebhookStatus(b.HandleWebhook(ctx, body)))
	})
}

// WebhookStatus выбирает HTTP статус ответа Telegram по результату HandleWebhook.
// Обновление, принятое в очередь, подтверждается 200 даже без отправленных ответов.
func (b *Bot) WebhookStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidUpdate):
		b.log.Warn().Err(err).Msg("rejected webhook body")
		return http.StatusBadRequest
	case errors.Is(err, conversation.ErrDispatcherClosed):
		b.log.Warn().Err(err).Msg("webhook update while shutting down")
		return http.StatusServiceUnavailable
	default:
		b.log.Warn().Err(err).Msg("webhook update accepted, replies still pending")
		return http.StatusOK
	}
}

// Close ждет завершения уже принятых обновлений
func (b *Bot) Close() {
	b.dispatcher.Close()
}
