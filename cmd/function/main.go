package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/ivanoskov/finance_intake_bot/internal/app"
	"github.com/ivanoskov/finance_intake_bot/internal/bot"
	"github.com/ivanoskov/finance_intake_bot/internal/config"
	"github.com/ivanoskov/finance_intake_bot/internal/logger"
)

// Request структура входящего запроса от API Gateway
type Request struct {
	Body string `json:"body"`
}

// Response структура ответа для API Gateway
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Бот создается один раз на экземпляр функции: сессии диалога живут между вызовами
var (
	initOnce sync.Once
	instance *bot.Bot
	initErr  error
)

func setup(ctx context.Context) (*bot.Bot, error) {
	initOnce.Do(func() {
		cfg, err := config.Load("")
		if err != nil {
			initErr = err
			return
		}
		if initErr = cfg.Validate(); initErr != nil {
			return
		}

		log := logger.New(cfg.Log.Level, cfg.Log.Format)
		logger.SetDefault(log)

		components, err := app.Build(context.WithoutCancel(ctx), cfg, log)
		if err != nil {
			initErr = err
			return
		}
		api, err := app.NewTelegramAPI(cfg, log)
		if err != nil {
			initErr = err
			return
		}
		instance = app.NewBot(components, api, log)
	})
	return instance, initErr
}

func Handler(ctx context.Context, request Request) (*Response, error) {
	b, err := setup(ctx)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err)
	}

	// Ответ возвращается только после отправки сообщений пользователю
	err = b.HandleWebhook(ctx, []byte(request.Body))
	if status := b.WebhookStatus(err); status != http.StatusOK {
		return errorResponse(status, err)
	}

	return &Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(status int, err error) (*Response, error) {
	return &Response{
		StatusCode: status,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Точка входа для локального тестирования
}
