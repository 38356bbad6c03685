package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/finance_intake_bot/internal/app"
	"github.com/ivanoskov/finance_intake_bot/internal/bot"
	"github.com/ivanoskov/finance_intake_bot/internal/config"
	"github.com/ivanoskov/finance_intake_bot/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var configFile string

// Без подкоманды бот работает в режиме long polling
var rootCmd = &cobra.Command{
	Use:           "financial_bot",
	Short:         "Telegram bot for personal finance tracking",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPolling,
}

var pollingCmd = &cobra.Command{
	Use:   "polling",
	Short: "Receive updates with long polling",
	RunE:  runPolling,
}

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Serve Telegram webhooks over HTTP",
	RunE:  runWebhook,
}

var setWebhookCmd = &cobra.Command{
	Use:   "set-webhook [url]",
	Short: "Register the webhook URL with Telegram",
	Args:  cobra.MaximumNArgs(1),
	RunE:  setWebhook,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: ./config.yaml)")
	rootCmd.AddCommand(pollingCmd, webhookCmd, setWebhookCmd)
}

type runtime struct {
	cfg *config.Config
	log zerolog.Logger
	api *tgbotapi.BotAPI
	bot *bot.Bot
}

func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	logger.SetDefault(log)

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	api, err := app.NewTelegramAPI(cfg, log)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, log: log, api: api, bot: app.NewBot(components, api, log)}, nil
}

func runPolling(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	// Polling и webhook несовместимы
	if _, err := rt.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		rt.log.Warn().Err(err).Msg("failed to delete webhook")
	}

	err = rt.bot.Start(ctx, rt.cfg.Telegram.PollTimeout)
	rt.bot.Close()
	return err
}

func runWebhook(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/webhook", rt.bot.WebhookHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{
		Addr:              rt.cfg.Telegram.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.log.Info().Str("addr", server.Addr).Msg("webhook server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		rt.bot.Close()
		rt.log.Info().Msg("webhook server stopped")
		return err
	})
	return g.Wait()
}

func setWebhook(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.bot.Close()

	url := rt.cfg.Telegram.WebhookURL
	if len(args) == 1 {
		url = args[0]
	}
	if url == "" {
		return errors.New("webhook url is required (argument or telegram.webhook_url)")
	}

	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := rt.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	rt.log.Info().Str("url", url).Msg("webhook registered")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
