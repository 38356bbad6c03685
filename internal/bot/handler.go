package bot

import (
	"context"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/finance_intake_bot/internal/conversation"
	"github.com/ivanoskov/finance_intake_bot/internal/logger"
)

// maxCaption - ограничение Telegram на длину подписи к фото
const maxCaption = 1024

type incoming struct {
	chatID int64
	text   string
	msg    *tgbotapi.Message
}

func extract(update tgbotapi.Update) (incoming, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return incoming{chatID: update.Message.Chat.ID, text: update.Message.Text, msg: update.Message}, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return incoming{chatID: update.CallbackQuery.Message.Chat.ID, text: update.CallbackQuery.Data}, true
	default:
		return incoming{}, false
	}
}

// dispatch ставит обновление в очередь его чата. Возвращенный канал закрывается после отправки ответов.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) (<-chan struct{}, error) {
	done := make(chan struct{})
	in, ok := extract(update)
	if !ok {
		close(done)
		return done, nil
	}

	if update.CallbackQuery != nil {
		if _, err := b.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			b.log.Warn().Err(err).Msg("failed to answer callback")
		}
	}

	// Ответы отправляются и после отмены ctx вызывающего
	jobCtx := context.WithoutCancel(ctx)
	err := b.dispatcher.Submit(in.chatID, func() {
		defer close(done)
		b.handle(jobCtx, in)
	})
	if err != nil {
		close(done)
		return done, err
	}
	return done, nil
}

func (b *Bot) handle(ctx context.Context, in incoming) {
	log := b.log.With().Int64("chat_id", in.chatID).Logger()
	ctx = logger.WithContext(ctx, log)

	var replies []conversation.Reply
	if in.msg != nil && in.msg.IsCommand() {
		log.Debug().Str("command", in.msg.Command()).Msg("command received")
		replies = b.handleCommand(ctx, in.chatID, in.msg.Command(), in.msg.CommandArguments())
	} else {
		replies = b.engine.HandleMessage(ctx, in.chatID, in.text)
	}
	b.send(ctx, in.chatID, replies)
}

func (b *Bot) send(ctx context.Context, chatID int64, replies []conversation.Reply) {
	log := logger.FromContext(ctx)
	for _, r := range replies {
		for _, c := range b.render(chatID, r) {
			if _, err := b.api.Send(c); err != nil {
				log.Error().Err(err).Msg("failed to send message")
			}
		}
	}
}

func (b *Bot) render(chatID int64, r conversation.Reply) []tgbotapi.Chattable {
	markup := keyboard(r.Options)

	if r.Image == nil {
		msg := tgbotapi.NewMessage(chatID, r.Text)
		msg.ReplyMarkup = markup
		return []tgbotapi.Chattable{msg}
	}

	name := r.ImageName
	if name == "" {
		name = "grafico.png"
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: r.Image})
	photo.ReplyMarkup = markup
	if utf8.RuneCountInString(r.Text) <= maxCaption {
		photo.Caption = r.Text
		return []tgbotapi.Chattable{photo}
	}
	return []tgbotapi.Chattable{tgbotapi.NewMessage(chatID, r.Text), photo}
}
