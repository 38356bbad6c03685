package conversation

import (
	"context"
	"strings"

	"github.com/ivanoskov/finance_intake_bot/internal/logger"
	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/ivanoskov/finance_intake_bot/internal/resolver"
	"github.com/ivanoskov/finance_intake_bot/internal/service"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Interpreter interface {
	Interpret(ctx context.Context, text string, known []string) (model.Intent, error)
}

type CorrectionParser interface {
	Parse(ctx context.Context, text string) (model.Correction, bool)
}

type CategoryResolver interface {
	Resolve(ctx context.Context, text string) (resolver.Resolution, error)
	Exact(ctx context.Context, text string) (*model.Category, error)
}

type PaymentMethodResolver interface {
	Resolve(ctx context.Context, text string) (*model.PaymentMethod, error)
}

// Ledger - операции с хранилищем, которые нужны диалогу
type Ledger interface {
	Categories(ctx context.Context) ([]model.Category, error)
	PaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	AddCategory(ctx context.Context, name string, limit decimal.NullDecimal) (*model.Category, error)
	EnsureCategory(ctx context.Context, name string) (*model.Category, error)
	EnsurePaymentMethod(ctx context.Context, name string) (*model.PaymentMethod, error)
	EnsureNamedPaymentMethod(ctx context.Context, name string) (*model.PaymentMethod, error)
	Commit(ctx context.Context, draft *model.Draft) (service.CommitResult, error)
}

// Reporter строит ответы на запросы отчетов
type Reporter interface {
	Report(ctx context.Context, intent model.Intent) []Reply
}

type Deps struct {
	Interpreter    Interpreter
	Corrections    CorrectionParser
	Categories     CategoryResolver
	PaymentMethods PaymentMethodResolver
	Ledger         Ledger
	Reporter       Reporter
	Sessions       SessionStore
}

// DefaultUnspecifiedPaymentMethod - способ оплаты, когда пользователь не знает или не хочет указывать
const DefaultUnspecifiedPaymentMethod = "NaoInformado"

// Engine ведет диалог регистрации транзакций. Вызовы для одного чата должны
// выполняться последовательно (см. Dispatcher), для разных чатов - параллельно.
type Engine struct {
	interpreter Interpreter
	corrections CorrectionParser
	categories  CategoryResolver
	payments    PaymentMethodResolver
	ledger      Ledger
	reporter    Reporter
	sessions    SessionStore
	unspecified string
	log         zerolog.Logger
}

type Option func(*Engine)

// WithUnspecifiedPaymentMethod задает имя способа оплаты по умолчанию
func WithUnspecifiedPaymentMethod(name string) Option {
	return func(e *Engine) {
		if name = strings.TrimSpace(name); name != "" {
			e.unspecified = name
		}
	}
}

func NewEngine(d Deps, log zerolog.Logger, opts ...Option) *Engine {
	if d.Sessions == nil {
		d.Sessions = NewMemorySessionStore()
	}
	e := &Engine{
		interpreter: d.Interpreter,
		corrections: d.Corrections,
		categories:  d.Categories,
		payments:    d.PaymentMethods,
		ledger:      d.Ledger,
		reporter:    d.Reporter,
		sessions:    d.Sessions,
		unspecified: DefaultUnspecifiedPaymentMethod,
		log:         log.With().Str("component", "conversation").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleMessage обрабатывает одно входящее сообщение чата и возвращает ответы.
// Ошибки не выходят за пределы вызова: каждая превращается в сообщение и переход состояния.
func (e *Engine) HandleMessage(ctx context.Context, chatID int64, text string) []Reply {
	sess := e.sessions.Get(chatID)
	log := e.log.With().Int64("chat_id", chatID).Stringer("state", sess.State).Logger()
	ctx = logger.WithContext(ctx, log)
	text = strings.TrimSpace(text)

	var replies []Reply
	if sess.State != StateAwaitingMessage && sess.Draft == nil {
		log.Warn().Msg("session has no draft")
		sess.Reset()
		replies = say(msgNoDraft)
	} else {
		switch sess.State {
		case StateAwaitingMessage:
			replies = e.handleNewMessage(ctx, sess, text)
		case StateCategoryClarification:
			replies = e.handleCategoryChoice(ctx, sess, text)
		case StateNewCategoryName:
			replies = e.handleNewCategoryName(ctx, sess, text)
		case StateAskingPaymentMethod:
			replies = e.handlePaymentMethod(ctx, sess, text)
		case StateAskingConfirmation:
			replies = e.handleConfirmation(ctx, sess, text)
		case StateAskingCorrection:
			replies = e.handleCorrection(ctx, sess, text)
		default:
			log.Error().Msg("unknown conversation state")
			sess.Reset()
			replies = say(msgNoDraft)
		}
	}

	e.persist(sess)
	log.Debug().Stringer("next_state", sess.State).Int("replies", len(replies)).Msg("turn handled")
	return replies
}

// Cancel безусловно сбрасывает черновик и состояние чата
func (e *Engine) Cancel(ctx context.Context, chatID int64) []Reply {
	e.sessions.Delete(chatID)
	e.log.Debug().Int64("chat_id", chatID).Msg("conversation cancelled")
	return say(msgCancelled)
}

// State возвращает текущее состояние чата
func (e *Engine) State(chatID int64) State {
	return e.sessions.Get(chatID).State
}

func (e *Engine) persist(sess *Session) {
	if sess.State == StateAwaitingMessage {
		e.sessions.Delete(sess.ChatID)
		return
	}
	e.sessions.Save(sess)
}

func (e *Engine) handleNewMessage(ctx context.Context, sess *Session, text string) []Reply {
	log := logger.FromContext(ctx)
	if text == "" {
		return say(msgNotUnderstood)
	}

	var known []string
	if categories, err := e.ledger.Categories(ctx); err != nil {
		log.Warn().Err(err).Msg("could not load categories for interpreter")
	} else {
		known = model.CategoryNames(categories)
	}

	intent, err := e.interpreter.Interpret(ctx, text, known)
	if err != nil {
		log.Error().Err(err).Msg("interpreter failed")
		return say(msgNotUnderstood)
	}

	switch in := intent.(type) {
	case model.AddCategoryIntent:
		return e.addCategory(ctx, in)
	case model.ExpenseIntent:
		sess.Draft = model.NewExpenseDraft(in)
		return e.resolveCategory(ctx, sess)
	case model.IncomeIntent:
		sess.Draft = model.NewIncomeDraft(in)
		return e.askConfirmation(sess)
	case model.ShowBalanceIntent, model.ShowCategoryChartIntent, model.ShowPaymentChartIntent,
		model.ShowCombinedChartIntent, model.ListExpensesIntent:
		return e.reporter.Report(ctx, intent)
	case model.EditExpenseIntent:
		return say(msgEditExpense)
	case model.UnknownIntent:
		return say(msgNotUnderstood)
	default:
		log.Error().Type("intent", intent).Msg("unhandled intent")
		return say(msgNotUnderstood)
	}
}
