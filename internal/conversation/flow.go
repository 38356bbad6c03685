package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ivanoskov/finance_intake_bot/internal/logger"
	"github.com/ivanoskov/finance_intake_bot/internal/model"
	"github.com/ivanoskov/finance_intake_bot/internal/repository"
)

func (e *Engine) addCategory(ctx context.Context, in model.AddCategoryIntent) []Reply {
	log := logger.FromContext(ctx)

	category, err := e.ledger.AddCategory(ctx, in.Name, in.MonthlyLimit)
	switch {
	case errors.Is(err, model.ErrEmptyName):
		return say("Qual o nome da categoria? Exemplo: \"criar categoria Pets com limite de 200\".")
	case errors.Is(err, model.ErrInvalidAmount):
		return say("O limite mensal precisa ser um valor positivo.")
	case errors.Is(err, repository.ErrCategoryExists):
		return say(fmt.Sprintf("⚠️ A categoria '%s' já existe.", model.CanonicalName(in.Name)))
	case err != nil:
		log.Error().Err(err).Str("name", in.Name).Msg("failed to add category")
		return say(msgStoreProblem)
	}

	msg := fmt.Sprintf("✅ Categoria '%s' criada!", category.Name)
	if category.MonthlyLimit.Valid {
		msg += fmt.Sprintf(" Limite mensal: %s.", model.FormatBRL(category.MonthlyLimit.Decimal))
	}
	return say(msg)
}

func (e *Engine) resolveCategory(ctx context.Context, sess *Session) []Reply {
	d := sess.Draft
	res, err := e.categories.Resolve(ctx, d.CategoryText)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("category resolution failed")
		sess.Reset()
		return say(msgStoreProblem)
	}

	if res.Resolved() {
		d.SetCategory(*res.Category)
		return e.resolvePaymentMethod(ctx, sess)
	}

	d.Candidates = res.Candidates
	sess.State = StateCategoryClarification
	return []Reply{e.categoryPrompt(d)}
}

func (e *Engine) categoryPrompt(d *model.Draft) Reply {
	msg := fmt.Sprintf("🤔 Não encontrei a categoria '%s'.", d.CategoryText)
	if len(d.Candidates) > 0 {
		msg += " Você quis dizer alguma destas?"
	} else {
		msg += " Quer criar uma nova?"
	}

	options := make([]string, 0, len(d.Candidates)+2)
	options = append(options, model.CategoryNames(d.Candidates)...)
	options = append(options, OptionCreateCategory, OptionNotApplicable)
	return Reply{Text: msg, Options: options}
}

func (e *Engine) handleCategoryChoice(ctx context.Context, sess *Session, text string) []Reply {
	d := sess.Draft

	switch {
	case isCreateCategory(text):
		sess.State = StateNewCategoryName
		return say(msgAskNewCategoryName)
	case isNotApplicable(text):
		sess.State = StateNewCategoryName
		return say(msgAskOtherCategoryName)
	}

	if c := model.CategoryByName(d.Candidates, text); c != nil {
		d.SetCategory(*c)
		return e.resolvePaymentMethod(ctx, sess)
	}

	c, err := e.categories.Exact(ctx, text)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("category lookup failed")
	}
	if c != nil {
		d.SetCategory(*c)
		return e.resolvePaymentMethod(ctx, sess)
	}

	prompt := e.categoryPrompt(d)
	prompt.Text = msgPickCategory
	return []Reply{prompt}
}

func (e *Engine) handleNewCategoryName(ctx context.Context, sess *Session, text string) []Reply {
	category, err := e.ledger.EnsureCategory(ctx, text)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("name", text).Msg("failed to create category")
		sess.Reset()
		return say(fmt.Sprintf("❌ Não consegui criar a categoria '%s'. Por favor, mande a transação de novo.", text))
	}

	sess.Draft.SetCategory(*category)
	return e.resolvePaymentMethod(ctx, sess)
}

func (e *Engine) resolvePaymentMethod(ctx context.Context, sess *Session) []Reply {
	log := logger.FromContext(ctx)
	d := sess.Draft

	if d.PaymentMethodText != "" {
		pm, err := e.payments.Resolve(ctx, d.PaymentMethodText)
		if err != nil {
			log.Warn().Err(err).Msg("payment method lookup failed")
		}
		if pm != nil {
			d.SetPaymentMethod(pm)
			return e.askConfirmation(sess)
		}
	}

	methods, err := e.ledger.PaymentMethods(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not list payment methods")
	}
	options := make([]string, 0, len(methods)+1)
	for _, m := range methods {
		if !strings.EqualFold(m.Name, e.unspecified) {
			options = append(options, m.Name)
		}
	}
	options = append(options, OptionOtherUnknown)

	msg := msgAskPaymentMethod
	if d.PaymentMethodText != "" {
		msg = fmt.Sprintf("💳 Não encontrei a forma de pagamento '%s'. Escolha uma da lista ou digite uma nova.", d.PaymentMethodText)
	}
	sess.State = StateAskingPaymentMethod
	return []Reply{{Text: msg, Options: options}}
}

func (e *Engine) handlePaymentMethod(ctx context.Context, sess *Session, text string) []Reply {
	log := logger.FromContext(ctx)

	var pm *model.PaymentMethod
	if isOtherUnknown(text) || text == "" {
		pm = e.unspecifiedMethod(ctx)
	} else {
		found, err := e.payments.Resolve(ctx, text)
		if err != nil {
			log.Warn().Err(err).Msg("payment method lookup failed")
		}
		pm = found
		if pm == nil {
			created, err := e.ledger.EnsurePaymentMethod(ctx, text)
			if err != nil {
				log.Warn().Err(err).Str("name", text).Msg("could not create payment method")
				created = e.unspecifiedMethod(ctx)
			}
			pm = created
		}
	}

	sess.Draft.SetPaymentMethod(pm)
	return e.askConfirmation(sess)
}

// unspecifiedMethod возвращает служебный способ оплаты, создавая его при необходимости.
// nil означает, что расход будет записан без способа оплаты.
func (e *Engine) unspecifiedMethod(ctx context.Context) *model.PaymentMethod {
	if pm, err := e.payments.Resolve(ctx, e.unspecified); err == nil && pm != nil {
		return pm
	}
	pm, err := e.ledger.EnsureNamedPaymentMethod(ctx, e.unspecified)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("name", e.unspecified).Msg("fallback payment method unavailable")
		return nil
	}
	return pm
}

func (e *Engine) askConfirmation(sess *Session) []Reply {
	sess.State = StateAskingConfirmation
	return []Reply{{Text: summary(sess.Draft), Options: []string{OptionYes, OptionNo}}}
}

func (e *Engine) handleConfirmation(ctx context.Context, sess *Session, text string) []Reply {
	d := sess.Draft

	switch {
	case isYes(text):
		if d.Kind == model.KindExpense && !d.HasCategory() {
			sess.State = StateAskingCorrection
			return say(msgCategoryMissing)
		}

		res, err := e.ledger.Commit(ctx, d)
		if err != nil {
			log := logger.FromContext(ctx)
			log.Error().Err(err).Msg("commit failed")
			return []Reply{{Text: msgCommitFailed, Options: []string{OptionYes, OptionNo}}}
		}

		replies := say(committedText(d))
		if res.LearnedAlias != "" {
			replies = append(replies, Reply{Text: fmt.Sprintf(
				"✨ '%s' foi adicionado como um atalho para '%s'. Da próxima vez eu já vou saber!",
				res.LearnedAlias, d.CategoryName)})
		}
		if res.AliasErr != nil {
			replies = append(replies, Reply{Text: fmt.Sprintf(
				"⚠️ O gasto foi registrado, mas não consegui memorizar '%s' como atalho.", d.CategoryText)})
		}
		sess.Reset()
		return replies

	case isNo(text):
		sess.State = StateAskingCorrection
		return say(msgCorrectionPrompt)

	default:
		return []Reply{{Text: msgConfirmYesNo, Options: []string{OptionYes, OptionNo}}}
	}
}

func (e *Engine) handleCorrection(ctx context.Context, sess *Session, text string) []Reply {
	if sess.Pending != nil {
		return e.handleCreateCategoryAnswer(ctx, sess, text)
	}

	log := logger.FromContext(ctx)
	d := sess.Draft

	c, ok := e.corrections.Parse(ctx, text)
	if !ok {
		return say(msgCorrectionUnclear)
	}

	switch c.Field {
	case model.FieldCategory:
		if d.Kind != model.KindExpense {
			return say(msgFieldNotForIncome)
		}
		category, err := e.categories.Exact(ctx, c.Text)
		if err != nil {
			log.Error().Err(err).Msg("category lookup failed")
			return say(msgStoreProblem)
		}
		if category == nil {
			name := model.CanonicalName(c.Text)
			sess.Pending = &SubQuestion{CreateCategory: name}
			return []Reply{{
				Text:    fmt.Sprintf("A categoria '%s' não existe. Deseja criá-la?", name),
				Options: []string{OptionYes, OptionNo},
			}}
		}
		d.SetCategory(*category)

	case model.FieldPaymentMethod:
		if d.Kind != model.KindExpense {
			return say(msgFieldNotForIncome)
		}
		pm, err := e.payments.Resolve(ctx, c.Text)
		if err != nil {
			log.Error().Err(err).Msg("payment method lookup failed")
			return say(msgStoreProblem)
		}
		if pm == nil {
			return say(fmt.Sprintf("Não encontrei a forma de pagamento '%s'. Tente outra, por exemplo 'Forma Pix'.", c.Text))
		}
		d.SetPaymentMethod(pm)

	default:
		c.Apply(d)
	}

	log.Debug().Stringer("field", c.Field).Msg("draft corrected")
	return append(say(fmt.Sprintf("✅ %s atualizado!", c.Field.Label())), e.askConfirmation(sess)...)
}

func (e *Engine) handleCreateCategoryAnswer(ctx context.Context, sess *Session, text string) []Reply {
	name := sess.Pending.CreateCategory
	sess.Pending = nil

	var replies []Reply
	if isYes(text) {
		category, err := e.ledger.EnsureCategory(ctx, name)
		if err != nil {
			log := logger.FromContext(ctx)
			log.Error().Err(err).Str("name", name).Msg("failed to create category")
			replies = say(fmt.Sprintf("❌ Não consegui criar a categoria '%s'.", name))
		} else {
			sess.Draft.SetCategory(*category)
			replies = say(fmt.Sprintf("✅ Categoria '%s' criada e aplicada!", category.Name))
		}
	} else {
		replies = say(msgCategoryNotCreated)
	}
	return append(replies, e.askConfirmation(sess)...)
}
