package conversation

import (
	"fmt"
	"strings"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
)

// Reply - исходящее сообщение: текст, варианты ответа и необязательная картинка
type Reply struct {
	Text      string
	Options   []string
	Image     []byte
	ImageName string
}

const (
	OptionCreateCategory = "Criar nova categoria ➕"
	OptionNotApplicable  = "Não se aplica / Outra 🤷‍♀️"
	OptionOtherUnknown   = "Outro / Não sei ❓"
	OptionYes            = "Sim ✅"
	OptionNo             = "Não ❌"
)

const (
	msgNotUnderstood = "Desculpe, não entendi 😕 Tente algo como \"gastei 50 no mercado\" ou \"recebi 1000 de salário\"."
	msgNoDraft       = "Ops! 😬 Não encontrei uma transação pendente. Pode me mandar a transação de novo?"
	msgCancelled     = "🚫 Operação cancelada. Quando quiser, é só me mandar uma nova transação."
	msgEditExpense   = "✏️ Ainda não consigo editar gastos já registrados. Use /listar_gastos para conferir seus lançamentos."
	msgStoreProblem  = "❌ Tive um problema para acessar seus dados agora. Tente novamente em instantes."

	msgAskNewCategoryName   = "Qual o nome da nova categoria?"
	msgAskOtherCategoryName = "Tudo bem! Em qual categoria devo registrar? Digite o nome (se não existir, eu crio)."
	msgPickCategory         = "Escolha uma das opções abaixo ou digite o nome de uma categoria."
	msgAskPaymentMethod     = "💳 Qual foi a forma de pagamento?"
	msgConfirmYesNo         = "Por favor, responda com Sim ou Não."
	msgCommitFailed         = "❌ Não consegui registrar a transação agora. Seus dados continuam salvos: responda Sim para tentar de novo."
	msgCategoryMissing      = "⚠️ Este gasto ainda não tem categoria. Informe uma, por exemplo: 'Categoria Lazer'."
	msgCorrectionUnclear    = "Não entendi a correção 🤔 Use o formato '<campo> <valor>', por exemplo 'Valor 60.50'."
	msgFieldNotForIncome    = "Esse campo não se aplica a ganhos. Corrija valor, data, descrição ou tipo."
	msgCategoryNotCreated   = "Ok, a categoria não foi criada."
)

const msgCorrectionPrompt = "O que você quer corrigir? Envie o campo e o novo valor, por exemplo:\n" +
	"• Categoria Lazer\n" +
	"• Valor 60.50\n" +
	"• Data 2025-07-01\n" +
	"• Forma Pix\n" +
	"• Descricao Jantar\n" +
	"• Tipo ganho"

func say(s string) []Reply {
	return []Reply{{Text: s}}
}

// summary формирует текст подтверждения черновика
func summary(d *model.Draft) string {
	var b strings.Builder
	b.WriteString("📝 Confirme a transação:\n\n")
	fmt.Fprintf(&b, "Tipo: %s\n", d.Kind.Label())
	fmt.Fprintf(&b, "Valor: %s\n", model.FormatBRL(d.Amount))

	if d.Kind == model.KindExpense {
		if d.HasCategory() {
			fmt.Fprintf(&b, "Categoria: %s %s\n", model.CategoryEmoji(d.CategoryName), d.CategoryName)
		} else {
			b.WriteString("Categoria: (não definida)\n")
		}
		payment := d.PaymentMethodName
		if payment == "" {
			payment = "Não informado"
		}
		fmt.Fprintf(&b, "Forma de pagamento: %s\n", payment)
		fmt.Fprintf(&b, "Descrição: %s\n", d.Description)
	} else {
		fmt.Fprintf(&b, "Origem: %s\n", d.Description)
	}
	fmt.Fprintf(&b, "Data: %s\n\n", model.FormatDate(d.Date))
	b.WriteString("Está correto?")
	return b.String()
}

func committedText(d *model.Draft) string {
	if d.Kind == model.KindIncome {
		return fmt.Sprintf("💰 Ganho de %s (%s) registrado com sucesso!", model.FormatBRL(d.Amount), d.Description)
	}
	return fmt.Sprintf("✅ Gasto de %s em %s %s registrado com sucesso!",
		model.FormatBRL(d.Amount), model.CategoryEmoji(d.CategoryName), d.CategoryName)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func matchesAny(answer string, variants ...string) bool {
	answer = normalizeAnswer(answer)
	for _, v := range variants {
		if answer == normalizeAnswer(v) {
			return true
		}
	}
	return false
}

func isYes(s string) bool {
	return matchesAny(s, OptionYes, "sim", "s", "yes")
}

func isNo(s string) bool {
	return matchesAny(s, OptionNo, "não", "nao", "n", "no")
}

func isCreateCategory(s string) bool {
	return matchesAny(s, OptionCreateCategory, "criar nova categoria", "criar nova", "criar")
}

func isNotApplicable(s string) bool {
	return matchesAny(s, OptionNotApplicable, "não se aplica", "nao se aplica", "outra")
}

func isOtherUnknown(s string) bool {
	return matchesAny(s, OptionOtherUnknown, "outro", "não sei", "nao sei")
}
