package interpreter

import (
	"fmt"
	"strings"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/model"
)

const intentPromptTemplate = `Você é o assistente de finanças pessoais de um bot de chat.
Hoje é %s. Categorias cadastradas: %s.

Classifique a mensagem do usuário e responda SOMENTE com um objeto JSON, sem markdown e sem comentários.
Campos de data usam o formato AAAA-MM-DD. Valores numéricos são números.

Formatos aceitos:
{"intencao": "gasto", "valor": 0.0, "categoria": "...", "data": "AAAA-MM-DD", "forma_pagamento": "..." ou null, "descricao_gasto": "..."}
{"intencao": "ganho", "valor": 0.0, "descricao": "...", "data": "AAAA-MM-DD"}
{"intencao": "adicionar_categoria", "categoria_nome": "...", "limite_mensal": 0.0 ou null}
{"intencao": "mostrar_balanco", "data_inicio": ... ou null, "data_fim": ... ou null}
{"intencao": "mostrar_grafico_gastos_categoria", "forma_pagamento": "..." ou null, "data_inicio": ..., "data_fim": ...}
{"intencao": "mostrar_grafico_gastos_por_pagamento", "categoria": "..." ou null, "data_inicio": ..., "data_fim": ...}
{"intencao": "mostrar_grafico_mensal_combinado", "data_inicio": ..., "data_fim": ...}
{"intencao": "listar_gastos_detalhados", "categoria": "..." ou null, "data_inicio": ..., "data_fim": ...}
{"intencao": "editar_gasto", "descricao": "..."}
{"intencao": "desconhecida"}

Regras:
- Se a data não for informada, use a data de hoje.
- Se a categoria do gasto não for clara, use "Outros". Se a origem do ganho não for clara, use "Diversos".
- "categoria" deve conter a palavra que o usuário usou, mesmo que não exista nas categorias cadastradas.
- Meses citados sem ano ("julho") referem-se ao ano atual; o período vai do primeiro ao último dia do mês.

Exemplos:
"gastei 50 no mercado no pix" -> {"intencao": "gasto", "valor": 50, "categoria": "mercado", "data": "%s", "forma_pagamento": "pix", "descricao_gasto": "mercado"}
"recebi 1000 de salário" -> {"intencao": "ganho", "valor": 1000, "descricao": "salário", "data": "%s"}
"quero ver meu balanço" -> {"intencao": "mostrar_balanco", "data_inicio": null, "data_fim": null}

Mensagem: %q`

const suggestPromptTemplate = `Escolha a categoria de gasto mais adequada para o texto abaixo.
Categorias possíveis: %s.
Responda apenas com o nome exato de uma categoria da lista, ou NENHUMA se nenhuma servir.

Texto: %q`

const correctionPromptTemplate = `O usuário quer corrigir um campo de uma transação pendente.
Campos possíveis: valor, data, categoria, forma_pagamento, descricao, tipo.
Responda SOMENTE com JSON no formato {"campo": "...", "novo_valor": ...}.
Datas no formato AAAA-MM-DD; tipo é "gasto" ou "ganho".

Exemplos:
"Valor 60,50" -> {"campo": "valor", "novo_valor": "60,50"}
"Categoria Lazer" -> {"campo": "categoria", "novo_valor": "Lazer"}
"na verdade foi no crédito" -> {"campo": "forma_pagamento", "novo_valor": "crédito"}

Correção: %q`

func buildIntentPrompt(text string, known []string, today time.Time) string {
	day := today.Format(model.DateLayout)
	return fmt.Sprintf(intentPromptTemplate, day, joinNames(known), day, day, text)
}

func buildSuggestPrompt(text string, known []string) string {
	return fmt.Sprintf(suggestPromptTemplate, joinNames(known), text)
}

func buildCorrectionPrompt(text string) string {
	return fmt.Sprintf(correctionPromptTemplate, text)
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "(nenhuma)"
	}
	return strings.Join(names, ", ")
}
