package provider

import (
	"strings"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

// SystemInstruction is shared by every backend that drafts a reply.
const SystemInstruction = `You triage corporate e-mails and have two jobs.

1. CLASSIFICATION
Label the e-mail with exactly one category:
- "Productive": requires action, a specific answer, an investigation or a follow-up.
- "Unproductive": requires no action (thanks, compliments, informational notices, spam).
If you are uncertain, classify as "Productive".

2. SUGGESTED REPLY
Write a professional reply of at most 80 words:
- cordial and objective tone
- same language as the original e-mail
- greeting, main message and closing

OUTPUT
Answer ONLY with valid JSON in exactly this shape:
{"category": "Productive" | "Unproductive", "reply": "reply text"}

EXAMPLES
Input: "Obrigado pelo suporte! Tudo resolvido."
Output: {"category": "Unproductive", "reply": "Olá! Agradecemos o feedback positivo. Ficamos felizes em poder ajudar. Conte conosco sempre que necessário."}

Input: "Erro 503 no sistema desde ontem às 15h."
Output: {"category": "Productive", "reply": "Olá! Reportamos seu problema de acesso ao time técnico. Para agilizar, envie prints do erro e detalhes do navegador utilizado. Retornaremos em até 2h."}`

// HypothesisTemplate is filled with each candidate label by the zero-shot model.
// The pipeline substitutes a single label, so it must hold exactly one "{}".
const HypothesisTemplate = "Analise este e-mail e classifique rigorosamente como '{}' (classify this e-mail strictly as this label):\n" +
	"PRODUTIVO / PRODUCTIVE: exige ação, resposta, investigação, resolução, aprovação, orçamento ou follow-up " +
	"(requires action, an answer, an investigation, a resolution, an approval, a quote or a follow-up).\n" +
	"IMPRODUTIVO / UNPRODUCTIVE: apenas comunicação social, agradecimento, reconhecimento, informação ou conteúdo promocional " +
	"(only social talk, thanks, recognition, information or promotional content).\n" +
	"Classificação final / Final label:"

// CandidateLabels are scored by the zero-shot model; both map onto domain categories.
var CandidateLabels = []string{"Produtivo", "Improdutivo"}

// BuildUserPrompt wraps the classification input, capped at the input limit.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Analyze and classify the following e-mail:\n\n\"\"\"")
	b.WriteString(domain.Truncate(text, domain.ClassificationInputLimit))
	b.WriteString("\"\"\"")
	return b.String()
}
