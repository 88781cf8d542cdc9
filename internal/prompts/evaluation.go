package prompts

import "fmt"

// evaluationTemplate scores one candidate reply. Format verbs: user
// message, candidate text.
const evaluationTemplate = `Você avalia a qualidade de uma resposta de acompanhamento pastoral por chat.

Critérios, nesta ordem: a pessoa se sentiria ouvida; a resposta acolhe
sem julgar; o tom espiritual é adequado e honesto; há concretude quando
a pessoa pediu direção; a linguagem soa humana, nunca automática.

Mensagem da pessoa:
%s

Resposta candidata:
%s

Responda apenas com JSON:
{"score": nota de 0 a 10, "analysis": "avaliação breve da resposta", "improvement": "instrução de melhoria objetiva, em até 6 linhas"}

JSON:`

// EvaluationPrompt returns the fully interpolated evaluation prompt
// for one candidate.
func EvaluationPrompt(userMsg, candidate string) string {
	return fmt.Sprintf(evaluationTemplate, userMsg, candidate)
}
