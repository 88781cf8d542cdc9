package prompts

import "fmt"

// topicExtractionTemplate asks a model to classify the conversation's
// main topic. Format verbs: current registered topic (or "nenhum"),
// recent transcript, last user message.
const topicExtractionTemplate = `Você classifica o assunto principal de uma conversa de apoio pastoral.

Identifique o assunto central que a pessoa está trazendo AGORA. Use um
rótulo curto e minúsculo como "luto", "ansiedade", "conflito familiar",
"fé", "trabalho". Se nenhum assunto claro aparecer, devolva topic vazio
com confiança baixa.

Assunto registrado até agora: %s

Conversa recente:
%s

Última mensagem da pessoa: %s

Responda apenas com JSON:
{"topic": "rótulo ou vazio", "confidence": 0.0 a 1.0, "keep_current": true quando o assunto registrado continua sendo o principal}

Exemplos:
{"topic": "luto", "confidence": 0.85, "keep_current": false}
{"topic": "", "confidence": 0.2, "keep_current": true}

JSON:`

// TopicExtractionPrompt returns the fully interpolated topic
// classification prompt. currentTopic may be empty.
func TopicExtractionPrompt(userMsg, currentTopic, transcript string) string {
	if currentTopic == "" {
		currentTopic = "nenhum"
	}
	if transcript == "" {
		transcript = "(sem conversa anterior)"
	}
	return fmt.Sprintf(topicExtractionTemplate, currentTopic, transcript, userMsg)
}
