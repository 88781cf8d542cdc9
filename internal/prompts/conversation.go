package prompts

import (
	"fmt"
	"strings"

	"github.com/tavila/amparo-agent/internal/memory"
)

// maxHistoryBytes caps the transcript portion of the user instruction.
const maxHistoryBytes = 6000

// ConversationPrompt builds the user instruction: the recent transcript
// followed by the message being answered.
func ConversationPrompt(history []memory.Message, userText string) string {
	var b strings.Builder

	if len(history) == 0 {
		b.WriteString("Esta é a primeira mensagem da pessoa.\n")
	} else {
		b.WriteString("Conversa até aqui:\n")
		b.WriteString(Transcript(history, maxHistoryBytes))
	}

	fmt.Fprintf(&b, "\nMensagem atual da pessoa:\n%s\n", userText)
	b.WriteString("\nEscreva a próxima resposta.")
	return b.String()
}

// Transcript renders user and assistant messages as "role: text" lines,
// truncated at maxBytes. Analysis rows and chunk rows never reach this
// function, but it filters by role anyway.
func Transcript(history []memory.Message, maxBytes int) string {
	var b strings.Builder
	for _, m := range history {
		if m.Role != memory.RoleUser && m.Role != memory.RoleAssistant {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		if maxBytes > 0 && b.Len() > maxBytes {
			b.WriteString("... (truncado)\n")
			break
		}
	}
	return b.String()
}
