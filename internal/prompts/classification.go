package prompts

import (
	"fmt"
	"strings"
)

// themeClassificationTemplate picks one theme ID from the allowed set.
// Format verbs: comma-separated theme IDs, message text.
const themeClassificationTemplate = `Você escolhe o tema de apoio mais adequado para uma mensagem recebida.

Temas disponíveis: %s

Mensagem:
%s

Responda apenas com o identificador do tema escolhido, exatamente como
listado, sem nenhuma outra palavra.`

// ThemeClassificationPrompt returns the theme selection prompt for the
// allowed ID set.
func ThemeClassificationPrompt(text string, allowed []string) string {
	return fmt.Sprintf(themeClassificationTemplate, strings.Join(allowed, ", "), text)
}
