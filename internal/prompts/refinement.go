package prompts

import "fmt"

// refinementTemplate appends the evaluator's verdict to the base
// instruction for another generation round. Format verbs: base
// instruction, round number, previous best score, analysis,
// improvement instruction.
const refinementTemplate = `%s

--- Rodada de refinamento %d ---
A melhor resposta até agora recebeu nota %.1f.
Análise do avaliador: %s
Melhoria exigida:
%s

Escreva uma resposta nova incorporando integralmente a melhoria exigida. Não repita a resposta anterior.`

// RefinementInstruction returns the instruction for refinement round
// n, carrying the previous best candidate's evaluation forward.
func RefinementInstruction(base string, round int, score float64, analysis, improvement string) string {
	return fmt.Sprintf(refinementTemplate, base, round, score, analysis, improvement)
}
