// Package prompts contains all LLM prompt templates used internally by
// Amparo.
//
// Prompt text is Go code rather than config files because it is program
// logic: templates use fmt.Sprintf interpolation, benefit from
// compile-time embedding, and can be validated by tests. User-facing
// configuration lives in amparo.yaml; this package holds the
// instructions we send to models for internal operations (response
// generation, candidate evaluation, topic extraction, theme
// classification).
//
// Convention: each prompt category gets its own file (system.go,
// evaluation.go, extraction.go) with an exported function that accepts
// the dynamic parts and returns the fully interpolated prompt string.
// The conversational templates are Brazilian Portuguese because that is
// the language Amparo ministers in.
package prompts
