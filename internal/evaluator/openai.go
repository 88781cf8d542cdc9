package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/tavila/amparo-agent/internal/llm"
	"github.com/tavila/amparo-agent/internal/prompts"
)

var resultSchema = generateSchema[Result]()

// OpenAIEvaluator scores candidates through the Responses API with a
// strict JSON schema, so the verdict shape is enforced server-side
// before ValidateResult ever runs.
type OpenAIEvaluator struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIEvaluator creates an evaluator bound to one OpenAI model.
func NewOpenAIEvaluator(cfg llm.Config, logger *slog.Logger) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai evaluator requires an API key")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIEvaluator{
		client: &client,
		model:  cfg.Model,
		logger: logger.With("component", "evaluator", "provider", "openai"),
	}, nil
}

// Evaluate requests one structured verdict and validates it.
func (e *OpenAIEvaluator) Evaluate(ctx context.Context, userMsg, candidate string) (Result, error) {
	started := time.Now()

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:   "reply_evaluation",
			Schema: resultSchema,
			Strict: openai.Bool(true),
			Type:   "json_schema",
		},
	}
	params := responses.ResponseNewParams{
		Model: e.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(prompts.EvaluationPrompt(userMsg, candidate), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{Format: format},
	}

	resp, err := e.callWithRetry(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("evaluation request: %w", err)
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return Result{}, fmt.Errorf("evaluation: %w", llm.ErrEmptyOutput)
	}

	r, err := parseResult(text)
	if err != nil {
		return Result{}, err
	}

	e.logger.Debug("candidate evaluated",
		"score", r.Score,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return r, nil
}

// callWithRetry retries rate-limited and server-errored calls with a
// short staged backoff. Anything else fails immediately.
func (e *OpenAIEvaluator) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxAttempts = 3
	waitTimes := []time.Duration{time.Second, 5 * time.Second}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := e.client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}
		if attempt < maxAttempts-1 {
			e.logger.Warn("transient API error, retrying",
				"attempt", attempt+1,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(waitTimes[attempt]):
			}
		}
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", maxAttempts, lastErr)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

// generateSchema reflects T into a schema acceptable to strict
// structured-output mode: inline definitions, no additional
// properties, required fields taken from jsonschema tags.
func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	raw, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		panic(err)
	}
	return schema
}

// Ping verifies the credentials by listing available models.
func (e *OpenAIEvaluator) Ping(ctx context.Context) error {
	if _, err := e.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai ping: %w", err)
	}
	return nil
}
