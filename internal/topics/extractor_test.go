package topics

import (
	"context"
	"errors"
	"testing"

	"github.com/tavila/amparo-agent/internal/llm"
	"github.com/tavila/amparo-agent/internal/memory"
)

// stubClient returns a fixed completion or error.
type stubClient struct {
	output string
	err    error
}

func (s *stubClient) Complete(_ context.Context, _, _ string, _ int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{s.output}, nil
}

func (s *stubClient) Ping(context.Context) error { return nil }

func TestExtract_ParsesJSON(t *testing.T) {
	e := NewLLMExtractor(&stubClient{
		output: `{"topic": "luto", "confidence": 0.8, "keep_current": false}`,
	}, nil)

	ext, err := e.Extract(context.Background(), "perdi meu pai", "", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ext == nil {
		t.Fatal("expected an extraction")
	}
	if ext.Topic != "luto" || ext.Confidence != 0.8 || ext.KeepCurrent {
		t.Errorf("unexpected extraction: %+v", ext)
	}
}

func TestExtract_StripsCodeFences(t *testing.T) {
	e := NewLLMExtractor(&stubClient{
		output: "```json\n{\"topic\": \"ansiedade\", \"confidence\": 0.7, \"keep_current\": true}\n```",
	}, nil)

	ext, err := e.Extract(context.Background(), "não paro de me preocupar", "", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ext == nil || ext.Topic != "ansiedade" {
		t.Errorf("fenced JSON not parsed: %+v", ext)
	}
}

func TestExtract_MalformedDegradesToNil(t *testing.T) {
	e := NewLLMExtractor(&stubClient{output: "não consigo classificar isso"}, nil)

	ext, err := e.Extract(context.Background(), "mensagem", "", nil)
	if err != nil {
		t.Fatalf("malformed output must not error: %v", err)
	}
	if ext != nil {
		t.Errorf("expected nil extraction, got %+v", ext)
	}
}

func TestExtract_EmptyTopicIsNil(t *testing.T) {
	e := NewLLMExtractor(&stubClient{
		output: `{"topic": "", "confidence": 0.2, "keep_current": true}`,
	}, nil)

	ext, err := e.Extract(context.Background(), "oi", "", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ext != nil {
		t.Errorf("empty topic should yield nil, got %+v", ext)
	}
}

func TestExtract_OutOfRangeConfidenceIsNil(t *testing.T) {
	e := NewLLMExtractor(&stubClient{
		output: `{"topic": "luto", "confidence": 1.5, "keep_current": false}`,
	}, nil)

	ext, err := e.Extract(context.Background(), "mensagem", "", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ext != nil {
		t.Errorf("out-of-range confidence should yield nil, got %+v", ext)
	}
}

func TestExtract_EmptyModelOutputDegrades(t *testing.T) {
	e := NewLLMExtractor(&stubClient{err: llm.ErrEmptyOutput}, nil)

	ext, err := e.Extract(context.Background(), "mensagem", "", nil)
	if err != nil {
		t.Fatalf("empty output must degrade, not error: %v", err)
	}
	if ext != nil {
		t.Errorf("expected nil extraction, got %+v", ext)
	}
}

func TestExtract_TransportErrorPropagates(t *testing.T) {
	e := NewLLMExtractor(&stubClient{err: errors.New("connection refused")}, nil)

	_, err := e.Extract(context.Background(), "mensagem", "", nil)
	if err == nil {
		t.Fatal("transport errors must propagate")
	}
}

func TestExtract_PassesHistory(t *testing.T) {
	// The prompt builder is exercised through Extract; this just pins
	// that history does not break the call.
	e := NewLLMExtractor(&stubClient{
		output: `{"topic": "trabalho", "confidence": 0.6, "keep_current": false}`,
	}, nil)

	history := []memory.Message{
		{Role: memory.RoleUser, Content: "meu chefe me humilhou"},
		{Role: memory.RoleAssistant, Content: "Isso deve ter doído."},
	}
	ext, err := e.Extract(context.Background(), "aconteceu de novo", "trabalho", history)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ext == nil || ext.Topic != "trabalho" {
		t.Errorf("unexpected extraction: %+v", ext)
	}
}
