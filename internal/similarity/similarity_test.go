package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
)

// mockEmbedder returns canned vectors keyed by normalized text and
// counts calls, so tests can assert when the backend was reached.
type mockEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func (m *mockEmbedder) Name() string { return "mock" }

// unit returns a unit-ish vector whose cosine against {1,0} is c.
func unit(c float64) []float32 {
	return []float32{float32(c), float32(math.Sqrt(1 - c*c))}
}

func TestSimilarity_ExactMatchSkipsBackend(t *testing.T) {
	// A failing embedder proves no network is touched for exact matches.
	m := &mockEmbedder{err: errors.New("backend down")}
	e := NewEngine(m, nil)

	got, err := e.Similarity(context.Background(), "não aguento mais", "não aguento mais")
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if got != 1.0 {
		t.Errorf("similarity = %f, want 1.0", got)
	}
	if m.calls != 0 {
		t.Errorf("embedder called %d times, want 0", m.calls)
	}
}

func TestSimilarity_NormalizedMatch(t *testing.T) {
	m := &mockEmbedder{err: errors.New("backend down")}
	e := NewEngine(m, nil)

	got, err := e.Similarity(context.Background(), "  OLÁ   mundo ", "olá mundo")
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if got != 1.0 {
		t.Errorf("similarity = %f, want 1.0 after normalization", got)
	}
}

func TestSimilarity_CosinePath(t *testing.T) {
	m := &mockEmbedder{vectors: map[string][]float32{
		"primeira frase": {1, 0},
		"segunda frase":  {0, 1},
	}}
	e := NewEngine(m, nil)

	got, err := e.Similarity(context.Background(), "primeira frase", "segunda frase")
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if math.Abs(got) > 0.0001 {
		t.Errorf("similarity = %f, want 0.0 for orthogonal vectors", got)
	}
	if m.calls != 2 {
		t.Errorf("embedder called %d times, want 2", m.calls)
	}
}

func TestSimilarity_CacheReuse(t *testing.T) {
	m := &mockEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
	}}
	e := NewEngine(m, nil)

	ctx := context.Background()
	if _, err := e.Similarity(ctx, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Similarity(ctx, "a", "b"); err != nil {
		t.Fatal(err)
	}

	if m.calls != 2 {
		t.Errorf("embedder called %d times, want 2 (cache hit on repeat)", m.calls)
	}
}

func TestSimilarity_EmbedErrorPropagates(t *testing.T) {
	m := &mockEmbedder{err: errors.New("connection refused")}
	e := NewEngine(m, nil)

	_, err := e.Similarity(context.Background(), "uma coisa", "outra coisa")
	if err == nil {
		t.Fatal("expected error from failing backend")
	}
}

func TestAnalyzeLoops_NoHistoryIsVacuouslyNew(t *testing.T) {
	m := &mockEmbedder{err: errors.New("must not be called")}
	e := NewEngine(m, nil)

	rep, err := e.AnalyzeLoops(context.Background(), "primeira mensagem", nil, nil)
	if err != nil {
		t.Fatalf("AnalyzeLoops: %v", err)
	}
	if !rep.NewInformation {
		t.Error("NewInformation should be vacuously true with no prior turns")
	}
	if rep.RepeatedUserPattern || rep.AssistantLoop {
		t.Errorf("no loops should fire with no history: %+v", rep)
	}
	if m.calls != 0 {
		t.Errorf("embedder called %d times, want 0", m.calls)
	}
}

func TestAnalyzeLoops_RepeatedUserPattern(t *testing.T) {
	m := &mockEmbedder{vectors: map[string][]float32{
		"estou perdido":       {1, 0},
		"estou muito perdido": unit(0.86),
	}}
	e := NewEngine(m, nil)

	rep, err := e.AnalyzeLoops(context.Background(), "estou muito perdido",
		[]string{"estou perdido"}, nil)
	if err != nil {
		t.Fatalf("AnalyzeLoops: %v", err)
	}
	if !rep.RepeatedUserPattern {
		t.Errorf("similarity %.3f should flag repeated pattern", rep.UserSimilarity)
	}
	if rep.NewInformation {
		t.Error("a repeat is not new information")
	}
}

func TestAnalyzeLoops_HysteresisBand(t *testing.T) {
	// Between 0.80 and 0.85: not a repeat, and not new information.
	m := &mockEmbedder{vectors: map[string][]float32{
		"frase anterior": {1, 0},
		"frase parecida": unit(0.82),
	}}
	e := NewEngine(m, nil)

	rep, err := e.AnalyzeLoops(context.Background(), "frase parecida",
		[]string{"frase anterior"}, nil)
	if err != nil {
		t.Fatalf("AnalyzeLoops: %v", err)
	}
	if rep.RepeatedUserPattern {
		t.Errorf("%.3f is below the repeat threshold", rep.UserSimilarity)
	}
	if rep.NewInformation {
		t.Errorf("%.3f is above the new-information threshold", rep.UserSimilarity)
	}
}

func TestAnalyzeLoops_NewInformation(t *testing.T) {
	m := &mockEmbedder{vectors: map[string][]float32{
		"sobre meu trabalho": {1, 0},
		"sobre minha fe":     unit(0.79),
	}}
	e := NewEngine(m, nil)

	rep, err := e.AnalyzeLoops(context.Background(), "sobre minha fe",
		[]string{"sobre meu trabalho"}, nil)
	if err != nil {
		t.Fatalf("AnalyzeLoops: %v", err)
	}
	if !rep.NewInformation {
		t.Errorf("%.3f should count as new information", rep.UserSimilarity)
	}
}

func TestAnalyzeLoops_AssistantLoop(t *testing.T) {
	m := &mockEmbedder{vectors: map[string][]float32{
		"entendo sua dor":       {1, 0},
		"compreendo o que diz":  unit(0.92),
		"uma mensagem qualquer": {0, 1},
	}}
	e := NewEngine(m, nil)

	rep, err := e.AnalyzeLoops(context.Background(), "uma mensagem qualquer",
		nil,
		[]string{"entendo sua dor", "compreendo o que diz"})
	if err != nil {
		t.Fatalf("AnalyzeLoops: %v", err)
	}
	if !rep.AssistantLoop {
		t.Errorf("assistant similarity %.3f should flag a loop", rep.AssistantSimilarity)
	}
	if !rep.Any() {
		t.Error("Any() should report the assistant loop")
	}
}

func TestAnalyzeLoops_SingleAssistantReplyNoLoop(t *testing.T) {
	m := &mockEmbedder{err: errors.New("must not be called")}
	e := NewEngine(m, nil)

	rep, err := e.AnalyzeLoops(context.Background(), "mensagem",
		nil, []string{"única resposta"})
	if err != nil {
		t.Fatalf("AnalyzeLoops: %v", err)
	}
	if rep.AssistantLoop {
		t.Error("one assistant reply cannot form a loop")
	}
}

func TestAnalyzeLoops_ErrorAborts(t *testing.T) {
	m := &mockEmbedder{err: errors.New("timeout")}
	e := NewEngine(m, nil)

	_, err := e.AnalyzeLoops(context.Background(), "mensagem nova",
		[]string{"mensagem antiga"}, nil)
	if err == nil {
		t.Fatal("embedding failure must abort loop analysis")
	}
}

func TestCooldownTurns(t *testing.T) {
	if CooldownTurns != 3 {
		t.Errorf("CooldownTurns = %d, want 3", CooldownTurns)
	}
}
