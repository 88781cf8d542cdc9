package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindConfig_Explicit(t *testing.T) {
	// Create a temp config file
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	os.WriteFile(path, []byte("log_level: debug\n"), 0600)

	got, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig(%q) error: %v", path, err)
	}
	if got != path {
		t.Errorf("FindConfig(%q) = %q, want %q", path, got, path)
	}
}

func TestFindConfig_ExplicitMissing(t *testing.T) {
	_, err := FindConfig("/nonexistent/amparo.yaml")
	if err == nil {
		t.Fatal("FindConfig with missing explicit path should error")
	}
}

func TestFindConfig_SearchPath(t *testing.T) {
	// When no config exists anywhere, should error
	// (Save and restore CWD to avoid finding the repo's amparo.yaml)
	dir := t.TempDir()
	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	_, err := FindConfig("")
	if err == nil {
		t.Fatal("FindConfig(\"\") with no config files should error")
	}
}

func TestFindConfig_CWD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amparo.yaml")
	os.WriteFile(path, []byte("log_level: info\n"), 0600)

	orig, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(orig)

	got, err := FindConfig("")
	if err != nil {
		t.Fatalf("FindConfig(\"\") error: %v", err)
	}
	if got != "amparo.yaml" {
		t.Errorf("FindConfig(\"\") = %q, want %q", got, "amparo.yaml")
	}
}

func TestFindConfig_EnvVar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	os.WriteFile(path, []byte("log_level: warn\n"), 0600)
	t.Setenv("AMPARO_CONFIG", path)

	got, err := FindConfig("")
	if err != nil {
		t.Fatalf("FindConfig(\"\") error: %v", err)
	}
	if got != path {
		t.Errorf("FindConfig(\"\") = %q, want %q", got, path)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amparo.yaml")
	os.WriteFile(path, []byte("inference:\n  api_key: ${AMPARO_TEST_KEY}\n"), 0600)
	t.Setenv("AMPARO_TEST_KEY", "secret123")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Inference.APIKey != "secret123" {
		t.Errorf("api_key = %q, want %q", cfg.Inference.APIKey, "secret123")
	}
}

func TestLoad_InlineSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amparo.yaml")
	os.WriteFile(path, []byte("evaluator:\n  api_key: sk-test-key\n"), 0600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Evaluator.APIKey != "sk-test-key" {
		t.Errorf("api_key = %q, want %q", cfg.Evaluator.APIKey, "sk-test-key")
	}
}

func TestLoad_DefaultsPreserved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amparo.yaml")
	os.WriteFile(path, []byte("agent:\n  name: Consolo\n"), 0600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Agent.Name != "Consolo" {
		t.Errorf("agent.name = %q, want Consolo", cfg.Agent.Name)
	}
	if cfg.Agent.HistoryLimit != 12 {
		t.Errorf("history_limit = %d, want default 12", cfg.Agent.HistoryLimit)
	}
	if cfg.Retrieval.Limit != 3 {
		t.Errorf("retrieval.limit = %d, want default 3", cfg.Retrieval.Limit)
	}
}

func TestValidate_MissingInferenceModel(t *testing.T) {
	cfg := Default()
	cfg.Inference.Model = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate should fail with empty inference.model")
	}
	if !strings.Contains(err.Error(), "inference.model") {
		t.Errorf("error should name the missing field, got: %v", err)
	}
}

func TestValidate_MissingThemesDir(t *testing.T) {
	cfg := Default()
	cfg.Themes.Dir = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate should fail with empty themes.dir")
	}
}

func TestValidate_DefaultsPass(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestEvaluatorOrInference_Fallback(t *testing.T) {
	cfg := Default()
	cfg.Inference = ProviderConfig{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		APIKey:   "sk-abc",
	}
	cfg.Evaluator = ProviderConfig{}

	ev := cfg.EvaluatorOrInference()
	if ev.Provider != "openai" || ev.Model != "gpt-4o-mini" || ev.APIKey != "sk-abc" {
		t.Errorf("evaluator should inherit inference settings, got %+v", ev)
	}
}

func TestEvaluatorOrInference_Explicit(t *testing.T) {
	cfg := Default()
	cfg.Evaluator = ProviderConfig{
		Provider: "openai",
		Model:    "gpt-4o",
		APIKey:   "sk-eval",
	}

	ev := cfg.EvaluatorOrInference()
	if ev.Model != "gpt-4o" {
		t.Errorf("explicit evaluator model should win, got %q", ev.Model)
	}
}
