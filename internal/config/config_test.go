package config

import "testing"

func validConfig() Config {
	cfg := Config{
		HTTP:       HTTPConfig{Port: 8080},
		Database:   DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding:  EmbeddingConfig{Model: "text-embedding-3-small"},
		Completion: CompletionConfig{Model: "gpt-4o-mini"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingModels(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}

	cfg = validConfig()
	cfg.Completion.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing completion model")
	}
}

func TestValidate_FusionWeightsMustSumToOne(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SemanticVectorWeight = 0.9
	cfg.Search.SemanticLexicalWeight = 0.3

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for fusion weights not summing to 1.0")
	}
}

func TestValidate_ConfidenceThresholdRange(t *testing.T) {
	cfg := validConfig()
	cfg.Search.ConfidenceThreshold = 150

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for confidence threshold above 100")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Dimensions != 1024 {
		t.Errorf("expected Dimensions=1024, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.SemanticVectorWeight != 0.7 || cfg.Search.SemanticLexicalWeight != 0.3 {
		t.Errorf("unexpected semantic weights %g/%g",
			cfg.Search.SemanticVectorWeight, cfg.Search.SemanticLexicalWeight)
	}
	if cfg.Search.ExactVectorWeight != 0.3 || cfg.Search.ExactLexicalWeight != 0.7 {
		t.Errorf("unexpected exact weights %g/%g",
			cfg.Search.ExactVectorWeight, cfg.Search.ExactLexicalWeight)
	}
	if cfg.Search.ConfidenceThreshold != 40 {
		t.Errorf("expected ConfidenceThreshold=40, got %d", cfg.Search.ConfidenceThreshold)
	}
	if cfg.Search.CandidateMultiplier != 2 {
		t.Errorf("expected CandidateMultiplier=2, got %d", cfg.Search.CandidateMultiplier)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 120, ShutdownSec: 5},
		Database:  DatabaseConfig{ReadinessTimeout: 15},
		Embedding: EmbeddingConfig{Dimensions: 512},
		Search:    SearchConfig{ConfidenceThreshold: 60, CandidateMultiplier: 3},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Embedding.Dimensions != 512 {
		t.Errorf("expected Dimensions=512, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.ConfidenceThreshold != 60 {
		t.Errorf("expected ConfidenceThreshold=60, got %d", cfg.Search.ConfidenceThreshold)
	}
	if cfg.Search.CandidateMultiplier != 3 {
		t.Errorf("expected CandidateMultiplier=3, got %d", cfg.Search.CandidateMultiplier)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PS_TEST_KEY", "secret")

	out := expandEnvVars([]byte("api_key: ${PS_TEST_KEY}\nmodel: ${PS_TEST_MODEL:-default-model}"))
	want := "api_key: secret\nmodel: default-model"
	if string(out) != want {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, want)
	}
}
