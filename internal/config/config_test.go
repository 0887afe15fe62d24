package config

import "testing"

func TestLoadScoringDefaults(t *testing.T) {
	t.Setenv("SCORE_TIMEOUT_SECONDS", "")
	t.Setenv("SCORING_MAX_CONCURRENT", "")
	t.Setenv("NOTIFY_MIN_SCORE", "")

	cfg := Load()
	if cfg.ScoreTimeoutSeconds != 15 {
		t.Fatalf("expected default score timeout 15, got %d", cfg.ScoreTimeoutSeconds)
	}
	if cfg.ScoringMaxConcurrent != 8 {
		t.Fatalf("expected default max concurrent 8, got %d", cfg.ScoringMaxConcurrent)
	}
	if cfg.NotifyMinScore != 70 {
		t.Fatalf("expected default notify threshold 70, got %d", cfg.NotifyMinScore)
	}
	if cfg.NATSSubject != "rfps.activated" {
		t.Fatalf("expected default subject rfps.activated, got %q", cfg.NATSSubject)
	}
}

func TestLoadParsesScoringOverrides(t *testing.T) {
	t.Setenv("SCORE_TIMEOUT_SECONDS", "30")
	t.Setenv("SCORING_MAX_CONCURRENT", "4")
	t.Setenv("NOTIFY_MIN_SCORE", "85")
	t.Setenv("JUDGE_RATE_LIMIT", "0.5")

	cfg := Load()
	if cfg.ScoreTimeoutSeconds != 30 {
		t.Fatalf("expected score timeout 30, got %d", cfg.ScoreTimeoutSeconds)
	}
	if cfg.ScoringMaxConcurrent != 4 {
		t.Fatalf("expected max concurrent 4, got %d", cfg.ScoringMaxConcurrent)
	}
	if cfg.NotifyMinScore != 85 {
		t.Fatalf("expected notify threshold 85, got %d", cfg.NotifyMinScore)
	}
	if cfg.JudgeRateLimit != 0.5 {
		t.Fatalf("expected judge rate limit 0.5, got %v", cfg.JudgeRateLimit)
	}
}

func TestLoadIgnoresUnparsableNumbers(t *testing.T) {
	t.Setenv("SCORE_TIMEOUT_SECONDS", "soon")
	t.Setenv("JUDGE_RATE_LIMIT", "fast")

	cfg := Load()
	if cfg.ScoreTimeoutSeconds != 15 {
		t.Fatalf("expected fallback score timeout 15, got %d", cfg.ScoreTimeoutSeconds)
	}
	if cfg.JudgeRateLimit != 2 {
		t.Fatalf("expected fallback judge rate limit 2, got %v", cfg.JudgeRateLimit)
	}
}
