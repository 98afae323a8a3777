package app

import (
	"errors"
	"testing"

	"usmle-quiz-service/internal/domain"
)

func TestQuickModeDefaults(t *testing.T) {
	cfg, err := ResolveConfig(domain.ModeQuick, domain.Preferences{}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.QuestionCount != 10 {
		t.Fatalf("expected 10 questions, got %d", cfg.QuestionCount)
	}
	if cfg.TimePerQuestion != 60 {
		t.Fatalf("expected 60s per question, got %d", cfg.TimePerQuestion)
	}
	if !cfg.AutoAdvance {
		t.Fatalf("expected auto-advance on")
	}
	if cfg.ShowExplanations {
		t.Fatalf("expected explanations off")
	}
}

func TestOverridesTakePrecedence(t *testing.T) {
	count := 5
	perQuestion := 30
	cfg, err := ResolveConfig(domain.ModeQuick, domain.Preferences{}, &domain.ConfigOverrides{
		QuestionCount:   &count,
		TimePerQuestion: &perQuestion,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.QuestionCount != 5 || cfg.TimePerQuestion != 30 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestPreferencesApplyBeneathOverrides(t *testing.T) {
	yes := true
	no := false
	cfg, err := ResolveConfig(domain.ModeQuick, domain.Preferences{ShowExplanations: &yes}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !cfg.ShowExplanations {
		t.Fatalf("expected preference to enable explanations")
	}

	cfg, err = ResolveConfig(domain.ModeQuick, domain.Preferences{ShowExplanations: &yes}, &domain.ConfigOverrides{
		ShowExplanations: &no,
	})
	if err != nil {
		t.Fatalf("resolve with override: %v", err)
	}
	if cfg.ShowExplanations {
		t.Fatalf("expected explicit override to beat stored preference")
	}
}

func TestInvalidConfigurations(t *testing.T) {
	zero := 0
	if _, err := ResolveConfig(domain.ModeQuick, domain.Preferences{}, &domain.ConfigOverrides{QuestionCount: &zero}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected invalid config for zero questions, got %v", err)
	}

	tooMany := 41
	if _, err := ResolveConfig(domain.ModeCustom, domain.Preferences{}, &domain.ConfigOverrides{QuestionCount: &tooMany}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected invalid config above question cap, got %v", err)
	}

	noTime := 0
	if _, err := ResolveConfig(domain.ModeQuick, domain.Preferences{}, &domain.ConfigOverrides{TimePerQuestion: &noTime}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected invalid config for auto-advance without time, got %v", err)
	}

	if _, err := ResolveConfig("marathon", domain.Preferences{}, nil); !errors.Is(err, domain.ErrUnknownMode) {
		t.Fatalf("expected unknown mode, got %v", err)
	}
}

func TestTimedModeUsesSessionClock(t *testing.T) {
	cfg, err := ResolveConfig(domain.ModeTimed, domain.Preferences{}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.TotalTimeLimit != 1800 {
		t.Fatalf("expected 1800s session limit, got %d", cfg.TotalTimeLimit)
	}
	if cfg.TimePerQuestion != 0 {
		t.Fatalf("expected no per-question clock in timed mode, got %d", cfg.TimePerQuestion)
	}
	if cfg.AutoAdvance {
		t.Fatalf("expected manual advance in timed mode")
	}
}
