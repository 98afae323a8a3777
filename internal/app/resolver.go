package app

import (
	"fmt"

	"usmle-quiz-service/internal/domain"
)

// maxQuestionCount caps a single session; USMLE blocks top out at 40 items.
const maxQuestionCount = 40

// modeDefaults returns the preset configuration for a quiz mode.
func modeDefaults(mode domain.QuizMode) (domain.QuizConfig, error) {
	switch mode {
	case domain.ModeQuick:
		return domain.QuizConfig{
			Mode:             domain.ModeQuick,
			QuestionCount:    10,
			Difficulty:       domain.DifficultyMixed,
			TimePerQuestion:  60,
			AutoAdvance:      true,
			ShowExplanations: false,
			ShuffleQuestions: true,
			ShuffleOptions:   true,
		}, nil
	case domain.ModeTimed:
		return domain.QuizConfig{
			Mode:             domain.ModeTimed,
			QuestionCount:    20,
			Difficulty:       domain.DifficultyMixed,
			TotalTimeLimit:   20 * 90,
			AutoAdvance:      false,
			ShowExplanations: true,
			ShuffleQuestions: true,
			ShuffleOptions:   true,
		}, nil
	case domain.ModeCustom:
		return domain.QuizConfig{
			Mode:             domain.ModeCustom,
			QuestionCount:    10,
			Difficulty:       domain.DifficultyMixed,
			AutoAdvance:      false,
			ShowExplanations: true,
			ShuffleQuestions: true,
			ShuffleOptions:   false,
		}, nil
	case domain.ModeBlock:
		return domain.QuizConfig{
			Mode:             domain.ModeBlock,
			QuestionCount:    40,
			Difficulty:       domain.DifficultyMixed,
			TotalTimeLimit:   60 * 60,
			AutoAdvance:      false,
			ShowExplanations: false,
			ShuffleQuestions: true,
			ShuffleOptions:   false,
		}, nil
	default:
		return domain.QuizConfig{}, fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
	}
}

// ResolveConfig builds the effective configuration for a session: mode
// defaults first, then stored user preferences, then explicit overrides.
// It has no side effects and validates the final result.
func ResolveConfig(mode domain.QuizMode, prefs domain.Preferences, overrides *domain.ConfigOverrides) (domain.QuizConfig, error) {
	cfg, err := modeDefaults(mode)
	if err != nil {
		return domain.QuizConfig{}, err
	}

	if prefs.ShowExplanations != nil {
		cfg.ShowExplanations = *prefs.ShowExplanations
	}
	if prefs.AutoAdvance != nil {
		cfg.AutoAdvance = *prefs.AutoAdvance
	}

	if overrides != nil {
		applyOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return domain.QuizConfig{}, err
	}
	return cfg, nil
}

func applyOverrides(cfg *domain.QuizConfig, o *domain.ConfigOverrides) {
	if o.CategoryID != nil {
		cfg.CategoryID = *o.CategoryID
	}
	if o.QuestionCount != nil {
		cfg.QuestionCount = *o.QuestionCount
	}
	if o.Difficulty != nil {
		cfg.Difficulty = *o.Difficulty
	}
	if o.TimePerQuestion != nil {
		cfg.TimePerQuestion = *o.TimePerQuestion
	}
	if o.TotalTimeLimit != nil {
		cfg.TotalTimeLimit = *o.TotalTimeLimit
	}
	if o.AutoAdvance != nil {
		cfg.AutoAdvance = *o.AutoAdvance
	}
	if o.ShowExplanations != nil {
		cfg.ShowExplanations = *o.ShowExplanations
	}
	if o.ShuffleQuestions != nil {
		cfg.ShuffleQuestions = *o.ShuffleQuestions
	}
	if o.ShuffleOptions != nil {
		cfg.ShuffleOptions = *o.ShuffleOptions
	}
}

func validateConfig(cfg domain.QuizConfig) error {
	if cfg.QuestionCount <= 0 {
		return fmt.Errorf("%w: question count must be positive, got %d", domain.ErrInvalidConfig, cfg.QuestionCount)
	}
	if cfg.QuestionCount > maxQuestionCount {
		return fmt.Errorf("%w: question count %d exceeds limit of %d", domain.ErrInvalidConfig, cfg.QuestionCount, maxQuestionCount)
	}
	if cfg.AutoAdvance && cfg.TimePerQuestion <= 0 {
		return fmt.Errorf("%w: auto-advance requires a positive per-question time", domain.ErrInvalidConfig)
	}
	if cfg.TimePerQuestion < 0 || cfg.TotalTimeLimit < 0 {
		return fmt.Errorf("%w: time limits cannot be negative", domain.ErrInvalidConfig)
	}
	return nil
}
