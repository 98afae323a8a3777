package domain

import "time"

// QuizMode selects the preset a session is resolved from.
type QuizMode string

const (
	ModeQuick  QuizMode = "quick"
	ModeTimed  QuizMode = "timed"
	ModeCustom QuizMode = "custom"
	ModeBlock  QuizMode = "block"
)

// Difficulty classifies questions; Mixed means no filtering.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyMixed  Difficulty = "mixed"
)

// QuizConfig is the fully resolved set of parameters a session runs with.
// Zero TimePerQuestion means untimed questions; zero TotalTimeLimit means
// no whole-session clock.
type QuizConfig struct {
	CategoryID       string     `json:"categoryId"`
	QuestionCount    int        `json:"questionCount"`
	Difficulty       Difficulty `json:"difficulty"`
	Mode             QuizMode   `json:"mode"`
	TimePerQuestion  int        `json:"timePerQuestion"`
	TotalTimeLimit   int        `json:"totalTimeLimit"`
	AutoAdvance      bool       `json:"autoAdvance"`
	ShowExplanations bool       `json:"showExplanations"`
	ShuffleQuestions bool       `json:"shuffleQuestions"`
	ShuffleOptions   bool       `json:"shuffleOptions"`
}

// ConfigOverrides carries the fields a caller wants to pin; nil fields fall
// back to the mode defaults.
type ConfigOverrides struct {
	CategoryID       *string     `json:"categoryId,omitempty"`
	QuestionCount    *int        `json:"questionCount,omitempty"`
	Difficulty       *Difficulty `json:"difficulty,omitempty"`
	TimePerQuestion  *int        `json:"timePerQuestion,omitempty"`
	TotalTimeLimit   *int        `json:"totalTimeLimit,omitempty"`
	AutoAdvance      *bool       `json:"autoAdvance,omitempty"`
	ShowExplanations *bool       `json:"showExplanations,omitempty"`
	ShuffleQuestions *bool       `json:"shuffleQuestions,omitempty"`
	ShuffleOptions   *bool       `json:"shuffleOptions,omitempty"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question models an MCQ item with exactly one correct option. Questions are
// read-only once loaded; sessions reference them, never copy or mutate them.
// Topic/System/Subject form the classification contract used by result
// breakdowns: the first non-empty field wins, else the item groups as "Other".
type Question struct {
	ID              string     `json:"id"`
	Text            string     `json:"text"`
	Options         []Option   `json:"options"`
	CorrectOptionID string     `json:"correctOptionId"`
	Explanation     string     `json:"explanation,omitempty"`
	Difficulty      Difficulty `json:"difficulty,omitempty"`
	Topic           string     `json:"topic,omitempty"`
	System          string     `json:"system,omitempty"`
	Subject         string     `json:"subject,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
}

// QuestionFilter narrows which questions a loader returns. Count <= 0 means
// no cap; DifficultyMixed (or empty) means any difficulty.
type QuestionFilter struct {
	CategoryID string
	Difficulty Difficulty
	Count      int
}

// AnswerRecord is the immutable outcome of one presented question. An empty
// SelectedOptionID together with TimedOut=true means the clock ran out before
// the user picked anything.
type AnswerRecord struct {
	QuestionIndex    int       `json:"questionIndex"`
	QuestionID       string    `json:"questionId"`
	SelectedOptionID string    `json:"selectedOptionId,omitempty"`
	Correct          bool      `json:"correct"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	TimedOut         bool      `json:"timedOut"`
	Timestamp        time.Time `json:"timestamp"`
}

// TopicBreakdown is the per-topic slice of a result summary.
type TopicBreakdown struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// ResultSummary is computed once from a completed session's answer list.
type ResultSummary struct {
	Score                  int                       `json:"score"`
	TotalQuestions         int                       `json:"totalQuestions"`
	AccuracyPercent        int                       `json:"accuracyPercent"`
	PerTopic               map[string]TopicBreakdown `json:"perTopic"`
	LongestCorrectStreak   int                       `json:"longestCorrectStreak"`
	LongestIncorrectStreak int                       `json:"longestIncorrectStreak"`
	TimeTakenSeconds       int                       `json:"timeTakenSeconds"`
}

// Preferences are the user-scoped defaults applied beneath explicit overrides
// when a quiz config is resolved.
type Preferences struct {
	ShowExplanations *bool `json:"showExplanations,omitempty"`
	AutoAdvance      *bool `json:"autoAdvance,omitempty"`
	Muted            bool  `json:"muted"`
}
