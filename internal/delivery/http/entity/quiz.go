package entity

import "github.com/evandrarf/drivequiz-be/internal/engine"

// Identity is the caller resolved from the bearer token. An empty UserID is
// an anonymous free-tier caller.
type Identity struct {
	UserID string
	Tier   engine.Tier
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// Request untuk memulai sesi
type StartSessionRequest struct {
	Mode     string `json:"mode" validate:"omitempty,oneof=normal category review"`
	Category string `json:"category" validate:"required_if=Mode category,max=50"`
}

// Request untuk memilih opsi
type SelectOptionRequest struct {
	Option string `json:"option" validate:"required"`
}

type OptionView struct {
	Text  string `json:"text"`
	State string `json:"state"` // default, selected, correct, incorrect
}

type QuestionView struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Category    string       `json:"category"`
	Options     []OptionView `json:"options"`
	Selected    string       `json:"selected,omitempty"`
	Confirmed   bool         `json:"confirmed"`
	Explanation string       `json:"explanation,omitempty"`
}

type ResultView struct {
	ScorePercentage int    `json:"score_percentage"`
	CorrectCount    int    `json:"correct_count"`
	TotalQuestions  int    `json:"total_questions"`
	HasPassed       bool   `json:"has_passed"`
	Tier            string `json:"tier"`
	CompletedAt     string `json:"completed_at"`
	FinishReason    string `json:"finish_reason"`
}

type PersistenceView struct {
	Status    string `json:"status"`
	Banner    string `json:"banner"`
	ResultID  string `json:"result_id,omitempty"`
	Retryable bool   `json:"retryable"`
}

// Session view response
type SessionView struct {
	SessionID        string           `json:"session_id"`
	State            string           `json:"state"`
	Tier             string           `json:"tier"`
	Mode             string           `json:"mode"`
	Category         string           `json:"category,omitempty"`
	Index            int              `json:"index"`
	Total            int              `json:"total"`
	Countdown        string           `json:"countdown"`
	RemainingSeconds int              `json:"remaining_seconds"`
	Correct          int              `json:"correct"`
	Incorrect        int              `json:"incorrect"`
	Question         *QuestionView    `json:"question,omitempty"`
	KeepScreenAwake  bool             `json:"keep_screen_awake"`
	EmptyMessage     string           `json:"empty_message,omitempty"`
	Error            string           `json:"error,omitempty"`
	Result           *ResultView      `json:"result,omitempty"`
	Persistence      *PersistenceView `json:"persistence,omitempty"`
}

type CategoryStat struct {
	Category     string `json:"category"`
	Answered     int    `json:"answered"`
	Correct      int    `json:"correct"`
	AccuracyRate string `json:"accuracy_rate"`
}

// Session report response
type SessionReport struct {
	SessionID       string         `json:"session_id"`
	ScorePercentage int            `json:"score_percentage"`
	HasPassed       bool           `json:"has_passed"`
	TotalQuestions  int            `json:"total_questions"`
	Answered        int            `json:"answered"`
	CorrectAnswers  int            `json:"correct_answers"`
	WrongAnswers    int            `json:"wrong_answers"`
	Categories      []CategoryStat `json:"categories"`
	WeakestCategory string         `json:"weakest_category,omitempty"`
	Analysis        string         `json:"analysis"`
	Recommendations string         `json:"recommendations"`
}

// Ringkasan hasil untuk riwayat
type ResultSummary struct {
	ResultID        string `json:"result_id"`
	ScorePercentage int    `json:"score_percentage"`
	CorrectCount    int    `json:"correct_count"`
	TotalQuestions  int    `json:"total_questions"`
	HasPassed       bool   `json:"has_passed"`
	Tier            string `json:"tier"`
	CompletedAt     string `json:"completed_at"`
}

type AnswerLogItem struct {
	QuestionID    string `json:"question_id"`
	QuestionText  string `json:"question_text"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Category      string `json:"category,omitempty"`
}
