package engine

// View is a read-only projection of a session for the client screen.
type View struct {
	SessionID        string
	State            State
	Tier             Tier
	Mode             Mode
	Category         string
	Index            int
	Total            int
	Countdown        string
	RemainingSeconds int
	Tally            Tally
	Question         *QuestionView
	KeepScreenAwake  bool
	EmptyMessage     string
	Error            string
	Result           *Result
	FinishReason     FinishReason
	Persistence      PersistenceView
}

type QuestionView struct {
	ID          string
	Text        string
	Category    string
	Options     []OptionView
	Selected    string
	Confirmed   bool
	Explanation string
}

type OptionView struct {
	Text  string
	State OptionState
}

type PersistenceView struct {
	Status    PersistenceStatus
	Banner    string
	ResultID  string
	Retryable bool
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID: s.id,
		State:     s.state,
		Tier:      s.tier,
		Mode:      s.mode,
		Category:  s.category,
		Index:     s.index,
		Total:     len(s.questions),
		Tally:     TallyAnswers(s.records),
	}

	remaining := secondsCeil(s.limits.TimeBudget)
	if s.clock != nil {
		remaining = s.clock.Remaining()
	}
	v.RemainingSeconds = remaining
	v.Countdown = FormatCountdown(remaining)
	v.KeepScreenAwake = s.wake.Held()

	switch s.state {
	case StateActive:
		v.Question = s.questionViewLocked()
	case StateEmpty:
		v.EmptyMessage = EmptyReviewMessage
	case StateError:
		if s.fetchErr != nil {
			v.Error = s.fetchErr.Error()
		}
	case StateFinished:
		r := *s.result
		v.Result = &r
		v.FinishReason = s.finishReason
		v.Persistence = PersistenceView{
			Status:    s.persistence.Status,
			Banner:    s.persistence.Status.Banner(),
			ResultID:  s.persistence.ResultID,
			Retryable: !s.saving && s.persistence.Status.Retryable(),
		}
	}
	return v
}

// Records returns a copy of the confirmed answers in order.
func (s *Session) Records() []AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AnswerRecord(nil), s.records...)
}

// Result returns the verdict once the session has finished.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

func (s *Session) questionViewLocked() *QuestionView {
	q := s.questions[s.index]
	qv := &QuestionView{
		ID:        q.ID,
		Text:      q.Text,
		Category:  q.Category,
		Options:   make([]OptionView, 0, len(q.Options)),
		Selected:  s.selected,
		Confirmed: s.confirmed,
	}

	for _, opt := range q.Options {
		qv.Options = append(qv.Options, OptionView{Text: opt, State: s.optionStateLocked(q, opt)})
	}

	if s.confirmed && s.limits.ShowExplanations {
		qv.Explanation = q.Explanation
	}
	return qv
}

// optionStateLocked only reveals correctness after confirmation.
func (s *Session) optionStateLocked(q Question, opt string) OptionState {
	if !s.confirmed {
		if opt == s.selected {
			return OptionSelected
		}
		return OptionDefault
	}
	switch {
	case opt == q.CorrectAnswer:
		return OptionCorrect
	case opt == s.selected:
		return OptionIncorrect
	default:
		return OptionDefault
	}
}
