package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	src     *fakeSource
	store   *fakeResultStore
	trigger *recordingTrigger
	wake    *fakeWakeLocker
	now     *fakeNow
}

func newFixture(pool []Question) *sessionFixture {
	return &sessionFixture{
		src:     &fakeSource{pool: pool},
		store:   &fakeResultStore{},
		trigger: &recordingTrigger{},
		wake:    &fakeWakeLocker{},
		now:     newFakeNow(),
	}
}

func (f *sessionFixture) session(t *testing.T, userID string, tier Tier, mode Mode, category string) *Session {
	t.Helper()
	log := quietLogger()
	s := NewSession(SessionConfig{
		UserID:     userID,
		Tier:       tier,
		Mode:       mode,
		Category:   category,
		Selector:   newTestSelector(f.src),
		Gateway:    NewGateway(f.store, f.trigger, log),
		WakeLocker: f.wake,
		Clock:      ClockOptions{Tick: time.Millisecond, Now: f.now.Now},
		Log:        log,
	})
	t.Cleanup(s.Close)
	return s
}

// answerCurrent selects and confirms, choosing the right option when correct
// is true.
func answerCurrent(t *testing.T, s *Session, correct bool) {
	t.Helper()
	ctx := context.Background()
	q := s.View().Question
	require.NotNil(t, q)

	option := "B"
	if correct {
		option = "A"
	}
	require.NoError(t, s.Select(ctx, option))
	require.NoError(t, s.Confirm(ctx))
}

func TestSession_FreeTierNineOfTenPasses(t *testing.T) {
	f := newFixture(makeQuestions(25, "signs"))
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	v := s.View()
	require.Equal(t, StateActive, v.State)
	require.Equal(t, 10, v.Total)
	assert.Equal(t, "10:00", v.Countdown)
	assert.True(t, v.KeepScreenAwake)

	for i := 0; i < 10; i++ {
		answerCurrent(t, s, i != 4)
		if i < 9 {
			require.NoError(t, s.Next(ctx))
		}
	}

	v = s.View()
	require.Equal(t, StateFinished, v.State)
	require.NotNil(t, v.Result)
	assert.Equal(t, 90, v.Result.ScorePercentage)
	assert.Equal(t, 9, v.Result.CorrectCount)
	assert.Equal(t, 10, v.Result.TotalQuestions)
	assert.True(t, v.Result.HasPassed)
	assert.Equal(t, FinishCompleted, v.FinishReason)
	assert.Equal(t, Tally{Correct: 9, Incorrect: 1}, v.Tally)
	assert.Equal(t, PersistenceSaved, v.Persistence.Status)
	assert.Equal(t, "result-1", v.Persistence.ResultID)
	assert.False(t, v.KeepScreenAwake)

	acquired, released := f.wake.counts()
	assert.Equal(t, 1, acquired)
	assert.Equal(t, 1, released)
	assert.Equal(t, []string{"user-1"}, f.trigger.triggered())
}

func TestSession_PremiumTimeoutScoresAgainstFullDenominator(t *testing.T) {
	f := newFixture(makeQuestions(30, "signs"))
	s := f.session(t, "user-1", TierPremium, ModeNormal, "")
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	require.Equal(t, 20, s.View().Total)

	for i := 0; i < 12; i++ {
		answerCurrent(t, s, i < 8)
		require.NoError(t, s.Next(ctx))
	}
	require.NoError(t, s.Select(ctx, "A"))

	f.now.Advance(1800 * time.Second)

	require.Eventually(t, func() bool { return s.State() == StateFinished }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		return s.View().Persistence.Status == PersistenceSaved
	}, time.Second, time.Millisecond)

	v := s.View()
	assert.Equal(t, FinishTimeUp, v.FinishReason)
	assert.Equal(t, 8, v.Result.CorrectCount)
	assert.Equal(t, 20, v.Result.TotalQuestions)
	assert.Equal(t, 40, v.Result.ScorePercentage)
	assert.False(t, v.Result.HasPassed)
	assert.Equal(t, "00:00", v.Countdown)

	// The selected but unconfirmed 13th question gets no record.
	assert.Len(t, s.Records(), 12)
	_, _, logs := f.store.snapshot()
	require.Len(t, logs, 1)
	assert.Len(t, logs[0].Entries, 12)
}

func TestSession_ActionAfterDeadlineFinishesImmediately(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	log := quietLogger()
	s := NewSession(SessionConfig{
		UserID:   "user-1",
		Tier:     TierFree,
		Selector: newTestSelector(f.src),
		Gateway:  NewGateway(f.store, nil, log),
		Clock:    ClockOptions{Tick: time.Hour, Now: f.now.Now},
		Log:      log,
	})
	t.Cleanup(s.Close)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Select(ctx, "A"))

	f.now.Advance(601 * time.Second)

	assert.ErrorIs(t, s.Confirm(ctx), ErrTimeUp)
	assert.Equal(t, StateFinished, s.State())
	assert.Empty(t, s.Records())
	assert.ErrorIs(t, s.Confirm(ctx), ErrNotActive)
}

func TestSession_ReviewLoadsOnlyWrongAnswers(t *testing.T) {
	f := newFixture(makeQuestions(20, "signs"))
	f.src.wrongIDs = []string{"signs-02", "signs-05", "signs-09"}
	s := f.session(t, "user-1", TierFree, ModeReview, "")

	require.NoError(t, s.Load(context.Background()))

	v := s.View()
	assert.Equal(t, StateActive, v.State)
	assert.Equal(t, 3, v.Total)
}

func TestSession_ReviewWithNothingToReviewIsEmpty(t *testing.T) {
	f := newFixture(makeQuestions(20, "signs"))
	s := f.session(t, "user-1", TierFree, ModeReview, "")

	require.NoError(t, s.Load(context.Background()))

	v := s.View()
	assert.Equal(t, StateEmpty, v.State)
	assert.Equal(t, EmptyReviewMessage, v.EmptyMessage)
	assert.Nil(t, v.Question)
	assert.False(t, v.KeepScreenAwake)
	acquired, _ := f.wake.counts()
	assert.Equal(t, 0, acquired)
	assert.ErrorIs(t, s.Select(context.Background(), "A"), ErrNotActive)
}

func TestSession_ResultWriteFailureStillShowsScore(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	f.store.resultErr = errStoreDown
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	for i := 0; i < 10; i++ {
		answerCurrent(t, s, true)
		if i < 9 {
			require.NoError(t, s.Next(ctx))
		}
	}

	v := s.View()
	assert.Equal(t, StateFinished, v.State)
	assert.Equal(t, 100, v.Result.ScorePercentage)
	assert.True(t, v.Result.HasPassed)
	assert.Equal(t, PersistenceNotSaved, v.Persistence.Status)
	assert.Equal(t, PersistenceNotSaved.Banner(), v.Persistence.Banner)
	assert.True(t, v.Persistence.Retryable)

	calls, _, _ := f.store.snapshot()
	assert.Equal(t, []string{"result"}, calls)
	assert.Empty(t, f.trigger.triggered())
}

func TestSession_SelectDoesNotLockAnswer(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	require.NoError(t, s.Select(ctx, "B"))
	require.NoError(t, s.Select(ctx, "C"))
	assert.Empty(t, s.Records())

	q := s.View().Question
	assert.Equal(t, "C", q.Selected)
	assert.False(t, q.Confirmed)
	assert.Equal(t, OptionDefault, q.Options[0].State)
	assert.Equal(t, OptionSelected, q.Options[2].State)

	assert.ErrorIs(t, s.Select(ctx, "Z"), ErrInvalidOption)
	assert.ErrorIs(t, s.Next(ctx), ErrNotConfirmed)
}

func TestSession_ConfirmedAnswerIsImmutable(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	require.NoError(t, s.Select(ctx, "B"))
	require.NoError(t, s.Confirm(ctx))
	before := s.Records()

	assert.ErrorIs(t, s.Select(ctx, "A"), ErrAnswerLocked)
	assert.ErrorIs(t, s.Confirm(ctx), ErrAnswerLocked)

	after := s.Records()
	assert.Equal(t, before, after)
	require.Len(t, after, 1)
	assert.Equal(t, "B", after[0].UserAnswer)
	assert.False(t, after[0].IsCorrect)

	q := s.View().Question
	assert.Equal(t, OptionCorrect, q.Options[0].State)
	assert.Equal(t, OptionIncorrect, q.Options[1].State)
	assert.Equal(t, OptionDefault, q.Options[2].State)
}

func TestSession_ConfirmRequiresSelection(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	require.NoError(t, s.Load(context.Background()))

	assert.ErrorIs(t, s.Confirm(context.Background()), ErrNoSelection)
	assert.Empty(t, s.Records())
}

func TestSession_RecordsGrowInQuestionOrder(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	var order []string
	prev := 0
	for i := 0; i < 10; i++ {
		order = append(order, s.View().Question.ID)
		answerCurrent(t, s, i%2 == 0)

		records := s.Records()
		assert.Len(t, records, prev+1)
		assert.LessOrEqual(t, len(records), ConfigFor(TierFree).QuestionCount)
		prev = len(records)

		if i < 9 {
			require.NoError(t, s.Next(ctx))
		}
	}

	for i, r := range s.Records() {
		assert.Equal(t, order[i], r.QuestionID)
	}
}

func TestSession_GradesAgainstLoadedSnapshot(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	// The bank changes after load.
	for i := range f.src.pool {
		f.src.pool[i].CorrectAnswer = "B"
		f.src.pool[i].Options[0] = "changed"
	}

	answerCurrent(t, s, true)
	assert.True(t, s.Records()[0].IsCorrect)
}

func TestSession_ExplanationVisibilityFollowsTier(t *testing.T) {
	f := newFixture(makeQuestions(25, "signs"))
	ctx := context.Background()

	free := f.session(t, "user-1", TierFree, ModeNormal, "")
	require.NoError(t, free.Load(ctx))
	answerCurrent(t, free, true)
	assert.Empty(t, free.View().Question.Explanation)

	premium := f.session(t, "user-1", TierPremium, ModeNormal, "")
	require.NoError(t, premium.Load(ctx))
	require.NoError(t, premium.Select(ctx, "A"))
	assert.Empty(t, premium.View().Question.Explanation, "hidden before confirmation")
	require.NoError(t, premium.Confirm(ctx))
	assert.NotEmpty(t, premium.View().Question.Explanation)
}

func TestSession_FetchErrorThenRetry(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	f.src.allErr = errStoreDown
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	ctx := context.Background()

	err := s.Load(ctx)
	require.Error(t, err)
	assert.True(t, IsQuestionFetchError(err))

	v := s.View()
	assert.Equal(t, StateError, v.State)
	assert.NotEmpty(t, v.Error)

	f.src.mu.Lock()
	f.src.allErr = nil
	f.src.mu.Unlock()

	require.NoError(t, s.Load(ctx))
	assert.Equal(t, StateActive, s.State())
	assert.ErrorIs(t, s.Load(ctx), ErrNotRetryable)
}

func TestSession_EmptyBankIsAnError(t *testing.T) {
	f := newFixture(nil)
	s := f.session(t, "user-1", TierFree, ModeCategory, "parking")

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsQuestionFetchError(err))
	assert.Equal(t, StateError, s.State())
}

func TestSession_AnonymousResultsNotSaved(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	s := f.session(t, "", TierFree, ModeNormal, "")
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	for i := 0; i < 10; i++ {
		answerCurrent(t, s, true)
		if i < 9 {
			require.NoError(t, s.Next(ctx))
		}
	}

	v := s.View()
	assert.Equal(t, 100, v.Result.ScorePercentage)
	assert.Equal(t, PersistenceSkipped, v.Persistence.Status)
	assert.False(t, v.Persistence.Retryable)
	calls, _, _ := f.store.snapshot()
	assert.Empty(t, calls)
	assert.ErrorIs(t, s.RetrySave(ctx), ErrNothingToRetry)
}

func TestSession_PartialSaveRetriesOnlyTheLog(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	f.store.logErr = errStoreDown
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	for i := 0; i < 10; i++ {
		answerCurrent(t, s, true)
		if i < 9 {
			require.NoError(t, s.Next(ctx))
		}
	}
	require.Equal(t, PersistencePartial, s.View().Persistence.Status)

	f.store.mu.Lock()
	f.store.logErr = nil
	f.store.mu.Unlock()

	require.NoError(t, s.RetrySave(ctx))

	v := s.View()
	assert.Equal(t, PersistenceSaved, v.Persistence.Status)
	assert.Equal(t, "result-1", v.Persistence.ResultID)

	calls, results, logs := f.store.snapshot()
	assert.Equal(t, []string{"result", "answer_log", "answer_log"}, calls)
	assert.Len(t, results, 1)
	require.Len(t, logs, 1)
	assert.Equal(t, "result-1", logs[0].ResultID)
}

func TestSession_NotSavedRetryRewritesBothSteps(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	f.store.resultErr = errStoreDown
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	for i := 0; i < 10; i++ {
		answerCurrent(t, s, i > 0)
		if i < 9 {
			require.NoError(t, s.Next(ctx))
		}
	}
	require.Equal(t, PersistenceNotSaved, s.View().Persistence.Status)

	f.store.mu.Lock()
	f.store.resultErr = nil
	f.store.mu.Unlock()

	require.NoError(t, s.RetrySave(ctx))
	v := s.View()
	assert.Equal(t, PersistenceSaved, v.Persistence.Status)
	assert.Equal(t, 90, v.Result.ScorePercentage)
	assert.ErrorIs(t, s.RetrySave(ctx), ErrNothingToRetry)
}

func TestSession_CloseStopsClockAndDropsLatePersistence(t *testing.T) {
	f := newFixture(makeQuestions(1, "signs"))
	f.store.entered = make(chan struct{})
	f.store.release = make(chan struct{})
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Select(ctx, "A"))

	done := make(chan error)
	go func() { done <- s.Confirm(ctx) }()

	<-f.store.entered
	s.Close()
	close(f.store.release)
	require.NoError(t, <-done)

	v := s.View()
	assert.Equal(t, StateFinished, v.State)
	assert.Equal(t, PersistencePending, v.Persistence.Status)
	assert.ErrorIs(t, s.Select(ctx, "A"), ErrSessionClosed)
	assert.ErrorIs(t, s.RetrySave(ctx), ErrSessionClosed)
}

func TestSession_CloseDuringActiveReleasesResources(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	s := f.session(t, "user-1", TierFree, ModeNormal, "")
	require.NoError(t, s.Load(context.Background()))

	s.Close()
	s.Close()

	_, released := f.wake.counts()
	assert.Equal(t, 1, released)

	f.now.Advance(time.Hour)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, StateActive, s.State(), "closed session is never finalized by the clock")
	calls, _, _ := f.store.snapshot()
	assert.Empty(t, calls)
}

func TestSession_WakeLockFailureIsSilent(t *testing.T) {
	f := newFixture(makeQuestions(10, "signs"))
	f.wake.err = ErrWakeUnsupported
	s := f.session(t, "user-1", TierFree, ModeNormal, "")

	require.NoError(t, s.Load(context.Background()))
	v := s.View()
	assert.Equal(t, StateActive, v.State)
	assert.False(t, v.KeepScreenAwake)
}
