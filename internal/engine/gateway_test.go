package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedResult(records []AnswerRecord, tier Tier) Result {
	return Score(records, tier, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
}

func TestGateway_SavesResultThenAnswerLog(t *testing.T) {
	store := &fakeResultStore{}
	trigger := &recordingTrigger{}
	gw := NewGateway(store, trigger, quietLogger())

	records := answers(9, 1)
	outcome := gw.Save(context.Background(), "user-1", finishedResult(records, TierFree), records)

	require.NoError(t, outcome.Err)
	assert.Equal(t, PersistenceSaved, outcome.Status)
	assert.Equal(t, "result-1", outcome.ResultID)

	calls, results, logs := store.snapshot()
	assert.Equal(t, []string{"result", "answer_log"}, calls)
	require.Len(t, results, 1)
	assert.Equal(t, 90, results[0].ScorePercentage)
	assert.Equal(t, 9, results[0].CorrectCount)
	assert.Equal(t, 10, results[0].TotalQuestions)
	assert.Equal(t, "free", results[0].Tier)

	require.Len(t, logs, 1)
	assert.Equal(t, "result-1", logs[0].ResultID)
	assert.Equal(t, "user-1", logs[0].UserID)
	assert.Len(t, logs[0].Entries, 10)

	assert.Equal(t, []string{"user-1"}, trigger.triggered())
}

func TestGateway_AnonymousSkipsAllWrites(t *testing.T) {
	store := &fakeResultStore{}
	trigger := &recordingTrigger{}
	gw := NewGateway(store, trigger, quietLogger())

	outcome := gw.Save(context.Background(), "", finishedResult(answers(1, 0), TierFree), answers(1, 0))

	assert.Equal(t, PersistenceSkipped, outcome.Status)
	assert.ErrorIs(t, outcome.Err, ErrNoAuthenticatedUser)
	calls, _, _ := store.snapshot()
	assert.Empty(t, calls)
	assert.Empty(t, trigger.triggered())
}

func TestGateway_ResultFailureSkipsLogAndTrigger(t *testing.T) {
	store := &fakeResultStore{resultErr: errStoreDown}
	trigger := &recordingTrigger{}
	gw := NewGateway(store, trigger, quietLogger())

	outcome := gw.Save(context.Background(), "user-1", finishedResult(answers(3, 0), TierFree), answers(3, 0))

	assert.Equal(t, PersistenceNotSaved, outcome.Status)
	assert.True(t, IsPersistenceError(outcome.Err))
	assert.ErrorIs(t, outcome.Err, errStoreDown)
	calls, _, _ := store.snapshot()
	assert.Equal(t, []string{"result"}, calls)
	assert.Empty(t, trigger.triggered())
}

func TestGateway_LogFailureIsPartial(t *testing.T) {
	store := &fakeResultStore{logErr: errStoreDown}
	trigger := &recordingTrigger{}
	gw := NewGateway(store, trigger, quietLogger())

	outcome := gw.Save(context.Background(), "user-1", finishedResult(answers(3, 0), TierFree), answers(3, 0))

	assert.Equal(t, PersistencePartial, outcome.Status)
	assert.Equal(t, "result-1", outcome.ResultID)
	assert.True(t, IsPartialPersistenceError(outcome.Err))
	assert.Equal(t, []string{"user-1"}, trigger.triggered())
}

func TestGateway_InvalidResultPayloadIsNotSaved(t *testing.T) {
	store := &fakeResultStore{}
	gw := NewGateway(store, nil, quietLogger())

	bad := finishedResult(answers(3, 0), TierFree)
	bad.Tier = "gold"
	outcome := gw.Save(context.Background(), "user-1", bad, answers(3, 0))

	assert.Equal(t, PersistenceNotSaved, outcome.Status)
	calls, _, _ := store.snapshot()
	assert.Empty(t, calls)
}

func TestGateway_EmptyAnswerLogIsNotWritten(t *testing.T) {
	store := &fakeResultStore{}
	gw := NewGateway(store, nil, quietLogger())

	outcome := gw.Save(context.Background(), "user-1", finishedResult(nil, TierPremium), nil)

	assert.Equal(t, PersistenceSaved, outcome.Status)
	calls, results, _ := store.snapshot()
	assert.Equal(t, []string{"result"}, calls)
	assert.Equal(t, 0, results[0].ScorePercentage)
	assert.Equal(t, 20, results[0].TotalQuestions)
}

func TestPersistenceStatus_Banner(t *testing.T) {
	for _, s := range []PersistenceStatus{PersistenceSaved, PersistencePartial, PersistenceNotSaved, PersistenceSkipped, PersistencePending} {
		assert.NotEmpty(t, s.Banner(), "status %s", s)
	}
	assert.NotEqual(t, PersistencePartial.Banner(), PersistenceNotSaved.Banner())
	assert.True(t, PersistenceNotSaved.Retryable())
	assert.True(t, PersistencePartial.Retryable())
	assert.False(t, PersistenceSkipped.Retryable())
	assert.False(t, PersistenceSaved.Retryable())
}
