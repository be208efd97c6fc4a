package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var errStoreDown = errors.New("store unavailable")

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func makeQuestions(n int, category string) []Question {
	qs := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		qs = append(qs, Question{
			ID:            fmt.Sprintf("%s-%02d", category, i),
			Text:          fmt.Sprintf("Question %d about %s?", i, category),
			Options:       []string{"A", "B", "C"},
			CorrectAnswer: "A",
			Category:      category,
			Explanation:   fmt.Sprintf("Because of rule %d.", i),
		})
	}
	return qs
}

type fakeSource struct {
	mu         sync.Mutex
	pool       []Question
	wrongIDs   []string
	allErr     error
	catErr     error
	idsErr     error
	resolveErr error
	calls      []string
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) FetchAllQuestions(context.Context) ([]Question, error) {
	f.record("all")
	if f.allErr != nil {
		return nil, f.allErr
	}
	return append([]Question(nil), f.pool...), nil
}

func (f *fakeSource) FetchQuestionsByCategory(_ context.Context, category string, _ int) ([]Question, error) {
	f.record("category")
	if f.catErr != nil {
		return nil, f.catErr
	}
	var out []Question
	for _, q := range f.pool {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeSource) FetchWrongAnswerQuestionIDs(_ context.Context, _ string, limit int) ([]string, error) {
	f.record("wrong_ids")
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	ids := append([]string(nil), f.wrongIDs...)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeSource) FetchQuestionsByIDs(_ context.Context, ids []string) ([]Question, error) {
	f.record("resolve")
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Question
	for _, q := range f.pool {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeResultStore struct {
	mu        sync.Mutex
	resultErr error
	logErr    error
	results   []ResultRecord
	logs      []AnswerLogBatch
	calls     []string
	entered   chan struct{}
	release   chan struct{}
	nextID    int
}

func (f *fakeResultStore) PersistResult(_ context.Context, record ResultRecord) (string, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "result")
	if f.resultErr != nil {
		return "", f.resultErr
	}
	f.nextID++
	f.results = append(f.results, record)
	return fmt.Sprintf("result-%d", f.nextID), nil
}

func (f *fakeResultStore) PersistAnswerLog(_ context.Context, batch AnswerLogBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "answer_log")
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, batch)
	return nil
}

func (f *fakeResultStore) snapshot() (calls []string, results []ResultRecord, logs []AnswerLogBatch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...),
		append([]ResultRecord(nil), f.results...),
		append([]AnswerLogBatch(nil), f.logs...)
}

type recordingTrigger struct {
	mu    sync.Mutex
	users []string
}

func (r *recordingTrigger) Trigger(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func (r *recordingTrigger) triggered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.users...)
}

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeNow() *fakeNow {
	return &fakeNow{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

type fakeWakeLocker struct {
	mu       sync.Mutex
	err      error
	acquired int
	released int
}

func (f *fakeWakeLocker) Acquire(context.Context) (WakeLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.acquired++
	return fakeWakeLock{f}, nil
}

func (f *fakeWakeLocker) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acquired, f.released
}

type fakeWakeLock struct{ l *fakeWakeLocker }

func (w fakeWakeLock) Release() error {
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	w.l.released++
	return nil
}
