package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Tendo1904/mas-lab/pkg/adapters/memory"
	"github.com/Tendo1904/mas-lab/pkg/adapters/redis"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/Tendo1904/mas-lab/pkg/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, sessionID, state)
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, sessionID)
}

// answerRun is a RunFunc that records one canned answer on top of the prior history.
func answerRun(ctx context.Context, query string, history []domain.SessionEntry) (*domain.State, error) {
	s, err := domain.NewState(query, "")
	if err != nil {
		return nil, err
	}
	s.SessionHistory = append(s.SessionHistory, history...)
	s.SetFinalAnswer("answer to " + query)
	s.AppendSessionEntry(query, s.Answer())
	return s, nil
}

func TestManager_AskAccumulatesHistory(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), session.WithRunFunc(answerRun))
	ctx := context.Background()

	_, err := mgr.Ask(ctx, "s1", "first")
	require.NoError(t, err)
	state, err := mgr.Ask(ctx, "s1", "second")
	require.NoError(t, err)

	require.Len(t, state.SessionHistory, 2)
	assert.Equal(t, "first", state.SessionHistory[0].Question)
	assert.Equal(t, "second", state.SessionHistory[1].Question)

	stored, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "answer to second", stored.Answer())

	other, err := mgr.Ask(ctx, "s2", "alone")
	require.NoError(t, err)
	assert.Len(t, other.SessionHistory, 1)
}

func TestManager_AskFailureKeepsSnapshot(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), session.WithRunFunc(answerRun))
	ctx := context.Background()

	_, err := mgr.Ask(ctx, "s1", "first")
	require.NoError(t, err)

	boom := errors.New("boom")
	failing := session.NewManager(mgr.Store(), session.WithRunFunc(
		func(context.Context, string, []domain.SessionEntry) (*domain.State, error) {
			return nil, boom
		}))
	_, err = failing.Ask(ctx, "s1", "second")
	assert.ErrorIs(t, err, boom)

	stored, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, stored.SessionHistory, 1)
}

func TestManager_AskDiffReportsOnlyThisRun(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), session.WithRunFunc(answerRun))
	ctx := context.Background()

	_, diff, err := mgr.AskDiff(ctx, "s1", "first")
	require.NoError(t, err)
	require.Len(t, diff.HistoryAppended, 1)
	assert.Equal(t, "first", diff.HistoryAppended[0].Question)

	_, diff, err = mgr.AskDiff(ctx, "s1", "second")
	require.NoError(t, err)
	require.Len(t, diff.HistoryAppended, 1)
	assert.Equal(t, "second", diff.HistoryAppended[0].Question)

	// A run that never answers keeps the seeded history and appends nothing.
	unanswered := session.NewManager(mgr.Store(), session.WithRunFunc(
		func(_ context.Context, query string, history []domain.SessionEntry) (*domain.State, error) {
			s, err := domain.NewState(query, "")
			if err != nil {
				return nil, err
			}
			s.SessionHistory = append(s.SessionHistory, history...)
			s.RecordAgent("router")
			return s, nil
		}))
	state, diff, err := unanswered.AskDiff(ctx, "s1", "third")
	require.NoError(t, err)
	assert.Len(t, state.SessionHistory, 2)
	require.NotNil(t, diff)
	assert.Empty(t, diff.HistoryAppended)
	assert.Equal(t, []string{"router"}, diff.AgentsAppended)
}

func TestManager_AskSerializesSameSession(t *testing.T) {
	mgr := session.NewManager(&SlowStore{Store: memory.NewStore()}, session.WithRunFunc(answerRun))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Ask(ctx, "race", "q")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Without serialization concurrent read-modify-write cycles would lose entries.
	stored, err := mgr.Load(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, stored.SessionHistory, 10)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	mgr := session.NewManager(memory.NewStore(),
		session.WithLocker(redis.NewLocker(client, "test:")),
		session.WithLockTTL(time.Second),
	)

	var inside atomic.Bool
	err := mgr.WithLock(context.Background(), "s1", func(ctx context.Context) error {
		inside.Store(true)
		assert.True(t, mr.Exists("test:lock:s1"))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, inside.Load())
	assert.False(t, mr.Exists("test:lock:s1"))
}

func TestManager_AskWithoutRunFunc(t *testing.T) {
	_, err := session.NewManager(memory.NewStore()).Ask(context.Background(), "s", "q")
	assert.ErrorIs(t, err, session.ErrNoRunner)
}

func TestManager_DeleteAndList(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), session.WithRunFunc(answerRun))
	ctx := context.Background()

	_, err := mgr.Ask(ctx, "a", "q")
	require.NoError(t, err)
	_, err = mgr.Ask(ctx, "b", "q")
	require.NoError(t, err)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, mgr.Delete(ctx, "a"))
	_, err = mgr.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
