package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusion-demo/internal/domain/entities"
	"fusion-demo/internal/domain/valueobjects"
)

func TestMemorySessionRepository_GetOrCreate(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrSessionNotFound)

	session, err := repo.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entities.SessionID("s1"), session.ID())
	assert.Equal(t, valueobjects.OutcomeIdle, session.Outcome().Kind())

	found, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, session.ID(), found.ID())
}

func TestMemorySessionRepository_UpdateKeepsChangesOnError(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	boom := errors.New("boom")

	snapshot, err := repo.Update(ctx, "s1", func(s *entities.Session) error {
		s.SetOutcome(valueobjects.FailureOutcome("nope"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, valueobjects.OutcomeFailure, snapshot.Outcome().Kind())

	stored, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.OutcomeFailure, stored.Outcome().Kind())
}

func TestMemorySessionRepository_SnapshotsAreCopies(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	snapshot, err := repo.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	snapshot.SelectAction(valueobjects.SalutingEachOther)

	stored, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.DefaultAction(), stored.Action())
}

func TestMemorySessionRepository_ConcurrentSlotWrites(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()
	payload, err := valueobjects.NewImagePayload("aGVsbG8=", "image/png")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, slot := range []valueobjects.Slot{valueobjects.Slot1, valueobjects.Slot2} {
		wg.Add(1)
		go func(slot valueobjects.Slot) {
			defer wg.Done()
			for range 50 {
				_, _ = repo.Update(ctx, "s1", func(s *entities.Session) error {
					s.SetImage(slot, payload)
					return nil
				})
			}
		}(slot)
	}
	wg.Wait()

	stored, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, stored.HasBothImages())
}

func TestMemorySessionRepository_Prune(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	_, _ = repo.GetOrCreate(ctx, "idle")
	_, _ = repo.Update(ctx, "loading", func(s *entities.Session) error {
		s.SetOutcome(valueobjects.LoadingOutcome())
		return nil
	})

	removed := repo.Prune(ctx, time.Now().Add(time.Minute))
	assert.Equal(t, 1, removed)

	_, err := repo.FindByID(ctx, "idle")
	assert.ErrorIs(t, err, entities.ErrSessionNotFound)
	_, err = repo.FindByID(ctx, "loading")
	assert.NoError(t, err, "in-flight sessions survive pruning")

	require.NoError(t, repo.Delete(ctx, "loading"))
	_, err = repo.FindByID(ctx, "loading")
	assert.ErrorIs(t, err, entities.ErrSessionNotFound)
}
