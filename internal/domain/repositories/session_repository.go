package repositories

import (
	"context"
	"time"

	"fusion-demo/internal/domain/entities"
)

type SessionRepository interface {
	// GetOrCreate returns a snapshot of the session, creating it when absent.
	GetOrCreate(ctx context.Context, id entities.SessionID) (entities.Session, error)
	FindByID(ctx context.Context, id entities.SessionID) (entities.Session, error)
	// Update runs fn atomically against the stored session and returns the resulting snapshot.
	Update(ctx context.Context, id entities.SessionID, fn func(*entities.Session) error) (entities.Session, error)
	Delete(ctx context.Context, id entities.SessionID) error
	// Prune drops sessions not updated since the cutoff and reports how many were removed.
	Prune(ctx context.Context, cutoff time.Time) int
}
