package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fusion-demo/internal/domain/entities"
	domainrepos "fusion-demo/internal/domain/repositories"
)

type MemorySessionRepository struct {
	sessions map[entities.SessionID]*entities.Session
	mu       sync.RWMutex
}

func NewMemorySessionRepository() domainrepos.SessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[entities.SessionID]*entities.Session),
	}
}

func (r *MemorySessionRepository) GetOrCreate(ctx context.Context, id entities.SessionID) (entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[id]
	if !exists {
		session = entities.NewSession(id)
		r.sessions[id] = session
	}

	return *session, nil
}

func (r *MemorySessionRepository) FindByID(ctx context.Context, id entities.SessionID) (entities.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return entities.Session{}, fmt.Errorf("%w: %s", entities.ErrSessionNotFound, id)
	}

	return *session, nil
}

// Update は fn をロック下で実行する。fn がエラーを返しても、それまでの変更は保存される。
func (r *MemorySessionRepository) Update(ctx context.Context, id entities.SessionID, fn func(*entities.Session) error) (entities.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[id]
	if !exists {
		session = entities.NewSession(id)
		r.sessions[id] = session
	}

	err := fn(session)
	return *session, err
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id entities.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionRepository) Prune(ctx context.Context, cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		// 生成中のセッションは結果が戻るまで残す
		if session.Outcome().IsLoading() {
			continue
		}
		if session.UpdatedAt().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
