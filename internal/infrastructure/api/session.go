package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"fusion-demo/internal/domain/entities"
)

const sessionCookieName = "fusion_session"

type sessionKey struct{}

// withSession はブラウザごとのセッションIDをCookieで払い出し、contextに載せる
func withSession(ttl time.Duration, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if _, perr := uuid.Parse(cookie.Value); perr == nil {
				id = cookie.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		ctx := context.WithValue(r.Context(), sessionKey{}, entities.SessionID(id))
		next(w, r.WithContext(ctx))
	}
}

func sessionIDFrom(ctx context.Context) entities.SessionID {
	id, _ := ctx.Value(sessionKey{}).(entities.SessionID)
	return id
}
