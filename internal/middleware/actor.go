package middleware

import (
	"context"
	"net/http"

	"agora/internal/forum"

	"github.com/rs/zerolog/log"
)

// ActorHeader carries the authenticated user id. Identity issuance is
// handled upstream; the engine trusts the header and re-reads the user row
// on every request so role and ban changes take effect immediately.
const ActorHeader = "X-Actor-ID"

type contextKey string

const actorKey contextKey = "actor"

// ActorMiddleware resolves the requesting user from the identity header and
// stores it in the request context. Requests without the header, or with an
// unknown user id, proceed anonymously.
func ActorMiddleware(users forum.UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(ActorHeader)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := users.GetUser(r.Context(), id)
			if err != nil {
				log.Error().Err(err).Str("actor_id", id).Msg("middleware: failed to resolve actor")
				next.ServeHTTP(w, r)
				return
			}
			if actor == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the resolved actor, or nil for anonymous requests.
func ActorFromContext(ctx context.Context) *forum.User {
	actor, _ := ctx.Value(actorKey).(*forum.User)
	return actor
}
