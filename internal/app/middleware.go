package app

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kassa/kassa/pkg/user"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {

	// Propagate X-User-Id header into context for downstream services.
	// Authentication happens upstream; this layer only carries the already
	// resolved owner identity.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			userIdHeader := req.Header.Get("X-User-Id")
			ctx := req.Context()

			if userIdHeader != "" {
				userId, err := strconv.Atoi(userIdHeader)
				if err != nil || userId <= 0 {
					log.Debugf("invalid X-User-Id header: %q", userIdHeader)
					http.Error(w, "invalid user id", http.StatusBadRequest)
					return
				}
				ctx = user.WithOwner(ctx, userId)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
