package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/auth"
	"github.com/vkotliar/profile-backend/internal/constants"
	"github.com/vkotliar/profile-backend/internal/utils"
)

// Recovery converts a panicking handler into a 500 response. The panic
// value and stack go to the log, never to the client.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}

				requestID, _ := auth.GetRequestID(r)
				log.Error().
					Str("request_id", requestID).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("Panic recovered in request handler")

				utils.Error(w, http.StatusInternalServerError,
					constants.CodeInternalError, constants.MsgInternalError, nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
