package middleware

import (
	"net/http"

	"coaching-site/internal/session"

	"github.com/casbin/casbin/v2"
)

// Authorizer creates a new middleware for authorization.
// It checks the user's permissions using Casbin based on session data.
func Authorizer(e casbin.IEnforcer, sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get the user's subject from the session.
			// If not present, it will be an empty string.
			subject := sm.GetString(r.Context(), "user_subject")
			if subject == "" {
				subject = "anonymous"
			}

			// Add user info to the request context for downstream handlers.
			userInfo := &UserInfo{
				Subject: subject,
				Email:   sm.GetString(r.Context(), "user_email"),
			}
			r = r.WithContext(SetUserInfo(r.Context(), userInfo))

			// Use Casbin to enforce the policy.
			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				http.Error(w, "Authorization error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
