package middleware

import (
	"context"
	"go-blog-admin/internal/logger"
	"go-blog-admin/internal/session"
	"net/http"
	"path"
	"strings"

	"github.com/casbin/casbin/v2"
)

// SessionSubjectKey is the session key holding the logged-in subject.
const SessionSubjectKey = "user_subject"

// TokenVerifier checks a bearer ID token and returns its subject.
type TokenVerifier interface {
	VerifySubject(ctx context.Context, rawToken string) (string, error)
}

// Authorizer creates a new middleware for authorization.
// The subject comes from an Authorization: Bearer token when present, then
// from the session, and defaults to anonymous. Casbin decides whether the
// subject may perform the method on the path.
func Authorizer(e casbin.IEnforcer, sm session.Manager, verifier TokenVerifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := AnonymousSubject

			if raw, ok := bearerToken(r); ok {
				if verifier == nil {
					WriteError(w, http.StatusUnauthorized, "Bearer tokens are not accepted")
					return
				}
				sub, err := verifier.VerifySubject(r.Context(), raw)
				if err != nil {
					log.Warn("Rejected bearer token: " + err.Error())
					WriteError(w, http.StatusUnauthorized, "Invalid token")
					return
				}
				subject = sub
			} else if sm != nil {
				if sub := sm.GetString(r.Context(), SessionSubjectKey); sub != "" {
					subject = sub
				}
			}

			// Add user info to the request context for downstream handlers.
			r = r.WithContext(SetUserInfo(r.Context(), &UserInfo{Subject: subject}))

			// The router serves "/posts/" as "/posts"; policies name the clean form.
			allowed, err := e.Enforce(subject, canonicalPath(r.URL.Path), r.Method)
			if err != nil {
				log.Error(err, "Authorization check failed")
				WriteError(w, http.StatusInternalServerError, "Authorization error")
				return
			}
			if !allowed {
				if subject == AnonymousSubject {
					WriteError(w, http.StatusUnauthorized, "Authentication required")
					return
				}
				WriteError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func canonicalPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean(p)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
