package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"records-service/common/httputil"
)

type contextKey string

const (
	// TeacherIDKey is the context key for the authenticated teacher id
	TeacherIDKey contextKey = "teacher_id"
	// EmailKey is the context key for email
	EmailKey contextKey = "email"
)

// CookieName is the cookie carrying the access token.
const CookieName = "token"

// Middleware validates the JWT from the token cookie or a Bearer header and
// adds the claims to the request context.
func Middleware(tokens *TokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ExtractBearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				if cookie, err := r.Cookie(CookieName); err == nil {
					raw = cookie.Value
				}
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized request", "path", r.URL.Path, "error", err)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := WithTeacher(r.Context(), claims.TeacherID(), claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithTeacher(ctx context.Context, teacherID, email string) context.Context {
	ctx = context.WithValue(ctx, TeacherIDKey, teacherID)
	return context.WithValue(ctx, EmailKey, email)
}

// GetTeacherID extracts the teacher id from context
func GetTeacherID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(TeacherIDKey).(string)
	return id, ok && id != ""
}

// GetEmail extracts email from context
func GetEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

// SetAuthCookie sets the JWT in an HttpOnly cookie
func SetAuthCookie(w http.ResponseWriter, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}

// ClearAuthCookie removes the auth cookie
func ClearAuthCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
