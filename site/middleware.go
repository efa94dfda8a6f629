package site

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"gorm.io/datatypes"

	"vendhansite/constants"
	"vendhansite/database"
)

type AdminCookieName string

const AuthenticatedUserCookieName = AdminCookieName("authenticated_user")
const AuthenticatedUserTokenCookieName = AdminCookieName("authenticated_user_token")

func getSignedInUserOrNil(r *http.Request) *database.AdminUser {
	adminUser, _ := r.Context().Value(AuthenticatedUserCookieName).(*database.AdminUser)
	return adminUser
}

func generateAuthToken() (string, error) {
	tokenBytes := make([]byte, constants.SESSION_TOKEN_LENGTH)
	_, err := rand.Read(tokenBytes)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// RealIPMiddleware rewrites RemoteAddr from proxy headers so the rate
// limiter keys on the actual client.
func RealIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			r.RemoteAddr = ip
		} else if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			parts := strings.Split(fwd, ",")
			r.RemoteAddr = strings.TrimSpace(parts[0])
		}
		next.ServeHTTP(w, r)
	})
}

// TryPutUserInContextMiddleware resolves the session cookie to an admin
// user and stores it in the request context. Invalid cookies are cleared.
func (s *Server) TryPutUserInContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(string(AuthenticatedUserTokenCookieName))
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		var user database.AdminUser
		result := s.db.Where(&database.AdminUser{SessionToken: cookie.Value}).First(&user)
		if result.Error != nil {
			// Clear the invalid cookie
			http.SetCookie(w, &http.Cookie{
				Name:   string(AuthenticatedUserTokenCookieName),
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), AuthenticatedUserCookieName, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdminMiddleware guards the admin API. JSON 401 rather than a
// redirect since these routes are consumed by the admin frontend's fetch
// calls.
func (s *Server) RequireAdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if getSignedInUserOrNil(r) == nil {
			jsonError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PageViewMiddleware appends a page_view event for public content routes.
func (s *Server) PageViewMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		// RemoteAddr can come from client-supplied proxy headers, so the
		// detail payload goes through the JSON encoder
		detail, err := json.Marshal(map[string]string{"ip": host})
		if err != nil {
			detail = []byte("{}")
		}
		s.db.Create(&database.EventLog{
			Kind:   "page_view",
			Path:   r.URL.Path,
			Detail: datatypes.JSON(detail),
		})
		next.ServeHTTP(w, r)
	})
}
