package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"formgate/internal/common"
	"formgate/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const AdminUserCtxKey contextKey = "adminUser"

// Authenticator gates the admin surface. It accepts HTTP Basic with the
// configured admin credentials, or a Bearer session token issued by the
// login endpoint (verified upstream by jwtauth.Verifier).
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Auth scheme names are case-insensitive (RFC 7235).
		scheme, params, _ := strings.Cut(r.Header.Get("Authorization"), " ")

		if strings.EqualFold(scheme, "Basic") {
			username, ok := checkBasic(params)
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			ctx := context.WithValue(r.Context(), AdminUserCtxKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		username, err := security.GetUsernameFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), AdminUserCtxKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func checkBasic(credentials string) (string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(credentials)
	if err != nil {
		return "", false
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", false
	}
	if !security.CheckAdminCredentials(username, password) {
		return "", false
	}
	return username, true
}
