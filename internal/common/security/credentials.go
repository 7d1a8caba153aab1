package security

import (
	"crypto/subtle"

	"formgate/internal/platform/config"

	"golang.org/x/crypto/bcrypt"
)

// CheckAdminCredentials validates a username/password pair against the
// configured admin account. When ADMIN_PASSWORD_HASH is set it takes
// precedence and the password is checked with bcrypt; otherwise the
// plaintext ADMIN_PASSWORD is compared in constant time.
func CheckAdminCredentials(username, password string) bool {
	cfg := config.AppConfig

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.AdminUsername)) == 1

	if cfg.AdminPasswordHash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(password))
		return userOK && err == nil
	}

	if cfg.AdminPassword == "" {
		// No credential configured; the admin surface is closed.
		return false
	}
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.AdminPassword)) == 1
	return userOK && passOK
}
