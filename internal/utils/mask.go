package utils

import (
	"fmt"
	"net/url"
)

// MaskSecret hides a credential while keeping enough of it to tell two apart.
func MaskSecret(secret string) string {
	switch {
	case secret == "":
		return "--- EMPTY ---"
	case len(secret) < 12:
		return fmt.Sprintf("*** MASKED (short: %d chars) ***", len(secret))
	default:
		return secret[:4] + "***MASKED***" + secret[len(secret)-4:]
	}
}

// MaskURLCredentials replaces the password of a URL's userinfo, if any.
func MaskURLCredentials(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "*** UNPARSEABLE URL ***"
	}
	if u.User == nil {
		return raw
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***MASKED***")
	}
	return u.String()
}
