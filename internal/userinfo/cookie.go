package userinfo

import "strings"

// DefaultSessionCookie is the cookie carrying the identity session token.
const DefaultSessionCookie = "sid"

// ExtractSessionToken returns the "sid" cookie value from a raw Cookie
// header, or false when it is absent or blank.
func ExtractSessionToken(cookieHeader string) (string, bool) {
	return ExtractCookie(cookieHeader, DefaultSessionCookie)
}

// ExtractCookie returns the value of the named cookie up to the next ';'.
func ExtractCookie(cookieHeader, name string) (string, bool) {
	for _, part := range strings.Split(cookieHeader, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found || key != name {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return "", false
		}
		return value, true
	}
	return "", false
}
