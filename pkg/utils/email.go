package utils

import "strings"

// IsValidEmail does a structural local@domain.tld check: exactly one @, a
// non-empty local part, and a dot somewhere in the domain. "foo@bar" fails.
func IsValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	local, domain := parts[0], parts[1]
	if local == "" || domain == "" {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
