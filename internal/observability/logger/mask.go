package logger

import "strings"

// maskEmail reduce un email a "b…@x….com" para logs.
func maskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		return "***"
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	if j := strings.IndexByte(dom, '.'); j > 1 {
		dom = dom[:1] + "…" + dom[j:]
	}
	return user + "@" + dom
}
