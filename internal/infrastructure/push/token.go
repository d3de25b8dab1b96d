package push

import "regexp"

var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ExponentPushToken\[.+\]$`),
	regexp.MustCompile(`^ExpoPushToken\[.+\]$`),
	regexp.MustCompile(`(?i)^[a-z\d]{8}-[a-z\d]{4}-[a-z\d]{4}-[a-z\d]{4}-[a-z\d]{12}$`),
}

// ValidToken reports whether token is a push address the transport accepts.
func ValidToken(token string) bool {
	for _, p := range tokenPatterns {
		if p.MatchString(token) {
			return true
		}
	}
	return false
}
