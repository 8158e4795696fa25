package common

import "strings"

// IsStringInSlice reports whether `str` matches one of the options, ignoring case and surrounding whitespace.
// User input (settings files, env vars, chat commands) is rarely typed exactly.
func IsStringInSlice(str string, options []string) bool {
	str = strings.TrimSpace(str)
	for _, option := range options {
		if strings.EqualFold(str, option) {
			return true
		}
	}
	return false
}
