package common

import "strings"

func RemoveSingleQuotesIfAny(str string) string {
	if len(str) >= 2 && str[0] == '\'' && str[len(str)-1] == '\'' {
		str = str[1 : len(str)-1]
	}
	return str
}

func RemoveDoubleQuotesIfAny(str string) string {
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	return str
}

// CleanQuery trims the user's free-form text and removes wrapping quotes: people type `describe "is the door open?"`
// as often as without the quotes.
func CleanQuery(str string) string {
	str = strings.TrimSpace(str)
	str = RemoveDoubleQuotesIfAny(str)
	str = RemoveSingleQuotesIfAny(str)
	return strings.TrimSpace(str)
}
