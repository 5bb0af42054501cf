package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNicknameLength bounds display nicknames, in runes.
const MaxNicknameLength = 32

// NormalizeNickname trims surrounding space and reports whether the result
// is a usable display name: 1 to MaxNicknameLength printable runes.
func NormalizeNickname(nickname string) (string, bool) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return "", false
	}
	for _, r := range nickname {
		if !unicode.IsPrint(r) {
			return "", false
		}
	}
	return nickname, true
}
