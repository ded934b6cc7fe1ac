package app

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrReplyTooLong indicates even the bare obtuse quantity exceeds the limit.
var ErrReplyTooLong = errors.New("reply too long")

// ComposeReply quotes message with its first occurrence of surface replaced by
// obtuse and appends " @handle". When the quote does not fit in limit runes
// the reply is obtuse and the handle alone. A limit of zero or less means no
// bound.
func ComposeReply(message, surface, obtuse, handle string, limit int) (string, error) {
	suffix := ""
	if handle = strings.TrimPrefix(strings.TrimSpace(handle), "@"); handle != "" {
		suffix = " @" + handle
	}

	if surface != "" && strings.Contains(message, surface) {
		quoted := strings.Replace(message, surface, obtuse, 1) + suffix
		if fits(quoted, limit) {
			return quoted, nil
		}
	}

	bare := obtuse + suffix
	if !fits(bare, limit) {
		return "", ErrReplyTooLong
	}
	return bare, nil
}

func fits(s string, limit int) bool {
	return limit <= 0 || utf8.RuneCountInString(s) <= limit
}
