package ai

import (
	"regexp"
	"strings"
)

var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Discord rejects messages over 2000 characters.
const maxReplyLen = 2000

func isGarbageResponse(s string) bool {
	l := strings.ToLower(s)
	if strings.Contains(l, "<html") {
		return true
	}
	if strings.Contains(l, "not allowed") {
		return true
	}
	return len(strings.TrimSpace(s)) < 5
}

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}

// cleanReply strips reasoning blocks and symmetric wrapping quotes, and caps
// the length at what Discord accepts in one message.
func cleanReply(reply string) string {
	reply = strings.TrimSpace(thinkBlockRe.ReplaceAllString(strings.TrimSpace(reply), ""))
	if len(reply) >= 2 {
		quotes := []struct{ open, close string }{
			{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"‘", "’"},
		}
		for _, q := range quotes {
			if strings.HasPrefix(reply, q.open) && strings.HasSuffix(reply, q.close) {
				reply = strings.TrimSuffix(strings.TrimPrefix(reply, q.open), q.close)
				break
			}
		}
	}
	reply = strings.TrimSpace(reply)
	if r := []rune(reply); len(r) > maxReplyLen {
		reply = strings.TrimSpace(string(r[:maxReplyLen-3])) + "..."
	}
	return reply
}
