package respond

import (
	"math/rand"
	"strings"
)

// casualEntry pairs a trigger substring with its reply pool. Entries
// are checked in order, so "hello, how are you" lands on the "how are
// you" pool rather than the greeting pool.
type casualEntry struct {
	match   string
	replies []string
}

var casualTable = []casualEntry{
	{"how are you", []string{
		"I'm doing great, thanks for asking!",
		"All good here!",
		"I'm well, how about you?",
	}},
	{"what's up", []string{
		"Not much, just here to help!",
		"Ready to assist!",
		"All set to chat!",
	}},
	{"hello", []string{
		"Hello!",
		"Hi there!",
		"Hey!",
	}},
	{"thanks", []string{
		"You're welcome!",
		"Happy to help!",
		"Anytime!",
	}},
	{"help", []string{
		"I can help with reminders, answer questions, and chat with you!",
		"Just ask me anything!",
	}},
}

// casualReply matches query against the casual table and picks one of
// the entry's replies at random. ok is false when nothing matches.
func casualReply(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, entry := range casualTable {
		if strings.Contains(lower, entry.match) {
			return entry.replies[rand.Intn(len(entry.replies))], true
		}
	}
	return "", false
}
