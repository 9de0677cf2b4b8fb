package respond

import (
	"fmt"
	"strings"

	"github.com/ashmitan/go-may/pkg/emotion"
)

// BuildPrompt assembles the model prompt for one query. The emotion
// annotation and the recent conversation lines are folded in when
// present so the model can match the user's tone and keep referential
// answers ("what about tomorrow?") coherent.
func BuildPrompt(query string, emo *emotion.Result, recent []string) string {
	var b strings.Builder

	b.WriteString("You are May, a friendly and empathetic voice assistant. Respond naturally and conversationally (max 100 tokens).\n\nUser's question: ")
	b.WriteString(query)

	if emo != nil && emo.Primary != "" {
		fmt.Fprintf(&b, "\n\n[EMOTIONAL CONTEXT - User is feeling %s (confidence: %.0f%%). Respond with empathy and acknowledge their emotional state when appropriate.]", emo.Primary, emo.Score*100)

		if len(emo.Top) > 1 {
			secondary := make([]string, 0, len(emo.Top)-1)
			for _, s := range emo.Top[1:] {
				secondary = append(secondary, fmt.Sprintf("%s (%.0f%%)", s.Name, s.Score*100))
			}
			b.WriteString("\nSecondary emotions: ")
			b.WriteString(strings.Join(secondary, ", "))
		}
	}

	if len(recent) > 0 {
		b.WriteString("\nRecent conversation: ")
		b.WriteString(strings.Join(recent, "; "))
	}

	b.WriteString("\n\nKeep your tone warm, engaging, and emotionally intelligent.")
	return b.String()
}
