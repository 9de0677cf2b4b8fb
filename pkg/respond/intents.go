package respond

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/ashmitan/go-may/pkg/tts"
)

// Intent vocab. Matching is case-insensitive substring, so "what time
// is it" and "do you have the time" both hit.
var (
	timeKeywords = []string{"time", "clock", "hour", "what time"}
	dateKeywords = []string{"date", "day is it", "today"}

	voiceListTriggers = []string{"list voices", "what voices", "which voices", "available voices"}
)

// voiceChangeRe captures the requested voice from phrases like
// "change voice to rachel" or "set your voice to JBFqnCBsd6RMkjVDRZzb".
var voiceChangeRe = regexp.MustCompile(`(?i)\b(?:change|switch|set)\s+(?:the\s+|your\s+|my\s+)?voice\s+to\s+(\S+)`)

const voicesUnconfigured = "ElevenLabs is not configured."

// commonVoices is quoted when the live voice list is unavailable.
const commonVoices = "Common voices: George (JBFqnCBsd6RMkjVDRZzb), Rachel (21m00Tcm4TlvDq8ikWAM), Bella (EXAVITQu4vr4xnSDxMaL)"

// VoiceControl is the slice of the speech synthesizer the voice
// intents need. *tts.ElevenLabs satisfies it.
type VoiceControl interface {
	// SetVoice switches synthesis to a preset name or raw voice ID.
	SetVoice(nameOrID string)

	// ListVoices fetches the voices available to the account.
	ListVoices(ctx context.Context) ([]tts.Voice, error)
}

// intentReply answers reminder, voice, time, and date requests
// locally. It returns nil when query is not an intent. Precise
// matchers run before the loose keyword ones, so "remind me in 10
// minutes to check the time" schedules a reminder instead of reading
// the clock. Intent replies skip the emotion and model providers
// entirely, which keeps "what time is it" working with the network
// down.
func (p *Pipeline) intentReply(ctx context.Context, query string) *Reply {
	lower := strings.ToLower(query)

	if p.config.Reminders != nil {
		if text, ok := p.config.Reminders.Handle(query); ok {
			return &Reply{Text: text, Source: SourceIntent}
		}
	}
	if text, ok := p.voiceAnswer(ctx, query, lower); ok {
		return &Reply{Text: text, Source: SourceIntent}
	}
	if containsAny(lower, timeKeywords) {
		return &Reply{Text: p.timeAnswer(), Source: SourceIntent}
	}
	if containsAny(lower, dateKeywords) {
		return &Reply{Text: p.dateAnswer(), Source: SourceIntent}
	}
	return nil
}

func (p *Pipeline) timeAnswer() string {
	loc := p.location()
	if loc == nil {
		return "Sorry, I can't access the time right now."
	}
	return "It's " + p.config.Clock().In(loc).Format("03:04 PM") + "."
}

func (p *Pipeline) dateAnswer() string {
	loc := p.location()
	if loc == nil {
		return "Sorry, I can't access the date right now."
	}
	return "Today is " + p.config.Clock().In(loc).Format("Monday, January 02") + "."
}

func (p *Pipeline) location() *time.Location {
	if p.config.Location == nil {
		return nil
	}
	return p.config.Location()
}

// voiceAnswer handles voice change and list requests. ok is false
// when query is neither.
func (p *Pipeline) voiceAnswer(ctx context.Context, query, lower string) (string, bool) {
	if m := voiceChangeRe.FindStringSubmatch(query); m != nil {
		name := strings.Trim(m[1], ".,!?")
		if p.config.Voices == nil {
			return voicesUnconfigured, true
		}

		p.config.Voices.SetVoice(name)
		if tts.IsElevenLabsPreset(name) {
			return "Voice changed to " + titleWords(name), true
		}
		return "Voice ID set to " + name, true
	}

	if containsAny(lower, voiceListTriggers) {
		if p.config.Voices == nil {
			return voicesUnconfigured, true
		}
		return p.voiceList(ctx), true
	}

	return "", false
}

func (p *Pipeline) voiceList(ctx context.Context) string {
	listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	voices, err := p.config.Voices.ListVoices(listCtx)
	if err != nil || len(voices) == 0 {
		if err != nil {
			p.logger.Warn("listing voices failed, quoting presets", "error", err)
		}
		return commonVoices
	}

	parts := make([]string, len(voices))
	for i, v := range voices {
		parts[i] = fmt.Sprintf("%s (ID: %s)", v.Name, v.VoiceID)
	}
	return "Available voices: " + strings.Join(parts, ", ")
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// titleWords capitalizes each word, so "rachel" reads back as
// "Rachel".
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
