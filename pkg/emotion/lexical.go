package emotion

import (
	"context"
	"strings"
	"unicode"
)

// Buckets produced by the lexical fallback.
const (
	BucketJoy     = "Joy"
	BucketSadness = "Sadness"
	BucketCalm    = "Calm"
)

// FallbackScore is the fixed confidence attached to lexical results.
const FallbackScore = 0.5

// polarity maps sentiment-bearing words to a score in [-1, 1].
var polarity = map[string]float64{
	"amazing":   0.6,
	"awesome":   1.0,
	"beautiful": 0.85,
	"best":      1.0,
	"better":    0.5,
	"excellent": 1.0,
	"excited":   0.6,
	"fantastic": 0.4,
	"fun":       0.5,
	"glad":      0.5,
	"good":      0.7,
	"great":     0.8,
	"happy":     0.8,
	"joy":       0.8,
	"love":      0.5,
	"lovely":    0.6,
	"nice":      0.6,
	"perfect":   1.0,
	"wonderful": 1.0,

	"afraid":     -0.6,
	"angry":      -0.5,
	"annoyed":    -0.4,
	"anxious":    -0.5,
	"awful":      -1.0,
	"bad":        -0.7,
	"crying":     -0.6,
	"depressed":  -0.8,
	"frustrated": -0.6,
	"hate":       -0.8,
	"horrible":   -1.0,
	"hurt":       -0.5,
	"lonely":     -0.5,
	"miserable":  -1.0,
	"sad":        -0.5,
	"scared":     -0.6,
	"stressed":   -0.5,
	"terrible":   -1.0,
	"upset":      -0.4,
	"worried":    -0.4,
	"worst":      -1.0,
}

// negators flip the polarity of the following word.
var negators = map[string]bool{
	"not":   true,
	"never": true,
	"no":    true,
	"don't": true,
	"can't": true,
	"won't": true,
	"isn't": true,
}

// Lexical scores text against a small polarity word list. It is
// deterministic, needs no network, and never fails.
type Lexical struct{}

var _ Detector = (*Lexical)(nil)

// NewLexical creates the lexical fallback detector.
func NewLexical() *Lexical {
	return &Lexical{}
}

// Detect maps the mean polarity of sentiment words onto three buckets:
// above 0.3 is Joy, below -0.3 is Sadness, anything else Calm. The
// confidence is always 0.5.
func (l *Lexical) Detect(_ context.Context, text string) (*Result, error) {
	p := Polarity(text)

	bucket := BucketCalm
	switch {
	case p > 0.3:
		bucket = BucketJoy
	case p < -0.3:
		bucket = BucketSadness
	}
	return &Result{Primary: bucket, Score: FallbackScore}, nil
}

// Name identifies the detector backend.
func (l *Lexical) Name() string {
	return "lexical"
}

// Polarity returns the mean polarity of the sentiment words in text,
// or 0 when none match. A negator directly before a word flips and
// dampens its score.
func Polarity(text string) float64 {
	words := tokenize(text)

	var sum float64
	var matched int
	for i, w := range words {
		p, ok := polarity[w]
		if !ok {
			continue
		}
		if i > 0 && negators[words[i-1]] {
			p *= -0.5
		}
		sum += p
		matched++
	}
	if matched == 0 {
		return 0
	}
	return sum / float64(matched)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}
