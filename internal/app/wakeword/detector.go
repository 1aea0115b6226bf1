// Package wakeword provides wake-phrase detection over transcript text.
package wakeword

import "strings"

// DefaultPhrases is the built-in wake-phrase set. The bare assistant
// name is included so a session opens even when the recognizer drops
// the greeting.
var DefaultPhrases = []string{
	"hey cloudly",
	"hey cloud",
	"hi cloudly",
	"okay cloudly",
	"cloudly",
}

// Detector checks transcript fragments for a wake phrase.
// It is side-effect free and safe for concurrent use.
type Detector struct {
	phrases []string
}

// New creates a detector for the given phrases. Phrases are lowercased;
// an empty list falls back to DefaultPhrases.
func New(phrases []string) *Detector {
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Detector{phrases: lowered}
}

// Match reports whether the text ends with or contains any wake phrase.
// The text is expected to be lowercased and trimmed already; interim
// transcripts are matched too so the session can open before the
// recognizer finalizes the utterance.
func (d *Detector) Match(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range d.phrases {
		if strings.HasSuffix(text, p) || strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// Phrases returns the configured wake phrases.
func (d *Detector) Phrases() []string {
	out := make([]string, len(d.phrases))
	copy(out, d.phrases)
	return out
}
