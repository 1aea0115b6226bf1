package grammar

import "strings"

// Moods is the fixed mood vocabulary, checked in order.
var Moods = []string{"calm", "sad", "happy", "focus"}

// punctuation stripped by Normalize, matching what the recognizer tends
// to sprinkle into transcripts.
const punctuation = ".,/#!$%^&*;:{}=-_`~()"

// Normalize lowercases the text, strips punctuation, and trims
// surrounding whitespace. Interpret expects its input in this form.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}

// Interpret maps a normalized final transcript to exactly one command.
// Rules are evaluated in a fixed priority order so broad phrases do not
// shadow narrow ones; the first matching rule wins.
func Interpret(text string) Command {
	switch {
	case containsAny(text, "stop", "pause", "quiet"):
		return Command{Kind: Pause}

	case text == "play" || text == "resume" || text == "start" ||
		strings.Contains(text, "start music"):
		return Command{Kind: Resume}

	case containsAny(text, "next", "skip"):
		return Command{Kind: Next}

	case containsAny(text, "previous", "back"):
		return Command{Kind: Previous}

	case strings.Contains(text, "shuffle"):
		return Command{Kind: Shuffle}

	case containsAny(text, "volume up", "louder"):
		return Command{Kind: VolumeUp}

	case containsAny(text, "volume down", "quieter"):
		return Command{Kind: VolumeDown}

	case strings.Contains(text, "like"):
		return Command{Kind: ToggleLike}
	}

	if strings.HasPrefix(text, "play ") {
		if query := strings.TrimSpace(strings.TrimPrefix(text, "play ")); query != "" {
			return Command{Kind: PlayQuery, Arg: query}
		}
	}

	for _, mood := range Moods {
		if strings.Contains(text, mood) {
			return Command{Kind: PlayMood, Arg: mood}
		}
	}

	return Command{Kind: Unrecognized}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
