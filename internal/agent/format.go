package agent

import "strings"

// FormatTEA applies the deterministic post-processing that keeps
// assistant text short and literal: no inverted punctuation, no emoji,
// no run-on sentences, always terminal punctuation. Pure and
// idempotent.
func FormatTEA(text string) string {
	if text == "" {
		return text
	}

	text = strings.NewReplacer("¡", "", "¿", "").Replace(text)
	text = stripEmoji(text)
	text = shortenSentences(text)

	if text != "" && !strings.HasSuffix(text, ".") &&
		!strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text
}

func stripEmoji(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isEmoji(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols and pictographs
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF: // flags
		return true
	}
	return false
}

// shortenSentences re-wraps any sentence longer than 20 words by
// inserting a sentence break every 15 words.
func shortenSentences(text string) string {
	sentences := strings.Split(text, ". ")
	for i, sentence := range sentences {
		words := strings.Fields(sentence)
		if len(words) <= 20 {
			continue
		}

		var chunks []string
		for j := 0; j < len(words); j += 15 {
			end := j + 15
			if end > len(words) {
				end = len(words)
			}
			chunks = append(chunks, strings.Join(words[j:end], " "))
		}
		sentences[i] = strings.Join(chunks, ". ")
	}
	return strings.Join(sentences, ". ")
}
