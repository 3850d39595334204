package agent

import (
	"sort"
	"strings"
	"unicode"
)

// IntentKind tags what a user message is asking for.
type IntentKind int

const (
	IntentChat IntentKind = iota
	IntentImage
	IntentExpand
)

// Intent is the result of classifying one message. For image requests
// Prompt carries the cleaned description; otherwise it is the raw text.
type Intent struct {
	Kind   IntentKind
	Prompt string
}

// Keyword sets are matched as case-insensitive substrings. Image wins
// over expand: a message matching both is an image request.
var imageKeywords = []string{
	"genera", "dibuja", "crea una imagen", "imagen de", "imagen sobre",
	"generate", "draw", "create an image", "picture of", "imagen",
	"dibujar", "crear imagen", "haz una imagen", "quiero una imagen",
}

var expandKeywords = []string{
	"más detalles", "explica paso a paso", "expandir", "más información",
	"more details", "step by step", "explain more", "detalles",
	"explicación detallada", "ampliar", "desarrolla",
}

// defaultImagePrompt replaces cleaned prompts that are empty or shorter
// than three characters.
const defaultImagePrompt = "universidad moderna con estudiantes y tecnología"

// stripOrder holds the image keywords longest-first so that stripping
// "crea una imagen" does not leave "crea una " behind after "imagen".
var stripOrder = func() []string {
	kws := make([]string, len(imageKeywords))
	copy(kws, imageKeywords)
	sort.Slice(kws, func(i, j int) bool { return len(kws[i]) > len(kws[j]) })
	return kws
}()

// ClassifyIntent scans the message against the keyword sets. Pure
// function; dispatching on the result happens in ProcessMessage.
func ClassifyIntent(message string) Intent {
	lower := strings.ToLower(message)

	for _, kw := range imageKeywords {
		if strings.Contains(lower, kw) {
			return Intent{Kind: IntentImage, Prompt: extractImagePrompt(message)}
		}
	}

	for _, kw := range expandKeywords {
		if strings.Contains(lower, kw) {
			return Intent{Kind: IntentExpand, Prompt: message}
		}
	}

	return Intent{Kind: IntentChat, Prompt: message}
}

// extractImagePrompt removes the matched keywords and surrounding
// punctuation, falling back to the default prompt when too little
// remains.
func extractImagePrompt(message string) string {
	cleaned := message
	for _, kw := range stripOrder {
		cleaned = removeFold(cleaned, kw)
	}

	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, ".,:;!¿?¡")
	cleaned = strings.TrimSpace(cleaned)

	if len([]rune(cleaned)) < 3 {
		return defaultImagePrompt
	}
	return cleaned
}

// removeFold deletes every case-insensitive occurrence of sub from s.
// Matching walks rune by rune; lowercasing can change byte lengths
// (İ → i̇), so byte offsets into a lowered copy would corrupt s.
func removeFold(s, sub string) string {
	subRunes := []rune(strings.ToLower(sub))
	if len(subRunes) == 0 {
		return s
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); {
		if matchesFold(runes[i:], subRunes) {
			i += len(subRunes)
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}

func matchesFold(s, lowerSub []rune) bool {
	if len(s) < len(lowerSub) {
		return false
	}
	for i, r := range lowerSub {
		if unicode.ToLower(s[i]) != r {
			return false
		}
	}
	return true
}
