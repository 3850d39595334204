package agent_test

import (
	"strings"
	"testing"

	"github.com/jfernandezp/agente-ia-uni/internal/agent"
)

func TestFormatTEAStripsInvertedPunctuation(t *testing.T) {
	got := agent.FormatTEA("¡Hola! ¿Cómo estás?")
	if strings.ContainsAny(got, "¡¿") {
		t.Errorf("expected inverted punctuation removed, got %q", got)
	}
}

func TestFormatTEAStripsEmoji(t *testing.T) {
	got := agent.FormatTEA("Hola 😀 mundo 🚀.")
	if got != "Hola  mundo ." {
		t.Errorf("expected emoji removed, got %q", got)
	}
}

func TestFormatTEARewrapsLongSentences(t *testing.T) {
	words := make([]string, 25)
	for i := range words {
		words[i] = "palabra"
	}
	in := strings.Join(words, " ")

	got := agent.FormatTEA(in)

	for _, sentence := range strings.Split(got, ". ") {
		if n := len(strings.Fields(sentence)); n > 20 {
			t.Errorf("sentence still has %d words: %q", n, sentence)
		}
	}
}

func TestFormatTEAEnsuresTerminalPunctuation(t *testing.T) {
	if got := agent.FormatTEA("hola mundo"); !strings.HasSuffix(got, ".") {
		t.Errorf("expected trailing period, got %q", got)
	}
	if got := agent.FormatTEA("listo!"); got != "listo!" {
		t.Errorf("expected %q unchanged, got %q", "listo!", got)
	}
	if got := agent.FormatTEA(""); got != "" {
		t.Errorf("expected empty output for empty input, got %q", got)
	}
}

func TestFormatTEAIsIdempotent(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = "dato"
	}
	inputs := []string{
		"¡Hola! ¿Todo bien? 😀",
		"respuesta corta",
		strings.Join(words, " "),
		"Una oración. Otra oración más larga con varias palabras seguidas.",
	}

	for _, in := range inputs {
		once := agent.FormatTEA(in)
		twice := agent.FormatTEA(once)
		if once != twice {
			t.Errorf("formatting is not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}
