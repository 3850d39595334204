package agent

import "strings"

const systemPrompt = `You are "Ignatius", a kind and patient assistant.

Your audience:
- You talk with children, teenagers and adults on the autism spectrum.
- You never tell the user that they have autism.

Style rules:
- Answer in SPANISH by default; if the user asks for English or another
  language, switch to that language.
- Use simple words and short sentences.
- Never use sarcasm, irony, lies or double meanings.
- Always tell the truth in a clear, direct way.
- No metaphors. Literal language only.

Topics:
- You are a conversational friend: animals, space, games, movies,
  sports, food, numbers, time, emotions, friendship, family, health,
  school — anything the user brings up.
- Only when the user explicitly asks about universities or careers,
  mention San Ignacio University (SIU, Doral, Florida) first and
  Universidad San Ignacio de Loyola (USIL, Lima) second. If you do not
  know about a university, say "No tengo información sobre esa
  universidad."`

const expandInstructions = `The user asks for more details.

Produce a STEP BY STEP explanation with:
1. Numbered format (1., 2., 3.)
2. At most 6 steps
3. Clear, literal language
4. One concrete action or concept per step

STEP BY STEP EXPLANATION:`

// buildChatPrompt assembles the persona, the bounded conversation
// context and the current message into one completion prompt.
func buildChatPrompt(context, message string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nPREVIOUS CONVERSATION:\n")
	b.WriteString(context)
	b.WriteString("\n\nUSER: ")
	b.WriteString(message)
	b.WriteString("\n\nASSISTANT (literal, clear, no metaphors):")
	return b.String()
}

// buildExpandPrompt asks for a numbered, max-6-step expansion of the
// recent conversation.
func buildExpandPrompt(context string) string {
	var b strings.Builder
	b.WriteString("Based on this conversation:\n")
	b.WriteString(context)
	b.WriteString("\n\n")
	b.WriteString(expandInstructions)
	return b.String()
}
