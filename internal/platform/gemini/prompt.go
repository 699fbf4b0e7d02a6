package gemini

import (
	"bytes"
	"fmt"
	"text/template"
)

// promptTemplate instructs the model to draft flashcards as a bare JSON
// array. JSON mode on the request keeps the model from wrapping the
// array in prose or code fences.
const promptTemplate = `You are a flashcard author helping a student practice spaced repetition.

Create flashcards covering the material below. Each card asks one specific
question on the front and gives a short, complete answer on the back.
Prefer atomic facts over compound questions. Write between 3 and 20 cards,
as the material warrants.

Respond with a JSON array only, in this exact shape:
[{"front": "...", "back": "..."}]

Material:
{{.Prompt}}
`

// promptData carries the values rendered into the prompt template.
type promptData struct {
	Prompt string
}

var parsedPromptTemplate = template.Must(template.New("cards").Parse(promptTemplate))

// buildPrompt renders the card-drafting prompt for the given material.
func buildPrompt(material string) (string, error) {
	var buf bytes.Buffer
	if err := parsedPromptTemplate.Execute(&buf, promptData{Prompt: material}); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return buf.String(), nil
}
