package gemini

import (
	"fmt"
	"strings"
)

// slot is one (category, year) pair the provider is asked to write a question
// for. Slot order matches the order questions are requested in the prompt.
type slot struct {
	Category string
	Year     int
}

// buildPrompt assembles the single batched request for all slots. supplementary
// softens the year constraint ("around" instead of "specifically in") for the
// shortfall retry, where years are drawn at random anyway.
func buildPrompt(slots []slot, supplementary bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d different crypto trivia questions according to the following specifications:\n\n", len(slots))

	anchor := "specifically in the year"
	if supplementary {
		anchor = "around the year"
	}
	for i, s := range slots {
		fmt.Fprintf(&b, "Question %d: About events, developments, or notable things that happened %s %d related to the category %q.\n",
			i+1, anchor, s.Year, s.Category)
	}

	b.WriteString("\nEach question should be multiple choice with 4 options, with only one correct answer.\n\n")
	b.WriteString("Format your response as a valid JSON array with the following structure:\n")
	fmt.Fprintf(&b, `[
  {
    "category": %q,
    "year": %d,
    "question": "The question text",
    "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
    "correctAnswer": 0
  }
]
`, slots[0].Category, slots[0].Year)
	b.WriteString("\ncorrectAnswer is the zero-based index of the correct option.\n")
	if !supplementary {
		b.WriteString("Make sure each question is specifically about something that happened in the specified year, not before or after.\n")
	}
	return b.String()
}
