package question

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const optionCount = 4

// Candidate is a raw question blob as decoded from provider output. Pointer
// fields distinguish "absent" from zero values.
type Candidate struct {
	Category      string   `json:"category"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer"`
	Year          *int     `json:"year"`
}

// Validate checks a candidate against the structural contract and returns a
// canonical Question with a fresh unique ID. slotYear and difficulty come from
// the generation slot the candidate was requested for; slotYear is substituted
// when the candidate carries no year of its own.
//
// Checks run in a fixed order and fail on the first violation. Validate never
// panics on malformed but well-typed input.
func Validate(c Candidate, slotYear int, difficulty string) (Question, error) {
	if strings.TrimSpace(c.Question) == "" {
		return Question{}, &ValidationError{Reason: "empty question text"}
	}
	if len(c.Options) != optionCount {
		return Question{}, &ValidationError{Reason: "options must have exactly 4 entries"}
	}
	seen := make(map[string]struct{}, optionCount)
	for _, opt := range c.Options {
		if strings.TrimSpace(opt) == "" {
			return Question{}, &ValidationError{Reason: "empty option"}
		}
		if _, dup := seen[opt]; dup {
			return Question{}, &ValidationError{Reason: "duplicate option"}
		}
		seen[opt] = struct{}{}
	}
	if c.CorrectAnswer == nil || *c.CorrectAnswer < 0 || *c.CorrectAnswer >= optionCount {
		return Question{}, &ValidationError{Reason: "correctAnswer out of range"}
	}
	category, ok := NormalizeCategory(c.Category)
	if !ok {
		return Question{}, &ValidationError{Reason: "unrecognized category"}
	}
	year := slotYear
	if c.Year != nil {
		year = *c.Year
	}

	return Question{
		ID:            newQuestionID(category, year),
		Category:      category,
		Question:      c.Question,
		Options:       c.Options,
		CorrectAnswer: *c.CorrectAnswer,
		YearIndicator: year,
		Difficulty:    difficulty,
	}, nil
}

// Revalidate re-applies the structural checks to an already canonical record
// without minting a new ID. A valid record passes through unchanged, so
// validation is idempotent.
func Revalidate(q Question) (Question, error) {
	idx := q.CorrectAnswer
	checked, err := Validate(Candidate{
		Category:      q.Category,
		Question:      q.Question,
		Options:       q.Options,
		CorrectAnswer: &idx,
		Year:          &q.YearIndicator,
	}, q.YearIndicator, q.Difficulty)
	if err != nil {
		return Question{}, err
	}
	checked.ID = q.ID
	return checked, nil
}

// newQuestionID builds "<category>-<year>-<8 hex chars>". The random suffix
// makes collisions within a batch practically impossible.
func newQuestionID(category string, year int) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", category, year, suffix)
}
