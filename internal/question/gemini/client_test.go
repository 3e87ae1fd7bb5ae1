package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/cryptotrivia/trivia-service/internal/question"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func candidateArray(n int) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		category := question.Categories[i%len(question.Categories)]
		items = append(items, fmt.Sprintf(`{
			"category": %q,
			"question": "Generated question %d?",
			"options": ["Answer %d-a", "Answer %d-b", "Answer %d-c", "Answer %d-d"],
			"correctAnswer": %d,
			"year": 2020
		}`, category, i, i, i, i, i, i%4))
	}
	out := "["
	for i, item := range items {
		if i > 0 {
			out += ","
		}
		out += item
	}
	return out + "]"
}

// modelResponse wraps text the way the generateContent API does.
func modelResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]string{{"text": text}},
			},
		}},
	})
	return string(body)
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: baseURL}, testLogger())
}

func TestFetchBatchRequiresAPIKey(t *testing.T) {
	c := NewClient(Config{}, testLogger())

	_, _, err := c.FetchBatch(context.Background(), 8, question.DifficultyMedium)

	assert.ErrorIs(t, err, question.ErrNotConfigured)
}

func TestFetchBatchHappyPath(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, modelResponse("```json\n"+candidateArray(8)+"\n```"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	qs, took, err := c.FetchBatch(context.Background(), 8, question.DifficultyMedium)

	assert.NoError(t, err)
	assert.Len(t, qs, 8)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a full primary batch needs no supplementary call")
	assert.Greater(t, took, time.Duration(0))
	for _, q := range qs {
		assert.NotEmpty(t, q.ID)
		assert.Equal(t, question.DifficultyMedium, q.Difficulty)
		assert.Len(t, q.Options, 4)
	}
}

func TestFetchBatchSupplementaryCallOnShortfall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			fmt.Fprint(w, modelResponse("```json\n"+candidateArray(3)+"\n```"))
			return
		}
		fmt.Fprint(w, modelResponse("```json\n"+candidateArray(5)+"\n```"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	qs, _, err := c.FetchBatch(context.Background(), 8, question.DifficultyEasy)

	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Len(t, qs, 8)
}

func TestFetchBatchResolvesEmptyOnProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	qs, _, err := c.FetchBatch(context.Background(), 8, question.DifficultyMedium)

	assert.NoError(t, err, "provider failures degrade to an empty batch")
	assert.Empty(t, qs)
}

func TestFetchBatchResolvesEmptyOnUnparseableText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, modelResponse("Sorry, I can't produce questions right now."))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	qs, _, err := c.FetchBatch(context.Background(), 5, question.DifficultyHard)

	assert.NoError(t, err)
	assert.Empty(t, qs)
}

func TestFetchBatchDropsInvalidCandidates(t *testing.T) {
	// Second element has only three options and must be rejected.
	payload := `[
		{"category": "development", "question": "Valid?", "options": ["a", "b", "c", "d"], "correctAnswer": 1},
		{"category": "development", "question": "Broken?", "options": ["a", "b", "c"], "correctAnswer": 0}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, modelResponse("```json\n"+payload+"\n```"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	qs, _, err := c.FetchBatch(context.Background(), 1, question.DifficultyMedium)

	assert.NoError(t, err)
	assert.Len(t, qs, 1)
	assert.Equal(t, "Valid?", qs[0].Question)
}

func TestYearPlanDistribution(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, testLogger())

	slots := c.yearPlan(10, question.DifficultyMedium)

	assert.Len(t, slots, 10)
	perCategory := map[string]int{}
	for _, s := range slots {
		perCategory[s.Category]++
	}
	// 10 across 4 categories: remainder goes to the earliest two.
	assert.Equal(t, 3, perCategory[question.CategoryDevelopment])
	assert.Equal(t, 3, perCategory[question.CategoryMemesNFTsTokens])
	assert.Equal(t, 2, perCategory[question.CategoryScamsIncidents])
	assert.Equal(t, 2, perCategory[question.CategoryCryptoCharacters])
}

func TestYearPlanStepsBackPerDifficulty(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, testLogger())

	for difficulty, step := range map[string]int{
		question.DifficultyEasy:   1,
		question.DifficultyMedium: 2,
		question.DifficultyHard:   3,
	} {
		slots := c.yearPlan(8, difficulty)
		for _, s := range slots {
			if s.Category != question.CategoryDevelopment {
				continue
			}
			offset := defaultAnchorYear - s.Year
			assert.Zero(t, offset%step, "%s: year %d is off the %d-year grid", difficulty, s.Year, step)
		}
	}
}

func TestYearPlanSkipsSlotsBeforeEpoch(t *testing.T) {
	c := NewClient(Config{APIKey: "k", AnchorYear: 2012, EpochYear: 2009}, testLogger())

	slots := c.yearPlan(30, question.DifficultyHard)

	// Hard steps back 3 years per slot: only 2012 and 2009 fit per category.
	assert.Len(t, slots, 8)
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.Year, 2009)
		assert.LessOrEqual(t, s.Year, 2012)
	}
}

func TestRandomSlotsStayWithinRange(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, testLogger())

	for _, s := range c.randomSlots(40) {
		assert.GreaterOrEqual(t, s.Year, defaultEpochYear)
		assert.Less(t, s.Year, defaultAnchorYear)
	}
}

func TestExtractArrayShapes(t *testing.T) {
	array := `[{"category": "development", "question": "Q?", "options": ["a","b","c","d"], "correctAnswer": 0}]`
	cases := []struct {
		name string
		text string
	}{
		{"json fence", "Here you go:\n```json\n" + array + "\n```\nEnjoy!"},
		{"plain fence", "```" + array + "```"},
		{"bare array", "Sure thing. " + array + " Anything else?"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, ok := extractArray(tc.text)
			assert.True(t, ok)
			assert.Len(t, items, 1)
		})
	}
}

func TestExtractArrayRejectsGarbage(t *testing.T) {
	for _, text := range []string{
		"",
		"no json here",
		"```json\nnot an array\n```",
		"[1, 2, 3",
	} {
		_, ok := extractArray(text)
		assert.False(t, ok, "text %q must not extract", text)
	}
}
