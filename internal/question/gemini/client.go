package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cryptotrivia/trivia-service/internal/question"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 12 * time.Second

	// Year anchoring: harder difficulties step back through history faster,
	// and nothing predates the Bitcoin genesis year.
	defaultAnchorYear = 2024
	defaultEpochYear  = 2009
)

// Config holds connection and year-planning details for the Gemini client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	AnchorYear int
	EpochYear  int
}

// Client is the generative source adapter. It turns one batch request
// into at most two provider calls (primary + one shortfall retry) and only
// ever hands validated questions back.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.AnchorYear == 0 {
		cfg.AnchorYear = defaultAnchorYear
	}
	if cfg.EpochYear == 0 {
		cfg.EpochYear = defaultEpochYear
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger.With().Str("component", "gemini_client").Logger(),
	}
}

// FetchBatch requests count questions at the given difficulty. It resolves
// with whatever was accumulated, possibly fewer than count or zero; the only
// error it returns is a missing API key, which is a configuration problem and
// checked before any network call. The returned duration is wall-clock time
// spent on provider calls.
func (c *Client) FetchBatch(ctx context.Context, count int, difficulty string) ([]question.Question, time.Duration, error) {
	if c.cfg.APIKey == "" {
		return nil, 0, fmt.Errorf("gemini api key: %w", question.ErrNotConfigured)
	}
	start := time.Now()

	slots := c.yearPlan(count, difficulty)
	var accepted []question.Question
	if len(slots) > 0 {
		qs, err := c.generate(ctx, buildPrompt(slots, false), slots, difficulty)
		if err != nil {
			c.logger.Warn().Err(err).Int("count", count).Str("difficulty", difficulty).Msg("primary generation call failed")
		}
		accepted = append(accepted, qs...)
	}

	// One supplementary call for the shortfall, with (category, year) pairs
	// drawn uniformly from the full valid range. This is a single retry tier.
	if len(accepted) < count {
		backup := c.randomSlots(count - len(accepted))
		qs, err := c.generate(ctx, buildPrompt(backup, true), backup, difficulty)
		if err != nil {
			c.logger.Warn().Err(err).Int("shortfall", count-len(accepted)).Msg("supplementary generation call failed")
		}
		accepted = append(accepted, qs...)
	}

	accepted = dedupeByID(accepted)
	rand.Shuffle(len(accepted), func(i, j int) { accepted[i], accepted[j] = accepted[j], accepted[i] })
	if len(accepted) > count {
		accepted = accepted[:count]
	}
	return accepted, time.Since(start), nil
}

// yearPlan distributes count questions evenly across the categories
// (remainder to the earliest) and anchors each slot's year by stepping back
// from the anchor year at the difficulty's pace. Slots that would land before
// the epoch year are skipped, shrinking the effective batch.
func (c *Client) yearPlan(count int, difficulty string) []slot {
	decrement := yearDecrement(difficulty)
	perCategory := count / len(question.Categories)
	remainder := count % len(question.Categories)

	var slots []slot
	for i, category := range question.Categories {
		categoryCount := perCategory
		if i < remainder {
			categoryCount++
		}
		for j := 0; j < categoryCount; j++ {
			year := c.cfg.AnchorYear - j*decrement
			if year < c.cfg.EpochYear {
				continue
			}
			slots = append(slots, slot{Category: category, Year: year})
		}
	}
	return slots
}

func (c *Client) randomSlots(count int) []slot {
	slots := make([]slot, 0, count)
	span := c.cfg.AnchorYear - c.cfg.EpochYear
	if span < 1 {
		span = 1
	}
	for i := 0; i < count; i++ {
		slots = append(slots, slot{
			Category: question.Categories[i%len(question.Categories)],
			Year:     c.cfg.EpochYear + rand.Intn(span),
		})
	}
	return slots
}

func yearDecrement(difficulty string) int {
	switch difficulty {
	case question.DifficultyEasy:
		return 1
	case question.DifficultyHard:
		return 3
	default:
		return 2
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate performs one provider call and returns the validated questions it
// yielded. Parse failures are provider errors, not exceptions: the caller
// logs them and treats the call as having produced zero questions.
func (c *Client) generate(ctx context.Context, prompt string, slots []slot, difficulty string) ([]question.Question, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopP:            0.8,
			TopK:            40,
			MaxOutputTokens: 8192,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", question.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: gemini status %d", question.ErrProvider, resp.StatusCode)
	}

	var gResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", question.ErrProvider, err)
	}

	for _, cand := range gResp.Candidates {
		for _, p := range cand.Content.Parts {
			items, ok := extractArray(p.Text)
			if !ok {
				continue
			}
			return c.acceptCandidates(items, slots, difficulty), nil
		}
	}
	return nil, fmt.Errorf("%w: no json array in response", question.ErrProvider)
}

// acceptCandidates runs every array element through the validator. Invalid
// elements are dropped, not retried. A candidate without an explicit year
// inherits the year of the slot it was requested for.
func (c *Client) acceptCandidates(items []json.RawMessage, slots []slot, difficulty string) []question.Question {
	accepted := make([]question.Question, 0, len(items))
	for i, raw := range items {
		var cand question.Candidate
		if err := json.Unmarshal(raw, &cand); err != nil {
			c.logger.Debug().Err(err).Int("index", i).Msg("candidate is not an object")
			continue
		}
		slotYear := c.cfg.AnchorYear
		if i < len(slots) {
			slotYear = slots[i].Year
		}
		q, err := question.Validate(cand, slotYear, difficulty)
		if err != nil {
			c.logger.Debug().Err(err).Int("index", i).Msg("candidate rejected")
			continue
		}
		accepted = append(accepted, q)
	}
	return accepted
}

func dedupeByID(qs []question.Question) []question.Question {
	seen := make(map[string]struct{}, len(qs))
	out := qs[:0]
	for _, q := range qs {
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}
