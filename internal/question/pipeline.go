package question

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Store is the persistent cache of previously accepted questions
// (implemented by the pgx-backed repository).
type Store interface {
	Query(ctx context.Context, count int, difficulty string) ([]Question, error)
	InsertBatch(ctx context.Context, qs []Question) error
	Count(ctx context.Context, difficulty string) (int, error)
}

// Generator produces validated questions from the generative provider.
type Generator interface {
	FetchBatch(ctx context.Context, count int, difficulty string) ([]Question, time.Duration, error)
}

// BatchCache short-circuits repeated identical requests (Redis-backed).
type BatchCache interface {
	Get(ctx context.Context, req BatchRequest) (*BatchResult, error)
	Set(ctx context.Context, req BatchRequest, res BatchResult) error
}

// backgroundStore receives detached write work so the response path never
// waits on persistence.
type backgroundStore interface {
	EnqueuePersist(qs []Question, difficulty string)
	EnqueueReplenish(difficulty string)
}

// Options tune the pipeline's tier policy.
type Options struct {
	// CacheFirst flips the tier order to read-through: serve from the store
	// when it has enough rows and replenish in the background.
	CacheFirst bool
	// Watermark is the minimum per-difficulty row count below which the
	// background replenisher kicks in (cache-first mode).
	Watermark int
	// MaxBatch caps a single request's question count.
	MaxBatch int
}

const (
	defaultWatermark = 20
	defaultMaxBatch  = 30
	defaultCount     = 8
)

// Pipeline decides, for a requested batch, where questions come from:
// generative provider, persistent store, or the static bank. Absent
// collaborators are explicit nils; tier skipping is a plain presence check.
type Pipeline struct {
	store  Store
	cache  BatchCache
	gen    Generator
	bank   *Bank
	bg     backgroundStore
	opts   Options
	logger zerolog.Logger
}

// NewPipeline wires the orchestrator. store, cache, gen and bg may each be
// nil when the corresponding collaborator is unconfigured.
func NewPipeline(store Store, cache BatchCache, gen Generator, bank *Bank, bg backgroundStore, opts Options, logger zerolog.Logger) *Pipeline {
	if opts.Watermark <= 0 {
		opts.Watermark = defaultWatermark
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = defaultMaxBatch
	}
	return &Pipeline{
		store:  store,
		cache:  cache,
		gen:    gen,
		bank:   bank,
		bg:     bg,
		opts:   opts,
		logger: logger.With().Str("component", "question_pipeline").Logger(),
	}
}

// SourceQuestions returns a batch for the request. It never fails: every tier
// error degrades silently to the next tier, and a defensive recover guards
// even against bugs, substituting a fixed static batch tagged "hardcoded".
func (p *Pipeline) SourceQuestions(ctx context.Context, req BatchRequest) (res BatchResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("pipeline panic, serving hardcoded fallback")
			res = BatchResult{
				Questions: p.bank.Select(defaultCount),
				Source:    SourceHardcoded,
				Metrics:   BatchMetrics{Fallback: true, Err: true},
			}
			batchesServed.WithLabelValues(SourceHardcoded).Inc()
		}
	}()

	req = p.normalize(req)

	if hit := p.fromBatchCache(ctx, req); hit != nil {
		batchesServed.WithLabelValues(hit.Source).Inc()
		return *hit
	}

	if p.opts.CacheFirst {
		res = p.cacheFirst(ctx, req)
	} else {
		res = p.generateFirst(ctx, req)
	}

	if p.cache != nil && len(res.Questions) > 0 {
		if err := p.cache.Set(ctx, req, res); err != nil {
			p.logger.Debug().Err(err).Msg("batch cache write failed")
		}
	}
	batchesServed.WithLabelValues(res.Source).Inc()
	return res
}

func (p *Pipeline) normalize(req BatchRequest) BatchRequest {
	if req.Count < 1 {
		req.Count = defaultCount
	}
	if req.Count > p.opts.MaxBatch {
		req.Count = p.opts.MaxBatch
	}
	if !ValidDifficulty(req.Difficulty) {
		req.Difficulty = DifficultyMedium
	}
	return req
}

func (p *Pipeline) fromBatchCache(ctx context.Context, req BatchRequest) *BatchResult {
	if p.cache == nil {
		return nil
	}
	hit, err := p.cache.Get(ctx, req)
	if err != nil {
		p.logger.Debug().Err(err).Msg("batch cache read failed")
		return nil
	}
	if hit == nil || len(hit.Questions) == 0 {
		return nil
	}
	return hit
}

// generateFirst is the authoritative tier order:
// generation -> store -> static bank.
func (p *Pipeline) generateFirst(ctx context.Context, req BatchRequest) BatchResult {
	if res, ok := p.tryGenerate(ctx, req); ok {
		return res
	}
	if res, ok := p.tryStore(ctx, req); ok {
		return res
	}
	return p.static(req)
}

// cacheFirst treats the store as a read-through cache: a full hit is served
// directly and a non-blocking watermark check tops the store back up; a miss
// falls through to synchronous generation.
func (p *Pipeline) cacheFirst(ctx context.Context, req BatchRequest) BatchResult {
	var held []Question
	if p.store != nil {
		rows, err := p.store.Query(ctx, req.Count, req.Difficulty)
		if err != nil {
			p.logger.Warn().Err(err).Msg("store query failed")
		} else {
			held = rows
		}
		if len(held) >= req.Count {
			if p.bg != nil {
				p.bg.EnqueueReplenish(req.Difficulty)
			}
			return BatchResult{
				Questions: shuffled(held)[:req.Count],
				Source:    SourceCached,
				Metrics:   BatchMetrics{FromDatabase: true},
			}
		}
	}

	if res, ok := p.tryGenerate(ctx, req); ok {
		return res
	}
	// Generation came up empty: serve whatever rows the store did have.
	if len(held) > 0 {
		return BatchResult{
			Questions: shuffled(held),
			Source:    SourceCached,
			Metrics:   BatchMetrics{FromDatabase: true},
		}
	}
	return p.static(req)
}

func (p *Pipeline) tryGenerate(ctx context.Context, req BatchRequest) (BatchResult, bool) {
	if p.gen == nil {
		return BatchResult{}, false
	}
	qs, took, err := p.gen.FetchBatch(ctx, req.Count, req.Difficulty)
	switch {
	case errors.Is(err, ErrNotConfigured):
		p.logger.Debug().Msg("generative tier not configured")
		return BatchResult{}, false
	case err != nil:
		p.logger.Warn().Err(err).Msg("generative tier failed")
		return BatchResult{}, false
	case len(qs) == 0:
		p.logger.Warn().Str("difficulty", req.Difficulty).Msg("generative tier yielded zero questions")
		return BatchResult{}, false
	}

	qs = dedupeBatch(qs)
	generationSeconds.Observe(took.Seconds())

	// Persistence is decoupled from the response path: fire and forget.
	if p.bg != nil && p.store != nil {
		p.bg.EnqueuePersist(qs, req.Difficulty)
	}
	return BatchResult{
		Questions: qs,
		Source:    SourceGenerated,
		Metrics:   BatchMetrics{GenerationTimeMs: took.Milliseconds()},
	}, true
}

func (p *Pipeline) tryStore(ctx context.Context, req BatchRequest) (BatchResult, bool) {
	if p.store == nil {
		return BatchResult{}, false
	}
	rows, err := p.store.Query(ctx, req.Count, req.Difficulty)
	if err != nil {
		p.logger.Warn().Err(err).Msg("store query failed")
		return BatchResult{}, false
	}
	if len(rows) == 0 {
		return BatchResult{}, false
	}
	rows = dedupeBatch(shuffled(rows))
	if len(rows) > req.Count {
		rows = rows[:req.Count]
	}
	return BatchResult{
		Questions: rows,
		Source:    SourceCached,
		Metrics:   BatchMetrics{FromDatabase: true},
	}, true
}

func (p *Pipeline) static(req BatchRequest) BatchResult {
	return BatchResult{
		Questions: p.bank.Select(req.Count),
		Source:    SourceStatic,
		Metrics:   BatchMetrics{Fallback: true},
	}
}

// dedupeBatch drops duplicate IDs while preserving order. Collisions are
// near-impossible given random ID suffixes, but the batch invariant demands
// the guard.
func dedupeBatch(qs []Question) []Question {
	seen := make(map[string]struct{}, len(qs))
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}
