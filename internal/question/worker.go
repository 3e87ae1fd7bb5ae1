package question

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultJobQueueSize = 64

type storeJob struct {
	questions  []Question
	difficulty string
	replenish  bool
}

// StoreWorker owns every detached write: persisting freshly generated
// questions and topping the store back up to the watermark. It has its own
// error boundary; nothing it does can reach a caller's response path. If the
// process dies before a job runs, the write is simply lost: the store is a
// cache, not a system of record.
type StoreWorker struct {
	store     Store
	gen       Generator
	jobs      chan storeJob
	timeout   time.Duration
	watermark int
	maxBatch  int
	logger    zerolog.Logger
	shutdownC chan struct{}
}

var _ backgroundStore = (*StoreWorker)(nil)

func NewStoreWorker(store Store, gen Generator, opts Options, timeout time.Duration, logger zerolog.Logger) *StoreWorker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if opts.Watermark <= 0 {
		opts.Watermark = defaultWatermark
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = defaultMaxBatch
	}
	return &StoreWorker{
		store:     store,
		gen:       gen,
		jobs:      make(chan storeJob, defaultJobQueueSize),
		timeout:   timeout,
		watermark: opts.Watermark,
		maxBatch:  opts.MaxBatch,
		logger:    logger.With().Str("component", "store_worker").Logger(),
		shutdownC: make(chan struct{}),
	}
}

// EnqueuePersist schedules a best-effort insert of accepted questions,
// stamped with the difficulty they were generated for. Never blocks: a full
// queue drops the job with a warning.
func (w *StoreWorker) EnqueuePersist(qs []Question, difficulty string) {
	stamped := make([]Question, len(qs))
	copy(stamped, qs)
	for i := range stamped {
		stamped[i].Difficulty = difficulty
	}
	w.enqueue(storeJob{questions: stamped, difficulty: difficulty})
}

// EnqueueReplenish schedules a watermark check for the difficulty; if the
// store is below it, the shortfall is generated and inserted.
func (w *StoreWorker) EnqueueReplenish(difficulty string) {
	w.enqueue(storeJob{difficulty: difficulty, replenish: true})
}

func (w *StoreWorker) enqueue(job storeJob) {
	select {
	case w.jobs <- job:
	default:
		storeJobsDropped.Inc()
		w.logger.Warn().Str("difficulty", job.difficulty).Bool("replenish", job.replenish).Msg("store queue full, dropping job")
	}
}

// Run consumes jobs until Stop is called.
func (w *StoreWorker) Run() {
	for {
		select {
		case <-w.shutdownC:
			w.logger.Info().Msg("store worker stopping")
			return
		case job := <-w.jobs:
			w.handle(job)
		}
	}
}

func (w *StoreWorker) Stop() {
	close(w.shutdownC)
}

func (w *StoreWorker) handle(job storeJob) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().Interface("panic", r).Msg("store job panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if job.replenish {
		w.replenish(ctx, job.difficulty)
		return
	}
	if err := w.store.InsertBatch(ctx, job.questions); err != nil {
		w.logger.Warn().Err(err).Int("count", len(job.questions)).Msg("persist failed")
	}
}

func (w *StoreWorker) replenish(ctx context.Context, difficulty string) {
	n, err := w.store.Count(ctx, difficulty)
	if err != nil {
		w.logger.Warn().Err(err).Msg("replenish count failed")
		return
	}
	if n >= w.watermark {
		return
	}
	if w.gen == nil {
		return
	}

	shortfall := w.watermark - n
	if shortfall > w.maxBatch {
		shortfall = w.maxBatch
	}
	qs, _, err := w.gen.FetchBatch(ctx, shortfall, difficulty)
	if err != nil || len(qs) == 0 {
		w.logger.Warn().Err(err).Int("shortfall", shortfall).Msg("replenish generation yielded nothing")
		return
	}
	for i := range qs {
		qs[i].Difficulty = difficulty
	}
	if err := w.store.InsertBatch(ctx, qs); err != nil {
		w.logger.Warn().Err(err).Msg("replenish insert failed")
		return
	}
	w.logger.Info().Int("inserted", len(qs)).Str("difficulty", difficulty).Msg("store replenished")
}
