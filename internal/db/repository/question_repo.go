package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cryptotrivia/trivia-service/internal/question"
)

// dbtx is the slice of pgxpool.Pool the repository needs; tests can satisfy
// it without a database.
type dbtx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// QuestionRepository is the persistent cache store over trivia_questions.
// Rows are only ever inserted; nothing in this service deletes them.
type QuestionRepository struct {
	db dbtx
}

func NewQuestionRepository(db dbtx) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const selectRecent = `
SELECT id, category, question, options, correct_answer, year_indicator, difficulty
FROM trivia_questions
WHERE difficulty = $1
ORDER BY created_at DESC
LIMIT $2`

// Query returns up to count most-recently-created questions at the given
// difficulty, most recent first.
func (r *QuestionRepository) Query(ctx context.Context, count int, difficulty string) ([]question.Question, error) {
	rows, err := r.db.Query(ctx, selectRecent, difficulty, count)
	if err != nil {
		return nil, fmt.Errorf("%w: query questions: %v", question.ErrStore, err)
	}
	defer rows.Close()

	var qs []question.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan question: %v", question.ErrStore, err)
		}
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read questions: %v", question.ErrStore, err)
	}
	return qs, nil
}

const insertQuestion = `
INSERT INTO trivia_questions (id, category, question, options, correct_answer, year_indicator, difficulty, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (id) DO NOTHING`

// InsertBatch bulk-inserts accepted questions in a single round trip. It is
// best-effort by contract: the caller logs and swallows any failure.
func (r *QuestionRepository) InsertBatch(ctx context.Context, qs []question.Question) error {
	if len(qs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, q := range qs {
		options, err := encodeOptions(q.Options)
		if err != nil {
			return fmt.Errorf("%w: encode options for %s: %v", question.ErrStore, q.ID, err)
		}
		batch.Queue(insertQuestion, q.ID, q.Category, q.Question, options, q.CorrectAnswer, q.YearIndicator, q.Difficulty)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range qs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("%w: insert batch: %v", question.ErrStore, err)
		}
	}
	return nil
}

// Count is the cheap size check driving replenishment decisions.
func (r *QuestionRepository) Count(ctx context.Context, difficulty string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM trivia_questions WHERE difficulty = $1`, difficulty).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count questions: %v", question.ErrStore, err)
	}
	return n, nil
}

// scanQuestion maps a trivia_questions row onto the domain record. Options
// are stored as a jsonb array.
func scanQuestion(row pgx.Row) (question.Question, error) {
	var (
		q       question.Question
		options []byte
	)
	if err := row.Scan(&q.ID, &q.Category, &q.Question, &options, &q.CorrectAnswer, &q.YearIndicator, &q.Difficulty); err != nil {
		return question.Question{}, err
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return question.Question{}, err
	}
	return q, nil
}

func encodeOptions(options []string) ([]byte, error) {
	return json.Marshal(options)
}
