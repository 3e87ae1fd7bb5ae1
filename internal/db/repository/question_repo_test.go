package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/cryptotrivia/trivia-service/internal/question"
)

// fakeRows feeds canned row values through the pgx.Rows surface the
// repository actually touches.
type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (f *fakeRows) Close()                                       {}
func (f *fakeRows) Err() error                                   { return f.err }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Next() bool {
	if f.idx >= len(f.rows) {
		return false
	}
	f.idx++
	return true
}
func (f *fakeRows) Scan(dest ...any) error { return assign(f.rows[f.idx-1], dest) }
func (f *fakeRows) Values() ([]any, error) { return nil, nil }
func (f *fakeRows) RawValues() [][]byte    { return nil }
func (f *fakeRows) Conn() *pgx.Conn        { return nil }

type fakeRow struct {
	values []any
	err    error
}

func (f fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	return assign(f.values, dest)
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: want %d values, got %d", len(dest), len(values))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *[]byte:
			*d = v.([]byte)
		default:
			return fmt.Errorf("scan: unsupported dest %T", dest[i])
		}
	}
	return nil
}

type fakeBatchResults struct {
	execs   int
	execErr error
}

func (f *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	f.execs++
	return pgconn.CommandTag{}, f.execErr
}
func (f *fakeBatchResults) Query() (pgx.Rows, error) { return nil, nil }
func (f *fakeBatchResults) QueryRow() pgx.Row        { return fakeRow{} }
func (f *fakeBatchResults) Close() error             { return nil }

type fakeDB struct {
	rows     *fakeRows
	queryErr error
	row      fakeRow
	results  *fakeBatchResults
	gotSQL   string
	gotArgs  []any
	batch    *pgx.Batch
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.gotSQL, f.gotArgs = sql, args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.gotSQL, f.gotArgs = sql, args
	return f.row
}

func (f *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batch = b
	return f.results
}

func dbRow(id, category, text string, options []string, answer, year int, difficulty string) []any {
	encoded, _ := json.Marshal(options)
	return []any{id, category, text, encoded, answer, year, difficulty}
}

func TestQueryMapsRows(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{rows: [][]any{
		dbRow("development-2021-abcd1234", "development", "Which EIP burned fees?", []string{"1559", "721", "20", "4844"}, 0, 2021, "medium"),
		dbRow("scams-incidents-2016-ffff0000", "scams-incidents", "Which DAO was drained?", []string{"The DAO", "Maker", "Aragon", "Moloch"}, 0, 2016, "medium"),
	}}}
	repo := NewQuestionRepository(db)

	qs, err := repo.Query(context.Background(), 10, "medium")

	assert.NoError(t, err)
	assert.Len(t, qs, 2)
	assert.Equal(t, []any{"medium", 10}, db.gotArgs)
	assert.Equal(t, "development-2021-abcd1234", qs[0].ID)
	assert.Equal(t, []string{"1559", "721", "20", "4844"}, qs[0].Options)
	assert.Equal(t, 2016, qs[1].YearIndicator)
}

func TestQueryWrapsStoreError(t *testing.T) {
	repo := NewQuestionRepository(&fakeDB{queryErr: errors.New("connection refused")})

	_, err := repo.Query(context.Background(), 10, "easy")

	assert.ErrorIs(t, err, question.ErrStore)
}

func TestQueryFailsOnCorruptOptions(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{rows: [][]any{
		{"id-1", "development", "Q?", []byte("not json"), 0, 2020, "easy"},
	}}}
	repo := NewQuestionRepository(db)

	_, err := repo.Query(context.Background(), 1, "easy")

	assert.ErrorIs(t, err, question.ErrStore)
}

func TestInsertBatchQueuesEveryQuestion(t *testing.T) {
	db := &fakeDB{results: &fakeBatchResults{}}
	repo := NewQuestionRepository(db)

	qs := []question.Question{
		{ID: "a", Category: "development", Question: "Q1?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1, YearIndicator: 2020, Difficulty: "medium"},
		{ID: "b", Category: "crypto-characters", Question: "Q2?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 2, YearIndicator: 2017, Difficulty: "medium"},
	}

	assert.NoError(t, repo.InsertBatch(context.Background(), qs))
	assert.Equal(t, 2, db.batch.Len())
	assert.Equal(t, 2, db.results.execs)
}

func TestInsertBatchEmptyIsNoop(t *testing.T) {
	db := &fakeDB{}
	repo := NewQuestionRepository(db)

	assert.NoError(t, repo.InsertBatch(context.Background(), nil))
	assert.Nil(t, db.batch, "no round trip for an empty batch")
}

func TestInsertBatchWrapsExecError(t *testing.T) {
	db := &fakeDB{results: &fakeBatchResults{execErr: errors.New("duplicate key")}}
	repo := NewQuestionRepository(db)

	err := repo.InsertBatch(context.Background(), []question.Question{
		{ID: "a", Options: []string{"a", "b", "c", "d"}},
	})

	assert.ErrorIs(t, err, question.ErrStore)
}

func TestCount(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{17}}}
	repo := NewQuestionRepository(db)

	n, err := repo.Count(context.Background(), "hard")

	assert.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.Equal(t, []any{"hard"}, db.gotArgs)
}

func TestCountWrapsError(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: errors.New("timeout")}}
	repo := NewQuestionRepository(db)

	_, err := repo.Count(context.Background(), "hard")

	assert.ErrorIs(t, err, question.ErrStore)
}
