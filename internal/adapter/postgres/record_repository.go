package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spencerjirehcebrian/weaver/internal/domain"
	apperrors "github.com/spencerjirehcebrian/weaver/internal/platform/errors"
)

// RecordRepo implements domain.RecordRepository on a pgx connection pool.
// The table is append-only: id and created_at are assigned by the database in
// the same insert statement, so their orderings always agree.
type RecordRepo struct {
	pool *pgxpool.Pool
}

func NewRecordRepo(pool *pgxpool.Pool) *RecordRepo {
	return &RecordRepo{pool: pool}
}

func (r *RecordRepo) Insert(ctx context.Context, content string) (*domain.TextRecord, error) {
	var record domain.TextRecord
	err := r.pool.QueryRow(ctx, `
		INSERT INTO text_records (content)
		VALUES ($1)
		RETURNING id, content, created_at
	`, content).Scan(&record.ID, &record.Content, &record.CreatedAt)
	if err != nil {
		return nil, apperrors.PersistenceError("failed to insert text record", err)
	}
	return &record, nil
}

func (r *RecordRepo) ListAll(ctx context.Context) ([]domain.TextRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, content, created_at
		FROM text_records
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, apperrors.PersistenceError("failed to list text records", err)
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.TextRecord])
	if err != nil {
		return nil, apperrors.PersistenceError("failed to scan text records", err)
	}
	return records, nil
}
