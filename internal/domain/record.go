package domain

import (
	"context"
	"time"
)

// TextRecord is a single persisted text entry. Records are immutable once
// created: the store assigns ID and CreatedAt atomically at insert time and
// no update or delete operation exists.
type TextRecord struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordRepository is the append-only store of text records. ListAll returns
// records newest-first (created_at descending, id breaking ties), matching the
// order live pushes are prepended in on the viewer side.
type RecordRepository interface {
	Insert(ctx context.Context, content string) (*TextRecord, error)
	ListAll(ctx context.Context) ([]TextRecord, error)
}
