package app

import (
	"context"
	"sync"

	"github.com/spencerjirehcebrian/weaver/internal/domain"
	"github.com/spencerjirehcebrian/weaver/internal/metrics"
)

// Publisher is the broadcaster surface the service needs.
type Publisher interface {
	Broadcast(record *domain.TextRecord)
}

// Service implements the ingestion and snapshot operations.
type Service struct {
	records     domain.RecordRepository
	broadcaster Publisher

	// publishMu serializes insert+broadcast so the order records reach the
	// broadcaster always matches id order. Without it, two concurrent submits
	// could persist as id 1,2 but enqueue as 2,1.
	publishMu sync.Mutex
}

func NewService(records domain.RecordRepository, broadcaster Publisher) *Service {
	return &Service{
		records:     records,
		broadcaster: broadcaster,
	}
}

// SubmitText persists the content and, only after the write is durable, pushes
// the new record to every live viewer. A store failure produces no broadcast:
// viewers never observe a record the store does not have.
func (s *Service) SubmitText(ctx context.Context, content string) (*domain.TextRecord, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	record, err := s.records.Insert(ctx, content)
	if err != nil {
		return nil, err
	}

	metrics.RecordsIngestedTotal.Inc()
	s.broadcaster.Broadcast(record)

	return record, nil
}

// ListTexts returns the full record set, newest first.
func (s *Service) ListTexts(ctx context.Context) ([]domain.TextRecord, error) {
	return s.records.ListAll(ctx)
}
