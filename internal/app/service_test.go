package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spencerjirehcebrian/weaver/internal/domain"
	apperrors "github.com/spencerjirehcebrian/weaver/internal/platform/errors"
)

// mockRepo assigns ids in insertion order, like the real store.
type mockRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []domain.TextRecord
	failing bool
}

func (m *mockRepo) Insert(_ context.Context, content string) (*domain.TextRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return nil, apperrors.PersistenceError("failed to insert record", nil)
	}

	m.nextID++
	record := domain.TextRecord{ID: m.nextID, Content: content, CreatedAt: time.Now().UTC()}
	m.records = append(m.records, record)
	return &record, nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]domain.TextRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return nil, apperrors.PersistenceError("failed to list records", nil)
	}

	out := make([]domain.TextRecord, len(m.records))
	for i, r := range m.records {
		out[len(m.records)-1-i] = r
	}
	return out, nil
}

type mockPublisher struct {
	mu        sync.Mutex
	published []*domain.TextRecord
}

func (m *mockPublisher) Broadcast(record *domain.TextRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, record)
}

func (m *mockPublisher) records() []*domain.TextRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.TextRecord(nil), m.published...)
}

func TestSubmitText_PersistsThenBroadcasts(t *testing.T) {
	repo := &mockRepo{}
	pub := &mockPublisher{}
	svc := NewService(repo, pub)

	record, err := svc.SubmitText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.ID)
	assert.Equal(t, "hello", record.Content)
	assert.False(t, record.CreatedAt.IsZero())

	published := pub.records()
	require.Len(t, published, 1)
	assert.Equal(t, record.ID, published[0].ID)
}

func TestSubmitText_StoreFailureMeansNoBroadcast(t *testing.T) {
	repo := &mockRepo{failing: true}
	pub := &mockPublisher{}
	svc := NewService(repo, pub)

	_, err := svc.SubmitText(context.Background(), "doomed")
	require.Error(t, err)

	structured := apperrors.AsStructuredError(err)
	assert.Equal(t, apperrors.TypePersistence, structured.Type)

	assert.Empty(t, pub.records(), "a failed insert must never reach viewers")
}

func TestSubmitText_ConcurrentSubmitsGetDistinctIDs(t *testing.T) {
	repo := &mockRepo{}
	pub := &mockPublisher{}
	svc := NewService(repo, pub)

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubmitText(context.Background(), "concurrent")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	published := pub.records()
	require.Len(t, published, n)

	seen := make(map[int64]bool, n)
	for _, r := range published {
		assert.False(t, seen[r.ID], "id %d published twice", r.ID)
		seen[r.ID] = true
	}
}

func TestSubmitText_BroadcastOrderMatchesIDOrder(t *testing.T) {
	repo := &mockRepo{}
	pub := &mockPublisher{}
	svc := NewService(repo, pub)

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.SubmitText(context.Background(), "ordered")
		}()
	}
	wg.Wait()

	published := pub.records()
	require.Len(t, published, n)
	for i := 1; i < len(published); i++ {
		assert.Less(t, published[i-1].ID, published[i].ID,
			"broadcast order must match id order")
	}
}

func TestListTexts_ReturnsNewestFirst(t *testing.T) {
	repo := &mockRepo{}
	pub := &mockPublisher{}
	svc := NewService(repo, pub)

	for _, content := range []string{"first", "second", "third"} {
		_, err := svc.SubmitText(context.Background(), content)
		require.NoError(t, err)
	}

	records, err := svc.ListTexts(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third", records[0].Content)
	assert.Equal(t, "first", records[2].Content)
}
