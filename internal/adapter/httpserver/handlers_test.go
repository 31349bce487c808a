package httpserver

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"

	"github.com/spencerjirehcebrian/weaver/internal/broadcast"
	"github.com/spencerjirehcebrian/weaver/internal/domain"
	"github.com/spencerjirehcebrian/weaver/internal/platform/config"
)

type mockTextService struct {
	submitTextFn func(ctx context.Context, content string) (*domain.TextRecord, error)
	listTextsFn  func(ctx context.Context) ([]domain.TextRecord, error)
}

func (m *mockTextService) SubmitText(ctx context.Context, content string) (*domain.TextRecord, error) {
	if m.submitTextFn != nil {
		return m.submitTextFn(ctx, content)
	}
	return &domain.TextRecord{ID: 1, Content: content}, nil
}

func (m *mockTextService) ListTexts(ctx context.Context) ([]domain.TextRecord, error) {
	if m.listTextsFn != nil {
		return m.listTextsFn(ctx)
	}
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                  "test",
		Port:                    "0",
		AllowedOrigins:          "http://localhost:3010",
		BodyLimit:               "50M",
		MaxWebSocketConnections: 100,
	}
}

// newTestServer builds a Server with a mock application service and a real
// broadcaster, wired exactly as in production.
func newTestServer(t *testing.T, svc textService, checks ...HealthCheck) *Server {
	t.Helper()

	broadcaster := broadcast.NewBroadcaster(clockwork.NewRealClock(), 100)
	t.Cleanup(func() { broadcaster.Stop() })

	if svc == nil {
		svc = &mockTextService{}
	}

	return NewServer(testConfig(), svc, broadcaster, checks)
}
