package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spencerjirehcebrian/weaver/internal/domain"
	apperrors "github.com/spencerjirehcebrian/weaver/internal/platform/errors"
)

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleSubmitText_Success(t *testing.T) {
	now := time.Now().UTC()
	svc := &mockTextService{
		submitTextFn: func(_ context.Context, content string) (*domain.TextRecord, error) {
			return &domain.TextRecord{ID: 42, Content: content, CreatedAt: now}, nil
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(t, srv, http.MethodPost, "/api/text", `{"content":"hello world"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.TextRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, "hello world", got.Content)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestHandleSubmitText_EmptyContentAccepted(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/text", `{"content":""}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandleSubmitText_MissingContent(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/text", `{"note":"no content field"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "content")
}

func TestHandleSubmitText_MalformedJSON(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/text", `{"content":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSubmitText_StoreFailure(t *testing.T) {
	svc := &mockTextService{
		submitTextFn: func(_ context.Context, _ string) (*domain.TextRecord, error) {
			return nil, apperrors.PersistenceError("failed to insert record", nil)
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(t, srv, http.MethodPost, "/api/text", `{"content":"doomed"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestHandleListTexts_NewestFirst(t *testing.T) {
	svc := &mockTextService{
		listTextsFn: func(_ context.Context) ([]domain.TextRecord, error) {
			return []domain.TextRecord{
				{ID: 3, Content: "third"},
				{ID: 2, Content: "second"},
				{ID: 1, Content: "first"},
			}, nil
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(t, srv, http.MethodGet, "/api/texts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.TextRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[2].ID)
}

func TestHandleListTexts_EmptyStoreReturnsEmptyArray(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/texts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleListTexts_StoreFailure(t *testing.T) {
	svc := &mockTextService{
		listTextsFn: func(_ context.Context) ([]domain.TextRecord, error) {
			return nil, apperrors.PersistenceError("failed to list records", nil)
		},
	}
	srv := newTestServer(t, svc)

	rec := doJSON(t, srv, http.MethodGet, "/api/texts", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
