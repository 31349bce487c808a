// Package viewer is the consuming side of the live feed: a snapshot fetch
// over HTTP plus a WebSocket subscription that survives transient
// disconnects by reconnecting with exponential backoff.
package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/spencerjirehcebrian/weaver/internal/domain"
	"github.com/spencerjirehcebrian/weaver/internal/platform/retry"
)

const (
	snapshotTimeout  = 30 * time.Second
	handshakeTimeout = 10 * time.Second

	reconnectInitialBackoff = 1 * time.Second
	reconnectMaxBackoff     = 5 * time.Second
	reconnectMaxAttempts    = 5
)

// Handler receives each live push in arrival order. It is called from the
// Listen goroutine, so a slow handler delays subsequent events but never
// reorders them.
type Handler func(record *domain.TextRecord)

// Client talks to a running server: Snapshot for the current contents,
// Listen for everything published afterwards.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	dialer          *websocket.Dialer
	reconnectPolicy retry.Policy

	// OnDisconnect, if set, is invoked before each reconnect attempt.
	OnDisconnect func(err error)
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: snapshotTimeout},
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		reconnectPolicy: retry.Policy{
			MaxAttempts:    reconnectMaxAttempts,
			InitialBackoff: reconnectInitialBackoff,
			MaxBackoff:     reconnectMaxBackoff,
		},
	}
}

// Snapshot fetches every stored record, newest first.
func (c *Client) Snapshot(ctx context.Context) ([]domain.TextRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/texts", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("snapshot request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var records []domain.TextRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return records, nil
}

// pushEvent mirrors the envelope the server broadcasts.
type pushEvent struct {
	Event string             `json:"event"`
	Data  *domain.TextRecord `json:"data"`
}

// Listen subscribes to the live feed and invokes fn for every new record
// until ctx is cancelled. A dropped connection triggers reconnects with
// exponential backoff; the attempt counter resets after each successful
// connect, so only consecutive failures exhaust the budget. Listen returns
// nil on context cancellation and an error once the reconnect budget is
// spent.
func (c *Client) Listen(ctx context.Context, fn Handler) error {
	wsURL, err := c.websocketURL()
	if err != nil {
		return err
	}

	policy := c.reconnectPolicy
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Reconnecting to live feed",
			"attempt", attempt,
			"backoff", backoff,
			"error", err)
	}
	transient := func(error) retry.Action { return retry.Retry }

	for {
		conn, err := retry.Do(ctx, policy, transient, func() (*websocket.Conn, error) {
			conn, _, dialErr := c.dialer.DialContext(ctx, wsURL, nil)
			return conn, dialErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("live feed unavailable: %w", err)
		}

		slog.Info("Connected to live feed", "url", wsURL)
		err = c.readLoop(ctx, conn, fn)
		conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		if c.OnDisconnect != nil {
			c.OnDisconnect(err)
		}
		slog.Warn("Live feed connection lost", "error", err)
	}
}

// readLoop delivers events until the connection drops or ctx is cancelled.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, fn Handler) error {
	// Unblock ReadMessage when the caller gives up.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var event pushEvent
		if err := json.Unmarshal(data, &event); err != nil {
			slog.Warn("Discarding malformed push", "error", err)
			continue
		}
		if event.Event != "newText" || event.Data == nil {
			continue
		}
		fn(event.Data)
	}
}

func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in base URL", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}
