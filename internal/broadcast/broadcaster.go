package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/spencerjirehcebrian/weaver/internal/domain"
	"github.com/spencerjirehcebrian/weaver/internal/metrics"
)

const (
	commandTimeout  = 5 * time.Second
	stopTimeout     = 10 * time.Second
	commandChanSize = 256
)

// EventNewText is the event name carried by every live push.
const EventNewText = "newText"

// pushEvent is the wire envelope for a live push.
type pushEvent struct {
	Event string             `json:"event"`
	Data  *domain.TextRecord `json:"data"`
}

// broadcasterCmd is the command interface for the Broadcaster actor.
type broadcasterCmd interface{ isBroadcasterCmd() }

type baseBroadcasterCmd struct{}

func (baseBroadcasterCmd) isBroadcasterCmd() {}

type registerCmd struct {
	baseBroadcasterCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseBroadcasterCmd
	connection *websocket.Conn
}

type broadcastCmd struct {
	baseBroadcasterCmd
	data []byte
}

type clientCountCmd struct {
	baseBroadcasterCmd
	replyChannel chan int
}

type stopCmd struct {
	baseBroadcasterCmd
}

// Broadcaster pushes each persisted record to every live viewer connection.
// All access to the connection set happens on the actor goroutine, so
// registration, removal, and delivery never race. Commands are processed in
// arrival order, which preserves the order records were enqueued in.
type Broadcaster struct {
	cmdCh          chan broadcasterCmd
	clock          clockwork.Clock
	clients        map[*websocket.Conn]*clientWriter
	maxConnections int
	done           chan struct{}
	stopTimeout    time.Duration
}

// NewBroadcaster creates a broadcaster and starts its actor goroutine.
// maxConnections caps the live set to prevent resource exhaustion.
func NewBroadcaster(clock clockwork.Clock, maxConnections int) *Broadcaster {
	b := &Broadcaster{
		cmdCh:          make(chan broadcasterCmd, commandChanSize),
		clock:          clock,
		clients:        make(map[*websocket.Conn]*clientWriter),
		maxConnections: maxConnections,
		done:           make(chan struct{}),
		stopTimeout:    stopTimeout,
	}
	go b.run()
	return b
}

// Register adds a viewer connection to the live set. Returns an error if the
// connection cap is reached; the connection is closed in that case.
func (b *Broadcaster) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	b.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a viewer connection. No further pushes are attempted on
// it once the command is processed.
func (b *Broadcaster) Unregister(conn *websocket.Conn) {
	b.cmdCh <- unregisterCmd{connection: conn}
}

// Broadcast enqueues a persisted record for delivery to every connection that
// is live when the command is processed. Delivery is fire-and-forget per
// connection; a slow or dead viewer never blocks the others.
func (b *Broadcaster) Broadcast(record *domain.TextRecord) {
	data, err := json.Marshal(pushEvent{Event: EventNewText, Data: record})
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "error", err)
		return
	}
	b.cmdCh <- broadcastCmd{data: data}
}

// ClientCount returns the number of live connections, or -1 on timeout.
func (b *Broadcaster) ClientCount() int {
	replyCh := make(chan int, 1)
	b.cmdCh <- clientCountCmd{replyChannel: replyCh}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("ClientCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts down the broadcaster, closing all viewer connections.
// Blocks until the actor goroutine has exited or the timeout is reached.
func (b *Broadcaster) Stop() {
	b.cmdCh <- stopCmd{}

	timeout := b.clock.NewTimer(b.stopTimeout)
	defer timeout.Stop()

	select {
	case <-b.done:
		slog.Info("Broadcaster stopped gracefully")
	case <-timeout.Chan():
		slog.Warn("Broadcaster stop timeout exceeded, forcing exit", "timeout", b.stopTimeout)
		close(b.done)
	}
}

func (b *Broadcaster) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Broadcaster panic recovered", "panic", r)
			b.closeAllClients("broadcaster panic")
		}
	}()
	defer close(b.done)

	depthTicker := b.clock.NewTicker(1 * time.Second)
	defer depthTicker.Stop()

	for {
		select {
		case <-depthTicker.Chan():
			depth := len(b.cmdCh)
			metrics.BroadcasterCommandChannelDepth.Set(float64(depth))
			if depth > cap(b.cmdCh)*4/5 {
				slog.Warn("Command channel near capacity", "depth", depth, "capacity", cap(b.cmdCh))
			}

		case cmd := <-b.cmdCh:
			switch c := cmd.(type) {
			case registerCmd:
				b.handleRegister(c)
			case unregisterCmd:
				b.handleUnregister(c.connection)
			case broadcastCmd:
				b.handleBroadcast(c.data)
			case clientCountCmd:
				c.replyChannel <- len(b.clients)
			case stopCmd:
				b.handleStop()
				return
			default:
				slog.Warn("Broadcaster received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}
		}
	}
}

func (b *Broadcaster) handleRegister(c registerCmd) {
	if len(b.clients) >= b.maxConnections {
		slog.Warn("Rejecting viewer: max connections reached", "max_connections", b.maxConnections)
		metrics.ConnectionsRejectedTotal.Inc()
		c.connection.Close()
		c.errorChannel <- fmt.Errorf("max connections (%d) reached", b.maxConnections)
		return
	}

	cw := newClientWriter(c.connection, b.clock)
	b.clients[c.connection] = cw

	metrics.ActiveConnections.Set(float64(len(b.clients)))

	slog.Debug("Viewer registered", "total_clients", len(b.clients))
	c.errorChannel <- nil
}

func (b *Broadcaster) handleUnregister(conn *websocket.Conn) {
	cw, exists := b.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(b.clients, conn)

	metrics.ActiveConnections.Set(float64(len(b.clients)))
	slog.Debug("Viewer unregistered", "remaining_clients", len(b.clients))
}

func (b *Broadcaster) handleBroadcast(data []byte) {
	var slow []*websocket.Conn
	for conn, cw := range b.clients {
		select {
		case cw.sendChannel <- data:
			metrics.BroadcastsSentTotal.Inc()
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow viewer")
		metrics.SlowClientsEvictedTotal.Inc()
		b.handleUnregister(conn)
	}
}

func (b *Broadcaster) handleStop() {
	slog.Info("Broadcaster shutting down", "clients", len(b.clients))
	b.closeAllClients("Server shutting down")
	slog.Info("Broadcaster shutdown complete")
}

// closeAllClients closes all viewer connections with the given reason.
// Used during panic recovery and graceful shutdown.
func (b *Broadcaster) closeAllClients(reason string) {
	for conn, cw := range b.clients {
		cw.stopGraceful(reason)
		delete(b.clients, conn)
	}
	metrics.ActiveConnections.Set(0)
}
