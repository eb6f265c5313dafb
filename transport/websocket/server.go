package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connectn-backend/internal/metrics"
)

var ErrUnknownAction = errors.New("unknown action")

type gameUseCase interface {
	SetUserID(ctx context.Context, connID, userID string)
	JoinRoom(ctx context.Context, connID, roomID, name, externalID string) error
	Typing(ctx context.Context, connID, roomID string, typing bool, name string) error
	MakeMove(ctx context.Context, connID, roomID string, index int) error
	ResetBoard(ctx context.Context, connID, roomID string) error
	Disconnect(ctx context.Context, connID string)
}

type Server struct {
	logger  *slog.Logger
	hub     *Hub
	game    gameUseCase
	metrics *metrics.Metrics

	upgrader websocket.Upgrader
	handlers map[string]func(ctx context.Context, connID string, message *Message) error
}

func New(logger *slog.Logger, hub *Hub, game gameUseCase, serverMetrics *metrics.Metrics) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		hub:     hub,
		game:    game,
		metrics: serverMetrics,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		handlers: make(map[string]func(context.Context, string, *Message) error),
	}

	server.handlers["setUserId"] = server.handleSetUserID
	server.handlers["joinRoom"] = server.handleJoinRoom
	server.handlers["typing"] = server.handleTyping
	server.handlers["makeMove"] = server.handleMakeMove
	server.handlers["newGame"] = server.handleResetBoard
	server.handlers["resetBoard"] = server.handleResetBoard

	return server
}

// Handler - the /ws endpoint. Connections live until the client leaves, ctx is passed to every handler.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := NewConn(that.logger, uuid.New().String(), ws, that.hub, that)
	log.Info("WebSocket connection established", "connection", conn.ID())

	conn.Run(ctx)

	log.Info("WebSocket connection closed", "connection", conn.ID())
}

// HandleMessage - decodes one frame and routes it to its action handler.
func (that *Server) HandleMessage(ctx context.Context, connID string, data []byte) {
	log := that.logger.With("method", "HandleMessage", "connection", connID)

	started := time.Now()
	defer func() { that.metrics.ObserveMessageLatency(time.Since(started)) }()

	message, err := decode(data)
	if err != nil {
		log.Warn("failed to decode message", "error", err)
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("failed to route message", "action", message.Action, "error", ErrUnknownAction)
		return
	}

	if err = handler(ctx, connID, message); err != nil {
		if errors.Is(err, ErrMalformedMessage) {
			log.Warn("rejected message", "action", message.Action, "error", err)
			return
		}

		log.Debug("message ignored", "action", message.Action, "error", err)
	}
}

// Disconnect - the hub has already forgotten the connection, so nothing is sent back to it.
func (that *Server) Disconnect(ctx context.Context, connID string) {
	that.game.Disconnect(ctx, connID)
}
