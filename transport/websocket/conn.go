package websocket

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

var ErrSendBufferFull = errors.New("send buffer is full")

type messageHandler interface {
	HandleMessage(ctx context.Context, connID string, data []byte)
	Disconnect(ctx context.Context, connID string)
}

// Conn - one websocket client. Reads are handled in order on the read pump,
// writes go through the buffered send channel.
type Conn struct {
	id     string
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger *slog.Logger

	hub     *Hub
	handler messageHandler
}

func NewConn(logger *slog.Logger, id string, ws *websocket.Conn, hub *Hub, handler messageHandler) *Conn {
	return &Conn{
		id:      id,
		ws:      ws,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		logger:  logger.With("connection", id),
		hub:     hub,
		handler: handler,
	}
}

func (that *Conn) ID() string { return that.id }

func (that *Conn) Send(data []byte) error {
	select {
	case that.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (that *Conn) Close() error {
	return that.ws.Close()
}

// Run - registers the connection and blocks until the client goes away.
func (that *Conn) Run(ctx context.Context) {
	that.hub.Register(that)
	go that.writePump()
	that.readPump(ctx)
}

func (that *Conn) readPump(ctx context.Context) {
	defer func() {
		that.hub.Unregister(that.id)
		that.handler.Disconnect(ctx, that.id)
		close(that.done)
	}()

	that.ws.SetReadLimit(maxMessageSize)
	_ = that.ws.SetReadDeadline(time.Now().Add(pongWait))
	that.ws.SetPongHandler(func(string) error {
		return that.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.logger.Warn("read error", "error", err)
			}
			return
		}

		that.handler.HandleMessage(ctx, that.id, data)
	}
}

func (that *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.ws.Close()
	}()

	for {
		select {
		case message := <-that.send:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				that.logger.Debug("write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-that.done:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = that.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
