package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/connectn-backend/internal/apperror"
	"github.com/rocketscienceinc/connectn-backend/internal/entity"
	"github.com/rocketscienceinc/connectn-backend/internal/repository"
)

type gameReader interface {
	RoomSnapshot(roomID string) (*entity.RoomSnapshot, error)
	Stats() repository.Stats
	Presence() []entity.PresenceEntry
}

type connectionCounter interface {
	ConnectionCount() int
}

type handlers struct {
	logger *slog.Logger
	game   gameReader
	conns  connectionCounter
}

type StatsResponse struct {
	Rooms       int `json:"rooms"`
	Players     int `json:"players"`
	Connections int `json:"connections"`
	Online      int `json:"online"`
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (that *handlers) StatsHandler(w http.ResponseWriter, _ *http.Request) {
	stats := that.game.Stats()

	online := 0
	for _, entry := range that.game.Presence() {
		if entry.Online {
			online++
		}
	}

	that.writeJSON(w, http.StatusOK, StatsResponse{
		Rooms:       stats.Rooms,
		Players:     stats.Players,
		Connections: that.conns.ConnectionCount(),
		Online:      online,
	})
}

func (that *handlers) RoomHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.game.RoomSnapshot(r.PathValue("id"))
	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}

	if err != nil {
		that.logger.Error("failed to get room", "room", r.PathValue("id"), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
