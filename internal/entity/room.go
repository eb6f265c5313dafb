package entity

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/rocketscienceinc/connectn-backend/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"

	MaxPlayers = 2

	pointsWin  = 3
	pointsDraw = 1
)

// Room - a two-seat match. Transitions are pure: they mutate the room and return the events
// to publish, the caller must hold the room lock.
type Room struct {
	mu sync.Mutex

	ID            string
	Rules         Rules
	Players       []*Player
	Board         Board
	CurrentPlayer string
	Points        map[string]int
	Status        string
	UpdatedAt     time.Time

	coin    func() bool
	evicted bool
}

// NewRoom - coin picks the starting seat: true means seat 0.
func NewRoom(id string, rules Rules, coin func() bool) *Room {
	return &Room{
		ID:     id,
		Rules:  rules,
		Board:  NewBoard(rules),
		Points: map[string]int{},
		Status: StatusWaiting,
		coin:   coin,
	}
}

func (that *Room) Lock()         { that.mu.Lock() }
func (that *Room) Unlock()       { that.mu.Unlock() }
func (that *Room) TryLock() bool { return that.mu.TryLock() }

// MarkEvicted - caller must hold the lock.
func (that *Room) MarkEvicted()    { that.evicted = true }
func (that *Room) IsEvicted() bool { return that.evicted }

func (that *Room) Touch(now time.Time) { that.UpdatedAt = now }

func (that *Room) IsEmpty() bool { return len(that.Players) == 0 }

func (that *Room) IsOngoing() bool { return that.Status == StatusOngoing }

// Seat - returns the seat index of the connection.
func (that *Room) Seat(connID string) (int, bool) {
	for i, player := range that.Players {
		if player.ConnectionID == connID {
			return i, true
		}
	}

	return -1, false
}

func (that *Room) MarkFor(connID string) Mark {
	if seat, ok := that.Seat(connID); ok && seat == 0 {
		return MarkX
	}

	return MarkO
}

func (that *Room) CurrentPlayerName() string {
	if seat, ok := that.Seat(that.CurrentPlayer); ok {
		return that.Players[seat].Name
	}

	return ""
}

func (that *Room) Join(connID, name, externalID string) ([]Event, error) {
	if _, ok := that.Seat(connID); ok {
		return nil, apperror.ErrAlreadySeated
	}

	if len(that.Players) >= MaxPlayers {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.ID)
	}

	for _, player := range that.Players {
		if player.Name == name {
			return nil, fmt.Errorf("%w: %s", apperror.ErrNameTaken, name)
		}
	}

	if that.IsEmpty() {
		that.reseed()
	}

	that.Players = append(that.Players, &Player{
		ConnectionID: connID,
		Name:         name,
		ExternalID:   externalID,
		Online:       true,
	})
	that.Points[name] = 0

	events := []Event{toRoom(that.ID, ActionPlayerJoined, PlayerJoinedPayload{PlayerName: name})}

	if len(that.Players) == MaxPlayers {
		events = append(events, that.start())
	}

	return events, nil
}

// start - Waiting -> Ongoing, the first player is drawn fresh every time.
func (that *Room) start() Event {
	that.resetPoints()

	if that.coin() {
		that.CurrentPlayer = that.Players[0].ConnectionID
	} else {
		that.CurrentPlayer = that.Players[1].ConnectionID
	}

	that.Status = StatusOngoing

	return toRoom(that.ID, ActionStartGame, that.boardPayload())
}

func (that *Room) Move(connID string, index int) ([]Event, error) {
	if _, ok := that.Seat(connID); !ok {
		return nil, apperror.ErrPlayerNotSeated
	}

	if len(that.Players) < MaxPlayers {
		return nil, apperror.ErrGameIsNotStarted
	}

	if that.CurrentPlayer != connID {
		return nil, apperror.ErrNotYourTurn
	}

	if Outcome(that.Board, that.Rules).IsTerminal() {
		return nil, apperror.ErrGameFinished
	}

	board, err := ApplyMove(that.Board, index, that.MarkFor(connID))
	if err != nil {
		return nil, fmt.Errorf("invalid move: %w", err)
	}

	that.Board = board

	switch result := Outcome(that.Board, that.Rules); result.Kind {
	case ResultWin:
		that.Points[that.seatOf(result.Mark).Name] += pointsWin
		return that.finish(GameOverPayload{Winner: result.Mark}), nil
	case ResultDraw:
		for _, player := range that.Players {
			that.Points[player.Name] += pointsDraw
		}
		return that.finish(GameOverPayload{Draw: true}), nil
	default:
		that.CurrentPlayer = that.opponentOf(connID).ConnectionID

		return []Event{
			toRoom(that.ID, ActionUpdateBoard, that.boardPayload()),
			toConnection(connID, ActionWaitingForTurn, EmptyPayload{}),
		}, nil
	}
}

// finish - reports the round and resets the room for the next one.
func (that *Room) finish(gameOver GameOverPayload) []Event {
	that.Status = StatusFinished

	gameOver.Points = maps.Clone(that.Points)
	gameOver.Players = that.summaries()

	events := make([]Event, 0, 2*MaxPlayers+1)
	for _, player := range that.Players {
		events = append(events, toConnection(player.ConnectionID, ActionUpdatePoints, PointsPayload{Points: maps.Clone(that.Points)}))
	}
	events = append(events, toRoom(that.ID, ActionGameOver, gameOver))

	return append(events, that.Reset()...)
}

// Reset - zeroes points, clears the board and passes the first move to the other seat.
// With a single seat nobody is to move. Players are never removed.
func (that *Room) Reset() []Event {
	if that.IsEmpty() {
		return nil
	}

	that.resetPoints()
	that.Board = NewBoard(that.Rules)

	if len(that.Players) == MaxPlayers {
		if that.CurrentPlayer == that.Players[0].ConnectionID {
			that.CurrentPlayer = that.Players[1].ConnectionID
		} else {
			that.CurrentPlayer = that.Players[0].ConnectionID
		}
		that.Status = StatusOngoing
	} else {
		that.CurrentPlayer = ""
		that.Status = StatusWaiting
	}

	events := make([]Event, 0, len(that.Players))
	for _, player := range that.Players {
		events = append(events, toConnection(player.ConnectionID, ActionUpdateBoard, that.boardPayload()))
	}

	return events
}

func (that *Room) SetTyping(connID string, typing bool, name string) ([]Event, error) {
	seat, ok := that.Seat(connID)
	if !ok {
		return nil, apperror.ErrPlayerNotSeated
	}

	that.Players[seat].Typing = typing

	return []Event{
		toRoomExcept(that.ID, connID, ActionOpponentTyping, TypingPayload{IsTyping: typing, PlayerName: name}),
	}, nil
}

// Leave - removes the seat of a disconnected connection.
func (that *Room) Leave(connID string) (*Player, []Event, error) {
	seat, ok := that.Seat(connID)
	if !ok {
		return nil, nil, apperror.ErrPlayerNotSeated
	}

	leaving := that.Players[seat]
	leaving.Online = false
	leaving.Typing = false

	that.Players = append(that.Players[:seat:seat], that.Players[seat+1:]...)
	delete(that.Points, leaving.Name)

	events := []Event{
		toRoom(that.ID, ActionPlayerLeft, PlayerLeftPayload{PlayerName: leaving.Name, Online: leaving.Online}),
	}

	switch len(that.Players) {
	case 1:
		remaining := that.Players[0].ConnectionID
		events = append(events, toConnection(remaining, ActionOpponentTyping, TypingPayload{IsTyping: false, PlayerName: leaving.Name}))
		events = append(events, that.Reset()...)
	case 0:
		that.CurrentPlayer = ""
		that.Status = StatusWaiting
	}

	return leaving, events, nil
}

func (that *Room) Snapshot() RoomSnapshot {
	players := make([]Player, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, *player)
	}

	board := make(Board, len(that.Board))
	copy(board, that.Board)

	return RoomSnapshot{
		ID:                that.ID,
		Rules:             that.Rules,
		Status:            that.Status,
		Board:             board,
		CurrentPlayer:     that.CurrentPlayer,
		CurrentPlayerName: that.CurrentPlayerName(),
		Points:            maps.Clone(that.Points),
		Players:           players,
		UpdatedAt:         that.UpdatedAt,
	}
}

func (that *Room) reseed() {
	that.Board = NewBoard(that.Rules)
	that.Points = map[string]int{}
	that.CurrentPlayer = ""
	that.Status = StatusWaiting
}

func (that *Room) resetPoints() {
	that.Points = make(map[string]int, len(that.Players))
	for _, player := range that.Players {
		that.Points[player.Name] = 0
	}
}

func (that *Room) boardPayload() BoardPayload {
	board := make(Board, len(that.Board))
	copy(board, that.Board)

	return BoardPayload{
		Board:             board,
		CurrentPlayer:     that.CurrentPlayer,
		CurrentPlayerName: that.CurrentPlayerName(),
	}
}

func (that *Room) summaries() []PlayerSummary {
	summaries := make([]PlayerSummary, 0, len(that.Players))
	for _, player := range that.Players {
		summaries = append(summaries, player.Summary())
	}

	return summaries
}

func (that *Room) seatOf(mark Mark) *Player {
	if mark == MarkX {
		return that.Players[0]
	}

	return that.Players[1]
}

func (that *Room) opponentOf(connID string) *Player {
	if that.Players[0].ConnectionID == connID {
		return that.Players[1]
	}

	return that.Players[0]
}

// RoomSnapshot - a detached copy of a room for storage and inspection.
type RoomSnapshot struct {
	ID                string         `json:"id"`
	Rules             Rules          `json:"rules"`
	Status            string         `json:"status"`
	Board             Board          `json:"board"`
	CurrentPlayer     string         `json:"currentPlayer"`
	CurrentPlayerName string         `json:"currentPlayerName"`
	Points            map[string]int `json:"points"`
	Players           []Player       `json:"players"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}
