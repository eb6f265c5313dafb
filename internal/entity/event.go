package entity

// Outbound actions.
const (
	ActionConnectedUsers = "connectedUsers"
	ActionPlayerJoined   = "playerJoined"
	ActionStartGame      = "startGame"
	ActionUpdateBoard    = "updateBoard"
	ActionWaitingForTurn = "waitingForTurn"
	ActionGameOver       = "gameOver"
	ActionUpdatePoints   = "updatePoints"
	ActionOpponentTyping = "opponentTyping"
	ActionPlayerLeft     = "playerLeft"
)

type Target int

const (
	TargetConnection Target = iota
	TargetRoom
	TargetRoomExcept
	TargetAll
)

func (that Target) String() string {
	switch that {
	case TargetConnection:
		return "connection"
	case TargetRoom:
		return "room"
	case TargetRoomExcept:
		return "room-except"
	case TargetAll:
		return "all"
	default:
		return "unknown"
	}
}

// Event is an outbound message produced by a state transition.
// ConnectionID is the recipient for TargetConnection and the excluded sender for TargetRoomExcept.
type Event struct {
	Target       Target
	RoomID       string
	ConnectionID string
	Action       string
	Payload      any
}

func toConnection(connID, action string, payload any) Event {
	return Event{Target: TargetConnection, ConnectionID: connID, Action: action, Payload: payload}
}

func toRoom(roomID, action string, payload any) Event {
	return Event{Target: TargetRoom, RoomID: roomID, Action: action, Payload: payload}
}

func toRoomExcept(roomID, senderID, action string, payload any) Event {
	return Event{Target: TargetRoomExcept, RoomID: roomID, ConnectionID: senderID, Action: action, Payload: payload}
}

func toAll(action string, payload any) Event {
	return Event{Target: TargetAll, Action: action, Payload: payload}
}

type PlayerJoinedPayload struct {
	PlayerName string `json:"playerName"`
}

// BoardPayload is shared by startGame and updateBoard.
type BoardPayload struct {
	Board             Board  `json:"board"`
	CurrentPlayer     string `json:"currentPlayer"`
	CurrentPlayerName string `json:"currentPlayerName"`
}

type PlayerSummary struct {
	Name     string `json:"name"`
	PlayerID string `json:"playerId"`
}

type GameOverPayload struct {
	Winner  Mark            `json:"winner,omitempty"`
	Draw    bool            `json:"draw,omitempty"`
	Points  map[string]int  `json:"points"`
	Players []PlayerSummary `json:"players"`
}

type PointsPayload struct {
	Points map[string]int `json:"points"`
}

type TypingPayload struct {
	IsTyping   bool   `json:"isTyping"`
	PlayerName string `json:"playerName"`
}

type PlayerLeftPayload struct {
	PlayerName string `json:"playerName"`
	Online     bool   `json:"online"`
}

type ConnectedUsersPayload struct {
	Users []PresenceEntry `json:"users"`
}

type EmptyPayload struct{}
