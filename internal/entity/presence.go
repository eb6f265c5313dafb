package entity

// PresenceEntry - global online status of a connection's announced user.
type PresenceEntry struct {
	ConnectionID string `json:"-"`
	UserID       string `json:"userId"`
	Online       bool   `json:"isOnline"`
}

func ConnectedUsers(entries []PresenceEntry) Event {
	return toAll(ActionConnectedUsers, ConnectedUsersPayload{Users: entries})
}
