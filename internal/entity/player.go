package entity

type Player struct {
	ConnectionID string `json:"id"`
	Name         string `json:"name"`
	ExternalID   string `json:"playerId"`
	Online       bool   `json:"online"`
	Typing       bool   `json:"typing"`
}

func (that *Player) Summary() PlayerSummary {
	return PlayerSummary{Name: that.Name, PlayerID: that.ExternalID}
}
