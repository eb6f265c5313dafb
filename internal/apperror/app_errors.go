package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")

	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrPlayerNotSeated = errors.New("player is not seated in room")
	ErrAlreadySeated   = errors.New("player is already seated")
	ErrNameTaken       = errors.New("player name is already taken in room")

	ErrInvalidRules = errors.New("invalid game rules")
)
