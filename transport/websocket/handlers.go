package websocket

import "context"

func (that *Server) handleSetUserID(ctx context.Context, connID string, message *Message) error {
	var payload setUserIDPayload
	if err := decodePayload(message, &payload); err != nil {
		return err
	}

	that.game.SetUserID(ctx, connID, payload.UserID)

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, connID string, message *Message) error {
	var payload joinRoomPayload
	if err := decodePayload(message, &payload); err != nil {
		return err
	}

	return that.game.JoinRoom(ctx, connID, payload.RoomID, payload.PlayerName, payload.PlayerID)
}

func (that *Server) handleTyping(ctx context.Context, connID string, message *Message) error {
	var payload typingPayload
	if err := decodePayload(message, &payload); err != nil {
		return err
	}

	return that.game.Typing(ctx, connID, payload.RoomID, payload.IsTyping, payload.PlayerName)
}

func (that *Server) handleMakeMove(ctx context.Context, connID string, message *Message) error {
	var payload makeMovePayload
	if err := decodePayload(message, &payload); err != nil {
		return err
	}

	return that.game.MakeMove(ctx, connID, payload.RoomID, *payload.Index)
}

func (that *Server) handleResetBoard(ctx context.Context, connID string, message *Message) error {
	var payload roomPayload
	if err := decodePayload(message, &payload); err != nil {
		return err
	}

	return that.game.ResetBoard(ctx, connID, payload.RoomID)
}
