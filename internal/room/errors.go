package room

import "errors"

var ErrRoomNotFound = errors.New("room not found")
var ErrRoomFull = errors.New("room is full")
var ErrRoomInactive = errors.New("room is no longer active")
var ErrNotHost = errors.New("only the host can do that")
var ErrNeedsSecondPlayer = errors.New("need a second player to start")
var ErrNotAuthorized = errors.New("player is not in this room")
