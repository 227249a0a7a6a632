package registry

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/IdrisKulubi/spark-and-tell/internal/game"
	"github.com/IdrisKulubi/spark-and-tell/internal/room"
)

var ErrShuttingDown = errors.New("registry is shutting down")

type CreateRoomResult struct {
	RoomID   string `json:"roomId"`
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type JoinRoomResult struct {
	RoomID   string                `json:"roomId"`
	RoomCode string                `json:"roomCode"`
	PlayerID string                `json:"playerId"`
	State    game.MultiplayerState `json:"gameState"`
}

func (g *Registry) send(m msg) bool {
	select {
	case g.inbox <- m:
		return true
	case <-g.ctx.Done():
		return false
	}
}

// CreateRoom allocates a room, its join code and the host's player id.
func (g *Registry) CreateRoom(hostName string) (CreateRoomResult, error) {
	reply := make(chan createReply, 1)
	if !g.send(createMsg{hostName: hostName, reply: reply}) {
		return CreateRoomResult{}, ErrShuttingDown
	}
	select {
	case res := <-reply:
		if res.err != nil {
			return CreateRoomResult{}, res.err
		}
		return CreateRoomResult{
			RoomID:   res.room.ID,
			RoomCode: res.room.Code,
			PlayerID: res.hostID,
		}, nil
	case <-g.ctx.Done():
		return CreateRoomResult{}, ErrShuttingDown
	}
}

// JoinRoom fills the guest slot of the room with the given code
// (case-insensitive) and returns a full state snapshot for the joiner.
func (g *Registry) JoinRoom(roomCode, guestName string) (JoinRoomResult, error) {
	rm, err := g.roomByCode(roomCode)
	if err != nil {
		return JoinRoomResult{}, err
	}

	guest := game.Player{
		ID:          uuid.NewString(),
		Name:        guestName,
		IsConnected: true,
		JoinedAt:    time.Now(),
	}
	snapshot, err := rm.Join(guest)
	if err != nil {
		return JoinRoomResult{}, err
	}
	g.send(bindSessionMsg{playerID: guest.ID, roomID: rm.ID})

	return JoinRoomResult{
		RoomID:   rm.ID,
		RoomCode: rm.Code,
		PlayerID: guest.ID,
		State:    snapshot,
	}, nil
}

// GetRoomState returns the current snapshot for cold starts and resyncs.
func (g *Registry) GetRoomState(roomID, playerID string) (game.MultiplayerState, error) {
	rm, err := g.authorize(roomID, playerID)
	if err != nil {
		return game.MultiplayerState{}, err
	}
	return rm.Snapshot()
}

// LeaveRoom removes the player. Idempotent: leaving a room that no longer
// exists, or that the player is not in, succeeds silently.
func (g *Registry) LeaveRoom(roomID, playerID string) {
	rm := g.roomByID(roomID)
	if rm == nil {
		g.send(dropSessionMsg{playerID: playerID})
		return
	}
	if rm.Leave(playerID) {
		// Host left: the room is done for both participants.
		g.send(removeRoomMsg{roomID: roomID})
		return
	}
	g.send(dropSessionMsg{playerID: playerID})
}

func (g *Registry) StartGame(roomID, playerID string, settings game.GameSettings) error {
	rm, err := g.authorize(roomID, playerID)
	if err != nil {
		return err
	}
	return rm.Start(playerID, settings)
}

func (g *Registry) RollDice(roomID, playerID string, category game.Category) error {
	rm, err := g.authorize(roomID, playerID)
	if err != nil {
		return err
	}
	return rm.Roll(playerID, category)
}

func (g *Registry) CompleteAnswer(roomID, playerID string) error {
	rm, err := g.authorize(roomID, playerID)
	if err != nil {
		return err
	}
	return rm.CompleteAnswer(playerID)
}

func (g *Registry) AwardSparks(roomID, playerID string, sparkTypes []game.SparkType, awardedTo string) error {
	rm, err := g.authorize(roomID, playerID)
	if err != nil {
		return err
	}
	return rm.AwardSparks(playerID, sparkTypes, awardedTo)
}

func (g *Registry) UsePowerUp(roomID, playerID string, kind game.PowerUpType) error {
	rm, err := g.authorize(roomID, playerID)
	if err != nil {
		return err
	}
	return rm.UsePowerUp(playerID, kind)
}

func (g *Registry) NextTurn(roomID, playerID string) error {
	rm, err := g.authorize(roomID, playerID)
	if err != nil {
		return err
	}
	return rm.NextTurn(playerID)
}

func (g *Registry) ResetGame(roomID, playerID string) error {
	rm, err := g.authorize(roomID, playerID)
	if err != nil {
		return err
	}
	return rm.Reset(playerID)
}

// Subscribe opens a long-lived event stream for a room member. The
// returned cancel func detaches the listener; the channel is also closed
// when the room is torn down.
func (g *Registry) Subscribe(roomID, playerID string) (<-chan game.Event, func(), error) {
	rm, err := g.authorize(roomID, playerID)
	if err != nil {
		return nil, nil, err
	}

	// Suffix allows the same player to resubscribe after a reconnect
	// before the stale subscription is reaped.
	subID := playerID + ":" + uuid.NewString()
	events, err := rm.Subscribe(subID)
	if err != nil {
		return nil, nil, err
	}
	return events, func() { rm.Unsubscribe(subID) }, nil
}

// Shutdown tears down every room and subscription.
func (g *Registry) Shutdown() {
	g.send(shutdownMsg{})
}

func (g *Registry) roomByCode(code string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	if !g.send(lookupByCodeMsg{code: code, reply: reply}) {
		return nil, ErrShuttingDown
	}
	select {
	case rm := <-reply:
		if rm == nil {
			return nil, room.ErrRoomNotFound
		}
		return rm, nil
	case <-g.ctx.Done():
		return nil, ErrShuttingDown
	}
}

func (g *Registry) roomByID(roomID string) *room.Room {
	reply := make(chan *room.Room, 1)
	if !g.send(lookupByIDMsg{roomID: roomID, reply: reply}) {
		return nil
	}
	select {
	case rm := <-reply:
		return rm
	case <-g.ctx.Done():
		return nil
	}
}

// authorize resolves the room and checks the caller's session actually
// maps to it. Stale sessions from a reloaded client surface as
// NotAuthorized or RoomNotFound, never as a crash.
func (g *Registry) authorize(roomID, playerID string) (*room.Room, error) {
	reply := make(chan string, 1)
	if !g.send(sessionMsg{playerID: playerID, reply: reply}) {
		return nil, ErrShuttingDown
	}
	var sessionRoom string
	select {
	case sessionRoom = <-reply:
	case <-g.ctx.Done():
		return nil, ErrShuttingDown
	}
	if sessionRoom != roomID {
		return nil, room.ErrNotAuthorized
	}

	rm := g.roomByID(roomID)
	if rm == nil {
		return nil, room.ErrRoomNotFound
	}
	return rm, nil
}
