package room

import "github.com/IdrisKulubi/spark-and-tell/internal/game"

// Synchronous facade over the actor inbox: each call posts a message with
// a reply channel and waits for the answer. Every method is safe once the
// room has shut down; calls then fail with ErrRoomInactive instead of
// blocking.

// subscriberBuffer bounds how far a listener may lag before being dropped.
const subscriberBuffer = 16

func (r *Room) send(m msg) bool {
	select {
	case r.inbox <- m:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// Done is closed when the room has been torn down.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Join fills the guest slot and returns a full snapshot for the joining
// client, which holds no prior state to fold events into.
func (r *Room) Join(guest game.Player) (game.MultiplayerState, error) {
	reply := make(chan joinReply, 1)
	if !r.send(joinMsg{guest: guest, reply: reply}) {
		return game.MultiplayerState{}, ErrRoomInactive
	}
	select {
	case res := <-reply:
		return res.snapshot, res.err
	case <-r.ctx.Done():
		return game.MultiplayerState{}, ErrRoomInactive
	}
}

// Leave removes the player. Reports whether the host left, which ends the
// room. Leaving a room that is already gone is success, not an error.
func (r *Room) Leave(playerID string) bool {
	reply := make(chan bool, 1)
	if !r.send(leaveMsg{playerID: playerID, reply: reply}) {
		return false
	}
	select {
	case hostLeft := <-reply:
		return hostLeft
	case <-r.ctx.Done():
		return false
	}
}

func (r *Room) Start(hostID string, settings game.GameSettings) error {
	reply := make(chan error, 1)
	return r.action(startMsg{hostID: hostID, settings: settings, reply: reply}, reply)
}

func (r *Room) Roll(playerID string, category game.Category) error {
	reply := make(chan error, 1)
	return r.action(rollMsg{playerID: playerID, category: category, reply: reply}, reply)
}

func (r *Room) CompleteAnswer(playerID string) error {
	reply := make(chan error, 1)
	return r.action(completeAnswerMsg{playerID: playerID, reply: reply}, reply)
}

func (r *Room) AwardSparks(awardedBy string, sparkTypes []game.SparkType, awardedTo string) error {
	reply := make(chan error, 1)
	return r.action(awardMsg{awardedBy: awardedBy, sparkTypes: sparkTypes, awardedTo: awardedTo, reply: reply}, reply)
}

func (r *Room) UsePowerUp(playerID string, kind game.PowerUpType) error {
	reply := make(chan error, 1)
	return r.action(powerUpMsg{playerID: playerID, kind: kind, reply: reply}, reply)
}

func (r *Room) NextTurn(playerID string) error {
	reply := make(chan error, 1)
	return r.action(nextTurnMsg{playerID: playerID, reply: reply}, reply)
}

func (r *Room) Reset(hostID string) error {
	reply := make(chan error, 1)
	return r.action(resetMsg{hostID: hostID, reply: reply}, reply)
}

func (r *Room) action(m msg, reply chan error) error {
	if !r.send(m) {
		return ErrRoomInactive
	}
	select {
	case err := <-reply:
		return err
	case <-r.ctx.Done():
		return ErrRoomInactive
	}
}

// Snapshot returns the current state, used for cold starts and resyncs.
func (r *Room) Snapshot() (game.MultiplayerState, error) {
	reply := make(chan game.MultiplayerState, 1)
	if !r.send(snapshotMsg{reply: reply}) {
		return game.MultiplayerState{}, ErrRoomInactive
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-r.ctx.Done():
		return game.MultiplayerState{}, ErrRoomInactive
	}
}

// Subscribe attaches a listener that receives every event published from
// now on; there is no backlog replay. The channel is closed on
// Unsubscribe, on room teardown, or if the listener falls too far behind.
func (r *Room) Subscribe(id string) (<-chan game.Event, error) {
	ch := make(chan game.Event, subscriberBuffer)
	if !r.send(subscribeMsg{id: id, outbox: ch}) {
		return nil, ErrRoomInactive
	}
	return ch, nil
}

// Unsubscribe detaches a listener. Idempotent and safe after teardown.
func (r *Room) Unsubscribe(id string) {
	r.send(unsubscribeMsg{id: id})
}

// Shutdown tears the room down, closing every subscriber channel.
func (r *Room) Shutdown() {
	r.send(shutdownMsg{})
}
