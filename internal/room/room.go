package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/IdrisKulubi/spark-and-tell/internal/game"
)

type msg interface{ isRoomMsg() }

type joinMsg struct {
	guest game.Player
	reply chan joinReply
}

type joinReply struct {
	snapshot game.MultiplayerState
	err      error
}

type leaveMsg struct {
	playerID string
	reply    chan bool // true when the host left and the room is done
}

type startMsg struct {
	hostID   string
	settings game.GameSettings
	reply    chan error
}

type rollMsg struct {
	playerID string
	category game.Category
	reply    chan error
}

type completeAnswerMsg struct {
	playerID string
	reply    chan error
}

type awardMsg struct {
	awardedBy  string
	sparkTypes []game.SparkType
	awardedTo  string
	reply      chan error
}

type powerUpMsg struct {
	playerID string
	kind     game.PowerUpType
	reply    chan error
}

type nextTurnMsg struct {
	playerID string
	reply    chan error
}

type resetMsg struct {
	hostID string
	reply  chan error
}

type snapshotMsg struct {
	reply chan game.MultiplayerState
}

type subscribeMsg struct {
	id     string
	outbox chan game.Event
}

type unsubscribeMsg struct{ id string }

type shutdownMsg struct{}

func (joinMsg) isRoomMsg()           {}
func (leaveMsg) isRoomMsg()          {}
func (startMsg) isRoomMsg()          {}
func (rollMsg) isRoomMsg()           {}
func (completeAnswerMsg) isRoomMsg() {}
func (awardMsg) isRoomMsg()          {}
func (powerUpMsg) isRoomMsg()        {}
func (nextTurnMsg) isRoomMsg()       {}
func (resetMsg) isRoomMsg()          {}
func (snapshotMsg) isRoomMsg()       {}
func (subscribeMsg) isRoomMsg()      {}
func (unsubscribeMsg) isRoomMsg()    {}
func (shutdownMsg) isRoomMsg()       {}

// Room is one multiplayer session: an actor owning the authoritative
// GameState, the two player slots and the subscriber list. All mutations
// run on the loop goroutine, so a state change and the event it publishes
// are atomic with respect to every other action on the room.
type Room struct {
	ID     string
	Code   string
	HostID string

	inbox  chan msg
	ctx    context.Context
	cancel context.CancelFunc

	// Loop-owned. Never touched outside loop().
	catalog   *game.Catalog
	log       *zap.Logger
	host      *game.Player
	guest     *game.Player
	state     game.GameState
	active    bool
	createdAt time.Time
	updatedAt time.Time
	subs      map[string]chan game.Event
}

func New(parent context.Context, id, code string, host game.Player, catalog *game.Catalog, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)

	state := game.NewGameState(game.PhaseSetup)
	state.Settings.Player1Name = host.Name

	now := time.Now()
	r := &Room{
		ID:        id,
		Code:      code,
		HostID:    host.ID,
		inbox:     make(chan msg, 64),
		ctx:       ctx,
		cancel:    cancel,
		catalog:   catalog,
		log:       log.With(zap.String("room_id", id), zap.String("room_code", code)),
		host:      &host,
		state:     state,
		active:    true,
		createdAt: now,
		updatedAt: now,
		subs:      make(map[string]chan game.Event),
	}
	go r.loop()
	return r
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.teardown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case joinMsg:
				msg.reply <- r.handleJoin(msg.guest)
			case leaveMsg:
				hostLeft := r.handleLeave(msg.playerID)
				msg.reply <- hostLeft
				if hostLeft {
					r.teardown()
					return
				}
			case startMsg:
				msg.reply <- r.handleStart(msg.hostID, msg.settings)
			case rollMsg:
				msg.reply <- r.handleRoll(msg.playerID, msg.category)
			case completeAnswerMsg:
				msg.reply <- r.handleCompleteAnswer(msg.playerID)
			case awardMsg:
				msg.reply <- r.handleAward(msg.awardedBy, msg.sparkTypes, msg.awardedTo)
			case powerUpMsg:
				msg.reply <- r.handlePowerUp(msg.playerID, msg.kind)
			case nextTurnMsg:
				msg.reply <- r.handleNextTurn(msg.playerID)
			case resetMsg:
				msg.reply <- r.handleReset(msg.hostID)
			case snapshotMsg:
				msg.reply <- r.snapshot()
			case subscribeMsg:
				r.subs[msg.id] = msg.outbox
			case unsubscribeMsg:
				if ch, ok := r.subs[msg.id]; ok {
					delete(r.subs, msg.id)
					close(ch)
				}
			case shutdownMsg:
				r.teardown()
				return
			}
		}
	}
}

func (r *Room) teardown() {
	r.active = false
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
	r.cancel()
}

// publish fans the event out to every subscriber in order. A subscriber
// whose channel is full is dropped, matching the no-backlog contract: a
// client that cannot keep up must resync via the state snapshot.
func (r *Room) publish(ev game.Event) {
	r.updatedAt = time.Now()
	for id, ch := range r.subs {
		select {
		case ch <- ev:
		default:
			close(ch)
			delete(r.subs, id)
			r.log.Warn("dropped slow subscriber", zap.String("subscriber", id))
		}
	}
}

func (r *Room) isMember(playerID string) bool {
	if playerID == r.HostID {
		return true
	}
	return r.guest != nil && r.guest.ID == playerID
}

func (r *Room) snapshot() game.MultiplayerState {
	snap := game.MultiplayerState{
		GameState:        r.state.Clone(),
		RoomID:           r.ID,
		RoomCode:         r.Code,
		WaitingForPlayer: r.guest == nil,
	}
	if r.host != nil {
		h := *r.host
		snap.Host = &h
	}
	if r.guest != nil {
		g := *r.guest
		snap.Guest = &g
	}
	return snap
}

func (r *Room) handleJoin(guest game.Player) joinReply {
	if !r.active {
		return joinReply{err: ErrRoomInactive}
	}
	if r.guest != nil {
		return joinReply{err: ErrRoomFull}
	}

	r.guest = &guest
	r.state.Settings.Player2Name = guest.Name
	r.publish(game.Event{Type: game.EvtPlayerJoined, Player: &guest})
	r.log.Info("guest joined", zap.String("player_id", guest.ID))

	return joinReply{snapshot: r.snapshot()}
}

func (r *Room) handleLeave(playerID string) bool {
	switch {
	case playerID == r.HostID:
		// Host leaving ends the session for both players.
		r.active = false
		r.publish(game.Event{Type: game.EvtPlayerLeft, PlayerID: playerID})
		r.log.Info("host left, closing room")
		return true

	case r.guest != nil && r.guest.ID == playerID:
		r.guest = nil
		r.state.Settings.Player2Name = ""
		r.state.GamePhase = game.PhaseSetup
		r.publish(game.Event{Type: game.EvtPlayerLeft, PlayerID: playerID})
		r.log.Info("guest left", zap.String("player_id", playerID))
	}
	// Unknown players leaving is a no-op: the desired end state holds.
	return false
}

func (r *Room) handleStart(hostID string, settings game.GameSettings) error {
	if hostID != r.HostID {
		return ErrNotHost
	}
	if r.guest == nil {
		return ErrNeedsSecondPlayer
	}
	if len(settings.SelectedCategories) == 0 {
		// A game with no categories would end on the first roll.
		return game.ErrNoCategories
	}

	// Display names come from the player slots, not the caller.
	settings.Player1Name = r.host.Name
	settings.Player2Name = r.guest.Name

	r.state.Settings = settings
	r.state.TotalQuestions = game.QuestionLimit(settings.GameLength)
	r.state.GamePhase = game.PhasePlaying
	r.publish(game.Event{Type: game.EvtGameStarted, Settings: &settings})
	r.log.Info("game started",
		zap.String("game_length", string(settings.GameLength)),
		zap.Int("total_questions", r.state.TotalQuestions))
	return nil
}

func (r *Room) handleRoll(playerID string, category game.Category) error {
	if !r.isMember(playerID) {
		return ErrNotAuthorized
	}

	r.state.CurrentCategory = category
	r.state.LastCategory = category
	r.publish(game.Event{Type: game.EvtDiceRolled, Category: category, PlayerID: playerID})

	// The room resolves the category to a question and broadcasts it, so
	// every client sees the same draw instead of re-rolling locally.
	q, ok := r.catalog.Select(category, r.state.Settings, r.state.QuestionsAnswered)
	if !ok {
		// Catalog exhausted: nothing left to ask, end the game.
		r.log.Info("question catalog exhausted, ending game")
		r.endGame()
		return nil
	}

	r.state.CurrentQuestion = &q
	r.state.QuestionsAnswered = append(r.state.QuestionsAnswered, q.ID)
	if r.state.Settings.EnableTimer {
		r.state.TimerStartedAt = time.Now().UnixMilli()
	}
	r.publish(game.Event{Type: game.EvtQuestionSelected, Question: &q})
	return nil
}

func (r *Room) handleCompleteAnswer(playerID string) error {
	if !r.isMember(playerID) {
		return ErrNotAuthorized
	}
	r.state.GamePhase = game.PhaseAwardingSparks
	r.publish(game.Event{Type: game.EvtAnswerCompleted, PlayerID: playerID})
	return nil
}

func (r *Room) handleAward(awardedBy string, sparkTypes []game.SparkType, awardedTo string) error {
	if !r.isMember(awardedBy) {
		return ErrNotAuthorized
	}

	points := game.SparkPoints(sparkTypes)
	if awardedTo == r.HostID {
		r.state.Player1Sparks += points
	} else {
		r.state.Player2Sparks += points
	}
	r.publish(game.Event{
		Type:       game.EvtSparksAwarded,
		SparkTypes: sparkTypes,
		AwardedBy:  awardedBy,
		AwardedTo:  awardedTo,
	})
	return nil
}

func (r *Room) handlePowerUp(playerID string, kind game.PowerUpType) error {
	if !r.isMember(playerID) {
		return ErrNotAuthorized
	}
	if r.state.GamePhase == game.PhaseEnded {
		return game.ErrGameOver
	}

	player := 2
	if playerID == r.HostID {
		player = 1
	}
	if r.state.PowerUpsUsed[player][kind] >= game.PowerUpCap(kind) {
		return game.ErrPowerUpExhausted
	}
	r.state.PowerUpsUsed[player][kind]++
	r.publish(game.Event{Type: game.EvtPowerUpUsed, PowerUp: kind, PlayerID: playerID})

	switch kind {
	case game.PowerUpSkip:
		r.advanceTurn()
	case game.PowerUpReRoll:
		r.state.CurrentCategory = 0
		r.state.CurrentQuestion = nil
	case game.PowerUpReverse:
		r.state.CurrentTurn = otherTurn(r.state.CurrentTurn)
	}
	return nil
}

func (r *Room) handleNextTurn(playerID string) error {
	if !r.isMember(playerID) {
		return ErrNotAuthorized
	}
	if r.state.GamePhase == game.PhaseEnded {
		// A duplicated request after the final turn must not count past
		// the target or re-publish GAME_ENDED.
		return game.ErrGameOver
	}
	r.advanceTurn()
	return nil
}

// advanceTurn flips the turn, counts the completed question and publishes
// TURN_CHANGED, plus GAME_ENDED once the session target is reached.
// Callers check the phase first; the count never exceeds the target.
func (r *Room) advanceTurn() {
	r.state.CurrentTurn = otherTurn(r.state.CurrentTurn)
	r.state.QuestionCount++
	r.state.CurrentQuestion = nil
	r.state.CurrentCategory = 0
	r.state.TimerStartedAt = 0

	done := r.state.QuestionCount >= r.state.TotalQuestions
	if done {
		r.state.GamePhase = game.PhaseEnded
	} else {
		r.state.GamePhase = game.PhasePlaying
	}
	r.publish(game.Event{Type: game.EvtTurnChanged, CurrentTurn: r.state.CurrentTurn})
	if done {
		r.endGameEvent()
	}
}

func (r *Room) endGame() {
	r.state.GamePhase = game.PhaseEnded
	r.endGameEvent()
}

func (r *Room) endGameEvent() {
	r.publish(game.Event{
		Type: game.EvtGameEnded,
		FinalScores: &game.FinalScores{
			Player1: r.state.Player1Sparks,
			Player2: r.state.Player2Sparks,
		},
	})
}

func (r *Room) handleReset(hostID string) error {
	if hostID != r.HostID {
		return ErrNotHost
	}
	state := game.NewGameState(game.PhaseSetup)
	state.Settings.Player1Name = r.host.Name
	if r.guest != nil {
		state.Settings.Player2Name = r.guest.Name
	}
	r.state = state
	r.publish(game.Event{Type: game.EvtGameReset})
	r.log.Info("game reset")
	return nil
}

func otherTurn(turn int) int {
	if turn == 1 {
		return 2
	}
	return 1
}
