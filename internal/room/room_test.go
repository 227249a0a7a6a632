package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/IdrisKulubi/spark-and-tell/internal/game"
)

func testCatalog() *game.Catalog {
	return game.NewCatalog([]game.Question{
		{ID: "ice-a", Category: game.CategoryIcebreaker, Difficulty: 1, Points: 1, Type: game.QuestionStandard},
		{ID: "ice-b", Category: game.CategoryIcebreaker, Difficulty: 2, Points: 2, Type: game.QuestionStandard},
		{ID: "deep-a", Category: game.CategoryDeepDive, Difficulty: 3, Points: 3, Type: game.QuestionStandard},
		{ID: "story-a", Category: game.CategoryStoryTime, Difficulty: 2, Points: 2, Type: game.QuestionStandard},
	})
}

func hostPlayer() game.Player {
	return game.Player{ID: "host-1", Name: "Alex", IsHost: true, IsConnected: true, JoinedAt: time.Now()}
}

func guestPlayer() game.Player {
	return game.Player{ID: "guest-1", Name: "Sam", IsConnected: true, JoinedAt: time.Now()}
}

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, "room-1", "ABC123", hostPlayer(), testCatalog(), zap.NewNop())
}

// helper: receive one event with a timeout so tests never hang
func recvEvent(t *testing.T, ch <-chan game.Event, within time.Duration) game.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatalf("subscriber channel closed unexpectedly")
		}
		return ev
	case <-time.After(within):
		t.Fatalf("timed out waiting for event")
		return game.Event{} // unreachable
	}
}

func recvNoEvent(t *testing.T, ch <-chan game.Event, within time.Duration) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			return // closed channel: no further events possible
		}
		t.Fatalf("expected no event within %v, but got: %+v", within, ev)
	case <-time.After(within):
	}
}

func recvClosed(t *testing.T, ch <-chan game.Event, within time.Duration) {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("expected subscriber channel to close")
		}
	}
}

func startQuickGame(t *testing.T, r *Room) {
	t.Helper()
	if _, err := r.Join(guestPlayer()); err != nil {
		t.Fatalf("join: %v", err)
	}
	settings := game.DefaultSettings()
	settings.GameLength = game.LengthQuick
	if err := r.Start("host-1", settings); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestJoin_FillsGuestSlotAndPublishes(t *testing.T) {
	r := newTestRoom(t)
	events, err := r.Subscribe("host-sub")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	snap, err := r.Join(guestPlayer())
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if snap.Guest == nil || snap.Guest.Name != "Sam" {
		t.Fatalf("expected guest Sam in snapshot, got %+v", snap.Guest)
	}
	if snap.Settings.Player2Name != "Sam" {
		t.Fatalf("expected player2Name Sam, got %q", snap.Settings.Player2Name)
	}
	if snap.WaitingForPlayer {
		t.Fatalf("snapshot still waiting for player after join")
	}

	ev := recvEvent(t, events, 100*time.Millisecond)
	if ev.Type != game.EvtPlayerJoined {
		t.Fatalf("want PLAYER_JOINED, got %s", ev.Type)
	}
	if ev.Player == nil || ev.Player.ID != "guest-1" {
		t.Fatalf("PLAYER_JOINED missing guest payload: %+v", ev.Player)
	}
}

func TestJoin_SecondGuestRejected(t *testing.T) {
	r := newTestRoom(t)
	if _, err := r.Join(guestPlayer()); err != nil {
		t.Fatalf("first join: %v", err)
	}

	_, err := r.Join(game.Player{ID: "guest-2", Name: "Riley"})
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("want ErrRoomFull, got %v", err)
	}
}

func TestStart_RequiresHostAndSecondPlayer(t *testing.T) {
	r := newTestRoom(t)

	if err := r.Start("host-1", game.DefaultSettings()); !errors.Is(err, ErrNeedsSecondPlayer) {
		t.Fatalf("want ErrNeedsSecondPlayer, got %v", err)
	}

	if _, err := r.Join(guestPlayer()); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := r.Start("guest-1", game.DefaultSettings()); !errors.Is(err, ErrNotHost) {
		t.Fatalf("want ErrNotHost, got %v", err)
	}
	if err := r.Start("host-1", game.DefaultSettings()); err != nil {
		t.Fatalf("start as host: %v", err)
	}
}

func TestRoll_PublishesDiceThenQuestion(t *testing.T) {
	r := newTestRoom(t)
	startQuickGame(t, r)

	events, err := r.Subscribe("sub-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := r.Roll("host-1", game.CategoryDeepDive); err != nil {
		t.Fatalf("roll: %v", err)
	}

	first := recvEvent(t, events, 100*time.Millisecond)
	if first.Type != game.EvtDiceRolled || first.Category != game.CategoryDeepDive {
		t.Fatalf("want DICE_ROLLED deep-dive first, got %+v", first)
	}
	second := recvEvent(t, events, 100*time.Millisecond)
	if second.Type != game.EvtQuestionSelected {
		t.Fatalf("want QUESTION_SELECTED second, got %s", second.Type)
	}
	if second.Question == nil || second.Question.ID != "deep-a" {
		t.Fatalf("want question deep-a, got %+v", second.Question)
	}

	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.CurrentQuestion == nil || snap.CurrentQuestion.ID != "deep-a" {
		t.Fatalf("authoritative state missing selected question")
	}
	if len(snap.QuestionsAnswered) != 1 {
		t.Fatalf("selected question not recorded as answered")
	}
}

func TestRoll_CatalogExhaustionEndsGame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	catalog := game.NewCatalog([]game.Question{
		{ID: "only", Category: game.CategoryIcebreaker, Points: 1, Type: game.QuestionStandard},
	})
	r := New(ctx, "room-1", "ABC123", hostPlayer(), catalog, zap.NewNop())
	startQuickGame(t, r)

	if err := r.Roll("host-1", game.CategoryIcebreaker); err != nil {
		t.Fatalf("first roll: %v", err)
	}

	events, err := r.Subscribe("sub-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := r.Roll("guest-1", game.CategoryIcebreaker); err != nil {
		t.Fatalf("second roll: %v", err)
	}

	first := recvEvent(t, events, 100*time.Millisecond)
	if first.Type != game.EvtDiceRolled {
		t.Fatalf("want DICE_ROLLED, got %s", first.Type)
	}
	second := recvEvent(t, events, 100*time.Millisecond)
	if second.Type != game.EvtGameEnded {
		t.Fatalf("want GAME_ENDED on exhaustion, got %s", second.Type)
	}

	snap, _ := r.Snapshot()
	if snap.GamePhase != game.PhaseEnded {
		t.Fatalf("want phase ended, got %s", snap.GamePhase)
	}
}

func TestNextTurn_EndsGameAtTarget(t *testing.T) {
	r := newTestRoom(t)
	startQuickGame(t, r) // quick = 10 questions

	for i := 0; i < 10; i++ {
		if err := r.NextTurn("host-1"); err != nil {
			t.Fatalf("next turn %d: %v", i, err)
		}
	}

	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.GamePhase != game.PhaseEnded {
		t.Fatalf("want phase ended after 10 turns, got %s", snap.GamePhase)
	}
	if snap.QuestionCount != 10 {
		t.Fatalf("want questionCount 10, got %d", snap.QuestionCount)
	}
}

func TestNextTurn_TerminalPublishesFinalScores(t *testing.T) {
	r := newTestRoom(t)
	startQuickGame(t, r)
	if err := r.AwardSparks("guest-1", []game.SparkType{game.SparkBrave}, "host-1"); err != nil {
		t.Fatalf("award: %v", err)
	}

	for i := 0; i < 9; i++ {
		if err := r.NextTurn("host-1"); err != nil {
			t.Fatalf("next turn %d: %v", i, err)
		}
	}

	events, err := r.Subscribe("sub-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := r.NextTurn("host-1"); err != nil {
		t.Fatalf("final next turn: %v", err)
	}

	first := recvEvent(t, events, 100*time.Millisecond)
	if first.Type != game.EvtTurnChanged {
		t.Fatalf("want TURN_CHANGED, got %s", first.Type)
	}
	second := recvEvent(t, events, 100*time.Millisecond)
	if second.Type != game.EvtGameEnded {
		t.Fatalf("want GAME_ENDED, got %s", second.Type)
	}
	if second.FinalScores == nil || second.FinalScores.Player1 != 4 {
		t.Fatalf("want final player1 score 4, got %+v", second.FinalScores)
	}
}

func TestPowerUp_CapRejectedWithoutEvent(t *testing.T) {
	r := newTestRoom(t)
	startQuickGame(t, r)

	// both-answer has a cap of one use.
	if err := r.UsePowerUp("host-1", game.PowerUpBothAnswer); err != nil {
		t.Fatalf("first use: %v", err)
	}

	events, err := r.Subscribe("sub-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := r.UsePowerUp("host-1", game.PowerUpBothAnswer); !errors.Is(err, game.ErrPowerUpExhausted) {
		t.Fatalf("want ErrPowerUpExhausted, got %v", err)
	}
	recvNoEvent(t, events, 100*time.Millisecond)
}

func TestGuestLeave_ResetsRoomToSetup(t *testing.T) {
	r := newTestRoom(t)
	startQuickGame(t, r)

	events, err := r.Subscribe("host-sub")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if hostLeft := r.Leave("guest-1"); hostLeft {
		t.Fatalf("guest leaving must not end the room")
	}

	ev := recvEvent(t, events, 100*time.Millisecond)
	if ev.Type != game.EvtPlayerLeft || ev.PlayerID != "guest-1" {
		t.Fatalf("want PLAYER_LEFT guest-1, got %+v", ev)
	}

	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Guest != nil {
		t.Fatalf("guest slot not cleared")
	}
	if snap.GamePhase != game.PhaseSetup {
		t.Fatalf("want phase setup, got %s", snap.GamePhase)
	}
	if !snap.WaitingForPlayer {
		t.Fatalf("room should be waiting for a player again")
	}
}

func TestHostLeave_ClosesRoomAndSubscribers(t *testing.T) {
	r := newTestRoom(t)
	startQuickGame(t, r)

	events, err := r.Subscribe("guest-sub")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if hostLeft := r.Leave("host-1"); !hostLeft {
		t.Fatalf("host leaving must end the room")
	}

	ev := recvEvent(t, events, 100*time.Millisecond)
	if ev.Type != game.EvtPlayerLeft || ev.PlayerID != "host-1" {
		t.Fatalf("want PLAYER_LEFT host-1, got %+v", ev)
	}
	recvClosed(t, events, 200*time.Millisecond)

	if _, err := r.Snapshot(); !errors.Is(err, ErrRoomInactive) {
		t.Fatalf("want ErrRoomInactive after teardown, got %v", err)
	}
}

func TestLeave_UnknownPlayerIsNoOp(t *testing.T) {
	r := newTestRoom(t)

	if hostLeft := r.Leave("stranger"); hostLeft {
		t.Fatalf("unknown player must not end the room")
	}
	if hostLeft := r.Leave("stranger"); hostLeft {
		t.Fatalf("second leave must also be a no-op")
	}

	if _, err := r.Snapshot(); err != nil {
		t.Fatalf("room should still be alive: %v", err)
	}
}

func TestActions_RejectNonMembers(t *testing.T) {
	r := newTestRoom(t)
	startQuickGame(t, r)

	if err := r.Roll("stranger", game.CategoryIcebreaker); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("roll: want ErrNotAuthorized, got %v", err)
	}
	if err := r.NextTurn("stranger"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("next turn: want ErrNotAuthorized, got %v", err)
	}
}

func TestReset_RestoresDefaultsKeepingPlayers(t *testing.T) {
	r := newTestRoom(t)
	startQuickGame(t, r)
	if err := r.AwardSparks("host-1", []game.SparkType{game.SparkSame}, "guest-1"); err != nil {
		t.Fatalf("award: %v", err)
	}

	if err := r.Reset("guest-1"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("want ErrNotHost, got %v", err)
	}
	if err := r.Reset("host-1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Player2Sparks != 0 || snap.QuestionCount != 0 {
		t.Fatalf("reset did not clear scores/count: %+v", snap.GameState)
	}
	if snap.GamePhase != game.PhaseSetup {
		t.Fatalf("want phase setup, got %s", snap.GamePhase)
	}
	if snap.Guest == nil || snap.Settings.Player2Name != "Sam" {
		t.Fatalf("reset must keep players: %+v", snap.Guest)
	}
}

func TestNextTurn_RejectedAfterGameEnds(t *testing.T) {
	r := newTestRoom(t)
	startQuickGame(t, r)

	for i := 0; i < 10; i++ {
		if err := r.NextTurn("host-1"); err != nil {
			t.Fatalf("next turn %d: %v", i, err)
		}
	}

	events, err := r.Subscribe("sub-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := r.NextTurn("host-1"); !errors.Is(err, game.ErrGameOver) {
		t.Fatalf("want ErrGameOver on extra turn, got %v", err)
	}
	if err := r.UsePowerUp("host-1", game.PowerUpSkip); !errors.Is(err, game.ErrGameOver) {
		t.Fatalf("want ErrGameOver on skip after end, got %v", err)
	}
	recvNoEvent(t, events, 100*time.Millisecond)

	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.QuestionCount != snap.TotalQuestions {
		t.Fatalf("questionCount %d exceeds totalQuestions %d", snap.QuestionCount, snap.TotalQuestions)
	}
	if used := snap.PowerUpsUsed[1][game.PowerUpSkip]; used != 0 {
		t.Fatalf("rejected skip must not spend a use, got %d", used)
	}
}

func TestStart_RejectsEmptyCategories(t *testing.T) {
	r := newTestRoom(t)
	if _, err := r.Join(guestPlayer()); err != nil {
		t.Fatalf("join: %v", err)
	}

	settings := game.DefaultSettings()
	settings.SelectedCategories = nil
	if err := r.Start("host-1", settings); !errors.Is(err, game.ErrNoCategories) {
		t.Fatalf("want ErrNoCategories, got %v", err)
	}

	snap, err := r.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.GamePhase != game.PhaseSetup {
		t.Fatalf("rejected start must leave the room in setup, got %s", snap.GamePhase)
	}
}

func TestPublish_DropsSlowSubscriber(t *testing.T) {
	r := newTestRoom(t)
	startQuickGame(t, r)

	events, err := r.Subscribe("laggard")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Fill the laggard's buffer and push one event past it without ever
	// reading; the overflowing publish must drop and close the channel.
	for i := 0; i <= subscriberBuffer; i++ {
		if err := r.CompleteAnswer("host-1"); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	recvClosed(t, events, 200*time.Millisecond)

	// The room itself keeps working for everyone else.
	if _, err := r.Snapshot(); err != nil {
		t.Fatalf("room died with the slow subscriber: %v", err)
	}
}
