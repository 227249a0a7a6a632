package game

import (
	"errors"
	"math/rand"
	"slices"
	"time"
)

var ErrPowerUpExhausted = errors.New("power-up has no uses left")
var ErrNoQuestionsLeft = errors.New("no questions left for the enabled categories")
var ErrNoCategories = errors.New("no categories selected")
var ErrGameOver = errors.New("game is already over")

// Engine drives the single-device pass-and-play mode. It owns its state
// directly and applies the same transitions the multiplayer reducer
// reconstructs from events; it is not safe for concurrent use, which is
// fine for one device.
type Engine struct {
	catalog *Catalog
	state   GameState
}

func NewEngine(catalog *Catalog) *Engine {
	return &Engine{
		catalog: catalog,
		state:   NewGameState(PhaseLanding),
	}
}

// State returns a snapshot for rendering.
func (e *Engine) State() GameState { return e.state.Clone() }

func (e *Engine) Initialize(settings GameSettings) {
	e.state = NewGameState(PhasePlaying)
	e.state.Settings = settings
	e.state.TotalQuestions = QuestionLimit(settings.GameLength)
}

// RollDice picks a random enabled category, avoiding an immediate repeat
// of the previous roll when another choice exists.
func (e *Engine) RollDice() (Category, error) {
	pool := make([]Category, 0, len(e.state.Settings.SelectedCategories))
	for _, c := range e.state.Settings.SelectedCategories {
		if c != e.state.LastCategory {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = e.state.Settings.SelectedCategories
	}
	if len(pool) == 0 {
		return 0, ErrNoCategories
	}
	category := pool[rand.Intn(len(pool))]
	e.state.CurrentCategory = category
	return category, nil
}

// SelectQuestion resolves the rolled category to a concrete question via
// the shared selection algorithm and starts the answer timer if enabled.
func (e *Engine) SelectQuestion(category Category) (Question, error) {
	e.state.CurrentCategory = category
	e.state.LastCategory = category

	q, ok := e.catalog.Select(category, e.state.Settings, e.state.QuestionsAnswered)
	if !ok {
		return Question{}, ErrNoQuestionsLeft
	}
	e.state.CurrentQuestion = &q
	if e.state.Settings.EnableTimer {
		e.state.TimerStartedAt = time.Now().UnixMilli()
	} else {
		e.state.TimerStartedAt = 0
	}
	return q, nil
}

// AwardBasePoints credits the active player with the current question's
// base value. No-op when no question is active.
func (e *Engine) AwardBasePoints() {
	if e.state.CurrentQuestion == nil {
		return
	}
	e.addSparks(e.state.CurrentTurn, e.state.CurrentQuestion.Points)
}

// AwardSparks credits the active player with the chosen reactions; in
// pass-and-play the answering player is always the one on turn.
func (e *Engine) AwardSparks(types []SparkType) {
	e.addSparks(e.state.CurrentTurn, SparkPoints(types))
}

func (e *Engine) addSparks(player, points int) {
	if player == 1 {
		e.state.Player1Sparks += points
	} else {
		e.state.Player2Sparks += points
	}
}

// NextTurn records the answered question, advances the count and hands
// the dice over, ending the game once the session target is reached.
// No-op once the game has ended, so the count never passes the target.
func (e *Engine) NextTurn() {
	if e.state.GamePhase == PhaseEnded {
		return
	}
	if e.state.CurrentQuestion != nil {
		e.state.QuestionsAnswered = append(e.state.QuestionsAnswered, e.state.CurrentQuestion.ID)
	}
	e.state.QuestionCount++

	if e.state.QuestionCount >= e.state.TotalQuestions {
		e.state.GamePhase = PhaseEnded
		return
	}
	e.state.CurrentTurn = otherTurn(e.state.CurrentTurn)
	e.state.CurrentQuestion = nil
	e.state.CurrentCategory = 0
	e.state.GamePhase = PhasePlaying
	e.state.TimerStartedAt = 0
}

// UsePowerUp spends one use for the active player and applies the kind's
// turn-flow effect. Capped-out power-ups are rejected with no mutation.
func (e *Engine) UsePowerUp(kind PowerUpType) error {
	if e.state.GamePhase == PhaseEnded {
		return ErrGameOver
	}
	player := e.state.CurrentTurn
	if e.state.PowerUpsUsed[player][kind] >= PowerUpCap(kind) {
		return ErrPowerUpExhausted
	}
	e.state.PowerUpsUsed[player][kind]++

	switch kind {
	case PowerUpSkip:
		e.NextTurn()
	case PowerUpReRoll:
		e.state.CurrentCategory = 0
		e.state.CurrentQuestion = nil
	case PowerUpReverse:
		e.state.CurrentTurn = otherTurn(e.state.CurrentTurn)
	case PowerUpBothAnswer:
		// Presentation-only: both players answer, state is unchanged.
	}
	return nil
}

// ToggleBookmark adds or removes a question from the bookmark set.
func (e *Engine) ToggleBookmark(questionID string) {
	if i := slices.Index(e.state.BookmarkedQuestions, questionID); i >= 0 {
		e.state.BookmarkedQuestions = slices.Delete(e.state.BookmarkedQuestions, i, i+1)
		return
	}
	e.state.BookmarkedQuestions = append(e.state.BookmarkedQuestions, questionID)
}

func (e *Engine) EndGame() {
	e.state.GamePhase = PhaseEnded
}

func (e *Engine) Reset() {
	e.state = NewGameState(PhaseLanding)
}

func (e *Engine) SetPhase(phase Phase) {
	e.state.GamePhase = phase
}
