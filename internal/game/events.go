package game

type EventType string

const (
	EvtPlayerJoined     EventType = "PLAYER_JOINED"
	EvtPlayerLeft       EventType = "PLAYER_LEFT"
	EvtGameStarted      EventType = "GAME_STARTED"
	EvtDiceRolled       EventType = "DICE_ROLLED"
	EvtQuestionSelected EventType = "QUESTION_SELECTED"
	EvtAnswerCompleted  EventType = "ANSWER_COMPLETED"
	EvtSparksAwarded    EventType = "SPARKS_AWARDED"
	EvtPowerUpUsed      EventType = "POWER_UP_USED"
	EvtTurnChanged      EventType = "TURN_CHANGED"
	EvtGameEnded        EventType = "GAME_ENDED"
	EvtGameReset        EventType = "GAME_RESET"
)

// FinalScores carries the authoritative tallies broadcast with GAME_ENDED.
type FinalScores struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// Event is one immutable fact published to every subscriber of a room.
// A single tagged struct rather than one type per tag keeps the wire
// codec and the reducer switch flat; unused payload fields stay zero.
type Event struct {
	Type        EventType     `json:"type"`
	Player      *Player       `json:"player,omitempty"`      // PLAYER_JOINED
	PlayerID    string        `json:"playerId,omitempty"`    // PLAYER_LEFT, DICE_ROLLED, ANSWER_COMPLETED, POWER_UP_USED
	Settings    *GameSettings `json:"settings,omitempty"`    // GAME_STARTED
	Category    Category      `json:"category,omitempty"`    // DICE_ROLLED
	Question    *Question     `json:"question,omitempty"`    // QUESTION_SELECTED
	SparkTypes  []SparkType   `json:"sparkTypes,omitempty"`  // SPARKS_AWARDED
	AwardedBy   string        `json:"awardedBy,omitempty"`   // SPARKS_AWARDED
	AwardedTo   string        `json:"awardedTo,omitempty"`   // SPARKS_AWARDED
	PowerUp     PowerUpType   `json:"powerUp,omitempty"`     // POWER_UP_USED
	CurrentTurn int           `json:"currentTurn,omitempty"` // TURN_CHANGED
	FinalScores *FinalScores  `json:"finalScores,omitempty"` // GAME_ENDED
}
