package game

import "slices"

// GameState is the shared shape driven directly by the local engine and
// reconstructed from events by every multiplayer client.
type GameState struct {
	Settings            GameSettings                `json:"settings"`
	CurrentTurn         int                         `json:"currentTurn"` // 1 (host) or 2 (guest)
	Player1Sparks       int                         `json:"player1Sparks"`
	Player2Sparks       int                         `json:"player2Sparks"`
	QuestionsAnswered   []string                    `json:"questionsAnswered"`
	CurrentQuestion     *Question                   `json:"currentQuestion"`
	CurrentCategory     Category                    `json:"currentCategory"` // zero when none
	LastCategory        Category                    `json:"lastCategory"`
	PowerUpsUsed        map[int]map[PowerUpType]int `json:"powerUpsUsed"`
	BookmarkedQuestions []string                    `json:"bookmarkedQuestions"`
	GamePhase           Phase                       `json:"gamePhase"`
	QuestionCount       int                         `json:"questionCount"`
	TotalQuestions      int                         `json:"totalQuestions"`
	TimerStartedAt      int64                       `json:"timerStartedAt"` // unix millis, zero when unset
}

// MultiplayerState is GameState plus the room-scoped bookkeeping a
// connected client folds events into.
type MultiplayerState struct {
	GameState
	RoomID           string  `json:"roomId"`
	RoomCode         string  `json:"roomCode"`
	Host             *Player `json:"host"`
	Guest            *Player `json:"guest"`
	WaitingForPlayer bool    `json:"waitingForPlayer"`
	ConnectionLost   bool    `json:"connectionLost"`
}

func DefaultSettings() GameSettings {
	return GameSettings{
		DateType:     DateFirst,
		GameLength:   LengthStandard,
		EnableTimer:  false,
		TimerSeconds: 60,
		EnableMusic:  false,
		ShowSparks:   true,
		SelectedCategories: []Category{
			CategoryIcebreaker, CategoryDreams, CategoryWouldYouRather,
			CategoryStoryTime, CategorySpicy, CategoryDeepDive,
		},
	}
}

func emptyPowerUps() map[int]map[PowerUpType]int {
	return map[int]map[PowerUpType]int{
		1: {PowerUpReverse: 0, PowerUpBothAnswer: 0, PowerUpSkip: 0, PowerUpReRoll: 0},
		2: {PowerUpReverse: 0, PowerUpBothAnswer: 0, PowerUpSkip: 0, PowerUpReRoll: 0},
	}
}

// NewGameState returns the default state a freshly created room starts in.
func NewGameState(phase Phase) GameState {
	return GameState{
		Settings:            DefaultSettings(),
		CurrentTurn:         1,
		QuestionsAnswered:   []string{},
		PowerUpsUsed:        emptyPowerUps(),
		BookmarkedQuestions: []string{},
		GamePhase:           phase,
		TotalQuestions:      QuestionLimit(LengthStandard),
	}
}

// Clone deep-copies the state so snapshots handed to callers cannot alias
// the authoritative copy.
func (s GameState) Clone() GameState {
	out := s
	out.QuestionsAnswered = slices.Clone(s.QuestionsAnswered)
	out.BookmarkedQuestions = slices.Clone(s.BookmarkedQuestions)
	out.PowerUpsUsed = make(map[int]map[PowerUpType]int, len(s.PowerUpsUsed))
	for player, uses := range s.PowerUpsUsed {
		cp := make(map[PowerUpType]int, len(uses))
		for k, v := range uses {
			cp[k] = v
		}
		out.PowerUpsUsed[player] = cp
	}
	if s.CurrentQuestion != nil {
		q := *s.CurrentQuestion
		out.CurrentQuestion = &q
	}
	return out
}

func (s MultiplayerState) Clone() MultiplayerState {
	out := s
	out.GameState = s.GameState.Clone()
	if s.Host != nil {
		h := *s.Host
		out.Host = &h
	}
	if s.Guest != nil {
		g := *s.Guest
		out.Guest = &g
	}
	return out
}

func otherTurn(turn int) int {
	if turn == 1 {
		return 2
	}
	return 1
}
