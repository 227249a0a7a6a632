package game

import "time"

// Category is one of the six fixed question topics a dice roll can land on.
type Category int

const (
	CategoryIcebreaker Category = iota + 1
	CategoryDreams
	CategoryWouldYouRather
	CategoryStoryTime
	CategorySpicy
	CategoryDeepDive
)

var CategoryNames = map[Category]string{
	CategoryIcebreaker:     "Icebreakers",
	CategoryDreams:         "Dreams & Adventures",
	CategoryWouldYouRather: "Would You Rather",
	CategoryStoryTime:      "Story Time",
	CategorySpicy:          "Spicy",
	CategoryDeepDive:       "Deep Dive",
}

func (c Category) Valid() bool {
	return c >= CategoryIcebreaker && c <= CategoryDeepDive
}

type QuestionType string

const (
	QuestionStandard   QuestionType = "standard"
	QuestionChallenge  QuestionType = "challenge"
	QuestionBothAnswer QuestionType = "both-answer"
)

// Question is static catalog data, loaded once and never mutated.
type Question struct {
	ID         string       `json:"id"`
	Category   Category     `json:"category"`
	Difficulty int          `json:"difficulty"` // 1..3
	Points     int          `json:"points"`
	Text       string       `json:"text"`
	FollowUp   string       `json:"followUp,omitempty"`
	Tags       []string     `json:"tags"`
	Type       QuestionType `json:"type"`
}

type DateType string

const (
	DateFirst    DateType = "first"
	DateDating   DateType = "dating"
	DateLongTerm DateType = "longterm"
	DateCustom   DateType = "custom"
)

type GameLength string

const (
	LengthQuick    GameLength = "quick"
	LengthStandard GameLength = "standard"
	LengthMarathon GameLength = "marathon"
)

// QuestionLimit maps a session-length preset to its question target.
func QuestionLimit(l GameLength) int {
	switch l {
	case LengthQuick:
		return 10
	case LengthMarathon:
		return 999
	default:
		return 20
	}
}

type GameSettings struct {
	Player1Name        string     `json:"player1Name"`
	Player2Name        string     `json:"player2Name"`
	DateType           DateType   `json:"dateType"`
	GameLength         GameLength `json:"gameLength"`
	EnableTimer        bool       `json:"enableTimer"`
	TimerSeconds       int        `json:"timerSeconds"` // 30, 60 or 90
	EnableMusic        bool       `json:"enableMusic"`
	ShowSparks         bool       `json:"showSparks"`
	SelectedCategories []Category `json:"selectedCategories"`
}

type SparkType string

const (
	SparkMadeMeLaugh SparkType = "made-me-laugh"
	SparkAdorable    SparkType = "adorable"
	SparkDidntKnow   SparkType = "didnt-know"
	SparkConnection  SparkType = "connection"
	SparkHot         SparkType = "hot"
	SparkBrave       SparkType = "brave"
	SparkSame        SparkType = "same"
)

var sparkPoints = map[SparkType]int{
	SparkMadeMeLaugh: 2,
	SparkAdorable:    2,
	SparkDidntKnow:   3,
	SparkConnection:  3,
	SparkHot:         2,
	SparkBrave:       4,
	SparkSame:        2,
}

// SparkPoints sums the point values of the chosen reactions. Unknown
// reaction kinds score zero rather than failing.
func SparkPoints(types []SparkType) int {
	total := 0
	for _, t := range types {
		total += sparkPoints[t]
	}
	return total
}

type PowerUpType string

const (
	PowerUpReverse    PowerUpType = "reverse"
	PowerUpBothAnswer PowerUpType = "both-answer"
	PowerUpSkip       PowerUpType = "skip"
	PowerUpReRoll     PowerUpType = "re-roll"
)

var powerUpCaps = map[PowerUpType]int{
	PowerUpSkip:       2,
	PowerUpReRoll:     2,
	PowerUpBothAnswer: 1,
	PowerUpReverse:    1,
}

// PowerUpCap returns the per-player usage limit for the given kind,
// zero for unknown kinds.
func PowerUpCap(p PowerUpType) int {
	return powerUpCaps[p]
}

type Phase string

const (
	PhaseLanding        Phase = "landing"
	PhaseSetup          Phase = "setup"
	PhasePlaying        Phase = "playing"
	PhaseAwardingSparks Phase = "awarding-sparks"
	PhaseMiniGame       Phase = "mini-game"
	PhaseEnded          Phase = "ended"
)

type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsHost      bool      `json:"isHost"`
	IsConnected bool      `json:"isConnected"`
	JoinedAt    time.Time `json:"joinedAt"`
}
