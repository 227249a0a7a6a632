package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedEngine(t *testing.T, length GameLength) *Engine {
	t.Helper()
	e := NewEngine(NewCatalog(testQuestions()))
	settings := DefaultSettings()
	settings.Player1Name = "Alex"
	settings.Player2Name = "Sam"
	settings.GameLength = length
	e.Initialize(settings)
	return e
}

func TestInitializeDerivesQuestionTarget(t *testing.T) {
	cases := []struct {
		length GameLength
		want   int
	}{
		{LengthQuick, 10},
		{LengthStandard, 20},
		{LengthMarathon, 999},
	}
	for _, tc := range cases {
		t.Run(string(tc.length), func(t *testing.T) {
			e := startedEngine(t, tc.length)
			assert.Equal(t, tc.want, e.State().TotalQuestions)
			assert.Equal(t, PhasePlaying, e.State().GamePhase)
		})
	}
}

func TestNextTurnEndsGameAtTarget(t *testing.T) {
	e := startedEngine(t, LengthQuick)

	for i := 0; i < 10; i++ {
		st := e.State()
		require.LessOrEqual(t, st.QuestionCount, st.TotalQuestions)
		require.NotEqual(t, PhaseEnded, st.GamePhase, "ended early at question %d", i)
		e.NextTurn()
	}

	st := e.State()
	assert.Equal(t, PhaseEnded, st.GamePhase)
	assert.Equal(t, 10, st.QuestionCount)
}

func TestNextTurnAlternatesPlayers(t *testing.T) {
	e := startedEngine(t, LengthStandard)
	require.Equal(t, 1, e.State().CurrentTurn)

	e.NextTurn()
	assert.Equal(t, 2, e.State().CurrentTurn)
	e.NextTurn()
	assert.Equal(t, 1, e.State().CurrentTurn)
}

func TestAwardSparksUsesReactionTable(t *testing.T) {
	e := startedEngine(t, LengthStandard)

	// made-me-laugh is worth 2, brave is worth 4.
	e.AwardSparks([]SparkType{SparkMadeMeLaugh, SparkBrave})
	assert.Equal(t, 6, e.State().Player1Sparks)
	assert.Zero(t, e.State().Player2Sparks)
}

func TestAwardBasePointsNeedsActiveQuestion(t *testing.T) {
	e := startedEngine(t, LengthStandard)

	e.AwardBasePoints()
	assert.Zero(t, e.State().Player1Sparks)

	q, err := e.SelectQuestion(CategoryDeepDive)
	require.NoError(t, err)
	e.AwardBasePoints()
	assert.Equal(t, q.Points, e.State().Player1Sparks)
}

func TestRollDiceAvoidsImmediateRepeat(t *testing.T) {
	e := startedEngine(t, LengthStandard)
	_, err := e.SelectQuestion(CategorySpicy)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		c, err := e.RollDice()
		require.NoError(t, err)
		assert.NotEqual(t, CategorySpicy, c)
	}
}

func TestPowerUpCapsAreEnforced(t *testing.T) {
	cases := []struct {
		kind PowerUpType
		cap  int
	}{
		{PowerUpSkip, 2},
		{PowerUpReRoll, 2},
		{PowerUpBothAnswer, 1},
		{PowerUpReverse, 1},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			e := startedEngine(t, LengthMarathon)
			for i := 0; i < tc.cap; i++ {
				require.NoError(t, e.UsePowerUp(tc.kind))
			}
			before := e.State()
			err := e.UsePowerUp(tc.kind)
			assert.ErrorIs(t, err, ErrPowerUpExhausted)
			assert.Equal(t, before.PowerUpsUsed, e.State().PowerUpsUsed, "rejected use must not mutate")
		})
	}
}

func TestSkipAdvancesTurn(t *testing.T) {
	e := startedEngine(t, LengthStandard)

	require.NoError(t, e.UsePowerUp(PowerUpSkip))
	st := e.State()
	assert.Equal(t, 2, st.CurrentTurn)
	assert.Equal(t, 1, st.QuestionCount)
}

func TestReverseFlipsTurnWithoutCounting(t *testing.T) {
	e := startedEngine(t, LengthStandard)

	require.NoError(t, e.UsePowerUp(PowerUpReverse))
	st := e.State()
	assert.Equal(t, 2, st.CurrentTurn)
	assert.Zero(t, st.QuestionCount)
}

func TestReRollClearsQuestionAndCategory(t *testing.T) {
	e := startedEngine(t, LengthStandard)
	_, err := e.SelectQuestion(CategoryIcebreaker)
	require.NoError(t, err)

	require.NoError(t, e.UsePowerUp(PowerUpReRoll))
	st := e.State()
	assert.Nil(t, st.CurrentQuestion)
	assert.Zero(t, st.CurrentCategory)
}

func TestToggleBookmark(t *testing.T) {
	e := startedEngine(t, LengthStandard)

	e.ToggleBookmark("ice-a")
	assert.Equal(t, []string{"ice-a"}, e.State().BookmarkedQuestions)
	e.ToggleBookmark("ice-a")
	assert.Empty(t, e.State().BookmarkedQuestions)
}

func TestResetReturnsToLanding(t *testing.T) {
	e := startedEngine(t, LengthQuick)
	e.AwardSparks([]SparkType{SparkBrave})
	e.NextTurn()

	e.Reset()
	st := e.State()
	assert.Equal(t, PhaseLanding, st.GamePhase)
	assert.Zero(t, st.Player1Sparks)
	assert.Zero(t, st.QuestionCount)
}

func TestNextTurnStopsCountingAfterGameEnds(t *testing.T) {
	e := startedEngine(t, LengthQuick)
	for i := 0; i < 10; i++ {
		e.NextTurn()
	}
	require.Equal(t, PhaseEnded, e.State().GamePhase)

	e.NextTurn()
	st := e.State()
	assert.Equal(t, 10, st.QuestionCount, "extra turn must not count past the target")
	assert.Equal(t, PhaseEnded, st.GamePhase)

	err := e.UsePowerUp(PowerUpSkip)
	assert.ErrorIs(t, err, ErrGameOver)
	assert.Zero(t, e.State().PowerUpsUsed[e.State().CurrentTurn][PowerUpSkip])
}
