package game

// Reduce folds one room event into a client's locally held state and
// returns the result. It is a pure function: the input state is never
// mutated, and every participant applies the same fold in delivery order,
// so all connected clients converge without re-fetching snapshots.
func Reduce(s MultiplayerState, ev Event) MultiplayerState {
	next := s.Clone()

	switch ev.Type {
	case EvtPlayerJoined:
		if ev.Player == nil {
			return next
		}
		p := *ev.Player
		if p.IsHost {
			next.Host = &p
		} else {
			next.Guest = &p
			next.Settings.Player2Name = p.Name
		}
		next.WaitingForPlayer = false

	case EvtPlayerLeft:
		if next.Host != nil && ev.PlayerID == next.Host.ID {
			// Host gone: the room is over for everyone.
			next.ConnectionLost = true
			next.GamePhase = PhaseEnded
		} else {
			next.Guest = nil
			next.WaitingForPlayer = true
			next.GamePhase = PhaseSetup
			next.Settings.Player2Name = ""
		}

	case EvtGameStarted:
		if ev.Settings != nil {
			next.Settings = *ev.Settings
			next.TotalQuestions = QuestionLimit(ev.Settings.GameLength)
		}
		next.GamePhase = PhasePlaying

	case EvtDiceRolled:
		next.CurrentCategory = ev.Category
		next.LastCategory = ev.Category

	case EvtQuestionSelected:
		if ev.Question == nil {
			return next
		}
		q := *ev.Question
		next.CurrentQuestion = &q
		next.QuestionsAnswered = append(next.QuestionsAnswered, q.ID)

	case EvtAnswerCompleted:
		next.GamePhase = PhaseAwardingSparks

	case EvtSparksAwarded:
		points := SparkPoints(ev.SparkTypes)
		if next.Host != nil && ev.AwardedTo == next.Host.ID {
			next.Player1Sparks += points
		} else {
			next.Player2Sparks += points
		}

	case EvtPowerUpUsed:
		player := 2
		if next.Host != nil && ev.PlayerID == next.Host.ID {
			player = 1
		}
		if uses, ok := next.PowerUpsUsed[player]; ok {
			uses[ev.PowerUp]++
		}
		switch ev.PowerUp {
		case PowerUpReRoll:
			next.CurrentCategory = 0
			next.CurrentQuestion = nil
		case PowerUpReverse:
			next.CurrentTurn = otherTurn(next.CurrentTurn)
		}
		// skip's turn advance arrives as a separate TURN_CHANGED event.

	case EvtTurnChanged:
		next.CurrentTurn = ev.CurrentTurn
		next.CurrentQuestion = nil
		next.CurrentCategory = 0
		next.QuestionCount++
		next.GamePhase = PhasePlaying

	case EvtGameEnded:
		next.GamePhase = PhaseEnded
		if ev.FinalScores != nil {
			next.Player1Sparks = ev.FinalScores.Player1
			next.Player2Sparks = ev.FinalScores.Player2
		}

	case EvtGameReset:
		reset := NewGameState(PhaseSetup)
		if next.Host != nil {
			reset.Settings.Player1Name = next.Host.Name
		}
		if next.Guest != nil {
			reset.Settings.Player2Name = next.Guest.Name
		}
		next.GameState = reset
	}

	return next
}
