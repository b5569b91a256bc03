package main

// PlayerID doubles as the absolute score perspective: PlayerOne counts
// positive, PlayerTwo negative.
type PlayerID int

type GameStatus int

const (
	PlayerOne PlayerID = 1
	PlayerTwo PlayerID = -1
)

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusPlayerOneWon
	StatusPlayerTwoWon
)

// GameState is the full search state: the face that produced it, the total
// still to be subtracted, the player to move next, and the winner once the
// total has dropped to zero or below. States are values and never mutated;
// successors come from Rules.ApplyMove.
type GameState struct {
	LastMove int
	Total    int
	ToMove   PlayerID
	Winner   PlayerID
}

func InitialGameState(settings GameSettings) GameState {
	return GameState{
		LastMove: settings.StartFace,
		Total:    settings.StartTotal,
		ToMove:   settings.FirstPlayer,
		Winner:   0,
	}
}

func otherPlayer(player PlayerID) PlayerID {
	return -player
}

func (p PlayerID) String() string {
	switch p {
	case PlayerOne:
		return "P1"
	case PlayerTwo:
		return "P2"
	default:
		return "none"
	}
}

func statusForWinner(winner PlayerID) GameStatus {
	if winner == PlayerOne {
		return StatusPlayerOneWon
	}
	return StatusPlayerTwoWon
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusPlayerOneWon:
		return "p1_won"
	case StatusPlayerTwoWon:
		return "p2_won"
	default:
		return "unknown"
	}
}
