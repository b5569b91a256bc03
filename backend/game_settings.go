package main

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

type GameSettings struct {
	StartTotal    int        `json:"start_total"`
	StartFace     int        `json:"start_face"`
	FirstPlayer   PlayerID   `json:"first_player"`
	PlayerOneType PlayerType `json:"-"`
	PlayerTwoType PlayerType `json:"-"`
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		StartTotal:    66,
		StartFace:     1,
		FirstPlayer:   PlayerTwo,
		PlayerOneType: PlayerAI,
		PlayerTwoType: PlayerHuman,
	}
}

// Normalize clamps user-provided settings back into the modeled domain.
func (s GameSettings) Normalize() GameSettings {
	out := s
	if out.StartTotal < minStartTotal {
		out.StartTotal = minStartTotal
	}
	if out.StartTotal > maxStartTotal {
		out.StartTotal = maxStartTotal
	}
	if out.StartFace < minFace {
		out.StartFace = minFace
	}
	if out.StartFace > maxFace {
		out.StartFace = maxFace
	}
	if out.FirstPlayer != PlayerOne && out.FirstPlayer != PlayerTwo {
		out.FirstPlayer = PlayerTwo
	}
	return out
}
