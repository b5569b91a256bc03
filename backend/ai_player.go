package main

import "time"

// AIPlayer picks moves by fully re-evaluating every legal successor at the
// engine's depth cap. All AI players in the process share one engine, so the
// table keeps accumulating across turns and games until it is flushed.
type AIPlayer struct{}

func NewAIPlayer() *AIPlayer {
	return &AIPlayer{}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

func (a *AIPlayer) ChooseMove(state GameState, rules Rules) Move {
	config := GetConfig()
	engine := SharedSearchEngine()
	engine.ResetStats()
	successors := rules.LegalSuccessors(state)
	scores := scoreSuccessors(engine, successors)
	if config.LogSearchStats {
		logSearchStats("choose", engine.Stats(), engine)
	}
	best, ok := pickBestSuccessor(successors, scores)
	if !ok {
		return Move{}
	}
	return Move{Face: best.LastMove, Depth: engine.MaxDepth()}
}

// scoreSuccessors evaluates each successor over the full window at maximum
// depth, sign-flipped back to the original mover's perspective. Scores are
// positionally aligned with the input slice.
func scoreSuccessors(engine *SearchEngine, successors []GameState) []int {
	scores := make([]int, len(successors))
	for i, successor := range successors {
		scores[i] = -engine.Search(successor, engine.MaxDepth(), ScoreMin, ScoreMax)
	}
	return scores
}

// pickBestSuccessor tracks the running maximum with >=, so a tie goes to the
// later successor in enumeration order. That tie-break is observable in full
// move sequences and must not be normalized to first-match.
func pickBestSuccessor(successors []GameState, scores []int) (GameState, bool) {
	if len(successors) == 0 {
		return GameState{}, false
	}
	best := successors[0]
	bestScore := scoreNone
	for i, successor := range successors {
		if scores[i] >= bestScore {
			bestScore = scores[i]
			best = successor
		}
	}
	return best, true
}

// EvaluateStart reports the perfect-play outcome of one starting
// configuration with a fresh engine (and therefore a cleared table).
func EvaluateStart(settings GameSettings, config Config) (int, SearchStats, time.Duration) {
	engine := NewSearchEngine(config)
	start := time.Now()
	score := engine.Evaluate(InitialGameState(settings))
	return score, engine.Stats(), time.Since(start)
}
