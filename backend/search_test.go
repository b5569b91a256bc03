package main

import "testing"

// bruteForceValue is a plain negamax over the full game tree, no table and no
// window. It is the reference the table-driven search is checked against.
func bruteForceValue(rules Rules, state GameState, depth int) int {
	if depth == 0 || rules.IsTerminal(state) {
		return int(state.ToMove) * rules.EvaluateTerminal(state)
	}
	best := scoreNone
	for _, successor := range rules.LegalSuccessors(state) {
		if val := -bruteForceValue(rules, successor, depth-1); val > best {
			best = val
		}
	}
	return best
}

func freshEngine() *SearchEngine {
	return NewSearchEngine(DefaultConfig())
}

func TestSearchLeafCases(t *testing.T) {
	engine := freshEngine()
	won := GameState{LastMove: 5, Total: -2, ToMove: PlayerTwo, Winner: PlayerTwo}
	if got := engine.Search(won, 10, ScoreMin, ScoreMax); got != 1 {
		t.Fatalf("terminal state where the mover is the winner must score +1, got %d", got)
	}
	lost := GameState{LastMove: 5, Total: 0, ToMove: PlayerOne, Winner: PlayerTwo}
	if got := engine.Search(lost, 10, ScoreMin, ScoreMax); got != -1 {
		t.Fatalf("terminal state where the mover lost must score -1, got %d", got)
	}
	running := GameState{LastMove: 2, Total: 30, ToMove: PlayerOne}
	if got := engine.Search(running, 0, ScoreMin, ScoreMax); got != 0 {
		t.Fatalf("depth 0 on an undecided state must score 0, got %d", got)
	}
}

func TestSearchMatchesBruteForceAtShallowDepths(t *testing.T) {
	rules := NewRules()
	for depth := 0; depth <= 3; depth++ {
		for total := minStartTotal; total <= maxStartTotal; total++ {
			for face := minFace; face <= maxFace; face++ {
				for _, player := range []PlayerID{PlayerOne, PlayerTwo} {
					state := GameState{LastMove: face, Total: total, ToMove: player}
					want := bruteForceValue(rules, state, depth)
					got := freshEngine().Search(state, depth, ScoreMin, ScoreMax)
					if got != want {
						t.Fatalf("depth=%d total=%d face=%d player=%d: search=%d brute=%d",
							depth, total, face, player, got, want)
					}
				}
			}
		}
	}
}

func TestSearchMatchesBruteForceForShortGames(t *testing.T) {
	rules := NewRules()
	fullDepth := DefaultConfig().SearchMaxDepth
	for total := 1; total <= 8; total++ {
		for face := minFace; face <= maxFace; face++ {
			for _, player := range []PlayerID{PlayerOne, PlayerTwo} {
				state := GameState{LastMove: face, Total: total, ToMove: player}
				want := bruteForceValue(rules, state, fullDepth)
				got := freshEngine().Search(state, fullDepth, ScoreMin, ScoreMax)
				if got != want {
					t.Fatalf("total=%d face=%d player=%d: search=%d brute=%d",
						total, face, player, got, want)
				}
			}
		}
	}
}

func TestSearchShortestStartsAreFirstPlayerWins(t *testing.T) {
	// Starting totals where every face and every first player leaves the
	// mover with a forced win.
	for _, total := range []int{11, 17, 20} {
		for face := minFace; face <= maxFace; face++ {
			for _, player := range []PlayerID{PlayerOne, PlayerTwo} {
				state := InitialGameState(GameSettings{StartTotal: total, StartFace: face, FirstPlayer: player})
				if got := freshEngine().Evaluate(state); got != 1 {
					t.Fatalf("total=%d face=%d player=%d: expected mover win, got %d", total, face, player, got)
				}
			}
		}
	}
}

func TestSearchDeterministicAcrossFreshEngines(t *testing.T) {
	state := InitialGameState(GameSettings{StartTotal: 66, StartFace: 1, FirstPlayer: PlayerTwo})
	first := freshEngine().Evaluate(state)
	second := freshEngine().Evaluate(state)
	if first != second {
		t.Fatalf("fresh engines disagree: %d vs %d", first, second)
	}
	if first != -1 {
		t.Fatalf("expected mover loss from the full 66 start, got %d", first)
	}
}

func TestSearchResultIndependentOfMoverIdentity(t *testing.T) {
	for _, total := range []int{11, 23, 42, 66} {
		for face := minFace; face <= maxFace; face++ {
			asOne := freshEngine().Evaluate(GameState{LastMove: face, Total: total, ToMove: PlayerOne})
			asTwo := freshEngine().Evaluate(GameState{LastMove: face, Total: total, ToMove: PlayerTwo})
			if asOne != asTwo {
				t.Fatalf("total=%d face=%d: score depends on mover identity (%d vs %d)", total, face, asOne, asTwo)
			}
		}
	}
}

func TestSearchStoredScoresStayInGameRange(t *testing.T) {
	engine := freshEngine()
	for _, total := range []int{66, 42, 23} {
		for face := minFace; face <= maxFace; face++ {
			score := engine.Evaluate(GameState{LastMove: face, Total: total, ToMove: PlayerOne})
			if score < -1 || score > 1 {
				t.Fatalf("total=%d face=%d: root score %d outside game range", total, face, score)
			}
		}
	}
	entries, count := engine.Table().Entries(0, engine.Table().Capacity())
	if count == 0 {
		t.Fatal("expected stored records after full searches")
	}
	for _, entry := range entries {
		if entry.Score < -1 || entry.Score > 1 {
			t.Fatalf("slot %d holds score %d outside game range", entry.Slot, entry.Score)
		}
		if entry.Depth < 1 {
			t.Fatalf("slot %d holds depth %d", entry.Slot, entry.Depth)
		}
	}
}

func TestSearchDepthGatedReplacementKeepsRootScores(t *testing.T) {
	ungatedConfig := DefaultConfig()
	gatedConfig := DefaultConfig()
	gatedConfig.TtDepthGatedReplace = true
	for total := minStartTotal; total <= maxStartTotal; total++ {
		for face := minFace; face <= maxFace; face++ {
			state := GameState{LastMove: face, Total: total, ToMove: PlayerOne}
			ungated := NewSearchEngine(ungatedConfig).Evaluate(state)
			gated := NewSearchEngine(gatedConfig).Evaluate(state)
			if ungated != gated {
				t.Fatalf("total=%d face=%d: replacement policy changed the root score (%d vs %d)",
					total, face, ungated, gated)
			}
		}
	}
}

func TestSearchStatsAccumulate(t *testing.T) {
	engine := freshEngine()
	state := InitialGameState(GameSettings{StartTotal: 30, StartFace: 2, FirstPlayer: PlayerOne})
	engine.Evaluate(state)
	stats := engine.Stats()
	if stats.Nodes == 0 || stats.LeafNodes == 0 || stats.TTStores == 0 {
		t.Fatalf("expected non-zero counters, got %+v", stats)
	}
	if stats.TTStores != engine.Table().Stores() {
		t.Fatalf("engine counted %d stores, table counted %d", stats.TTStores, engine.Table().Stores())
	}
	engine.ResetStats()
	if engine.Stats().Nodes != 0 {
		t.Fatal("ResetStats left node count behind")
	}
}
