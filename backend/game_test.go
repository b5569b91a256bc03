package main

import "testing"

func humanSettings(total, face int, first PlayerID) GameSettings {
	return GameSettings{
		StartTotal:    total,
		StartFace:     face,
		FirstPlayer:   first,
		PlayerOneType: PlayerHuman,
		PlayerTwoType: PlayerHuman,
	}
}

func TestGameStatusFlow(t *testing.T) {
	game := NewGame(humanSettings(20, 2, PlayerOne))
	if game.Status() != StatusNotStarted {
		t.Fatalf("fresh game status %d", game.Status())
	}
	if ok, reason := game.TryApplyMove(NewMove(3)); ok || reason == "" {
		t.Fatal("moves must be rejected before Start")
	}
	game.Start()
	if game.Status() != StatusRunning {
		t.Fatalf("started game status %d", game.Status())
	}
}

func TestGameRejectsIllegalMoves(t *testing.T) {
	game := NewGame(humanSettings(20, 2, PlayerOne))
	game.Start()
	for _, face := range []int{2, 5, 0, 7} {
		if ok, _ := game.TryApplyMove(NewMove(face)); ok {
			t.Fatalf("face %d accepted from last move 2", face)
		}
		if game.LastError() == "" {
			t.Fatalf("face %d left no error", face)
		}
	}
	if game.State().Total != 20 || game.History().Size() != 0 {
		t.Fatal("rejected moves must not change the game")
	}
	if ok, _ := game.TryApplyMove(NewMove(3)); !ok {
		t.Fatal("legal face 3 rejected")
	}
	if game.LastError() != "" {
		t.Fatal("legal move must clear the error")
	}
}

func TestGameWinGoesToNonMover(t *testing.T) {
	game := NewGame(humanSettings(11, 1, PlayerOne))
	game.Start()
	if ok, _ := game.TryApplyMove(NewMove(5)); !ok {
		t.Fatal("face 5 rejected")
	}
	if ok, _ := game.TryApplyMove(NewMove(6)); !ok {
		t.Fatal("face 6 rejected")
	}
	if game.State().Total != 0 {
		t.Fatalf("expected total 0, got %d", game.State().Total)
	}
	if game.Status() != StatusPlayerOneWon {
		t.Fatalf("PlayerTwo drove the total to zero and must lose, status %d", game.Status())
	}
	if game.History().Size() != 2 {
		t.Fatalf("expected 2 history entries, got %d", game.History().Size())
	}
	entries := game.History().All()
	if entries[0].Player != PlayerOne || entries[0].TotalAfter != 6 {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Player != PlayerTwo || entries[1].TotalAfter != 0 {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
	if ok, _ := game.TryApplyMove(NewMove(2)); ok {
		t.Fatal("moves must be rejected after the game is decided")
	}
}

func TestGameTickAppliesPendingHumanMove(t *testing.T) {
	game := NewGame(humanSettings(20, 2, PlayerOne))
	game.Start()
	if !game.CurrentPlayerIsHuman() {
		t.Fatal("expected a human to move")
	}
	if game.Tick() {
		t.Fatal("tick without a pending move applied something")
	}
	if !game.SubmitHumanMove(NewMove(4)) {
		t.Fatal("human move submission rejected")
	}
	if !game.Tick() {
		t.Fatal("tick did not apply the pending move")
	}
	if game.State().Total != 16 || game.State().ToMove != PlayerTwo {
		t.Fatalf("unexpected state after tick: %+v", game.State())
	}
}

func TestGameAISelfPlayTerminates(t *testing.T) {
	settings := GameSettings{
		StartTotal:    20,
		StartFace:     3,
		FirstPlayer:   PlayerOne,
		PlayerOneType: PlayerAI,
		PlayerTwoType: PlayerAI,
	}
	game := NewGame(settings)
	game.Start()
	for i := 0; i < 30 && game.Status() == StatusRunning; i++ {
		if !game.Tick() {
			t.Fatal("AI tick applied no move while the game was running")
		}
	}
	if game.Status() != StatusPlayerOneWon && game.Status() != StatusPlayerTwoWon {
		t.Fatalf("self-play did not finish, status %d", game.Status())
	}
	last := settings.StartFace
	mover := settings.FirstPlayer
	total := settings.StartTotal
	for i, entry := range game.History().All() {
		if entry.Move.Face == last || entry.Move.Face == 7-last {
			t.Fatalf("entry %d plays illegal face %d after %d", i, entry.Move.Face, last)
		}
		if entry.Player != mover {
			t.Fatalf("entry %d played by %s, expected %s", i, entry.Player, mover)
		}
		if !entry.IsAi {
			t.Fatalf("entry %d not marked as an AI move", i)
		}
		total -= entry.Move.Face
		if entry.TotalAfter != total {
			t.Fatalf("entry %d records total %d, expected %d", i, entry.TotalAfter, total)
		}
		last = entry.Move.Face
		mover = otherPlayer(mover)
	}
	if total > 0 {
		t.Fatalf("final total %d is not terminal", total)
	}
	if game.State().Winner != mover {
		t.Fatalf("winner %s must be the player who was due to move next, got %s", mover, game.State().Winner)
	}
}

func TestSubmitHumanMoveRejectedOnAITurn(t *testing.T) {
	settings := humanSettings(20, 2, PlayerOne)
	settings.PlayerOneType = PlayerAI
	game := NewGame(settings)
	game.Start()
	if game.CurrentPlayerIsHuman() {
		t.Fatal("expected the AI to move")
	}
	if game.SubmitHumanMove(NewMove(3)) {
		t.Fatal("human move accepted on an AI turn")
	}
}

func TestGameSettingsNormalize(t *testing.T) {
	raw := GameSettings{StartTotal: 500, StartFace: 0, FirstPlayer: 3}
	normalized := raw.Normalize()
	if normalized.StartTotal != maxStartTotal {
		t.Fatalf("total not clamped: %d", normalized.StartTotal)
	}
	if normalized.StartFace != minFace {
		t.Fatalf("face not clamped: %d", normalized.StartFace)
	}
	if normalized.FirstPlayer != PlayerTwo {
		t.Fatalf("invalid first player not defaulted: %d", normalized.FirstPlayer)
	}
	raw = GameSettings{StartTotal: 5, StartFace: 9, FirstPlayer: PlayerOne}
	normalized = raw.Normalize()
	if normalized.StartTotal != minStartTotal || normalized.StartFace != maxFace || normalized.FirstPlayer != PlayerOne {
		t.Fatalf("unexpected normalization %+v", normalized)
	}
}
