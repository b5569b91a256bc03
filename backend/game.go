package main

import (
	"log"
	"time"
)

type Game struct {
	settings  GameSettings
	rules     Rules
	state     GameState
	status    GameStatus
	history   MoveHistory
	playerOne IPlayer
	playerTwo IPlayer
	lastError string
	turnStart time.Time
}

func NewGame(settings GameSettings) Game {
	g := Game{}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	g.settings = settings.Normalize()
	g.rules = NewRules()
	g.state = InitialGameState(g.settings)
	g.status = StatusNotStarted
	g.history.Clear()
	g.lastError = ""
	g.createPlayers()
	g.turnStart = time.Now()
	g.logMatchup()
}

func (g *Game) Start() {
	if g.status == StatusNotStarted {
		g.status = StatusRunning
		g.turnStart = time.Now()
	}
}

func (g *Game) State() GameState {
	return g.state
}

func (g *Game) Status() GameStatus {
	return g.status
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) History() MoveHistory {
	return g.history
}

func (g *Game) LastError() string {
	return g.lastError
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

func (g *Game) createPlayers() {
	g.playerOne = g.buildPlayer(g.settings.PlayerOneType)
	g.playerTwo = g.buildPlayer(g.settings.PlayerTwoType)
}

func (g *Game) buildPlayer(playerType PlayerType) IPlayer {
	if playerType == PlayerAI {
		return NewAIPlayer()
	}
	return NewHumanPlayer()
}

func (g *Game) currentPlayer() IPlayer {
	if g.state.ToMove == PlayerOne {
		return g.playerOne
	}
	return g.playerTwo
}

func (g *Game) CurrentPlayerIsHuman() bool {
	player := g.currentPlayer()
	return player != nil && player.IsHuman()
}

func (g *Game) SubmitHumanMove(move Move) bool {
	human, ok := g.currentPlayer().(*HumanPlayer)
	if !ok {
		return false
	}
	human.SetPendingMove(move)
	return true
}

// TryApplyMove validates and plays one face for the side to move, records it
// in the history, and settles the game when the total drops to zero or below.
func (g *Game) TryApplyMove(move Move) (bool, string) {
	if g.status != StatusRunning {
		return false, "game not running"
	}
	if ok, reason := g.rules.IsLegalFace(g.state, move.Face); !ok {
		g.lastError = "Illegal move: " + reason
		return false, g.lastError
	}
	g.lastError = ""
	mover := g.state.ToMove
	player := g.currentPlayer()
	isAiMove := player != nil && !player.IsHuman()
	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())

	g.state = g.rules.ApplyMove(g.state, move.Face)
	entry := HistoryEntry{
		Move:       move,
		Player:     mover,
		TotalAfter: g.state.Total,
		ElapsedMs:  elapsedMs,
		IsAi:       isAiMove,
	}
	g.history.Push(entry)
	g.logMovePlayed(entry)

	if g.rules.IsTerminal(g.state) {
		g.status = statusForWinner(g.state.Winner)
		g.logWin(g.state.Winner)
		return true, ""
	}
	g.turnStart = time.Now()
	return true, ""
}

// Tick advances the game by at most one move: a pending human move if one was
// submitted, or a fresh AI move for an AI side. Returns whether a move was
// applied.
func (g *Game) Tick() bool {
	if g.status != StatusRunning {
		return false
	}
	player := g.currentPlayer()
	if player == nil {
		return false
	}
	if player.IsHuman() {
		human, ok := player.(*HumanPlayer)
		if ok && human.HasPendingMove() {
			applied, _ := g.TryApplyMove(human.TakePendingMove())
			return applied
		}
		return false
	}
	move := player.ChooseMove(g.state, g.rules)
	if !move.IsValid() {
		return false
	}
	applied, _ := g.TryApplyMove(move)
	return applied
}

func (g *Game) logMatchup() {
	if !GetConfig().LogMoves {
		return
	}
	log.Printf("[game] new game total=%d face=%d first=%s p1=%s p2=%s",
		g.settings.StartTotal, g.settings.StartFace, g.settings.FirstPlayer,
		playerTypeName(g.settings.PlayerOneType), playerTypeName(g.settings.PlayerTwoType))
}

func (g *Game) logMovePlayed(entry HistoryEntry) {
	if !GetConfig().LogMoves {
		return
	}
	log.Printf("[game] %s played %d, total %d (%.0fms, ai=%t)",
		entry.Player, entry.Move.Face, entry.TotalAfter, entry.ElapsedMs, entry.IsAi)
}

func (g *Game) logWin(winner PlayerID) {
	if !GetConfig().LogMoves {
		return
	}
	log.Printf("[game] %s wins: opponent drove the total to %d", winner, g.state.Total)
}

func playerTypeName(playerType PlayerType) string {
	if playerType == PlayerAI {
		return "ai"
	}
	return "human"
}
