package main

import "fmt"

const (
	minFace = 1
	maxFace = 6

	minStartTotal = 11
	maxStartTotal = 66
)

// Rules implements the subtractive dice rule set: each turn the mover picks a
// face other than the one just played and other than its complement to seven,
// and subtracts it from the running total. Driving the total to zero or below
// loses for the mover (misère), so the player to move next is recorded as the
// winner of a terminal state.
type Rules struct{}

func NewRules() Rules {
	return Rules{}
}

// LegalFaces returns the four playable faces in ascending order. The order is
// load-bearing: move selection breaks ties toward the last enumerated
// successor, so callers must not reorder.
func (r Rules) LegalFaces(lastMove int) []int {
	faces := make([]int, 0, 4)
	for face := minFace; face <= maxFace; face++ {
		if face == lastMove || face == 7-lastMove {
			continue
		}
		faces = append(faces, face)
	}
	return faces
}

// ApplyMove builds the successor reached by playing face. Pure: the input
// state is left untouched.
func (r Rules) ApplyMove(state GameState, face int) GameState {
	next := GameState{
		LastMove: face,
		Total:    state.Total - face,
		ToMove:   otherPlayer(state.ToMove),
	}
	if next.Total <= 0 {
		next.Winner = next.ToMove
	}
	return next
}

// LegalSuccessors expands the state in LegalFaces order.
func (r Rules) LegalSuccessors(state GameState) []GameState {
	faces := r.LegalFaces(state.LastMove)
	successors := make([]GameState, 0, len(faces))
	for _, face := range faces {
		successors = append(successors, r.ApplyMove(state, face))
	}
	return successors
}

func (r Rules) IsTerminal(state GameState) bool {
	return state.Total <= 0
}

// EvaluateTerminal is the leaf evaluation, always from the absolute
// (PlayerOne-positive) perspective: +1, -1, or 0 when undecided.
func (r Rules) EvaluateTerminal(state GameState) int {
	return int(state.Winner)
}

// IsLegalFace validates a human move against the current state.
func (r Rules) IsLegalFace(state GameState, face int) (bool, string) {
	if face < minFace || face > maxFace {
		return false, fmt.Sprintf("face %d out of range", face)
	}
	if face == state.LastMove {
		return false, fmt.Sprintf("face %d was just played", face)
	}
	if face == 7-state.LastMove {
		return false, fmt.Sprintf("face %d is the complement of the last move", face)
	}
	return true, ""
}
