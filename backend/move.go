package main

// Move is one played die face. Depth carries the search depth that produced
// an AI move, for history display only.
type Move struct {
	Face  int `json:"face"`
	Depth int `json:"depth,omitempty"`
}

func NewMove(face int) Move {
	return Move{Face: face}
}

func (m Move) IsValid() bool {
	return m.Face >= minFace && m.Face <= maxFace
}

func (m Move) Equals(other Move) bool {
	return m.Face == other.Face
}
