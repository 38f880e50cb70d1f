// Package eval scores a position: material plus piece-square tables,
// tapered between midgame and endgame by remaining material.
package eval

import "github.com/jgilchrist/tcheran/internal/board"

// Mate and search-window bounds shared with the search package. Kept here
// too since callers often need to recognise a mate-range score without
// importing search.
const (
	Infinity  = 30000
	MateScore = 29000
)

// Evaluate returns the static evaluation of pos from the side-to-move's
// perspective: positive favours the side to move.
func Evaluate(pos *board.Position) int {
	phase := pos.GamePhase()
	mg := int(pos.EvalMG)
	eg := int(pos.EvalEG)
	score := (mg*phase + eg*(24-phase)) / 24

	if pos.SideToMove == board.Black {
		score = -score
	}
	return score + tempoBonus
}

// tempoBonus rewards the side on move for having it, a cheap approximation
// of the advantage of choosing the next move rather than having it chosen
// for you.
const tempoBonus = 10

// Material returns the raw material balance from White's perspective,
// ignoring position entirely. Exposed as a cheaper alternative to the full
// tapered score; quiescence uses board.PieceValue directly rather than
// this function.
func Material(pos *board.Position) int {
	return pos.Material()
}
