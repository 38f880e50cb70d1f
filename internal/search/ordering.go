package search

import (
	"github.com/jgilchrist/tcheran/internal/board"
)

// Move ordering priorities. The TT move itself is returned directly by the
// picker's first stage rather than scored against these.
const (
	goodCaptureBase = 1_000_000
	killerScore1    = 900_000
	killerScore2    = 800_000
)

// MVV-LVA (Most Valuable Victim, Least Valuable Attacker) table.
// Indexed [victim][attacker]: rows step by 10 per victim (pawn 15 .. queen
// 55), a cheaper attacker scores higher within a row (knight and bishop
// equal), and a king victim scores 0.
var mvvLva = [6][6]int{
	/*       P   N   B   R   Q   K  (attacker) */
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// pickerScratch holds the fixed-size scoring buffers a MovePicker needs for
// one node, sized to the legal-move ceiling of 256. Owned by the orderer and
// indexed by ply rather than by the picker itself, so picking a move at any
// node never allocates.
type pickerScratch struct {
	captureScores [256]int
	quietScores   [256]int
	badCaptures   [256]board.Move
}

// MoveOrderer holds the per-side butterfly history table, per-ply killer
// slots, and per-ply picker scratch buffers used to score and stage moves.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
	history [2][64][64]int
	scratch [MaxPly]pickerScratch
}

// NewMoveOrderer creates a new, empty move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// scratchFor returns the picker scratch buffers for ply, reused across every
// node reached at that ply (safe since search is single-threaded and never
// has two live nodes at the same ply at once).
func (mo *MoveOrderer) scratchFor(ply int) *pickerScratch {
	return &mo.scratch[ply]
}

// Clear resets killers and halves history scores, used on ucinewgame.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for c := range mo.history {
		for i := range mo.history[c] {
			for j := range mo.history[c][i] {
				mo.history[c][i][j] /= 2
			}
		}
	}
}

// scoreCapture returns the MVV-LVA ordering score for a capture move.
func scoreCapture(pos *board.Position, m board.Move) int {
	attackerPiece := pos.PieceAt(m.From())
	if attackerPiece == board.NoPiece {
		return goodCaptureBase
	}
	attacker := attackerPiece.Type()

	var victim board.PieceType
	if m.IsEnPassant() {
		victim = board.Pawn
	} else {
		captured := pos.PieceAt(m.To())
		if captured == board.NoPiece {
			return goodCaptureBase
		}
		victim = captured.Type()
	}

	if victim >= board.King || attacker > board.King {
		return goodCaptureBase
	}

	score := goodCaptureBase + mvvLva[victim][attacker]*1000
	if board.PieceValue[attacker] < board.PieceValue[victim] {
		score += 10000
	}
	return score
}

// scoreQuiet returns the ordering score for a non-capture, non-promotion
// move: killer slots first, then butterfly history.
func (mo *MoveOrderer) scoreQuiet(us board.Color, m board.Move, ply int) int {
	if m == mo.killers[ply][0] {
		return killerScore1
	}
	if m == mo.killers[ply][1] {
		return killerScore2
	}
	return mo.history[us][m.From()][m.To()]
}

// UpdateKillers records a quiet move that caused a beta cutoff at ply,
// shifting the previous first killer into the second slot.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly {
		return
	}
	if mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory applies a depth-squared bonus (cutoff move) or penalty
// (quiet moves tried and rejected before the cutoff) to the butterfly
// table, with gravity-style rescaling to bound the range.
func (mo *MoveOrderer) UpdateHistory(us board.Color, m board.Move, depth int, isGood bool) {
	from, to := m.From(), m.To()
	bonus := depth * depth

	if isGood {
		mo.history[us][from][to] += bonus
		if mo.history[us][from][to] > 400000 {
			for i := range mo.history[us] {
				for j := range mo.history[us][i] {
					mo.history[us][i][j] /= 2
				}
			}
		}
	} else {
		mo.history[us][from][to] -= bonus
		if mo.history[us][from][to] < -400000 {
			mo.history[us][from][to] = -400000
		}
	}
}

// HistoryScore returns the current butterfly history score for a move,
// used by late move reductions to shrink the reduction for historically
// good quiets.
func (mo *MoveOrderer) HistoryScore(us board.Color, m board.Move) int {
	return mo.history[us][m.From()][m.To()]
}
