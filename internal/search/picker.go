package search

import "github.com/jgilchrist/tcheran/internal/board"

type pickerStage int

const (
	stageTT pickerStage = iota
	stageGenCaptures
	stageGoodCaptures
	stageKillers
	stageGenQuiets
	stageQuiets
	stageBadCaptures
	stageDone
)

// MovePicker yields legal moves for a node one at a time, in an order
// chosen to maximise the chance of an early beta cutoff: TT move, good
// captures (MVV-LVA, SEE-filtered), killers, quiet moves (selection-sorted
// by history on demand), and finally captures SEE judged as losing. In
// quiescence mode it yields only the TT move followed by captures and
// promotions, skipping killers and quiets entirely.
type MovePicker struct {
	pos         *board.Position
	orderer     *MoveOrderer
	ply         int
	ttMove      board.Move
	quiescence  bool
	ttYielded   bool

	stage pickerStage

	captures      *board.MoveList
	captureScores []int
	capIndex      int
	badCaptures   []board.Move
	badCount      int
	badIndex      int

	killerIndex int

	quiets      *board.MoveList
	quietScores []int
	quietIndex  int
}

// NewMovePicker creates a picker for the position pos at search ply, with
// ttMove (board.NoMove if none) tried first. Scoring buffers come from the
// orderer's per-ply scratch space rather than being allocated here, since a
// picker is created fresh at every node.
func NewMovePicker(pos *board.Position, orderer *MoveOrderer, ply int, ttMove board.Move, quiescence bool) *MovePicker {
	scratch := orderer.scratchFor(ply)
	return &MovePicker{
		pos:           pos,
		orderer:       orderer,
		ply:           ply,
		ttMove:        ttMove,
		quiescence:    quiescence,
		stage:         stageTT,
		captureScores: scratch.captureScores[:0],
		quietScores:   scratch.quietScores[:0],
		badCaptures:   scratch.badCaptures[:0],
	}
}

// pickBest does one selection-sort step: swap the best-scoring remaining
// move into index i.
func pickBest(moves *board.MoveList, scores []int, i int) {
	best := i
	for j := i + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		moves.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
}

// Next returns the next move to try, or (NoMove, false) once exhausted.
func (mp *MovePicker) Next() (board.Move, bool) {
	for {
		switch mp.stage {
		case stageTT:
			mp.stage = stageGenCaptures
			if mp.ttMove != board.NoMove && mp.ttMoveIsUsable() {
				mp.ttYielded = true
				return mp.ttMove, true
			}

		case stageGenCaptures:
			mp.captures = mp.pos.GenerateCaptures()
			n := mp.captures.Len()
			mp.captureScores = mp.captureScores[:n]
			for i := 0; i < n; i++ {
				mp.captureScores[i] = scoreCapture(mp.pos, mp.captures.Get(i))
			}
			mp.stage = stageGoodCaptures

		case stageGoodCaptures:
			for mp.capIndex < mp.captures.Len() {
				pickBest(mp.captures, mp.captureScores, mp.capIndex)
				m := mp.captures.Get(mp.capIndex)
				mp.capIndex++
				if m == mp.ttMove {
					continue
				}
				if !mp.quiescence && m.IsCapture(mp.pos) && SEE(mp.pos, m) < 0 {
					mp.badCaptures = append(mp.badCaptures, m)
					mp.badCount++
					continue
				}
				return m, true
			}
			if mp.quiescence {
				mp.stage = stageDone
			} else {
				mp.stage = stageKillers
			}

		case stageKillers:
			for mp.killerIndex < 2 {
				k := mp.orderer.killers[mp.ply][mp.killerIndex]
				mp.killerIndex++
				if k == board.NoMove || k == mp.ttMove {
					continue
				}
				if !mp.isPseudoLegalQuiet(k) {
					continue
				}
				return k, true
			}
			mp.stage = stageGenQuiets

		case stageGenQuiets:
			mp.quiets = mp.pos.GenerateQuiets()
			n := mp.quiets.Len()
			mp.quietScores = mp.quietScores[:n]
			us := mp.pos.SideToMove
			for i := 0; i < n; i++ {
				mp.quietScores[i] = mp.orderer.scoreQuiet(us, mp.quiets.Get(i), mp.ply)
			}
			mp.stage = stageQuiets

		case stageQuiets:
			for mp.quietIndex < mp.quiets.Len() {
				pickBest(mp.quiets, mp.quietScores, mp.quietIndex)
				m := mp.quiets.Get(mp.quietIndex)
				mp.quietIndex++
				if m == mp.ttMove {
					continue
				}
				if m == mp.orderer.killers[mp.ply][0] || m == mp.orderer.killers[mp.ply][1] {
					continue
				}
				return m, true
			}
			mp.stage = stageBadCaptures

		case stageBadCaptures:
			if mp.badIndex < mp.badCount {
				m := mp.badCaptures[mp.badIndex]
				mp.badIndex++
				return m, true
			}
			mp.stage = stageDone

		case stageDone:
			return board.NoMove, false
		}
	}
}

// ttMoveIsUsable does a cheap sanity check on the TT move before trying
// it: the piece must exist and belong to the side to move. MakeMove then
// rejects it only if it leaves the mover's king attacked; whether the piece
// can actually make that move is not checked.
func (mp *MovePicker) ttMoveIsUsable() bool {
	piece := mp.pos.PieceAt(mp.ttMove.From())
	return piece != board.NoPiece && piece.Color() == mp.pos.SideToMove
}

// isPseudoLegalQuiet checks a killer is still a legal quiet move in the
// current position before yielding it (killers persist across positions
// at the same ply and can go stale).
func (mp *MovePicker) isPseudoLegalQuiet(m board.Move) bool {
	piece := mp.pos.PieceAt(m.From())
	if piece == board.NoPiece || piece.Color() != mp.pos.SideToMove {
		return false
	}
	if m.IsCapture(mp.pos) || m.IsPromotion() {
		return false
	}
	return mp.pos.GenerateQuiets().Contains(m)
}
