package search

import (
	"math"
	"sync/atomic"

	"github.com/jgilchrist/tcheran/internal/board"
	"github.com/jgilchrist/tcheran/internal/eval"
)

// Search bounds and mate scoring, shared with internal/eval.
const (
	Infinity  = eval.Infinity
	MateScore = eval.MateScore
	MaxPly    = 128
)

// Reverse futility pruning margin per remaining depth ply.
const rfpMarginPerDepth = 85

// Null move pruning: minimum depth to try it, and the reduction applied.
const (
	nmpMinDepth  = 3
	nmpBaseR     = 3
)

// Late move reductions: moves tried after this many at a given depth start
// being searched at reduced depth.
const lmrMinMoveCount = 3
const lmrMinDepth = 3

// lmrReductions[depth][moveCount] is a Stockfish-style logarithmic table,
// computed once at init time rather than with a log() call per move.
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			r := 0.2 + math.Log(float64(d))*math.Log(float64(m))*0.5
			lmrReductions[d][m] = int(r)
		}
	}
}

// PVTable stores the principal variation collected during search, one row
// per ply in triangular form.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

func (pv *PVTable) clear() {
	for i := range pv.length {
		pv.length[i] = 0
	}
}

func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][0] = m
	for i := 0; i < pv.length[ply+1]; i++ {
		pv.moves[ply][i+1] = pv.moves[ply+1][i]
	}
	pv.length[ply] = pv.length[ply+1] + 1
}

// Line returns the collected principal variation from the root.
func (pv *PVTable) Line() []board.Move {
	n := pv.length[0]
	line := make([]board.Move, n)
	copy(line, pv.moves[0][:n])
	return line
}

// Searcher runs a single-threaded negamax search against a shared
// transposition table, tracking enough per-search state (orderer, PV,
// node count, stop flag, position history for repetition detection) for
// one search at a time.
type Searcher struct {
	tt       *TranspositionTable
	orderer  *MoveOrderer
	pv       PVTable
	nodes    uint64
	selDepth int
	stopFlag *atomic.Bool
	timeMan  *TimeManager

	history []uint64 // zobrist hashes of positions played this game, for repetition
	rootPos *board.Position
}

// NewSearcher creates a searcher sharing tt across searches (e.g. across
// moves in a game, or concurrently with a future multi-threaded search).
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:       tt,
		orderer:  NewMoveOrderer(),
		stopFlag: &atomic.Bool{},
	}
}

// SetTimeManager supplies the time manager whose hard limit negamax and
// quiescence poll at node granularity, so a search aborts mid-iteration
// rather than only between iterations.
func (s *Searcher) SetTimeManager(tm *TimeManager) {
	s.timeMan = tm
}

// checkTime polls the hard time limit every few thousand nodes rather than
// every node, to keep the cost of the check off the hot path, and sets the
// stop flag once it's exceeded so every frame above unwinds immediately.
func (s *Searcher) checkTime() bool {
	if s.stopFlag.Load() {
		return true
	}
	if s.timeMan != nil && s.nodes&4095 == 0 && s.timeMan.ShouldStop() {
		s.stopFlag.Store(true)
		return true
	}
	return false
}

// SetRootHistory supplies the hashes of positions already played this
// game, oldest first, used to detect repetition draws reachable from the
// search tree.
func (s *Searcher) SetRootHistory(hashes []uint64) {
	s.history = append(s.history[:0], hashes...)
}

// Stop requests that an in-progress search return as soon as it next
// checks the stop flag.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears the stop flag and node counter ahead of a new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.selDepth = 0
}

// ClearOrderer resets killers and halves history, used on ucinewgame.
func (s *Searcher) ClearOrderer() {
	s.orderer.Clear()
}

// Nodes returns the number of nodes visited by the most recent search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// SelDepth returns the deepest ply reached by the most recent search,
// including quiescence, for the UCI "seldepth" info field.
func (s *Searcher) SelDepth() int {
	return s.selDepth
}

// PV returns the principal variation collected by the most recent
// SearchDepth call.
func (s *Searcher) PV() []board.Move {
	return s.pv.Line()
}

// SearchDepth runs a fixed-depth search from pos within [alpha, beta],
// returning the best move found and its score. A zero move means no PV was
// recorded: the search was stopped before a root move completed, every root
// move failed low, or the position has no legal moves.
func (s *Searcher) SearchDepth(pos *board.Position, depth, alpha, beta int) (board.Move, int) {
	s.rootPos = pos
	s.pv.clear()
	s.history = append(s.history, pos.Hash)
	defer func() { s.history = s.history[:len(s.history)-1] }()

	score := s.negamax(pos, depth, 0, alpha, beta, true)
	line := s.pv.Line()
	if len(line) == 0 {
		return board.NoMove, score
	}
	return line[0], score
}

// isDraw reports whether pos is drawn by the fifty-move rule, threefold
// repetition, or insufficient material.
func (s *Searcher) isDraw(pos *board.Position) bool {
	if pos.HalfMoveClock >= 100 {
		return true
	}
	if pos.IsInsufficientMaterial() {
		return true
	}
	count := 0
	for _, h := range s.history {
		if h == pos.Hash {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// negamax searches pos to depth plies from the root, returning a score
// from the side-to-move's perspective. ply counts plies from the root, used
// for mate-score distance and PV/killer indexing; depth counts plies
// remaining. doNull disables null-move pruning for the move right after a
// null move, avoiding two nulls in a row.
func (s *Searcher) negamax(pos *board.Position, depth, ply, alpha, beta int, doNull bool) int {
	s.pv.length[ply] = 0
	s.nodes++
	if ply > s.selDepth {
		s.selDepth = ply
	}

	if s.checkTime() {
		return 0
	}

	isRoot := ply == 0
	isPV := beta-alpha > 1

	if !isRoot {
		if s.isDraw(pos) {
			return 0
		}
		// Mate-distance pruning: a shorter mate found elsewhere in the tree
		// already beats anything this node could return.
		alpha = maxInt(alpha, -MateScore+ply)
		beta = minInt(beta, MateScore-ply-1)
		if alpha >= beta {
			return alpha
		}
	}

	inCheck := pos.InCheck()

	if depth <= 0 && !inCheck {
		return s.quiescence(pos, ply, alpha, beta)
	}
	if ply >= MaxPly-1 {
		return eval.Evaluate(pos)
	}

	var ttMove board.Move
	if entry, ok := s.tt.Probe(pos.Hash); ok {
		ttMove = entry.BestMove
		if !isPV && int(entry.Depth) >= depth {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score >= beta {
					return score
				}
			case TTUpperBound:
				if score <= alpha {
					return score
				}
			}
		}
	}

	staticEval := eval.Evaluate(pos)

	// Reverse futility pruning: if static eval already beats beta by more
	// than depth warrants, assume a real search would too and cut early.
	if !isPV && !inCheck && depth <= 6 && depth > 0 {
		margin := rfpMarginPerDepth * depth
		if staticEval-margin >= beta && absInt(beta) < MateScore-MaxPly {
			return staticEval - margin
		}
	}

	// Null move pruning: give the opponent a free move and see if we still
	// beat beta; if even doing nothing leaves us ahead, the position is
	// strong enough to prune without searching it fully.
	if doNull && !isPV && !inCheck && depth >= nmpMinDepth && staticEval >= beta && pos.HasNonPawnMaterial() {
		undo := pos.MakeNullMove()
		r := nmpBaseR + depth/6
		score := -s.negamax(pos, depth-1-r, ply+1, -beta, -beta+1, false)
		pos.UnmakeNullMove(undo)
		if s.stopFlag.Load() {
			return 0
		}
		if score >= beta {
			return score
		}
	}

	picker := NewMovePicker(pos, s.orderer, ply, ttMove, false)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound
	moveCount := 0
	legalMoves := 0
	var quietsTried []board.Move

	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		moveCount++
		isCapture := m.IsCapture(pos)

		undo := pos.MakeMove(m)
		if !undo.Valid {
			pos.UnmakeMove(m, undo)
			continue
		}
		legalMoves++

		s.history = append(s.history, pos.Hash)

		gaveCheck := pos.InCheck()

		extension := 0
		if gaveCheck {
			extension = 1
		}

		newDepth := depth - 1 + extension

		var score int
		if legalMoves > lmrMinMoveCount && depth >= lmrMinDepth && !isCapture && !gaveCheck && !m.IsPromotion() {
			r := lmrReductions[minInt(depth, 63)][minInt(moveCount, 63)]
			if s.orderer.HistoryScore(pos.SideToMove.Other(), m) > 0 {
				r--
			}
			if r < 0 {
				r = 0
			}
			reducedDepth := maxInt(newDepth-r, 0)
			score = -s.negamax(pos, reducedDepth, ply+1, -alpha-1, -alpha, true)
			if score > alpha && r > 0 {
				score = -s.negamax(pos, newDepth, ply+1, -alpha-1, -alpha, true)
			}
		} else if legalMoves > 1 {
			score = -s.negamax(pos, newDepth, ply+1, -alpha-1, -alpha, true)
		} else {
			score = -s.negamax(pos, newDepth, ply+1, -beta, -alpha, true)
		}

		if legalMoves > 1 && score > alpha && score < beta {
			score = -s.negamax(pos, newDepth, ply+1, -beta, -alpha, true)
		}

		s.history = s.history[:len(s.history)-1]
		pos.UnmakeMove(m, undo)

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m

			if score > alpha {
				alpha = score
				flag = TTExact
				s.pv.update(ply, m)

				if score >= beta {
					flag = TTLowerBound
					if !isCapture {
						s.orderer.UpdateKillers(m, ply)
						s.orderer.UpdateHistory(pos.SideToMove, m, depth, true)
						for _, prev := range quietsTried {
							s.orderer.UpdateHistory(pos.SideToMove, prev, depth, false)
						}
					}
					break
				}
			}
		}

		if !isCapture {
			quietsTried = append(quietsTried, m)
		}
	}

	if legalMoves == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	s.tt.Store(pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove, isPV)

	return bestScore
}

// quiescence extends the search along capture sequences past the nominal
// leaf depth, avoiding the horizon effect where a static eval is taken
// mid-exchange. Delta pruning and a stand-pat cutoff bound the search to
// positions where captures can plausibly still matter.
func (s *Searcher) quiescence(pos *board.Position, ply, alpha, beta int) int {
	s.pv.length[ply] = 0
	s.nodes++
	if ply > s.selDepth {
		s.selDepth = ply
	}

	if s.checkTime() {
		return 0
	}

	if ply >= MaxPly-1 {
		return eval.Evaluate(pos)
	}

	standPat := eval.Evaluate(pos)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	const deltaMargin = 200
	bigDelta := board.PieceValue[board.Queen] + deltaMargin

	var ttMove board.Move
	if entry, ok := s.tt.Probe(pos.Hash); ok {
		ttMove = entry.BestMove
	}

	picker := NewMovePicker(pos, s.orderer, ply, ttMove, true)
	bestScore := standPat

	for {
		m, ok := picker.Next()
		if !ok {
			break
		}

		if standPat+bigDelta <= alpha && !m.IsPromotion() {
			continue
		}

		undo := pos.MakeMove(m)
		if !undo.Valid {
			pos.UnmakeMove(m, undo)
			continue
		}

		score := -s.quiescence(pos, ply+1, -beta, -alpha)
		pos.UnmakeMove(m, undo)

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				s.pv.update(ply, m)
				if score >= beta {
					break
				}
			}
		}
	}

	return bestScore
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
