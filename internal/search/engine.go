package search

import (
	"time"

	"github.com/jgilchrist/tcheran/internal/board"
)

// Info reports the progress of one completed iterative-deepening
// iteration, suitable for formatting as a UCI "info" line.
type Info struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int
}

// Engine drives iterative deepening with aspiration windows over a single
// Searcher, and is the entry point the UCI layer calls into.
type Engine struct {
	searcher *Searcher
	tt       *TranspositionTable
	timeMan  *TimeManager

	OnInfo func(Info)
}

// NewEngine creates an engine with a transposition table of ttSizeMB
// megabytes and the given move overhead.
func NewEngine(ttSizeMB int, moveOverhead time.Duration) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	return &Engine{
		searcher: NewSearcher(tt),
		tt:       tt,
		timeMan:  NewTimeManager(moveOverhead),
	}
}

// SetMoveOverhead updates the move overhead used by future searches.
func (e *Engine) SetMoveOverhead(d time.Duration) {
	e.timeMan.SetMoveOverhead(d)
}

// Resize replaces the transposition table with one of the given size,
// discarding its contents.
func (e *Engine) Resize(ttSizeMB int) {
	e.tt = NewTranspositionTable(ttSizeMB)
	e.searcher = NewSearcher(e.tt)
}

// SetRootHistory supplies the hashes of positions already played this
// game, for repetition detection.
func (e *Engine) SetRootHistory(hashes []uint64) {
	e.searcher.SetRootHistory(hashes)
}

// Search runs iterative deepening from pos under limits, reporting each
// completed iteration via OnInfo, and returns the best move found.
// ply is the position's game ply, used by the time manager's sudden-death
// estimate.
func (e *Engine) Search(pos *board.Position, limits Limits, ply int) board.Move {
	e.searcher.Reset()
	e.searcher.SetTimeManager(e.timeMan)
	e.tt.NewSearch()
	e.timeMan.Init(limits, pos.SideToMove, ply)

	startTime := time.Now()

	maxDepth := MaxPly
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	var bestMove board.Move
	var bestScore int
	stability := 0

	const initialWindow = 50

	for depth := 1; depth <= maxDepth; depth++ {
		if e.timeMan.ShouldStop() && depth > 1 {
			break
		}

		var move board.Move
		var score int

		if depth >= 5 && bestMove != board.NoMove {
			delta := initialWindow
			alpha := bestScore - delta
			beta := bestScore + delta

			for {
				move, score = e.searcher.SearchDepth(pos, depth, alpha, beta)
				if e.searcher.stopFlag.Load() {
					break
				}
				if score <= alpha && alpha > -Infinity {
					delta *= 2
					alpha = max(bestScore-delta, -Infinity)
				} else if score >= beta && beta < Infinity {
					delta *= 2
					beta = min(bestScore+delta, Infinity)
				} else {
					break
				}
			}
		} else {
			move, score = e.searcher.SearchDepth(pos, depth, -Infinity, Infinity)
		}

		if e.searcher.stopFlag.Load() {
			break
		}

		if move == bestMove {
			stability++
		} else {
			stability = 0
			if depth > 1 {
				e.timeMan.AdjustForInstability(1)
			}
		}
		if move != board.NoMove {
			bestMove = move
			bestScore = score
		}
		e.timeMan.AdjustForStability(stability)

		if e.OnInfo != nil {
			e.OnInfo(Info{
				Depth:    depth,
				SelDepth: e.searcher.SelDepth(),
				Score:    bestScore,
				Nodes:    e.searcher.Nodes(),
				Time:     time.Since(startTime),
				PV:       e.searcher.PV(),
				HashFull: e.tt.HashFull(),
			})
		}

		if bestScore > MateScore-MaxPly || bestScore < -MateScore+MaxPly {
			break
		}

		if limits.Nodes > 0 && e.searcher.Nodes() >= limits.Nodes {
			break
		}

		if !limits.Infinite && limits.MoveTime == 0 && limits.Depth == 0 && e.timeMan.PastOptimum() {
			break
		}
	}

	return bestMove
}

// Stop requests that the current search return as soon as possible.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear resets the transposition table and move-ordering state, used on
// ucinewgame.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.ClearOrderer()
}

// Perft counts the leaf nodes of the legal move tree rooted at pos to the
// given depth, used to validate move generation.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}
	return nodes
}

