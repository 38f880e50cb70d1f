package search

import (
	"time"

	"github.com/jgilchrist/tcheran/internal/board"
)

// Limits carries the UCI "go" command's time-control and search-bound
// parameters.
type Limits struct {
	Time      [2]time.Duration // wtime, btime: remaining time for each color
	Inc       [2]time.Duration // winc, binc: increment per move
	MovesToGo int              // moves until next time control, 0 = sudden death
	MoveTime  time.Duration    // fixed time for this move, overrides the clock
	Depth     int              // maximum depth, 0 = no limit
	Nodes     uint64           // maximum nodes, 0 = no limit
	Infinite  bool             // search until stopped
}

// noClockDefault is the budget used when a "go" command carries no time
// control at all (no wtime/btime, no movetime, not infinite) — a single
// move gets this much time rather than running forever.
const noClockDefault = 60 * time.Second

// TimeManager allocates a soft (optimum) and hard (maximum) time budget
// for one search, and tracks elapsed time against it.
type TimeManager struct {
	optimumTime  time.Duration
	maximumTime  time.Duration
	startTime    time.Time
	moveOverhead time.Duration
}

// NewTimeManager creates a time manager with the given move overhead — a
// safety margin subtracted from the clock to account for UCI round-trip
// and GUI latency.
func NewTimeManager(moveOverhead time.Duration) *TimeManager {
	return &TimeManager{moveOverhead: moveOverhead}
}

// SetMoveOverhead updates the move overhead, e.g. from a UCI setoption
// command.
func (tm *TimeManager) SetMoveOverhead(d time.Duration) {
	tm.moveOverhead = d
}

// Init computes the optimum and maximum budgets for a search starting now,
// given limits and the side to move at game ply ply.
func (tm *TimeManager) Init(limits Limits, us board.Color, ply int) {
	tm.startTime = time.Now()

	if limits.MoveTime > 0 {
		mt := limits.MoveTime - tm.moveOverhead
		if mt < time.Millisecond {
			mt = time.Millisecond
		}
		tm.optimumTime = mt
		tm.maximumTime = mt
		return
	}

	if limits.Infinite {
		tm.optimumTime = 365 * 24 * time.Hour
		tm.maximumTime = 365 * 24 * time.Hour
		return
	}

	if limits.Time[us] == 0 {
		tm.optimumTime = noClockDefault
		tm.maximumTime = noClockDefault
		return
	}

	timeLeft := limits.Time[us] - tm.moveOverhead
	if timeLeft < 0 {
		timeLeft = 0
	}
	inc := limits.Inc[us]

	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	baseTime := timeLeft / time.Duration(mtg)
	baseTime += inc * 9 / 10

	tm.optimumTime = baseTime
	if ply < 8 {
		tm.optimumTime = baseTime * 85 / 100
	}

	maxFromOptimum := tm.optimumTime * 5
	maxFromRemaining := timeLeft * 8 / 10
	if maxFromOptimum < maxFromRemaining {
		tm.maximumTime = maxFromOptimum
	} else {
		tm.maximumTime = maxFromRemaining
	}

	safetyMargin := timeLeft * 95 / 100
	if tm.maximumTime > safetyMargin {
		tm.maximumTime = safetyMargin
	}

	if tm.optimumTime < 10*time.Millisecond {
		tm.optimumTime = 10 * time.Millisecond
	}
	if tm.maximumTime < 50*time.Millisecond {
		tm.maximumTime = 50 * time.Millisecond
	}
}

// Elapsed returns the time elapsed since Init.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// OptimumTime returns the soft budget: iterative deepening should not
// start a new iteration once this elapses.
func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

// MaximumTime returns the hard budget: the search must abort once this
// elapses, even mid-iteration.
func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// ShouldStop reports whether the hard budget has elapsed.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.maximumTime
}

// PastOptimum reports whether the soft budget has elapsed.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.optimumTime
}

// AdjustForStability shrinks the soft budget when the best move has held
// for several consecutive depths, letting the search stop earlier.
func (tm *TimeManager) AdjustForStability(stability int) {
	switch {
	case stability >= 6:
		tm.optimumTime = tm.optimumTime * 40 / 100
	case stability >= 4:
		tm.optimumTime = tm.optimumTime * 60 / 100
	case stability >= 2:
		tm.optimumTime = tm.optimumTime * 80 / 100
	}
}

// AdjustForInstability grows the soft budget, up to the hard budget, when
// the best move keeps changing between depths.
func (tm *TimeManager) AdjustForInstability(changes int) {
	switch {
	case changes >= 4:
		tm.optimumTime = tm.optimumTime * 200 / 100
	case changes >= 2:
		tm.optimumTime = tm.optimumTime * 150 / 100
	}
	if tm.optimumTime > tm.maximumTime {
		tm.optimumTime = tm.maximumTime
	}
}
