package search

import (
	"testing"
	"time"

	"github.com/jgilchrist/tcheran/internal/board"
)

func newTestEngine() *Engine {
	return NewEngine(16, 10*time.Millisecond)
}

func TestMateInOne(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/4K3/8/8/8/8/7R w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := newTestEngine()
	move := eng.Search(pos, Limits{Depth: 4}, 0)

	if move.String() != "h1h8" {
		t.Errorf("mate-in-one search returned %s, want h1h8", move.String())
	}
}

func TestSmotheredMateInTwoRunsWithoutError(t *testing.T) {
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/5PPP/4R1K1 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	eng := newTestEngine()
	done := make(chan board.Move, 1)
	go func() {
		done <- eng.Search(pos, Limits{MoveTime: 500 * time.Millisecond}, 0)
	}()

	select {
	case move := <-done:
		if move == board.NoMove {
			t.Error("expected a legal move from a position with legal moves available")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("search did not return a bestmove within budget")
	}
}

func TestFixedShortClockReturnsQuickly(t *testing.T) {
	pos := board.NewPosition()
	eng := newTestEngine()

	limits := Limits{
		Time:      [2]time.Duration{100 * time.Millisecond, 100 * time.Millisecond},
		MovesToGo: 1,
	}

	start := time.Now()
	move := eng.Search(pos, limits, 0)
	elapsed := time.Since(start)

	if move == board.NoMove {
		t.Error("expected a move from the starting position")
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("search took %v, want under 500ms for a 100ms clock", elapsed)
	}
}

func TestStopHaltsInfiniteSearchPromptly(t *testing.T) {
	pos := board.NewPosition()
	eng := newTestEngine()

	done := make(chan time.Duration, 1)
	go func() {
		start := time.Now()
		eng.Search(pos, Limits{Infinite: true}, 0)
		done <- time.Since(start)
	}()

	time.Sleep(200 * time.Millisecond)
	stopTime := time.Now()
	eng.Stop()

	select {
	case elapsed := <-done:
		_ = elapsed
		if since := time.Since(stopTime); since > 300*time.Millisecond {
			t.Errorf("search took %v to return after stop, want under 300ms", since)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("search did not return after stop")
	}
}

func TestTranspositionTableRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1)
	pos := board.NewPosition()

	if _, ok := tt.Probe(pos.Hash); ok {
		t.Fatal("expected a miss on an empty table")
	}

	move := board.NewMove(board.E2, board.E4)
	tt.Store(pos.Hash, 8, 37, TTExact, move, true)

	entry, ok := tt.Probe(pos.Hash)
	if !ok {
		t.Fatal("expected a hit after Store")
	}
	if entry.BestMove != move || int(entry.Score) != 37 || entry.Flag != TTExact {
		t.Errorf("round-tripped entry = %+v, want move=%s score=37 flag=TTExact", entry, move)
	}
}

func TestTranspositionTableClearedOnNewGame(t *testing.T) {
	tt := NewTranspositionTable(1)
	pos := board.NewPosition()

	tt.Store(pos.Hash, 4, 10, TTExact, board.NewMove(board.E2, board.E4), false)
	tt.Clear()

	if _, ok := tt.Probe(pos.Hash); ok {
		t.Error("expected a miss after Clear")
	}
}

func TestMateScoreRoundTripsThroughTTAdjustment(t *testing.T) {
	ply := 3
	score := MateScore - 5
	stored := AdjustScoreToTT(score, ply)
	back := AdjustScoreFromTT(stored, ply)

	if back != score {
		t.Errorf("mate score round-trip: got %d, want %d", back, score)
	}
}

func TestQuiescenceStandPatNeverLosesToAWorseMove(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/4q3/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	s := NewSearcher(NewTranspositionTable(1))
	score := s.quiescence(pos, 0, -Infinity, Infinity)

	if score < -2000 {
		t.Errorf("quiescence score %d looks too pessimistic for a position where White need not capture", score)
	}
}
