package search

import (
	"testing"

	"github.com/jgilchrist/tcheran/internal/board"
)

func TestMovePickerYieldsTTMoveFirst(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()
	ttMove := board.NewMove(board.D2, board.D4)

	picker := NewMovePicker(pos, orderer, 0, ttMove, false)
	m, ok := picker.Next()

	if !ok || m != ttMove {
		t.Errorf("first move = %v (ok=%v), want the TT move %v", m, ok, ttMove)
	}
}

func TestMovePickerDoesNotRepeatTheTTMove(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()
	ttMove := board.NewMove(board.E2, board.E4)

	picker := NewMovePicker(pos, orderer, 0, ttMove, false)
	seen := 0
	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		if m == ttMove {
			seen++
		}
	}

	if seen != 1 {
		t.Errorf("TT move yielded %d times, want exactly 1", seen)
	}
}

func TestMovePickerExhaustsAllLegalMoves(t *testing.T) {
	pos := board.NewPosition()
	legal := pos.GenerateLegalMoves()

	orderer := NewMoveOrderer()
	picker := NewMovePicker(pos, orderer, 0, board.NoMove, false)

	count := 0
	for {
		_, ok := picker.Next()
		if !ok {
			break
		}
		count++
	}

	if count != legal.Len() {
		t.Errorf("picker yielded %d moves, want %d (the full legal move count)", count, legal.Len())
	}
}

func TestMovePickerYieldsLosingCapturesInQuiescence(t *testing.T) {
	// White queen on e5 can capture the pawn on e6, which the d7 pawn
	// defends, so QxP loses the queen for a pawn. This exercises the
	// quiescence path, which skips the bad-capture deferral entirely and
	// returns every capture directly.
	pos, err := board.ParseFEN("4k3/3p4/4p3/4Q3/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	orderer := NewMoveOrderer()
	picker := NewMovePicker(pos, orderer, 0, board.NoMove, true)

	found := false
	for {
		m, ok := picker.Next()
		if !ok {
			break
		}
		if m.To() == board.E6 {
			found = true
		}
	}

	if !found {
		t.Error("expected the quiescence picker to yield the queen-takes-pawn capture")
	}
}
