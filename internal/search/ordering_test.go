package search

import (
	"testing"

	"github.com/jgilchrist/tcheran/internal/board"
)

func TestUpdateKillersShiftsPreviousIntoSecondSlot(t *testing.T) {
	mo := NewMoveOrderer()
	m1 := board.NewMove(board.E2, board.E4)
	m2 := board.NewMove(board.D2, board.D4)

	mo.UpdateKillers(m1, 0)
	mo.UpdateKillers(m2, 0)

	if mo.killers[0][0] != m2 || mo.killers[0][1] != m1 {
		t.Errorf("killers[0] = %v, want [%v, %v]", mo.killers[0], m2, m1)
	}
}

func TestUpdateKillersIgnoresDuplicate(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.E2, board.E4)

	mo.UpdateKillers(m, 0)
	mo.UpdateKillers(m, 0)

	if mo.killers[0][1] != board.NoMove {
		t.Errorf("second killer slot = %v, want NoMove since the same move was recorded twice", mo.killers[0][1])
	}
}

func TestHistoryGrowsWithDepthSquaredBonus(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.G1, board.F3)

	mo.UpdateHistory(board.White, m, 4, true)

	if got := mo.HistoryScore(board.White, m); got != 16 {
		t.Errorf("history score after one depth-4 bonus = %d, want 16", got)
	}
}

func TestHistoryIsIndexedBySideToMove(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.G1, board.F3)

	mo.UpdateHistory(board.White, m, 4, true)

	if got := mo.HistoryScore(board.Black, m); got != 0 {
		t.Errorf("black's history score for a white-only update = %d, want 0", got)
	}
}

func TestClearHalvesHistoryAndResetsKillers(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.E2, board.E4)

	mo.UpdateKillers(m, 0)
	mo.UpdateHistory(board.White, m, 4, true)
	mo.Clear()

	if mo.killers[0][0] != board.NoMove {
		t.Error("expected killers cleared after Clear")
	}
	if got := mo.HistoryScore(board.White, m); got != 8 {
		t.Errorf("history score after Clear = %d, want 8 (halved from 16)", got)
	}
}
