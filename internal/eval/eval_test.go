package eval

import (
	"testing"

	"github.com/jgilchrist/tcheran/internal/board"
)

func TestEvaluateStartingPositionFavorsSideToMove(t *testing.T) {
	pos := board.NewPosition()
	score := Evaluate(pos)

	if score != tempoBonus {
		t.Errorf("starting position score = %d, want exactly the tempo bonus (%d) since material and PST are symmetric", score, tempoBonus)
	}
}

func TestEvaluateIsSymmetricUnderColorFlip(t *testing.T) {
	white := board.NewPosition()
	whiteScore := Evaluate(white)

	fen := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b - - 0 1"
	black, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	blackScore := Evaluate(black)

	if whiteScore != blackScore {
		t.Errorf("white-to-move score %d != black-to-move score %d on a materially identical position", whiteScore, blackScore)
	}
}

func TestEvaluateRewardsMaterialAdvantage(t *testing.T) {
	fen := "4k3/8/8/8/8/8/8/R3K3 w - - 0 1" // white up a rook
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	if score := Evaluate(pos); score <= 400 {
		t.Errorf("score %d for a position up a whole rook should clear a few hundred centipawns", score)
	}
}

func TestMaterialIgnoresPosition(t *testing.T) {
	pos := board.NewPosition()
	if m := Material(pos); m != 0 {
		t.Errorf("Material on the symmetric starting position = %d, want 0", m)
	}
}
