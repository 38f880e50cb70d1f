package board

// Piece-square tables, one pair (midgame, endgame) per piece type, indexed
// by square from White's point of view (mirrored vertically for Black).
// Values already include the piece's base material (PieceValue) so that
// EvalMG/EvalEG double as the full material+positional accumulator — no
// separate material term is kept elsewhere.

var pstMG [6][64]int16
var pstEG [6][64]int16

// mirror flips a White-relative square vertically to read the table from
// Black's point of view.
func mirror(sq Square) Square {
	return Square(int(sq) ^ 56)
}

func init() {
	initPST()
}

func initPST() {
	pawnMG := [64]int16{
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	pawnEG := [64]int16{
		0, 0, 0, 0, 0, 0, 0, 0,
		10, 10, 10, 10, 10, 10, 10, 10,
		10, 10, 10, 10, 10, 10, 10, 10,
		20, 20, 20, 20, 20, 20, 20, 20,
		30, 30, 30, 30, 30, 30, 30, 30,
		50, 50, 50, 50, 50, 50, 50, 50,
		80, 80, 80, 80, 80, 80, 80, 80,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	knightMG := [64]int16{
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	}
	knightEG := knightMG
	bishopMG := [64]int16{
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	}
	bishopEG := bishopMG
	rookMG := [64]int16{
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	rookEG := [64]int16{
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 5, 5, 5, 5, 5, 5, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	queenMG := [64]int16{
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-5, 0, 5, 5, 5, 5, 0, -5,
		0, 0, 5, 5, 5, 5, 0, -5,
		-10, 5, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	}
	queenEG := queenMG
	kingMG := [64]int16{
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	}
	kingEG := [64]int16{
		-50, -30, -30, -30, -30, -30, -30, -50,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-50, -40, -30, -20, -20, -30, -40, -50,
	}

	tables := [6][2]*[64]int16{
		{&pawnMG, &pawnEG},
		{&knightMG, &knightEG},
		{&bishopMG, &bishopEG},
		{&rookMG, &rookEG},
		{&queenMG, &queenEG},
		{&kingMG, &kingEG},
	}

	for pt := Pawn; pt <= King; pt++ {
		for sq := A1; sq <= H8; sq++ {
			pstMG[pt][sq] = int16(PieceValue[pt]) + tables[pt][0][sq]
			pstEG[pt][sq] = int16(PieceValue[pt]) + tables[pt][1][sq]
		}
	}
}

// pstScore returns the (mg, eg) value of placing piece on sq, from White's
// perspective (negative contribution for Black pieces, so the accumulator
// is a single White-minus-Black signed pair).
func pstScore(piece Piece, sq Square) (mg, eg int16) {
	pt := piece.Type()
	relSq := sq
	if piece.Color() == Black {
		relSq = mirror(sq)
	}
	mg, eg = pstMG[pt][relSq], pstEG[pt][relSq]
	if piece.Color() == Black {
		return -mg, -eg
	}
	return mg, eg
}

// GamePhase returns the tapering phase in [0,24]: 4 per queen, 2 per rook,
// 1 per minor, summed over both sides, capped at 24. Used by the evaluator
// to blend midgame and endgame scores.
func (p *Position) GamePhase() int {
	phase := 0
	for c := White; c <= Black; c++ {
		phase += 4*p.Pieces[c][Queen].PopCount() +
			2*p.Pieces[c][Rook].PopCount() +
			p.Pieces[c][Bishop].PopCount() +
			p.Pieces[c][Knight].PopCount()
	}
	if phase > 24 {
		phase = 24
	}
	return phase
}

// RecomputeEval rebuilds EvalMG/EvalEG from scratch, for verifying the
// incremental accumulator stays in sync with the board.
func (p *Position) RecomputeEval() {
	var mg, eg int16
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				dmg, deg := pstScore(NewPiece(pt, c), sq)
				mg += dmg
				eg += deg
			}
		}
	}
	p.EvalMG, p.EvalEG = mg, eg
}
