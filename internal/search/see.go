package search

import "github.com/jgilchrist/tcheran/internal/board"

// SEE estimates the material result of a capture sequence on m's target
// square, assuming both sides recapture with their least valuable attacker
// each time. Positive means the capturing side comes out ahead overall.
// Used by the move picker to defer captures that are likely losing.
func SEE(pos *board.Position, m board.Move) int {
	from := m.From()
	to := m.To()

	attacker := pos.PieceAt(from)
	if attacker == board.NoPiece {
		return 0
	}

	var capturedValue int
	if m.IsEnPassant() {
		capturedValue = board.PieceValue[board.Pawn]
	} else {
		victim := pos.PieceAt(to)
		if victim == board.NoPiece {
			return 0
		}
		capturedValue = board.PieceValue[victim.Type()]
	}

	if m.IsPromotion() {
		capturedValue += board.PieceValue[m.Promotion()] - board.PieceValue[board.Pawn]
	}

	return seeSwap(pos, to, from, attacker, capturedValue)
}

// seeSwap runs the standard swap-algorithm simulation: alternate captures
// on the target square by each side's least valuable attacker, then
// negamax the resulting gain sequence back to a single value.
func seeSwap(pos *board.Position, target, excludeFrom board.Square, firstAttacker board.Piece, initialGain int) int {
	var gain [32]int
	d := 0
	gain[d] = initialGain

	occupied := pos.AllOccupied &^ board.SquareBB(excludeFrom)
	attackerValue := board.PieceValue[firstAttacker.Type()]
	side := firstAttacker.Color().Other()

	for {
		d++
		gain[d] = attackerValue - gain[d-1]
		if maxInt(-gain[d-1], gain[d]) < 0 {
			break
		}

		attackerSq, attackerPiece := leastValuableAttacker(pos, target, side, occupied)
		if attackerSq == board.NoSquare {
			break
		}

		occupied &^= board.SquareBB(attackerSq)
		attackerValue = board.PieceValue[attackerPiece.Type()]
		side = side.Other()
	}

	for d--; d > 0; d-- {
		gain[d-1] = -maxInt(-gain[d-1], gain[d])
	}
	return gain[0]
}

// leastValuableAttacker finds side's cheapest piece attacking target given
// occupied, checked in ascending value order so x-ray attacks revealed by
// removing a blocker are picked up naturally on the next iteration.
func leastValuableAttacker(pos *board.Position, target board.Square, side board.Color, occupied board.Bitboard) (board.Square, board.Piece) {
	pawns := pos.Pieces[side][board.Pawn] & board.PawnAttacks(target, side.Other()) & occupied
	if pawns != 0 {
		return pawns.LSB(), board.NewPiece(board.Pawn, side)
	}

	knights := pos.Pieces[side][board.Knight] & board.KnightAttacks(target) & occupied
	if knights != 0 {
		return knights.LSB(), board.NewPiece(board.Knight, side)
	}

	bishopAttacks := board.BishopAttacks(target, occupied)
	bishops := pos.Pieces[side][board.Bishop] & bishopAttacks & occupied
	if bishops != 0 {
		return bishops.LSB(), board.NewPiece(board.Bishop, side)
	}

	rookAttacks := board.RookAttacks(target, occupied)
	rooks := pos.Pieces[side][board.Rook] & rookAttacks & occupied
	if rooks != 0 {
		return rooks.LSB(), board.NewPiece(board.Rook, side)
	}

	queens := pos.Pieces[side][board.Queen] & (bishopAttacks | rookAttacks) & occupied
	if queens != 0 {
		return queens.LSB(), board.NewPiece(board.Queen, side)
	}

	king := pos.Pieces[side][board.King] & board.KingAttacks(target) & occupied
	if king != 0 {
		return king.LSB(), board.NewPiece(board.King, side)
	}

	return board.NoSquare, board.NoPiece
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
