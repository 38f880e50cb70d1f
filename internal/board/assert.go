package board

import "fmt"

// assertionsEnabled gates the internal invariant checks scattered through
// make/unmake and move generation. Flip to true for debug builds; release
// builds pay nothing since the check itself is dead code behind a const.
const assertionsEnabled = false

// assert panics with a formatted message when cond is false. A failing
// assert means a class-2 bug (mailbox/bitboard disagreement, Zobrist
// drift, an illegal move reaching make/unmake) — there is no recovery,
// only termination.
func assert(cond bool, format string, args ...interface{}) {
	if !assertionsEnabled {
		return
	}
	if !cond {
		panic(fmt.Sprintf("board: invariant violated: "+format, args...))
	}
}
