package uci

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jgilchrist/tcheran/internal/board"
	"github.com/jgilchrist/tcheran/internal/search"
)

const (
	defaultHashMB       = 16
	defaultMoveOverhead = 10 * time.Millisecond
)

// UCI implements the Universal Chess Interface protocol: a line-oriented
// text command loop on stdin/stdout, translating each line into a call
// against the engine and position.
type UCI struct {
	engine   *search.Engine
	position *board.Position

	positionHashes []uint64

	hashMB    int
	hashDirty bool

	searching  bool
	searchDone chan struct{}
}

// New creates a UCI protocol handler wrapping a freshly constructed engine.
func New() *UCI {
	return &UCI{
		engine:   search.NewEngine(defaultHashMB, defaultMoveOverhead),
		position: board.NewPosition(),
		hashMB:   defaultHashMB,
	}
}

// Run reads commands from stdin until "quit" or EOF.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.handleIsReady()
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
		case "setoption":
			u.handleSetOption(args)
		case "d":
			fmt.Println(u.position.String())
			fmt.Printf("Game over: %v\n", u.position.GameOver())
		case "perft":
			u.handlePerft(args)
		default:
			fmt.Fprintf(os.Stderr, "info string unknown command: %s\n", cmd)
		}
	}
}

func (u *UCI) handleUCI() {
	fmt.Println("id name Tcheran")
	fmt.Println("id author the Tcheran authors")
	fmt.Println()
	fmt.Println("option name Hash type spin default 16 min 1 max 4096")
	fmt.Println("option name Threads type spin default 1 min 1 max 1")
	fmt.Println("option name Move Overhead type spin default 10 min 0 max 5000")
	fmt.Println("uciok")
}

// handleNewGame clears the TT, resets killers and halves history, deferring
// any pending Hash resize applied via setoption until now.
func (u *UCI) handleNewGame() {
	u.applyPendingHashResize()
	u.engine.Clear()
	u.position = board.NewPosition()
	u.positionHashes = []uint64{u.position.Hash}
}

// applyPendingHashResize resizes the TT if setoption changed Hash since
// the last resize, the one point in the lifecycle where that's safe to do.
func (u *UCI) applyPendingHashResize() {
	if u.hashDirty {
		u.engine.Resize(u.hashMB)
		u.hashDirty = false
	}
}

// handlePosition parses "position [startpos|fen FEN] [moves m1 m2 ...]".
// Protocol errors here (unparsable FEN, illegal move) are logged to
// stderr and ignored; the handler leaves whatever valid prefix it already
// applied in place rather than aborting.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int

	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
		moveStart = 1
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	case "fen":
		fenEnd := len(args)
		for i, arg := range args[1:] {
			if arg == "moves" {
				fenEnd = i + 1
				break
			}
		}

		fenStr := strings.Join(args[1:fenEnd], " ")
		pos, err := board.ParseFEN(fenStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid FEN: %v\n", err)
			return
		}
		u.position = pos

		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	default:
		return
	}

	u.positionHashes = []uint64{u.position.Hash}

	for _, moveStr := range args[moveStart:] {
		move := u.parseMove(moveStr)
		if move == board.NoMove {
			fmt.Fprintf(os.Stderr, "info string invalid move: %s\n", moveStr)
			return
		}
		u.position.MakeMove(move)
		u.positionHashes = append(u.positionHashes, u.position.Hash)
	}
}

// parseMove resolves a long-algebraic move string against the current
// position's legal moves, since the same from/to/promotion tuple may
// correspond to different move flags (castling, en passant) the bare
// string doesn't encode.
func (u *UCI) parseMove(moveStr string) board.Move {
	if len(moveStr) < 4 {
		return board.NoMove
	}

	fromFile := int(moveStr[0] - 'a')
	fromRank := int(moveStr[1] - '1')
	toFile := int(moveStr[2] - 'a')
	toRank := int(moveStr[3] - '1')
	if fromFile < 0 || fromFile > 7 || fromRank < 0 || fromRank > 7 ||
		toFile < 0 || toFile > 7 || toRank < 0 || toRank > 7 {
		return board.NoMove
	}

	from := board.NewSquare(fromFile, fromRank)
	to := board.NewSquare(toFile, toRank)

	var promo board.PieceType
	if len(moveStr) == 5 {
		switch moveStr[4] {
		case 'q':
			promo = board.Queen
		case 'r':
			promo = board.Rook
		case 'b':
			promo = board.Bishop
		case 'n':
			promo = board.Knight
		}
	}

	moves := u.position.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() != from || m.To() != to {
			continue
		}
		if promo != 0 {
			if m.IsPromotion() && m.Promotion() == promo {
				return m
			}
		} else if !m.IsPromotion() {
			return m
		}
	}

	return board.NoMove
}

// handleGo starts a search in a goroutine and prints "bestmove" when it
// completes, leaving the UCI loop free to process "stop" in the meantime.
func (u *UCI) handleGo(args []string) {
	limits, ply := u.parseGoOptions(args)

	u.engine.SetRootHistory(u.positionHashes)
	u.engine.OnInfo = u.sendInfo

	u.searching = true
	u.searchDone = make(chan struct{})

	pos := u.position.Copy()

	go func() {
		defer close(u.searchDone)

		bestMove := u.engine.Search(pos, limits, ply)
		u.searching = false

		if bestMove == board.NoMove {
			bestMove = anyLegalMove(pos)
		}
		if bestMove == board.NoMove {
			fmt.Println("bestmove 0000")
			return
		}
		fmt.Printf("bestmove %s\n", bestMove.String())
	}()
}

// anyLegalMove returns an arbitrary legal move from pos, used as a
// last-resort fallback when a search is stopped before depth 1 completes
// and never records a PV move — the engine must still return a legal move
// whenever one exists.
func anyLegalMove(pos *board.Position) board.Move {
	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		return board.NoMove
	}
	return moves.Get(0)
}

// parseGoOptions parses "go" arguments into search.Limits, also returning
// the current position's game ply for the time manager's sudden-death
// estimate.
func (u *UCI) parseGoOptions(args []string) (search.Limits, int) {
	var limits search.Limits

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				n, _ := strconv.ParseUint(args[i+1], 10, 64)
				limits.Nodes = n
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			limits.Infinite = true
		case "wtime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.Time[board.White] = time.Duration(ms) * time.Millisecond
				i++
			}
		case "btime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.Time[board.Black] = time.Duration(ms) * time.Millisecond
				i++
			}
		case "winc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.Inc[board.White] = time.Duration(ms) * time.Millisecond
				i++
			}
		case "binc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.Inc[board.Black] = time.Duration(ms) * time.Millisecond
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				limits.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	ply := len(u.positionHashes) - 1
	if ply < 0 {
		ply = 0
	}
	return limits, ply
}

// sendInfo prints one "info depth ..." line for a completed iteration.
func (u *UCI) sendInfo(info search.Info) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	parts = append(parts, fmt.Sprintf("seldepth %d", info.SelDepth))

	if info.Score > search.MateScore-search.MaxPly {
		mateIn := (search.MateScore - info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else if info.Score < -search.MateScore+search.MaxPly {
		mateIn := -(search.MateScore + info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}

	if len(info.PV) > 0 {
		moves := make([]string, len(info.PV))
		for i, m := range info.PV {
			moves[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(moves, " "))
	}

	fmt.Printf("info %s\n", strings.Join(parts, " "))
}

func (u *UCI) handleStop() {
	if u.searching {
		u.engine.Stop()
		<-u.searchDone
	}
}

func (u *UCI) handleQuit() {
	u.handleStop()
	os.Exit(0)
}

// handleSetOption processes "setoption name N [value V]" for the three
// options this engine exposes. Hash resizes are deferred until the next
// ucinewgame/isready per the engine's own lifecycle rule.
func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err == nil && mb >= 1 && mb != u.hashMB {
			u.hashMB = mb
			u.hashDirty = true
		}
	case "threads":
		// Accepted but has no effect: this engine's search is single-threaded.
	case "move overhead":
		ms, err := strconv.Atoi(value)
		if err == nil && ms >= 0 {
			u.engine.SetMoveOverhead(time.Duration(ms) * time.Millisecond)
		}
	}
}

func (u *UCI) handleIsReady() {
	u.applyPendingHashResize()
	fmt.Println("readyok")
}

// handlePerft runs a perft test from the current position, for move
// generator validation outside of the normal search path.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := u.engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Printf("NPS: %.0f\n", nps)
	}
}
