package engine

import (
	"github.com/corentings/chess/v2"

	"github.com/mcoot/elostealo/internal/model"
)

// candidate is a rules-legal move under consideration for the side to move
type candidate struct {
	uci    string
	from   chess.Square
	to     chess.Square
	piece  chess.PieceType
	target chess.Piece // NoPiece for quiet moves and en passant
	ply    int         // plies already played
}

// Filter reports whether a handicap forbids a move
type Filter func(c candidate) bool

type pieceSet map[chess.PieceType]bool

func pieces(types ...chess.PieceType) pieceSet {
	set := make(pieceSet, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

var (
	allPieces    = pieces(chess.Pawn, chess.Knight, chess.Bishop, chess.Rook, chess.Queen, chess.King)
	allButKing   = pieces(chess.Pawn, chess.Knight, chess.Bishop, chess.Rook, chess.Queen)
	officers     = pieces(chess.Knight, chess.Bishop, chess.Rook, chess.Queen)
	pawnsOnly    = pieces(chess.Pawn)
	queenOnly    = pieces(chess.Queen)
	lightSquares = squaresWhere(func(sq int) bool { return (sq/8+sq%8)%2 == 1 })
	darkSquares  = squaresWhere(func(sq int) bool { return (sq/8+sq%8)%2 == 0 })
	innerSquares = squaresWhere(func(sq int) bool { f, r := sq%8, sq/8; return f != 0 && f != 7 && r != 0 && r != 7 })
	cFile, eFile = files(2), files(4)
	hFile        = files(7)
	eOrHFiles    = files(4, 7)
	cOrEFiles    = files(2, 4)
	cOrHFiles    = files(2, 7)
	cEOrHFiles   = files(2, 4, 7)
	noFilter     Filter
	knownFilters = buildFilters()
)

type squareSet [64]bool

func squaresWhere(pred func(sq int) bool) squareSet {
	var set squareSet
	for sq := 0; sq < 64; sq++ {
		set[sq] = pred(sq)
	}
	return set
}

func files(fs ...int) squareSet {
	return squaresWhere(func(sq int) bool {
		for _, f := range fs {
			if sq%8 == f {
				return true
			}
		}
		return false
	})
}

// cantCapture forbids moves by a source piece onto a square holding a target piece
func cantCapture(sources, targets pieceSet) Filter {
	return func(c candidate) bool {
		if c.target == chess.NoPiece {
			return false
		}
		return sources[c.piece] && targets[c.target.Type()]
	}
}

// moveAfter freezes a piece type once the full-move number passes turn
func moveAfter(piece chess.PieceType, turn int) Filter {
	return func(c candidate) bool {
		if c.piece != piece {
			return false
		}
		return (2+c.ply)/2 > turn
	}
}

// moveTo forbids the listed pieces from landing on the given squares
func moveTo(set pieceSet, squares squareSet) Filter {
	return func(c candidate) bool {
		return set[c.piece] && squares[int(c.to)]
	}
}

// openingMoves forces the move at each ply while the sequence lasts
func openingMoves(moves ...string) Filter {
	return func(c candidate) bool {
		if c.ply >= len(moves) {
			return false
		}
		return c.uci != moves[c.ply]
	}
}

func buildFilters() map[model.HandicapID]Filter {
	return map[model.HandicapID]Filter{
		// capture bans
		1:  cantCapture(officers, pawnsOnly),
		2:  cantCapture(pieces(chess.Knight, chess.Bishop, chess.Rook, chess.Queen, chess.Pawn), pawnsOnly),
		3:  cantCapture(allPieces, pawnsOnly),
		4:  cantCapture(pieces(chess.King), allButKing),
		5:  cantCapture(queenOnly, allButKing),
		6:  cantCapture(pieces(chess.Rook), allButKing),
		7:  cantCapture(pieces(chess.Bishop), allButKing),
		8:  cantCapture(pieces(chess.Knight), allButKing),
		9:  cantCapture(pieces(chess.Knight), queenOnly),
		10: cantCapture(pieces(chess.Bishop), queenOnly),
		11: cantCapture(pieces(chess.Rook), queenOnly),
		12: cantCapture(queenOnly, officers),
		13: cantCapture(queenOnly, pieces(chess.Pawn, chess.Knight, chess.Bishop, chess.Queen)),
		14: cantCapture(queenOnly, pieces(chess.Pawn, chess.Bishop, chess.Rook, chess.Queen)),
		15: cantCapture(queenOnly, pieces(chess.Pawn, chess.Knight, chess.Rook, chess.Queen)),
		16: cantCapture(pieces(chess.Knight, chess.Bishop, chess.Rook, chess.Queen, chess.King), pawnsOnly),
		17: cantCapture(pawnsOnly, officers),
		18: cantCapture(pawnsOnly, pawnsOnly),
		19: cantCapture(allPieces, pieces(chess.Rook)),
		20: cantCapture(allPieces, pieces(chess.Bishop)),
		21: cantCapture(allPieces, pieces(chess.Knight)),

		// frozen pieces
		22: moveAfter(chess.Queen, 12),
		23: moveAfter(chess.Queen, 9),
		24: moveAfter(chess.Queen, 6),
		25: moveAfter(chess.Rook, 25),
		26: moveAfter(chess.Rook, 20),
		27: moveAfter(chess.Rook, 15),
		28: moveAfter(chess.Bishop, 20),
		29: moveAfter(chess.Bishop, 15),
		30: moveAfter(chess.Bishop, 10),
		31: moveAfter(chess.Knight, 20),
		32: moveAfter(chess.Knight, 15),
		33: moveAfter(chess.Knight, 10),

		// forbidden squares
		34: moveTo(pieces(chess.Rook), innerSquares),
		35: moveTo(pieces(chess.King), lightSquares),
		36: moveTo(pieces(chess.King), darkSquares),
		37: moveTo(queenOnly, lightSquares),
		38: moveTo(queenOnly, darkSquares),
		39: moveTo(allPieces, cFile),
		40: moveTo(allPieces, hFile),
		41: moveTo(allPieces, eFile),
		42: moveTo(allPieces, eOrHFiles),
		43: moveTo(allPieces, cOrEFiles),
		44: moveTo(allPieces, cOrHFiles),
		45: moveTo(allPieces, cEOrHFiles),

		// forced openings
		46: openingMoves("g2g3", "g7g6", "g3g4", "g6g5"),
		47: openingMoves("b1c3", "b8c6", "c3b1", "c6b8"),
		48: openingMoves("d2d3", "d7d6", "f2f3", "f7f6"),
		49: openingMoves("a2a4", "a7a5", "h2h4", "h7h5"),
		50: openingMoves("c2c4", "c7c5", "d2d3", "d7d6", "e2e4", "e7e5"),
		51: openingMoves("a2a4", "a7a5", "a4a5", "a5a4"),
		52: openingMoves("b2b4", "b7b5", "b4b5", "b5b4"),
		53: openingMoves("e2e4", "e7e5", "f1c4", "f8c5", "d1h5", "d8h4"),
		54: openingMoves("f2f3", "f7f6", "f3f4", "f6f5"),
		55: openingMoves("a2a4", "a7a5", "a1a3", "a8a6", "h2h4", "h7h5", "h1h3", "h8h6"),
		56: openingMoves("f2f3", "f7f6", "g2g4", "g7g5"),
		57: openingMoves("e2e4", "e7e5", "e1e2", "e8e7"),
		58: openingMoves("e2e4", "e7e5", "e1e2", "e8e7", "e2e1", "e7e8"),
		59: openingMoves("b1a3", "b8a6", "g1h3", "g8h6"),
	}
}

// FilterFor returns the move filter for a handicap. Unknown ids and NoHandicap have none.
func FilterFor(id model.HandicapID) Filter {
	if f, ok := knownFilters[id]; ok {
		return f
	}
	return noFilter
}
