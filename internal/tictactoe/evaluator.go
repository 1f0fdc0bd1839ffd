package tictactoe

const (
	MarkX = "X"
	MarkO = "O"

	EmptyCell = ""
)

// winLines are the 8 winning lines of a 3x3 board: rows, columns,
// diagonals. The order is fixed so that evaluation is deterministic.
var winLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Winner returns the mark owning a fully matched line, or EmptyCell if
// no line is complete.
func Winner(board [9]string) string {
	for _, line := range winLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

// IsTerminal reports whether the board has a winner or no empty cell left.
func IsTerminal(board [9]string) bool {
	if Winner(board) != EmptyCell {
		return true
	}

	for _, cell := range board {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}
