package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/connectn-backend/internal/apperror"
)

type Mark string

const (
	MarkEmpty Mark = ""
	MarkX     Mark = "X"
	MarkO     Mark = "O"
)

// Rules - board size and the run length needed to win.
type Rules struct {
	GridSize  int `json:"gridSize"`
	RunLength int `json:"runLength"`
}

var (
	Classic  = Rules{GridSize: 3, RunLength: 3}
	Extended = Rules{GridSize: 5, RunLength: 4}
)

func (that Rules) Validate() error {
	if that.GridSize < 1 || that.RunLength < 1 || that.RunLength > that.GridSize {
		return fmt.Errorf("%w: grid size %d, run length %d", apperror.ErrInvalidRules, that.GridSize, that.RunLength)
	}

	return nil
}

func (that Rules) Cells() int {
	return that.GridSize * that.GridSize
}

// scan directions as (row, col) steps: horizontal, vertical, diagonal, anti-diagonal.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

type Board []Mark

func NewBoard(rules Rules) Board {
	return make(Board, rules.Cells())
}

// MarshalJSON encodes empty cells as null.
func (that Board) MarshalJSON() ([]byte, error) {
	cells := make([]*string, len(that))
	for i, cell := range that {
		if cell == MarkEmpty {
			continue
		}

		value := string(cell)
		cells[i] = &value
	}

	return json.Marshal(cells)
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var cells []*string
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("failed to unmarshal board: %w", err)
	}

	board := make(Board, len(cells))
	for i, cell := range cells {
		if cell != nil {
			board[i] = Mark(*cell)
		}
	}

	*that = board

	return nil
}

// ApplyMove - returns a copy of board with mark placed at index.
func ApplyMove(board Board, index int, mark Mark) (Board, error) {
	if index < 0 || index >= len(board) {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, index)
	}

	if board[index] != MarkEmpty {
		return nil, apperror.ErrCellOccupied
	}

	next := make(Board, len(board))
	copy(next, board)
	next[index] = mark

	return next, nil
}

// Winner - returns the mark of the first run of rules.RunLength found, or MarkEmpty.
func Winner(board Board, rules Rules) Mark {
	size := rules.GridSize
	if len(board) != rules.Cells() || rules.RunLength < 1 {
		return MarkEmpty
	}

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			mark := board[row*size+col]
			if mark == MarkEmpty {
				continue
			}

			for _, dir := range directions {
				if hasRun(board, size, rules.RunLength, row, col, dir) {
					return mark
				}
			}
		}
	}

	return MarkEmpty
}

func hasRun(board Board, size, length, row, col int, dir [2]int) bool {
	endRow := row + dir[0]*(length-1)
	endCol := col + dir[1]*(length-1)
	if endRow < 0 || endRow >= size || endCol < 0 || endCol >= size {
		return false
	}

	mark := board[row*size+col]
	for step := 1; step < length; step++ {
		if board[(row+dir[0]*step)*size+col+dir[1]*step] != mark {
			return false
		}
	}

	return true
}

func IsFull(board Board) bool {
	for _, cell := range board {
		if cell == MarkEmpty {
			return false
		}
	}

	return true
}

type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultWin
	ResultDraw
)

type Result struct {
	Kind ResultKind
	Mark Mark
}

// Outcome - reports whether the board is terminal. A win takes precedence over a full board.
func Outcome(board Board, rules Rules) Result {
	if winner := Winner(board, rules); winner != MarkEmpty {
		return Result{Kind: ResultWin, Mark: winner}
	}

	if IsFull(board) {
		return Result{Kind: ResultDraw}
	}

	return Result{Kind: ResultNone}
}

func (that Result) IsTerminal() bool {
	return that.Kind != ResultNone
}
