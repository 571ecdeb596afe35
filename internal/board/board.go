package board

import "unicode"

const (
	// PlayThrough marks a position in a played-tiles string that is already
	// occupied on the board.
	PlayThrough = '.'
	// Blank is the pool/rack bucket for blank tiles regardless of designation.
	Blank = '?'
)

type Direction string

const (
	Horizontal Direction = "HORIZONTAL"
	Vertical   Direction = "VERTICAL"
)

type Tile struct {
	Letter rune
	Blank  bool
}

type Position struct {
	Row int
	Col int
}

// Board is a square grid of tiles. The zero Tile means an empty cell.
type Board struct {
	Size  int
	Cells [][]Tile
}

func New(size int) *Board {
	cells := make([][]Tile, size)
	for i := range cells {
		cells[i] = make([]Tile, size)
	}
	return &Board{Size: size, Cells: cells}
}

// Copy returns a deep copy; mutating it never touches b.
func (b *Board) Copy() *Board {
	if b == nil {
		return nil
	}
	cp := &Board{Size: b.Size, Cells: make([][]Tile, len(b.Cells))}
	for i, row := range b.Cells {
		cp.Cells[i] = make([]Tile, len(row))
		copy(cp.Cells[i], row)
	}
	return cp
}

func (b *Board) IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.Size && pos.Col >= 0 && pos.Col < b.Size
}

func (b *Board) Get(pos Position) Tile {
	if !b.IsValidPosition(pos) {
		return Tile{}
	}
	return b.Cells[pos.Row][pos.Col]
}

func (b *Board) IsEmpty(pos Position) bool {
	return b.Get(pos).Letter == 0
}

func (b *Board) Set(pos Position, t Tile) {
	if b.IsValidPosition(pos) {
		b.Cells[pos.Row][pos.Col] = t
	}
}

func (b *Board) TileCount() int {
	n := 0
	for _, row := range b.Cells {
		for _, t := range row {
			if t.Letter != 0 {
				n++
			}
		}
	}
	return n
}

// PlaceTiles writes a played-tiles string onto consecutive cells starting at
// (row, col). Play-through markers skip the cell. It returns the tiles that
// were newly placed, in order. Out-of-bounds letters are dropped.
func (b *Board) PlaceTiles(row, col int, dir Direction, played string) []Tile {
	var placed []Tile
	r, c := row, col
	for _, ch := range played {
		pos := Position{Row: r, Col: c}
		if dir == Vertical {
			r++
		} else {
			c++
		}
		if ch == PlayThrough {
			continue
		}
		if !b.IsValidPosition(pos) {
			continue
		}
		t := TileFor(ch)
		b.Set(pos, t)
		placed = append(placed, t)
	}
	return placed
}

// TileFor maps a played letter to a tile: lowercase letters are designated blanks.
func TileFor(ch rune) Tile {
	if unicode.IsLower(ch) {
		return Tile{Letter: unicode.ToUpper(ch), Blank: true}
	}
	return Tile{Letter: ch}
}

// Row renders one row; empty cells are '.', blanks lowercase.
func (b *Board) Row(row int) string {
	if row < 0 || row >= b.Size {
		return ""
	}
	out := make([]rune, b.Size)
	for col, t := range b.Cells[row] {
		switch {
		case t.Letter == 0:
			out[col] = PlayThrough
		case t.Blank:
			out[col] = unicode.ToLower(t.Letter)
		default:
			out[col] = t.Letter
		}
	}
	return string(out)
}

func (b *Board) Rows() []string {
	rows := make([]string, b.Size)
	for i := range rows {
		rows[i] = b.Row(i)
	}
	return rows
}
