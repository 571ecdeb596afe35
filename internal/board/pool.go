package board

import "unicode"

// Pool counts the tiles not yet visible, per letter. Blanks live under Blank.
type Pool map[rune]int

func (p Pool) Copy() Pool {
	cp := make(Pool, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}

// Remove takes one tile out of the pool. A blank tile always comes out of the
// Blank bucket whatever letter it stands for.
func (p Pool) Remove(t Tile) {
	key := t.Letter
	if t.Blank {
		key = Blank
	}
	p[key]--
}

// RemoveRack takes a rack string out of the pool. '?' and lowercase letters
// count as blanks.
func (p Pool) RemoveRack(rack string) {
	for _, ch := range rack {
		if ch == Blank || unicode.IsLower(ch) {
			p[Blank]--
			continue
		}
		p[ch]--
	}
}

func (p Pool) Total() int {
	n := 0
	for _, v := range p {
		n += v
	}
	return n
}
