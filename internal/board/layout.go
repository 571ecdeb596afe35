package board

const (
	LayoutClassic      = "classic"
	LayoutClassicSuper = "classic_super"

	DistEnglish      = "english"
	DistEnglishSuper = "english_super"
)

var layoutSizes = map[string]int{
	LayoutClassic:      15,
	LayoutClassicSuper: 21,
}

// SizeFor returns the board dimension for a layout name, falling back to classic.
func SizeFor(layout string) int {
	if n, ok := layoutSizes[layout]; ok {
		return n
	}
	return layoutSizes[LayoutClassic]
}

var distributions = map[string]map[rune]int{
	DistEnglish: {
		'A': 9, 'B': 2, 'C': 2, 'D': 4, 'E': 12, 'F': 2, 'G': 3, 'H': 2, 'I': 9,
		'J': 1, 'K': 1, 'L': 4, 'M': 2, 'N': 6, 'O': 8, 'P': 2, 'Q': 1, 'R': 6,
		'S': 4, 'T': 6, 'U': 4, 'V': 2, 'W': 2, 'X': 1, 'Y': 2, 'Z': 1, Blank: 2,
	},
	DistEnglishSuper: {
		'A': 16, 'B': 4, 'C': 6, 'D': 8, 'E': 24, 'F': 4, 'G': 5, 'H': 5, 'I': 13,
		'J': 2, 'K': 2, 'L': 7, 'M': 6, 'N': 13, 'O': 15, 'P': 4, 'Q': 2, 'R': 13,
		'S': 10, 'T': 15, 'U': 7, 'V': 3, 'W': 4, 'X': 2, 'Y': 4, 'Z': 2, Blank: 4,
	},
}

// Distribution returns a fresh pool for the named tile distribution, falling
// back to english.
func Distribution(name string) Pool {
	d, ok := distributions[name]
	if !ok {
		d = distributions[DistEnglish]
	}
	p := make(Pool, len(d))
	for k, v := range d {
		p[k] = v
	}
	return p
}
