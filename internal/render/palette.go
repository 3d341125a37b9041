package render

import "github.com/coreman2200/funtimes-neosim/model"

// Unknown is drawn for any colour the palette does not name.
const Unknown = 'X'

type Entry struct {
	Name  string
	Color model.Color
	Glyph byte
}

// Palette maps exact packed colours to a single display glyph.
type Palette struct {
	Entries  []Entry
	Fallback byte

	lookup map[model.Color]byte
}

var defaultEntries = []Entry{
	{"white", model.White, 'W'},
	{"black", model.Black, '.'},
	{"red", model.Red, 'R'},
	{"green", model.Green, 'G'},
	{"blue", model.Blue, 'B'},
	{"yellow", model.Yellow, 'Y'},
	{"cyan", model.Cyan, 'C'},
	{"magenta", model.Magenta, 'M'},
	{"flush orange", model.FlushOrange, 'o'},
	{"rose", model.Rose, 'r'},
	{"chartreuse", model.Chartreuse, 'c'},
	{"spring green", model.SpringGreen, 'g'},
	{"azure", model.Azure, 'a'},
	{"electric indigo", model.ElectricIndigo, 'i'},
}

func NewPalette(entries []Entry, fallback byte) *Palette {
	p := &Palette{
		Entries:  entries,
		Fallback: fallback,
		lookup:   make(map[model.Color]byte, len(entries)),
	}
	for _, e := range entries {
		if _, ok := p.lookup[e.Color]; !ok {
			p.lookup[e.Color] = e.Glyph
		}
	}
	return p
}

// DefaultPalette is the fourteen-colour set with 'X' for anything else.
func DefaultPalette() *Palette {
	return NewPalette(defaultEntries, Unknown)
}

// Glyph returns the glyph of c. Matching is exact, including the W byte.
func (p *Palette) Glyph(c model.Color) byte {
	if g, ok := p.lookup[c]; ok {
		return g
	}
	return p.Fallback
}

// Color returns the first colour drawn with glyph g.
func (p *Palette) Color(g byte) (model.Color, bool) {
	for _, e := range p.Entries {
		if e.Glyph == g {
			return e.Color, true
		}
	}
	return 0, false
}
