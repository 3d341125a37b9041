package model

// Named colours understood by the grid renderer. Secondary tones are the
// half-intensity mixes between neighbouring primaries.
const (
	Black          Color = 0x000000
	White          Color = 0xFFFFFF
	Red            Color = 0xFF0000
	Green          Color = 0x00FF00
	Blue           Color = 0x0000FF
	Yellow         Color = 0xFFFF00
	Cyan           Color = 0x00FFFF
	Magenta        Color = 0xFF00FF
	FlushOrange    Color = 0xFF7F00
	Rose           Color = 0xFF007F
	Chartreuse     Color = 0x7FFF00
	SpringGreen    Color = 0x00FF7F
	Azure          Color = 0x007FFF
	ElectricIndigo Color = 0x7F00FF
)
