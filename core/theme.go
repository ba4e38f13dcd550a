package core

// Palette is the set of base colors of a theme.
type Palette struct {
	Background Color
	Text       Color
	Primary    Color
	Success    Color
	Danger     Color
}

// Theme is the look a program picks for a window.
type Theme struct {
	Name    string
	Palette Palette
}

// Style is the window-level appearance derived from a theme.
type Style struct {
	BackgroundColor Color
	TextColor       Color
}

var (
	ThemeLight = Theme{
		Name: "light",
		Palette: Palette{
			Background: White,
			Text:       Black,
			Primary:    RGB8(0x5e, 0x7c, 0xe2),
			Success:    RGB8(0x12, 0x66, 0x4f),
			Danger:     RGB8(0xc3, 0x42, 0x3f),
		},
	}
	ThemeDark = Theme{
		Name: "dark",
		Palette: Palette{
			Background: RGB8(0x20, 0x22, 0x25),
			Text:       RGB8(0xe6, 0xe6, 0xe6),
			Primary:    RGB8(0x5e, 0x7c, 0xe2),
			Success:    RGB8(0x12, 0x66, 0x4f),
			Danger:     RGB8(0xc3, 0x42, 0x3f),
		},
	}
)

// DefaultStyle derives a Style from the theme palette.
func DefaultStyle(t Theme) Style {
	return Style{BackgroundColor: t.Palette.Background, TextColor: t.Palette.Text}
}
