package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// Palette is the rotation of colors given to bodies.
func (t Theme) Palette() []lipgloss.Color {
	return []lipgloss.Color{t.Primary, t.Secondary, t.Accent, t.Success, t.Warning}
}

var (
	ThemeCyberpunk = Theme{
		Name:       "cyberpunk",
		Primary:    "#ff00ff",
		Secondary:  "#00ffff",
		Accent:     "#ffff00",
		Background: "#0a0a0a",
		Text:       "#ffffff",
		Muted:      "#666666",
		Success:    "#00ff00",
		Warning:    "#ff8800",
		Error:      "#ff0000",
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Primary:    "#00ff00",
		Secondary:  "#00cc00",
		Accent:     "#88ff88",
		Background: "#001100",
		Text:       "#00ff00",
		Muted:      "#005500",
		Success:    "#88ff88",
		Warning:    "#ffff00",
		Error:      "#ff0000",
	}

	ThemeMinimal = Theme{
		Name:       "minimal",
		Primary:    "#ffffff",
		Secondary:  "#cccccc",
		Accent:     "#0088ff",
		Background: "#000000",
		Text:       "#ffffff",
		Muted:      "#888888",
		Success:    "#00ff00",
		Warning:    "#ffaa00",
		Error:      "#ff0000",
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Primary:    "#0077be",
		Secondary:  "#00a8cc",
		Accent:     "#ffd700",
		Background: "#001a33",
		Text:       "#e0f0ff",
		Muted:      "#4488aa",
		Success:    "#00ff88",
		Warning:    "#ffcc00",
		Error:      "#ff4444",
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme returns the theme after name in Themes, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
