package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const statsWidth = 45

// styles is the live view's style sheet for one theme.
type styles struct {
	canvas lipgloss.Style
	stats  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style

	running lipgloss.Style
	paused  lipgloss.Style
	replay  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(statsWidth),
		header: lipgloss.NewStyle().Foreground(t.Secondary).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		graph:  lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(2),

		running: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		replay:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
	}
}

// GradientText colours each rune of text along a blend from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	from, err := colorful.Hex(string(start))
	if err != nil {
		return text
	}
	to, err := colorful.Hex(string(end))
	if err != nil {
		return text
	}

	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := from.BlendLuv(to, t).Clamped()
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return b.String()
}

func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	if frame < 0 {
		frame = -frame
	}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders percent in [0, 1] as a bar of width cells.
func ProgressBar(percent float64, width int, t Theme) string {
	width = max(width, 0)
	filled := min(max(int(percent*float64(width)), 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case percent > 0.8:
		return lipgloss.NewStyle().Foreground(t.Success).Render(bar)
	case percent > 0.4:
		return lipgloss.NewStyle().Foreground(t.Warning).Render(bar)
	default:
		return lipgloss.NewStyle().Foreground(t.Error).Render(bar)
	}
}

// SparklineChart renders a one-line chart of values, sampled to width.
func SparklineChart(values []float64, width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	high := lipgloss.NewStyle().Foreground(t.Success)
	mid := lipgloss.NewStyle().Foreground(t.Warning)
	low := lipgloss.NewStyle().Foreground(t.Error)

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(len(values)/width, 1)

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)
		c := string(chars[idx])
		switch {
		case norm > 0.7:
			b.WriteString(high.Render(c))
		case norm > 0.3:
			b.WriteString(mid.Render(c))
		default:
			b.WriteString(low.Render(c))
		}
	}
	return b.String()
}

// BoxWithTitle renders content in a rounded box with title set into the top
// border.
func BoxWithTitle(title, content string, width int, t Theme) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Secondary)
	border := lipgloss.NewStyle().Foreground(t.Muted)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderTop(false).
		BorderForeground(t.Muted).
		Width(width).
		Padding(0, 1)

	fill := max(width-lipgloss.Width(title)-3, 0)
	header := border.Render("╭─ ") + titleStyle.Render(title) + border.Render(" "+strings.Repeat("─", fill)+"╮")
	return header + "\n" + box.Render(content)
}

func Separator(width int, t Theme) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return lipgloss.NewStyle().Foreground(t.Muted).Render(left + " ◆ " + right)
}
