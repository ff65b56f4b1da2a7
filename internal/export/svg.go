package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/balls/internal/physics"
	"github.com/san-kum/balls/internal/sim"
	"github.com/san-kum/balls/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`

// view maps world coordinates (y up) onto SVG pixels (y down).
type view struct {
	arena physics.Arena
	scale float64
}

func (v view) size() (float64, float64) {
	return v.arena.Width() * v.scale, v.arena.Height() * v.scale
}

func (v view) point(x, y float64) (float64, float64) {
	return (x - v.arena.Left) * v.scale, (v.arena.Top - y) * v.scale
}

func bodyColor(theme viz.Theme, i int) string {
	palette := theme.Palette()
	return string(palette[i%len(palette)])
}

// FrameToSVG draws every body of a frame as a disk inside the arena outline.
func FrameToSVG(frame sim.Frame, arena physics.Arena, scale float64, theme viz.Theme) string {
	if !(scale > 0) || !(arena.Width() > 0) || !(arena.Height() > 0) {
		return ""
	}
	v := view{arena: arena, scale: scale}
	w, h := v.size()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(svgHeader, w, h, w, h, theme.Background))
	sb.WriteString(fmt.Sprintf(`<rect x="0.5" y="0.5" width="%.1f" height="%.1f" fill="none" stroke="%s"/>
`, w-1, h-1, theme.Muted))

	for i, b := range frame {
		cx, cy := v.point(b.Position[0], b.Position[1])
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, b.Radius*scale, bodyColor(theme, i)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws the path of the body at index across frames, with
// its final position as a disk.
func TrajectoryToSVG(frames []sim.Frame, index int, arena physics.Arena, scale float64, theme viz.Theme) string {
	v := view{arena: arena, scale: scale}
	w, h := v.size()

	var path strings.Builder
	var last *physics.Body
	for _, f := range frames {
		if index < 0 || index >= len(f) {
			continue
		}
		x, y := v.point(f[index].Position[0], f[index].Position[1])
		if last == nil {
			path.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
		} else {
			path.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
		b := f[index]
		last = &b
	}
	if last == nil || !(scale > 0) {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(svgHeader, w, h, w, h, theme.Background))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, bodyColor(theme, index), path.String()))
	cx, cy := v.point(last.Position[0], last.Position[1])
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, last.Radius*scale, theme.Text))
	sb.WriteString("</svg>")
	return sb.String()
}
