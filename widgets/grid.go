package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/sequencer"
	"go-pianoroll/theme"
)

// LabelWidth is the width of the pitch name column
const LabelWidth = 5

// Grid renders one measure of the track, highest pitch at the top
type Grid struct {
	Track    *sequencer.Track
	Context  *sequencer.MusicContext
	Theme    *theme.Theme
	Width    int // characters for the cells, excluding labels
	Height   int // lines for the rows
	CursorX  int // tick
	CursorY  int // pitch index
	PlayTick int // < 0 when stopped
}

func (g Grid) View() string {
	mc := g.Context
	widths := ColumnWidths(mc, max(g.Width, mc.TicksPerMeasure()))
	heights := RowHeights(mc, g.Height)

	labelStyle := lipgloss.NewStyle().Foreground(g.Theme.Muted())
	emptyStyle := lipgloss.NewStyle().Foreground(g.Theme.Muted())
	cursorStyle := lipgloss.NewStyle().Foreground(g.Theme.Cursor()).Bold(true)
	playStyle := lipgloss.NewStyle().Background(g.Theme.BG())

	var lines []string
	for _, l := range strings.Split(RenderRuler(mc, widths, g.PlayTick), "\n") {
		lines = append(lines, strings.Repeat(" ", LabelWidth)+l)
	}

	for pitch := mc.ScaleSize() - 1; pitch >= 0; pitch-- {
		name, _ := mc.PitchName(pitch)
		row := make([]string, len(widths))
		for tick, w := range widths {
			n := g.Track.NoteAt(pitch, tick)
			cursor := tick == g.CursorX && pitch == g.CursorY

			var cell string
			switch {
			case n != nil:
				sym := g.Theme.Symbols.NoteTail
				if n.Start == tick {
					sym = g.Theme.Symbols.NoteHead
				}
				if cursor {
					sym = g.Theme.Symbols.CursorNote
				}
				style := lipgloss.NewStyle().Foreground(g.Theme.Velocity(n.Velocity))
				if cursor {
					style = cursorStyle
				}
				fill := string(g.Theme.Symbols.NoteTail)
				if n.End() == tick+1 {
					fill = " "
				}
				cell = style.Render(string(sym) + strings.Repeat(fill, max(w-1, 0)))
			case cursor:
				cell = cursorStyle.Render(pad(string(g.Theme.Symbols.CursorEmpty), w))
			default:
				sym := g.Theme.Symbols.CellEmpty
				if tick%mc.Division() == 0 {
					sym = g.Theme.Symbols.CellBeat
				}
				cell = emptyStyle.Render(pad(string(sym), w))
			}
			if tick == g.PlayTick {
				cell = playStyle.Render(cell)
			}
			row[tick] = cell
		}

		body := strings.Join(row, "")
		for i := 0; i < heights[mc.ScaleSize()-1-pitch]; i++ {
			label := ""
			if i == 0 {
				label = name
			}
			lines = append(lines, labelStyle.Render(fmt.Sprintf("%-*s", LabelWidth, label))+body)
		}
	}
	return strings.Join(lines, "\n")
}
